package topology

import (
	"strconv"
	"strings"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("topology")

// minFields is the number of mandatory fields of a CLUSTER NODES line
const minFields = 8

// Node is one line of a CLUSTER NODES reply
type Node struct {
	ID string
	// Addr is the raw address field, host:port[@busport][,hostname]
	Addr        string
	Flags       []string
	MasterID    string
	PingSent    uint64
	PongRecv    uint64
	ConfigEpoch uint64
	LinkState   string
	// Slots holds the slot ranges served by the node, empty for replicas
	Slots []string
}

// IsMaster reports whether any flag contains "master"
func (n Node) IsMaster() bool {
	return strings.Contains(strings.Join(n.Flags, ","), "master")
}

// Endpoint splits the address into host and port. The bus port and an
// announced hostname are ignored, an unparsable port yields defaultPort.
func (n Node) Endpoint(defaultPort int) (string, int) {
	addr := n.Addr
	if i := strings.IndexAny(addr, "@,"); i >= 0 {
		addr = addr[:i]
	}
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, defaultPort
	}
	host := addr[:i]
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil || port <= 0 {
		return host, defaultPort
	}
	return host, port
}

// Topology is a parsed CLUSTER NODES reply
type Topology struct {
	nodes []Node
}

// Parse reads the text of a CLUSTER NODES reply. Blank lines are ignored,
// any other line with fewer than eight fields or a non numeric counter
// fails the whole parse with common.ErrTopologyParse.
func Parse(text string) (*Topology, error) {
	var nodes []Node
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		node, err := parseLine(fields)
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", i+1)
		}
		nodes = append(nodes, node)
	}
	Logger.Debugf("parsed %d cluster nodes", len(nodes))
	return &Topology{nodes: nodes}, nil
}

func parseLine(fields []string) (Node, error) {
	if len(fields) < minFields {
		return Node{}, errors.Wrapf(common.ErrTopologyParse, "expected at least %d fields, got %d", minFields, len(fields))
	}

	var counters [3]uint64
	for i, raw := range fields[4:7] {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Node{}, errors.Wrapf(common.ErrTopologyParse, "field %d is not a number: %q", i+5, raw)
		}
		counters[i] = v
	}

	node := Node{
		ID:          fields[0],
		Addr:        fields[1],
		Flags:       strings.Split(fields[2], ","),
		MasterID:    fields[3],
		PingSent:    counters[0],
		PongRecv:    counters[1],
		ConfigEpoch: counters[2],
		LinkState:   fields[7],
	}
	if len(fields) > minFields {
		node.Slots = append([]string(nil), fields[minFields:]...)
	}
	return node, nil
}

// Nodes returns every parsed node in reply order
func (t *Topology) Nodes() []Node {
	return t.nodes
}

// Masters returns the nodes flagged as master in reply order
func (t *Topology) Masters() []Node {
	var masters []Node
	for _, n := range t.nodes {
		if n.IsMaster() {
			masters = append(masters, n)
		}
	}
	return masters
}
