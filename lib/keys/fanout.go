package keys

import (
	"context"
	"net"
	"strconv"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/ValentinKolb/gedis/lib/topology"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/multierr"
)

// nodeFunc runs on the transient connection of one master
type nodeFunc func(addr string, node conn.Conn) error

// forEachMaster resolves the masters of the cluster behind c and runs fn on
// each of them
func (d *Dispatcher) forEachMaster(ctx context.Context, c conn.Conn, cfg common.SessionConfig, fn nodeFunc) error {
	topo, err := d.resolve(ctx, c)
	if err != nil {
		return err
	}
	return d.fanOut(ctx, cfg, topo.Masters(), fn)
}

// clusterNodes asks the node behind c for CLUSTER NODES and parses the reply
func clusterNodes(ctx context.Context, c conn.Conn) (*topology.Topology, error) {
	cmd := redis.NewStringCmd(ctx, "cluster", "nodes")
	if err := c.Process(ctx, cmd); err != nil {
		return nil, err
	}
	return topology.Parse(cmd.Val())
}

// fanOut visits masters one after another, each on its own connection that is
// closed right after use. Failures do not stop the walk, they are returned as
// a single aggregate error. Nothing done on other masters is rolled back.
func (d *Dispatcher) fanOut(ctx context.Context, cfg common.SessionConfig, masters []topology.Node, fn nodeFunc) error {
	defaultPort := cfg.Port
	if defaultPort <= 0 {
		defaultPort = common.DefaultPort
	}

	var errs error
	failed := 0
	for _, m := range masters {
		host, port := m.Endpoint(defaultPort)
		addr := net.JoinHostPort(host, strconv.Itoa(port))
		common.FanOutNodes.Inc()

		if err := d.onNode(ctx, cfg, host, port, addr, fn); err != nil {
			Logger.Warningf("fan-out to %s failed: %v", addr, err)
			errs = multierr.Append(errs, errors.WithMessagef(err, "node %s", addr))
			failed++
		}
	}

	if errs != nil {
		return errors.WithMessagef(errs, "%d of %d masters failed", failed, len(masters))
	}
	return nil
}

func (d *Dispatcher) onNode(ctx context.Context, cfg common.SessionConfig, host string, port int, addr string, fn nodeFunc) error {
	node, err := conn.OpenNode(ctx, cfg, d.sessions.Config(), host, port, d.sessions.Recorder())
	if err != nil {
		return err
	}
	defer node.Close()
	return fn(addr, node)
}
