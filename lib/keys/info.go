package keys

import (
	"context"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/redis/go-redis/v9"
)

// ServerInfo returns the parsed INFO reply. Cluster sessions query every
// master and key the result by node address.
func (d *Dispatcher) ServerInfo(ctx context.Context, id string) (ServerInfo, error) {
	var out ServerInfo
	err := d.sessions.With(id, func(c conn.Conn, cfg common.SessionConfig) error {
		if !c.Clustered() {
			fields, err := readInfo(ctx, c)
			out.Fields = fields
			return err
		}
		out.Nodes = make(map[string]map[string]string)
		return d.forEachMaster(ctx, c, cfg, func(addr string, node conn.Conn) error {
			fields, err := readInfo(ctx, node)
			if err == nil {
				out.Nodes[addr] = fields
			}
			return err
		})
	})
	return out, err
}

// readInfo sends INFO and merges the sections of the reply into one
// field/value map
func readInfo(ctx context.Context, c conn.Conn) (map[string]string, error) {
	cmd := redis.NewInfoCmd(ctx, "info")
	if err := c.Process(ctx, cmd); err != nil {
		return nil, err
	}
	fields := make(map[string]string)
	for _, section := range cmd.Val() {
		for k, v := range section {
			fields[k] = v
		}
	}
	return fields, nil
}
