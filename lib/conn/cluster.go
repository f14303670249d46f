package conn

import (
	"context"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/redis/go-redis/v9"
)

// clusterConn routes every command to the node owning its key slot
type clusterConn struct {
	label  string
	client *redis.ClusterClient
}

var _ Conn = (*clusterConn)(nil)

// newCluster builds a cluster connection seeded with a single entry point
func newCluster(cfg common.SessionConfig, clientCfg common.ClientConfig, recorder Recorder) *clusterConn {
	client := redis.NewClusterClient(&redis.ClusterOptions{
		Addrs:           []string{cfg.Addr()},
		Username:        cfg.Username,
		Password:        cfg.Password,
		DialTimeout:     clientCfg.DialTimeout(),
		Protocol:        2,
		MaxRetries:      -1,
		DisableIdentity: true,
	})
	label := Label(cfg)
	client.AddHook(newAuditHook(label, recorder))

	return &clusterConn{
		label:  label,
		client: client,
	}
}

func (c *clusterConn) Process(ctx context.Context, cmd redis.Cmder) error {
	return wrapErr(c.client.Process(ctx, cmd))
}

func (c *clusterConn) ProcessPipeline(ctx context.Context, cmds ...redis.Cmder) error {
	if len(cmds) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, cmd := range cmds {
			_ = p.Process(ctx, cmd)
		}
		return nil
	})
	return wrapErr(err)
}

func (c *clusterConn) Select(_ context.Context, db int) error {
	if db != 0 {
		Logger.Debugf("[%s] ignoring select %d on cluster connection", c.label, db)
	}
	return nil
}

func (c *clusterConn) SelectedDB() int {
	return NoDatabase
}

func (c *clusterConn) Clustered() bool {
	return true
}

func (c *clusterConn) Close() error {
	return c.client.Close()
}
