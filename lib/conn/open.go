package conn

import (
	"context"
	"net"
	"strconv"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("conn")

// Open connects to the server described by cfg and verifies it with PING.
// cfg.Cluster selects the variant. On failure nothing is left open.
func Open(ctx context.Context, cfg common.SessionConfig, clientCfg common.ClientConfig, recorder Recorder) (Conn, error) {
	var c Conn
	if cfg.Cluster {
		c = newCluster(cfg, clientCfg, recorder)
	} else {
		c = newDirect(cfg.Addr(), cfg, clientCfg, recorder)
	}

	if err := Ping(ctx, c); err != nil {
		_ = c.Close()
		Logger.Warningf("[%s] connect to %s failed: %v", Label(cfg), cfg.Addr(), err)
		return nil, common.NewConnectionError(err)
	}

	Logger.Debugf("[%s] connected to %s (cluster=%t)", Label(cfg), cfg.Addr(), cfg.Cluster)
	return c, nil
}

// OpenNode opens a direct connection to one cluster node, reusing the
// credentials of cfg. Fan-out operations use it for each master.
func OpenNode(ctx context.Context, cfg common.SessionConfig, clientCfg common.ClientConfig, host string, port int, recorder Recorder) (Conn, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	c := newDirect(addr, cfg, clientCfg, recorder)

	if err := Ping(ctx, c); err != nil {
		_ = c.Close()
		return nil, common.NewConnectionError(err)
	}
	return c, nil
}

// Label returns the name used for a session in the audit log
func Label(cfg common.SessionConfig) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	if cfg.ID != "" {
		return cfg.ID
	}
	return cfg.Addr()
}
