package conn

import (
	"context"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// directConn owns a client with a single sticky connection. SELECT issued on
// the sticky connection applies to all later commands of the session.
type directConn struct {
	label  string
	client *redis.Client
	conn   *redis.Conn
	db     int
}

var _ Conn = (*directConn)(nil)

// newDirect builds a direct connection without contacting the server
func newDirect(addr string, cfg common.SessionConfig, clientCfg common.ClientConfig, recorder Recorder) *directConn {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		Username:        cfg.Username,
		Password:        cfg.Password,
		DialTimeout:     clientCfg.DialTimeout(),
		Protocol:        2,
		MaxRetries:      -1,
		PoolSize:        1,
		DisableIdentity: true,
	})
	label := Label(cfg)
	client.AddHook(newAuditHook(label, recorder))

	return &directConn{
		label:  label,
		client: client,
		conn:   client.Conn(),
	}
}

func (d *directConn) Process(ctx context.Context, cmd redis.Cmder) error {
	return wrapErr(d.conn.Process(ctx, cmd))
}

func (d *directConn) ProcessPipeline(ctx context.Context, cmds ...redis.Cmder) error {
	if len(cmds) == 0 {
		return nil
	}
	_, err := d.conn.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, cmd := range cmds {
			_ = p.Process(ctx, cmd)
		}
		return nil
	})
	return wrapErr(err)
}

func (d *directConn) Select(ctx context.Context, db int) error {
	if db < 0 {
		return errors.Errorf("invalid database index %d", db)
	}
	if err := d.Process(ctx, redis.NewStatusCmd(ctx, "select", db)); err != nil {
		return err
	}
	d.db = db
	return nil
}

func (d *directConn) SelectedDB() int {
	return d.db
}

func (d *directConn) Clustered() bool {
	return false
}

func (d *directConn) Close() error {
	connErr := d.conn.Close()
	clientErr := d.client.Close()
	if connErr != nil {
		return connErr
	}
	return clientErr
}
