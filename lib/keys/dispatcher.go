package keys

import (
	"context"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/ValentinKolb/gedis/lib/session"
	"github.com/ValentinKolb/gedis/lib/topology"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/redis/go-redis/v9"
)

var Logger = logger.GetLogger("keys")

// scanCount is the COUNT hint of every SCAN family call
const scanCount = 500

// Dispatcher translates key level operations into commands on the
// connection of a session. Every operation borrows the session for its whole
// duration and selects the requested database first.
type Dispatcher struct {
	sessions *session.Registry
	// resolve reads the cluster layout behind a clustered connection
	resolve func(ctx context.Context, c conn.Conn) (*topology.Topology, error)
}

// NewDispatcher creates a dispatcher working on the sessions of r
func NewDispatcher(r *session.Registry) *Dispatcher {
	return &Dispatcher{sessions: r, resolve: clusterNodes}
}

// withDB borrows session id and selects db before running fn
func (d *Dispatcher) withDB(ctx context.Context, id string, db int, fn func(c conn.Conn, cfg common.SessionConfig) error) error {
	return d.sessions.With(id, func(c conn.Conn, cfg common.SessionConfig) error {
		if err := c.Select(ctx, db); err != nil {
			return err
		}
		return fn(c, cfg)
	})
}

// --------------------------------------------------------------------------
// Session level operations
// --------------------------------------------------------------------------

// Ping checks that the server of session id answers
func (d *Dispatcher) Ping(ctx context.Context, id string) error {
	return d.sessions.With(id, func(c conn.Conn, _ common.SessionConfig) error {
		return conn.Ping(ctx, c)
	})
}

// SelectDatabase switches the logical database of session id. The database
// also stays selected for commands that do not name one, cluster sessions ignore it.
func (d *Dispatcher) SelectDatabase(ctx context.Context, id string, db int) error {
	return d.sessions.With(id, func(c conn.Conn, _ common.SessionConfig) error {
		return c.Select(ctx, db)
	})
}

// --------------------------------------------------------------------------
// Key descriptors
// --------------------------------------------------------------------------

// KeyType returns the raw type tag of key, "none" for missing keys
func (d *Dispatcher) KeyType(ctx context.Context, id string, db int, key string) (KeyType, error) {
	var typ KeyType
	err := d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		cmd := redis.NewStatusCmd(ctx, "type", key)
		if err := c.Process(ctx, cmd); err != nil {
			return err
		}
		typ = KeyType(cmd.Val())
		return nil
	})
	return typ, err
}

// KeySummary returns type, label, ttl and size of key
func (d *Dispatcher) KeySummary(ctx context.Context, id string, db int, key string) (KeyDescriptor, error) {
	var desc KeyDescriptor
	err := d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		var err error
		if desc, err = describe(ctx, c, key); err != nil {
			return err
		}
		size := sizeCmd(ctx, desc.Type, key)
		if err := c.Process(ctx, size); err != nil {
			return err
		}
		desc.Size = size.Val()
		return nil
	})
	return desc, err
}

// describe reads type and ttl of key in one round trip
func describe(ctx context.Context, c conn.Conn, key string) (KeyDescriptor, error) {
	typCmd := redis.NewStatusCmd(ctx, "type", key)
	ttlCmd := redis.NewIntCmd(ctx, "ttl", key)
	if err := c.ProcessPipeline(ctx, typCmd, ttlCmd); err != nil {
		return KeyDescriptor{}, err
	}

	typ, err := ParseKeyType(typCmd.Val())
	if err != nil {
		return KeyDescriptor{}, err
	}
	return KeyDescriptor{
		Key:   key,
		Type:  typ,
		Label: typ.Label(),
		TTL:   ttlCmd.Val(),
	}, nil
}

// sizeCmd returns the command counting the elements of a key of type typ
func sizeCmd(ctx context.Context, typ KeyType, key string) *redis.IntCmd {
	name := map[KeyType]string{
		TypeString: "strlen",
		TypeList:   "llen",
		TypeSet:    "scard",
		TypeZSet:   "zcard",
		TypeHash:   "hlen",
		TypeStream: "xlen",
	}[typ]
	return redis.NewIntCmd(ctx, name, key)
}
