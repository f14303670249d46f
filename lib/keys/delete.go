package keys

import (
	"context"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// DeleteKey removes key
func (d *Dispatcher) DeleteKey(ctx context.Context, id string, db int, key string) error {
	return d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		return c.Process(ctx, redis.NewIntCmd(ctx, "del", key))
	})
}

// DeleteValue removes a single element from key: one occurrence of a list
// value, a set or sorted set member, a hash field or a stream entry id. For
// strings the whole key is removed.
func (d *Dispatcher) DeleteValue(ctx context.Context, id string, db int, key, value string) error {
	return d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		typCmd := redis.NewStatusCmd(ctx, "type", key)
		if err := c.Process(ctx, typCmd); err != nil {
			return err
		}
		typ, err := ParseKeyType(typCmd.Val())
		if err != nil {
			return err
		}

		var cmd redis.Cmder
		switch typ {
		case TypeString:
			cmd = redis.NewIntCmd(ctx, "del", key)
		case TypeList:
			cmd = redis.NewIntCmd(ctx, "lrem", key, 1, value)
		case TypeSet:
			cmd = redis.NewIntCmd(ctx, "srem", key, value)
		case TypeZSet:
			cmd = redis.NewIntCmd(ctx, "zrem", key, value)
		case TypeHash:
			cmd = redis.NewIntCmd(ctx, "hdel", key, value)
		case TypeStream:
			cmd = redis.NewIntCmd(ctx, "xdel", key, value)
		}
		return c.Process(ctx, cmd)
	})
}

// DeleteKeysByPattern removes every key matching the glob pattern and returns
// how many were deleted. Cluster sessions delete on every master, a failing
// master does not undo deletions on the others.
func (d *Dispatcher) DeleteKeysByPattern(ctx context.Context, id string, db int, pattern string) (int64, error) {
	var deleted int64
	err := d.withDB(ctx, id, db, func(c conn.Conn, cfg common.SessionConfig) error {
		if !c.Clustered() {
			n, err := deleteMatching(ctx, c, pattern, false)
			deleted = n
			return err
		}
		return d.forEachMaster(ctx, c, cfg, func(_ string, node conn.Conn) error {
			n, err := deleteMatching(ctx, node, pattern, true)
			deleted += n
			return err
		})
	})
	Logger.Debugf("deleted %d keys matching %q", deleted, pattern)
	return deleted, err
}

// deleteMatching scans for pattern and deletes the result in one batch.
// perKey sends one DEL per key in a pipeline, cluster nodes reject multi key
// DEL across slots.
func deleteMatching(ctx context.Context, c conn.Conn, pattern string, perKey bool) (int64, error) {
	keys, err := scanKeys(ctx, c, pattern)
	if err != nil || len(keys) == 0 {
		return 0, err
	}

	if !perKey {
		args := make([]interface{}, 0, len(keys)+1)
		args = append(args, "del")
		for _, k := range keys {
			args = append(args, k)
		}
		cmd := redis.NewIntCmd(ctx, args...)
		err := c.Process(ctx, cmd)
		return cmd.Val(), err
	}

	cmds := make([]redis.Cmder, len(keys))
	for i, k := range keys {
		cmds[i] = redis.NewIntCmd(ctx, "del", k)
	}
	err = c.ProcessPipeline(ctx, cmds...)
	var n int64
	for _, cmd := range cmds {
		n += cmd.(*redis.IntCmd).Val()
	}
	return n, err
}

// ClearDatabase removes every key of the database, on cluster sessions of
// every master.
func (d *Dispatcher) ClearDatabase(ctx context.Context, id string, db int) error {
	return d.withDB(ctx, id, db, func(c conn.Conn, cfg common.SessionConfig) error {
		if !c.Clustered() {
			return c.Process(ctx, redis.NewStatusCmd(ctx, "flushdb"))
		}
		err := d.forEachMaster(ctx, c, cfg, func(addr string, node conn.Conn) error {
			return node.Process(ctx, redis.NewStatusCmd(ctx, "flushdb"))
		})
		return errors.WithMessage(err, "flush cluster")
	})
}
