package keys

import (
	"context"
	"sort"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Remaining TTL values reported by the TTL command
const (
	ttlMissing    = -2
	ttlPersistent = -1
)

// SetKey adds req.Value to req.Key according to req.Type. Lists append to the
// tail of existing keys and prepend on new ones, hash writes drop OldField when
// it differs from Field. The remaining TTL of the key survives the write.
// Type and value are validated after the session lookup and before anything
// is sent.
func (d *Dispatcher) SetKey(ctx context.Context, id string, db int, req WriteRequest) error {
	return d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		typ, err := ParseKeyType(string(req.Type))
		if err != nil {
			return err
		}

		var streamFields []interface{}
		if typ == TypeStream {
			if streamFields, err = parseStreamValue(req.Value); err != nil {
				return err
			}
		}

		ttlCmd := redis.NewIntCmd(ctx, "ttl", req.Key)
		if err := c.Process(ctx, ttlCmd); err != nil {
			return err
		}
		ttl := ttlCmd.Val()

		if err := write(ctx, c, typ, req, ttl, streamFields); err != nil {
			return err
		}
		Logger.Debugf("wrote %s %q (previous ttl %d)", typ, req.Key, ttl)
		return restoreTTL(ctx, c, req.Key, ttl)
	})
}

// write issues the type specific write command(s)
func write(ctx context.Context, c conn.Conn, typ KeyType, req WriteRequest, ttl int64, streamFields []interface{}) error {
	switch typ {
	case TypeString:
		return c.Process(ctx, redis.NewStatusCmd(ctx, "set", req.Key, req.Value))
	case TypeList:
		push := "rpush"
		if ttl == ttlMissing {
			push = "lpush"
		}
		return c.Process(ctx, redis.NewIntCmd(ctx, push, req.Key, req.Value))
	case TypeSet:
		return c.Process(ctx, redis.NewIntCmd(ctx, "sadd", req.Key, req.Value))
	case TypeZSet:
		return c.Process(ctx, redis.NewIntCmd(ctx, "zadd", req.Key, req.Score, req.Value))
	case TypeHash:
		if err := c.Process(ctx, redis.NewIntCmd(ctx, "hset", req.Key, req.Field, req.Value)); err != nil {
			return err
		}
		if req.OldField != "" && req.OldField != req.Field {
			return c.Process(ctx, redis.NewIntCmd(ctx, "hdel", req.Key, req.OldField))
		}
		return nil
	case TypeStream:
		entryID := req.ID
		if entryID == "" {
			entryID = "*"
		}
		args := append([]interface{}{"xadd", req.Key, entryID}, streamFields...)
		return c.Process(ctx, redis.NewStringCmd(ctx, args...))
	default:
		return errors.Wrapf(common.ErrUnsupportedKeyType, "type %q", typ)
	}
}

// restoreTTL reapplies the ttl read before a write
func restoreTTL(ctx context.Context, c conn.Conn, key string, ttl int64) error {
	switch {
	case ttl == ttlPersistent:
		return nil
	case ttl == ttlMissing:
		return c.Process(ctx, redis.NewBoolCmd(ctx, "persist", key))
	default:
		return c.Process(ctx, redis.NewBoolCmd(ctx, "expire", key, ttl))
	}
}

// parseStreamValue decodes a JSON object into alternating field and value
// arguments, sorted by field. Non string values are stored as their JSON text.
func parseStreamValue(value string) ([]interface{}, error) {
	var obj map[string]interface{}
	if err := sonic.ConfigStd.UnmarshalFromString(value, &obj); err != nil {
		return nil, errors.Wrapf(common.ErrValueParse, "stream value is not a JSON object: %v", err)
	}
	if len(obj) == 0 {
		return nil, errors.Wrap(common.ErrValueParse, "stream value needs at least one field")
	}

	fields := make([]string, 0, len(obj))
	for f := range obj {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	args := make([]interface{}, 0, 2*len(fields))
	for _, f := range fields {
		v, ok := obj[f].(string)
		if !ok {
			encoded, err := sonic.ConfigStd.MarshalToString(obj[f])
			if err != nil {
				return nil, errors.Wrapf(common.ErrValueParse, "field %q: %v", f, err)
			}
			v = encoded
		}
		args = append(args, f, v)
	}
	return args, nil
}

// --------------------------------------------------------------------------
// TTL and rename
// --------------------------------------------------------------------------

// SetTTL sets the remaining lifetime of key in seconds. -1 makes the key
// persistent, values below -1 fail with common.ErrInvalidTTL.
func (d *Dispatcher) SetTTL(ctx context.Context, id string, db int, key string, ttl int64) error {
	return d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		if ttl < ttlPersistent {
			return errors.Wrapf(common.ErrInvalidTTL, "ttl %d", ttl)
		}
		if ttl == ttlPersistent {
			return c.Process(ctx, redis.NewBoolCmd(ctx, "persist", key))
		}
		return c.Process(ctx, redis.NewBoolCmd(ctx, "expire", key, ttl))
	})
}

// RenameKey renames key to newKey. An existing newKey is never overwritten,
// the call fails with common.ErrKeyExists instead.
func (d *Dispatcher) RenameKey(ctx context.Context, id string, db int, key, newKey string) error {
	return d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		cmd := redis.NewBoolCmd(ctx, "renamenx", key, newKey)
		if err := c.Process(ctx, cmd); err != nil {
			return err
		}
		if !cmd.Val() {
			return errors.Wrapf(common.ErrKeyExists, "rename %q to %q", key, newKey)
		}
		return nil
	})
}
