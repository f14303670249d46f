package keys

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// streamPageSize is the number of newest stream entries returned by KeyDetail
const streamPageSize = 200

// KeyDetail returns the full content of key. Streams are cut to the newest
// 200 entries, Size still reports the full length.
func (d *Dispatcher) KeyDetail(ctx context.Context, id string, db int, key string) (KeyDetail, error) {
	var detail KeyDetail
	err := d.withDB(ctx, id, db, func(c conn.Conn, _ common.SessionConfig) error {
		desc, err := describe(ctx, c, key)
		if err != nil {
			return err
		}
		detail.KeyDescriptor = desc

		switch desc.Type {
		case TypeString:
			detail.Value, detail.Size, err = readString(ctx, c, key)
		case TypeList:
			detail.Value, detail.Size, err = readList(ctx, c, key)
		case TypeSet:
			detail.Value, detail.Size, err = readSet(ctx, c, key)
		case TypeZSet:
			detail.Value, detail.Size, err = readZSet(ctx, c, key)
		case TypeHash:
			detail.Value, detail.Size, err = readHash(ctx, c, key)
		case TypeStream:
			detail.Value, detail.Size, err = readStream(ctx, c, key)
		}
		return err
	})
	if err != nil {
		return KeyDetail{}, err
	}
	Logger.Debugf("read %s %q (%d elements)", detail.Type, key, detail.Size)
	return detail, nil
}

func readString(ctx context.Context, c conn.Conn, key string) (KeyValue, int64, error) {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if err := c.Process(ctx, cmd); err != nil {
		return nil, 0, err
	}
	val := cmd.Val()
	return StringValue(val), int64(len(val)), nil
}

func readList(ctx context.Context, c conn.Conn, key string) (KeyValue, int64, error) {
	count := redis.NewIntCmd(ctx, "llen", key)
	if err := c.Process(ctx, count); err != nil {
		return nil, 0, err
	}
	items := redis.NewStringSliceCmd(ctx, "lrange", key, 0, count.Val()-1)
	if err := c.Process(ctx, items); err != nil {
		return nil, 0, err
	}
	return ListValue(items.Val()), count.Val(), nil
}

func readSet(ctx context.Context, c conn.Conn, key string) (KeyValue, int64, error) {
	count := redis.NewIntCmd(ctx, "scard", key)
	if err := c.Process(ctx, count); err != nil {
		return nil, 0, err
	}

	members := make(SetValue, 0, count.Val())
	seen := make(map[string]struct{}, count.Val())
	err := scan(ctx, c, func(cursor uint64) []interface{} {
		return []interface{}{"sscan", key, cursor, "match", "*", "count", scanCount}
	}, func(page []string) {
		for _, m := range page {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				members = append(members, m)
			}
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return members, count.Val(), nil
}

func readZSet(ctx context.Context, c conn.Conn, key string) (KeyValue, int64, error) {
	count := redis.NewIntCmd(ctx, "zcard", key)
	if err := c.Process(ctx, count); err != nil {
		return nil, 0, err
	}
	items := redis.NewZSliceCmd(ctx, "zrange", key, 0, count.Val()-1, "withscores")
	if err := c.Process(ctx, items); err != nil {
		return nil, 0, err
	}

	members := make(ZSetValue, 0, len(items.Val()))
	for _, z := range items.Val() {
		members = append(members, ZMember{Score: z.Score, Member: fmt.Sprint(z.Member)})
	}
	return members, int64(len(members)), nil
}

func readHash(ctx context.Context, c conn.Conn, key string) (KeyValue, int64, error) {
	count := redis.NewIntCmd(ctx, "hlen", key)
	if err := c.Process(ctx, count); err != nil {
		return nil, 0, err
	}

	fields := make(HashValue, count.Val())
	err := scan(ctx, c, func(cursor uint64) []interface{} {
		return []interface{}{"hscan", key, cursor, "match", "*", "count", scanCount}
	}, func(page []string) {
		for i := 0; i+1 < len(page); i += 2 {
			fields[page[i]] = page[i+1]
		}
	})
	if err != nil {
		return nil, 0, err
	}
	return fields, count.Val(), nil
}

func readStream(ctx context.Context, c conn.Conn, key string) (KeyValue, int64, error) {
	count := redis.NewIntCmd(ctx, "xlen", key)
	if err := c.Process(ctx, count); err != nil {
		return nil, 0, err
	}
	msgs := redis.NewXMessageSliceCmd(ctx, "xrevrange", key, "+", "-", "count", streamPageSize)
	if err := c.Process(ctx, msgs); err != nil {
		return nil, 0, err
	}

	entries := make(StreamValue, 0, len(msgs.Val()))
	for _, msg := range msgs.Val() {
		fields := make(map[string]string, len(msg.Values))
		for k, v := range msg.Values {
			fields[k] = fmt.Sprint(v)
		}
		encoded, err := sonic.ConfigStd.MarshalToString(fields)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "encode stream entry %s", msg.ID)
		}
		entries = append(entries, StreamEntry{ID: msg.ID, Value: encoded})
	}
	return entries, count.Val(), nil
}

// --------------------------------------------------------------------------
// Key enumeration
// --------------------------------------------------------------------------

// ListKeys returns every key of the database. Cluster sessions collect the
// keys of all masters.
func (d *Dispatcher) ListKeys(ctx context.Context, id string, db int) ([]string, error) {
	return d.MatchKeys(ctx, id, db, "*")
}

// MatchKeys returns every key matching the glob pattern
func (d *Dispatcher) MatchKeys(ctx context.Context, id string, db int, pattern string) ([]string, error) {
	var keys []string
	err := d.withDB(ctx, id, db, func(c conn.Conn, cfg common.SessionConfig) error {
		if !c.Clustered() {
			var err error
			keys, err = scanKeys(ctx, c, pattern)
			return err
		}
		return d.forEachMaster(ctx, c, cfg, func(_ string, node conn.Conn) error {
			nodeKeys, err := scanKeys(ctx, node, pattern)
			keys = append(keys, nodeKeys...)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// scanKeys iterates SCAN MATCH pattern until the cursor wraps
func scanKeys(ctx context.Context, c conn.Conn, pattern string) ([]string, error) {
	var keys []string
	seen := make(map[string]struct{})
	err := scan(ctx, c, func(cursor uint64) []interface{} {
		return []interface{}{"scan", cursor, "match", pattern, "count", scanCount}
	}, func(page []string) {
		for _, k := range page {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	})
	return keys, err
}

// scan drives a SCAN family command. args builds the command for a cursor,
// page receives the elements of each reply.
func scan(ctx context.Context, c conn.Conn, args func(cursor uint64) []interface{}, page func([]string)) error {
	var cursor uint64
	for {
		cmd := redis.NewScanCmd(ctx, c.Process, args(cursor)...)
		if err := c.Process(ctx, cmd); err != nil {
			return err
		}
		elems, next := cmd.Val()
		page(elems)
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
