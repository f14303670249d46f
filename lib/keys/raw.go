package keys

import (
	"context"
	"fmt"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RunRaw sends a command given as plain arguments and returns the reply as
// presentation data: nil replies become "", integers stay int64, strings and
// status replies become string, arrays become []interface{} (recursively).
// An empty argument list on a known session returns "" without contacting
// the server.
func (d *Dispatcher) RunRaw(ctx context.Context, id string, db int, args []string) (interface{}, error) {
	var reply interface{}
	err := d.sessions.With(id, func(c conn.Conn, _ common.SessionConfig) error {
		if len(args) == 0 {
			reply = ""
			return nil
		}
		if err := c.Select(ctx, db); err != nil {
			return err
		}

		cmdArgs := make([]interface{}, len(args))
		for i, a := range args {
			cmdArgs[i] = a
		}
		cmd := redis.NewCmd(ctx, cmdArgs...)
		err := c.Process(ctx, cmd)
		if errors.Is(err, redis.Nil) {
			reply = ""
			return nil
		}
		if err != nil {
			return err
		}
		reply = convertReply(cmd.Val())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reply, nil
}

// convertReply maps a decoded reply onto strings, int64 and nested slices
func convertReply(v interface{}) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case int64:
		return val
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, elem := range val {
			out[i] = convertReply(elem)
		}
		return out
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, elem := range val {
			out[fmt.Sprint(k)] = convertReply(elem)
		}
		return out
	case error:
		// error replies nested in arrays, e.g. inside EXEC
		return val.Error()
	default:
		return val
	}
}
