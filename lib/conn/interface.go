package conn

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NoDatabase is reported by SelectedDB of clustered connections,
// cluster mode has no logical databases.
const NoDatabase = -1

// Conn is a live connection of a session. Direct connections talk to a
// single server over one dedicated connection, so a selected database sticks
// to every following command. Cluster connections route each command by key
// slot and treat Select as a no-op.
//
// Conn is not safe for concurrent use, the session registry serializes access.
type Conn interface {
	// Process sends a single command and stores the reply in cmd
	Process(ctx context.Context, cmd redis.Cmder) error

	// ProcessPipeline sends all commands in one round trip. The replies are
	// stored in the commands, the returned error is the first failure.
	ProcessPipeline(ctx context.Context, cmds ...redis.Cmder) error

	// Select switches the logical database, a no-op for clustered connections
	Select(ctx context.Context, db int) error

	// SelectedDB returns the currently selected database or NoDatabase
	SelectedDB() int

	// Clustered reports whether this is a cluster connection
	Clustered() bool

	// Close releases the connection, it is unusable afterwards
	Close() error
}

// Recorder receives every command sent through a connection
type Recorder interface {
	Record(label string, args []interface{})
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// Execute sends an arbitrary command and returns the decoded reply
func Execute(ctx context.Context, c Conn, args ...interface{}) (interface{}, error) {
	cmd := redis.NewCmd(ctx, args...)
	err := c.Process(ctx, cmd)
	return cmd.Val(), err
}

// Ping checks that the server answers
func Ping(ctx context.Context, c Conn) error {
	return c.Process(ctx, redis.NewStatusCmd(ctx, "ping"))
}
