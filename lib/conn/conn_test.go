package conn

import (
	"context"
	"testing"

	"github.com/ValentinKolb/gedis/lib/audit"
	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/redistest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDirect(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)

	c, err := Open(ctx, cfg, redistest.ClientConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.False(t, c.Clustered())
	assert.Equal(t, 0, c.SelectedDB())

	_, err = Execute(ctx, c, "set", "greeting", "hello")
	require.NoError(t, err)

	val, err := m.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	reply, err := Execute(ctx, c, "get", "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestSelectSticks(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)

	c, err := Open(ctx, cfg, redistest.ClientConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Select(ctx, 3))
	assert.Equal(t, 3, c.SelectedDB())

	// several commands after the select all land in database 3
	for _, key := range []string{"a", "b", "c"} {
		_, err = Execute(ctx, c, "set", key, "1")
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []string{"a", "b", "c"}, m.DB(3).Keys())
	assert.Empty(t, m.DB(0).Keys())

	assert.Error(t, c.Select(ctx, -1))
	assert.Equal(t, 3, c.SelectedDB())
}

func TestProcessPipeline(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)
	m.HSet("h", "f", "v")

	c, err := Open(ctx, cfg, redistest.ClientConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	typ := redis.NewStatusCmd(ctx, "type", "h")
	ttl := redis.NewIntCmd(ctx, "ttl", "h")
	require.NoError(t, c.ProcessPipeline(ctx, typ, ttl))

	assert.Equal(t, "hash", typ.Val())
	assert.Equal(t, int64(-1), ttl.Val())

	require.NoError(t, c.ProcessPipeline(ctx))
}

func TestServerErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)
	require.NoError(t, m.Set("plain", "x"))

	c, err := Open(ctx, cfg, redistest.ClientConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = Execute(ctx, c, "lpush", "plain", "y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WRONGTYPE")
	assert.NotErrorIs(t, err, common.ErrConnection)

	// a missing key is a nil reply, not a failure of the connection
	_, err = Execute(ctx, c, "get", "missing")
	assert.ErrorIs(t, err, redis.Nil)
}

func TestOpenRefused(t *testing.T) {
	ctx := context.Background()
	cfg := redistest.DeadSession(t)

	c, err := Open(ctx, cfg, redistest.ClientConfig(), nil)
	require.Error(t, err)
	assert.Nil(t, c)
	assert.ErrorIs(t, err, common.ErrConnection)
}

func TestOpenNode(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)

	c, err := OpenNode(ctx, cfg, redistest.ClientConfig(), cfg.Host, cfg.Port, nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = Execute(ctx, c, "set", "node", "1")
	require.NoError(t, err)
	assert.True(t, m.Exists("node"))

	_, err = OpenNode(ctx, cfg, redistest.ClientConfig(), cfg.Host, 1, nil)
	assert.ErrorIs(t, err, common.ErrConnection)
}

func TestCommandsAreRecorded(t *testing.T) {
	ctx := context.Background()
	_, cfg := redistest.NewServer(t)
	cfg.Name = "Local Dev"
	log := audit.New()

	c, err := Open(ctx, cfg, redistest.ClientConfig(), log)
	require.NoError(t, err)
	defer c.Close()

	_, err = Execute(ctx, c, "SET", "User:1", "Alice")
	require.NoError(t, err)
	require.NoError(t, c.ProcessPipeline(ctx,
		redis.NewStatusCmd(ctx, "type", "User:1"),
		redis.NewIntCmd(ctx, "ttl", "User:1"),
	))
	require.NoError(t, c.Process(ctx, redis.NewScanCmd(ctx, c.Process, "scan", 0, "match", "*")))

	assert.Equal(t, []string{
		"[Local Dev] ping",
		"[Local Dev] set user:1 alice",
		"[Local Dev] type user:1",
		"[Local Dev] ttl user:1",
		"[Local Dev] scan match *",
	}, log.Snapshot())
}

func TestClusterConn(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)
	cfg.Cluster = true

	c, err := Open(ctx, cfg, redistest.ClientConfig(), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Clustered())
	assert.Equal(t, NoDatabase, c.SelectedDB())

	// select is accepted and ignored
	require.NoError(t, c.Select(ctx, 4))
	assert.Equal(t, NoDatabase, c.SelectedDB())

	_, err = Execute(ctx, c, "set", "slot:key", "v")
	require.NoError(t, err)
	assert.True(t, m.Exists("slot:key"))
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "prod", Label(common.SessionConfig{ID: "1", Name: "prod"}))
	assert.Equal(t, "1", Label(common.SessionConfig{ID: "1"}))
	assert.Equal(t, "h:6379", Label(common.SessionConfig{Host: "h"}))
}

func TestHandshakeIsNotRecorded(t *testing.T) {
	ctx := context.Background()
	log := audit.New()
	h := newAuditHook("secret", log)

	h.record(redis.NewStatusCmd(ctx, "HELLO", 2, "AUTH", "admin", "hunter2"))
	h.record(redis.NewStatusCmd(ctx, "auth", "hunter2"))
	h.record(redis.NewStatusCmd(ctx, "ping"))

	assert.Equal(t, []string{"[secret] ping"}, log.Snapshot())
}
