package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/gedis/lib/audit"
	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/ValentinKolb/gedis/lib/redistest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// fakeConn counts closes and never talks to a server
type fakeConn struct {
	closed atomic.Int32
}

func (f *fakeConn) Process(context.Context, redis.Cmder) error             { return nil }
func (f *fakeConn) ProcessPipeline(context.Context, ...redis.Cmder) error { return nil }
func (f *fakeConn) Select(context.Context, int) error                     { return nil }
func (f *fakeConn) SelectedDB() int                                        { return 0 }
func (f *fakeConn) Clustered() bool                                        { return false }
func (f *fakeConn) Close() error {
	f.closed.Add(1)
	return nil
}

// fakeRegistry returns a registry whose sessions are fakeConns
func fakeRegistry() (*Registry, *[]*fakeConn) {
	var mu sync.Mutex
	var conns []*fakeConn
	r := NewRegistry(common.DefaultClientConfig(), nil).WithOpenFunc(
		func(context.Context, common.SessionConfig, common.ClientConfig, conn.Recorder) (conn.Conn, error) {
			mu.Lock()
			defer mu.Unlock()
			c := &fakeConn{}
			conns = append(conns, c)
			return c, nil
		})
	return r, &conns
}

func TestOpenAndClose(t *testing.T) {
	ctx := context.Background()
	m, cfg := redistest.NewServer(t)
	r := NewRegistry(redistest.ClientConfig(), audit.New())

	require.NoError(t, r.Open(ctx, cfg))
	assert.True(t, r.Exists(cfg.ID))
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, []string{cfg.ID}, r.IDs())

	err := r.With(cfg.ID, func(c conn.Conn, got common.SessionConfig) error {
		assert.Equal(t, cfg, got)
		_, err := conn.Execute(ctx, c, "set", "k", "v")
		return err
	})
	require.NoError(t, err)
	assert.True(t, m.Exists("k"))

	require.NoError(t, r.Close(cfg.ID))
	assert.False(t, r.Exists(cfg.ID))
	assert.Equal(t, 0, r.Len())

	err = r.With(cfg.ID, func(conn.Conn, common.SessionConfig) error { return nil })
	assert.ErrorIs(t, err, common.ErrSessionNotFound)

	// closing twice or closing an unknown id is fine
	assert.NoError(t, r.Close(cfg.ID))
	assert.NoError(t, r.Close("never-opened"))
}

func TestUnknownSession(t *testing.T) {
	r := NewRegistry(common.DefaultClientConfig(), nil)
	called := false
	err := r.With("nope", func(conn.Conn, common.SessionConfig) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	assert.False(t, called)
	assert.False(t, r.Exists("nope"))
}

func TestOpenFailureRegistersNothing(t *testing.T) {
	ctx := context.Background()
	cfg := redistest.DeadSession(t)
	r := NewRegistry(redistest.ClientConfig(), nil)

	err := r.Open(ctx, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrConnection)
	assert.False(t, r.Exists(cfg.ID))
	assert.Equal(t, 0, r.Len())
}

func TestOpenReplacesExisting(t *testing.T) {
	ctx := context.Background()
	r, conns := fakeRegistry()
	cfg := common.SessionConfig{ID: "a", Host: "localhost"}

	require.NoError(t, r.Open(ctx, cfg))
	require.NoError(t, r.Open(ctx, cfg))

	require.Len(t, *conns, 2)
	assert.Equal(t, int32(1), (*conns)[0].closed.Load())
	assert.Equal(t, int32(0), (*conns)[1].closed.Load())
	assert.Equal(t, 1, r.Len())

	// borrows see the newest connection
	err := r.With("a", func(c conn.Conn, _ common.SessionConfig) error {
		assert.Same(t, (*conns)[1], c)
		return nil
	})
	require.NoError(t, err)
}

func TestOpenReplacesAcrossServers(t *testing.T) {
	ctx := context.Background()
	first, cfg := redistest.NewServer(t)
	second, other := redistest.NewServer(t)
	r := NewRegistry(redistest.ClientConfig(), nil)

	require.NoError(t, r.Open(ctx, cfg))
	other.ID = cfg.ID
	require.NoError(t, r.Open(ctx, other))

	err := r.With(cfg.ID, func(c conn.Conn, _ common.SessionConfig) error {
		_, err := conn.Execute(ctx, c, "set", "where", "second")
		return err
	})
	require.NoError(t, err)
	assert.False(t, first.Exists("where"))
	assert.True(t, second.Exists("where"))
}

func TestTestDoesNotRegister(t *testing.T) {
	ctx := context.Background()
	_, cfg := redistest.NewServer(t)
	r := NewRegistry(redistest.ClientConfig(), nil)

	require.NoError(t, r.Test(ctx, cfg))
	assert.False(t, r.Exists(cfg.ID))

	assert.ErrorIs(t, r.Test(ctx, redistest.DeadSession(t)), common.ErrConnection)
}

func TestCloseAll(t *testing.T) {
	ctx := context.Background()
	r, conns := fakeRegistry()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, r.Open(ctx, common.SessionConfig{ID: id}))
	}
	assert.Equal(t, []string{"a", "b", "c"}, r.IDs())

	require.NoError(t, r.CloseAll())
	assert.Equal(t, 0, r.Len())
	for _, c := range *conns {
		assert.Equal(t, int32(1), c.closed.Load())
	}
}

func TestBorrowsAreSerialized(t *testing.T) {
	ctx := context.Background()
	r, _ := fakeRegistry()
	require.NoError(t, r.Open(ctx, common.SessionConfig{ID: "a"}))

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.With("a", func(conn.Conn, common.SessionConfig) error {
				v := counter
				time.Sleep(time.Microsecond)
				counter = v + 1
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestCloseWaitsForBorrow(t *testing.T) {
	ctx := context.Background()
	r, conns := fakeRegistry()
	require.NoError(t, r.Open(ctx, common.SessionConfig{ID: "a"}))

	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = r.With("a", func(conn.Conn, common.SessionConfig) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	closed := make(chan struct{})
	go func() {
		_ = r.Close("a")
		close(closed)
	}()

	select {
	case <-closed:
		t.Fatal("close returned while a command was running")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, int32(0), (*conns)[0].closed.Load())

	close(release)
	<-closed
	assert.Equal(t, int32(1), (*conns)[0].closed.Load())
	assert.False(t, r.Exists("a"))
}

func TestIndependentSessionsDoNotBlock(t *testing.T) {
	ctx := context.Background()
	r, _ := fakeRegistry()
	require.NoError(t, r.Open(ctx, common.SessionConfig{ID: "slow"}))
	require.NoError(t, r.Open(ctx, common.SessionConfig{ID: "fast"}))

	inside := make(chan struct{})
	release := make(chan struct{})
	defer close(release)
	go func() {
		_ = r.With("slow", func(conn.Conn, common.SessionConfig) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	done := make(chan error, 1)
	go func() {
		done <- r.With("fast", func(conn.Conn, common.SessionConfig) error { return nil })
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("borrow of an idle session blocked on another session")
	}
}

func TestBorrowFollowsReplacedSession(t *testing.T) {
	ctx := context.Background()
	r, conns := fakeRegistry()
	require.NoError(t, r.Open(ctx, common.SessionConfig{ID: "a"}))
	old, ok := r.sessions.Load("a")
	require.True(t, ok)

	// keep the old session busy so the borrower queues on it
	old.mu.Lock()
	got := make(chan conn.Conn, 1)
	done := make(chan error, 1)
	go func() {
		done <- r.With("a", func(c conn.Conn, _ common.SessionConfig) error {
			got <- c
			return nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	// replace the entry the way Open does, then release the old one closed
	next := &fakeConn{}
	r.sessions.Store("a", &session{config: common.SessionConfig{ID: "a"}, conn: next})
	old.closed = true
	_ = old.conn.Close()
	old.mu.Unlock()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("borrow did not finish")
	}
	assert.Same(t, next, <-got)
	assert.Equal(t, int32(1), (*conns)[0].closed.Load())
}

func TestBorrowOfClosedSession(t *testing.T) {
	ctx := context.Background()
	r, _ := fakeRegistry()
	require.NoError(t, r.Open(ctx, common.SessionConfig{ID: "a"}))
	s, ok := r.sessions.Load("a")
	require.True(t, ok)
	s.closed = true

	called := false
	err := r.With("a", func(conn.Conn, common.SessionConfig) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, common.ErrSessionNotFound)
	assert.False(t, called)
}

// failingConn fails to close
type failingConn struct {
	fakeConn
	err error
}

func (f *failingConn) Close() error {
	f.fakeConn.Close()
	return f.err
}

func TestCloseAllCombinesErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	var conns []*failingConn
	r := NewRegistry(common.DefaultClientConfig(), nil).WithOpenFunc(
		func(context.Context, common.SessionConfig, common.ClientConfig, conn.Recorder) (conn.Conn, error) {
			c := &failingConn{err: boom}
			conns = append(conns, c)
			return c, nil
		})
	for _, id := range []string{"a", "b"} {
		require.NoError(t, r.Open(ctx, common.SessionConfig{ID: id}))
	}

	err := r.CloseAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Contains(t, err.Error(), `close "a"`)
	assert.Contains(t, err.Error(), `close "b"`)
	assert.Equal(t, 0, r.Len())
	for _, c := range conns {
		assert.Equal(t, int32(1), c.closed.Load())
	}
}
