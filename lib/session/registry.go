package session

import (
	"context"
	"sort"
	"sync"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/conn"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"
)

var Logger = logger.GetLogger("session")

// OpenFunc creates the connection of a new session
type OpenFunc func(ctx context.Context, cfg common.SessionConfig, clientCfg common.ClientConfig, recorder conn.Recorder) (conn.Conn, error)

// session is one registry entry. mu serializes all use of conn, closed is
// set once the entry left the registry.
type session struct {
	mu     sync.Mutex
	config common.SessionConfig
	conn   conn.Conn
	closed bool
}

// close releases the connection once all borrowers are done
func (s *session) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.conn.Close()
}

// Registry maps session ids to live connections. The map is only touched to
// insert and remove entries, commands hold the lock of their own session, so
// a slow command never blocks other sessions.
type Registry struct {
	config   common.ClientConfig
	recorder conn.Recorder
	open     OpenFunc
	sessions *xsync.MapOf[string, *session]
}

// NewRegistry creates an empty registry. recorder receives every command
// of every session and may be nil.
func NewRegistry(config common.ClientConfig, recorder conn.Recorder) *Registry {
	return &Registry{
		config:   config,
		recorder: recorder,
		open:     conn.Open,
		sessions: xsync.NewMapOf[string, *session](),
	}
}

// WithOpenFunc replaces the connection factory, used by tests
func (r *Registry) WithOpenFunc(open OpenFunc) *Registry {
	r.open = open
	return r
}

// Recorder returns the recorder shared by all sessions
func (r *Registry) Recorder() conn.Recorder {
	return r.recorder
}

// Config returns the client configuration of the registry
func (r *Registry) Config() common.ClientConfig {
	return r.config
}

// Open connects to cfg and registers the connection under cfg.ID. An existing
// session with the same id is replaced and closed. On failure nothing is
// registered and a replaced session stays untouched.
func (r *Registry) Open(ctx context.Context, cfg common.SessionConfig) error {
	c, err := r.open(ctx, cfg, r.config, r.recorder)
	if err != nil {
		return errors.WithMessagef(err, "open session %q", cfg.ID)
	}

	prev, replaced := r.sessions.LoadAndStore(cfg.ID, &session{config: cfg, conn: c})
	common.SessionsOpened.Inc()
	Logger.Infof("opened session %q (%s, cluster=%t)", cfg.ID, cfg.Addr(), cfg.Cluster)

	if replaced {
		Logger.Infof("session %q replaced, closing previous connection", cfg.ID)
		common.SessionsClosed.Inc()
		if err := prev.close(); err != nil {
			Logger.Warningf("closing replaced session %q: %v", cfg.ID, err)
		}
	}
	return nil
}

// Test connects to cfg, sends PING and disconnects without registering anything
func (r *Registry) Test(ctx context.Context, cfg common.SessionConfig) error {
	c, err := r.open(ctx, cfg, r.config, r.recorder)
	if err != nil {
		return errors.WithMessagef(err, "test connection %q", cfg.Addr())
	}
	return c.Close()
}

// Close removes the session and closes its connection. Closing an unknown id
// is not an error. Commands running on the session finish first.
func (r *Registry) Close(id string) error {
	s, ok := r.sessions.LoadAndDelete(id)
	if !ok {
		return nil
	}
	common.SessionsClosed.Inc()
	Logger.Infof("closed session %q", id)
	return s.close()
}

// CloseAll closes every registered session. Failures do not stop the loop,
// they are returned combined.
func (r *Registry) CloseAll() error {
	var errs error
	for _, id := range r.IDs() {
		if err := r.Close(id); err != nil {
			errs = multierr.Append(errs, errors.WithMessagef(err, "close %q", id))
		}
	}
	return errs
}

// Exists reports whether a session is registered under id
func (r *Registry) Exists(id string) bool {
	_, ok := r.sessions.Load(id)
	return ok
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	return r.sessions.Size()
}

// IDs returns the registered session ids in sorted order
func (r *Registry) IDs() []string {
	ids := make([]string, 0, r.sessions.Size())
	r.sessions.Range(func(id string, _ *session) bool {
		ids = append(ids, id)
		return true
	})
	sort.Strings(ids)
	return ids
}

// With borrows the connection of session id for the duration of fn. Calls on
// the same session are serialized. A session replaced by Open while waiting
// is retried once on its successor. Returns common.ErrSessionNotFound if the
// session does not exist or was closed while waiting.
func (r *Registry) With(id string, fn func(c conn.Conn, cfg common.SessionConfig) error) error {
	for attempt := 0; attempt < 2; attempt++ {
		s, ok := r.sessions.Load(id)
		if !ok {
			break
		}
		if done, err := s.borrow(fn); done {
			return err
		}
	}
	return errors.Wrapf(common.ErrSessionNotFound, "id %q", id)
}

// borrow runs fn under the session lock. done is false if the session was
// closed before the lock was acquired.
func (s *session) borrow(fn func(c conn.Conn, cfg common.SessionConfig) error) (done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}
	return true, fn(s.conn, s.config)
}
