package redistest

import (
	"strconv"
	"testing"

	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/alicebob/miniredis/v2"
)

// NewServer starts an in-process server that is stopped when the test ends.
// The returned session config points at it.
func NewServer(t testing.TB) (*miniredis.Miniredis, common.SessionConfig) {
	t.Helper()
	m := miniredis.RunT(t)
	return m, SessionFor(t, m, "local")
}

// SessionFor returns a session config for m with the given id, the id doubles as name
func SessionFor(t testing.TB, m *miniredis.Miniredis, id string) common.SessionConfig {
	t.Helper()
	port, err := strconv.Atoi(m.Port())
	if err != nil {
		t.Fatalf("invalid miniredis port %q: %v", m.Port(), err)
	}
	return common.SessionConfig{
		ID:        id,
		Name:      id,
		Host:      m.Host(),
		Port:      port,
		Delimiter: common.DefaultDelimiter,
	}
}

// ClientConfig returns a client config with a short dial timeout
func ClientConfig() common.ClientConfig {
	cfg := common.DefaultClientConfig()
	cfg.DialTimeoutSecond = 1
	return cfg
}

// DeadSession returns a session config for an address nobody listens on
func DeadSession(t testing.TB) common.SessionConfig {
	t.Helper()
	m := miniredis.RunT(t)
	cfg := SessionFor(t, m, "dead")
	m.Close()
	return cfg
}
