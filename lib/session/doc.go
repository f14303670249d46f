// Package session keeps the live connections of a process, keyed by a caller
// chosen session id.
//
// Usage:
//
//	reg := session.NewRegistry(common.DefaultClientConfig(), audit.New())
//	if err := reg.Open(ctx, cfg); err != nil {
//		return err
//	}
//	defer reg.CloseAll()
//
//	err := reg.With(cfg.ID, func(c conn.Conn, cfg common.SessionConfig) error {
//		_, err := conn.Execute(ctx, c, "ping")
//		return err
//	})
//
// Concurrency:
//
//	The registry map is a lock free xsync.MapOf that is only written on Open
//	and Close. Each session has its own mutex, held for the whole borrow, so
//	commands on one session never wait for another session. Close waits for a
//	running borrow to finish before the connection is released.
package session
