// Package redistest provides fixtures for tests that need a live server.
//
// Servers are backed by miniredis and shut down automatically at the end of the test:
//
//	m, cfg := redistest.NewServer(t)
//	c, err := conn.Open(ctx, cfg, redistest.ClientConfig(), nil)
package redistest
