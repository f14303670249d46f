// Package keys implements the type aware key operations of a session.
//
// Every operation names a session id and, where relevant, a logical database.
// The Dispatcher borrows the session from the registry, selects the database
// and translates the request into commands:
//
//	d := keys.NewDispatcher(registry)
//	detail, err := d.KeyDetail(ctx, "local", 0, "user:1")
//	err = d.SetKey(ctx, "local", 0, keys.WriteRequest{Type: keys.TypeHash, Key: "user:1", Field: "name", Value: "alice"})
//
// Supported types are string, list, set, zset, hash and stream. Other type tags,
// including "none" for missing keys, fail with common.ErrUnsupportedKeyType.
//
// Cluster sessions:
//
//	Commands that have no key (listing keys, pattern deletes, FLUSHDB, INFO) are
//	fanned out. The masters are taken from CLUSTER NODES and visited one after
//	another on transient connections. Failures are collected into one error,
//	work done on healthy masters is kept.
package keys
