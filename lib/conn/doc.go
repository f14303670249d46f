// Package conn provides the connection handle of a session.
//
// A session is either connected to a single server (direct) or to a Redis
// Cluster (cluster). Both variants implement Conn and are chosen once when the
// session is opened:
//
//	c, err := conn.Open(ctx, cfg, clientCfg, auditLog)
//	if err != nil {
//		return err // matches common.ErrConnection
//	}
//	defer c.Close()
//	reply, err := conn.Execute(ctx, c, "get", "user:1")
//
// Every command and pipeline sent through a Conn is passed to the Recorder given
// to Open before it reaches the server. Transport failures are returned as
// *common.ConnectionError, error replies of the server are returned unchanged.
package conn
