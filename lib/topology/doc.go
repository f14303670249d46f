// Package topology parses the textual reply of CLUSTER NODES.
//
// Each line carries at least eight whitespace separated fields:
//
//	<id> <host:port@bus> <flags> <master-id> <ping-sent> <pong-recv> <epoch> <link-state> [slot ...]
//
// Fan-out operations use Masters to find the nodes that own data and
// Node.Endpoint to turn the address field into a dialable host and port.
package topology
