// Package cmd implements the command-line interface of gedis. Every invocation
// opens one session, runs a single operation and closes the session again.
//
// The package is organized into several subpackages:
//
//   - key: Commands for key operations (type, get, set, delete, rename, ttl, ...)
//   - server: Commands for server level operations (ping, info, raw commands)
//   - util: Shared utilities for flags, configuration and the session lifecycle (internal use)
//
// Configuration is read from flags, GEDIS_* environment variables, .env files
// and an optional config file with named connections.
//
// See gedis -help for a list of all commands.
package cmd
