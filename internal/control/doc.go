// Package control implements the launcher's local control surface.
//
// A running launcher listens on a Unix domain socket for JSON-encoded
// commands. Each connection carries a single request-response exchange:
// the client sends a newline-delimited envelope, the server dispatches the
// command, and writes the result back before closing the connection.
//
// Supported commands are status (launcher uptime, node ID, and per-instance
// measurement state) and stop (graceful shutdown). The client half of the
// package backs the status and stop CLI commands.
package control
