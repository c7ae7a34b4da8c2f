// Package ipc carries requests between the CLI and the daemon over a unix
// socket using JSON-RPC. The server wraps the daemon and its engine; the
// client offers typed wrappers for every exposed method.
package ipc
