// Package server wires configuration, the sandbox pool, metrics and the
// HTTP and WebSocket handlers into one gin engine.
package server
