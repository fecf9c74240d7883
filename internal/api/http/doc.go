// Package http provides the HTTP handlers of the playground REST API.
//
// Endpoints:
//   - Health: /health
//   - Library: /api/library
//   - Documents: /api/documents (assemble and bridge without running)
//   - Runs: /api/runs (assemble, bridge and load in a pooled sandbox)
//   - Evaluate: /api/evaluate (evaluate a snippet directly)
//   - Metrics: /metrics/json
//
// Snippet failures are part of a successful response: they show up in the
// output lines of a run or the error field of an evaluation. Only invalid
// requests, exhausted sandboxes and timeouts produce error statuses.
//
// Example Usage:
//
//	handlers := http.NewHandlers(assembler, pool, metrics, logger)
//	router.POST("/api/runs", handlers.Run)
package http
