// Package ws provides WebSocket handling for streamed snippet runs.
//
// A client sends a snippet and receives each output line as soon as the
// document writes it, followed by a completion message.
//
// Message Types (Client → Server):
//   - run: Assemble, bridge and load a snippet
//   - ping: Keep-alive ping
//
// Message Types (Server → Client):
//   - system: Connection established, carries the connection id
//   - output: One complete output line of a run
//   - done: Run finished, with status and script errors
//   - pong: Reply to ping
//   - error: Invalid message or rejected run
//
// Example Usage:
//
//	handler := ws.NewHandler(assembler, pool, metrics, logger, cfg.Server.AllowOrigins)
//	router.GET("/stream", handler.HandleConnection)
package ws
