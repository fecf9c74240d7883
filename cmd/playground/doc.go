// Command playground runs snippets against the bound function library.
//
// Usage:
//
//	playground serve                 Start the HTTP and WebSocket API
//	playground render [file]         Print the render target reference of a snippet
//	playground render --markup file  Print the hosting page instead
//	playground run [file]            Run a snippet and print its output lines
//	playground watch file [glob...]  Re-run a snippet whenever a matching file is written
//
// Snippets are read from stdin when no file is given or the file is "-".
// Server settings come from the environment (PORT, HOST, LOG_LEVEL,
// SANDBOX_TIMEOUT, LIBRARY_URL, ...), with flags taking precedence.
package main
