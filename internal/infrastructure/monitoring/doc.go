/*
Package monitoring provides Prometheus metrics for the playground.

# Overview

Each Metrics value owns a registry, so tests and multiple servers in one
process never collide on registration. Tracked series:

  - HTTP requests (count and latency, by route template)
  - snippet runs by source and status, run latency, output size
  - assembled document size and uncaught script errors
  - sandbox pool utilisation
  - WebSocket connections and messages

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "http")
	// ... run the snippet ...
	timer.Stop(monitoring.StatusOK, len(output), 0)
*/
package monitoring
