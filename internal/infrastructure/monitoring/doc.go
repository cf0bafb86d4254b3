/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the shell
service, tracking HTTP requests, shell operations, surface lifecycle,
bridge traffic, and system metrics.

# Features

- HTTP request metrics (latency, throughput, size)
- Shell operation metrics (duration, errors)
- Organization metrics (tabs, realms, docks)
- Surface lifecycle metrics (visible, hidden, mounting, crashes)
- Session snapshot metrics
- Bridge connection and message metrics
- Agent call metrics (latency, status codes)
- System metrics (uptime)

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record custom metrics
	metrics.SetTabsOpen(5)
	metrics.IncSurfaceCrashes()

	// Time operations
	timer := monitoring.NewTimer(metrics, "navigate")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the standard Prometheus endpoint:

	import "github.com/prometheus/client_golang/prometheus/promhttp"
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
*/
package monitoring
