// Package main is the entry point for the marina shell process.
//
// This process is the coordination core of the browser: it owns the
// organization store (realms, docks, tabs), the surface lifecycle
// coordinator, navigation history tracking, and gesture detection,
// and serves the UI process over a websocket bridge.
//
// Architecture:
//
//	UI process (chrome + embedded surfaces) ⇄ shell (this binary)
//	                                        → agent service (gRPC)
//
// The shell provides:
//   - Websocket bridge for tab state and surface control
//   - Diagnostics REST API (state, stats, metrics)
//   - Session persistence with debounced autosave
//   - Favicon/title resolution pipeline
//
// Configuration:
//   - Optional YAML config file (-config)
//   - Environment variables (MARINA_*) override the file
//   - CLI flags override both
//
// Usage:
//
//	# Production mode
//	./shell -port 8220
//
//	# Development mode (colored logs, debug level)
//	./shell -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown (flushes the session snapshot)
package main
