// Package client provides the shared outbound HTTP client.
//
// All web fetches the shell performs on its own behalf (favicon and page
// metadata retrieval) go through one resty client built on a retryablehttp
// transport, with a per-host rate limiter and a circuit breaker in front.
// Surfaces load pages in the UI process; this client never touches page
// traffic.
package client
