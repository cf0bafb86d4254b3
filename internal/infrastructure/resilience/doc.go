/*
Package resilience provides fault-tolerance primitives for outbound calls.

# Overview

The shell talks to two external parties that can fail independently of it:
the agent service over gRPC and arbitrary web servers during favicon
fetches. A circuit breaker wraps each so that a dead dependency degrades
the feature instead of stalling every caller behind timeouts.

# Usage

	breaker := resilience.New("agent", resilience.Config{
		TripAfter: 5,
		Timeout:   30 * time.Second,
	})

	result, err := breaker.Execute(func() (interface{}, error) {
		return client.Call(ctx, req)
	})
	if err == resilience.ErrCircuitOpen {
		// dependency is down, skip the call
	}

# States

Closed passes requests through and counts failures. After TripAfter
consecutive failures the breaker opens and fails fast for Timeout. It then
admits up to MaxRequests probe requests (half-open); if they all succeed
the breaker closes again, and a single failure reopens it.
*/
package resilience
