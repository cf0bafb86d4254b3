// Package agent connects the shell to the command-execution service.
//
// The service receives free-form command text plus the active tab's URL and
// answers with a single action for the shell to apply. This package owns the
// gRPC plumbing: connection management, keepalive, a circuit breaker around
// calls, and validation of the responses before they reach the shell.
package agent
