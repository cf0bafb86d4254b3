// Package agent provides generated Protocol Buffer types and the gRPC client
// for the command-execution service.
//
// Generated from: proto/agent/agent.proto
//
// This package contains:
//   - AgentServiceClient: gRPC client for command execution
//   - ExecuteRequest/ExecuteResponse types
//
// Services:
//   - Execute: Run one natural-language command against the current shell state
//
// Usage:
//
//	This package is typically wrapped by internal/infrastructure/agent
//	for higher-level Go interfaces.
//
// Note: This is generated code. Do not edit manually.
// Regenerate with: make proto
package agent
