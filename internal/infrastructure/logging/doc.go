// Package logging provides structured logging using uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output for human readability
//
// Components take a *Logger and scope it with Named, so one process-wide
// configuration fans out to per-component sub-loggers.
//
// Example:
//
//	log := logging.NewDefault().Named("bridge")
//	log.Info("connection accepted", zap.String("remote", addr))
package logging
