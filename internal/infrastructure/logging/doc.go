// Package logging builds the hub's structured logger on uber/zap.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Example Usage:
//
//	logger := logging.New("info", false)
//	logger.Info("Backend loaded", zap.String("backend", name))
//	logger.Error("Reload failed", zap.Error(err))
package logging
