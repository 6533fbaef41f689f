// Package logging provides structured logging with per-module log level configuration.
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to the systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"msp":       "debug", // Per-module overrides
//			"scheduler": "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("msp")
//	logger.Info("Link up", "port", "/dev/ttyS2")
//
// When running as a systemd service:
//
//	journalctl -t msposd              # All msposd logs
//	journalctl -t msposd -f           # Follow live
//	journalctl -t msposd MODULE=msp   # Filter by structured field
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//
//	[logging.modules]
//	msp = "debug"
//	backend = "warn"
package logging
