// Package logger builds the zap logger shared by the CLI and the HTTP server.
//
// Level selects between zap's development (debug) and production presets.
// Format picks console or JSON output on stderr. When File is set, JSON logs
// are also written to a size-rotated file through lumberjack.
//
// WithRayID tags a logger with the request id stored by the rayid
// middleware:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Sync failed", zap.Error(err))
package logger
