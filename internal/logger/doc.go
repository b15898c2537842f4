// Package logger provides a simple, thread-safe logging facility.
//
// The logger supports four levels: Debug, Info, Warn, and Error.
// Each log entry includes a timestamp, level, optional source tag
// (typically a worker ID), and message.
//
// # Basic Usage
//
// Using the default logger:
//
//	logger.Info("", "Harness started")
//	logger.Info("worker-1", "Connected to server")
//	logger.Error("worker-1", "Failed: %v", err)
//
// Creating a custom logger:
//
//	l := logger.New(os.Stderr, logger.LevelDebug)
//	l.Debug("worker-1", "Debug message")
//
// # Log Levels
//
// Messages below the configured level are filtered:
//   - LevelDebug: all messages
//   - LevelInfo: Info, Warn, Error
//   - LevelWarn: Warn, Error
//   - LevelError: Error only
//
// # Thread Safety
//
// All logging operations are protected by a mutex and safe for concurrent use.
package logger
