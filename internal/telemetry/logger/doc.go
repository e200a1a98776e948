// Package logger provides structured logging for sipkv.
//
// This package wraps zap for structured logging:
//
//   - logger.go: the Logger interface, global level, and package helpers
//   - zap.go: encoder and sink construction (stderr or a rotating file)
//
// Features:
//
//   - JSON and text output formats
//   - Runtime level changes through SetLevel
//   - Optional file output with size-based rotation via lumberjack
package logger
