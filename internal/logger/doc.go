// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a plain console encoder,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and a per-logger level option,
//   - convenience functions (Infof, InfoKV, etc.).
//
// Drivers and state actions receive a context and extract the logger from it,
// so every line written by the switch goes through the same sink.
package logger
