// Package logger wraps zap for the alarm clock binaries:
//   - a global sugared logger with a console encoder and an atomic level,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing and live level changes,
//   - an adapter that routes robfig/cron diagnostics into zap.
//
// Services receive a context and log through it, so names and key-value
// pairs attached upstream follow every message.
package logger
