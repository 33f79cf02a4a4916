// Package logger provides a small wrapper around zap to offer:
//   - a global sugared logger with a sane console encoder,
//   - context helpers (ToContext/FromContext/WithName),
//   - level configuration and parsing utilities,
//   - convenience functions (Infof, ErrorKV, etc.).
//
// The bootstrap accepts a context everywhere and extracts the logger from it,
// enabling scoped, structured logging throughout the codebase. Messages that
// are part of the launcher's user-facing contract (the one-time lock waiting
// notice, retry countdowns, remediation instructions) are printed to stderr
// directly by their owners; this package carries diagnostics.
package logger
