// Package version exposes build metadata for the launcher binary itself.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. The launcher
// never prints these on the normal path — "flutter version" belongs to the
// downstream tool — they surface only in debug logs.
package version
