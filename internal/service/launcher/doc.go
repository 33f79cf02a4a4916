// Package launcher is the bootstrap entry point: it verifies the clone's
// preconditions, brings the cached tool snapshot up to date and dispatches
// to the downstream executable chosen by the invocation's base name,
// relaying the child's exit status.
package launcher
