// Package lock provides the cross-process mutual exclusion guarding the
// cache upgrade critical section.
//
// Two strategies implement the same contract and are selected once at
// startup by probing the host: a kernel advisory lock on the well-known
// lockfile (preferred), and an atomic sentinel-directory creation fallback
// for filesystems where advisory locking is unavailable. Acquisition blocks
// indefinitely, polling at a fixed short interval and emitting a single
// human-readable waiting notice per wait episode; there is no timeout and no
// fairness ordering among waiters.
//
// The advisory lock is released by the kernel when the process dies. The
// fallback sentinel can leak if the holder is killed without unwinding; that
// risk is accepted, and waiters additionally reclaim a sentinel whose
// recorded owner process no longer exists.
package lock
