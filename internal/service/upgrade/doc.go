// Package upgrade rebuilds the cached flutter_tools snapshot when the clone
// has moved past the cached revision.
//
// The whole check-and-rebuild sequence runs under the cross-process upgrade
// lock: only the holder may mutate the revision stamp or the snapshot. A
// stale cache triggers version-marker removal, an SDK update, dependency
// resolution with a fixed retry budget, snapshot compilation, an atomic
// checksummed install, and finally the stamp write. The stamp is written
// last so a crash mid-build leaves the cache correctly marked stale.
package upgrade
