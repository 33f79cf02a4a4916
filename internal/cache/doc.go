// Package cache models the shared tool cache under <root>/bin/cache: the
// compiled flutter_tools snapshot, the revision stamp recording which source
// revision produced it, and the version marker rewritten after each upgrade.
//
// The staleness check is a pure function of filesystem state plus the current
// source revision; it never mutates anything. The stamp, snapshot and marker
// are treated as a single cache entry and invalidated as a unit, always under
// the upgrade lock.
package cache
