package cache

import (
	"os"
)

// Staleness reasons reported by Stale for logging and tests.
const (
	ReasonFresh           = ""
	ReasonSnapshotMissing = "snapshot missing"
	ReasonStampMissing    = "stamp missing or empty"
	ReasonRevisionChanged = "stamp does not match current revision"
	ReasonManifestNewer   = "dependency manifest newer than its lock file"
)

// Stale reports whether the cached snapshot must be rebuilt for the given
// current source revision, and why. It only inspects filesystem state and is
// safe to call repeatedly.
//
// The cache is stale if any of the following holds:
//  1. the snapshot does not exist as a regular file,
//  2. the revision stamp does not exist or is empty,
//  3. the stamp content differs from the current revision,
//  4. the dependency manifest is strictly newer than its resolved lock file.
func Stale(layout Layout, currentRevision string) (bool, string) {
	if !isRegularFile(layout.SnapshotPath()) {
		return true, ReasonSnapshotMissing
	}

	stamp, err := ReadStamp(layout.StampPath())
	if err != nil || stamp == "" {
		return true, ReasonStampMissing
	}

	if stamp != currentRevision {
		return true, ReasonRevisionChanged
	}

	if manifestNewerThanLock(layout.ManifestPath(), layout.ManifestLockPath()) {
		return true, ReasonManifestNewer
	}

	return false, ReasonFresh
}

// isRegularFile reports whether path exists and is a regular file.
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// manifestNewerThanLock compares modification times the way the shell test
// `manifest -nt lock` does: a missing lock counts as older than an existing
// manifest, a missing manifest is never newer.
func manifestNewerThanLock(manifestPath, lockPath string) bool {
	manifest, err := os.Stat(manifestPath)
	if err != nil {
		return false
	}

	lock, err := os.Stat(lockPath)
	if err != nil {
		return true
	}

	return manifest.ModTime().After(lock.ModTime())
}
