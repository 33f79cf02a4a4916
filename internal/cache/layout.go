package cache

import (
	"path/filepath"
	"runtime"
)

// Layout resolves the well-known paths of a Flutter clone relative to its
// install root. All cache artifacts live under <root>/bin/cache.
type Layout struct {
	// Root is the absolute path to the install root.
	Root string
}

// NewLayout returns a Layout anchored at the provided install root.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// Dir returns the cache directory holding snapshot, stamp, marker and locks.
func (l Layout) Dir() string {
	return filepath.Join(l.Root, "bin", "cache")
}

// SnapshotPath returns the compiled flutter_tools snapshot location.
func (l Layout) SnapshotPath() string {
	return filepath.Join(l.Dir(), "flutter_tools.snapshot")
}

// StampPath returns the revision stamp location.
func (l Layout) StampPath() string {
	return filepath.Join(l.Dir(), "flutter_tools.stamp")
}

// LockfilePath returns the file the advisory upgrade lock is taken on.
func (l Layout) LockfilePath() string {
	return filepath.Join(l.Dir(), "lockfile")
}

// FallbackLockDir returns the sentinel directory used for mutual exclusion
// when advisory locking is unavailable on the host platform.
func (l Layout) FallbackLockDir() string {
	return filepath.Join(l.Dir(), ".upgrade_lock")
}

// ToolsDir returns the flutter_tools package directory.
func (l Layout) ToolsDir() string {
	return filepath.Join(l.Root, "packages", "flutter_tools")
}

// ManifestPath returns the flutter_tools dependency manifest (pubspec.yaml).
func (l Layout) ManifestPath() string {
	return filepath.Join(l.ToolsDir(), "pubspec.yaml")
}

// ManifestLockPath returns the resolved dependency lock (pubspec.lock).
func (l Layout) ManifestLockPath() string {
	return filepath.Join(l.ToolsDir(), "pubspec.lock")
}

// PackageConfigPath returns the resolver-produced package configuration fed
// to the compiler and to snapshot execution.
func (l Layout) PackageConfigPath() string {
	return filepath.Join(l.ToolsDir(), ".dart_tool", "package_config.json")
}

// EntryScriptPath returns the flutter_tools entry point compiled into the snapshot.
func (l Layout) EntryScriptPath() string {
	return filepath.Join(l.ToolsDir(), "bin", "flutter_tools.dart")
}

// DartVMPath returns the cached Dart SDK's VM executable.
func (l Layout) DartVMPath() string {
	return filepath.Join(l.Dir(), "dart-sdk", "bin", "dart"+executableExtension())
}

// SDKUpdaterPath returns the idempotent Dart SDK install/update script.
func (l Layout) SDKUpdaterPath() string {
	name := "update_dart_sdk.sh"
	if runtime.GOOS == "windows" {
		name = "update_dart_sdk.ps1"
	}

	return filepath.Join(l.Root, "bin", "internal", name)
}

// LegacyVersionPath returns the plain-text version file at the clone root.
func (l Layout) LegacyVersionPath() string {
	return filepath.Join(l.Root, "version")
}

// VersionMarkerPath returns the structured version marker inside the cache.
func (l Layout) VersionMarkerPath() string {
	return filepath.Join(l.Dir(), "flutter.version.yaml")
}

// executableExtension returns ".exe" on Windows and "" elsewhere.
func executableExtension() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}

	return ""
}
