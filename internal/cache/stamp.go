package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// stampFileMode is the permission for the revision stamp.
	stampFileMode os.FileMode = 0o644

	// cacheDirMode is the permission for the cache directory tree.
	cacheDirMode os.FileMode = 0o755
)

// VersionMarker records metadata about the currently cached tool build.
// It is deleted when the cache goes stale and rewritten after a successful
// upgrade, mirroring the revision stamp's lifecycle.
type VersionMarker struct {
	// Revision is the source revision the snapshot was built from.
	Revision string `yaml:"revision"`
	// BuiltAt is the UTC timestamp of the rebuild.
	BuiltAt time.Time `yaml:"built_at"`
}

// ReadStamp returns the revision recorded in the stamp file.
// A missing stamp yields an empty string without error.
func ReadStamp(path string) (string, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}

		return "", fmt.Errorf("read stamp: %w", err)
	}

	return strings.TrimSpace(string(contents)), nil
}

// WriteStamp records the revision that produced the current snapshot.
// It must be called only after the snapshot has been written successfully, so
// a crash mid-build leaves the cache correctly marked stale on the next run.
func WriteStamp(path, revision string) error {
	if err := os.MkdirAll(filepath.Dir(path), cacheDirMode); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), []byte(revision), stampFileMode); err != nil {
		return fmt.Errorf("write stamp: %w", err)
	}

	return nil
}

// WriteVersionMarker persists the version marker as YAML.
func WriteVersionMarker(path string, marker *VersionMarker) error {
	data, err := yaml.Marshal(marker)
	if err != nil {
		return fmt.Errorf("marshal version marker: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), cacheDirMode); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, stampFileMode); err != nil {
		return fmt.Errorf("write version marker: %w", err)
	}

	return nil
}

// ReadVersionMarker loads the version marker, returning nil when absent.
func ReadVersionMarker(path string) (*VersionMarker, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read version marker: %w", err)
	}

	var marker VersionMarker
	if err = yaml.Unmarshal(contents, &marker); err != nil {
		return nil, fmt.Errorf("unmarshal version marker: %w", err)
	}

	return &marker, nil
}

// RemoveVersionMarkers deletes both version markers so a partially upgraded
// clone never reports a version that does not match its snapshot.
// Missing files are not errors.
func RemoveVersionMarkers(layout Layout) error {
	for _, path := range []string{layout.LegacyVersionPath(), layout.VersionMarkerPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove version marker: %w", err)
		}
	}

	return nil
}
