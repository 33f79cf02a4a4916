package upgrade

import (
	"crypto"
	"errors"
	"fmt"
	"os"
	"time"

	// Ensure SHA512 is linked in for snapshot install verification.
	_ "crypto/sha512"
)

const (
	// ResolverRetryBudget is the total number of dependency-resolution
	// attempts before the bootstrap gives up.
	ResolverRetryBudget = 10

	// ResolverRetryDelay is the fixed pause between attempts. The policy is
	// deliberately constant; the resolver's failures are typically network
	// blips that clear within seconds.
	ResolverRetryDelay = 5 * time.Second

	// snapshotFileMode is the permission of the installed snapshot.
	snapshotFileMode os.FileMode = 0o644

	// snapshotChecksumFunction verifies the snapshot during install.
	snapshotChecksumFunction = crypto.SHA512
)

// ErrRetriesExhausted is returned when every dependency-resolution attempt
// in the budget has failed. It aborts the whole bootstrap.
var ErrRetriesExhausted = fmt.Errorf(
	"unable to 'pub upgrade' flutter tool: giving up after %d tries", ResolverRetryBudget)

// errSnapshotNotProduced is returned when the compiler exits successfully
// but the expected artifact is missing.
var errSnapshotNotProduced = errors.New("compiler did not produce a snapshot")

// resolverVerbosity picks the pub verbosity flag: quiet for interactive use,
// full output on CI where logs are the only trace.
func resolverVerbosity(ci bool) string {
	if ci {
		return "--verbosity=normal"
	}

	return "--verbosity=error"
}

// fileChecksum returns the snapshot checksum using snapshotChecksumFunction.
func fileChecksum(path string) ([]byte, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	hasher := snapshotChecksumFunction.New()
	if _, err = hasher.Write(contents); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
