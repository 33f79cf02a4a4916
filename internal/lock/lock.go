package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// DefaultPollInterval is the fixed delay between acquisition attempts while
// another invocation holds the lock.
const DefaultPollInterval = 100 * time.Millisecond

// lockDirMode is the permission for lock-related directories.
const lockDirMode os.FileMode = 0o755

// Handle is an exclusively held upgrade lock. Release must be called on
// every exit path once Acquire succeeds.
type Handle interface {
	// Release frees the lock and removes any artifact this process created.
	Release() error
}

// Locker acquires the cross-process upgrade lock.
type Locker interface {
	// Acquire blocks until the lock is held or ctx is canceled.
	Acquire(ctx context.Context) (Handle, error)
}

// Options configures lock construction.
type Options struct {
	// LockfilePath is the file the advisory lock is taken on.
	LockfilePath string
	// FallbackDir is the sentinel directory for the fallback strategy.
	FallbackDir string
	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
	// Notify is invoked exactly once per wait episode before the first poll
	// sleep. When nil a plain stderr notice is printed.
	Notify func()
}

// New probes the host for advisory-lock support on the lockfile and returns
// the appropriate strategy. The probe briefly takes and drops the lock; it
// runs before any cache state is read, so the momentary hold is harmless.
func New(opts Options) (Locker, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}

	if opts.Notify == nil {
		opts.Notify = printWaitingNotice
	}

	if err := os.MkdirAll(filepath.Dir(opts.LockfilePath), lockDirMode); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	if advisoryLockSupported(opts.LockfilePath) {
		return &flockLocker{opts: opts}, nil
	}

	return &dirLocker{opts: opts}, nil
}

// advisoryLockSupported reports whether flock-style locking works on the
// filesystem holding the lockfile. Contention during the probe still counts
// as supported; only primitive errors select the fallback.
func advisoryLockSupported(path string) bool {
	probe := flock.New(path)

	locked, err := probe.TryLock()
	if err != nil {
		return false
	}

	if locked {
		_ = probe.Unlock()
	}

	return true
}

// printWaitingNotice is the default one-time message shown while another
// invocation holds the startup lock.
func printWaitingNotice() {
	fmt.Fprintln(os.Stderr, "Waiting for another flutter command to release the startup lock...")
}

// wait sleeps for one poll interval or returns early when ctx is canceled.
func wait(ctx context.Context, interval time.Duration) error {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
