package lock

import (
	"context"
	"fmt"

	"github.com/gofrs/flock"
)

// flockLocker takes a kernel advisory exclusive lock on the lockfile.
// The kernel drops the lock when the descriptor closes, including on crash,
// so no artifact cleanup beyond Unlock is required.
type flockLocker struct {
	opts Options
}

// flockHandle wraps a held advisory lock.
type flockHandle struct {
	fl *flock.Flock
}

// Acquire polls TryLock at the configured interval until the lock is held
// or ctx is canceled. The waiting notice is emitted once per wait episode,
// tracked by an explicit flag rather than inferred from output state.
func (l *flockLocker) Acquire(ctx context.Context) (Handle, error) {
	fl := flock.New(l.opts.LockfilePath)
	noticeShown := false

	for {
		locked, err := fl.TryLock()
		if err != nil {
			return nil, fmt.Errorf("acquire advisory lock: %w", err)
		}

		if locked {
			return &flockHandle{fl: fl}, nil
		}

		if !noticeShown {
			l.opts.Notify()

			noticeShown = true
		}

		if err = wait(ctx, l.opts.PollInterval); err != nil {
			return nil, err
		}
	}
}

// Release drops the advisory lock. The lockfile itself is left in place for
// future invocations.
func (h *flockHandle) Release() error {
	if err := h.fl.Unlock(); err != nil {
		return fmt.Errorf("release advisory lock: %w", err)
	}

	return nil
}
