package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mitchellh/go-ps"
)

// ownerFilename records the sentinel holder's pid inside the lock directory.
const ownerFilename = "pid"

// ownerFileMode is the permission for the owner pid file.
const ownerFileMode os.FileMode = 0o644

// dirLocker uses atomic directory creation as the mutual-exclusion
// primitive. Directory creation is atomic across processes on all supported
// filesystems, which makes it a safe substitute where advisory locks are
// unavailable.
//
// Unlike the advisory lock, the sentinel survives a holder that dies without
// unwinding. Waiters therefore check the recorded owner pid and reclaim the
// sentinel when that process no longer exists.
type dirLocker struct {
	opts Options
}

// dirHandle owns a created sentinel directory.
type dirHandle struct {
	dir string
}

// Acquire attempts the atomic create, polling at the configured interval.
// The waiting notice is emitted once per wait episode via an explicit flag.
func (l *dirLocker) Acquire(ctx context.Context) (Handle, error) {
	noticeShown := false

	for {
		err := os.Mkdir(l.opts.FallbackDir, lockDirMode)
		if err == nil {
			l.recordOwner()
			return &dirHandle{dir: l.opts.FallbackDir}, nil
		}

		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create lock sentinel: %w", err)
		}

		if l.reclaimAbandoned() {
			continue
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

// recordOwner writes this process's pid into the sentinel. Failure to record
// is tolerated: the sentinel still excludes others, it just cannot be
// reclaimed early if this process crashes.
func (l *dirLocker) recordOwner() {
	path := filepath.Join(l.opts.FallbackDir, ownerFilename)
	_ = os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), ownerFileMode)
}

// reclaimAbandoned tears down the sentinel when its recorded owner is no
// longer running and reports whether another acquisition attempt should
// follow immediately. A sentinel without a readable pid is assumed live,
// since the owner may be between Mkdir and the pid write.
//
// The sentinel is claimed with an atomic rename before anything is
// destroyed: of all waiters that saw the same dead owner, exactly one moves
// it aside, and the rest fail the rename and keep polling. The claim is then
// re-verified against the dead owner's pid, so a sentinel that was already
// reclaimed and replaced by a live holder is put back untouched instead of
// being deleted out from under its owner.
func (l *dirLocker) reclaimAbandoned() bool {
	contents, err := os.ReadFile(filepath.Join(l.opts.FallbackDir, ownerFilename))
	if err != nil {
		return false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(contents)))
	if err != nil || pid == os.Getpid() {
		return false
	}

	process, err := ps.FindProcess(pid)
	if err != nil || process != nil {
		return false
	}

	claimed := fmt.Sprintf("%s.reclaim.%d", l.opts.FallbackDir, os.Getpid())
	if err = os.Rename(l.opts.FallbackDir, claimed); err != nil {
		return false
	}

	claimedOwner, err := os.ReadFile(filepath.Join(claimed, ownerFilename))
	if err == nil && strings.TrimSpace(string(claimedOwner)) == strconv.Itoa(pid) {
		_ = os.RemoveAll(claimed)
		return true
	}

	// The dead owner's sentinel was swapped for a live one between the
	// liveness check and the rename; restore it.
	_ = os.Rename(claimed, l.opts.FallbackDir)

	return false
}

// Release removes the sentinel directory this process created. Removal
// failure is surfaced so callers can log it, but the lock is considered
// released regardless; cleanup here is best-effort.
func (h *dirHandle) Release() error {
	if err := os.RemoveAll(h.dir); err != nil {
		return fmt.Errorf("remove lock sentinel: %w", err)
	}

	return nil
}
