package upgrade

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/AbhishekManjunath98/flutter/internal/cache"
	"github.com/AbhishekManjunath98/flutter/internal/config"
	"github.com/AbhishekManjunath98/flutter/internal/executor"
	"github.com/AbhishekManjunath98/flutter/internal/lock"
)

const testRevision = "a3f2c91d4be7081f2dd1c2b9f6d3e4a5b6c7d8e9"

// toolchainFake simulates git, the SDK updater, the dependency resolver and
// the compiler. It is safe for concurrent use.
type toolchainFake struct {
	mu sync.Mutex

	layout cache.Layout

	// resolverFailures is the number of pub attempts that fail before
	// attempts start succeeding.
	resolverFailures int

	sdkUpdates       int
	resolverAttempts int
	compilations     int
}

func (f *toolchainFake) Output(_ context.Context, cmd executor.Command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cmd.Name == "git" {
		return testRevision, nil
	}

	return "", errors.New("unexpected output command: " + cmd.Name)
}

func (f *toolchainFake) Run(_ context.Context, cmd executor.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case cmd.Name == f.layout.SDKUpdaterPath():
		f.sdkUpdates++
		return nil

	case len(cmd.Args) > 0 && cmd.Args[0] == "pub":
		f.resolverAttempts++
		if f.resolverAttempts <= f.resolverFailures {
			return errors.New("pub upgrade: temporary failure")
		}

		// A successful resolution refreshes the lock file.
		if _, err := os.Stat(f.layout.ManifestLockPath()); err == nil {
			now := time.Now()
			return os.Chtimes(f.layout.ManifestLockPath(), now, now)
		}

		return nil

	default:
		for _, arg := range cmd.Args {
			if strings.HasPrefix(arg, "--snapshot=") {
				f.compilations++
				return os.WriteFile(strings.TrimPrefix(arg, "--snapshot="), []byte("compiled snapshot"), 0o644)
			}
		}

		return errors.New("unexpected run command: " + cmd.Name)
	}
}

func (f *toolchainFake) Exec(_ context.Context, _ executor.Command) (int, error) {
	return 0, errors.New("exec not expected during upgrade")
}

func (f *toolchainFake) counts() (sdk, resolver, compile int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sdkUpdates, f.resolverAttempts, f.compilations
}

// newTestOptions prepares a clone skeleton and the upgrade collaborators.
func newTestOptions(t *testing.T, resolverFailures int) (*Options, *toolchainFake) {
	t.Helper()

	layout := cache.NewLayout(t.TempDir())
	require.NoError(t, os.MkdirAll(layout.Dir(), 0o755))
	require.NoError(t, os.MkdirAll(layout.ToolsDir(), 0o755))
	require.NoError(t, os.WriteFile(layout.ManifestPath(), []byte("name: flutter_tools"), 0o644))
	require.NoError(t, os.WriteFile(layout.ManifestLockPath(), []byte("packages: {}"), 0o644))

	fake := &toolchainFake{layout: layout, resolverFailures: resolverFailures}

	locker, err := lock.New(lock.Options{
		LockfilePath: layout.LockfilePath(),
		FallbackDir:  layout.FallbackLockDir(),
		PollInterval: time.Millisecond,
		Notify:       func() {},
	})
	require.NoError(t, err)

	return &Options{
		Config:     &config.Config{Root: layout.Root, PubEnvironment: "flutter_install"},
		Layout:     layout,
		Exec:       fake,
		Locker:     locker,
		RetryDelay: time.Millisecond,
	}, fake
}

// TestEnsureUpToDate_RebuildsStaleCache covers the full stale path: SDK
// update, resolution, compilation, marker and stamp writes.
func TestEnsureUpToDate_RebuildsStaleCache(t *testing.T) {
	t.Parallel()

	opts, fake := newTestOptions(t, 0)

	require.NoError(t, EnsureUpToDate(context.Background(), opts))

	sdk, resolver, compile := fake.counts()
	require.Equal(t, 1, sdk)
	require.Equal(t, 1, resolver)
	require.Equal(t, 1, compile)

	contents, err := os.ReadFile(opts.Layout.SnapshotPath())
	require.NoError(t, err)
	require.Equal(t, "compiled snapshot", string(contents))

	stamp, err := cache.ReadStamp(opts.Layout.StampPath())
	require.NoError(t, err)
	require.Equal(t, testRevision, stamp)

	marker, err := cache.ReadVersionMarker(opts.Layout.VersionMarkerPath())
	require.NoError(t, err)
	require.Equal(t, testRevision, marker.Revision)
}

// TestEnsureUpToDate_SecondRunIsNoOp verifies the idempotent fast path.
func TestEnsureUpToDate_SecondRunIsNoOp(t *testing.T) {
	t.Parallel()

	opts, fake := newTestOptions(t, 0)

	require.NoError(t, EnsureUpToDate(context.Background(), opts))
	require.NoError(t, EnsureUpToDate(context.Background(), opts))

	sdk, resolver, compile := fake.counts()
	require.Equal(t, 1, sdk)
	require.Equal(t, 1, resolver)
	require.Equal(t, 1, compile)
}

// TestEnsureUpToDate_RetryBudgetExhausted aborts after the fixed budget and
// leaves no stamp behind.
func TestEnsureUpToDate_RetryBudgetExhausted(t *testing.T) {
	t.Parallel()

	opts, fake := newTestOptions(t, ResolverRetryBudget+5)

	err := EnsureUpToDate(context.Background(), opts)
	require.ErrorIs(t, err, ErrRetriesExhausted)

	_, resolver, compile := fake.counts()
	require.Equal(t, ResolverRetryBudget, resolver)
	require.Zero(t, compile)

	stamp, err := cache.ReadStamp(opts.Layout.StampPath())
	require.NoError(t, err)
	require.Empty(t, stamp)
}

// TestEnsureUpToDate_RetryThenSuccess proceeds once an attempt inside the
// budget succeeds.
func TestEnsureUpToDate_RetryThenSuccess(t *testing.T) {
	t.Parallel()

	opts, fake := newTestOptions(t, 2)

	require.NoError(t, EnsureUpToDate(context.Background(), opts))

	_, resolver, compile := fake.counts()
	require.Equal(t, 3, resolver)
	require.Equal(t, 1, compile)

	stamp, err := cache.ReadStamp(opts.Layout.StampPath())
	require.NoError(t, err)
	require.Equal(t, testRevision, stamp)
}

// TestEnsureUpToDate_ManifestEditTriggersRebuild covers the scenario where
// only the dependency manifest changed after its lock file.
func TestEnsureUpToDate_ManifestEditTriggersRebuild(t *testing.T) {
	t.Parallel()

	opts, fake := newTestOptions(t, 0)

	require.NoError(t, EnsureUpToDate(context.Background(), opts))

	// Edit the manifest after resolution.
	newer := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(opts.Layout.ManifestPath(), newer, newer))

	require.NoError(t, EnsureUpToDate(context.Background(), opts))

	_, _, compile := fake.counts()
	require.Equal(t, 2, compile)

	stamp, err := cache.ReadStamp(opts.Layout.StampPath())
	require.NoError(t, err)
	require.Equal(t, testRevision, stamp)
}

// TestEnsureUpToDate_LeavesOptionsUntouched verifies the retry-delay default
// is resolved internally rather than written back through the caller's
// Options, which may be shared across invocations.
func TestEnsureUpToDate_LeavesOptionsUntouched(t *testing.T) {
	t.Parallel()

	opts, _ := newTestOptions(t, 0)
	opts.RetryDelay = 0

	require.NoError(t, EnsureUpToDate(context.Background(), opts))
	require.Zero(t, opts.RetryDelay)
}

// TestEnsureUpToDate_ConcurrentInvocations ensures two racing bootstraps
// rebuild at most once: the loser waits for the stamp write and observes a
// fresh cache.
func TestEnsureUpToDate_ConcurrentInvocations(t *testing.T) {
	t.Parallel()

	opts, fake := newTestOptions(t, 0)

	var wg sync.WaitGroup

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			require.NoError(t, EnsureUpToDate(context.Background(), opts))
		}()
	}

	wg.Wait()

	_, _, compile := fake.counts()
	require.Equal(t, 1, compile)
}
