package upgrade

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	goupdate "github.com/doitdistributed/go-update"

	"github.com/AbhishekManjunath98/flutter/internal/cache"
	"github.com/AbhishekManjunath98/flutter/internal/config"
	"github.com/AbhishekManjunath98/flutter/internal/executor"
	"github.com/AbhishekManjunath98/flutter/internal/lock"
	"github.com/AbhishekManjunath98/flutter/internal/logger"
	"github.com/AbhishekManjunath98/flutter/internal/vcs"
)

// Options are the collaborators and settings for one bootstrap upgrade pass.
type Options struct {
	// Config is the environment-derived launcher configuration.
	Config *config.Config
	// Layout resolves the clone's well-known paths.
	Layout cache.Layout
	// Exec spawns the external collaborators (git, SDK updater, Dart VM).
	Exec executor.Executor
	// Locker guards the cache critical section across processes.
	Locker lock.Locker
	// RetryDelay overrides ResolverRetryDelay when positive (used by tests).
	RetryDelay time.Duration
}

// runner holds the state of a single upgrade execution. The effective retry
// delay is resolved into the runner so the caller's Options stay untouched.
type runner struct {
	opts       *Options
	layout     cache.Layout
	retryDelay time.Duration
}

// EnsureUpToDate acquires the upgrade lock, checks cache staleness against
// the clone's HEAD revision and rebuilds the snapshot when required. On
// return the cache is fresh and the lock is released; a second invocation
// with no source changes is a no-op fast path.
func EnsureUpToDate(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "upgrade")

	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = ResolverRetryDelay
	}

	handle, err := opts.Locker.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire upgrade lock: %w", err)
	}

	// Lock cleanup is best-effort: a failed release must not mask the
	// upgrade result or block exit.
	defer func() {
		if releaseErr := handle.Release(); releaseErr != nil {
			logger.WarnKV(ctx, "Upgrade lock release failed", "error", releaseErr)
		}
	}()

	u := &runner{opts: opts, layout: opts.Layout, retryDelay: retryDelay}

	return u.run(ctx)
}

// run performs the staleness check and, when needed, the rebuild. It is
// always executed while holding the upgrade lock.
func (u *runner) run(ctx context.Context) error {
	revision, err := vcs.HeadRevision(ctx, u.opts.Exec, u.layout.Root)
	if err != nil {
		return err
	}

	stale, reason := cache.Stale(u.layout, revision)
	if !stale {
		logger.DebugKV(ctx, "Tool snapshot is up to date", "revision", revision)
		return nil
	}

	logger.InfoKV(ctx, "Rebuilding tool snapshot", "reason", reason, "revision", revision)
	fmt.Fprintln(os.Stderr, "Building flutter tool...")

	if err = cache.RemoveVersionMarkers(u.layout); err != nil {
		return err
	}

	if err = u.updateSDK(ctx); err != nil {
		return err
	}

	if err = u.resolveDependencies(ctx); err != nil {
		return err
	}

	if err = u.compileSnapshot(ctx); err != nil {
		return err
	}

	marker := &cache.VersionMarker{
		Revision: revision,
		BuiltAt:  time.Now().UTC(),
	}
	if err = cache.WriteVersionMarker(u.layout.VersionMarkerPath(), marker); err != nil {
		return err
	}

	// The stamp is the commit point of the whole rebuild.
	if err = cache.WriteStamp(u.layout.StampPath(), revision); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Tool snapshot rebuilt", "revision", revision)

	return nil
}

// updateSDK runs the idempotent SDK install/update collaborator in place.
func (u *runner) updateSDK(ctx context.Context) error {
	if err := u.opts.Exec.Run(ctx, executor.Command{
		Name: u.layout.SDKUpdaterPath(),
		Dir:  u.layout.Root,
	}); err != nil {
		return fmt.Errorf("update Dart SDK: %w", err)
	}

	return nil
}

// resolveDependencies runs `dart pub upgrade` in the tool's own working
// directory, retrying transient failures on a fixed schedule. Exhausting the
// budget is fatal for the whole bootstrap.
func (u *runner) resolveDependencies(ctx context.Context) error {
	resolverCmd := executor.Command{
		Name: u.layout.DartVMPath(),
		Args: []string{
			"pub", "upgrade",
			resolverVerbosity(u.opts.Config.CI),
			"--no-precompile",
		},
		Dir: u.layout.ToolsDir(),
		Env: u.opts.Config.ResolverEnv(),
	}

	attempt := 0
	operation := func() error {
		attempt++
		return u.opts.Exec.Run(ctx, resolverCmd)
	}

	notify := func(err error, _ time.Duration) {
		logger.WarnKV(ctx, "Dependency resolution failed", "attempt", attempt, "error", err)
		fmt.Fprintf(os.Stderr, "Error: Unable to 'pub upgrade' flutter tool. Retrying in five seconds... (%d/%d)\n",
			attempt, ResolverRetryBudget)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(u.retryDelay), ResolverRetryBudget-1),
		ctx,
	)

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		if errors.Is(err, ctx.Err()) {
			return err
		}

		return fmt.Errorf("%w: %w", ErrRetriesExhausted, err)
	}

	return nil
}

// compileSnapshot invokes the Dart compiler to produce a fresh snapshot next
// to the target path, then installs it atomically with checksum verification.
func (u *runner) compileSnapshot(ctx context.Context) error {
	staged := u.layout.SnapshotPath() + ".new"
	defer func() {
		_ = os.Remove(staged)
	}()

	args := []string{"--disable-dart-dev", "--packages=" + u.layout.PackageConfigPath()}
	args = append(args, u.opts.Config.ToolArgs...)
	args = append(args, "--snapshot="+staged, "--no-enable-mirrors", u.layout.EntryScriptPath())

	if err := u.opts.Exec.Run(ctx, executor.Command{
		Name: u.layout.DartVMPath(),
		Args: args,
		Dir:  u.layout.Root,
	}); err != nil {
		return fmt.Errorf("compile tool snapshot: %w", err)
	}

	if _, err := os.Stat(staged); err != nil {
		return fmt.Errorf("%w: %w", errSnapshotNotProduced, err)
	}

	return u.installSnapshot(staged)
}

// installSnapshot moves the staged snapshot into place, verifying the copy
// against its checksum and discarding the backup the installer leaves behind.
func (u *runner) installSnapshot(staged string) error {
	data, err := os.ReadFile(staged)
	if err != nil {
		return fmt.Errorf("read staged snapshot: %w", err)
	}

	checksum, err := fileChecksum(staged)
	if err != nil {
		return fmt.Errorf("checksum staged snapshot: %w", err)
	}

	// The installer replaces an existing target; seed one on first build.
	if _, err = os.Stat(u.layout.SnapshotPath()); errors.Is(err, os.ErrNotExist) {
		var seed *os.File

		seed, err = os.Create(u.layout.SnapshotPath())
		if err != nil {
			return fmt.Errorf("create snapshot target: %w", err)
		}

		if err = seed.Close(); err != nil {
			return fmt.Errorf("create snapshot target: %w", err)
		}
	}

	installOptions := goupdate.Options{
		TargetPath: u.layout.SnapshotPath(),
		TargetMode: snapshotFileMode,
		Checksum:   checksum,
		Hash:       snapshotChecksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), installOptions); err != nil {
		return fmt.Errorf("install snapshot: %w", err)
	}

	oldSnapshot := u.layout.SnapshotPath() + ".old"
	if _, err = os.Stat(oldSnapshot); err == nil {
		_ = os.Remove(oldSnapshot)
	}

	return nil
}
