package launcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AbhishekManjunath98/flutter/internal/cache"
	"github.com/AbhishekManjunath98/flutter/internal/config"
	"github.com/AbhishekManjunath98/flutter/internal/executor"
	"github.com/AbhishekManjunath98/flutter/internal/lock"
	"github.com/AbhishekManjunath98/flutter/internal/logger"
	"github.com/AbhishekManjunath98/flutter/internal/service/upgrade"
	"github.com/AbhishekManjunath98/flutter/internal/vcs"
)

// Options are inputs accepted by the launcher entry point.
type Options struct {
	// ProgName is the invocation's base name; it selects the dispatch target.
	ProgName string
	// Args are the arguments to forward to the downstream process.
	Args []string
	// Config is the environment-derived launcher configuration.
	Config *config.Config
	// Exec spawns external processes; defaults to the system executor.
	Exec executor.Executor
}

// ErrUnrecognizedName reports an invocation name that maps to no downstream tool.
var ErrUnrecognizedName = errors.New("executable name not recognized")

// ExitError carries a downstream process's non-zero exit status up to the
// command layer, which relays it as this process's own status.
type ExitError struct {
	// Code is the child's exit status.
	Code int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("downstream tool exited with status %d", e.Code)
}

// ExitCode extracts the process exit status for err: the child's own status
// for an ExitError, 1 for every other failure, 0 for nil.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return 1
}

// Run executes the whole bootstrap: preflight checks, concurrency-safe cache
// upgrade, then dispatch with forwarded arguments. It is the public entry
// point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "flutter")

	if opts.Exec == nil {
		opts.Exec = executor.NewSystem()
	}

	if err := Preflight(ctx, opts.Config); err != nil {
		return err
	}

	layout := cache.NewLayout(opts.Config.Root)

	locker, err := lock.New(lock.Options{
		LockfilePath: layout.LockfilePath(),
		FallbackDir:  layout.FallbackLockDir(),
	})
	if err != nil {
		return err
	}

	if err = upgrade.EnsureUpToDate(ctx, &upgrade.Options{
		Config: opts.Config,
		Layout: layout,
		Exec:   opts.Exec,
		Locker: locker,
	}); err != nil {
		return err
	}

	code, err := Dispatch(ctx, opts, layout)
	if err != nil {
		return err
	}

	if code != 0 {
		return &ExitError{Code: code}
	}

	return nil
}

// Preflight verifies the environmental preconditions: a discoverable git
// client and an install root that is a real clone. It also emits the
// non-fatal superuser advisory.
func Preflight(ctx context.Context, cfg *config.Config) error {
	if err := vcs.EnsureGit(); err != nil {
		return err
	}

	if err := vcs.EnsureClone(cfg.Root); err != nil {
		return err
	}

	warnIfSuperuser(ctx, cfg)

	return nil
}

// Dispatch maps the invocation base name onto a fixed downstream behavior
// and returns the child's exit status. Names containing "flutter" run the
// cached VM with the compiled snapshot and any configured extra tool
// arguments; names containing "dart" run the bare VM; anything else is an
// invocation error naming the offender.
func Dispatch(ctx context.Context, opts *Options, layout cache.Layout) (int, error) {
	name := strings.ToLower(strings.TrimSuffix(opts.ProgName, ".exe"))

	switch {
	case strings.Contains(name, "flutter"):
		args := []string{"--disable-dart-dev", "--packages=" + layout.PackageConfigPath()}
		args = append(args, opts.Config.ToolArgs...)
		args = append(args, layout.SnapshotPath())
		args = append(args, opts.Args...)

		logger.DebugKV(ctx, "Dispatching to tool snapshot", "args", opts.Args)

		return opts.Exec.Exec(ctx, executor.Command{
			Name: layout.DartVMPath(),
			Args: args,
		})

	case strings.Contains(name, "dart"):
		logger.DebugKV(ctx, "Dispatching to Dart VM", "args", opts.Args)

		return opts.Exec.Exec(ctx, executor.Command{
			Name: layout.DartVMPath(),
			Args: opts.Args,
		})

	default:
		return 0, fmt.Errorf("%w: %s", ErrUnrecognizedName, opts.ProgName)
	}
}
