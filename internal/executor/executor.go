package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
)

// Command describes one external process invocation.
type Command struct {
	// Name is the executable to run, looked up on PATH when not absolute.
	Name string
	// Args are the process arguments, excluding the executable name.
	Args []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Env is the full environment; nil means inherit.
	Env []string
}

// Executor runs external processes.
type Executor interface {
	// Run executes the command, streaming its output to this process's
	// stdout/stderr, and fails on non-zero exit.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and returns its trimmed stdout.
	Output(ctx context.Context, cmd Command) (string, error)
	// Exec runs the command interactively with stdio attached and signals
	// relayed, returning the child's exit status. A child killed by a signal
	// reports the conventional 128+signal code.
	Exec(ctx context.Context, cmd Command) (int, error)
}

// System is the production Executor backed by os/exec.
type System struct{}

// NewSystem returns the real process executor.
func NewSystem() *System {
	return &System{}
}

// Run implements Executor.
func (s *System) Run(ctx context.Context, cmd Command) error {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		return fmt.Errorf("run %s: %w", cmd.Name, err)
	}

	return nil
}

// Output implements Executor.
func (s *System) Output(ctx context.Context, cmd Command) (string, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stderr = os.Stderr

	out, err := c.Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", cmd.Name, err)
	}

	return strings.TrimSpace(string(out)), nil
}

// Exec implements Executor. The child is spawned rather than replacing this
// process image, since Go offers no portable exec(2); interrupt and
// termination signals are forwarded so the child controls the session.
func (s *System) Exec(_ context.Context, cmd Command) (int, error) {
	c := exec.Command(cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Start(); err != nil {
		return 0, fmt.Errorf("start %s: %w", cmd.Name, err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	defer func() {
		signal.Stop(signals)
		close(done)
	}()

	go func() {
		for {
			select {
			case sig := <-signals:
				_ = c.Process.Signal(sig)
			case <-done:
				return
			}
		}
	}()

	err := c.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitStatus(exitErr), nil
	}

	return 0, fmt.Errorf("wait for %s: %w", cmd.Name, err)
}

// exitStatus converts a non-zero exit into the shell-conventional code,
// mapping signal termination to 128+signal.
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}

	return exitErr.ExitCode()
}
