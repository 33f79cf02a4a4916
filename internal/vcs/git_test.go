package vcs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AbhishekManjunath98/flutter/internal/executor"
)

// fakeExecutor returns canned output for HeadRevision tests.
type fakeExecutor struct {
	output string
	err    error
	got    executor.Command
}

func (f *fakeExecutor) Run(_ context.Context, _ executor.Command) error { return nil }

func (f *fakeExecutor) Output(_ context.Context, cmd executor.Command) (string, error) {
	f.got = cmd
	return f.output, f.err
}

func (f *fakeExecutor) Exec(_ context.Context, _ executor.Command) (int, error) { return 0, nil }

// TestEnsureGit_MissingFromPath reports the remediation error when PATH is empty.
func TestEnsureGit_MissingFromPath(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	require.ErrorIs(t, EnsureGit(), ErrGitMissing)
}

// TestEnsureClone accepts .git as a directory or file, rejects absence.
func TestEnsureClone(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.ErrorIs(t, EnsureClone(root), ErrNotAClone)

	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	require.NoError(t, EnsureClone(root))

	worktree := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(worktree, ".git"), []byte("gitdir: elsewhere"), 0o644))
	require.NoError(t, EnsureClone(worktree))
}

// TestHeadRevision queries git in the install root.
func TestHeadRevision(t *testing.T) {
	t.Parallel()

	fake := &fakeExecutor{output: "a3f2c91d4be7081f2dd1c2b9f6d3e4a5b6c7d8e9"}

	revision, err := HeadRevision(context.Background(), fake, "/opt/flutter")
	require.NoError(t, err)
	require.Equal(t, "a3f2c91d4be7081f2dd1c2b9f6d3e4a5b6c7d8e9", revision)
	require.Equal(t, gitExecutable, fake.got.Name)
	require.Equal(t, []string{"-C", "/opt/flutter", "rev-parse", "HEAD"}, fake.got.Args)
}

// TestHeadRevision_Error wraps executor failures.
func TestHeadRevision_Error(t *testing.T) {
	t.Parallel()

	fake := &fakeExecutor{err: errors.New("boom")}

	_, err := HeadRevision(context.Background(), fake, "/opt/flutter")
	require.Error(t, err)
}
