package vcs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/AbhishekManjunath98/flutter/internal/executor"
)

// gitExecutable is the version-control client the toolchain requires.
const gitExecutable = "git"

var (
	// ErrGitMissing indicates no git client was found on the search path.
	ErrGitMissing = errors.New(
		"unable to find git in your PATH; please install git from https://git-scm.com/downloads and retry")

	// ErrNotAClone indicates the install root is not a version-controlled clone.
	ErrNotAClone = errors.New(
		"the Flutter directory is not a clone of the GitHub project; " +
			"please reinstall by cloning https://github.com/flutter/flutter")
)

// EnsureGit verifies a git client is discoverable on PATH.
func EnsureGit() error {
	if _, err := exec.LookPath(gitExecutable); err != nil {
		return ErrGitMissing
	}

	return nil
}

// EnsureClone verifies the install root carries version-control metadata.
// Both a .git directory and a worktree's .git file are accepted.
func EnsureClone(root string) error {
	if _, err := os.Stat(filepath.Join(root, ".git")); err != nil {
		return ErrNotAClone
	}

	return nil
}

// HeadRevision returns the revision identifier of the clone's checked-out HEAD.
func HeadRevision(ctx context.Context, runner executor.Executor, root string) (string, error) {
	revision, err := runner.Output(ctx, executor.Command{
		Name: gitExecutable,
		Args: []string{"-C", root, "rev-parse", "HEAD"},
	})
	if err != nil {
		return "", fmt.Errorf("resolve HEAD revision: %w", err)
	}

	return revision, nil
}
