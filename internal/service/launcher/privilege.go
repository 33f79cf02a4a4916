package launcher

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AbhishekManjunath98/flutter/internal/config"
	"github.com/AbhishekManjunath98/flutter/internal/logger"
)

// containerMarkers are cgroup substrings that identify a sandboxed container,
// where running as root is expected and the advisory stays quiet.
//
//nolint:gochecknoglobals // Fixed lookup table.
var containerMarkers = []string{"docker", "lxc", "kubepods"}

// warnIfSuperuser prints a non-fatal advisory when the launcher runs with
// elevated privileges outside a recognized container or CI context.
// Execution always continues.
func warnIfSuperuser(ctx context.Context, cfg *config.Config) {
	if os.Geteuid() != 0 || cfg.CI || runningInContainer() {
		return
	}

	logger.Warn(ctx, "Running with elevated privileges outside a container")
	fmt.Fprintln(os.Stderr, "Woah! You appear to be trying to run flutter as root.")
	fmt.Fprintln(os.Stderr, "We strongly recommend running the flutter tool without superuser privileges.")
}

// runningInContainer detects common container sandboxes via the Docker
// sentinel file and the init process's cgroup assignment.
func runningInContainer() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	contents, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false
	}

	cgroups := string(contents)
	for _, marker := range containerMarkers {
		if strings.Contains(cgroups, marker) {
			return true
		}
	}

	return false
}
