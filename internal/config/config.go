package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the launcher settings resolved from the environment.
// It is populated once at startup and treated as read-only afterwards.
type Config struct {
	// Root is the absolute path to the Flutter install root (the clone).
	Root string
	// CI reports whether a continuous-integration environment was detected.
	CI bool
	// PubCache is the optional package-cache directory override (PUB_CACHE).
	PubCache string
	// ToolArgs are extra VM arguments forwarded to the compiler and to the
	// snapshot execution (FLUTTER_TOOL_ARGS, whitespace-split).
	ToolArgs []string
	// PubEnvironment is the PUB_ENVIRONMENT value with the install tag
	// already appended.
	PubEnvironment string
	// LogLevel is the requested launcher log level name, empty when unset.
	LogLevel string
}

const (
	// EnvRoot overrides install-root discovery.
	EnvRoot = "FLUTTER_ROOT"

	// EnvPubCache redirects the dependency cache location.
	EnvPubCache = "PUB_CACHE"

	// EnvToolArgs passes extra VM arguments through to the tool.
	EnvToolArgs = "FLUTTER_TOOL_ARGS"

	// EnvPubEnvironment is appended to, never overwritten.
	EnvPubEnvironment = "PUB_ENVIRONMENT"

	// EnvLogLevel selects the launcher's own log verbosity.
	EnvLogLevel = "FLUTTER_LAUNCHER_LOG_LEVEL"

	// installTag marks pub traffic as originating from the bootstrap.
	installTag = "flutter_install"
)

// ciIndicators are the environment variables recognized as CI markers.
// Presence with any non-empty value counts.
//
//nolint:gochecknoglobals // Fixed lookup table.
var ciIndicators = []string{
	"CI",
	"BOT",
	"CONTINUOUS_INTEGRATION",
	"CHROME_HEADLESS",
}

// errRootNotFound is returned when the install root cannot be determined.
var errRootNotFound = errors.New("unable to determine the Flutter install root")

// FromEnvironment builds a Config from the current process environment.
// When root is empty it is discovered via FLUTTER_ROOT or the executable path.
func FromEnvironment(root string) (*Config, error) {
	if root == "" {
		var err error

		root, err = DetectRoot()
		if err != nil {
			return nil, err
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve install root: %w", err)
	}

	return &Config{
		Root:           absRoot,
		CI:             detectCI(),
		PubCache:       os.Getenv(EnvPubCache),
		ToolArgs:       strings.Fields(os.Getenv(EnvToolArgs)),
		PubEnvironment: appendInstallTag(os.Getenv(EnvPubEnvironment)),
		LogLevel:       os.Getenv(EnvLogLevel),
	}, nil
}

// DetectRoot locates the install root from FLUTTER_ROOT or, failing that,
// from the running executable's location (the binary lives in <root>/bin).
func DetectRoot() (string, error) {
	if root := os.Getenv(EnvRoot); root != "" {
		return root, nil
	}

	executable, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: %w", errRootNotFound, err)
	}

	resolved, err := filepath.EvalSymlinks(executable)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errRootNotFound, err)
	}

	return filepath.Dir(filepath.Dir(resolved)), nil
}

// ResolverEnv returns the environment entries the dependency-resolution step
// runs with: the current environment plus the tagged PUB_ENVIRONMENT and the
// PUB_CACHE override when present.
func (c *Config) ResolverEnv() []string {
	env := os.Environ()
	env = append(env, EnvPubEnvironment+"="+c.PubEnvironment)

	if c.PubCache != "" {
		env = append(env, EnvPubCache+"="+c.PubCache)
	}

	return env
}

// detectCI reports whether any recognized CI indicator is set.
func detectCI() bool {
	for _, name := range ciIndicators {
		if os.Getenv(name) != "" {
			return true
		}
	}

	return false
}

// appendInstallTag appends the install tag to an existing PUB_ENVIRONMENT
// value, preserving whatever the caller already exported.
func appendInstallTag(existing string) string {
	if existing == "" {
		return installTag
	}

	return existing + ":" + installTag
}
