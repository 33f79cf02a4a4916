package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFromEnvironment_Defaults checks the zero-environment shape of Config.
func TestFromEnvironment_Defaults(t *testing.T) {
	for _, name := range ciIndicators {
		t.Setenv(name, "")
	}

	t.Setenv(EnvPubCache, "")
	t.Setenv(EnvToolArgs, "")
	t.Setenv(EnvPubEnvironment, "")

	root := t.TempDir()

	cfg, err := FromEnvironment(root)
	require.NoError(t, err)
	require.Equal(t, root, cfg.Root)
	require.False(t, cfg.CI)
	require.Empty(t, cfg.PubCache)
	require.Empty(t, cfg.ToolArgs)
	require.Equal(t, "flutter_install", cfg.PubEnvironment)
}

// TestFromEnvironment_CIIndicators verifies every recognized CI marker is honored.
func TestFromEnvironment_CIIndicators(t *testing.T) {
	for _, name := range ciIndicators {
		t.Run(name, func(t *testing.T) {
			for _, other := range ciIndicators {
				t.Setenv(other, "")
			}

			t.Setenv(name, "true")

			cfg, err := FromEnvironment(t.TempDir())
			require.NoError(t, err)
			require.True(t, cfg.CI)
		})
	}
}

// TestFromEnvironment_PubEnvironmentAppended ensures the tag is appended, not overwritten.
func TestFromEnvironment_PubEnvironmentAppended(t *testing.T) {
	t.Setenv(EnvPubEnvironment, "user_tag")

	cfg, err := FromEnvironment(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "user_tag:flutter_install", cfg.PubEnvironment)
}

// TestFromEnvironment_ToolArgsSplit verifies whitespace splitting of extra VM args.
func TestFromEnvironment_ToolArgsSplit(t *testing.T) {
	t.Setenv(EnvToolArgs, "  --enable-asserts   --observe ")

	cfg, err := FromEnvironment(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, []string{"--enable-asserts", "--observe"}, cfg.ToolArgs)
}

// TestDetectRoot_EnvOverride ensures FLUTTER_ROOT wins over executable discovery.
func TestDetectRoot_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvRoot, dir)

	root, err := DetectRoot()
	require.NoError(t, err)
	require.Equal(t, dir, root)
}

// TestResolverEnv_Overrides checks the resolver environment carries the tag and cache override.
func TestResolverEnv_Overrides(t *testing.T) {
	t.Setenv(EnvPubEnvironment, "")
	t.Setenv(EnvPubCache, filepath.Join(t.TempDir(), "pub-cache"))

	cfg, err := FromEnvironment(t.TempDir())
	require.NoError(t, err)

	env := cfg.ResolverEnv()
	require.Contains(t, env, EnvPubEnvironment+"=flutter_install")
	require.Contains(t, env, EnvPubCache+"="+cfg.PubCache)
}
