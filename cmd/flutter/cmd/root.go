package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AbhishekManjunath98/flutter/internal/config"
	"github.com/AbhishekManjunath98/flutter/internal/logger"
	"github.com/AbhishekManjunath98/flutter/internal/service/launcher"
	"github.com/AbhishekManjunath98/flutter/internal/version"
)

// rootCmd represents the bootstrap launcher. Flag parsing is disabled: every
// argument belongs to the downstream tool and is forwarded verbatim.
//
//nolint:gochecknoglobals // Required by Cobra CLI framework architecture.
var rootCmd = &cobra.Command{
	Use:                "flutter [arguments]",
	Short:              "Bootstrap launcher for the Flutter tool",
	Args:               cobra.ArbitraryArgs,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
	RunE: func(_ *cobra.Command, args []string) error {
		// Setup graceful shutdown handling: a signal while waiting for or
		// holding the upgrade lock must still unwind and release it.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		cfg, err := config.FromEnvironment("")
		if err != nil {
			return err
		}

		if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
			logger.SetLevel(level)
		}

		logger.DebugKV(ctx, "Bootstrap starting",
			"launcher", version.Full(), "root", cfg.Root, "ci", cfg.CI)

		return launcher.Run(ctx, &launcher.Options{
			ProgName: filepath.Base(os.Args[0]),
			Args:     args,
			Config:   cfg,
		})
	},
}

// Execute runs the bootstrap and exits with the downstream tool's status, or
// 1 for the launcher's own fatal conditions.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportFatal(os.Stderr, err)
		os.Exit(launcher.ExitCode(err))
	}
}

// reportFatal prints the launcher's own fatal errors. A downstream tool's
// non-zero status is relayed silently: the tool has already reported itself,
// whatever its exit code.
func reportFatal(w io.Writer, err error) {
	var exitErr *launcher.ExitError
	if errors.As(err, &exitErr) {
		return
	}

	fmt.Fprintln(w, "Error:", err)
}
