package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fitglue/fnpack/internal/config"
	"github.com/fitglue/fnpack/internal/logger"
	"github.com/fitglue/fnpack/internal/service/packager"
	"github.com/fitglue/fnpack/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// outputDir overrides the configured archive output directory.
	outputDir string
	// logLevel controls logging verbosity.
	logLevel string

	// rootCmd represents the base command for packaging function units.
	rootCmd = &cobra.Command{
		Use:   "fnpack",
		Short: "Package function units into reproducible deployment archives",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &packager.Options{
				ConfigPath: configPath,
				OutputDir:  outputDir,
			}

			return packager.Run(ctx, options)
		},
	}
)

// Execute runs the fnpack CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory for produced archives (overrides configuration)")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "info", "logging level (debug, info, warn, error)")
}
