package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/timer-toggle/internal/config"
	"github.com/oshokin/timer-toggle/internal/service/toggler"
	"github.com/oshokin/timer-toggle/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// envFile with optional environment overrides.
	envFile string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command running the switch.
	rootCmd = &cobra.Command{
		Use:   "timer-toggle",
		Short: "Run a switch that turns itself off after a timeout.",
		Long: `Runs a two-state switch driven from the terminal.

Type 't' to toggle the switch and 'q' to quit. While the switch is on, a timer
reports the elapsed time and turns the switch off once the timeout is reached.
Settings are read from the YAML configuration file and may be overridden by
TIMER_TOGGLE_* environment variables, optionally loaded from a dotenv file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return toggler.Run(ctx, &toggler.Options{
				ConfigPath: configPath,
				EnvFile:    envFile,
				LogLevel:   logLevel,
				Input:      cmd.InOrStdin(),
				Output:     cmd.OutOrStdout(),
			})
		},
	}

	// initConfigCmd writes the default settings file.
	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Write the default configuration file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Configuration written to", configPath)

			return nil
		},
	}
)

// Execute runs the timer-toggle CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "path to optional dotenv file with overrides")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(initConfigCmd)
}
