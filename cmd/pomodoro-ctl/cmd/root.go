package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/service/client"
	"github.com/oshokin/pomodoro-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the configured server address.
	serverAddress string

	// rootCmd represents the base command of the control CLI.
	rootCmd = &cobra.Command{
		Use:   "pomodoro-ctl",
		Short: "Control the pomodoro alarm daemon.",
		Long: `Schedules, cancels and silences alarms on a running pomodoro-server.

Only one alarm can be pending: starting a new one replaces the previous one.
Stopping a ringing alarm does not cancel a pending one; use cancel for that.`,
		SilenceUsage: true,
	}
)

// Execute runs the pomodoro-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// options returns the connection options shared by all subcommands.
func options() *client.Options {
	return &client.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
	}
}

// signalContext cancels on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&serverAddress, "server", "a", "", "server address, overrides server_addr")

	rootCmd.AddCommand(startCmd, cancelCmd, stopCmd, statusCmd, settingsCmd)
}
