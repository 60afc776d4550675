package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/pomodoro-alarm/internal/config"
	"github.com/oshokin/pomodoro-alarm/internal/service/server"
	"github.com/oshokin/pomodoro-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// rpcAddress overrides the JSON-RPC listen address.
	rpcAddress string
	// storeFile overrides the trigger store path.
	storeFile string
	// logLevel overrides the configured log level.
	logLevel string

	// rootCmd represents the base command for running the daemon.
	rootCmd = &cobra.Command{
		Use:   "pomodoro-server [listen-address]",
		Short: "Run the pomodoro alarm daemon.",
		Long: `Starts the daemon that holds one pending alarm and rings it on time.

When the alarm fires the daemon shows a persistent desktop alert, loops the alarm
sound and runs the vibration waveform until it is stopped. On Linux the real-time
clock wake alarm is armed so a suspended machine wakes up for the alarm.

The gRPC API listens on server_addr from the configuration file; pass a listen
address argument to override it. The JSON-RPC channel for UI clients listens on
rpc_addr when set. The pending alarm survives restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				RPCAddress:    rpcAddress,
				StoreFile:     storeFile,
				LogLevel:      logLevel,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the pomodoro-server CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVar(&rpcAddress, "rpc-addr", "", "JSON-RPC listen address, overrides rpc_addr")
	rootCmd.Flags().
		StringVarP(&storeFile, "store-file", "s", "", "trigger store path of the file or sqlite backend")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
}
