package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/pomodoro-alarm/internal/service/client"
)

var (
	// cancelCmd disarms the pending pomodoro.
	cancelCmd = &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the pending alarm.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Cancel(ctx, options(), cmd.OutOrStdout())
		},
	}

	// stopCmd silences the ringing alarm.
	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the ringing alarm. A pending alarm stays scheduled.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Stop(ctx, options(), cmd.OutOrStdout())
		},
	}

	// statusCmd prints the daemon state.
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the pending and ringing alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Status(ctx, options(), cmd.OutOrStdout())
		},
	}

	// settingsCmd opens a system settings screen on the daemon host.
	settingsCmd = &cobra.Command{
		Use:       "settings {" + client.ScreenExactAlarm + "|" + client.ScreenNotifications + "}",
		Short:     "Open the exact alarm or notification settings.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{client.ScreenExactAlarm, client.ScreenNotifications},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.OpenSettings(ctx, options(), args[0], cmd.OutOrStdout())
		},
	}
)
