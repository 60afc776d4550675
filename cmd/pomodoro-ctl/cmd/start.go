package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/pomodoro-alarm/internal/service/client"
)

var (
	// start holds the flags of the start subcommand.
	start client.StartOptions

	// startCmd schedules a pomodoro.
	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Schedule the alarm, replacing any pending one.",
		Example: `  pomodoro-ctl start --in 25m --title Focus --vibrate
  pomodoro-ctl start --at 2026-03-02T10:00:00+02:00 --sound assets/bell.ogg
  pomodoro-ctl start --cron "0 */2 * * *" --wait`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			start.Given = givenFireTimeFlags(cmd)

			return client.Start(ctx, options(), &start, cmd.OutOrStdout())
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	bindStartFlags(startCmd, &start)
}

// bindStartFlags registers the start flags of cmd into opts.
func bindStartFlags(cmd *cobra.Command, opts *client.StartOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.At, "at", "", "fire time in RFC3339")
	flags.DurationVar(&opts.In, "in", 0, "fire after this duration, e.g. 25m")
	flags.Int64Var(&opts.AtMillis, "at-ms", 0, "fire time in epoch milliseconds")
	flags.StringVar(&opts.Cron, "cron", "", "fire at the next tick of a cron expression")
	flags.StringVarP(&opts.Title, "title", "t", "", "alert title (default \"Pomodoro\")")
	flags.BoolVarP(&opts.Vibrate, "vibrate", "v", false, "run the vibration waveform")
	flags.StringVar(&opts.Sound, "sound", "", "\"default\", \"assets/<file>\" or \"silence\"")
	flags.BoolVarP(&opts.Wait, "wait", "w", false, "show a countdown until the alarm rings")

	cmd.MarkFlagsMutuallyExclusive(client.FireTimeFlags...)
	cmd.MarkFlagsOneRequired(client.FireTimeFlags...)
}

// givenFireTimeFlags reports which fire time flags were passed.
func givenFireTimeFlags(cmd *cobra.Command) map[string]bool {
	given := make(map[string]bool, len(client.FireTimeFlags))
	for _, name := range client.FireTimeFlags {
		given[name] = cmd.Flags().Changed(name)
	}

	return given
}
