package cmd

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/pomodoro-alarm/internal/service/client"
)

// TestStartFlags_ZeroValues verifies zero-valued fire time flags still select a fire time.
func TestStartFlags_ZeroValues(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		args []string
		want time.Time
	}{
		{name: "in zero", args: []string{"--in", "0"}, want: now},
		{name: "at-ms zero", args: []string{"--at-ms", "0"}, want: time.UnixMilli(0)},
		{name: "in", args: []string{"--in", "25m"}, want: now.Add(25 * time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var opts client.StartOptions

			cmd := &cobra.Command{Use: "start"}
			bindStartFlags(cmd, &opts)

			require.NoError(t, cmd.ParseFlags(tt.args))
			require.NoError(t, cmd.ValidateFlagGroups())

			opts.Given = givenFireTimeFlags(cmd)

			got, err := client.ResolveFireTime(now, &opts)
			require.NoError(t, err)
			require.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	cmd := &cobra.Command{Use: "start"}
	bindStartFlags(cmd, new(client.StartOptions))

	require.NoError(t, cmd.ParseFlags(nil))
	require.Error(t, cmd.ValidateFlagGroups(), "a fire time flag is required")
}
