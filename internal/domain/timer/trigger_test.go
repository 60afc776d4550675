package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestPayloadNormalize verifies defaults are applied only to empty fields.
func TestPayloadNormalize(t *testing.T) {
	t.Parallel()

	got := Payload{}.Normalize()
	require.Equal(t, DefaultTitle, got.Title)
	require.Equal(t, DefaultSound, got.SoundRef)
	require.False(t, got.Vibrate)

	got = Payload{Title: "Focus", SoundRef: "assets/bell.mp3", Vibrate: true}.Normalize()
	require.Equal(t, "Focus", got.Title)
	require.Equal(t, "assets/bell.mp3", got.SoundRef)
	require.True(t, got.Vibrate)
}

// TestPayloadIsSilent covers the recognized silence markers.
func TestPayloadIsSilent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		ref  string
		want bool
	}{
		{ref: "default", want: false},
		{ref: "assets/bell.mp3", want: false},
		{ref: "assets/silence.mp3", want: true},
		{ref: "SILENCE", want: true},
		{ref: "silent", want: true},
		{ref: "none", want: true},
		{ref: "", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.ref, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Payload{SoundRef: tc.ref}.IsSilent())
		})
	}
}

// TestPayloadAssetPath verifies only "assets/" references resolve to an asset.
func TestPayloadAssetPath(t *testing.T) {
	t.Parallel()
	require.Equal(t, "assets/bell.mp3", Payload{SoundRef: " assets/bell.mp3 "}.AssetPath())
	require.Empty(t, Payload{SoundRef: "default"}.AssetPath())
	require.Empty(t, Payload{SoundRef: "/etc/passwd"}.AssetPath())
}

// TestPendingTrigger verifies construction, due check and cloning.
func TestPendingTrigger(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1_700_000_000_000)
	trigger := NewPendingTrigger(now.Add(time.Minute).UnixMilli(), Payload{Title: "Break"}, now)

	require.Equal(t, now.Add(time.Minute).UnixMilli(), trigger.FireAtEpochMillis())
	require.Equal(t, "Break", trigger.Payload.Title)
	require.Equal(t, DefaultSound, trigger.Payload.SoundRef)
	require.False(t, trigger.Due(now))
	require.True(t, trigger.Due(now.Add(time.Minute)))
	require.True(t, trigger.Due(now.Add(time.Hour)))

	require.Nil(t, (*PendingTrigger)(nil).Clone())

	cloned := trigger.Clone()
	require.Equal(t, trigger, cloned)
	require.NotSame(t, trigger, cloned)
}

// TestStartRequest verifies a missing fire time is rejected and past times are accepted.
func TestStartRequest(t *testing.T) {
	t.Parallel()

	var nilRequest *StartRequest
	require.ErrorIs(t, nilRequest.Validate(), ErrFireAtRequired)

	_, err := (&StartRequest{}).Trigger(time.Now())
	require.ErrorIs(t, err, ErrFireAtRequired)

	now := time.Now()
	req := &StartRequest{
		FireAtEpochMillis: EpochMillis(now.Add(-time.Hour)),
		Payload:           Payload{SoundRef: "assets/silence.mp3"},
	}

	trigger, err := req.Trigger(now)
	require.NoError(t, err)
	require.True(t, trigger.Due(now))
	require.True(t, trigger.Payload.IsSilent())
	require.Equal(t, now, trigger.ScheduledAt)
}

// TestSessionInfoClone verifies nil safety and copying.
func TestSessionInfoClone(t *testing.T) {
	t.Parallel()
	require.Nil(t, (*SessionInfo)(nil).Clone())

	s := &SessionInfo{ID: "id", Payload: Payload{Title: "t"}, Sound: true}
	c := s.Clone()
	require.Equal(t, s, c)
	require.NotSame(t, s, c)
}
