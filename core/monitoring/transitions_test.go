package monitoring

import (
	"testing"

	"statuspulse/core/store"

	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name       string
		prevStatus string
		prevKnown  bool
		nextStatus string
		want       Transition
	}{
		{"first success", "", false, store.PingSuccess, TransitionFirstUp},
		{"first failure", "", false, store.PingFailure, TransitionFirstDown},
		{"first timeout", "", false, store.PingTimeout, TransitionFirstDown},
		{"stays up", store.PingSuccess, true, store.PingSuccess, TransitionNone},
		{"stays down", store.PingFailure, true, store.PingFailure, TransitionNone},
		{"failure then timeout is not an edge", store.PingFailure, true, store.PingTimeout, TransitionNone},
		{"timeout then failure is not an edge", store.PingTimeout, true, store.PingFailure, TransitionNone},
		{"goes down", store.PingSuccess, true, store.PingFailure, TransitionUpToDown},
		{"times out", store.PingSuccess, true, store.PingTimeout, TransitionUpToDown},
		{"recovers from failure", store.PingFailure, true, store.PingSuccess, TransitionDownToUp},
		{"recovers from timeout", store.PingTimeout, true, store.PingSuccess, TransitionDownToUp},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.prevStatus, tc.prevKnown, tc.nextStatus))
		})
	}
}

func TestStateTrackerObserveAlwaysRecords(t *testing.T) {
	tracker := NewStateTracker()

	require.Equal(t, TransitionFirstUp, tracker.Observe(1, store.PingSuccess))
	require.Equal(t, TransitionUpToDown, tracker.Observe(1, store.PingFailure))
	// No edge, but the latest status still wins.
	require.Equal(t, TransitionNone, tracker.Observe(1, store.PingTimeout))
	last, ok := tracker.Last(1)
	require.True(t, ok)
	require.Equal(t, store.PingTimeout, last)
	require.Equal(t, TransitionDownToUp, tracker.Observe(1, store.PingSuccess))
}

func TestStateTrackerSeedAndForget(t *testing.T) {
	tracker := NewStateTracker()
	tracker.Seed(7, store.PingFailure)

	require.Equal(t, TransitionDownToUp, tracker.Observe(7, store.PingSuccess))

	tracker.Forget(7)
	_, ok := tracker.Last(7)
	require.False(t, ok)
	require.Equal(t, TransitionFirstUp, tracker.Observe(7, store.PingSuccess))
}
