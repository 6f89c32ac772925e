package ballot

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/trustlevel/trustvote/types"
)

func newOpenEvent(now time.Time, options ...string) *types.Event {
	start := now.Add(-time.Hour).Unix()
	end := now.Add(time.Hour).Unix()
	ev := &types.Event{
		ID:        1,
		Name:      "board election",
		StartTime: &start,
		EndTime:   &end,
	}
	Configure(ev, options)
	return ev
}

func TestCast(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "yes", "no")

	err := Cast(ev, types.AuthFromIdentity(1), 0, now)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, ev.Options[0].Votes, qt.Equals, uint64(1))
	qt.Assert(t, ev.Options[1].Votes, qt.Equals, uint64(0))
	qt.Assert(t, HasVoted(ev, types.AuthFromIdentity(1)), qt.IsTrue)
	qt.Assert(t, HasVoted(ev, types.AuthFromIdentity(2)), qt.IsFalse)
}

func TestCastReplayRejected(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "yes", "no")
	auth := types.AuthFromIdentity(1)

	err := Cast(ev, auth, 0, now)
	qt.Assert(t, err, qt.IsNil)

	// A replay is rejected regardless of the chosen option, and nothing
	// changes.
	err = Cast(ev, auth, 1, now)
	qt.Assert(t, err, qt.ErrorIs, ErrAlreadyVoted)
	qt.Assert(t, ev.Options[0].Votes, qt.Equals, uint64(1))
	qt.Assert(t, ev.Options[1].Votes, qt.Equals, uint64(0))
	qt.Assert(t, len(ev.Voted), qt.Equals, 1)
}

func TestCastWindowGating(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "yes", "no")
	auth := types.AuthFromIdentity(1)

	// Before the window opens.
	err := Cast(ev, auth, 0, time.Unix(*ev.StartTime-1, 0))
	qt.Assert(t, err, qt.ErrorIs, ErrNotOpen)

	// After the window closes.
	err = Cast(ev, auth, 0, time.Unix(*ev.EndTime+1, 0))
	qt.Assert(t, err, qt.ErrorIs, ErrClosed)

	// Window boundaries are inclusive.
	err = Cast(ev, auth, 0, time.Unix(*ev.StartTime, 0))
	qt.Assert(t, err, qt.IsNil)
	err = Cast(ev, types.AuthFromIdentity(2), 0, time.Unix(*ev.EndTime, 0))
	qt.Assert(t, err, qt.IsNil)
}

func TestCastUnconfiguredEvent(t *testing.T) {
	t.Parallel()
	ev := &types.Event{ID: 1, Name: "draft event"}

	err := Cast(ev, types.AuthFromIdentity(1), 0, time.Now())
	qt.Assert(t, err, qt.ErrorIs, ErrNotOpen)
}

func TestCastInvalidOption(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "yes", "no")

	err := Cast(ev, types.AuthFromIdentity(1), 2, now)
	qt.Assert(t, err, qt.ErrorIs, ErrInvalidOption)
	err = Cast(ev, types.AuthFromIdentity(1), -1, now)
	qt.Assert(t, err, qt.ErrorIs, ErrInvalidOption)

	// The rejected attempts did not burn the authorization.
	err = Cast(ev, types.AuthFromIdentity(1), 1, now)
	qt.Assert(t, err, qt.IsNil)
}

// TestVoteSum checks that the tally total always equals the number of
// accepted votes.
func TestVoteSum(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "a", "b", "c")

	accepted := 0
	for i := uint64(1); i <= 20; i++ {
		err := Cast(ev, types.AuthFromIdentity(i), int(i%3), now)
		qt.Assert(t, err, qt.IsNil)
		accepted++
		// Replays never count.
		err = Cast(ev, types.AuthFromIdentity(i), 0, now)
		qt.Assert(t, err, qt.ErrorIs, ErrAlreadyVoted)
	}

	var total uint64
	for _, opt := range Results(ev) {
		total += opt.Votes
	}
	qt.Assert(t, total, qt.Equals, uint64(accepted))
	qt.Assert(t, len(ev.Voted), qt.Equals, accepted)
}

func TestConfigure(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "yes", "no")

	err := Cast(ev, types.AuthFromIdentity(1), 0, now)
	qt.Assert(t, err, qt.IsNil)

	// Reconfiguring replaces the options with zero counts but keeps the
	// anti-replay set.
	Configure(ev, []string{"red", "green", "blue"})
	qt.Assert(t, len(ev.Options), qt.Equals, 3)
	for i, opt := range ev.Options {
		qt.Assert(t, opt.Index, qt.Equals, i)
		qt.Assert(t, opt.Votes, qt.Equals, uint64(0))
	}
	qt.Assert(t, HasVoted(ev, types.AuthFromIdentity(1)), qt.IsTrue)
}

func TestResultsIsACopy(t *testing.T) {
	t.Parallel()
	now := time.Now()
	ev := newOpenEvent(now, "yes", "no")

	results := Results(ev)
	results[0].Votes = 42
	qt.Assert(t, ev.Options[0].Votes, qt.Equals, uint64(0))
}
