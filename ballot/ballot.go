// Package ballot holds one event's options and tallies and enforces
// at-most-one accepted vote per authorization value. It mutates the event
// aggregate in place; the election controller serializes calls per event and
// persists the result, so the replay check-and-append is a single indivisible
// unit.
package ballot

import (
	"bytes"
	"fmt"
	"time"

	"github.com/trustlevel/trustvote/types"
)

var (
	// ErrNotOpen is returned when the voting window has not opened yet, or
	// was never configured.
	ErrNotOpen = fmt.Errorf("voting is not open")
	// ErrClosed is returned when the voting window has closed.
	ErrClosed = fmt.Errorf("voting is closed")
	// ErrAlreadyVoted is returned when the authorization value already cast
	// an accepted vote.
	ErrAlreadyVoted = fmt.Errorf("already voted")
	// ErrInvalidOption is returned when the option index names no option.
	ErrInvalidOption = fmt.Errorf("invalid option index")
)

// Cast applies one vote to the event. Preconditions are checked in order:
// window open, authorization not replayed, option index valid. On acceptance
// the option count is incremented by one and the authorization value is
// appended to the anti-replay set. Weighted events reduce to the same single
// unit per accepted vote; the mode only changes how the voter is asked to
// choose.
func Cast(ev *types.Event, auth types.HexBytes, option int, now time.Time) error {
	if ev.StartTime == nil || now.Unix() < *ev.StartTime {
		return ErrNotOpen
	}
	if ev.EndTime != nil && now.Unix() > *ev.EndTime {
		return ErrClosed
	}
	if HasVoted(ev, auth) {
		return ErrAlreadyVoted
	}
	if option < 0 || option >= len(ev.Options) {
		return ErrInvalidOption
	}
	ev.Options[option].Votes++
	ev.Voted = append(ev.Voted, append(types.HexBytes(nil), auth...))
	return nil
}

// HasVoted reports whether the authorization value already appears in the
// anti-replay set.
func HasVoted(ev *types.Event, auth types.HexBytes) bool {
	for _, v := range ev.Voted {
		if bytes.Equal(v, auth) {
			return true
		}
	}
	return false
}

// Results returns a copy of the options with their running tallies, ordered
// by option index. Withholding display until the window closes is the
// caller's policy.
func Results(ev *types.Event) []types.Option {
	return append([]types.Option(nil), ev.Options...)
}

// Configure replaces the event's options with fresh zero-count entries with
// contiguous indices. The anti-replay set is untouched.
func Configure(ev *types.Event, options []string) {
	ev.Options = make([]types.Option, len(options))
	for i, text := range options {
		ev.Options[i] = types.Option{Index: i, Text: text}
	}
}
