package types

import (
	"encoding/binary"
	"encoding/json"
	"time"
)

// PowerMode defines how voting power is presented to the voter. In weighted
// mode the voter distributes VotingPower points across the options on the
// client side and submits the plurality choice; the tally always counts one
// unit per accepted vote, whatever the mode.
type PowerMode string

const (
	PowerModeSimple   PowerMode = "simple"
	PowerModeWeighted PowerMode = "weighted"
)

// Valid reports whether the power mode is one of the known values.
func (m PowerMode) Valid() bool {
	return m == PowerModeSimple || m == PowerModeWeighted
}

// Status is the lifecycle state of an event. It is derived from the wall
// clock and the event configuration, never persisted, so every observer of
// the same event record agrees on it.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusConfigured Status = "configured"
	StatusOpen       Status = "open"
	StatusClosed     Status = "closed"
)

// Option is one votable choice of an event. Indices are contiguous from 0,
// assigned at configuration time and never reused.
type Option struct {
	Index int    `json:"index" cbor:"0,keyasint"`
	Text  string `json:"text"  cbor:"1,keyasint"`
	Votes uint64 `json:"votes" cbor:"2,keyasint"`
}

// Leaf is one (identity, commitment) entry of the membership accumulator.
type Leaf struct {
	Identity   uint64   `json:"identity"   cbor:"0,keyasint"`
	Commitment HexBytes `json:"commitment" cbor:"1,keyasint"`
}

// Invitation is a display-only record of an invited contact. It deduplicates
// by contact address and is not an authorization check; the invitation
// tokens are.
type Invitation struct {
	Contact   string `json:"contact"   cbor:"0,keyasint"`
	Identity  uint64 `json:"identity"  cbor:"1,keyasint"`
	InvitedAt int64  `json:"invitedAt" cbor:"2,keyasint"`
}

// Event is the aggregate record of one voting event. It owns its options,
// its accumulator root, its anti-replay set and its invited-contacts list.
// All timestamps are POSIX seconds.
type Event struct {
	ID          uint64    `json:"eventId"               cbor:"0,keyasint"`
	Name        string    `json:"eventName"             cbor:"1,keyasint"`
	Options     []Option  `json:"options,omitempty"     cbor:"2,keyasint,omitempty"`
	PowerMode   PowerMode `json:"powerMode"             cbor:"3,keyasint"`
	VotingPower int       `json:"votingPower,omitempty" cbor:"4,keyasint,omitempty"`
	StartTime   *int64    `json:"startingDate,omitempty" cbor:"5,keyasint,omitempty"`
	EndTime     *int64    `json:"endingDate,omitempty"   cbor:"6,keyasint,omitempty"`

	// AdminToken is the capability credential granting management access
	// to this event. Never exposed through the API.
	AdminToken string `json:"-" cbor:"7,keyasint"`

	GroupRoot HexBytes `json:"groupRoot,omitempty" cbor:"8,keyasint,omitempty"`
	Capacity  int      `json:"groupSize"           cbor:"9,keyasint"`

	// Voted is the anti-replay set, in acceptance order. Entries are opaque
	// authorization values; today they are derived from the plaintext
	// identity, a proof-verified nullifier can replace them without
	// changing the ballot contract.
	Voted []HexBytes `json:"-" cbor:"10,keyasint,omitempty"`

	Invited           []Invitation `json:"invited,omitempty"           cbor:"11,keyasint,omitempty"`
	InvitationsSentAt *int64       `json:"invitationsSentAt,omitempty" cbor:"12,keyasint,omitempty"`

	// BlockchainData carries the on-chain artifacts assembled by external
	// tooling. Persisted verbatim, never interpreted.
	BlockchainData HexBytes `json:"blockchainData,omitempty" cbor:"13,keyasint,omitempty"`
}

// Status derives the lifecycle state of the event at the given time.
func (e *Event) Status(now time.Time) Status {
	switch {
	case len(e.Options) == 0:
		return StatusDraft
	case e.StartTime == nil || now.Unix() < *e.StartTime:
		return StatusConfigured
	case e.EndTime != nil && now.Unix() > *e.EndTime:
		return StatusClosed
	default:
		return StatusOpen
	}
}

func (e *Event) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return ""
	}
	return string(data)
}

// AuthFromIdentity builds the vote-authorization value for a plaintext
// identity. It stands in for the nullifier a proof system would reveal.
func AuthFromIdentity(identity uint64) HexBytes {
	auth := make(HexBytes, 8)
	binary.BigEndian.PutUint64(auth, identity)
	return auth
}
