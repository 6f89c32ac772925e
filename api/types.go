package api

import (
	"github.com/trustlevel/trustvote/election"
	"github.com/trustlevel/trustvote/types"
)

// CreateEventRequest is the body to create a new voting event.
type CreateEventRequest struct {
	Name        string          `json:"eventName"`
	Options     []string        `json:"options"`
	PowerMode   types.PowerMode `json:"powerMode,omitempty"`
	VotingPower int             `json:"votingPower,omitempty"`
	StartTime   *int64          `json:"startingDate,omitempty"`
	EndTime     *int64          `json:"endingDate,omitempty"`
	Capacity    int             `json:"groupSize,omitempty"`
}

// CreateEventResponse returns the generated event id and its admin
// capability token. The token is only ever exposed here.
type CreateEventResponse struct {
	EventID    uint64 `json:"eventId"`
	AdminToken string `json:"adminToken"`
}

// EventResponse is the full event descriptor, including live tallies and
// the derived lifecycle status.
type EventResponse struct {
	*types.Event
	Status  types.Status `json:"status"`
	Members int          `json:"members"`
}

// UpdateEventRequest is the body to update an event configuration. Absent
// fields keep their stored value.
type UpdateEventRequest struct {
	Options     []string         `json:"options,omitempty"`
	PowerMode   *types.PowerMode `json:"powerMode,omitempty"`
	VotingPower *int             `json:"votingPower,omitempty"`
	StartTime   *int64           `json:"startingDate,omitempty"`
	EndTime     *int64           `json:"endingDate,omitempty"`
}

// InviteRequest is the body to invite a batch of contacts.
type InviteRequest struct {
	Contacts []string `json:"contacts"`
}

// InviteResponse is the per-batch delivery report.
type InviteResponse struct {
	*election.InviteReport
}

// TokenResponse is the outcome of a token validation.
type TokenResponse struct {
	Valid    bool   `json:"valid"`
	Identity uint64 `json:"identity,omitempty"`
	EventID  uint64 `json:"eventId,omitempty"`
	Contact  string `json:"contact,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

// RegisterRequest is the body to register a membership commitment.
type RegisterRequest struct {
	Token      string         `json:"token"`
	Commitment types.HexBytes `json:"commitment"`
}

// GroupRootResponse returns the accumulator root after a membership change.
type GroupRootResponse struct {
	Root types.HexBytes `json:"root"`
}

// MembersResponse lists the registered identities in insertion order.
type MembersResponse struct {
	Members []uint64     `json:"members"`
	Leaves  []types.Leaf `json:"leaves,omitempty"`
}

// CastRequest is the body to submit a vote.
type CastRequest struct {
	Identity    uint64 `json:"identity"`
	OptionIndex int    `json:"optionIndex"`
}

// ResultsResponse returns the per-option tallies, ordered by option index.
type ResultsResponse struct {
	Options []types.Option `json:"options"`
}

// AdminAuthRequest is the body to validate an admin credential.
type AdminAuthRequest struct {
	Credential string `json:"credential"`
}

// AdminAuthResponse reports whether the presented credential matches.
type AdminAuthResponse struct {
	Valid bool `json:"valid"`
}
