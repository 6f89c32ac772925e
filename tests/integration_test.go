package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/trustlevel/trustvote/api"
	"github.com/trustlevel/trustvote/api/client"
)

// TestVotingFlow walks the whole lifecycle over the HTTP surface: create,
// invite, validate, register, vote, tally, remove, delete.
func TestVotingFlow(t *testing.T) {
	c := qt.New(t)
	cli, notifier := setupAPI(t)

	start := time.Now().Add(-time.Hour).Unix()
	end := time.Now().Add(time.Hour).Unix()
	eventID, adminToken := createEvent(c, cli, &api.CreateEventRequest{
		Name:      "annual assembly",
		Options:   []string{"approve", "reject", "abstain"},
		StartTime: &start,
		EndTime:   &end,
	})

	ev := getEvent(c, cli, eventID)
	c.Assert(ev.Name, qt.Equals, "annual assembly")
	c.Assert(string(ev.Status), qt.Equals, "open")
	c.Assert(ev.Members, qt.Equals, 0)

	// Inviting without the admin token is rejected.
	_, code, err := cli.Request(client.HTTPPOST, &api.InviteRequest{
		Contacts: []string{"alice@example.com"},
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "invitations")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusUnauthorized)

	// With the admin token the batch goes through.
	cli.SetAdminToken(adminToken)
	body, code, err := cli.Request(client.HTTPPOST, &api.InviteRequest{
		Contacts: []string{"alice@example.com", "bob@example.com"},
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "invitations")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK, qt.Commentf("response body %s", string(body)))

	var report api.InviteResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&report), qt.IsNil)
	c.Assert(report.SuccessCount, qt.Equals, 2)
	c.Assert(report.FailedCount, qt.Equals, 0)
	c.Assert(len(notifier.delivered), qt.Equals, 2)

	// The token from the invitation link validates.
	aliceToken := notifier.delivered[0].Token
	body, code, err = cli.Request(client.HTTPGET, nil, nil, "tokens", aliceToken)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)
	var tokResp api.TokenResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&tokResp), qt.IsNil)
	c.Assert(tokResp.Valid, qt.IsTrue)
	c.Assert(tokResp.EventID, qt.Equals, eventID)
	c.Assert(tokResp.Contact, qt.Equals, "alice@example.com")
	aliceIdentity := tokResp.Identity

	bobToken := notifier.delivered[1].Token
	body, code, err = cli.Request(client.HTTPGET, nil, nil, "tokens", bobToken)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&tokResp), qt.IsNil)
	bobIdentity := tokResp.Identity

	// Register both invitees.
	root1 := registerMember(c, cli, eventID, aliceToken)
	root2 := registerMember(c, cli, eventID, bobToken)
	c.Assert(root2.String(), qt.Not(qt.Equals), root1.String())

	// The consumed token validates to valid=false with a reason.
	body, code, err = cli.Request(client.HTTPGET, nil, nil, "tokens", aliceToken)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&tokResp), qt.IsNil)
	c.Assert(tokResp.Valid, qt.IsFalse)
	c.Assert(tokResp.Reason, qt.Contains, "used")

	// Reusing the token for a second registration is a conflict.
	_, code, err = cli.Request(client.HTTPPOST, &api.RegisterRequest{
		Token:      aliceToken,
		Commitment: root1,
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "members")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusConflict)

	ev = getEvent(c, cli, eventID)
	c.Assert(ev.Members, qt.Equals, 2)
	c.Assert(ev.GroupRoot.String(), qt.Equals, root2.String())

	// Vote: alice approves, then tries to vote again.
	c.Assert(castVote(c, cli, eventID, aliceIdentity, 0), qt.Equals, http.StatusOK)
	c.Assert(castVote(c, cli, eventID, aliceIdentity, 1), qt.Equals, http.StatusConflict)
	c.Assert(castVote(c, cli, eventID, bobIdentity, 1), qt.Equals, http.StatusOK)

	// Out-of-range option.
	c.Assert(castVote(c, cli, eventID, 999, 5), qt.Equals, http.StatusBadRequest)

	results := getResults(c, cli, eventID)
	c.Assert(len(results), qt.Equals, 3)
	c.Assert(results[0].Votes, qt.Equals, uint64(1))
	c.Assert(results[1].Votes, qt.Equals, uint64(1))
	c.Assert(results[2].Votes, qt.Equals, uint64(0))

	// Remove bob; the root changes back to the alice-only set.
	body, code, err = cli.Request(client.HTTPDELETE, nil, nil,
		api.EventsEndpoint, fmt.Sprintf("%d", eventID), "members", fmt.Sprintf("%d", bobIdentity))
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK, qt.Commentf("response body %s", string(body)))
	var rootResp api.GroupRootResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&rootResp), qt.IsNil)
	c.Assert(rootResp.Root.String(), qt.Equals, root1.String())

	// Delete the event; it is gone along with its tokens.
	_, code, err = cli.Request(client.HTTPDELETE, nil, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID))
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)

	_, code, err = cli.Request(client.HTTPGET, nil, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID))
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusNotFound)
	body, code, err = cli.Request(client.HTTPGET, nil, nil, "tokens", bobToken)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&tokResp), qt.IsNil)
	c.Assert(tokResp.Valid, qt.IsFalse)
	c.Assert(tokResp.Reason, qt.Contains, "not found")
}

// TestAdminAuthEndpoint checks credential validation with no side effects.
func TestAdminAuthEndpoint(t *testing.T) {
	c := qt.New(t)
	cli, _ := setupAPI(t)

	eventID, adminToken := createEvent(c, cli, &api.CreateEventRequest{
		Name:    "quick poll",
		Options: []string{"yes", "no"},
	})

	body, code, err := cli.Request(client.HTTPPOST, &api.AdminAuthRequest{
		Credential: adminToken,
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "admin")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)
	var resp api.AdminAuthResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&resp), qt.IsNil)
	c.Assert(resp.Valid, qt.IsTrue)

	body, code, err = cli.Request(client.HTTPPOST, &api.AdminAuthRequest{
		Credential: "wrong",
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "admin")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK)
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&resp), qt.IsNil)
	c.Assert(resp.Valid, qt.IsFalse)
}

// TestDraftEventRejectsVotes checks the lifecycle gating over HTTP.
func TestDraftEventRejectsVotes(t *testing.T) {
	c := qt.New(t)
	cli, _ := setupAPI(t)

	// No window configured: the event is never open.
	eventID, _ := createEvent(c, cli, &api.CreateEventRequest{
		Name:    "unscheduled",
		Options: []string{"yes", "no"},
	})

	ev := getEvent(c, cli, eventID)
	c.Assert(string(ev.Status), qt.Equals, "configured")

	code := castVote(c, cli, eventID, 1, 0)
	c.Assert(code, qt.Equals, http.StatusConflict)
}
