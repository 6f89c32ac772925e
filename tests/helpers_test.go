package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"

	"github.com/trustlevel/trustvote/api"
	"github.com/trustlevel/trustvote/api/client"
	"github.com/trustlevel/trustvote/directory"
	"github.com/trustlevel/trustvote/election"
	"github.com/trustlevel/trustvote/group"
	"github.com/trustlevel/trustvote/ledger"
	"github.com/trustlevel/trustvote/notify"
	"github.com/trustlevel/trustvote/storage"
	"github.com/trustlevel/trustvote/types"
	"github.com/trustlevel/trustvote/util"
)

func init() {
	log.Init("debug", "stdout", nil)
}

// recordingNotifier captures delivered invitations so the tests can read the
// issued token values the way an invitee would from their inbox.
type recordingNotifier struct {
	delivered []notify.Invitation
}

func (n *recordingNotifier) Deliver(inv notify.Invitation) error {
	n.delivered = append(n.delivered, inv)
	return nil
}

// setupAPI starts a full service stack on a random localhost port and
// returns a connected client plus the notifier capturing deliveries.
func setupAPI(t *testing.T) (*client.HTTPclient, *recordingNotifier) {
	stg := storage.New(metadb.NewTest(t))
	groups := group.NewDB(stg.Database(), group.Config{})
	dir := directory.New(stg)
	ldg := ledger.New(stg, dir, nil)
	notifier := &recordingNotifier{}
	elections := election.New(stg, groups, ldg, dir, notifier, nil)

	port := util.RandomInt(40000, 60000)
	_, err := api.New(&api.APIConfig{
		Host:     "127.0.0.1",
		Port:     port,
		Election: elections,
	})
	qt.Assert(t, err, qt.IsNil)

	// Wait for the HTTP server to start.
	time.Sleep(500 * time.Millisecond)

	cli, err := client.New(fmt.Sprintf("http://127.0.0.1:%d", port))
	qt.Assert(t, err, qt.IsNil)
	return cli, notifier
}

// createEvent creates an event over the API and returns its id and admin
// token.
func createEvent(c *qt.C, cli *client.HTTPclient, req *api.CreateEventRequest) (uint64, string) {
	body, code, err := cli.Request(client.HTTPPOST, req, nil, api.EventsEndpoint)
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK, qt.Commentf("response body %s", string(body)))

	var resp api.CreateEventResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&resp), qt.IsNil)
	c.Assert(resp.EventID, qt.Not(qt.Equals), uint64(0))
	c.Assert(resp.AdminToken, qt.Not(qt.Equals), "")
	return resp.EventID, resp.AdminToken
}

// getEvent fetches the event descriptor.
func getEvent(c *qt.C, cli *client.HTTPclient, id uint64) *api.EventResponse {
	body, code, err := cli.Request(client.HTTPGET, nil, nil, api.EventsEndpoint, fmt.Sprintf("%d", id))
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK, qt.Commentf("response body %s", string(body)))

	var resp api.EventResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&resp), qt.IsNil)
	return &resp
}

// registerMember registers a commitment with an invitation token and returns
// the new accumulator root.
func registerMember(c *qt.C, cli *client.HTTPclient, eventID uint64, token string) types.HexBytes {
	commitment, err := util.Commitment(util.RandomBytes(32))
	c.Assert(err, qt.IsNil)

	body, code, err := cli.Request(client.HTTPPOST, &api.RegisterRequest{
		Token:      token,
		Commitment: commitment,
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "members")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK, qt.Commentf("response body %s", string(body)))

	var resp api.GroupRootResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&resp), qt.IsNil)
	c.Assert(len(resp.Root), qt.Not(qt.Equals), 0)
	return resp.Root
}

// castVote submits one vote and returns the HTTP status code.
func castVote(c *qt.C, cli *client.HTTPclient, eventID, identity uint64, option int) int {
	_, code, err := cli.Request(client.HTTPPOST, &api.CastRequest{
		Identity:    identity,
		OptionIndex: option,
	}, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "votes")
	c.Assert(err, qt.IsNil)
	return code
}

// getResults fetches the running tallies.
func getResults(c *qt.C, cli *client.HTTPclient, eventID uint64) []types.Option {
	body, code, err := cli.Request(client.HTTPGET, nil, nil, api.EventsEndpoint, fmt.Sprintf("%d", eventID), "results")
	c.Assert(err, qt.IsNil)
	c.Assert(code, qt.Equals, http.StatusOK, qt.Commentf("response body %s", string(body)))

	var resp api.ResultsResponse
	c.Assert(json.NewDecoder(bytes.NewReader(body)).Decode(&resp), qt.IsNil)
	return resp.Options
}
