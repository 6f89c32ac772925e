package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/trustlevel/trustvote/election"
)

// createEvent creates a new voting event.
// POST /events
func (a *API) createEvent(w http.ResponseWriter, r *http.Request) {
	req := &CreateEventRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	ev, err := a.elections.CreateEvent(election.CreateRequest{
		Name:        req.Name,
		Options:     req.Options,
		PowerMode:   req.PowerMode,
		VotingPower: req.VotingPower,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
	})
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &CreateEventResponse{
		EventID:    ev.ID,
		AdminToken: ev.AdminToken,
	})
}

// event returns the full event descriptor including live tallies.
// GET /events/{eventId}
func (a *API) event(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	ev, err := a.elections.Event(id)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	members, err := a.elections.Members(id)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &EventResponse{
		Event:   ev,
		Status:  ev.Status(time.Now()),
		Members: len(members),
	})
}

// updateEvent replaces the event configuration. Admin only.
// PUT /events/{eventId}
func (a *API) updateEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	if !a.requireAdmin(w, r, id) {
		return
	}
	req := &UpdateEventRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	ev, err := a.elections.UpdateEvent(id, election.UpdateRequest{
		Options:     req.Options,
		PowerMode:   req.PowerMode,
		VotingPower: req.VotingPower,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	})
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &EventResponse{
		Event:  ev,
		Status: ev.Status(time.Now()),
	})
}

// deleteEvent destroys an event and everything it owns. Admin only.
// DELETE /events/{eventId}
func (a *API) deleteEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	if !a.requireAdmin(w, r, id) {
		return
	}
	if err := a.elections.DeleteEvent(id); err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// adminAuth validates an admin credential without any side effect.
// POST /events/{eventId}/admin
func (a *API) adminAuth(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	req := &AdminAuthRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	valid, err := a.elections.AdminAuth(id, req.Credential)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &AdminAuthResponse{Valid: valid})
}
