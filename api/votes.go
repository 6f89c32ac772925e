package api

import (
	"encoding/json"
	"net/http"
)

// castVote submits one vote for the identity.
// POST /events/{eventId}/votes
func (a *API) castVote(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	req := &CastRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if err := a.elections.Cast(id, req.Identity, req.OptionIndex); err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteOK(w)
}

// results returns the per-option running tallies.
// GET /events/{eventId}/results
func (a *API) results(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	options, err := a.elections.Results(id)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &ResultsResponse{Options: options})
}
