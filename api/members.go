package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/trustlevel/trustvote/ledger"
)

// invite issues invitation tokens for a batch of contacts and delivers the
// magic links. Admin only. Per-recipient failures are reported, never fatal.
// POST /events/{eventId}/invitations
func (a *API) invite(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	if !a.requireAdmin(w, r, id) {
		return
	}
	req := &InviteRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if len(req.Contacts) == 0 {
		ErrInvalidInput.Withf("no contacts provided").Write(w)
		return
	}
	report, err := a.elections.Invite(id, req.Contacts)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &InviteResponse{InviteReport: report})
}

// invited returns the display ledger of invited contacts.
// GET /events/{eventId}/invitations
func (a *API) invited(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	invited, err := a.elections.Invited(id)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, invited)
}

// validateToken checks an invitation token without consuming it. Invalid
// tokens yield a 200 with valid=false and a reason, so link-landing pages
// can branch without parsing error codes.
// GET /tokens/{token}
func (a *API) validateToken(w http.ResponseWriter, r *http.Request) {
	value := chi.URLParam(r, TokenURLParam)
	tok, err := a.elections.ValidateToken(value)
	switch {
	case err == nil:
		httpWriteJSON(w, &TokenResponse{
			Valid:    true,
			Identity: tok.Identity,
			EventID:  tok.EventID,
			Contact:  tok.Contact,
		})
	case errors.Is(err, ledger.ErrTokenNotFound),
		errors.Is(err, ledger.ErrTokenAlreadyUsed),
		errors.Is(err, ledger.ErrTokenExpired):
		httpWriteJSON(w, &TokenResponse{
			Valid:  false,
			Reason: err.Error(),
		})
	default:
		fromCoreError(err).Write(w)
	}
}

// registerMember enrolls the identity named by the token into the event's
// membership group and returns the new accumulator root.
// POST /events/{eventId}/members
func (a *API) registerMember(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	req := &RegisterRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		ErrMalformedBody.Withf("could not decode request body: %v", err).Write(w)
		return
	}
	if req.Token == "" || len(req.Commitment) == 0 {
		ErrInvalidInput.Withf("token and commitment are required").Write(w)
		return
	}
	root, err := a.elections.Register(id, req.Token, req.Commitment)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &GroupRootResponse{Root: root})
}

// members lists the registered identities and their accumulator leaves.
// GET /events/{eventId}/members
func (a *API) members(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	members, err := a.elections.Members(id)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	leaves, err := a.elections.Leaves(id)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &MembersResponse{
		Members: members,
		Leaves:  leaves,
	})
}

// removeMember drops one identity's accumulator leaf and returns the
// recomputed root. Admin only.
// DELETE /events/{eventId}/members/{identity}
func (a *API) removeMember(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamUint64(r, EventURLParam)
	if !ok {
		ErrMalformedEventID.Write(w)
		return
	}
	if !a.requireAdmin(w, r, id) {
		return
	}
	identity, ok := urlParamUint64(r, MemberURLParam)
	if !ok {
		ErrInvalidInput.Withf("malformed identity").Write(w)
		return
	}
	root, err := a.elections.RemoveMember(id, identity)
	if err != nil {
		fromCoreError(err).Write(w)
		return
	}
	httpWriteJSON(w, &GroupRootResponse{Root: root})
}
