//nolint:lll
package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/trustlevel/trustvote/ballot"
	"github.com/trustlevel/trustvote/directory"
	"github.com/trustlevel/trustvote/election"
	"github.com/trustlevel/trustvote/group"
	"github.com/trustlevel/trustvote/ledger"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the user's fault,
// and they return HTTP Status 400, 404 or 409, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's fault
// and they return HTTP Status 500 or 503, or something else if appropriate.
//
// NEVER change any of the current error codes, only append new errors after
// the current last 4XXX or 5XXX. Callers branch on these codes.
var (
	ErrResourceNotFound    = Error{Code: 40001, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("resource not found")}
	ErrMalformedBody       = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMalformedEventID    = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed event ID")}
	ErrEventNotFound       = Error{Code: 40007, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("event not found")}
	ErrInvalidInput        = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid input")}
	ErrTokenNotFound       = Error{Code: 40009, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("invitation token not found")}
	ErrTokenAlreadyUsed    = Error{Code: 40010, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("invitation token already used")}
	ErrTokenExpired        = Error{Code: 40011, HTTPstatus: http.StatusGone, Err: fmt.Errorf("invitation token expired")}
	ErrVotingNotOpen       = Error{Code: 40012, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("voting is not open")}
	ErrVotingClosed        = Error{Code: 40013, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("voting is closed")}
	ErrAlreadyVoted        = Error{Code: 40014, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("already voted")}
	ErrInvalidOption       = Error{Code: 40015, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid option index")}
	ErrDuplicateCommitment = Error{Code: 40016, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("commitment already registered")}
	ErrCapacityExceeded    = Error{Code: 40017, HTTPstatus: http.StatusConflict, Err: fmt.Errorf("group capacity exceeded")}
	ErrUnauthorized        = Error{Code: 40018, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("invalid admin credential")}

	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("internal server error")}
)

// fromCoreError maps the named outcomes of the core packages to API errors,
// so callers always get a distinct code to branch on.
func fromCoreError(err error) Error {
	switch {
	case errors.Is(err, election.ErrEventNotFound):
		return ErrEventNotFound
	case errors.Is(err, election.ErrNameRequired),
		errors.Is(err, election.ErrNotEnoughOptions),
		errors.Is(err, election.ErrInvalidWindow),
		errors.Is(err, election.ErrInvalidPowerMode),
		errors.Is(err, election.ErrTokenWrongEvent),
		errors.Is(err, directory.ErrInvalidContact),
		errors.Is(err, group.ErrCapacityInvalid):
		return ErrInvalidInput.WithErr(err)
	case errors.Is(err, ledger.ErrTokenNotFound):
		return ErrTokenNotFound
	case errors.Is(err, ledger.ErrTokenAlreadyUsed):
		return ErrTokenAlreadyUsed
	case errors.Is(err, ledger.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, ballot.ErrNotOpen):
		return ErrVotingNotOpen
	case errors.Is(err, ballot.ErrClosed):
		return ErrVotingClosed
	case errors.Is(err, ballot.ErrAlreadyVoted):
		return ErrAlreadyVoted
	case errors.Is(err, ballot.ErrInvalidOption):
		return ErrInvalidOption
	case errors.Is(err, group.ErrDuplicateCommitment):
		return ErrDuplicateCommitment
	case errors.Is(err, group.ErrCapacityExceeded):
		return ErrCapacityExceeded
	case errors.Is(err, group.ErrGroupNotFound):
		return ErrEventNotFound
	default:
		return ErrGenericInternalServerError.WithErr(err)
	}
}
