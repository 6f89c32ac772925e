package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.vocdoni.io/dvote/log"
)

// httpWriteJSON helper function allows to write a JSON response.
func httpWriteJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	jdata, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	if _, err := w.Write(jdata); err != nil {
		log.Warnw("failed to write http response", "error", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// httpWriteOK helper function allows to write an OK response.
func httpWriteOK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("\n")); err != nil {
		log.Warnw("failed to write on response", "error", err)
	}
}

// urlParamUint64 parses a decimal uint64 URL parameter.
func urlParamUint64(r *http.Request, name string) (uint64, bool) {
	v, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// requireAdmin checks the admin capability header of a management request.
// It writes the error response itself and reports whether to continue.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request, eventID uint64) bool {
	ok, err := a.elections.AdminAuth(eventID, r.Header.Get(AdminTokenHeader))
	if err != nil {
		fromCoreError(err).Write(w)
		return false
	}
	if !ok {
		ErrUnauthorized.Write(w)
		return false
	}
	return true
}
