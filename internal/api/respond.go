// internal/api/respond.go
//
// JSON response envelope shared by every route.
//
// Context
// -------
//   Every API response is `{"success": bool, …}`; failures carry a
//   human-readable `error` string and nothing else.  Unexpected faults
//   always collapse to the same opaque 500 body so platform error
//   details never leak to a storefront visitor; the details go to the
//   server log only.
//
//------------------------------------------------------------------------------

package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// envelope is the base response shape.  Handlers embed extra fields by
// passing a map or struct that marshals alongside it.
type envelope map[string]any

// respond writes v as JSON with the given status.
func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "err", err)
	}
}

// ok writes a success envelope, merging extra fields into it.
func ok(w http.ResponseWriter, extra envelope) {
	body := envelope{"success": true}
	for k, v := range extra {
		body[k] = v
	}
	respond(w, http.StatusOK, body)
}

// fail writes a failure envelope with a user-safe message.
func fail(w http.ResponseWriter, status int, msg string) {
	respond(w, status, envelope{"success": false, "error": msg})
}

// internalError logs the fault and writes the opaque 500 body.
func internalError(w http.ResponseWriter, log *zap.SugaredLogger, op string, err error) {
	log.Errorw("handler fault", "op", op, "err", err)
	fail(w, http.StatusInternalServerError, "internal error")
}
