package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"textpipe/internal/manager"
	"textpipe/pkg/pipeline"
	"textpipe/pkg/types"
)

// HTTPError allows services to pick the HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusForError maps service errors onto HTTP status codes. Anything the
// caller can fix is a 400; unknown models 404; backpressure 429; a runtime
// missing from the build 503; the rest is a plain 500.
func statusForError(err error) int {
	switch {
	case pipeline.IsConfiguration(err), pipeline.IsUnsupportedTask(err), pipeline.IsIncompatibleObject(err):
		return http.StatusBadRequest
	case manager.IsModelNotFound(err):
		return http.StatusNotFound
	case manager.IsTooBusy(err):
		return http.StatusTooManyRequests
	case pipeline.IsRuntimeUnavailable(err):
		return http.StatusServiceUnavailable
	}
	var he HTTPError
	if errors.As(err, &he) {
		return he.StatusCode()
	}
	return http.StatusInternalServerError
}

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, types.ErrorResponse{Error: msg, Code: status})
}
