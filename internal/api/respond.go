package api

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"taskboard/internal/httperr"
	"taskboard/internal/logger"
)

// errorBody is the wire shape for every failure response.
type errorBody struct {
	Error   string       `json:"error"`
	Status  int          `json:"status"`
	Details []fieldError `json:"details,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a domain error onto the JSON error shape. Unexpected
// errors are logged and surfaced as generic 500s, with a stack trace
// outside production.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verr, ok := err.(*validationError); ok {
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:   "Validation failed",
			Status:  http.StatusBadRequest,
			Details: verr.details,
		})
		return
	}

	status := httperr.StatusOf(err)
	body := errorBody{Error: err.Error(), Status: status}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "Internal server error"
		if !s.cfg.Production() {
			body.Error = err.Error()
			body.Stack = string(debug.Stack())
		}
	}
	writeJSON(w, status, body)
}
