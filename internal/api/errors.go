package api

import (
	"encoding/json"
	"net/http"

	"github.com/bm-streak/internal/errors"
	"github.com/bm-streak/internal/logging"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 16

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error"`
	LimitReached bool   `json:"limitReached,omitempty"`
}

// respondError sends {success: false, error} with the given status.
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Success: false, Error: message})
}

// respondServiceError maps a service error onto the HTTP response.
// System errors are logged and replaced with fallback so no cause leaks.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	catErr := errors.Categorize(err)

	if catErr.StatusCode >= http.StatusInternalServerError {
		logging.FromContext(r.Context()).WithError(err).WithField("path", r.URL.Path).Error("Request failed")
		respondError(w, http.StatusInternalServerError, fallback)
		return
	}

	respondJSON(w, catErr.StatusCode, ErrorResponse{
		Success:      false,
		Error:        catErr.Message,
		LimitReached: catErr.Code == errors.CodeLimitReached,
	})
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logging.WithError(err).Warn("Failed to encode response")
		}
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	return decoder.Decode(v)
}
