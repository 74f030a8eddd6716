package api

import (
	"net/http"
	"net/url"

	"github.com/bm-streak/internal/logging"
)

// handleNotification handles POST /api/notification.
// It relays {title, body} to the caller-supplied frame notification URL.
func (s *Server) handleNotification(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL   string `json:"url"`
		Token string `json:"token"`
		Title string `json:"title"`
		Body  string `json:"body"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.URL == "" || req.Token == "" || req.Title == "" {
		respondError(w, http.StatusBadRequest, "Missing required parameters")
		return
	}

	target, err := url.Parse(req.URL)
	if err != nil || (target.Scheme != "https" && target.Scheme != "http") || target.Host == "" {
		respondError(w, http.StatusBadRequest, "Invalid notification URL")
		return
	}

	data, err := s.forwarder.Forward(r.Context(), req.URL, req.Token, req.Title, req.Body)
	if err != nil {
		logging.FromContext(r.Context()).WithError(err).Warn("Error sending notification")
		respondError(w, http.StatusInternalServerError, "Failed to send notification")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}
