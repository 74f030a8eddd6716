package api

import (
	"net/http"
	"strconv"

	"github.com/bm-streak/internal/types"
)

// handleSendLimit handles GET /api/send-limit?address=
func (s *Server) handleSendLimit(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if types.IsBlankIdentity(address) {
		respondError(w, http.StatusBadRequest, "Address is required")
		return
	}

	status, err := s.queryService.GetSendLimitStatus(r.Context(), address)
	if err != nil {
		respondServiceError(w, r, err, "Failed to check send limit")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"limitReached": status.LimitReached,
		"count":        status.Count,
		"limit":        status.Limit,
	})
}

// handleSendBM handles POST /api/send-bm
func (s *Server) handleSendBM(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender    string `json:"sender"`
		Recipient string `json:"recipient"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.sendService.Send(r.Context(), req.Sender, req.Recipient)
	if err != nil {
		respondServiceError(w, r, err, "Failed to send BM")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"limitReached": result.LimitReached,
	})
}

// handleReceived handles GET /api/received?address=&limit=
func (s *Server) handleReceived(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	address := query.Get("address")
	if types.IsBlankIdentity(address) {
		respondError(w, http.StatusBadRequest, "Address is required")
		return
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	receipts, err := s.queryService.ListReceived(r.Context(), address, limit)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch received BM")
		return
	}

	type receiptView struct {
		Sender    string `json:"sender"`
		Timestamp string `json:"timestamp"`
	}
	views := make([]receiptView, 0, len(receipts))
	for _, rc := range receipts {
		views = append(views, receiptView{Sender: rc.Sender, Timestamp: types.FormatTime(rc.Timestamp)})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"received": views,
	})
}
