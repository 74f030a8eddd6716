package api

import (
	"net/http"
	"time"

	"github.com/bm-streak/internal/types"
)

// formatOptionalTime renders t in storage format, or nil when absent
func formatOptionalTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return types.FormatTime(*t)
}

type userStreakView struct {
	Address     string      `json:"address"`
	Streak      int         `json:"streak"`
	LastCheckIn interface{} `json:"lastCheckIn"`
}

// handleGetStreak handles GET /api/streak?address=
func (s *Server) handleGetStreak(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if types.IsBlankIdentity(address) {
		respondError(w, http.StatusBadRequest, "Address is required")
		return
	}

	user, err := s.queryService.GetStreak(r.Context(), address)
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch streak data")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"streak":      user.Streak,
		"lastCheckIn": formatOptionalTime(user.LastCheckIn),
	})
}

// handleCheckIn handles POST /api/check-in
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.checkInService.CheckIn(r.Context(), req.Address)
	if err != nil {
		respondServiceError(w, r, err, "Server error")
		return
	}

	if result.AlreadyCheckedIn {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":          true,
			"streak":           result.Streak,
			"lastCheckIn":      types.FormatTime(result.LastCheckIn),
			"alreadyCheckedIn": true,
			"message":          "Already checked in today",
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"streak":      result.Streak,
		"lastCheckIn": types.FormatTime(result.LastCheckIn),
		"milestone":   result.Milestone,
	})
}

// handleActiveUsers handles GET /api/active-users
func (s *Server) handleActiveUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.queryService.ListActiveToday(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch active users")
		return
	}

	views := make([]userStreakView, 0, len(users))
	for _, u := range users {
		views = append(views, userStreakView{
			Address:     u.Address,
			Streak:      u.Streak,
			LastCheckIn: formatOptionalTime(u.LastCheckIn),
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"users":   views,
	})
}

// handleLeaderboard handles GET /api/leaderboard
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := s.queryService.GetLeaderboard(r.Context())
	if err != nil {
		respondServiceError(w, r, err, "Failed to fetch leaderboard data")
		return
	}

	if entries == nil {
		entries = []types.LeaderboardEntry{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"streaks": entries,
	})
}
