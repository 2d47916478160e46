package api

import (
	"net/http"

	"github.com/call-screener/internal/models"
)

// handleGetSettings handles GET /api/settings - Current screening settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.settings.Snapshot(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snapshot)
}

// handleUpdateSettings handles PUT /api/settings - Replace screening settings.
// The body is a full settings document; partial updates are not supported.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsSnapshot
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := validateSettings(req); err != "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, err, nil)
		return
	}

	if err := s.settings.Save(r.Context(), req); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, req)
}

// validateSettings returns a non-empty message when the document is out of range
func validateSettings(s models.SettingsSnapshot) string {
	if s.EmergencyBypassMinutes < 1 {
		return "emergencyBypassMinutes must be at least 1"
	}
	if s.RecentOutgoingDays < 1 {
		return "recentOutgoingDays must be at least 1"
	}
	if s.ScheduleStartHour < 0 || s.ScheduleStartHour > 23 || s.ScheduleEndHour < 0 || s.ScheduleEndHour > 23 {
		return "schedule hours must be between 0 and 23"
	}
	if s.ScheduleStartMinute < 0 || s.ScheduleStartMinute > 59 || s.ScheduleEndMinute < 0 || s.ScheduleEndMinute > 59 {
		return "schedule minutes must be between 0 and 59"
	}
	return ""
}
