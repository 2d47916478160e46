package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/call-screener/internal/models"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// handleListActivity handles GET /api/activity - List recent call events,
// either the newest N (limit) or everything after a point in time (since)
func (s *Server) handleListActivity(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("since"); raw != "" {
		since, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid since (expected RFC 3339)", nil)
			return
		}
		events, err := s.activity.ListSince(r.Context(), since)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"events": events,
			"count":  len(events),
		})
		return
	}

	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxActivityLimit {
		limit = maxActivityLimit
	}

	events, err := s.activity.ListRecent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

// ActivityStats summarizes one day of screening activity.
type ActivityStats struct {
	Day     string `json:"day"`
	Allowed int    `json:"allowed"`
	Blocked int    `json:"blocked"`
	Total   int    `json:"total"`
}

// handleActivityStats handles GET /api/activity/stats - Per-day allow/block counts.
// The day query parameter is a date in 2006-01-02 form, defaulting to today (UTC).
func (s *Server) handleActivityStats(w http.ResponseWriter, r *http.Request) {
	day := time.Now().UTC().Truncate(24 * time.Hour)
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid day (expected YYYY-MM-DD)", nil)
			return
		}
		day = parsed
	}
	dayEnd := day.Add(24 * time.Hour)

	allowed, err := s.activity.CountForDay(r.Context(), models.ActionAllowed, day, dayEnd)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	blocked, err := s.activity.CountForDay(r.Context(), models.ActionBlocked, day, dayEnd)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ActivityStats{
		Day:     day.Format("2006-01-02"),
		Allowed: allowed,
		Blocked: blocked,
		Total:   allowed + blocked,
	})
}

// handleActivityToWhitelist handles POST /api/activity/:id/whitelist -
// Whitelist the caller of a logged event
func (s *Server) handleActivityToWhitelist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	entry, err := s.lists.AddEventToWhitelist(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// handleActivityToBlacklist handles POST /api/activity/:id/blacklist -
// Blacklist the caller of a logged event
func (s *Server) handleActivityToBlacklist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Reason string `json:"reason"`
	}
	// Body is optional for this endpoint
	if r.Body != nil && r.ContentLength > 0 {
		if err := parseJSONBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
			return
		}
	}

	entry, err := s.lists.AddEventToBlacklist(r.Context(), id, req.Reason)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}
