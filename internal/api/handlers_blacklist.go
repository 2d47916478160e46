package api

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/call-screener/internal/service"
)

// handleListBlacklist handles GET /api/blacklist - List all blacklist entries
func (s *Server) handleListBlacklist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.lists.ListBlacklist(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleAddBlacklist handles POST /api/blacklist - Add a blacklist entry
func (s *Server) handleAddBlacklist(w http.ResponseWriter, r *http.Request) {
	var req service.AddBlacklistInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.PhoneNumber == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Phone number is required", nil)
		return
	}

	entry, err := s.lists.AddToBlacklist(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// handleRemoveBlacklist handles DELETE /api/blacklist/:id - Remove an entry by id
func (s *Server) handleRemoveBlacklist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.lists.RemoveFromBlacklist(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleRemoveBlacklistNumber handles DELETE /api/blacklist/number/:number -
// Remove the entry for a phone number
func (s *Server) handleRemoveBlacklistNumber(w http.ResponseWriter, r *http.Request) {
	number, err := url.PathUnescape(mux.Vars(r)["number"])
	if err != nil || number == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Phone number is required", nil)
		return
	}

	if err := s.lists.RemoveBlacklistNumber(r.Context(), number); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
