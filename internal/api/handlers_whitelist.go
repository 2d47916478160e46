package api

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"

	"github.com/call-screener/internal/service"
)

// handleListWhitelist handles GET /api/whitelist - List all whitelist entries
func (s *Server) handleListWhitelist(w http.ResponseWriter, r *http.Request) {
	entries, err := s.lists.ListWhitelist(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// handleAddWhitelist handles POST /api/whitelist - Add a whitelist entry
func (s *Server) handleAddWhitelist(w http.ResponseWriter, r *http.Request) {
	var req service.AddWhitelistInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if req.PhoneNumber == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Phone number is required", nil)
		return
	}

	entry, err := s.lists.AddToWhitelist(r.Context(), &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry)
}

// handleUpdateWhitelist handles PUT /api/whitelist/:id - Edit a whitelist entry
func (s *Server) handleUpdateWhitelist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req service.UpdateWhitelistInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	entry, err := s.lists.UpdateWhitelistEntry(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, entry)
}

// handleRemoveWhitelist handles DELETE /api/whitelist/:id - Remove an entry by id
func (s *Server) handleRemoveWhitelist(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.lists.RemoveFromWhitelist(r.Context(), id); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleRemoveWhitelistNumber handles DELETE /api/whitelist/number/:number -
// Remove the entry for a phone number
func (s *Server) handleRemoveWhitelistNumber(w http.ResponseWriter, r *http.Request) {
	number, err := url.PathUnescape(mux.Vars(r)["number"])
	if err != nil || number == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Phone number is required", nil)
		return
	}

	if err := s.lists.RemoveWhitelistNumber(r.Context(), number); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleWhitelistSync handles POST /api/whitelist/sync - Hand unsynced
// whitelist entries to a backup client and mark them synced
func (s *Server) handleWhitelistSync(w http.ResponseWriter, r *http.Request) {
	result, err := s.lists.SyncCheckpoint(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleImportContactsToWhitelist handles POST /api/whitelist/import-contacts -
// Whitelist every number of the device contacts
func (s *Server) handleImportContactsToWhitelist(w http.ResponseWriter, r *http.Request) {
	starredOnly := r.URL.Query().Get("starred") == "true"

	result, err := s.lists.ImportContactsToWhitelist(r.Context(), starredOnly)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
