package api

import (
	"net/http"

	"github.com/call-screener/internal/contacts"
)

// handleListContacts handles GET /api/contacts - List directory contacts
func (s *Server) handleListContacts(w http.ResponseWriter, r *http.Request) {
	var (
		err  error
		list interface{}
	)
	if r.URL.Query().Get("starred") == "true" {
		list, err = s.contacts.ListStarred(r.Context())
	} else {
		list, err = s.contacts.ListAll(r.Context())
	}
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"contacts": list})
}

// handleImportContacts handles POST /api/contacts - Sync the device contact
// directory into the service
func (s *Server) handleImportContacts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contacts []contacts.ContactImport `json:"contacts"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if len(req.Contacts) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "At least one contact is required", nil)
		return
	}

	imported, err := s.contacts.Import(r.Context(), req.Contacts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]int{"imported": imported})
}

// handleRecordOutgoingCall handles POST /api/contacts/outgoing-call - Record
// an outgoing call so the callee can ring back through the recent-outgoing rule
func (s *Server) handleRecordOutgoingCall(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}
	if req.PhoneNumber == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Phone number is required", nil)
		return
	}

	call, err := s.contacts.RecordOutgoingCall(r.Context(), req.PhoneNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, call)
}
