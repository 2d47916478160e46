package api

import (
	"net/http"
)

// handleScreen handles POST /api/screen - Screen one incoming call
func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PhoneNumber     string `json:"phoneNumber"`
		IsPrivateNumber bool   `json:"isPrivateNumber"`
	}

	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	// Screening never fails: a bad number or an internal fault both come
	// back as an allow decision.
	result := s.screening.Screen(r.Context(), req.PhoneNumber, req.IsPrivateNumber)

	respondJSON(w, http.StatusOK, result)
}
