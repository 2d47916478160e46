package api

import (
	"net/http"
)

// SubscriptionStatus is the subscription state reported to clients.
type SubscriptionStatus struct {
	Active             bool `json:"active"`
	TrialActive        bool `json:"trialActive"`
	TrialDaysRemaining int  `json:"trialDaysRemaining"`
}

// handleGetSubscription handles GET /api/subscription - Subscription and trial state
func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	active, err := s.subscriptions.IsActive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	trialActive, err := s.subscriptions.IsTrialActive(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	remaining, err := s.subscriptions.TrialDaysRemaining(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SubscriptionStatus{
		Active:             active,
		TrialActive:        trialActive,
		TrialDaysRemaining: remaining,
	})
}

// handleStartTrial handles POST /api/subscription/trial - Start the free trial.
// Starting an already-started trial is a no-op, not an error.
func (s *Server) handleStartTrial(w http.ResponseWriter, r *http.Request) {
	if err := s.subscriptions.StartTrial(r.Context()); err != nil {
		respondServiceError(w, err)
		return
	}

	remaining, err := s.subscriptions.TrialDaysRemaining(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":             "trial_started",
		"trialDaysRemaining": remaining,
	})
}
