package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/call-screener/internal/errors"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the JSON error envelope.
type ErrorBody struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, statusCode int, code, message string, details map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}

	json.NewEncoder(w).Encode(response)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// parseJSONBody parses JSON request body.
func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// Common error codes
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
)

// respondServiceError maps a service error onto the JSON error envelope.
// Categorized errors carry their own status and code; anything else is a 500.
func respondServiceError(w http.ResponseWriter, err error) {
	if ce, ok := apperrors.AsCategorized(err); ok {
		switch ce.Category {
		case apperrors.CategoryValidation, apperrors.CategoryUserInput:
			respondError(w, ce.StatusCode, ce.Code, ce.Message, ce.Details)
			return
		case apperrors.CategoryNotFound:
			respondError(w, http.StatusNotFound, ErrCodeNotFound, ce.Message, ce.Details)
			return
		case apperrors.CategoryRateLimit:
			respondError(w, http.StatusTooManyRequests, ErrCodeRateLimitExceeded, ce.Message, ce.Details)
			return
		}
	}

	respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "An internal error occurred", nil)
}
