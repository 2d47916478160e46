package models

import "time"

// Contact is an imported directory contact.
type Contact struct {
	ID           string    `json:"id" db:"id"`
	DisplayName  string    `json:"displayName" db:"display_name"`
	Starred      bool      `json:"starred" db:"starred"`
	PhoneNumbers []string  `json:"phoneNumbers"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// OutgoingCall is a mirrored call-log record of a call the user placed.
// Used by the recent-outgoing allow rule.
type OutgoingCall struct {
	ID               string    `json:"id" db:"id"`
	NormalizedNumber string    `json:"normalizedNumber" db:"normalized_number"`
	CalledAt         time.Time `json:"calledAt" db:"called_at"`
}
