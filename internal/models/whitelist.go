package models

import "time"

// WhitelistEntry is a number explicitly permitted to ring through.
// NormalizedNumber carries a unique index; a second insert for the same
// normalized number replaces the first (last write wins).
type WhitelistEntry struct {
	ID               string     `json:"id" db:"id"`
	DisplayName      string     `json:"displayName" db:"display_name"`
	PhoneNumber      string     `json:"phoneNumber" db:"phone_number"`
	NormalizedNumber string     `json:"normalizedNumber" db:"normalized_number"`
	ContactID        string     `json:"contactId,omitempty" db:"contact_id"`
	EmergencyBypass  bool       `json:"emergencyBypass" db:"emergency_bypass"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
	SyncedAt         *time.Time `json:"syncedAt,omitempty" db:"synced_at"`
}

// BlacklistEntry is a number explicitly blocked. Blacklist membership takes
// precedence over the whitelist and every allow rule below it.
type BlacklistEntry struct {
	ID               string    `json:"id" db:"id"`
	DisplayName      string    `json:"displayName" db:"display_name"`
	PhoneNumber      string    `json:"phoneNumber" db:"phone_number"`
	NormalizedNumber string    `json:"normalizedNumber" db:"normalized_number"`
	Reason           string    `json:"reason,omitempty" db:"reason"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}
