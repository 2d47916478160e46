// Package models provides data models for the call screening system.
package models

import "time"

// CallAction is the action taken for a screened call
type CallAction string

const (
	ActionAllowed CallAction = "ALLOWED"
	ActionBlocked CallAction = "BLOCKED"
)

// CallReason explains why a call was allowed or blocked.
// The set is closed; the decision engine returns exactly one of these per call.
type CallReason string

const (
	ReasonWhitelisted          CallReason = "WHITELISTED"
	ReasonStarredContact       CallReason = "STARRED_CONTACT"
	ReasonKnownContact         CallReason = "KNOWN_CONTACT"
	ReasonRecentOutgoing       CallReason = "RECENT_OUTGOING"
	ReasonEmergencyBypass      CallReason = "EMERGENCY_BYPASS"
	ReasonNotWhitelisted       CallReason = "NOT_WHITELISTED"
	ReasonBlacklisted          CallReason = "BLACKLISTED"
	ReasonUnknownNumberBlocked CallReason = "UNKNOWN_NUMBER_BLOCKED"
	ReasonScreeningDisabled    CallReason = "SCREENING_DISABLED"
	ReasonSubscriptionInactive CallReason = "SUBSCRIPTION_INACTIVE"
	ReasonScheduleInactive     CallReason = "SCHEDULE_INACTIVE"
)

// CallEvent is one row of the append-only screening activity log.
// Number fields are empty when the caller ID was suppressed.
type CallEvent struct {
	ID                 string     `json:"id" db:"id"`
	PhoneNumber        string     `json:"phoneNumber,omitempty" db:"phone_number"`
	NormalizedNumber   string     `json:"normalizedNumber,omitempty" db:"normalized_number"`
	DisplayName        string     `json:"displayName,omitempty" db:"display_name"`
	Timestamp          time.Time  `json:"timestamp" db:"timestamp"`
	Action             CallAction `json:"action" db:"action"`
	Reason             CallReason `json:"reason" db:"reason"`
	MatchedWhitelistID string     `json:"matchedWhitelistId,omitempty" db:"matched_whitelist_id"`
	IsPrivateNumber    bool       `json:"isPrivateNumber" db:"is_private_number"`
}
