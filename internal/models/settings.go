package models

import "time"

// SettingsSnapshot is an immutable read of the screening configuration, taken
// fresh per call so a settings mutation cannot race a running evaluation.
type SettingsSnapshot struct {
	BlockingEnabled        bool `json:"blockingEnabled"`
	AllowStarredContacts   bool `json:"allowStarredContacts"`
	AllowAllContacts       bool `json:"allowAllContacts"`
	BlockUnknownNumbers    bool `json:"blockUnknownNumbers"`
	EmergencyBypassEnabled bool `json:"emergencyBypassEnabled"`
	EmergencyBypassMinutes int  `json:"emergencyBypassMinutes"`
	AllowRecentOutgoing    bool `json:"allowRecentOutgoing"`
	RecentOutgoingDays     int  `json:"recentOutgoingDays"`
	ScheduleEnabled        bool `json:"scheduleEnabled"`
	ScheduleStartHour      int  `json:"scheduleStartHour"`
	ScheduleStartMinute    int  `json:"scheduleStartMinute"`
	ScheduleEndHour        int  `json:"scheduleEndHour"`
	ScheduleEndMinute      int  `json:"scheduleEndMinute"`
}

// DefaultSettings returns the documented defaults: blocking on, starred
// contacts allowed, unknown numbers blocked, 3-minute emergency bypass,
// 3-day recent-outgoing window, schedule off (22:00-07:00 when enabled).
func DefaultSettings() SettingsSnapshot {
	return SettingsSnapshot{
		BlockingEnabled:        true,
		AllowStarredContacts:   true,
		AllowAllContacts:       false,
		BlockUnknownNumbers:    true,
		EmergencyBypassEnabled: true,
		EmergencyBypassMinutes: 3,
		AllowRecentOutgoing:    true,
		RecentOutgoingDays:     3,
		ScheduleEnabled:        false,
		ScheduleStartHour:      22,
		ScheduleStartMinute:    0,
		ScheduleEndHour:        7,
		ScheduleEndMinute:      0,
	}
}

// Subscription is the locally stored paid-subscription state.
type Subscription struct {
	ID        string     `json:"id" db:"id"`
	Plan      string     `json:"plan" db:"plan"`
	Active    bool       `json:"active" db:"active"`
	StartedAt time.Time  `json:"startedAt" db:"started_at"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty" db:"expires_at"`
}
