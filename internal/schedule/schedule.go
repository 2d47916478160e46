// Package schedule evaluates daily time-of-day blocking windows.
package schedule

import (
	"time"

	"github.com/call-screener/internal/models"
)

// Window is a daily time-of-day range during which call blocking is active.
// A window may wrap midnight (start after end).
type Window struct {
	StartHour   int
	StartMinute int
	EndHour     int
	EndMinute   int
}

// WindowFromSettings builds the schedule window from a settings snapshot.
func WindowFromSettings(s models.SettingsSnapshot) Window {
	return Window{
		StartHour:   s.ScheduleStartHour,
		StartMinute: s.ScheduleStartMinute,
		EndHour:     s.ScheduleEndHour,
		EndMinute:   s.ScheduleEndMinute,
	}
}

// Contains reports whether now falls inside the window. Boundaries are
// minutes-since-midnight; start is inclusive, end exclusive. When start is
// after end the window wraps midnight. A window with start == end is treated
// as same-day and zero length, so it never contains any instant.
func (w Window) Contains(now time.Time) bool {
	nowMinutes := now.Hour()*60 + now.Minute()
	start := w.StartHour*60 + w.StartMinute
	end := w.EndHour*60 + w.EndMinute

	if start <= end {
		return nowMinutes >= start && nowMinutes < end
	}
	return nowMinutes >= start || nowMinutes < end
}

// IsWithinSchedule reports whether blocking is active at now under the given
// settings. A disabled schedule means no restriction: blocking applies at all
// times, so this returns true.
func IsWithinSchedule(s models.SettingsSnapshot, now time.Time) bool {
	if !s.ScheduleEnabled {
		return true
	}
	return WindowFromSettings(s).Contains(now)
}
