package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/call-screener/internal/models"
	"github.com/jackc/pgx/v5"
)

// SettingsRepository persists the screening configuration as a single row.
// Snapshot returns an immutable copy per evaluation so that a concurrent
// settings write cannot race a running decision.
type SettingsRepository struct {
	db *PostgresDB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *PostgresDB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Snapshot reads the current settings, falling back to the documented
// defaults when no row has been written yet.
func (r *SettingsRepository) Snapshot(ctx context.Context) (models.SettingsSnapshot, error) {
	query := `
		SELECT blocking_enabled, allow_starred_contacts, allow_all_contacts,
			block_unknown_numbers, emergency_bypass_enabled, emergency_bypass_minutes,
			allow_recent_outgoing, recent_outgoing_days, schedule_enabled,
			schedule_start_hour, schedule_start_minute, schedule_end_hour, schedule_end_minute
		FROM settings WHERE id = 1
	`

	var s models.SettingsSnapshot
	err := r.db.Pool().QueryRow(ctx, query).Scan(
		&s.BlockingEnabled,
		&s.AllowStarredContacts,
		&s.AllowAllContacts,
		&s.BlockUnknownNumbers,
		&s.EmergencyBypassEnabled,
		&s.EmergencyBypassMinutes,
		&s.AllowRecentOutgoing,
		&s.RecentOutgoingDays,
		&s.ScheduleEnabled,
		&s.ScheduleStartHour,
		&s.ScheduleStartMinute,
		&s.ScheduleEndHour,
		&s.ScheduleEndMinute,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.SettingsSnapshot{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return s, nil
}

// Save writes the full settings row (insert or update)
func (r *SettingsRepository) Save(ctx context.Context, s models.SettingsSnapshot) error {
	query := `
		INSERT INTO settings (
			id, blocking_enabled, allow_starred_contacts, allow_all_contacts,
			block_unknown_numbers, emergency_bypass_enabled, emergency_bypass_minutes,
			allow_recent_outgoing, recent_outgoing_days, schedule_enabled,
			schedule_start_hour, schedule_start_minute, schedule_end_hour,
			schedule_end_minute, updated_at
		) VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			blocking_enabled = EXCLUDED.blocking_enabled,
			allow_starred_contacts = EXCLUDED.allow_starred_contacts,
			allow_all_contacts = EXCLUDED.allow_all_contacts,
			block_unknown_numbers = EXCLUDED.block_unknown_numbers,
			emergency_bypass_enabled = EXCLUDED.emergency_bypass_enabled,
			emergency_bypass_minutes = EXCLUDED.emergency_bypass_minutes,
			allow_recent_outgoing = EXCLUDED.allow_recent_outgoing,
			recent_outgoing_days = EXCLUDED.recent_outgoing_days,
			schedule_enabled = EXCLUDED.schedule_enabled,
			schedule_start_hour = EXCLUDED.schedule_start_hour,
			schedule_start_minute = EXCLUDED.schedule_start_minute,
			schedule_end_hour = EXCLUDED.schedule_end_hour,
			schedule_end_minute = EXCLUDED.schedule_end_minute,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Pool().Exec(ctx, query,
		s.BlockingEnabled,
		s.AllowStarredContacts,
		s.AllowAllContacts,
		s.BlockUnknownNumbers,
		s.EmergencyBypassEnabled,
		s.EmergencyBypassMinutes,
		s.AllowRecentOutgoing,
		s.RecentOutgoingDays,
		s.ScheduleEnabled,
		s.ScheduleStartHour,
		s.ScheduleStartMinute,
		s.ScheduleEndHour,
		s.ScheduleEndMinute,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

// TrialStart returns when the trial began, or nil if it has not started
func (r *SettingsRepository) TrialStart(ctx context.Context) (*time.Time, error) {
	var start *time.Time
	err := r.db.Pool().QueryRow(ctx, `SELECT trial_start FROM settings WHERE id = 1`).Scan(&start)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read trial start: %w", err)
	}
	return start, nil
}

// InitTrialIfNeeded starts the trial clock on first use. A trial that has
// already started is never reset.
func (r *SettingsRepository) InitTrialIfNeeded(ctx context.Context, now time.Time) error {
	query := `
		INSERT INTO settings (id, trial_start, updated_at)
		VALUES (1, $1, $1)
		ON CONFLICT (id) DO UPDATE SET trial_start = $1
		WHERE settings.trial_start IS NULL
	`
	if _, err := r.db.Pool().Exec(ctx, query, now); err != nil {
		return fmt.Errorf("failed to init trial: %w", err)
	}
	return nil
}
