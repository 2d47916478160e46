package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/call-screener/internal/models"
	"github.com/jackc/pgx/v5"
)

// CallEventRepository handles the append-only screening activity log.
// Rows are never updated after insertion; retention is enforced by
// PruneOlderThan, which runs from the worker, never on the decision path.
type CallEventRepository struct {
	db *PostgresDB
}

// NewCallEventRepository creates a new call event repository
func NewCallEventRepository(db *PostgresDB) *CallEventRepository {
	return &CallEventRepository{db: db}
}

const callEventColumns = `id, COALESCE(phone_number, ''), COALESCE(normalized_number, ''),
	COALESCE(display_name, ''), timestamp, action, reason,
	COALESCE(matched_whitelist_id, ''), is_private_number`

// Log appends a call event to the activity log
func (r *CallEventRepository) Log(ctx context.Context, event *models.CallEvent) error {
	query := `
		INSERT INTO call_events (
			id, phone_number, normalized_number, display_name, timestamp,
			action, reason, matched_whitelist_id, is_private_number
		) VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), $9)
	`

	_, err := r.db.Pool().Exec(ctx, query,
		event.ID,
		event.PhoneNumber,
		event.NormalizedNumber,
		event.DisplayName,
		event.Timestamp,
		string(event.Action),
		string(event.Reason),
		event.MatchedWhitelistID,
		event.IsPrivateNumber,
	)
	if err != nil {
		return fmt.Errorf("failed to log call event: %w", err)
	}
	return nil
}

// CountInWindow counts events from a number at or after since.
// Used by the emergency bypass rule.
func (r *CallEventRepository) CountInWindow(ctx context.Context, normalized string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM call_events WHERE normalized_number = $1 AND timestamp >= $2`
	if err := r.db.Pool().QueryRow(ctx, query, normalized, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events in window: %w", err)
	}
	return count, nil
}

// ExistsInWindow reports whether any event from a number exists at or after since
func (r *CallEventRepository) ExistsInWindow(ctx context.Context, normalized string, since time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM call_events WHERE normalized_number = $1 AND timestamp >= $2)`
	if err := r.db.Pool().QueryRow(ctx, query, normalized, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check events in window: %w", err)
	}
	return exists, nil
}

// ListRecent returns the newest events, capped at limit
func (r *CallEventRepository) ListRecent(ctx context.Context, limit int) ([]*models.CallEvent, error) {
	query := `SELECT ` + callEventColumns + ` FROM call_events ORDER BY timestamp DESC LIMIT $1`

	rows, err := r.db.Pool().Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent events: %w", err)
	}
	defer rows.Close()
	return scanCallEvents(rows)
}

// ListSince returns events at or after since, newest first
func (r *CallEventRepository) ListSince(ctx context.Context, since time.Time) ([]*models.CallEvent, error) {
	query := `SELECT ` + callEventColumns + ` FROM call_events WHERE timestamp >= $1 ORDER BY timestamp DESC`

	rows, err := r.db.Pool().Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list events since: %w", err)
	}
	defer rows.Close()
	return scanCallEvents(rows)
}

// GetByID returns the event with the given id, or nil when absent
func (r *CallEventRepository) GetByID(ctx context.Context, id string) (*models.CallEvent, error) {
	query := `SELECT ` + callEventColumns + ` FROM call_events WHERE id = $1`

	rows, err := r.db.Pool().Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get call event: %w", err)
	}
	defer rows.Close()

	events, err := scanCallEvents(rows)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

// CountForDay counts events with an action inside [dayStart, dayEnd).
// Feeds UI stats only, never decision logic.
func (r *CallEventRepository) CountForDay(ctx context.Context, action models.CallAction, dayStart, dayEnd time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM call_events WHERE action = $1 AND timestamp >= $2 AND timestamp < $3`
	if err := r.db.Pool().QueryRow(ctx, query, string(action), dayStart, dayEnd).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count events for day: %w", err)
	}
	return count, nil
}

// PruneOlderThan deletes events with timestamp before cutoff and returns the
// number of rows removed.
func (r *CallEventRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM call_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune call events: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanCallEvents(rows pgx.Rows) ([]*models.CallEvent, error) {
	var events []*models.CallEvent
	for rows.Next() {
		var event models.CallEvent
		var action, reason string
		if err := rows.Scan(
			&event.ID,
			&event.PhoneNumber,
			&event.NormalizedNumber,
			&event.DisplayName,
			&event.Timestamp,
			&action,
			&reason,
			&event.MatchedWhitelistID,
			&event.IsPrivateNumber,
		); err != nil {
			return nil, fmt.Errorf("failed to scan call event: %w", err)
		}
		event.Action = models.CallAction(action)
		event.Reason = models.CallReason(reason)
		events = append(events, &event)
	}
	return events, rows.Err()
}
