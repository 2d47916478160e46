package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/call-screener/internal/models"
	"github.com/jackc/pgx/v5"
)

// BlacklistRepository handles blacklist entry persistence. Mirrors the
// whitelist side: unique normalized_number, replace-on-conflict inserts.
type BlacklistRepository struct {
	db *PostgresDB
}

// NewBlacklistRepository creates a new blacklist repository
func NewBlacklistRepository(db *PostgresDB) *BlacklistRepository {
	return &BlacklistRepository{db: db}
}

const blacklistColumns = `id, display_name, phone_number, normalized_number,
	COALESCE(reason, ''), created_at`

// Upsert inserts an entry, replacing any existing entry with the same
// normalized number.
func (r *BlacklistRepository) Upsert(ctx context.Context, entry *models.BlacklistEntry) error {
	query := `
		INSERT INTO blacklist_entries (
			id, display_name, phone_number, normalized_number, reason, created_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		ON CONFLICT (normalized_number) DO UPDATE SET
			id = EXCLUDED.id,
			display_name = EXCLUDED.display_name,
			phone_number = EXCLUDED.phone_number,
			reason = EXCLUDED.reason,
			created_at = EXCLUDED.created_at
	`

	_, err := r.db.Pool().Exec(ctx, query,
		entry.ID,
		entry.DisplayName,
		entry.PhoneNumber,
		entry.NormalizedNumber,
		entry.Reason,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert blacklist entry: %w", err)
	}
	return nil
}

// IsBlacklisted checks whether a normalized number has a blacklist entry
func (r *BlacklistRepository) IsBlacklisted(ctx context.Context, normalized string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM blacklist_entries WHERE normalized_number = $1)`
	if err := r.db.Pool().QueryRow(ctx, query, normalized).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check blacklist membership: %w", err)
	}
	return exists, nil
}

// GetByID returns the entry with the given id, or nil when absent
func (r *BlacklistRepository) GetByID(ctx context.Context, id string) (*models.BlacklistEntry, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist_entries WHERE id = $1`

	var entry models.BlacklistEntry
	err := r.db.Pool().QueryRow(ctx, query, id).Scan(
		&entry.ID,
		&entry.DisplayName,
		&entry.PhoneNumber,
		&entry.NormalizedNumber,
		&entry.Reason,
		&entry.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get blacklist entry: %w", err)
	}
	return &entry, nil
}

// ListAll returns all entries ordered by display name
func (r *BlacklistRepository) ListAll(ctx context.Context) ([]*models.BlacklistEntry, error) {
	query := `SELECT ` + blacklistColumns + ` FROM blacklist_entries ORDER BY display_name ASC`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list blacklist entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.BlacklistEntry
	for rows.Next() {
		var entry models.BlacklistEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.DisplayName,
			&entry.PhoneNumber,
			&entry.NormalizedNumber,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan blacklist entry: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// Delete removes an entry by id
func (r *BlacklistRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM blacklist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete blacklist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("blacklist entry %s not found", id)
	}
	return nil
}

// DeleteByNormalized removes the entry for a normalized number, if any
func (r *BlacklistRepository) DeleteByNormalized(ctx context.Context, normalized string) error {
	_, err := r.db.Pool().Exec(ctx, `DELETE FROM blacklist_entries WHERE normalized_number = $1`, normalized)
	if err != nil {
		return fmt.Errorf("failed to delete blacklist entry by number: %w", err)
	}
	return nil
}

// Count returns the number of blacklist entries
func (r *BlacklistRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM blacklist_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count blacklist entries: %w", err)
	}
	return count, nil
}
