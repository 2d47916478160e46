package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/call-screener/internal/models"
	"github.com/jackc/pgx/v5"
)

// WhitelistRepository handles whitelist entry persistence.
// The unique index on normalized_number makes Upsert replace-on-conflict:
// a later insert for the same number silently replaces the earlier entry.
type WhitelistRepository struct {
	db *PostgresDB
}

// NewWhitelistRepository creates a new whitelist repository
func NewWhitelistRepository(db *PostgresDB) *WhitelistRepository {
	return &WhitelistRepository{db: db}
}

const whitelistColumns = `id, display_name, phone_number, normalized_number,
	COALESCE(contact_id, ''), emergency_bypass, created_at, updated_at, synced_at`

// Upsert inserts an entry, replacing any existing entry with the same
// normalized number (last write wins).
func (r *WhitelistRepository) Upsert(ctx context.Context, entry *models.WhitelistEntry) error {
	query := `
		INSERT INTO whitelist_entries (
			id, display_name, phone_number, normalized_number, contact_id,
			emergency_bypass, created_at, updated_at, synced_at
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		ON CONFLICT (normalized_number) DO UPDATE SET
			id = EXCLUDED.id,
			display_name = EXCLUDED.display_name,
			phone_number = EXCLUDED.phone_number,
			contact_id = EXCLUDED.contact_id,
			emergency_bypass = EXCLUDED.emergency_bypass,
			updated_at = EXCLUDED.updated_at,
			synced_at = EXCLUDED.synced_at
	`

	_, err := r.db.Pool().Exec(ctx, query,
		entry.ID,
		entry.DisplayName,
		entry.PhoneNumber,
		entry.NormalizedNumber,
		entry.ContactID,
		entry.EmergencyBypass,
		entry.CreatedAt,
		entry.UpdatedAt,
		entry.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert whitelist entry: %w", err)
	}
	return nil
}

// Update modifies an existing entry by id and bumps updated_at.
func (r *WhitelistRepository) Update(ctx context.Context, entry *models.WhitelistEntry) error {
	entry.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE whitelist_entries
		SET display_name = $2,
			emergency_bypass = $3,
			updated_at = $4
		WHERE id = $1
	`

	tag, err := r.db.Pool().Exec(ctx, query,
		entry.ID,
		entry.DisplayName,
		entry.EmergencyBypass,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update whitelist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("whitelist entry %s not found", entry.ID)
	}
	return nil
}

// IsWhitelisted checks whether a normalized number has a whitelist entry
func (r *WhitelistRepository) IsWhitelisted(ctx context.Context, normalized string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM whitelist_entries WHERE normalized_number = $1)`
	if err := r.db.Pool().QueryRow(ctx, query, normalized).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check whitelist membership: %w", err)
	}
	return exists, nil
}

// GetByNormalized returns the entry for a normalized number, or nil when absent
func (r *WhitelistRepository) GetByNormalized(ctx context.Context, normalized string) (*models.WhitelistEntry, error) {
	query := `SELECT ` + whitelistColumns + ` FROM whitelist_entries WHERE normalized_number = $1`
	return r.scanOne(r.db.Pool().QueryRow(ctx, query, normalized))
}

// GetByID returns the entry with the given id, or nil when absent
func (r *WhitelistRepository) GetByID(ctx context.Context, id string) (*models.WhitelistEntry, error) {
	query := `SELECT ` + whitelistColumns + ` FROM whitelist_entries WHERE id = $1`
	return r.scanOne(r.db.Pool().QueryRow(ctx, query, id))
}

// ListAll returns all entries ordered by display name
func (r *WhitelistRepository) ListAll(ctx context.Context) ([]*models.WhitelistEntry, error) {
	query := `SELECT ` + whitelistColumns + ` FROM whitelist_entries ORDER BY display_name ASC`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelist entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.WhitelistEntry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AllNormalizedNumbers returns the set of normalized numbers, used for bulk
// sync comparisons.
func (r *WhitelistRepository) AllNormalizedNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.db.Pool().Query(ctx, `SELECT normalized_number FROM whitelist_entries`)
	if err != nil {
		return nil, fmt.Errorf("failed to list normalized numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

// Delete removes an entry by id
func (r *WhitelistRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM whitelist_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete whitelist entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("whitelist entry %s not found", id)
	}
	return nil
}

// DeleteByNormalized removes the entry for a normalized number, if any
func (r *WhitelistRepository) DeleteByNormalized(ctx context.Context, normalized string) error {
	_, err := r.db.Pool().Exec(ctx, `DELETE FROM whitelist_entries WHERE normalized_number = $1`, normalized)
	if err != nil {
		return fmt.Errorf("failed to delete whitelist entry by number: %w", err)
	}
	return nil
}

// Count returns the number of whitelist entries
func (r *WhitelistRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool().QueryRow(ctx, `SELECT COUNT(*) FROM whitelist_entries`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count whitelist entries: %w", err)
	}
	return count, nil
}

// ListUnsynced returns entries never synced or modified since their last sync
func (r *WhitelistRepository) ListUnsynced(ctx context.Context) ([]*models.WhitelistEntry, error) {
	query := `SELECT ` + whitelistColumns + ` FROM whitelist_entries
		WHERE synced_at IS NULL OR updated_at > synced_at`

	rows, err := r.db.Pool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unsynced entries: %w", err)
	}
	defer rows.Close()

	var entries []*models.WhitelistEntry
	for rows.Next() {
		entry, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// MarkSynced records the time an entry was last pushed to remote storage
func (r *WhitelistRepository) MarkSynced(ctx context.Context, id string, syncedAt time.Time) error {
	_, err := r.db.Pool().Exec(ctx,
		`UPDATE whitelist_entries SET synced_at = $2 WHERE id = $1`, id, syncedAt)
	if err != nil {
		return fmt.Errorf("failed to mark entry synced: %w", err)
	}
	return nil
}

func (r *WhitelistRepository) scanOne(row pgx.Row) (*models.WhitelistEntry, error) {
	entry, err := scanWhitelistEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan whitelist entry: %w", err)
	}
	return entry, nil
}

func (r *WhitelistRepository) scanRow(rows pgx.Rows) (*models.WhitelistEntry, error) {
	entry, err := scanWhitelistEntry(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan whitelist entry: %w", err)
	}
	return entry, nil
}

func scanWhitelistEntry(row pgx.Row) (*models.WhitelistEntry, error) {
	var entry models.WhitelistEntry
	err := row.Scan(
		&entry.ID,
		&entry.DisplayName,
		&entry.PhoneNumber,
		&entry.NormalizedNumber,
		&entry.ContactID,
		&entry.EmergencyBypass,
		&entry.CreatedAt,
		&entry.UpdatedAt,
		&entry.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
