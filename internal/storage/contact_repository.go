package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/call-screener/internal/models"
)

// ContactRepository handles the imported contact directory and the mirrored
// outgoing-call log.
type ContactRepository struct {
	db *PostgresDB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *PostgresDB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Upsert inserts or replaces a contact and its phone numbers
func (r *ContactRepository) Upsert(ctx context.Context, contact *models.Contact, normalizedNumbers []string) error {
	tx, err := r.db.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin contact upsert: %w", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck // no-op after commit

	_, err = tx.Exec(ctx, `
		INSERT INTO contacts (id, display_name, starred, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			starred = EXCLUDED.starred
	`, contact.ID, contact.DisplayName, contact.Starred, contact.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM contact_numbers WHERE contact_id = $1`, contact.ID); err != nil {
		return fmt.Errorf("failed to clear contact numbers: %w", err)
	}

	for i, raw := range contact.PhoneNumbers {
		normalized := ""
		if i < len(normalizedNumbers) {
			normalized = normalizedNumbers[i]
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO contact_numbers (contact_id, phone_number, normalized_number)
			VALUES ($1, $2, $3)
			ON CONFLICT (contact_id, normalized_number) DO NOTHING
		`, contact.ID, raw, normalized)
		if err != nil {
			return fmt.Errorf("failed to insert contact number: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit contact upsert: %w", err)
	}
	return nil
}

// IsStarred reports whether a normalized number belongs to a starred contact
func (r *ContactRepository) IsStarred(ctx context.Context, normalized string) (bool, error) {
	var starred bool
	query := `
		SELECT EXISTS(
			SELECT 1 FROM contacts c
			JOIN contact_numbers n ON n.contact_id = c.id
			WHERE n.normalized_number = $1 AND c.starred
		)
	`
	if err := r.db.Pool().QueryRow(ctx, query, normalized).Scan(&starred); err != nil {
		return false, fmt.Errorf("failed to check starred contact: %w", err)
	}
	return starred, nil
}

// NameByNumber returns the display name for a normalized number, or empty
// when the number matches no contact.
func (r *ContactRepository) NameByNumber(ctx context.Context, normalized string) (string, error) {
	var name string
	query := `
		SELECT COALESCE(MIN(c.display_name), '')
		FROM contacts c
		JOIN contact_numbers n ON n.contact_id = c.id
		WHERE n.normalized_number = $1
	`
	if err := r.db.Pool().QueryRow(ctx, query, normalized).Scan(&name); err != nil {
		return "", fmt.Errorf("failed to look up contact name: %w", err)
	}
	return name, nil
}

// ListAll returns all contacts with their phone numbers, ordered by name
func (r *ContactRepository) ListAll(ctx context.Context) ([]*models.Contact, error) {
	rows, err := r.db.Pool().Query(ctx, `
		SELECT c.id, c.display_name, c.starred, c.created_at, COALESCE(n.phone_number, '')
		FROM contacts c
		LEFT JOIN contact_numbers n ON n.contact_id = c.id
		ORDER BY c.display_name ASC, c.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*models.Contact)
	var ordered []*models.Contact
	for rows.Next() {
		var (
			id, name, number string
			starred          bool
			createdAt        time.Time
		)
		if err := rows.Scan(&id, &name, &starred, &createdAt, &number); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contact, ok := byID[id]
		if !ok {
			contact = &models.Contact{ID: id, DisplayName: name, Starred: starred, CreatedAt: createdAt}
			byID[id] = contact
			ordered = append(ordered, contact)
		}
		if number != "" {
			contact.PhoneNumbers = append(contact.PhoneNumbers, number)
		}
	}
	return ordered, rows.Err()
}

// ListStarred returns starred contacts with their numbers
func (r *ContactRepository) ListStarred(ctx context.Context) ([]*models.Contact, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var starred []*models.Contact
	for _, c := range all {
		if c.Starred {
			starred = append(starred, c)
		}
	}
	return starred, nil
}

// RecordOutgoingCall appends a mirrored outgoing-call record
func (r *ContactRepository) RecordOutgoingCall(ctx context.Context, call *models.OutgoingCall) error {
	_, err := r.db.Pool().Exec(ctx, `
		INSERT INTO outgoing_calls (id, normalized_number, called_at)
		VALUES ($1, $2, $3)
	`, call.ID, call.NormalizedNumber, call.CalledAt)
	if err != nil {
		return fmt.Errorf("failed to record outgoing call: %w", err)
	}
	return nil
}

// HasOutgoingCallSince reports whether the user called the number at or after since
func (r *ContactRepository) HasOutgoingCallSince(ctx context.Context, normalized string, since time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM outgoing_calls WHERE normalized_number = $1 AND called_at >= $2)`
	if err := r.db.Pool().QueryRow(ctx, query, normalized, since).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check outgoing calls: %w", err)
	}
	return exists, nil
}
