// Package contacts provides the contact directory the decision engine and
// admin API query. Contacts are imported into local storage; lookups are
// keyed by normalized number.
package contacts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/call-screener/internal/models"
	"github.com/call-screener/internal/phone"
)

// Store is the persistence surface the directory needs.
type Store interface {
	Upsert(ctx context.Context, contact *models.Contact, normalizedNumbers []string) error
	IsStarred(ctx context.Context, normalized string) (bool, error)
	NameByNumber(ctx context.Context, normalized string) (string, error)
	ListAll(ctx context.Context) ([]*models.Contact, error)
	ListStarred(ctx context.Context) ([]*models.Contact, error)
	RecordOutgoingCall(ctx context.Context, call *models.OutgoingCall) error
	HasOutgoingCallSince(ctx context.Context, normalized string, since time.Time) (bool, error)
}

// Directory answers the engine's contact questions and handles imports.
type Directory struct {
	store      Store
	normalizer *phone.Normalizer
}

// NewDirectory creates a contact directory
func NewDirectory(store Store, normalizer *phone.Normalizer) *Directory {
	return &Directory{store: store, normalizer: normalizer}
}

// IsStarred reports whether the number belongs to a favorite contact
func (d *Directory) IsStarred(ctx context.Context, normalized string) (bool, error) {
	return d.store.IsStarred(ctx, normalized)
}

// NameByNumber returns the contact display name for a number, or empty when
// the number matches no contact.
func (d *Directory) NameByNumber(ctx context.Context, normalized string) (string, error) {
	return d.store.NameByNumber(ctx, normalized)
}

// HasRecentOutgoingCall reports whether the user called the number within the
// last withinDays days. The cutoff is inclusive: a call exactly at
// now - withinDays counts.
func (d *Directory) HasRecentOutgoingCall(ctx context.Context, normalized string, withinDays int) (bool, error) {
	since := time.Now().UTC().Add(-time.Duration(withinDays) * 24 * time.Hour)
	return d.store.HasOutgoingCallSince(ctx, normalized, since)
}

// ContactImport is one contact supplied to Import.
type ContactImport struct {
	ID           string   `json:"id,omitempty"`
	DisplayName  string   `json:"displayName"`
	PhoneNumbers []string `json:"phoneNumbers"`
	Starred      bool     `json:"starred"`
}

// Import upserts a batch of contacts, normalizing their numbers. Contacts
// without an id get one assigned.
func (d *Directory) Import(ctx context.Context, imports []ContactImport) (int, error) {
	imported := 0
	for _, in := range imports {
		if in.DisplayName == "" || len(in.PhoneNumbers) == 0 {
			continue
		}

		id := in.ID
		if id == "" {
			id = uuid.NewString()
		}
		contact := &models.Contact{
			ID:           id,
			DisplayName:  in.DisplayName,
			Starred:      in.Starred,
			PhoneNumbers: in.PhoneNumbers,
			CreatedAt:    time.Now().UTC(),
		}

		normalized := make([]string, len(in.PhoneNumbers))
		for i, raw := range in.PhoneNumbers {
			normalized[i] = d.normalizer.Normalize(raw)
		}

		if err := d.store.Upsert(ctx, contact, normalized); err != nil {
			return imported, fmt.Errorf("failed to import contact %s: %w", contact.DisplayName, err)
		}
		imported++
	}
	return imported, nil
}

// ListAll returns the full directory
func (d *Directory) ListAll(ctx context.Context) ([]*models.Contact, error) {
	return d.store.ListAll(ctx)
}

// ListStarred returns only favorite contacts
func (d *Directory) ListStarred(ctx context.Context) ([]*models.Contact, error) {
	return d.store.ListStarred(ctx)
}

// RecordOutgoingCall mirrors an outgoing call into the local log
func (d *Directory) RecordOutgoingCall(ctx context.Context, raw string) (*models.OutgoingCall, error) {
	normalized := d.normalizer.Normalize(raw)
	if !phone.HasUsableKey(normalized) {
		return nil, fmt.Errorf("outgoing call number has no usable key: %q", raw)
	}
	call := &models.OutgoingCall{
		ID:               uuid.NewString(),
		NormalizedNumber: normalized,
		CalledAt:         time.Now().UTC(),
	}
	if err := d.store.RecordOutgoingCall(ctx, call); err != nil {
		return nil, err
	}
	return call, nil
}
