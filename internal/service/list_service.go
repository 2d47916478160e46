// Package service implements the application services behind the admin API.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/call-screener/internal/errors"
	"github.com/call-screener/internal/models"
	"github.com/call-screener/internal/phone"
)

// WhitelistStore is the whitelist persistence surface the service needs.
type WhitelistStore interface {
	Upsert(ctx context.Context, entry *models.WhitelistEntry) error
	Update(ctx context.Context, entry *models.WhitelistEntry) error
	GetByID(ctx context.Context, id string) (*models.WhitelistEntry, error)
	ListAll(ctx context.Context) ([]*models.WhitelistEntry, error)
	AllNormalizedNumbers(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, id string) error
	DeleteByNormalized(ctx context.Context, normalized string) error
	Count(ctx context.Context) (int, error)
	ListUnsynced(ctx context.Context) ([]*models.WhitelistEntry, error)
	MarkSynced(ctx context.Context, id string, syncedAt time.Time) error
}

// BlacklistStore is the blacklist persistence surface the service needs.
type BlacklistStore interface {
	Upsert(ctx context.Context, entry *models.BlacklistEntry) error
	GetByID(ctx context.Context, id string) (*models.BlacklistEntry, error)
	ListAll(ctx context.Context) ([]*models.BlacklistEntry, error)
	Delete(ctx context.Context, id string) error
	DeleteByNormalized(ctx context.Context, normalized string) error
	Count(ctx context.Context) (int, error)
}

// EventReader reads activity log entries for the add-from-activity flows.
type EventReader interface {
	GetByID(ctx context.Context, id string) (*models.CallEvent, error)
}

// ContactSource lists directory contacts for bulk whitelist imports.
type ContactSource interface {
	ListAll(ctx context.Context) ([]*models.Contact, error)
	ListStarred(ctx context.Context) ([]*models.Contact, error)
}

// MembershipInvalidator drops cached list membership after mutations.
type MembershipInvalidator interface {
	Invalidate(ctx context.Context, normalized string)
}

// ListService manages whitelist and blacklist entries. Every mutation
// invalidates the screening membership cache for the touched number.
type ListService struct {
	normalizer *phone.Normalizer
	whitelist  WhitelistStore
	blacklist  BlacklistStore
	events     EventReader
	contacts   ContactSource
	index      MembershipInvalidator
}

// NewListService creates a list service
func NewListService(
	normalizer *phone.Normalizer,
	whitelist WhitelistStore,
	blacklist BlacklistStore,
	events EventReader,
	contacts ContactSource,
	index MembershipInvalidator,
) *ListService {
	return &ListService{
		normalizer: normalizer,
		whitelist:  whitelist,
		blacklist:  blacklist,
		events:     events,
		contacts:   contacts,
		index:      index,
	}
}

// AddWhitelistInput is the input for adding a whitelist entry.
type AddWhitelistInput struct {
	DisplayName     string `json:"displayName"`
	PhoneNumber     string `json:"phoneNumber"`
	ContactID       string `json:"contactId,omitempty"`
	EmergencyBypass bool   `json:"emergencyBypass"`
}

// AddToWhitelist validates and inserts a whitelist entry. A second entry for
// the same normalized number replaces the first.
func (s *ListService) AddToWhitelist(ctx context.Context, input *AddWhitelistInput) (*models.WhitelistEntry, error) {
	if !s.normalizer.IsValid(input.PhoneNumber) {
		return nil, apperrors.NewInvalidNumberError(input.PhoneNumber)
	}

	normalized := s.normalizer.Normalize(input.PhoneNumber)
	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.PhoneNumber
	}

	now := time.Now().UTC()
	entry := &models.WhitelistEntry{
		ID:               uuid.NewString(),
		DisplayName:      displayName,
		PhoneNumber:      input.PhoneNumber,
		NormalizedNumber: normalized,
		ContactID:        input.ContactID,
		EmergencyBypass:  input.EmergencyBypass,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.whitelist.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	s.index.Invalidate(ctx, normalized)
	return entry, nil
}

// UpdateWhitelistInput is the input for editing a whitelist entry.
type UpdateWhitelistInput struct {
	DisplayName     string `json:"displayName"`
	EmergencyBypass bool   `json:"emergencyBypass"`
}

// UpdateWhitelistEntry edits an entry's display name and bypass flag
func (s *ListService) UpdateWhitelistEntry(ctx context.Context, id string, input *UpdateWhitelistInput) (*models.WhitelistEntry, error) {
	entry, err := s.whitelist.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperrors.NewNotFoundError("whitelist entry", id)
	}

	entry.DisplayName = input.DisplayName
	entry.EmergencyBypass = input.EmergencyBypass
	if err := s.whitelist.Update(ctx, entry); err != nil {
		return nil, err
	}
	s.index.Invalidate(ctx, entry.NormalizedNumber)
	return entry, nil
}

// RemoveFromWhitelist deletes an entry by id
func (s *ListService) RemoveFromWhitelist(ctx context.Context, id string) error {
	entry, err := s.whitelist.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return apperrors.NewNotFoundError("whitelist entry", id)
	}
	if err := s.whitelist.Delete(ctx, id); err != nil {
		return err
	}
	s.index.Invalidate(ctx, entry.NormalizedNumber)
	return nil
}

// RemoveWhitelistNumber deletes the entry for a raw or normalized number
func (s *ListService) RemoveWhitelistNumber(ctx context.Context, number string) error {
	normalized := s.normalizer.Normalize(number)
	if err := s.whitelist.DeleteByNormalized(ctx, normalized); err != nil {
		return err
	}
	s.index.Invalidate(ctx, normalized)
	return nil
}

// ListWhitelist returns all whitelist entries ordered by display name
func (s *ListService) ListWhitelist(ctx context.Context) ([]*models.WhitelistEntry, error) {
	return s.whitelist.ListAll(ctx)
}

// AddBlacklistInput is the input for adding a blacklist entry.
type AddBlacklistInput struct {
	DisplayName string `json:"displayName"`
	PhoneNumber string `json:"phoneNumber"`
	Reason      string `json:"reason,omitempty"`
}

// AddToBlacklist validates and inserts a blacklist entry
func (s *ListService) AddToBlacklist(ctx context.Context, input *AddBlacklistInput) (*models.BlacklistEntry, error) {
	if !s.normalizer.IsValid(input.PhoneNumber) {
		return nil, apperrors.NewInvalidNumberError(input.PhoneNumber)
	}

	normalized := s.normalizer.Normalize(input.PhoneNumber)
	displayName := input.DisplayName
	if displayName == "" {
		displayName = input.PhoneNumber
	}

	entry := &models.BlacklistEntry{
		ID:               uuid.NewString(),
		DisplayName:      displayName,
		PhoneNumber:      input.PhoneNumber,
		NormalizedNumber: normalized,
		Reason:           input.Reason,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.blacklist.Upsert(ctx, entry); err != nil {
		return nil, err
	}
	s.index.Invalidate(ctx, normalized)
	return entry, nil
}

// RemoveFromBlacklist deletes an entry by id
func (s *ListService) RemoveFromBlacklist(ctx context.Context, id string) error {
	entry, err := s.blacklist.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return apperrors.NewNotFoundError("blacklist entry", id)
	}
	if err := s.blacklist.Delete(ctx, id); err != nil {
		return err
	}
	s.index.Invalidate(ctx, entry.NormalizedNumber)
	return nil
}

// RemoveBlacklistNumber deletes the entry for a raw or normalized number
func (s *ListService) RemoveBlacklistNumber(ctx context.Context, number string) error {
	normalized := s.normalizer.Normalize(number)
	if err := s.blacklist.DeleteByNormalized(ctx, normalized); err != nil {
		return err
	}
	s.index.Invalidate(ctx, normalized)
	return nil
}

// ListBlacklist returns all blacklist entries ordered by display name
func (s *ListService) ListBlacklist(ctx context.Context) ([]*models.BlacklistEntry, error) {
	return s.blacklist.ListAll(ctx)
}

// AddEventToWhitelist creates a whitelist entry from a logged call event
// (the "add from activity" flow).
func (s *ListService) AddEventToWhitelist(ctx context.Context, eventID string) (*models.WhitelistEntry, error) {
	event, err := s.eventWithNumber(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.AddToWhitelist(ctx, &AddWhitelistInput{
		DisplayName: event.DisplayName,
		PhoneNumber: event.PhoneNumber,
	})
}

// AddEventToBlacklist creates a blacklist entry from a logged call event
// (the "block this number" flow).
func (s *ListService) AddEventToBlacklist(ctx context.Context, eventID string, reason string) (*models.BlacklistEntry, error) {
	event, err := s.eventWithNumber(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return s.AddToBlacklist(ctx, &AddBlacklistInput{
		DisplayName: event.DisplayName,
		PhoneNumber: event.PhoneNumber,
		Reason:      reason,
	})
}

func (s *ListService) eventWithNumber(ctx context.Context, eventID string) (*models.CallEvent, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.NewNotFoundError("call event", eventID)
	}
	if event.IsPrivateNumber || event.PhoneNumber == "" {
		return nil, apperrors.NewInvalidParameterError("eventId", "event has no caller number")
	}
	return event, nil
}

// SyncCheckpointResult carries the whitelist entries handed to the remote
// backup at a checkpoint.
type SyncCheckpointResult struct {
	Entries []*models.WhitelistEntry `json:"entries"`
	Count   int                      `json:"count"`
}

// SyncCheckpoint returns every whitelist entry created or modified since the
// last checkpoint and marks them synced. The caller owns pushing the returned
// entries to remote storage.
func (s *ListService) SyncCheckpoint(ctx context.Context) (*SyncCheckpointResult, error) {
	entries, err := s.whitelist.ListUnsynced(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	for _, entry := range entries {
		if err := s.whitelist.MarkSynced(ctx, entry.ID, now); err != nil {
			return nil, err
		}
		entry.SyncedAt = &now
	}

	return &SyncCheckpointResult{Entries: entries, Count: len(entries)}, nil
}

// ImportContactsResult reports the outcome of a contact import.
type ImportContactsResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportContactsToWhitelist adds every number of the selected contacts to the
// whitelist. Numbers that fail validation are skipped, not fatal.
func (s *ListService) ImportContactsToWhitelist(ctx context.Context, starredOnly bool) (*ImportContactsResult, error) {
	var (
		contacts []*models.Contact
		err      error
	)
	if starredOnly {
		contacts, err = s.contacts.ListStarred(ctx)
	} else {
		contacts, err = s.contacts.ListAll(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}

	result := &ImportContactsResult{}
	for _, contact := range contacts {
		for _, number := range contact.PhoneNumbers {
			_, err := s.AddToWhitelist(ctx, &AddWhitelistInput{
				DisplayName: contact.DisplayName,
				PhoneNumber: number,
				ContactID:   contact.ID,
			})
			if err != nil {
				if ce, ok := apperrors.AsCategorized(err); ok && ce.Category == apperrors.CategoryValidation {
					result.Skipped++
					continue
				}
				return nil, err
			}
			result.Imported++
		}
	}
	return result, nil
}
