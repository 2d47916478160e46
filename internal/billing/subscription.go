// Package billing implements the subscription and trial gate. The gate fails
// open commercially: an expired user keeps receiving calls and only loses the
// blocking feature.
package billing

import (
	"context"
	"time"

	"github.com/call-screener/internal/models"
)

// SubscriptionStore reads the locally persisted subscription record.
type SubscriptionStore interface {
	Current(ctx context.Context) (*models.Subscription, error)
}

// TrialStore tracks the trial start timestamp.
type TrialStore interface {
	TrialStart(ctx context.Context) (*time.Time, error)
	InitTrialIfNeeded(ctx context.Context, now time.Time) error
}

// Manager answers the engine's single question: is blocking commercially
// enabled right now, via paid subscription or active trial.
type Manager struct {
	subscriptions SubscriptionStore
	trial         TrialStore
	trialDays     int
	now           func() time.Time
}

// NewManager creates a billing manager with the given trial length
func NewManager(subscriptions SubscriptionStore, trial TrialStore, trialDays int) *Manager {
	return &Manager{
		subscriptions: subscriptions,
		trial:         trial,
		trialDays:     trialDays,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// IsActive reports whether a paid subscription or the trial is active
func (m *Manager) IsActive(ctx context.Context) (bool, error) {
	paid, err := m.isSubscribed(ctx)
	if err != nil {
		return false, err
	}
	if paid {
		return true, nil
	}
	return m.IsTrialActive(ctx)
}

// isSubscribed checks the persisted subscription record
func (m *Manager) isSubscribed(ctx context.Context) (bool, error) {
	sub, err := m.subscriptions.Current(ctx)
	if err != nil {
		return false, err
	}
	if sub == nil || !sub.Active {
		return false, nil
	}
	if sub.ExpiresAt != nil && !sub.ExpiresAt.After(m.now()) {
		return false, nil
	}
	return true, nil
}

// IsTrialActive reports whether the free trial is still running
func (m *Manager) IsTrialActive(ctx context.Context) (bool, error) {
	remaining, err := m.TrialDaysRemaining(ctx)
	if err != nil {
		return false, err
	}
	return remaining > 0, nil
}

// TrialDaysRemaining returns whole days left in the trial, at least zero.
// A trial that never started has zero days remaining.
func (m *Manager) TrialDaysRemaining(ctx context.Context) (int, error) {
	start, err := m.trial.TrialStart(ctx)
	if err != nil {
		return 0, err
	}
	if start == nil {
		return 0, nil
	}
	daysElapsed := int(m.now().Sub(*start) / (24 * time.Hour))
	remaining := m.trialDays - daysElapsed
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// StartTrial starts the trial clock if it has not started yet. A running or
// expired trial is never reset.
func (m *Manager) StartTrial(ctx context.Context) error {
	return m.trial.InitTrialIfNeeded(ctx, m.now())
}
