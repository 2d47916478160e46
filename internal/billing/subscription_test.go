package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/call-screener/internal/models"
)

type fakeSubscriptionStore struct {
	sub *models.Subscription
}

func (f *fakeSubscriptionStore) Current(ctx context.Context) (*models.Subscription, error) {
	return f.sub, nil
}

type fakeTrialStore struct {
	start *time.Time
}

func (f *fakeTrialStore) TrialStart(ctx context.Context) (*time.Time, error) {
	return f.start, nil
}

func (f *fakeTrialStore) InitTrialIfNeeded(ctx context.Context, now time.Time) error {
	if f.start == nil {
		f.start = &now
	}
	return nil
}

func newTestManager(sub *models.Subscription, trialStart *time.Time) *Manager {
	m := NewManager(&fakeSubscriptionStore{sub: sub}, &fakeTrialStore{start: trialStart}, 7)
	m.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return m
}

func daysAgo(m *Manager, days int) *time.Time {
	t := m.now().Add(-time.Duration(days) * 24 * time.Hour)
	return &t
}

func TestIsActive_PaidSubscription(t *testing.T) {
	m := newTestManager(&models.Subscription{ID: "sub-1", Active: true}, nil)

	active, err := m.IsActive(context.Background())
	require.NoError(t, err)
	assert.True(t, active)
}

func TestIsActive_ExpiredSubscriptionFallsToTrial(t *testing.T) {
	m := newTestManager(nil, nil)
	expired := m.now().Add(-time.Hour)
	m.subscriptions = &fakeSubscriptionStore{sub: &models.Subscription{
		ID: "sub-1", Active: true, ExpiresAt: &expired,
	}}

	active, err := m.IsActive(context.Background())
	require.NoError(t, err)
	assert.False(t, active, "expired subscription with no trial is inactive")
}

func TestIsActive_TrialWindow(t *testing.T) {
	tests := []struct {
		name        string
		trialAgeDay int
		want        bool
	}{
		{"fresh trial", 0, true},
		{"day six", 6, true},
		{"day seven expired", 7, false},
		{"long expired", 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(nil, nil)
			m.trial = &fakeTrialStore{start: daysAgo(m, tt.trialAgeDay)}

			active, err := m.IsActive(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, active)
		})
	}
}

func TestIsActive_NoSubscriptionNoTrial(t *testing.T) {
	m := newTestManager(nil, nil)

	active, err := m.IsActive(context.Background())
	require.NoError(t, err)
	assert.False(t, active)
}

func TestTrialDaysRemaining(t *testing.T) {
	m := newTestManager(nil, nil)

	remaining, err := m.TrialDaysRemaining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "trial not started")

	m.trial = &fakeTrialStore{start: daysAgo(m, 2)}
	remaining, err = m.TrialDaysRemaining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, remaining)

	m.trial = &fakeTrialStore{start: daysAgo(m, 30)}
	remaining, err = m.TrialDaysRemaining(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, remaining, "remaining never goes negative")
}

func TestStartTrial_DoesNotResetRunningTrial(t *testing.T) {
	m := newTestManager(nil, nil)
	existing := daysAgo(m, 3)
	store := &fakeTrialStore{start: existing}
	m.trial = store

	require.NoError(t, m.StartTrial(context.Background()))
	assert.Equal(t, existing, store.start)
}
