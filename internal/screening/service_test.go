package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/call-screener/internal/models"
	"github.com/call-screener/internal/phone"
)

type mockSettings struct {
	snapshot models.SettingsSnapshot
	err      error
}

func (m *mockSettings) Snapshot(ctx context.Context) (models.SettingsSnapshot, error) {
	return m.snapshot, m.err
}

type mockEventLog struct {
	events []*models.CallEvent
	err    error
}

func (m *mockEventLog) Log(ctx context.Context, event *models.CallEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

type serviceFixture struct {
	*engineFixture
	settings *mockSettings
	events   *mockEventLog
	service  *Service
}

func newServiceFixture() *serviceFixture {
	ef := newFixture()
	sf := &serviceFixture{
		engineFixture: ef,
		settings:      &mockSettings{snapshot: models.DefaultSettings()},
		events:        &mockEventLog{},
	}
	sf.service = NewService(
		ef.engine,
		phone.NewNormalizer("US"),
		sf.settings,
		ef.contacts,
		sf.events,
		time.Second,
	)
	return sf
}

func TestScreen_BlockedCallResponse(t *testing.T) {
	f := newServiceFixture()

	result := f.service.Screen(context.Background(), "(555) 012-3456", false)

	assert.False(t, result.Decision.ShouldAllow)
	assert.Equal(t, models.ReasonNotWhitelisted, result.Decision.Reason)
	assert.Equal(t, TelecomResponse{
		DisallowCall:     true,
		RejectCall:       true,
		SkipCallLog:      true,
		SkipNotification: true,
	}, result.Response)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, models.ActionBlocked, event.Action)
	assert.Equal(t, "+15550123456", event.NormalizedNumber)
	assert.Equal(t, "(555) 012-3456", event.PhoneNumber)
}

func TestScreen_WhitelistedCall(t *testing.T) {
	f := newServiceFixture()
	f.lists.whitelist["+15550123456"] = &models.WhitelistEntry{
		ID:               "wl-7",
		NormalizedNumber: "+15550123456",
	}

	result := f.service.Screen(context.Background(), "555-012-3456", false)

	assert.True(t, result.Decision.ShouldAllow)
	assert.Equal(t, models.ReasonWhitelisted, result.Decision.Reason)
	assert.Equal(t, TelecomResponse{}, result.Response)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "wl-7", f.events.events[0].MatchedWhitelistID)
}

func TestScreen_PrivateNumberDetection(t *testing.T) {
	f := newServiceFixture()

	for _, raw := range []string{"", "-1", "0"} {
		f.events.events = nil
		result := f.service.Screen(context.Background(), raw, false)

		assert.False(t, result.Decision.ShouldAllow, "raw=%q", raw)
		assert.Equal(t, models.ReasonUnknownNumberBlocked, result.Decision.Reason, "raw=%q", raw)

		require.Len(t, f.events.events, 1)
		event := f.events.events[0]
		assert.True(t, event.IsPrivateNumber)
		assert.Empty(t, event.NormalizedNumber)
		assert.Equal(t, "Private Number", event.DisplayName)
	}
}

func TestScreen_PrivateHintRespected(t *testing.T) {
	f := newServiceFixture()

	result := f.service.Screen(context.Background(), "+15550123456", true)
	assert.Equal(t, models.ReasonUnknownNumberBlocked, result.Decision.Reason)
}

func TestScreen_ContactNameOnEvent(t *testing.T) {
	f := newServiceFixture()
	f.contacts.names["+15550123456"] = "Alice"

	f.service.Screen(context.Background(), "+15550123456", false)

	require.Len(t, f.events.events, 1)
	assert.Equal(t, "Alice", f.events.events[0].DisplayName)
}

func TestScreen_FailsOpenOnSettingsError(t *testing.T) {
	f := newServiceFixture()
	f.settings.err = errors.New("settings store down")

	result := f.service.Screen(context.Background(), "+15550123456", false)

	assert.True(t, result.Decision.ShouldAllow)
	assert.Equal(t, TelecomResponse{}, result.Response)
	assert.Empty(t, f.events.events, "no event is logged when screening fails open")
}

func TestScreen_FailsOpenOnEngineError(t *testing.T) {
	f := newServiceFixture()
	f.subscription.err = errors.New("billing unavailable")

	result := f.service.Screen(context.Background(), "+15550123456", false)

	assert.True(t, result.Decision.ShouldAllow)
	assert.Equal(t, TelecomResponse{}, result.Response)
}

func TestScreen_EventLogFailureDoesNotChangeDecision(t *testing.T) {
	f := newServiceFixture()
	f.events.err = errors.New("disk full")

	result := f.service.Screen(context.Background(), "+15550123456", false)

	assert.False(t, result.Decision.ShouldAllow)
	assert.Equal(t, models.ReasonNotWhitelisted, result.Decision.Reason)
}

func TestScreen_EmergencyBypassUsesLoggedEvents(t *testing.T) {
	f := newServiceFixture()
	now := time.Now().UTC()
	f.history.events["+15550123456"] = []time.Time{now.Add(-2 * time.Minute)}

	result := f.service.Screen(context.Background(), "+15550123456", false)

	assert.True(t, result.Decision.ShouldAllow)
	assert.Equal(t, models.ReasonEmergencyBypass, result.Decision.Reason)
}

func TestResponseFor(t *testing.T) {
	allow := ResponseFor(Decision{ShouldAllow: true})
	assert.Equal(t, TelecomResponse{}, allow)

	blocked := ResponseFor(Decision{ShouldAllow: false})
	assert.True(t, blocked.DisallowCall)
	assert.True(t, blocked.RejectCall)
	assert.True(t, blocked.SkipCallLog)
	assert.True(t, blocked.SkipNotification)
}
