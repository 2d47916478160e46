package screening

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/call-screener/internal/logging"
	"github.com/call-screener/internal/models"
	"github.com/call-screener/internal/phone"
)

// TelecomResponse is the answer returned to the telecom trigger for one call.
type TelecomResponse struct {
	DisallowCall     bool `json:"disallowCall"`
	RejectCall       bool `json:"rejectCall"`
	SkipCallLog      bool `json:"skipCallLog"`
	SkipNotification bool `json:"skipNotification"`
}

// ResponseFor maps a decision to the telecom response. A blocked call is
// rejected silently: no ring, no call log entry, no notification.
func ResponseFor(d Decision) TelecomResponse {
	if d.ShouldAllow {
		return TelecomResponse{}
	}
	return TelecomResponse{
		DisallowCall:     true,
		RejectCall:       true,
		SkipCallLog:      true,
		SkipNotification: true,
	}
}

// SettingsSource provides the per-call settings snapshot.
type SettingsSource interface {
	Snapshot(ctx context.Context) (models.SettingsSnapshot, error)
}

// EventLog records screening outcomes in the activity log.
type EventLog interface {
	Log(ctx context.Context, event *models.CallEvent) error
}

// Result is the full outcome of screening one incoming call.
type Result struct {
	Decision Decision          `json:"decision"`
	Response TelecomResponse   `json:"response"`
	Event    *models.CallEvent `json:"event,omitempty"`
}

// Service wraps the decision engine for the incoming-call path: it detects
// private numbers, normalizes the raw number, evaluates under a deadline,
// records the outcome, and above all fails open. Whatever goes wrong inside
// evaluation, the call rings through; a missed legitimate call is worse than
// one unwanted ring.
type Service struct {
	engine     *Engine
	normalizer *phone.Normalizer
	settings   SettingsSource
	contacts   ContactsDirectory
	events     EventLog
	timeout    time.Duration
}

// NewService creates a screening service
func NewService(
	engine *Engine,
	normalizer *phone.Normalizer,
	settings SettingsSource,
	contacts ContactsDirectory,
	events EventLog,
	timeout time.Duration,
) *Service {
	return &Service{
		engine:     engine,
		normalizer: normalizer,
		settings:   settings,
		contacts:   contacts,
		events:     events,
		timeout:    timeout,
	}
}

// Screen evaluates one incoming call and never fails: any error, timeout, or
// panic on the evaluation path produces an allow response with no activity
// log entry, mirroring what the platform would do if screening were absent.
func (s *Service) Screen(ctx context.Context, rawNumber string, privateHint bool) (result Result) {
	logger := logging.FromContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			logger.WithField("panic", fmt.Sprintf("%v", r)).Error("screening panicked, allowing call")
			result = failOpen()
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	isPrivate := privateHint || isSuppressedNumber(rawNumber)

	normalized := ""
	if !isPrivate {
		normalized = s.normalizer.Normalize(rawNumber)
	}

	settings, err := s.settings.Snapshot(ctx)
	if err != nil {
		logger.WithError(err).Error("settings snapshot failed, allowing call")
		return failOpen()
	}

	now := time.Now().UTC()
	decision, err := s.engine.Evaluate(ctx, Input{
		RawNumber:        rawNumber,
		NormalizedNumber: normalized,
		IsPrivateNumber:  isPrivate,
		Settings:         settings,
		Now:              now,
	})
	if err != nil {
		logger.WithError(err).Error("evaluation failed, allowing call")
		return failOpen()
	}

	event := s.buildEvent(ctx, rawNumber, normalized, isPrivate, now, decision)
	if err := s.events.Log(ctx, event); err != nil {
		// The decision stands even if the activity log write fails.
		logger.WithError(err).Warn("failed to log call event")
	}

	logger.WithFields(map[string]interface{}{
		"allow":  decision.ShouldAllow,
		"reason": string(decision.Reason),
	}).Info("call screened")

	return Result{
		Decision: decision,
		Response: ResponseFor(decision),
		Event:    event,
	}
}

func (s *Service) buildEvent(ctx context.Context, raw, normalized string, isPrivate bool, now time.Time, decision Decision) *models.CallEvent {
	displayName := "Private Number"
	if !isPrivate {
		displayName = raw
		if name, err := s.contacts.NameByNumber(ctx, normalized); err == nil && name != "" {
			displayName = name
		}
	}

	event := &models.CallEvent{
		ID:                 uuid.NewString(),
		Timestamp:          now,
		Action:             decision.Action(),
		Reason:             decision.Reason,
		MatchedWhitelistID: decision.MatchedWhitelistID,
		IsPrivateNumber:    isPrivate,
		DisplayName:        displayName,
	}
	if !isPrivate {
		event.PhoneNumber = raw
		event.NormalizedNumber = normalized
	}
	return event
}

// isSuppressedNumber recognizes the sentinel values the platform delivers
// when the caller ID is hidden.
func isSuppressedNumber(raw string) bool {
	return raw == "" || raw == "-1" || raw == "0"
}

// failOpen is the safety posture for any unexpected fault: let the call ring
// through as if screening were not installed.
func failOpen() Result {
	return Result{
		Decision: Decision{ShouldAllow: true, Reason: models.ReasonScreeningDisabled},
		Response: TelecomResponse{},
	}
}
