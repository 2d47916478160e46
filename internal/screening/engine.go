// Package screening implements the call screening decision engine and the
// service that wraps it for incoming-call triggers.
package screening

import (
	"context"
	"time"

	"github.com/call-screener/internal/models"
	"github.com/call-screener/internal/phone"
	"github.com/call-screener/internal/schedule"
)

// Input carries everything the engine needs for one call: the call metadata
// and a settings snapshot taken at decision time.
type Input struct {
	RawNumber        string
	NormalizedNumber string
	IsPrivateNumber  bool
	Settings         models.SettingsSnapshot
	Now              time.Time
}

// Decision is the outcome of evaluating one incoming call.
type Decision struct {
	ShouldAllow        bool              `json:"shouldAllow"`
	Reason             models.CallReason `json:"reason"`
	MatchedWhitelistID string            `json:"matchedWhitelistId,omitempty"`
}

// Action returns the call action this decision maps to
func (d Decision) Action() models.CallAction {
	if d.ShouldAllow {
		return models.ActionAllowed
	}
	return models.ActionBlocked
}

// ListIndex answers whitelist/blacklist membership for normalized numbers.
type ListIndex interface {
	WhitelistMatch(ctx context.Context, normalized string) (*models.WhitelistEntry, error)
	IsBlacklisted(ctx context.Context, normalized string) (bool, error)
}

// ContactsDirectory answers contact questions for normalized numbers.
type ContactsDirectory interface {
	IsStarred(ctx context.Context, normalized string) (bool, error)
	NameByNumber(ctx context.Context, normalized string) (string, error)
	HasRecentOutgoingCall(ctx context.Context, normalized string, withinDays int) (bool, error)
}

// CallHistory answers recency questions over the screening activity log.
type CallHistory interface {
	ExistsInWindow(ctx context.Context, normalized string, since time.Time) (bool, error)
}

// SubscriptionChecker reports whether blocking is commercially enabled
// (active paid subscription or active trial).
type SubscriptionChecker interface {
	IsActive(ctx context.Context) (bool, error)
}

// Engine is the ordered-precedence call decision evaluator. It holds no
// mutable state; evaluations for distinct calls may run concurrently.
type Engine struct {
	lists        ListIndex
	contacts     ContactsDirectory
	history      CallHistory
	subscription SubscriptionChecker
}

// NewEngine creates a decision engine over the given collaborators
func NewEngine(lists ListIndex, contacts ContactsDirectory, history CallHistory, subscription SubscriptionChecker) *Engine {
	return &Engine{
		lists:        lists,
		contacts:     contacts,
		history:      history,
		subscription: subscription,
	}
}

// Evaluate runs the precedence chain for one call. The first matching check
// wins and short-circuits everything after it; collaborators for later checks
// are only queried if control flow reaches them. The order is load-bearing:
// reordering changes observable behavior.
//
//  1. subscription gate (fails open commercially)
//  2. global kill switch
//  3. schedule gate
//  4. private/suppressed number
//  5. unparseable number (deny by default)
//  6. blacklist
//  7. whitelist
//  8. starred contact
//  9. any known contact
//  10. emergency bypass (a prior call within the window lets this one through)
//  11. recent outgoing call
//  12. default deny
//
// Collaborator errors propagate to the caller; the service wrapper is
// responsible for converting any failure into a fail-open allow.
func (e *Engine) Evaluate(ctx context.Context, in Input) (Decision, error) {
	active, err := e.subscription.IsActive(ctx)
	if err != nil {
		return Decision{}, err
	}
	if !active {
		return allow(models.ReasonSubscriptionInactive), nil
	}

	if !in.Settings.BlockingEnabled {
		return allow(models.ReasonScreeningDisabled), nil
	}

	if in.Settings.ScheduleEnabled && !schedule.IsWithinSchedule(in.Settings, in.Now) {
		return allow(models.ReasonScheduleInactive), nil
	}

	if in.IsPrivateNumber {
		if in.Settings.BlockUnknownNumbers {
			return block(models.ReasonUnknownNumberBlocked), nil
		}
		return allow(models.ReasonScreeningDisabled), nil
	}

	if !phone.HasUsableKey(in.NormalizedNumber) {
		return block(models.ReasonNotWhitelisted), nil
	}

	blacklisted, err := e.lists.IsBlacklisted(ctx, in.NormalizedNumber)
	if err != nil {
		return Decision{}, err
	}
	if blacklisted {
		return block(models.ReasonBlacklisted), nil
	}

	entry, err := e.lists.WhitelistMatch(ctx, in.NormalizedNumber)
	if err != nil {
		return Decision{}, err
	}
	if entry != nil {
		d := allow(models.ReasonWhitelisted)
		d.MatchedWhitelistID = entry.ID
		return d, nil
	}

	if in.Settings.AllowStarredContacts {
		starred, err := e.contacts.IsStarred(ctx, in.NormalizedNumber)
		if err != nil {
			return Decision{}, err
		}
		if starred {
			return allow(models.ReasonStarredContact), nil
		}
	}

	if in.Settings.AllowAllContacts {
		name, err := e.contacts.NameByNumber(ctx, in.NormalizedNumber)
		if err != nil {
			return Decision{}, err
		}
		if name != "" {
			return allow(models.ReasonKnownContact), nil
		}
	}

	if in.Settings.EmergencyBypassEnabled {
		since := in.Now.Add(-time.Duration(in.Settings.EmergencyBypassMinutes) * time.Minute)
		called, err := e.history.ExistsInWindow(ctx, in.NormalizedNumber, since)
		if err != nil {
			return Decision{}, err
		}
		if called {
			return allow(models.ReasonEmergencyBypass), nil
		}
	}

	if in.Settings.AllowRecentOutgoing {
		recent, err := e.contacts.HasRecentOutgoingCall(ctx, in.NormalizedNumber, in.Settings.RecentOutgoingDays)
		if err != nil {
			return Decision{}, err
		}
		if recent {
			return allow(models.ReasonRecentOutgoing), nil
		}
	}

	return block(models.ReasonNotWhitelisted), nil
}

func allow(reason models.CallReason) Decision {
	return Decision{ShouldAllow: true, Reason: reason}
}

func block(reason models.CallReason) Decision {
	return Decision{ShouldAllow: false, Reason: reason}
}
