package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/call-screener/internal/models"
	"github.com/jackc/pgx/v5"
)

// SubscriptionRepository persists the locally known subscription state.
type SubscriptionRepository struct {
	db *PostgresDB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *PostgresDB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

// Save inserts or replaces a subscription record
func (r *SubscriptionRepository) Save(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, plan, active, started_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			plan = EXCLUDED.plan,
			active = EXCLUDED.active,
			started_at = EXCLUDED.started_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := r.db.Pool().Exec(ctx, query,
		sub.ID, sub.Plan, sub.Active, sub.StartedAt, sub.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to save subscription: %w", err)
	}
	return nil
}

// Current returns the most recent subscription record, or nil when none exists
func (r *SubscriptionRepository) Current(ctx context.Context) (*models.Subscription, error) {
	query := `
		SELECT id, plan, active, started_at, expires_at
		FROM subscriptions
		ORDER BY started_at DESC
		LIMIT 1
	`

	var sub models.Subscription
	err := r.db.Pool().QueryRow(ctx, query).Scan(
		&sub.ID, &sub.Plan, &sub.Active, &sub.StartedAt, &sub.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read subscription: %w", err)
	}
	return &sub, nil
}
