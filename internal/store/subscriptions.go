package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

const subscriptionColumns = `id, name, endpoint_url, process, status, active, test_mode,
	last_triggered_at, created_at, updated_at`

func scanSubscription(row pgx.Row) (core.Subscription, error) {
	var sub core.Subscription
	err := row.Scan(
		&sub.ID, &sub.Name, &sub.EndpointURL, &sub.Process, &sub.Status,
		&sub.Active, &sub.TestMode, &sub.LastTriggeredAt, &sub.CreatedAt, &sub.UpdatedAt,
	)
	return sub, err
}

// CreateSubscription inserts a new subscription row.
func (s *Store) CreateSubscription(ctx context.Context, sub core.Subscription) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO subscriptions (id, name, endpoint_url, process, status, active, test_mode, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)`,
		sub.ID, sub.Name, sub.EndpointURL, sub.Process, sub.Status,
		sub.Active, sub.TestMode, sub.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetSubscription loads one subscription by ID.
func (s *Store) GetSubscription(ctx context.Context, id string) (core.Subscription, error) {
	sub, err := scanSubscription(s.pool.QueryRow(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Subscription{}, core.NewAppError(core.ErrNotFound, "subscription not found")
	}
	if err != nil {
		return core.Subscription{}, fmt.Errorf("query subscription: %w", err)
	}
	return sub, nil
}

// ListSubscriptions returns all subscriptions, newest first.
func (s *Store) ListSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// ListActiveByTrigger returns active subscriptions whose trigger key
// matches the pair exactly (case-sensitive).
func (s *Store) ListActiveByTrigger(ctx context.Context, key core.TriggerKey) ([]core.Subscription, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions
		 WHERE active AND process = $1 AND status = $2`, key.Process, key.Status)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions by trigger: %w", err)
	}
	defer rows.Close()

	var subs []core.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// SetSubscriptionActive flips the active flag; used by the circuit
// breaker and by manual (de)activation.
func (s *Store) SetSubscriptionActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE subscriptions SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("update subscription active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.NewAppError(core.ErrNotFound, "subscription not found")
	}
	return nil
}

// TouchSubscription records a successful trigger for rate limiting.
func (s *Store) TouchSubscription(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE subscriptions SET last_triggered_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("update subscription last_triggered_at: %w", err)
	}
	return nil
}
