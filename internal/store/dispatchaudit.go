package store

import (
	"context"
	"fmt"
	"time"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// InsertDispatchAudit appends one terminal dispatch outcome.
func (s *Store) InsertDispatchAudit(ctx context.Context, a core.DispatchAudit) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO dispatch_audit (subscription_id, record_ids, records_count, success, response_code, error_message, triggered_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.SubscriptionID, a.RecordIDs, a.RecordsCount, a.Success,
		a.ResponseCode, a.ErrorMessage, a.TriggeredAt)
	if err != nil {
		return fmt.Errorf("insert dispatch_audit: %w", err)
	}
	return nil
}

// CountRecentFailures counts failed dispatches for a subscription since
// the given instant. Feeds the circuit breaker.
func (s *Store) CountRecentFailures(ctx context.Context, subscriptionID string, since time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM dispatch_audit
		 WHERE subscription_id = $1 AND NOT success AND triggered_at > $2`,
		subscriptionID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count dispatch failures: %w", err)
	}
	return count, nil
}

// ListDispatchAudit returns recent dispatch outcomes for a subscription,
// newest first.
func (s *Store) ListDispatchAudit(ctx context.Context, subscriptionID string, limit int) ([]core.DispatchAudit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, subscription_id, record_ids, records_count, success, response_code, error_message, triggered_at
		 FROM dispatch_audit WHERE subscription_id = $1
		 ORDER BY triggered_at DESC LIMIT $2`, subscriptionID, limit)
	if err != nil {
		return nil, fmt.Errorf("query dispatch_audit: %w", err)
	}
	defer rows.Close()

	var audits []core.DispatchAudit
	for rows.Next() {
		var a core.DispatchAudit
		if err := rows.Scan(&a.ID, &a.SubscriptionID, &a.RecordIDs, &a.RecordsCount,
			&a.Success, &a.ResponseCode, &a.ErrorMessage, &a.TriggeredAt); err != nil {
			return nil, fmt.Errorf("scan dispatch_audit: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}

// SubscriptionStats aggregates dispatch totals for the statistics endpoint.
func (s *Store) SubscriptionStats(ctx context.Context, subscriptionID string) (total, successes int, err error) {
	err = s.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE success)
		 FROM dispatch_audit WHERE subscription_id = $1`, subscriptionID).
		Scan(&total, &successes)
	if err != nil {
		return 0, 0, fmt.Errorf("query subscription stats: %w", err)
	}
	return total, successes, nil
}
