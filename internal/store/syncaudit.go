package store

import (
	"context"
	"fmt"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// InsertSyncAudit appends one replication-attempt row. The ledger is
// never updated or deleted.
func (s *Store) InsertSyncAudit(ctx context.Context, a core.SyncAudit) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_audit (table_name, records_synced, records_added, synced_at, duration_ms, error_message)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.TableName, a.RecordsSynced, a.RecordsAdded, a.SyncedAt, a.DurationMs, a.ErrorMessage)
	if err != nil {
		return fmt.Errorf("insert sync_audit: %w", err)
	}
	return nil
}

// LatestSyncAudit returns the most recent replication attempt for a table.
func (s *Store) LatestSyncAudit(ctx context.Context, table string) (core.SyncAudit, error) {
	var a core.SyncAudit
	err := s.pool.QueryRow(ctx,
		`SELECT id, table_name, records_synced, records_added, synced_at, duration_ms, error_message
		 FROM sync_audit WHERE table_name = $1
		 ORDER BY synced_at DESC LIMIT 1`, table).
		Scan(&a.ID, &a.TableName, &a.RecordsSynced, &a.RecordsAdded, &a.SyncedAt, &a.DurationMs, &a.ErrorMessage)
	if err != nil {
		return core.SyncAudit{}, fmt.Errorf("query latest sync_audit: %w", err)
	}
	return a, nil
}

// ListSyncAudit returns recent replication attempts, newest first.
func (s *Store) ListSyncAudit(ctx context.Context, table string, limit int) ([]core.SyncAudit, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, table_name, records_synced, records_added, synced_at, duration_ms, error_message
		 FROM sync_audit WHERE table_name = $1
		 ORDER BY synced_at DESC LIMIT $2`, table, limit)
	if err != nil {
		return nil, fmt.Errorf("query sync_audit: %w", err)
	}
	defer rows.Close()

	var audits []core.SyncAudit
	for rows.Next() {
		var a core.SyncAudit
		if err := rows.Scan(&a.ID, &a.TableName, &a.RecordsSynced, &a.RecordsAdded,
			&a.SyncedAt, &a.DurationMs, &a.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan sync_audit: %w", err)
		}
		audits = append(audits, a)
	}
	return audits, rows.Err()
}
