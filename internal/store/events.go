package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

const eventColumns = `id, job_id, site_number, logtitle, notes, process, status, phase,
	jobsite, county, sector, site, permit, parcel, model_code, added_by,
	service_date, date_created, fingerprint`

func scanEvent(row pgx.Row) (core.Event, error) {
	var e core.Event
	err := row.Scan(
		&e.ID, &e.JobID, &e.SiteNumber, &e.LogTitle, &e.Notes, &e.Process,
		&e.Status, &e.Phase, &e.Jobsite, &e.County, &e.Sector, &e.Site,
		&e.Permit, &e.Parcel, &e.ModelCode, &e.AddedBy, &e.ServiceDate,
		&e.DateCreated, &e.Fingerprint,
	)
	return e, err
}

func collectEvents(rows pgx.Rows) ([]core.Event, error) {
	defer rows.Close()
	var events []core.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// EventFingerprints returns the set of fingerprints currently present
// locally. Used as the pre-image for new-record detection.
func (s *Store) EventFingerprints(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT fingerprint FROM events`)
	if err != nil {
		return nil, fmt.Errorf("query fingerprints: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scan fingerprint: %w", err)
		}
		set[fp] = struct{}{}
	}
	return set, rows.Err()
}

// ReplaceEvents swaps the entire event table for the fetched snapshot in
// one transaction. Readers observe either the fully-old or the fully-new
// data set, never a partially replaced one.
func (s *Store) ReplaceEvents(ctx context.Context, events []core.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM events`); err != nil {
		return fmt.Errorf("clear events: %w", err)
	}

	now := time.Now()
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"events"},
		[]string{
			"job_id", "site_number", "logtitle", "notes", "process", "status",
			"phase", "jobsite", "county", "sector", "site", "permit", "parcel",
			"model_code", "added_by", "service_date", "date_created",
			"fingerprint", "synced_at",
		},
		pgx.CopyFromSlice(len(events), func(i int) ([]any, error) {
			e := events[i]
			return []any{
				e.JobID, e.SiteNumber, e.LogTitle, e.Notes, e.Process, e.Status,
				e.Phase, e.Jobsite, e.County, e.Sector, e.Site, e.Permit,
				e.Parcel, e.ModelCode, e.AddedBy, e.ServiceDate, e.DateCreated,
				e.Fingerprint, now,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy events: %w", err)
	}

	return tx.Commit(ctx)
}

// ListEvents returns the full local event log ordered by insertion.
func (s *Store) ListEvents(ctx context.Context) ([]core.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return collectEvents(rows)
}

// ListEventsByFingerprint resolves freshly inserted rows (with their local
// IDs) for a set of fingerprints.
func (s *Store) ListEventsByFingerprint(ctx context.Context, fps []string) ([]core.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE fingerprint = ANY($1) ORDER BY id`, fps)
	if err != nil {
		return nil, fmt.Errorf("query events by fingerprint: %w", err)
	}
	return collectEvents(rows)
}

// ListEventsByID loads events for dispatch payloads.
func (s *Store) ListEventsByID(ctx context.Context, ids []int64) ([]core.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("query events by id: %w", err)
	}
	return collectEvents(rows)
}

// JobHistory returns all events for one job since the given instant,
// newest first.
func (s *Store) JobHistory(ctx context.Context, jobID int64, since time.Time) ([]core.Event, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE job_id = $1 AND date_created >= $2
		 ORDER BY date_created DESC, id DESC`, jobID, since)
	if err != nil {
		return nil, fmt.Errorf("query job history: %w", err)
	}
	return collectEvents(rows)
}
