// Package source reads the upstream operational database. Access is
// read-only and always a full scan; the upstream has no incremental
// cursor to offer.
package source

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

type Client struct {
	pool *pgxpool.Pool
}

// New connects to the upstream operational database.
func New(ctx context.Context, dsn string) (*Client, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse source dsn: %w", err)
	}
	config.MaxConns = 4
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create source pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping source db: %w", err)
	}
	return &Client{pool: pool}, nil
}

func (c *Client) Close() {
	c.pool.Close()
}

// FetchEvents returns the complete current snapshot of the upstream
// daily-log table. Fingerprints are computed here so the replication
// engine can diff against the local pre-image.
func (c *Client) FetchEvents(ctx context.Context) ([]core.Event, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT COALESCE(job_id, 0), COALESCE(site_number, 0),
			COALESCE(logtitle, ''), COALESCE(notes, ''),
			COALESCE(process, ''), COALESCE(status, ''), COALESCE(phase, ''),
			COALESCE(jobsite, ''), COALESCE(county, ''), COALESCE(sector, ''),
			COALESCE(site, ''), COALESCE(permit, ''), COALESCE(parcel, ''),
			COALESCE(model_code, ''), COALESCE(addedby, ''),
			COALESCE(servicedate, ''), datecreated
		FROM dailylogs`)
	if err != nil {
		return nil, fmt.Errorf("fetch dailylogs: %w", err)
	}
	defer rows.Close()

	var events []core.Event
	for rows.Next() {
		var e core.Event
		if err := rows.Scan(
			&e.JobID, &e.SiteNumber, &e.LogTitle, &e.Notes, &e.Process,
			&e.Status, &e.Phase, &e.Jobsite, &e.County, &e.Sector, &e.Site,
			&e.Permit, &e.Parcel, &e.ModelCode, &e.AddedBy, &e.ServiceDate,
			&e.DateCreated,
		); err != nil {
			return nil, fmt.Errorf("scan dailylog: %w", err)
		}
		e.Fingerprint = core.Fingerprint(e)
		events = append(events, e)
	}
	return events, rows.Err()
}

// FetchAnnotations returns the complete current snapshot of the upstream
// failure-classification table.
func (c *Client) FetchAnnotations(ctx context.Context) ([]core.RuleAnnotation, error) {
	rows, err := c.pool.Query(ctx, `
		SELECT COALESCE(job_id, 0), COALESCE(process, ''), COALESCE(status, ''),
			COALESCE(phase, ''), COALESCE(failure_group, ''),
			COALESCE(failure_item, ''), COALESCE(logtitle, ''),
			COALESCE(notes, ''), COALESCE(addedby, ''), COALESCE(jobsite, ''),
			COALESCE(county, ''), COALESCE(sector, ''),
			COALESCE(not_report, FALSE), datecreated
		FROM dailylogs_fmea`)
	if err != nil {
		return nil, fmt.Errorf("fetch dailylogs_fmea: %w", err)
	}
	defer rows.Close()

	var anns []core.RuleAnnotation
	for rows.Next() {
		var a core.RuleAnnotation
		if err := rows.Scan(
			&a.JobID, &a.Process, &a.Status, &a.Phase, &a.FailureGroup,
			&a.FailureItem, &a.LogTitle, &a.Notes, &a.AddedBy, &a.Jobsite,
			&a.County, &a.Sector, &a.NotReport, &a.DateCreated,
		); err != nil {
			return nil, fmt.Errorf("scan dailylog_fmea: %w", err)
		}
		anns = append(anns, a)
	}
	return anns, rows.Err()
}
