package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// ReplaceAnnotations swaps the rule-annotation companion table using the
// same replace-in-one-transaction strategy as the event log. Its failure
// is isolated from the primary sync.
func (s *Store) ReplaceAnnotations(ctx context.Context, anns []core.RuleAnnotation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM rule_annotations`); err != nil {
		return fmt.Errorf("clear rule_annotations: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"rule_annotations"},
		[]string{
			"job_id", "process", "status", "phase", "failure_group",
			"failure_item", "logtitle", "notes", "added_by", "jobsite",
			"county", "sector", "not_report", "date_created",
		},
		pgx.CopyFromSlice(len(anns), func(i int) ([]any, error) {
			a := anns[i]
			return []any{
				a.JobID, a.Process, a.Status, a.Phase, a.FailureGroup,
				a.FailureItem, a.LogTitle, a.Notes, a.AddedBy, a.Jobsite,
				a.County, a.Sector, a.NotReport, a.DateCreated,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy rule_annotations: %w", err)
	}

	return tx.Commit(ctx)
}

// ListAnnotations returns the full annotation table.
func (s *Store) ListAnnotations(ctx context.Context) ([]core.RuleAnnotation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, job_id, process, status, phase, failure_group, failure_item,
			logtitle, notes, added_by, jobsite, county, sector, not_report, date_created
		 FROM rule_annotations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query rule_annotations: %w", err)
	}
	defer rows.Close()

	var anns []core.RuleAnnotation
	for rows.Next() {
		var a core.RuleAnnotation
		if err := rows.Scan(
			&a.ID, &a.JobID, &a.Process, &a.Status, &a.Phase, &a.FailureGroup,
			&a.FailureItem, &a.LogTitle, &a.Notes, &a.AddedBy, &a.Jobsite,
			&a.County, &a.Sector, &a.NotReport, &a.DateCreated,
		); err != nil {
			return nil, fmt.Errorf("scan rule_annotation: %w", err)
		}
		anns = append(anns, a)
	}
	return anns, rows.Err()
}
