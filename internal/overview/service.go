package overview

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

// Cache keys for the memoized aggregates. The replication engine
// invalidates exactly this enumeration after a successful sync.
const (
	KeyPhaseSummary      = "overview:phase_summary"
	KeyActiveDetail      = "overview:active_detail"
	KeyFailedInspections = "overview:failed_inspections"
	KeyPendingReports    = "overview:pending_reports"
	KeyOpenScheduled     = "overview:open_scheduled"
)

// CacheKeys is the fixed set of known aggregate keys.
var CacheKeys = []string{
	KeyPhaseSummary,
	KeyActiveDetail,
	KeyFailedInspections,
	KeyPendingReports,
	KeyOpenScheduled,
}

// Reader is the slice of the store the overview service needs.
type Reader interface {
	ListEvents(ctx context.Context) ([]core.Event, error)
	ListAnnotations(ctx context.Context) ([]core.RuleAnnotation, error)
	JobHistory(ctx context.Context, jobID int64, since time.Time) ([]core.Event, error)
}

// ResultCache memoizes aggregate computations.
type ResultCache interface {
	GetOrCompute(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error)
	Invalidate(keys ...string)
}

type Service struct {
	reader Reader
	cache  ResultCache
	log    *zap.Logger
	now    func() time.Time
}

func NewService(reader Reader, cache ResultCache, log *zap.Logger) *Service {
	return &Service{reader: reader, cache: cache, log: log, now: time.Now}
}

func (s *Service) snapshot(ctx context.Context) (*Snapshot, *Derived, error) {
	events, err := s.reader.ListEvents(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load events: %w", err)
	}
	anns, err := s.reader.ListAnnotations(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load annotations: %w", err)
	}
	snap := NewSnapshot(events, anns, s.now())
	return snap, snap.Resolve(), nil
}

// PhaseSummary returns active-job counts per phase.
func (s *Service) PhaseSummary(ctx context.Context) ([]PhaseBucket, error) {
	v, err := s.cache.GetOrCompute(ctx, KeyPhaseSummary, func(ctx context.Context) (any, error) {
		_, d, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return d.PhaseSummary(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]PhaseBucket), nil
}

// ActiveDetail returns every active job with its latest activity.
func (s *Service) ActiveDetail(ctx context.Context) ([]JobState, error) {
	v, err := s.cache.GetOrCompute(ctx, KeyActiveDetail, func(ctx context.Context) (any, error) {
		_, d, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return d.ActiveDetail(), nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]JobState), nil
}

// FailedInspections returns the failed-inspections report.
func (s *Service) FailedInspections(ctx context.Context) (IssueReport, error) {
	return s.issueReport(ctx, KeyFailedInspections, (*Snapshot).FailedInspections)
}

// PendingReports returns the pending-reports report.
func (s *Service) PendingReports(ctx context.Context) (IssueReport, error) {
	return s.issueReport(ctx, KeyPendingReports, (*Snapshot).PendingReports)
}

// OpenScheduled returns the open-scheduled-items report.
func (s *Service) OpenScheduled(ctx context.Context) (IssueReport, error) {
	return s.issueReport(ctx, KeyOpenScheduled, (*Snapshot).OpenScheduled)
}

func (s *Service) issueReport(ctx context.Context, key string, eval func(*Snapshot, *Derived) IssueReport) (IssueReport, error) {
	v, err := s.cache.GetOrCompute(ctx, key, func(ctx context.Context) (any, error) {
		snap, d, err := s.snapshot(ctx)
		if err != nil {
			return nil, err
		}
		return eval(snap, d), nil
	})
	if err != nil {
		return IssueReport{}, err
	}
	return v.(IssueReport), nil
}

// Finalized lists terminal-marker jobs; not cached, it is a cheap scan.
func (s *Service) Finalized(ctx context.Context) ([]FinalizedJob, error) {
	snap, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Finalized(), nil
}

// JobHistory returns the trailing 90 days of events for one job,
// newest first.
func (s *Service) JobHistory(ctx context.Context, jobID int64) ([]core.Event, error) {
	if jobID <= 0 {
		return nil, core.NewAppError(core.ErrBadRequest, "job_id is required")
	}
	return s.reader.JobHistory(ctx, jobID, s.now().Add(-HistoryWindow))
}

// Invalidate evicts the fixed aggregate key enumeration.
func (s *Service) Invalidate() {
	s.cache.Invalidate(CacheKeys...)
}

// Summary is the aggregate pushed to the live-update broadcast after a
// successful sync.
type Summary struct {
	ActiveJobs        int           `json:"active_jobs"`
	Phases            []PhaseBucket `json:"phases"`
	FailedInspections int           `json:"failed_inspections"`
	PendingReports    int           `json:"pending_reports"`
	OpenScheduled     int           `json:"open_scheduled"`
	GeneratedAt       time.Time     `json:"generated_at"`
}

// BuildSummary recomputes the broadcast aggregate from the current store
// contents, bypassing the cache so the push reflects the fresh sync.
func (s *Service) BuildSummary(ctx context.Context) (Summary, error) {
	snap, d, err := s.snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		ActiveJobs:        d.Count(),
		Phases:            d.PhaseSummary(),
		FailedInspections: len(snap.FailedInspections(d).Detail),
		PendingReports:    len(snap.PendingReports(d).Detail),
		OpenScheduled:     len(snap.OpenScheduled(d).Detail),
		GeneratedAt:       s.now(),
	}, nil
}
