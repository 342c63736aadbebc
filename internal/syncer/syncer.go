// Package syncer replicates the upstream event log into the local
// analytical store, detects which records are new and kicks off the
// post-sync collaborators (cache invalidation, notification dispatch,
// summary broadcast).
package syncer

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
	"github.com/evandro-macedo/interactive-dashboard/internal/observability"
	"github.com/evandro-macedo/interactive-dashboard/internal/overview"
)

const (
	eventsTable      = "events"
	annotationsTable = "rule_annotations"
)

// Source reads the upstream operational database.
type Source interface {
	FetchEvents(ctx context.Context) ([]core.Event, error)
	FetchAnnotations(ctx context.Context) ([]core.RuleAnnotation, error)
}

// Store is the slice of the local database the engine needs.
type Store interface {
	EventFingerprints(ctx context.Context) (map[string]struct{}, error)
	ReplaceEvents(ctx context.Context, events []core.Event) error
	ReplaceAnnotations(ctx context.Context, anns []core.RuleAnnotation) error
	ListEventsByFingerprint(ctx context.Context, fps []string) ([]core.Event, error)
	InsertSyncAudit(ctx context.Context, a core.SyncAudit) error
}

// Views is the overview service surface the engine drives after a
// successful replication.
type Views interface {
	Invalidate()
	BuildSummary(ctx context.Context) (overview.Summary, error)
}

// Dispatcher receives the events that were not present before this sync.
type Dispatcher interface {
	Dispatch(ctx context.Context, newRecords []core.Event)
}

// Broadcaster publishes the refreshed summary. Best effort.
type Broadcaster interface {
	Publish(ctx context.Context, payload any)
}

type Engine struct {
	source      Source
	store       Store
	views       Views
	dispatcher  Dispatcher
	broadcaster Broadcaster
	log         *zap.Logger
	now         func() time.Time
}

func New(source Source, store Store, views Views, dispatcher Dispatcher, broadcaster Broadcaster, log *zap.Logger) *Engine {
	return &Engine{
		source:      source,
		store:       store,
		views:       views,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// Sync runs one full-refresh replication cycle. The primary event
// replication is fatal for the run: its failure is audited and returned.
// Everything after it (annotation replication, cache invalidation,
// dispatch, broadcast) fails in isolation.
func (e *Engine) Sync(ctx context.Context) (core.SyncResult, error) {
	cycleID := core.NewID()
	log := observability.SyncLogger(e.log, cycleID, eventsTable)
	started := e.now()

	preimage, err := e.store.EventFingerprints(ctx)
	if err != nil {
		return e.fail(ctx, log, started, "read local fingerprints", err)
	}

	events, err := e.source.FetchEvents(ctx)
	if err != nil {
		return e.fail(ctx, log, started, "fetch upstream events", err)
	}

	if err := e.store.ReplaceEvents(ctx, events); err != nil {
		return e.fail(ctx, log, started, "replace events", err)
	}

	// New-record detection is a true set difference of fingerprints: a
	// shrinking table with some new rows still reports every new row.
	addedFPs := make([]string, 0)
	seen := make(map[string]struct{}, len(events))
	for _, ev := range events {
		if _, dup := seen[ev.Fingerprint]; dup {
			continue
		}
		seen[ev.Fingerprint] = struct{}{}
		if _, ok := preimage[ev.Fingerprint]; !ok {
			addedFPs = append(addedFPs, ev.Fingerprint)
		}
	}

	duration := e.now().Sub(started)
	audit := core.SyncAudit{
		TableName:     eventsTable,
		RecordsSynced: len(events),
		RecordsAdded:  len(addedFPs),
		SyncedAt:      e.now(),
		DurationMs:    duration.Milliseconds(),
	}
	if err := e.store.InsertSyncAudit(ctx, audit); err != nil {
		log.Error("sync audit write failed", zap.Error(err))
	}
	observability.SyncTotal.WithLabelValues(eventsTable, "success").Inc()
	observability.SyncDuration.WithLabelValues(eventsTable).Observe(duration.Seconds())
	observability.SyncRecordsTotal.WithLabelValues(eventsTable).Set(float64(len(events)))
	observability.SyncRecordsAdded.WithLabelValues(eventsTable).Set(float64(len(addedFPs)))
	log.Info("sync completed",
		zap.Int("records_synced", len(events)),
		zap.Int("records_added", len(addedFPs)),
		zap.Duration("duration", duration))

	e.views.Invalidate()

	e.syncAnnotations(ctx, cycleID)

	if len(addedFPs) > 0 && e.dispatcher != nil {
		added, err := e.store.ListEventsByFingerprint(ctx, addedFPs)
		if err != nil {
			log.Error("added-record load failed", zap.Error(err))
		} else {
			e.dispatcher.Dispatch(ctx, added)
		}
	}

	if e.broadcaster != nil {
		if summary, err := e.views.BuildSummary(ctx); err != nil {
			log.Warn("summary rebuild failed, skipping broadcast", zap.Error(err))
		} else {
			e.broadcaster.Publish(ctx, summary)
		}
	}

	return core.SyncResult{
		RecordsSynced: len(events),
		RecordsAdded:  len(addedFPs),
		Duration:      duration,
	}, nil
}

// syncAnnotations replicates the annotation table in its own
// transaction with its own audit row. Its failure never fails the run.
func (e *Engine) syncAnnotations(ctx context.Context, cycleID string) {
	log := observability.SyncLogger(e.log, cycleID, annotationsTable)
	started := e.now()

	anns, err := e.source.FetchAnnotations(ctx)
	if err == nil {
		err = e.store.ReplaceAnnotations(ctx, anns)
	}
	duration := e.now().Sub(started)

	audit := core.SyncAudit{
		TableName:     annotationsTable,
		RecordsSynced: len(anns),
		SyncedAt:      e.now(),
		DurationMs:    duration.Milliseconds(),
	}
	status := "success"
	if err != nil {
		audit.RecordsSynced = 0
		audit.ErrorMessage = err.Error()
		status = "failure"
		log.Error("annotation sync failed", zap.Error(err))
	} else {
		log.Info("annotation sync completed", zap.Int("records_synced", len(anns)))
	}
	if auditErr := e.store.InsertSyncAudit(ctx, audit); auditErr != nil {
		log.Error("sync audit write failed", zap.Error(auditErr))
	}
	observability.SyncTotal.WithLabelValues(annotationsTable, status).Inc()
	observability.SyncDuration.WithLabelValues(annotationsTable).Observe(duration.Seconds())
}

func (e *Engine) fail(ctx context.Context, log *zap.Logger, started time.Time, op string, err error) (core.SyncResult, error) {
	duration := e.now().Sub(started)
	log.Error("sync failed", zap.String("op", op), zap.Error(err))

	audit := core.SyncAudit{
		TableName:    eventsTable,
		SyncedAt:     e.now(),
		DurationMs:   duration.Milliseconds(),
		ErrorMessage: err.Error(),
	}
	if auditErr := e.store.InsertSyncAudit(ctx, audit); auditErr != nil {
		log.Error("sync audit write failed", zap.Error(auditErr))
	}
	observability.SyncTotal.WithLabelValues(eventsTable, "failure").Inc()
	return core.SyncResult{Duration: duration}, err
}
