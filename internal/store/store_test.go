package store

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

func TestStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("dashboard"),
		postgres.WithUsername("dashboard"),
		postgres.WithPassword("dashboard_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections"),
		),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	pool, err := NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect: %s", err)
	}
	defer pool.Close()

	if err := EnsureSchema(ctx, pool); err != nil {
		t.Fatalf("failed to create schema: %s", err)
	}

	s := New(pool)
	now := time.Now().UTC().Truncate(time.Millisecond)

	mkEvent := func(job int64, process, status string, at time.Time) core.Event {
		e := core.Event{
			JobID:       job,
			Process:     process,
			Status:      status,
			Phase:       "phase 1",
			Jobsite:     "North Ridge",
			DateCreated: at,
		}
		e.Fingerprint = core.Fingerprint(e)
		return e
	}

	t.Run("replace and list events", func(t *testing.T) {
		batch := []core.Event{
			mkEvent(1, "framing", core.StatusReport, now.Add(-time.Hour)),
			mkEvent(2, "plumbing", core.StatusScheduled, now),
		}
		if err := s.ReplaceEvents(ctx, batch); err != nil {
			t.Fatalf("ReplaceEvents: %s", err)
		}

		events, err := s.ListEvents(ctx)
		if err != nil {
			t.Fatalf("ListEvents: %s", err)
		}
		if len(events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(events))
		}
		if events[0].ID >= events[1].ID {
			t.Error("events not ordered by insertion")
		}

		// Second replace with the same snapshot leaves the same logical set.
		if err := s.ReplaceEvents(ctx, batch); err != nil {
			t.Fatalf("ReplaceEvents (second): %s", err)
		}
		fps, err := s.EventFingerprints(ctx)
		if err != nil {
			t.Fatalf("EventFingerprints: %s", err)
		}
		if len(fps) != 2 {
			t.Fatalf("expected 2 fingerprints, got %d", len(fps))
		}
		for _, e := range batch {
			if _, ok := fps[e.Fingerprint]; !ok {
				t.Errorf("fingerprint %s missing after replace", e.Fingerprint)
			}
		}
	})

	t.Run("list events by fingerprint", func(t *testing.T) {
		e := mkEvent(1, "framing", core.StatusReport, now.Add(-time.Hour))
		got, err := s.ListEventsByFingerprint(ctx, []string{e.Fingerprint})
		if err != nil {
			t.Fatalf("ListEventsByFingerprint: %s", err)
		}
		if len(got) != 1 || got[0].JobID != 1 {
			t.Fatalf("expected job 1, got %+v", got)
		}
	})

	t.Run("job history window", func(t *testing.T) {
		history, err := s.JobHistory(ctx, 1, now.Add(-90*24*time.Hour))
		if err != nil {
			t.Fatalf("JobHistory: %s", err)
		}
		if len(history) != 1 {
			t.Fatalf("expected 1 history row, got %d", len(history))
		}
		history, err = s.JobHistory(ctx, 1, now.Add(time.Hour))
		if err != nil {
			t.Fatalf("JobHistory: %s", err)
		}
		if len(history) != 0 {
			t.Fatalf("expected empty history outside window, got %d", len(history))
		}
	})

	t.Run("annotations", func(t *testing.T) {
		anns := []core.RuleAnnotation{
			{Process: "framing", Status: core.StatusReport, NotReport: true, DateCreated: now},
			{JobID: 1, Process: "framing", Status: core.StatusChecklistDone, FailureGroup: "fmea-structural", DateCreated: now},
		}
		if err := s.ReplaceAnnotations(ctx, anns); err != nil {
			t.Fatalf("ReplaceAnnotations: %s", err)
		}
		got, err := s.ListAnnotations(ctx)
		if err != nil {
			t.Fatalf("ListAnnotations: %s", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 annotations, got %d", len(got))
		}
		if !got[0].NotReport {
			t.Error("not_report flag lost on round trip")
		}
		if !got[1].Tagged() {
			t.Error("failure_group tag lost on round trip")
		}
	})

	t.Run("sync audit ledger", func(t *testing.T) {
		if err := s.InsertSyncAudit(ctx, core.SyncAudit{
			TableName: "events", RecordsSynced: 2, RecordsAdded: 2,
			SyncedAt: now, DurationMs: 120,
		}); err != nil {
			t.Fatalf("InsertSyncAudit: %s", err)
		}
		if err := s.InsertSyncAudit(ctx, core.SyncAudit{
			TableName: "events", SyncedAt: now.Add(time.Minute),
			DurationMs: 80, ErrorMessage: "source unreachable",
		}); err != nil {
			t.Fatalf("InsertSyncAudit (failure row): %s", err)
		}

		latest, err := s.LatestSyncAudit(ctx, "events")
		if err != nil {
			t.Fatalf("LatestSyncAudit: %s", err)
		}
		if latest.ErrorMessage != "source unreachable" {
			t.Errorf("expected latest row to be the failure, got %+v", latest)
		}

		audits, err := s.ListSyncAudit(ctx, "events", 10)
		if err != nil {
			t.Fatalf("ListSyncAudit: %s", err)
		}
		if len(audits) != 2 {
			t.Fatalf("expected 2 audit rows, got %d", len(audits))
		}
	})

	t.Run("subscriptions and dispatch audit", func(t *testing.T) {
		sub := core.Subscription{
			ID:          core.NewID(),
			Name:        "framing reports",
			EndpointURL: "https://hooks.slack.com/services/T000/B000/XXX",
			Process:     "framing",
			Status:      core.StatusReport,
			Active:      true,
			CreatedAt:   now,
		}
		if err := s.CreateSubscription(ctx, sub); err != nil {
			t.Fatalf("CreateSubscription: %s", err)
		}

		matches, err := s.ListActiveByTrigger(ctx, core.TriggerKey{Process: "framing", Status: core.StatusReport})
		if err != nil {
			t.Fatalf("ListActiveByTrigger: %s", err)
		}
		if len(matches) != 1 {
			t.Fatalf("expected 1 match, got %d", len(matches))
		}

		// Case-sensitive exact match.
		matches, err = s.ListActiveByTrigger(ctx, core.TriggerKey{Process: "Framing", Status: core.StatusReport})
		if err != nil {
			t.Fatalf("ListActiveByTrigger: %s", err)
		}
		if len(matches) != 0 {
			t.Fatal("trigger matching must be case-sensitive")
		}

		for i := 0; i < 5; i++ {
			if err := s.InsertDispatchAudit(ctx, core.DispatchAudit{
				SubscriptionID: sub.ID,
				RecordIDs:      []int64{int64(i)},
				RecordsCount:   1,
				Success:        false,
				ResponseCode:   500,
				ErrorMessage:   "server error",
				TriggeredAt:    now.Add(time.Duration(i) * time.Minute),
			}); err != nil {
				t.Fatalf("InsertDispatchAudit: %s", err)
			}
		}

		failures, err := s.CountRecentFailures(ctx, sub.ID, now.Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("CountRecentFailures: %s", err)
		}
		if failures != 5 {
			t.Fatalf("expected 5 recent failures, got %d", failures)
		}

		if err := s.SetSubscriptionActive(ctx, sub.ID, false); err != nil {
			t.Fatalf("SetSubscriptionActive: %s", err)
		}
		got, err := s.GetSubscription(ctx, sub.ID)
		if err != nil {
			t.Fatalf("GetSubscription: %s", err)
		}
		if got.Active {
			t.Error("subscription should be inactive")
		}

		total, successes, err := s.SubscriptionStats(ctx, sub.ID)
		if err != nil {
			t.Fatalf("SubscriptionStats: %s", err)
		}
		if total != 5 || successes != 0 {
			t.Errorf("expected 5/0 stats, got %d/%d", total, successes)
		}
	})
}
