// Package api is the HTTP read/management surface: overview aggregates,
// per-job history, subscription management and sync status.
package api

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/api/middleware"
	"github.com/evandro-macedo/interactive-dashboard/internal/overview"
	"github.com/evandro-macedo/interactive-dashboard/internal/store"
)

type API struct {
	pool  *pgxpool.Pool
	store *store.Store
	views *overview.Service
	log   *zap.Logger
}

func NewAPI(pool *pgxpool.Pool, views *overview.Service, log *zap.Logger) *API {
	return &API{
		pool:  pool,
		store: store.New(pool),
		views: views,
		log:   log,
	}
}

func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(a.log))
	r.Use(middleware.Logger)
	r.Use(chiMiddleware.AllowContentType("application/json"))

	// Health endpoints
	r.Get("/healthz", a.HealthHandler)
	r.Get("/readyz", a.ReadyHandler)

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		// Overview aggregates
		r.Get("/overview/phases", a.GetPhaseSummary)
		r.Get("/overview/active", a.GetActiveDetail)
		r.Get("/overview/failed-inspections", a.GetFailedInspections)
		r.Get("/overview/pending-reports", a.GetPendingReports)
		r.Get("/overview/open-scheduled", a.GetOpenScheduled)
		r.Get("/overview/finalized", a.GetFinalized)

		// Per-job history
		r.Get("/jobs/{job_id}/history", a.GetJobHistory)

		// Sync status
		r.Get("/sync/status", a.GetSyncStatus)
		r.Get("/sync/audit", a.ListSyncAudit)

		// Subscriptions
		r.Get("/subscriptions", a.ListSubscriptions)
		r.Post("/subscriptions", a.CreateSubscription)
		r.Get("/subscriptions/{sub_id}", a.GetSubscription)
		r.Delete("/subscriptions/{sub_id}", a.DeactivateSubscription)
		r.Post("/subscriptions/{sub_id}:activate", a.ActivateSubscription)
		r.Get("/subscriptions/{sub_id}/stats", a.GetSubscriptionStats)
		r.Get("/subscriptions/{sub_id}/deliveries", a.ListDeliveries)
	})

	return r
}
