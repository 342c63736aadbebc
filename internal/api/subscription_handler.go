package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

type CreateSubscriptionRequest struct {
	Name        string `json:"name"`
	EndpointURL string `json:"endpoint_url"`
	Process     string `json:"process"`
	Status      string `json:"status"`
	TestMode    bool   `json:"test_mode"`
}

type SubscriptionStatsResponse struct {
	SubscriptionID string `json:"subscription_id"`
	Dispatches     int    `json:"dispatches"`
	Successes      int    `json:"successes"`
	SuccessRate    string `json:"success_rate"`
}

// ListSubscriptions lists all subscriptions, newest first.
func (a *API) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := a.store.ListSubscriptions(r.Context())
	if err != nil {
		a.log.Error("list subscriptions failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"subscriptions": subs})
}

// GetSubscription gets a single subscription by ID.
func (a *API) GetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := a.store.GetSubscription(r.Context(), chi.URLParam(r, "sub_id"))
	if err != nil {
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sub)
}

// CreateSubscription validates and inserts a new subscription.
func (a *API) CreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}

	if req.Name == "" || req.Process == "" || req.Status == "" {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "name, process, and status are required"))
		return
	}
	if err := core.ValidateEndpoint(req.EndpointURL); err != nil {
		respondError(w, err)
		return
	}

	sub := core.Subscription{
		ID:          core.NewID(),
		Name:        req.Name,
		EndpointURL: req.EndpointURL,
		Process:     req.Process,
		Status:      req.Status,
		Active:      true,
		TestMode:    req.TestMode,
		CreatedAt:   time.Now().UTC(),
	}
	if err := a.store.CreateSubscription(r.Context(), sub); err != nil {
		a.log.Error("create subscription failed", zap.Error(err))
		WriteError(w, core.NewAppError(core.ErrConflict, "subscription could not be created"))
		return
	}
	sub.UpdatedAt = sub.CreatedAt

	WriteJSON(w, http.StatusCreated, sub)
}

// DeactivateSubscription clears the active flag. Records are kept; the
// subscription can be activated again later.
func (a *API) DeactivateSubscription(w http.ResponseWriter, r *http.Request) {
	a.setActive(w, r, false)
}

// ActivateSubscription sets the active flag, including after a circuit
// breaker trip.
func (a *API) ActivateSubscription(w http.ResponseWriter, r *http.Request) {
	a.setActive(w, r, true)
}

func (a *API) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id := chi.URLParam(r, "sub_id")
	if err := a.store.SetSubscriptionActive(r.Context(), id, active); err != nil {
		respondError(w, err)
		return
	}
	sub, err := a.store.GetSubscription(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, sub)
}

// GetSubscriptionStats returns dispatch totals and success rate.
func (a *API) GetSubscriptionStats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sub_id")
	if _, err := a.store.GetSubscription(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	total, successes, err := a.store.SubscriptionStats(r.Context(), id)
	if err != nil {
		a.log.Error("subscription stats failed", zap.Error(err))
		respondError(w, err)
		return
	}

	rate := "0.0%"
	if total > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(successes)/float64(total)*100)
	}
	WriteJSON(w, http.StatusOK, SubscriptionStatsResponse{
		SubscriptionID: id,
		Dispatches:     total,
		Successes:      successes,
		SuccessRate:    rate,
	})
}

// ListDeliveries returns recent dispatch outcomes for one subscription.
func (a *API) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sub_id")
	if _, err := a.store.GetSubscription(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}

	limit := parseLimit(r.URL.Query().Get("limit"), 20, 100)
	audits, err := a.store.ListDispatchAudit(r.Context(), id, limit)
	if err != nil {
		a.log.Error("list deliveries failed", zap.Error(err))
		respondError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"deliveries": audits})
}

// parseLimit clamps a limit query parameter to [1, max].
func parseLimit(s string, def, max int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
