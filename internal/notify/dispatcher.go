// Package notify matches newly replicated records to subscriptions and
// delivers webhook notifications through a rate-limited, circuit-broken
// worker pool.
package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
	"github.com/evandro-macedo/interactive-dashboard/internal/observability"
)

// HTTPTimeout bounds each outbound POST (connect and read).
const HTTPTimeout = 10 * time.Second

// Retry budgets per failure class.
var (
	timeoutPolicy   = RetryPolicy{MaxAttempts: 3, Base: 2 * time.Second, Kind: BackoffExponential}
	retryablePolicy = RetryPolicy{MaxAttempts: 2, Base: 5 * time.Second, Kind: BackoffFixed}
)

// Store is the slice of the local database the dispatcher needs.
type Store interface {
	GetSubscription(ctx context.Context, id string) (core.Subscription, error)
	ListActiveByTrigger(ctx context.Context, key core.TriggerKey) ([]core.Subscription, error)
	SetSubscriptionActive(ctx context.Context, id string, active bool) error
	TouchSubscription(ctx context.Context, id string, at time.Time) error
	ListEventsByID(ctx context.Context, ids []int64) ([]core.Event, error)
	InsertDispatchAudit(ctx context.Context, a core.DispatchAudit) error
	CountRecentFailures(ctx context.Context, subscriptionID string, since time.Time) (int, error)
}

type Dispatcher struct {
	store  Store
	queue  *Queue
	client *http.Client
	log    *zap.Logger
	now    func() time.Time
}

func NewDispatcher(store Store, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		store:  store,
		client: &http.Client{Timeout: HTTPTimeout},
		log:    log,
		now:    time.Now,
	}
	d.queue = NewQueue(256, d, log)
	return d
}

// Queue exposes the worker pool for lifecycle management by the binary.
func (d *Dispatcher) Queue() *Queue {
	return d.queue
}

// Dispatch groups new records by exact trigger key and enqueues one job
// per matching active subscription. Failure to enqueue or deliver never
// affects the sync that produced the records.
func (d *Dispatcher) Dispatch(ctx context.Context, newRecords []core.Event) {
	groups := make(map[core.TriggerKey][]int64)
	for _, e := range newRecords {
		if e.Process == "" || e.Status == "" {
			continue
		}
		key := e.TriggerKey()
		groups[key] = append(groups[key], e.ID)
	}

	for key, ids := range groups {
		subs, err := d.store.ListActiveByTrigger(ctx, key)
		if err != nil {
			d.log.Error("subscription lookup failed",
				zap.String("process", key.Process),
				zap.String("status", key.Status),
				zap.Error(err))
			continue
		}
		for _, sub := range subs {
			d.log.Info("dispatch enqueued",
				zap.String("subscription_id", sub.ID),
				zap.String("subscription", sub.Name),
				zap.Int("records", len(ids)))
			d.queue.Submit(Job{SubscriptionID: sub.ID, Key: key, RecordIDs: ids})
		}
	}
}

type outcomeClass int

const (
	outcomeSuccess outcomeClass = iota
	outcomeNonRetryable
	outcomeRetryable
	outcomeTimeout
	outcomeUnexpected
)

// classifyCode maps an HTTP response code to its failure class.
func classifyCode(code int) outcomeClass {
	switch {
	case code == http.StatusOK:
		return outcomeSuccess
	case code == http.StatusBadRequest, code == http.StatusForbidden, code == http.StatusNotFound:
		return outcomeNonRetryable
	case code == http.StatusTooManyRequests, code >= 500 && code < 600:
		return outcomeRetryable
	default:
		return outcomeUnexpected
	}
}

func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	var ue *url.Error
	return errors.As(err, &ue) && ue.Timeout()
}

// Execute runs one dispatch job. Pre-checks that abort (inactive
// subscription, breaker trip, rate limit) leave no audit row; every
// terminal send outcome writes exactly one.
func (d *Dispatcher) Execute(ctx context.Context, job Job) (*Job, time.Duration) {
	log := d.log.With(
		zap.String("subscription_id", job.SubscriptionID),
		zap.Int("records", len(job.RecordIDs)))

	// The subscription may have changed since enqueue.
	sub, err := d.store.GetSubscription(ctx, job.SubscriptionID)
	if err != nil {
		log.Error("subscription re-read failed", zap.Error(err))
		return nil, 0
	}
	if !sub.Active {
		log.Info("subscription inactive, skipping dispatch")
		return nil, 0
	}

	if d.tripBreaker(ctx, sub.ID, log) {
		return nil, 0
	}

	if !sub.CanTrigger(d.now()) {
		log.Info("rate limited, skipping dispatch",
			zap.Timep("last_triggered_at", sub.LastTriggeredAt))
		observability.DispatchSkippedTotal.WithLabelValues("rate_limited").Inc()
		return nil, 0
	}

	records, err := d.store.ListEventsByID(ctx, job.RecordIDs)
	if err != nil {
		log.Error("record load failed", zap.Error(err))
		return nil, 0
	}
	if len(records) == 0 {
		log.Warn("no records found for dispatch, skipping")
		return nil, 0
	}

	if sub.TestMode {
		payload, _ := BuildMessage(sub, records, d.now())
		log.Info("test mode, not sending", zap.ByteString("payload", payload))
		d.finish(ctx, sub, job, core.DispatchAudit{Success: true, ResponseCode: http.StatusOK}, log)
		return nil, 0
	}

	code, sendErr := d.send(ctx, sub, records)

	if sendErr != nil && isTimeout(sendErr) {
		if job.TimeoutAttempts < timeoutPolicy.MaxAttempts {
			job.TimeoutAttempts++
			log.Warn("dispatch timed out, will retry",
				zap.Int("attempt", job.TimeoutAttempts), zap.Error(sendErr))
			observability.DispatchRetryTotal.WithLabelValues("timeout").Inc()
			return &job, timeoutPolicy.Delay(job.TimeoutAttempts)
		}
		d.finish(ctx, sub, job, core.DispatchAudit{ErrorMessage: "request timeout"}, log)
		return nil, 0
	}
	if sendErr != nil {
		d.finish(ctx, sub, job, core.DispatchAudit{ErrorMessage: sendErr.Error()}, log)
		return nil, 0
	}

	switch classifyCode(code) {
	case outcomeSuccess:
		d.finish(ctx, sub, job, core.DispatchAudit{Success: true, ResponseCode: code}, log)
	case outcomeRetryable:
		if job.RetryAttempts < retryablePolicy.MaxAttempts {
			job.RetryAttempts++
			log.Warn("retryable dispatch failure",
				zap.Int("code", code), zap.Int("attempt", job.RetryAttempts))
			observability.DispatchRetryTotal.WithLabelValues("http").Inc()
			return &job, retryablePolicy.Delay(job.RetryAttempts)
		}
		d.finish(ctx, sub, job, core.DispatchAudit{
			ResponseCode: code, ErrorMessage: fmt.Sprintf("retries exhausted (HTTP %d)", code),
		}, log)
	case outcomeNonRetryable:
		d.finish(ctx, sub, job, core.DispatchAudit{
			ResponseCode: code, ErrorMessage: fmt.Sprintf("endpoint rejected request (HTTP %d)", code),
		}, log)
	default:
		d.finish(ctx, sub, job, core.DispatchAudit{
			ResponseCode: code, ErrorMessage: fmt.Sprintf("unexpected response (HTTP %d)", code),
		}, log)
	}
	return nil, 0
}

// send performs the single outbound POST.
func (d *Dispatcher) send(ctx context.Context, sub core.Subscription, records []core.Event) (int, error) {
	payload, err := BuildMessage(sub, records, d.now())
	if err != nil {
		return 0, fmt.Errorf("build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.EndpointURL, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// finish records the terminal outcome, updates the rate-limit timestamp
// on success and re-runs the circuit breaker.
func (d *Dispatcher) finish(ctx context.Context, sub core.Subscription, job Job, audit core.DispatchAudit, log *zap.Logger) {
	now := d.now()
	audit.SubscriptionID = sub.ID
	audit.RecordIDs = job.RecordIDs
	audit.RecordsCount = len(job.RecordIDs)
	audit.TriggeredAt = now

	if err := d.store.InsertDispatchAudit(ctx, audit); err != nil {
		log.Error("dispatch audit write failed", zap.Error(err))
	}

	if audit.Success {
		if err := d.store.TouchSubscription(ctx, sub.ID, now); err != nil {
			log.Error("last_triggered_at update failed", zap.Error(err))
		}
		log.Info("dispatch succeeded", zap.Int("code", audit.ResponseCode))
		observability.DispatchTotal.WithLabelValues("success").Inc()
	} else {
		log.Error("dispatch failed",
			zap.Int("code", audit.ResponseCode),
			zap.String("error", audit.ErrorMessage))
		observability.DispatchTotal.WithLabelValues("failure").Inc()
	}

	d.tripBreaker(ctx, sub.ID, log)
}

// tripBreaker deactivates the subscription once recent failures reach
// the threshold. Reactivation is manual.
func (d *Dispatcher) tripBreaker(ctx context.Context, subscriptionID string, log *zap.Logger) bool {
	failures, err := d.store.CountRecentFailures(ctx, subscriptionID, d.now().Add(-core.BreakerWindow))
	if err != nil {
		log.Error("breaker failure count failed", zap.Error(err))
		return false
	}
	if failures < core.BreakerFailureThreshold {
		return false
	}
	if err := d.store.SetSubscriptionActive(ctx, subscriptionID, false); err != nil {
		log.Error("breaker deactivation failed", zap.Error(err))
		return true
	}
	log.Warn("subscription deactivated by circuit breaker",
		zap.Int("recent_failures", failures))
	observability.BreakerTripTotal.Inc()
	return true
}
