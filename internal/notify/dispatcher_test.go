package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
)

type fakeStore struct {
	mu       sync.Mutex
	subs     map[string]core.Subscription
	events   map[int64]core.Event
	audits   []core.DispatchAudit
	failures map[string]int
	touched  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		subs:     make(map[string]core.Subscription),
		events:   make(map[int64]core.Event),
		failures: make(map[string]int),
	}
}

func (s *fakeStore) GetSubscription(_ context.Context, id string) (core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subs[id]
	if !ok {
		return core.Subscription{}, core.NewAppError(core.ErrNotFound, "subscription not found")
	}
	return sub, nil
}

func (s *fakeStore) ListActiveByTrigger(_ context.Context, key core.TriggerKey) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Subscription
	for _, sub := range s.subs {
		if sub.Active && sub.TriggerKey() == key {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *fakeStore) SetSubscriptionActive(_ context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[id]
	sub.Active = active
	s.subs[id] = sub
	return nil
}

func (s *fakeStore) TouchSubscription(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub := s.subs[id]
	sub.LastTriggeredAt = &at
	s.subs[id] = sub
	s.touched = append(s.touched, id)
	return nil
}

func (s *fakeStore) ListEventsByID(_ context.Context, ids []int64) ([]core.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Event
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertDispatchAudit(_ context.Context, a core.DispatchAudit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, a)
	if !a.Success {
		s.failures[a.SubscriptionID]++
	}
	return nil
}

func (s *fakeStore) CountRecentFailures(_ context.Context, id string, _ time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[id], nil
}

func (s *fakeStore) auditCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.audits)
}

func (s *fakeStore) lastAudit(t *testing.T) core.DispatchAudit {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.audits)
	return s.audits[len(s.audits)-1]
}

func testDispatcher(t *testing.T, store *fakeStore) *Dispatcher {
	t.Helper()
	d := NewDispatcher(store, zap.NewNop())
	d.now = func() time.Time { return time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC) }
	return d
}

func seedSub(store *fakeStore, endpoint string) core.Subscription {
	sub := core.Subscription{
		ID:          "sub-1",
		Name:        "framing reports",
		EndpointURL: endpoint,
		Process:     "framing",
		Status:      "report",
		Active:      true,
	}
	store.subs[sub.ID] = sub
	return sub
}

func seedEvents(store *fakeStore, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 1; i <= n; i++ {
		id := int64(i)
		store.events[id] = core.Event{
			ID:      id,
			JobID:   101,
			Jobsite: "north yard",
			Process: "framing",
			Status:  "report",
		}
		ids = append(ids, id)
	}
	return ids
}

func TestExecuteSuccess(t *testing.T) {
	store := newFakeStore()
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	ids := seedEvents(store, 3)
	d := testDispatcher(t, store)

	retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
	require.Nil(t, retry)

	a := store.lastAudit(t)
	assert.True(t, a.Success)
	assert.Equal(t, http.StatusOK, a.ResponseCode)
	assert.Equal(t, 3, a.RecordsCount)
	assert.Equal(t, ids, a.RecordIDs)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, []string{sub.ID}, store.touched)
}

func TestExecuteNonRetryableWritesFailureAudit(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound} {
		store := newFakeStore()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(code)
		}))
		sub := seedSub(store, srv.URL)
		ids := seedEvents(store, 1)
		d := testDispatcher(t, store)

		retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
		srv.Close()

		require.Nil(t, retry, "code %d must not retry", code)
		a := store.lastAudit(t)
		assert.False(t, a.Success)
		assert.Equal(t, code, a.ResponseCode)
		assert.Empty(t, store.touched)
	}
}

func TestExecuteRetryableRequeuesThenExhausts(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	ids := seedEvents(store, 1)
	d := testDispatcher(t, store)

	job := Job{SubscriptionID: sub.ID, RecordIDs: ids}
	retry, delay := d.Execute(context.Background(), job)
	require.NotNil(t, retry)
	assert.Equal(t, 1, retry.RetryAttempts)
	assert.Equal(t, 5*time.Second, delay)
	assert.Zero(t, store.auditCount(), "no audit before retries are exhausted")

	retry, delay = d.Execute(context.Background(), *retry)
	require.NotNil(t, retry)
	assert.Equal(t, 2, retry.RetryAttempts)
	assert.Equal(t, 5*time.Second, delay)

	retry, _ = d.Execute(context.Background(), *retry)
	require.Nil(t, retry)
	a := store.lastAudit(t)
	assert.False(t, a.Success)
	assert.Equal(t, http.StatusServiceUnavailable, a.ResponseCode)
}

func TestExecuteRateLimitSkipsWithoutAudit(t *testing.T) {
	store := newFakeStore()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	recent := time.Date(2026, 6, 1, 11, 58, 0, 0, time.UTC)
	sub.LastTriggeredAt = &recent
	store.subs[sub.ID] = sub
	ids := seedEvents(store, 1)
	d := testDispatcher(t, store)

	retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
	require.Nil(t, retry)
	assert.False(t, called, "rate-limited dispatch must not reach the endpoint")
	assert.Zero(t, store.auditCount(), "rate-limited skip leaves no audit row")
}

func TestExecuteBreakerDeactivatesBeforeSending(t *testing.T) {
	store := newFakeStore()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	store.failures[sub.ID] = core.BreakerFailureThreshold
	ids := seedEvents(store, 1)
	d := testDispatcher(t, store)

	retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
	require.Nil(t, retry)
	assert.False(t, called)
	assert.False(t, store.subs[sub.ID].Active, "breaker must deactivate the subscription")
	assert.Zero(t, store.auditCount())
}

func TestExecuteBreakerTripsAfterTerminalFailure(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	store.failures[sub.ID] = core.BreakerFailureThreshold - 1
	ids := seedEvents(store, 1)
	d := testDispatcher(t, store)

	retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
	require.Nil(t, retry)
	assert.Equal(t, 1, store.auditCount())
	assert.False(t, store.subs[sub.ID].Active,
		"fifth failure within the window must trip the breaker")
}

func TestExecuteInactiveSubscriptionAborts(t *testing.T) {
	store := newFakeStore()
	sub := seedSub(store, "https://hooks.slack.com/services/T0/B0/x")
	sub.Active = false
	store.subs[sub.ID] = sub
	ids := seedEvents(store, 1)
	d := testDispatcher(t, store)

	retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
	require.Nil(t, retry)
	assert.Zero(t, store.auditCount())
}

func TestExecuteTestModeRecordsSuccessWithoutSending(t *testing.T) {
	store := newFakeStore()
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	sub.TestMode = true
	store.subs[sub.ID] = sub
	ids := seedEvents(store, 2)
	d := testDispatcher(t, store)

	retry, _ := d.Execute(context.Background(), Job{SubscriptionID: sub.ID, RecordIDs: ids})
	require.Nil(t, retry)
	assert.False(t, called)
	a := store.lastAudit(t)
	assert.True(t, a.Success)
	assert.Equal(t, http.StatusOK, a.ResponseCode)
	assert.Equal(t, []string{sub.ID}, store.touched)
}

func TestExecuteTimeoutRetriesExponentially(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	sub := seedSub(store, srv.URL)
	ids := seedEvents(store, 1)
	d := testDispatcher(t, store)
	d.client = &http.Client{Timeout: 20 * time.Millisecond}

	job := Job{SubscriptionID: sub.ID, RecordIDs: ids}
	retry, delay := d.Execute(context.Background(), job)
	require.NotNil(t, retry)
	assert.Equal(t, 1, retry.TimeoutAttempts)
	assert.Equal(t, 2*time.Second, delay)

	retry, delay = d.Execute(context.Background(), *retry)
	require.NotNil(t, retry)
	assert.Equal(t, 2, retry.TimeoutAttempts)
	assert.Equal(t, 4*time.Second, delay)

	retry, delay = d.Execute(context.Background(), *retry)
	require.NotNil(t, retry)
	assert.Equal(t, 3, retry.TimeoutAttempts)
	assert.Equal(t, 8*time.Second, delay)

	retry, _ = d.Execute(context.Background(), *retry)
	require.Nil(t, retry)
	a := store.lastAudit(t)
	assert.False(t, a.Success)
	assert.Equal(t, "request timeout", a.ErrorMessage)
}

func TestDispatchGroupsByTriggerKey(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	seedSub(store, srv.URL)
	other := core.Subscription{
		ID:          "sub-2",
		Name:        "plumbing scheduled",
		EndpointURL: srv.URL,
		Process:     "plumbing",
		Status:      "scheduled",
		Active:      true,
	}
	store.subs[other.ID] = other

	d := testDispatcher(t, store)
	records := []core.Event{
		{ID: 1, JobID: 101, Process: "framing", Status: "report"},
		{ID: 2, JobID: 102, Process: "framing", Status: "report"},
		{ID: 3, JobID: 103, Process: "plumbing", Status: "scheduled"},
		{ID: 4, JobID: 104, Process: "Framing", Status: "report"}, // case differs, no match
		{ID: 5, JobID: 105, Process: "", Status: "report"},
	}
	for _, e := range records {
		store.events[e.ID] = e
	}
	d.Dispatch(context.Background(), records)

	var jobs []Job
drain:
	for {
		select {
		case job := <-d.queue.jobs:
			jobs = append(jobs, job)
		default:
			break drain
		}
	}
	require.Len(t, jobs, 2)

	byID := make(map[string]Job, len(jobs))
	for _, j := range jobs {
		byID[j.SubscriptionID] = j
	}
	assert.Equal(t, []int64{1, 2}, byID["sub-1"].RecordIDs)
	assert.Equal(t, []int64{3}, byID["sub-2"].RecordIDs)
}
