package notify

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/evandro-macedo/interactive-dashboard/internal/core"
	"github.com/evandro-macedo/interactive-dashboard/internal/observability"
)

// BackoffKind shapes the delay between retries.
type BackoffKind int

const (
	BackoffFixed BackoffKind = iota
	BackoffExponential
)

// RetryPolicy is data, not control flow: each failure class carries its
// own attempt budget and backoff shape.
type RetryPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Kind        BackoffKind
}

// Delay returns the wait before the given retry attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if p.Kind == BackoffExponential {
		return p.Base << (attempt - 1)
	}
	return p.Base
}

// Job is one pending dispatch: a subscription and the new records that
// matched its trigger key. Attempt counters are kept per failure class.
type Job struct {
	SubscriptionID  string
	Key             core.TriggerKey
	RecordIDs       []int64
	TimeoutAttempts int
	RetryAttempts   int
}

// Executor runs one job. A non-nil retry return reschedules the job
// after the given delay; terminal outcomes are recorded by the executor
// itself.
type Executor interface {
	Execute(ctx context.Context, job Job) (retry *Job, delay time.Duration)
}

// Queue is an in-process worker pool for dispatch jobs, decoupled from
// the replication transaction and from each other. Ordering across jobs
// is not guaranteed.
type Queue struct {
	jobs chan Job
	exec Executor
	log  *zap.Logger
	wg   sync.WaitGroup
}

func NewQueue(size int, exec Executor, log *zap.Logger) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		jobs: make(chan Job, size),
		exec: exec,
		log:  log,
	}
}

// Submit enqueues a job. When the queue is full the job is dropped with
// a log line; sync success never depends on dispatch.
func (q *Queue) Submit(job Job) {
	select {
	case q.jobs <- job:
		observability.DispatchQueueDepth.Set(float64(len(q.jobs)))
	default:
		q.log.Warn("dispatch queue full, dropping job",
			zap.String("subscription_id", job.SubscriptionID),
			zap.Int("records", len(job.RecordIDs)))
		observability.DispatchDroppedTotal.Inc()
	}
}

// Start launches the worker pool. Workers drain until ctx is canceled.
func (q *Queue) Start(ctx context.Context, workers int) {
	if workers <= 0 {
		workers = 4
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.run(ctx)
	}
}

// Wait blocks until all workers have stopped.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) run(ctx context.Context) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			observability.DispatchQueueDepth.Set(float64(len(q.jobs)))
			retry, delay := q.exec.Execute(ctx, job)
			if retry != nil {
				q.schedule(ctx, *retry, delay)
			}
		}
	}
}

// schedule re-submits a job after the backoff delay, abandoning it when
// the context ends first.
func (q *Queue) schedule(ctx context.Context, job Job, delay time.Duration) {
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		select {
		case <-ctx.Done():
		case <-time.After(delay):
			q.Submit(job)
		}
	}()
}
