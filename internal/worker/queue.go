package worker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Job is a unit of background work. Run is retried per the queue's policy;
// a job that keeps failing is dropped after the last attempt.
type Job struct {
	ID   string
	Kind string
	Run  func(ctx context.Context) error
}

// Queue is an in-process job queue backing the fire-and-forget work the
// chat core schedules (summarization, knowledge extraction, insights).
// Jobs are best-effort: there is no durability across process restarts.
type Queue struct {
	jobs        chan Job
	workers     int
	maxAttempts int
	backoff     time.Duration
	logger      *logrus.Logger

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewQueue creates a queue with the given worker count and buffer size.
func NewQueue(workers, buffer, maxAttempts int, backoff time.Duration, logger *logrus.Logger) *Queue {
	if workers < 1 {
		workers = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Queue{
		jobs:        make(chan Job, buffer),
		workers:     workers,
		maxAttempts: maxAttempts,
		backoff:     backoff,
		logger:      logger,
	}
}

// Start launches the worker goroutines
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.started = true

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx)
	}
}

// Enqueue submits a job without blocking. It returns false when the queue
// is full or stopped; callers treat that as a skipped best-effort task.
// The send happens under the mutex so it can never race Stop's close.
func (q *Queue) Enqueue(job Job) bool {
	if job.ID == "" {
		job.ID = uuid.New().String()
	}

	q.mu.Lock()
	if q.stopped {
		q.mu.Unlock()
		return false
	}

	select {
	case q.jobs <- job:
		q.mu.Unlock()
		return true
	default:
		q.mu.Unlock()
		q.logger.WithFields(logrus.Fields{
			"job_kind": job.Kind,
		}).Warn("job queue full, dropping job")
		return false
	}
}

// Stop prevents new jobs, drains queued ones and waits for workers to exit
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started || q.stopped {
		q.mu.Unlock()
		return
	}
	q.stopped = true
	close(q.jobs)
	q.mu.Unlock()

	q.wg.Wait()
	q.cancel()
}

func (q *Queue) worker(ctx context.Context) {
	defer q.wg.Done()

	for job := range q.jobs {
		q.run(ctx, job)
	}
}

func (q *Queue) run(ctx context.Context, job Job) {
	var err error
	for attempt := 1; attempt <= q.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return
		}

		err = job.Run(ctx)
		if err == nil {
			return
		}

		q.logger.WithFields(logrus.Fields{
			"job_id":   job.ID,
			"job_kind": job.Kind,
			"attempt":  attempt,
		}).WithError(err).Warn("background job failed")

		if attempt < q.maxAttempts {
			select {
			case <-time.After(time.Duration(attempt) * q.backoff):
			case <-ctx.Done():
				return
			}
		}
	}

	q.logger.WithFields(logrus.Fields{
		"job_id":   job.ID,
		"job_kind": job.Kind,
	}).WithError(err).Error("background job dropped after max attempts")
}
