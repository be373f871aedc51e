package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"study-set-server/internal/domain"
	"study-set-server/pkg/observability"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const defaultCleanupTaskTimeout = 30 * time.Second

// CleanupTask is a best-effort background job. Its error is counted and logged, never returned.
type CleanupTask struct {
	Name string
	Run  func(ctx context.Context) error
}

// CleanupStats is a snapshot of the queue counters
type CleanupStats struct {
	Enqueued  int64 `json:"enqueued"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Dropped   int64 `json:"dropped"`
	Pending   int   `json:"pending"`
}

// CleanupQueue runs fire-and-forget cleanup work on a fixed set of workers
type CleanupQueue struct {
	tasks       chan CleanupTask
	workers     int
	taskTimeout time.Duration
	logger      domain.Logger

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup

	enqueued  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64

	outcomes metric.Int64Counter
}

// NewCleanupQueue creates a queue; call Start before enqueuing
func NewCleanupQueue(workers, size int, logger domain.Logger) *CleanupQueue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}

	q := &CleanupQueue{
		tasks:       make(chan CleanupTask, size),
		workers:     workers,
		taskTimeout: defaultCleanupTaskTimeout,
		logger:      logger,
	}

	counter, err := observability.Meter().Int64Counter(
		"cleanup.tasks",
		metric.WithDescription("Background cleanup tasks by outcome"),
	)
	if err != nil {
		logger.Warn("Failed to create cleanup counter", "error", err)
	}
	q.outcomes = counter
	return q
}

// Start launches the workers. Calling it more than once is a no-op.
func (q *CleanupQueue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started || q.closed {
		return
	}
	q.started = true

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	q.logger.Info("Cleanup queue started", "workers", q.workers, "capacity", cap(q.tasks))
}

// Enqueue hands a task to the workers without blocking.
// It returns false when the queue is full or shut down; the task is then dropped.
func (q *CleanupQueue) Enqueue(task CleanupTask) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		q.drop(task, "closed")
		return false
	}

	select {
	case q.tasks <- task:
		q.enqueued.Add(1)
		return true
	default:
		q.drop(task, "full")
		return false
	}
}

// Shutdown stops accepting tasks and waits for the backlog to drain or ctx to expire.
func (q *CleanupQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.tasks)
	started := q.started
	q.mu.Unlock()

	if !started {
		return nil
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("Cleanup queue drained", "succeeded", q.succeeded.Load(), "failed", q.failed.Load())
		return nil
	case <-ctx.Done():
		q.logger.Warn("Cleanup queue shutdown timed out", "pending", len(q.tasks))
		return ctx.Err()
	}
}

// Stats returns the current counters
func (q *CleanupQueue) Stats() CleanupStats {
	return CleanupStats{
		Enqueued:  q.enqueued.Load(),
		Succeeded: q.succeeded.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
		Pending:   len(q.tasks),
	}
}

func (q *CleanupQueue) worker(id int) {
	defer q.wg.Done()
	for task := range q.tasks {
		q.run(id, task)
	}
}

func (q *CleanupQueue) run(workerID int, task CleanupTask) {
	ctx, cancel := context.WithTimeout(context.Background(), q.taskTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &panicError{value: r}
			}
		}()
		return task.Run(ctx)
	}()

	if err != nil {
		q.failed.Add(1)
		q.record(task, "failed")
		q.logger.Warn("Cleanup task failed", "task", task.Name, "worker", workerID, "error", err)
		return
	}
	q.succeeded.Add(1)
	q.record(task, "succeeded")
	q.logger.Debug("Cleanup task completed", "task", task.Name, "worker", workerID)
}

func (q *CleanupQueue) drop(task CleanupTask, reason string) {
	q.dropped.Add(1)
	q.record(task, "dropped")
	q.logger.Warn("Cleanup task dropped", "task", task.Name, "reason", reason)
}

func (q *CleanupQueue) record(task CleanupTask, outcome string) {
	if q.outcomes == nil {
		return
	}
	q.outcomes.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("task", task.Name),
		attribute.String("outcome", outcome),
	))
}

type panicError struct {
	value interface{}
}

func (e *panicError) Error() string {
	return "cleanup task panicked: " + formatPanic(e.value)
}

func formatPanic(v interface{}) string {
	switch t := v.(type) {
	case error:
		return t.Error()
	case string:
		return t
	default:
		return "unknown panic"
	}
}
