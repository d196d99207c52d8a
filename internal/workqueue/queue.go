// Package workqueue runs a fixed set of submitted tasks on a bounded number
// of goroutines.
package workqueue

import (
	"context"
	"errors"
	"io"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

var ErrStarted = errors.New("work queue already started")

// Task is one unit of work. It receives the context passed to Start.
type Task func(ctx context.Context)

// Queue collects every task first and drains them once Start is called.
// It is single use: tasks cannot be added after Start.
type Queue struct {
	concurrency int
	logger      *log.Logger

	mu      sync.Mutex
	tasks   []Task
	started bool

	pending atomic.Int64
	active  atomic.Int64
	wg      sync.WaitGroup
}

// New creates a queue. A concurrency of zero or less means one worker per CPU.
func New(concurrency int, logger *log.Logger) *Queue {
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Queue{concurrency: concurrency, logger: logger}
}

func (q *Queue) Concurrency() int {
	return q.concurrency
}

func (q *Queue) Submit(task Task) error {
	if task == nil {
		return errors.New("task is required")
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return ErrStarted
	}
	q.tasks = append(q.tasks, task)
	q.pending.Add(1)
	return nil
}

// Start launches the workers and returns immediately. Tasks already running
// are not interrupted when ctx is cancelled; ctx is only handed to them.
func (q *Queue) Start(ctx context.Context) error {
	q.mu.Lock()
	if q.started {
		q.mu.Unlock()
		return ErrStarted
	}
	q.started = true
	tasks := q.tasks
	q.tasks = nil
	q.mu.Unlock()

	feed := make(chan Task, len(tasks))
	for _, task := range tasks {
		feed <- task
	}
	close(feed)

	workers := q.concurrency
	if workers > len(tasks) {
		workers = len(tasks)
	}

	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer q.wg.Done()
			for task := range feed {
				q.pending.Add(-1)
				q.run(ctx, task)
			}
		}()
	}
	return nil
}

func (q *Queue) run(ctx context.Context, task Task) {
	q.active.Add(1)
	defer q.active.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			q.logger.Printf("task panicked err=%v\n%s", r, debug.Stack())
		}
	}()
	task(ctx)
}

// AwaitIdle blocks until every submitted task has finished. It returns
// immediately when the queue was never started.
func (q *Queue) AwaitIdle() {
	q.wg.Wait()
}

// Pending is the number of submitted tasks that have not begun running.
func (q *Queue) Pending() int {
	return int(q.pending.Load())
}

// Active is the number of tasks currently running.
func (q *Queue) Active() int {
	return int(q.active.Load())
}
