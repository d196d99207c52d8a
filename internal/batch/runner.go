// Package batch enumerates input directories and runs every file through a
// processor on a bounded work queue.
package batch

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dunamismax/avatarforge/internal/cutout"
	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/store"
	"github.com/dunamismax/avatarforge/internal/telemetry"
	"github.com/dunamismax/avatarforge/internal/workqueue"
)

type TaskProcessor interface {
	Process(ctx context.Context, task domain.Task) domain.Outcome
}

// ProgressUpdate is sent once per finished task.
type ProgressUpdate struct {
	Done    int
	Total   int
	Outcome domain.Outcome
}

type Report struct {
	RunID     string
	Outcomes  []domain.Outcome
	Succeeded int
	Failed    int
	Skipped   int
	Circular  int
	Duration  time.Duration
}

type Runner struct {
	Processor   TaskProcessor
	Concurrency int
	RunID       string
	// Store, when set, receives every outcome under RunID.
	Store  store.OutcomeStore
	Logger *log.Logger
	// Updates must be drained by the caller while Run is in progress.
	Updates chan<- ProgressUpdate
}

// Run processes every task and waits for all of them. Individual task
// failures are reported in the outcomes and never returned as an error.
func (r *Runner) Run(ctx context.Context, tasks []domain.Task) (Report, error) {
	if r.Processor == nil {
		return Report{}, fmt.Errorf("processor is required")
	}
	logger := r.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	startedAt := time.Now()
	report := Report{RunID: r.RunID, Outcomes: make([]domain.Outcome, len(tasks))}
	queue := workqueue.New(r.Concurrency, logger)
	total := len(tasks)
	var done atomic.Int64

	for i, task := range tasks {
		if err := queue.Submit(func(ctx context.Context) {
			out := r.processOne(ctx, task, i, total)
			report.Outcomes[i] = out

			finished := int(done.Add(1))
			if out.Failed() {
				logger.Printf("task failed name=%s kind=%s stage=%s err=%s", task.Name, out.Kind, out.Stage, out.Message)
			} else {
				logger.Printf("task done name=%s status=%s shape=%s progress=%d/%d", task.Name, out.Status(), out.Shape, finished, total)
			}
			if r.Store != nil {
				if err := r.Store.Record(ctx, r.RunID, out); err != nil {
					logger.Printf("record outcome failed name=%s err=%v", task.Name, err)
				}
			}
			if r.Updates != nil {
				r.Updates <- ProgressUpdate{Done: finished, Total: total, Outcome: out}
			}
		}); err != nil {
			return report, fmt.Errorf("submit task %s: %w", task.Name, err)
		}
	}

	logger.Printf("batch started run_id=%s tasks=%d concurrency=%d", r.RunID, total, queue.Concurrency())
	if err := queue.Start(ctx); err != nil {
		return report, fmt.Errorf("start work queue: %w", err)
	}
	queue.AwaitIdle()

	for _, out := range report.Outcomes {
		switch out.Status() {
		case domain.StatusFailed:
			report.Failed++
		case domain.StatusSkipped:
			report.Skipped++
		default:
			report.Succeeded++
		}
		if out.Shape == cutout.ShapeCircular.String() {
			report.Circular++
		}
	}
	report.Duration = time.Since(startedAt)
	logger.Printf("batch finished run_id=%s succeeded=%d failed=%d skipped=%d duration=%s", r.RunID, report.Succeeded, report.Failed, report.Skipped, report.Duration)
	return report, nil
}

func (r *Runner) processOne(ctx context.Context, task domain.Task, index, total int) (out domain.Outcome) {
	ctx, span := telemetry.Tracer().Start(ctx, "batch.process_logo", trace.WithAttributes(telemetry.TaskAttributes(r.RunID, task.Name, task.OutputName)...))
	defer span.End()

	// Keep a Failure in the slot even if Process panics.
	defer func() {
		if rec := recover(); rec != nil {
			out = domain.Failure(task, domain.StageFailed, domain.ErrorKindPanic, fmt.Sprint(rec))
		}
		if out.Failed() {
			span.SetStatus(codes.Error, out.Message)
		}
	}()

	span.AddEvent("started", trace.WithAttributes(telemetry.ProgressAttributes(index, total)...))
	return r.Processor.Process(ctx, task)
}
