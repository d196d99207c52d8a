package worker

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"path"

	"github.com/dunamismax/avatarforge/internal/config"
	"github.com/dunamismax/avatarforge/internal/cutout"
	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/dunamismax/avatarforge/internal/pipeline"
	"github.com/dunamismax/avatarforge/internal/queue"
	"github.com/dunamismax/avatarforge/internal/store"
	"github.com/dunamismax/avatarforge/internal/telemetry"
	"github.com/hibiken/asynq"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type Server struct {
	logger    *log.Logger
	server    *asynq.Server
	sem       chan struct{}
	workerCfg config.WorkerConfig
	storage   pipeline.ObjectStorage
	cache     pipeline.DigestCache
	outcomes  store.OutcomeStore
	metrics   *metrics
	tracer    trace.Tracer
}

// NewServer builds the asynq worker. storage may be nil when only local_file
// tasks are expected; outcomes and cache are optional.
func NewServer(
	logger *log.Logger,
	queueCfg config.QueueConfig,
	workerCfg config.WorkerConfig,
	storage pipeline.ObjectStorage,
	outcomes store.OutcomeStore,
	cache pipeline.DigestCache,
) *Server {
	return &Server{
		logger: logger,
		server: asynq.NewServer(
			queueCfg.RedisClientOpt(),
			asynq.Config{
				Concurrency: workerCfg.Concurrency,
				Queues: map[string]int{
					queueCfg.Name: 1,
				},
				LogLevel: asynq.InfoLevel,
				ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
					retried, _ := asynq.GetRetryCount(ctx)
					maxRetry, _ := asynq.GetMaxRetry(ctx)
					logger.Printf("task failed type=%s retry=%d/%d err=%v", task.Type(), retried, maxRetry, err)
				}),
			},
		),
		sem:       make(chan struct{}, max(1, workerCfg.MaxActiveJobs)),
		workerCfg: workerCfg,
		storage:   storage,
		cache:     cache,
		outcomes:  outcomes,
		metrics:   newMetrics(),
		tracer:    telemetry.Tracer(),
	}
}

func (s *Server) Run() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.TypeProcessLogo, s.handleProcessLogo)
	return s.server.Run(mux)
}

func (s *Server) Shutdown() {
	s.server.Shutdown()
}

// Handler serves /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

func (s *Server) handleProcessLogo(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.ParseProcessLogoPayload(task)
	if err != nil {
		return fmt.Errorf("parse payload: %v: %w", err, asynq.SkipRetry)
	}

	ctx, span := s.tracer.Start(ctx, "worker.process_logo", trace.WithSpanKind(trace.SpanKindConsumer))
	span.SetAttributes(telemetry.TaskAttributes(payload.RunID, payload.Name, payload.OutputName)...)
	span.SetAttributes(
		attribute.String("avatarforge.source_type", payload.SourceType),
		attribute.String("avatarforge.format", payload.Format),
	)
	defer span.End()

	s.sem <- struct{}{}
	s.metrics.activeTasks.Inc()
	defer func() {
		<-s.sem
		s.metrics.activeTasks.Dec()
	}()

	s.logger.Printf("Working... run_id=%s name=%s source_type=%s object_key=%s", payload.RunID, payload.Name, payload.SourceType, payload.ObjectKey)

	out := s.process(ctx, payload)
	span.SetAttributes(attribute.String("avatarforge.shape", out.Shape), attribute.String("avatarforge.stage", string(out.Stage)))

	retryable := out.Kind == domain.ErrorKindIO && !finalAttempt(ctx)
	if !retryable {
		s.record(ctx, payload.RunID, out)
	}
	s.observe(out)

	if !out.Failed() {
		s.logger.Printf("Processed run_id=%s name=%s status=%s shape=%s output=%s", payload.RunID, payload.Name, out.Status(), out.Shape, out.OutputPath)
		span.SetStatus(codes.Ok, out.Status())
		return nil
	}

	span.SetStatus(codes.Error, string(out.Kind))
	if retryable {
		return fmt.Errorf("process %s: %s", payload.Name, out.Message)
	}
	return fmt.Errorf("process %s: %s: %w", payload.Name, out.Message, asynq.SkipRetry)
}

func (s *Server) process(ctx context.Context, payload queue.ProcessLogoPayload) domain.Outcome {
	task := payload.Task()
	transformer := s.transformerFor(payload)

	var (
		processor *pipeline.Processor
		err       error
	)
	switch payload.SourceType {
	case domain.SourceTypeLocalFile:
		processor, err = pipeline.NewLocalProcessor(s.workerCfg.LocalOutputDir, transformer)
	default:
		processor, err = pipeline.NewProcessor(
			pipeline.ObjectStoreFetcher{Storage: s.storage},
			transformer,
			pipeline.ObjectStoreEmitter{Storage: s.storage, OutputPrefix: path.Join(s.workerCfg.OutputPrefix, payload.RunID)},
		)
	}
	if err != nil {
		return domain.Failure(task, domain.StageNone, domain.ErrorKindIO, err.Error())
	}
	if s.cache != nil {
		processor.WithCache(s.cache)
	}
	return processor.Process(ctx, task)
}

func (s *Server) transformerFor(payload queue.ProcessLogoPayload) pipeline.CutoutTransformer {
	threshold := payload.WhiteThreshold
	if threshold == 0 {
		threshold = s.workerCfg.WhiteThreshold
	}
	return pipeline.CutoutTransformer{
		Format:  payload.Format,
		Quality: payload.Quality,
		Size:    payload.Size,
		Options: cutout.Options{WhiteThreshold: uint8(min(max(threshold, 0), 255))},
	}
}

func (s *Server) record(ctx context.Context, runID string, out domain.Outcome) {
	if s.outcomes == nil {
		return
	}
	if err := s.outcomes.Record(ctx, runID, out); err != nil {
		s.logger.Printf("outcome write failed run_id=%s name=%s err=%v", runID, out.Task.Name, err)
	}
}

func (s *Server) observe(out domain.Outcome) {
	shape := out.Shape
	if shape == "" {
		shape = "unknown"
	}
	s.metrics.tasksTotal.WithLabelValues(shape, out.Status()).Inc()
	s.metrics.taskDuration.WithLabelValues(out.Status()).Observe(out.Duration.Seconds())
	if !out.Failed() && !out.Skipped {
		s.metrics.pixelsProcessedTotal.Add(float64(out.Pixels))
		s.metrics.outputBytesTotal.Add(float64(out.Bytes))
	}
}

// finalAttempt reports whether asynq will not retry the task again. Outside
// an asynq handler every attempt is final.
func finalAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return true
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	if !ok {
		return true
	}
	return retried >= maxRetry
}
