// Package service provides the core business service that implements
// the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/okian/workpulse/internal/adapters/mq/queue"
	"github.com/okian/workpulse/internal/adapters/mq/worker"
	"github.com/okian/workpulse/internal/adapters/repository"
	"github.com/okian/workpulse/internal/domain/analysis"
	"github.com/okian/workpulse/internal/domain/correlation"
	"github.com/okian/workpulse/internal/domain/dedupe"
	"github.com/okian/workpulse/internal/domain/model"
	"github.com/okian/workpulse/internal/domain/report"
	"github.com/okian/workpulse/pkg/logger"
	"github.com/okian/workpulse/pkg/metrics"
)

const stopTimeout = 30 * time.Second

// Submission is one activity export and survey pair.
type Submission struct {
	Activity  []byte
	Survey    []byte
	Delimiter rune
	Standard  model.StandardApps
}

// Ack acknowledges a submission.
type Ack struct {
	ID        string       `json:"id"`
	Status    model.Status `json:"status"`
	Duplicate bool         `json:"duplicate"`
}

// Service runs analyses asynchronously and keeps their results.
type Service struct {
	mu sync.RWMutex

	store    *repository.LRUStore
	deduper  dedupe.Deduper
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	pipeline *analysis.Pipeline

	workerCount    int
	queueSize      int
	dedupeSize     int
	resultCapacity int
	threshold      float64
	delimiter      rune
	standard       model.StandardApps

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:    runtime.NumCPU(),
		queueSize:      256,
		dedupeSize:     1024,
		resultCapacity: 512,
		threshold:      correlation.DefaultThreshold,
		delimiter:      ',',
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.standard = report.WithDefaults(s.standard)
	s.pipeline = analysis.NewPipeline(
		analysis.WithLogger(s.logger.Named("pipeline")),
		analysis.WithCorrelationOptions(correlation.WithThreshold(s.threshold)),
	)
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting analysis service...")

	s.store = repository.NewLRUStore(ctx, repository.WithCapacity(s.resultCapacity))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.ProcessorFunc(s.Process))
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "analysis service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("resultCapacity", s.resultCapacity),
	)
	return nil
}

// Stop drains queued analyses, waiting up to 30s, then shuts down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()

	s.logger.Info(ctx, "stopping analysis service...")
	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "analysis service stopped")
}

// Fingerprint identifies a submission by content. Identical uploads with
// the same delimiter and standard apps share a fingerprint.
func Fingerprint(sub Submission) string {
	d := xxhash.New()
	for _, part := range [][]byte{
		sub.Activity,
		sub.Survey,
		[]byte(string(sub.Delimiter)),
		[]byte(sub.Standard.Browser),
		[]byte(sub.Standard.PDFTool),
	} {
		_, _ = d.Write(part)
		_, _ = d.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// resolve fills submission defaults.
func (s *Service) resolve(sub Submission) Submission {
	if sub.Delimiter == 0 {
		sub.Delimiter = s.delimiter
	}
	if sub.Standard.Browser == "" {
		sub.Standard.Browser = s.standard.Browser
	}
	if sub.Standard.PDFTool == "" {
		sub.Standard.PDFTool = s.standard.PDFTool
	}
	return sub
}

// Submit queues an analysis. Resubmitting identical input returns the
// existing analysis with Duplicate set. A full queue yields ErrBackpressure.
func (s *Service) Submit(ctx context.Context, sub Submission) (Ack, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return Ack{}, ErrNotStarted
	}
	if len(sub.Activity) == 0 || len(sub.Survey) == 0 {
		return Ack{}, ErrEmptyUpload
	}

	sub = s.resolve(sub)
	fp := Fingerprint(sub)
	id := uuid.NewString()

	existing, seen := s.deduper.SeenAndRecord(ctx, fp, id)
	if seen {
		if a, err := s.store.Get(ctx, existing); err == nil {
			metrics.RecordAnalysisDuplicate()
			s.logger.Debug(ctx, "duplicate submission", logger.String("id", a.ID), logger.String("fingerprint", fp))
			return Ack{ID: a.ID, Status: a.Status, Duplicate: true}, nil
		}
		// The analysis was evicted; bind the fingerprint to a fresh run.
		s.deduper.Unrecord(ctx, fp)
		s.deduper.SeenAndRecord(ctx, fp, id)
	}

	a := &model.Analysis{
		ID:          id,
		Fingerprint: fp,
		Status:      model.StatusPending,
		CreatedAt:   time.Now().UTC(),
		Standard:    sub.Standard,
	}
	if err := s.store.Save(ctx, a); err != nil {
		s.deduper.Unrecord(ctx, fp)
		return Ack{}, err
	}

	job := queue.Job{
		AnalysisID: id,
		Input: analysis.Input{
			Activity:  sub.Activity,
			Survey:    sub.Survey,
			Delimiter: sub.Delimiter,
			Standard:  sub.Standard,
		},
	}
	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, fp)
		cause := queue.ErrFull
		if s.queue.IsClosed() {
			cause = queue.ErrClosed
		}
		failed := *a
		failed.Status = model.StatusFailed
		failed.Error = ErrBackpressure.Error()
		failed.FinishedAt = time.Now().UTC()
		_ = s.store.Save(ctx, &failed)
		metrics.RecordAnalysisFailed("backpressure")
		return Ack{}, fmt.Errorf("%w: %w", ErrBackpressure, cause)
	}

	metrics.RecordAnalysisSubmitted()
	s.logger.Info(ctx, "analysis submitted",
		logger.String("id", id),
		logger.Int("activity_bytes", len(sub.Activity)),
		logger.Int("survey_bytes", len(sub.Survey)),
	)
	return Ack{ID: id, Status: model.StatusPending}, nil
}

// Process runs a queued job and stores its result. Input errors are
// recorded on the analysis and not returned.
func (s *Service) Process(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	base, err := s.store.Get(ctx, job.AnalysisID)
	if err != nil {
		base = &model.Analysis{ID: job.AnalysisID, CreatedAt: time.Now().UTC()}
	}

	running := *base
	running.Status = model.StatusRunning
	_ = s.store.Save(ctx, &running)

	result := &model.Analysis{
		ID:          base.ID,
		Fingerprint: base.Fingerprint,
		CreatedAt:   base.CreatedAt,
	}
	runErr := s.run(ctx, job.Input, result)
	if err := s.store.Save(ctx, result); err != nil {
		return err
	}
	if runErr != nil && !analysis.IsInputError(runErr) {
		return runErr
	}
	return nil
}

// Analyze runs a submission synchronously without queueing or storing it.
// The returned analysis is non-nil and carries the failure on error.
func (s *Service) Analyze(ctx context.Context, sub Submission) (*model.Analysis, error) {
	sub = s.resolve(sub)
	a := &model.Analysis{
		ID:          uuid.NewString(),
		Fingerprint: Fingerprint(sub),
		CreatedAt:   time.Now().UTC(),
	}
	err := s.run(ctx, analysis.Input{
		Activity:  sub.Activity,
		Survey:    sub.Survey,
		Delimiter: sub.Delimiter,
		Standard:  sub.Standard,
	}, a)
	return a, err
}

func (s *Service) run(ctx context.Context, in analysis.Input, a *model.Analysis) error {
	start := time.Now()
	a.Status = model.StatusRunning
	err := s.pipeline.Run(ctx, in, a)
	a.FinishedAt = time.Now().UTC()
	if err != nil {
		a.Status = model.StatusFailed
		a.Error = err.Error()
		metrics.RecordAnalysisFailed(analysis.FailureReason(err))
		s.logger.Warn(ctx, "analysis failed", logger.String("id", a.ID), logger.Error(err))
		return err
	}
	a.Status = model.StatusDone
	metrics.RecordAnalysisCompleted(float64(time.Since(start).Milliseconds()))
	return nil
}

// Get returns the analysis with id.
func (s *Service) Get(ctx context.Context, id string) (*model.Analysis, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	a, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return a, err
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"dedupeSize":     s.dedupeSize,
		"resultCapacity": s.resultCapacity,
	}

	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["fingerprints"] = s.deduper.Size()

		stored := s.store.Count(ctx)
		stats["analyses"] = stored
		byStatus := map[model.Status]int{}
		if stored > 0 {
			all, _ := s.store.List(ctx, stored)
			for _, a := range all {
				byStatus[a.Status]++
			}
		}
		stats["byStatus"] = byStatus
		metrics.UpdateAnalysesStored(stored)
	}

	return stats
}
