package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/talent-matcher/internal/logging"
	"github.com/jonathan/talent-matcher/internal/metrics"
	"github.com/jonathan/talent-matcher/internal/types"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Store is the persistence the worker reads entities from and writes status to.
// Get methods return nil, nil for unknown IDs.
type Store interface {
	GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error)
	GetJob(ctx context.Context, id uuid.UUID) (*types.Job, error)
	UpdateEmbedding(ctx context.Context, target types.EmbeddingTarget, update types.EmbeddingUpdate) error
}

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	// Concurrency bounds in-flight embedding calls. Defaults to 4.
	Concurrency int
	// MaxInputChars truncates prepared text to the provider input limit.
	MaxInputChars int
}

// ErrNotFound is returned when the target entity does not exist.
var ErrNotFound = errors.New("embedding target not found")

// Worker generates embeddings off the request path. Each submitted target moves
// pending -> processing -> ready or failed. Failures are isolated per target.
type Worker struct {
	provider Provider
	store    Store
	opts     WorkerOptions
	sem      *semaphore.Weighted
	log      *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker creates a worker. Call Close to stop it.
func NewWorker(provider Provider, store Store, opts WorkerOptions, log *zap.Logger) *Worker {
	if opts.Concurrency < 1 {
		opts.Concurrency = 4
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		provider: provider,
		store:    store,
		opts:     opts,
		sem:      semaphore.NewWeighted(int64(opts.Concurrency)),
		log:      logging.OrNop(log).Named("embedding"),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Submit marks target pending and schedules generation. It returns once the
// pending status is stored.
func (w *Worker) Submit(ctx context.Context, target types.EmbeddingTarget) error {
	if err := w.ctx.Err(); err != nil {
		return fmt.Errorf("embedding worker is closed: %w", err)
	}
	if err := w.store.UpdateEmbedding(ctx, target, types.EmbeddingUpdate{Status: types.EmbeddingPending}); err != nil {
		return fmt.Errorf("failed to mark embedding pending: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.sem.Acquire(w.ctx, 1); err != nil {
			return
		}
		defer w.sem.Release(1)
		_ = w.Generate(w.ctx, target)
	}()
	return nil
}

// SubmitAll submits every target and reports how many were scheduled. A
// failure to schedule one target does not stop the others.
func (w *Worker) SubmitAll(ctx context.Context, targets []types.EmbeddingTarget) (int, error) {
	var errs []error
	submitted := 0
	for _, t := range targets {
		if err := w.Submit(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", t.Kind, t.ID, err))
			continue
		}
		submitted++
	}
	return submitted, errors.Join(errs...)
}

// Generate runs one embedding synchronously and records the outcome.
func (w *Worker) Generate(ctx context.Context, target types.EmbeddingTarget) error {
	log := w.log.With(zap.String("kind", string(target.Kind)), zap.String("id", target.ID.String()))
	metrics.EmbeddingJobsActive.Inc()
	defer metrics.EmbeddingJobsActive.Dec()
	start := time.Now()

	if err := w.store.UpdateEmbedding(ctx, target, types.EmbeddingUpdate{Status: types.EmbeddingProcessing}); err != nil {
		log.Error("failed to mark embedding processing", zap.Error(err))
		return err
	}

	vec, err := w.embed(ctx, target)
	metrics.EmbeddingDuration.WithLabelValues(string(target.Kind)).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EmbeddingJobs.WithLabelValues(string(target.Kind), string(types.EmbeddingFailed)).Inc()
		log.Warn("embedding generation failed", zap.Error(err))
		if errors.Is(err, ErrNotFound) {
			return err
		}
		// Record the failure even when ctx was canceled mid-call.
		writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		update := types.EmbeddingUpdate{Status: types.EmbeddingFailed, Error: err.Error()}
		if uerr := w.store.UpdateEmbedding(writeCtx, target, update); uerr != nil {
			log.Error("failed to record embedding failure", zap.Error(uerr))
		}
		return err
	}

	update := types.EmbeddingUpdate{Status: types.EmbeddingReady, Vector: vec, Model: w.provider.Model()}
	if err := w.store.UpdateEmbedding(ctx, target, update); err != nil {
		log.Error("failed to store embedding", zap.Error(err))
		return err
	}
	metrics.EmbeddingJobs.WithLabelValues(string(target.Kind), string(types.EmbeddingReady)).Inc()
	log.Info("embedding ready", zap.Int("dimensions", len(vec)), zap.Duration("duration", time.Since(start)))
	return nil
}

func (w *Worker) embed(ctx context.Context, target types.EmbeddingTarget) ([]float32, error) {
	text, err := w.prepare(ctx, target)
	if err != nil {
		return nil, err
	}
	text = Truncate(text, w.opts.MaxInputChars)
	return w.provider.Embed(ctx, text)
}

func (w *Worker) prepare(ctx context.Context, target types.EmbeddingTarget) (string, error) {
	switch target.Kind {
	case types.KindCandidate:
		c, err := w.store.GetCandidate(ctx, target.ID)
		if err != nil {
			return "", fmt.Errorf("failed to load candidate: %w", err)
		}
		if c == nil {
			return "", fmt.Errorf("candidate %s: %w", target.ID, ErrNotFound)
		}
		return PrepareCandidateText(c)
	case types.KindJob:
		j, err := w.store.GetJob(ctx, target.ID)
		if err != nil {
			return "", fmt.Errorf("failed to load job: %w", err)
		}
		if j == nil {
			return "", fmt.Errorf("job %s: %w", target.ID, ErrNotFound)
		}
		return PrepareJobText(j)
	default:
		return "", fmt.Errorf("unknown embedding target kind %q", target.Kind)
	}
}

// Wait blocks until every submitted target has finished.
func (w *Worker) Wait() {
	w.wg.Wait()
}

// Close stops accepting work, cancels in-flight calls and waits for them.
func (w *Worker) Close() {
	w.cancel()
	w.wg.Wait()
}
