// Package worker contains the background pipeline that notifies sales about
// new leads and mails each lead their result. The api package holds a
// worker.Enqueuer and calls Enqueue after a submission is stored; it never
// imports the concrete Runner or Job types.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nyashahama/exit-valuation-backend/internal/metrics"
	"github.com/nyashahama/exit-valuation-backend/internal/store"
)

// ─── ENQUEUER INTERFACE ───────────────────────────────────────────────────────

// Enqueuer is the narrow interface the api package uses to hand off a freshly
// stored lead.
//
// The concrete implementation is *Runner. In tests, any struct with an Enqueue
// method satisfies the interface.
type Enqueuer interface {
	Enqueue(ctx context.Context, leadID uuid.UUID) error
}

// ErrQueueFull is returned by Enqueue when the channel buffer is exhausted.
// The lead stays unnotified and the poller picks it up.
var ErrQueueFull = errors.New("worker: queue is full, lead will be picked up by poller")

// Processor runs one notification attempt for one lead. *Job implements it.
type Processor interface {
	Run(ctx context.Context, leadID uuid.UUID) error
}

// ─── RUNNER ───────────────────────────────────────────────────────────────────

// RunnerConfig holds tuning parameters for the Runner. Zero fields fall back
// to DefaultRunnerConfig.
type RunnerConfig struct {
	// Workers is the number of concurrent job goroutines. Default: 2.
	Workers int

	// PollInterval is how often the poller checks ListUnnotifiedLeads for
	// leads missed by the in-process channel, e.g. after a restart.
	// Default: 1m.
	PollInterval time.Duration

	// JobTimeout is the per-attempt context deadline. Default: 30s.
	JobTimeout time.Duration

	// MaxRetries is the number of attempts per dequeue. Default: 3.
	MaxRetries int

	// Backoff is the base delay between attempts; attempt n waits
	// Backoff * 2^n. Default: 1s.
	Backoff time.Duration
}

// DefaultRunnerConfig returns production defaults.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Workers:      2,
		PollInterval: time.Minute,
		JobTimeout:   30 * time.Second,
		MaxRetries:   3,
		Backoff:      time.Second,
	}
}

// Runner manages a pool of worker goroutines. It accepts lead ids via an
// in-process channel (fast path, used right after a submission) and also
// polls the store for leads that are still unnotified (recovery path).
type Runner struct {
	job    Processor
	repo   store.Repository
	cfg    RunnerConfig
	logger *slog.Logger

	queue chan uuid.UUID
	wg    sync.WaitGroup

	mu       sync.Mutex
	inflight map[uuid.UUID]struct{}
}

// NewRunner constructs a Runner. Call Start to begin processing.
func NewRunner(job Processor, repo store.Repository, cfg RunnerConfig, logger *slog.Logger) *Runner {
	def := DefaultRunnerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}

	return &Runner{
		job:    job,
		repo:   repo,
		cfg:    cfg,
		logger: logger,
		// Buffer = Workers*8 so Enqueue never blocks the HTTP response.
		queue:    make(chan uuid.UUID, cfg.Workers*8),
		inflight: make(map[uuid.UUID]struct{}),
	}
}

// Enqueue pushes a lead id onto the in-process channel without blocking.
func (r *Runner) Enqueue(_ context.Context, leadID uuid.UUID) error {
	select {
	case r.queue <- leadID:
		r.logger.Debug("worker: enqueued lead", "lead_id", leadID)
		return nil
	default:
		return ErrQueueFull
	}
}

// Start launches the worker pool and the poller. It blocks until ctx is
// cancelled and every goroutine has returned.
func (r *Runner) Start(ctx context.Context) {
	r.logger.Info("worker: starting", "workers", r.cfg.Workers, "poll_interval", r.cfg.PollInterval)

	for i := range r.cfg.Workers {
		r.wg.Add(1)
		go r.work(ctx, i)
	}

	r.wg.Add(1)
	go r.poll(ctx)

	r.wg.Wait()
	r.logger.Info("worker: stopped")
}

func (r *Runner) work(ctx context.Context, id int) {
	defer r.wg.Done()
	log := r.logger.With("worker_id", id)

	for {
		select {
		case <-ctx.Done():
			return
		case leadID := <-r.queue:
			if !r.claim(leadID) {
				log.Debug("worker: lead already in flight", "lead_id", leadID)
				continue
			}
			r.runWithRetry(ctx, leadID, log)
			r.release(leadID)
		}
	}
}

// claim marks leadID as in flight. It returns false if another worker holds it,
// which happens when the poller re-enqueues a lead the fast path is handling.
func (r *Runner) claim(leadID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, busy := r.inflight[leadID]; busy {
		return false
	}
	r.inflight[leadID] = struct{}{}
	return true
}

func (r *Runner) release(leadID uuid.UUID) {
	r.mu.Lock()
	delete(r.inflight, leadID)
	r.mu.Unlock()
}

func (r *Runner) poll(ctx context.Context) {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	// Once on startup to pick up anything from before a restart.
	r.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.pollOnce(ctx)
		}
	}
}

func (r *Runner) pollOnce(ctx context.Context) {
	leads, err := r.repo.ListUnnotifiedLeads(ctx, cap(r.queue))
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Error("worker: poll failed", "error", err)
		}
		return
	}
	for _, l := range leads {
		select {
		case r.queue <- l.ID:
			r.logger.Debug("worker: poller enqueued lead", "lead_id", l.ID)
		default:
			// Queue full; the next poll cycle retries.
			return
		}
	}
}

// runWithRetry executes the job up to MaxRetries times. A lead that exhausts
// its retries stays unnotified and is picked up by a later poll.
func (r *Runner) runWithRetry(ctx context.Context, leadID uuid.UUID, log *slog.Logger) {
	var lastErr error

	for attempt := 1; attempt <= r.cfg.MaxRetries; attempt++ {
		jobCtx, cancel := context.WithTimeout(ctx, r.cfg.JobTimeout)
		lastErr = r.job.Run(jobCtx, leadID)
		cancel()

		if lastErr == nil {
			metrics.Notifications.WithLabelValues(metrics.OutcomeOK).Inc()
			log.Info("worker: lead notified", "lead_id", leadID, "attempt", attempt)
			return
		}

		log.Warn("worker: attempt failed",
			"lead_id", leadID,
			"attempt", attempt,
			"max", r.cfg.MaxRetries,
			"error", lastErr,
		)

		if attempt < r.cfg.MaxRetries {
			// Exponential back-off: 2x, 4x, 8x the base delay.
			backoff := r.cfg.Backoff * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}

	metrics.Notifications.WithLabelValues(metrics.OutcomeError).Inc()
	log.Error("worker: notification failed, left for poller", "lead_id", leadID, "error", lastErr)
}
