package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/danmelak/shopcart/internal/domain/job"
	"github.com/danmelak/shopcart/internal/jobs"
	"github.com/danmelak/shopcart/internal/notifications"
	"github.com/danmelak/shopcart/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	LockTTL       time.Duration
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	prom     *observability.Prom
	log      *slog.Logger

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, prom *observability.Prom, log *slog.Logger) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}
	if cfg.ShutdownGrace <= 0 {
		cfg.ShutdownGrace = 10 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		prom:     prom,
		log:      log,
	}
}

// Run polls for ready jobs until ctx is cancelled, then drains in-flight
// executions within the shutdown grace period.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	staleTicker := time.NewTicker(w.cfg.LockTTL)
	defer staleTicker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			w.setReady(false)
			w.log.Info("worker draining", "grace", w.cfg.ShutdownGrace.String())

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
			case <-time.After(w.cfg.ShutdownGrace):
				w.log.Error("worker drain timed out")
			}
			return nil

		case <-staleTicker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.log.Error("requeue stale failed", "err", err)
				continue
			}
			if n > 0 {
				w.log.Info("requeued stale jobs", "count", n)
			}

		case <-ticker.C:
			select {
			case sem <- struct{}{}:
			default:
				// all slots busy; skip this tick
				continue
			}

			claimed, err := w.claim(ctx)

			if err != nil {
				<-sem
				w.log.Error("claim error", "err", err)
				continue
			}

			if claimed == nil {
				<-sem
				continue
			}

			wg.Add(1)
			go func(j job.Job) {
				defer wg.Done()
				defer func() { <-sem }()
				w.process(ctx, j)
			}(*claimed)
		}
	}
}

func (w *Worker) claim(ctx context.Context) (*job.Job, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)

	if err != nil {
		if errors.Is(err, job.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &j, nil
}

func (w *Worker) process(ctx context.Context, j job.Job) {
	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()

	err := w.execute(ctx, j)

	// Outcome bookkeeping must land even when shutdown cancels ctx while
	// the job is in flight; otherwise a delivered job stays 'processing'
	// and gets re-delivered after the lock TTL expires.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.cfg.ShutdownGrace)
	defer cancel()

	result := "done"

	if err != nil {
		result = w.handleFailure(persistCtx, j, err)
	} else if err := w.repo.MarkDone(persistCtx, j.ID); err != nil {
		w.log.Error("mark done failed", "job_id", j.ID, "err", err)
		result = "failed"
	}

	if w.prom != nil {
		w.prom.JobDuration.WithLabelValues(j.Type, result).Observe(time.Since(start).Seconds())
		w.prom.JobResults.WithLabelValues(j.Type, result).Inc()
	}

	w.log.Info("job processed", "job_id", j.ID, "type", j.Type, "result", result, "attempt", j.Attempts)
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	payload, err := jobs.DecodePayload(j)

	if err != nil {
		return err
	}

	switch p := payload.(type) {
	case jobs.WelcomeNotificationPayload:
		return w.notifier.SendWelcome(ctx, notifications.SendWelcomeInput{
			UserID: p.UserID,
			Email:  p.Email,
			Name:   p.Name,
		})
	default:
		return jobs.ErrInvalidJobType
	}
}

// handleFailure reschedules with backoff while attempts remain, otherwise
// dead-letters the job as failed. Returns the prometheus result label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) string {
	// undecodable payloads never succeed on retry
	permanent := errors.Is(execErr, jobs.ErrInvalidJobPayload) || errors.Is(execErr, jobs.ErrInvalidJobType)

	if permanent || j.Attempts+1 >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.log.Error("mark failed failed", "job_id", j.ID, "err", err)
		}
		return "failed"
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))

	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.log.Error("reschedule failed", "job_id", j.ID, "err", err)
		return "failed"
	}

	return "retry"
}

func (w *Worker) setReady(ready bool) {
	w.readyMu.Lock()
	w.ready = ready
	w.readyMu.Unlock()
}
