package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/infrastructure/metrics"
	"chat-server/internal/utils/platformerrors"
)

// Job is a unit of background work. Returned errors are recorded, never
// propagated to the HTTP caller that enqueued the job.
type Job = func(ctx context.Context) error

type queuedJob struct {
	jobType string
	run     Job
}

// Config contains runner configuration.
type Config struct {
	PoolSize  int
	JobBuffer int
	DrainWait time.Duration
}

// Runner executes fire-and-forget jobs on a bounded goroutine pool. It owns
// the error boundary for background generation: a panicking or failing job
// only ever affects its own conversation.
type Runner struct {
	jobs      chan queuedJob
	drainWait time.Duration
	log       zerolog.Logger
	baseCtx   context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewRunner creates a runner with the configured pool size.
func NewRunner(cfg Config, log zerolog.Logger) *Runner {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 1
	}
	if cfg.JobBuffer <= 0 {
		cfg.JobBuffer = 16
	}
	if cfg.DrainWait <= 0 {
		cfg.DrainWait = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Runner{
		jobs:      make(chan queuedJob, cfg.JobBuffer),
		drainWait: cfg.DrainWait,
		log:       log.With().Str("component", "worker-runner").Logger(),
		baseCtx:   ctx,
		cancel:    cancel,
	}

	for i := 0; i < cfg.PoolSize; i++ {
		r.wg.Add(1)
		go r.loop(i + 1)
	}
	r.log.Info().Int("pool_size", cfg.PoolSize).Msg("worker runner started")
	return r
}

// Submit enqueues a job. It fails when the queue is full or the runner has
// been stopped, so callers can surface backpressure instead of blocking the
// request path.
func (r *Runner) Submit(jobType string, job Job) error {
	select {
	case <-r.baseCtx.Done():
		return platformerrors.NewError(r.baseCtx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal, "worker runner stopped", nil)
	default:
	}

	select {
	case r.jobs <- queuedJob{jobType: jobType, run: job}:
		metrics.SetQueueDepth(len(r.jobs))
		return nil
	default:
		return platformerrors.NewError(r.baseCtx, platformerrors.LayerInfrastructure, platformerrors.ErrorTypeInternal, "worker queue full", nil)
	}
}

// Stop cancels running jobs and waits for the pool to drain, bounded by the
// configured drain wait.
func (r *Runner) Stop() {
	r.closeOnce.Do(func() {
		r.log.Info().Msg("stopping worker runner")
		r.cancel()
		close(r.jobs)
	})

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.log.Info().Msg("worker runner stopped")
	case <-time.After(r.drainWait):
		r.log.Warn().Msg("worker runner shutdown timed out")
	}
}

func (r *Runner) loop(id int) {
	defer r.wg.Done()
	log := r.log.With().Int("worker_id", id).Logger()

	for job := range r.jobs {
		metrics.SetQueueDepth(len(r.jobs))
		r.execute(log, job)
	}
}

func (r *Runner) execute(log zerolog.Logger, job queuedJob) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("job_type", job.jobType).Msg("background job panicked")
			metrics.RecordBackgroundJob(job.jobType, "panic")
		}
	}()

	start := time.Now()
	if err := job.run(r.baseCtx); err != nil {
		log.Error().Err(err).Str("job_type", job.jobType).Dur("elapsed", time.Since(start)).Msg("background job failed")
		metrics.RecordBackgroundJob(job.jobType, "error")
		return
	}
	metrics.RecordBackgroundJob(job.jobType, "success")
}
