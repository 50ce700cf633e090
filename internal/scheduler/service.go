// Package scheduler runs the periodic recommendation analysis sweep across
// all tracked users.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/mindwell/wellness-api/internal/database"
	"github.com/mindwell/wellness-api/internal/queue"
	"go.uber.org/zap"
)

// StopTimeout bounds how long Stop waits for an in-flight tick to finish
const StopTimeout = 5 * time.Second

// Analyzer runs the recommendation pipeline for a single user
type Analyzer interface {
	AnalyzeUser(ctx context.Context, email string) error
	ProcessExpirySweep(ctx context.Context) error
}

// Service periodically re-runs the recommendation pipeline for all tracked
// users. When a job queue is configured the per-user work fans out to workers;
// otherwise it runs inline on a bounded pool.
type Service struct {
	trackingRepo database.TrackingRepositoryInterface
	analyzer     Analyzer
	jobQueue     queue.JobQueue // nil = run analysis inline
	interval     time.Duration
	concurrency  int
	logger       *zap.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a scheduler service
func New(
	trackingRepo database.TrackingRepositoryInterface,
	analyzer Analyzer,
	jobQueue queue.JobQueue,
	interval time.Duration,
	concurrency int,
	logger *zap.Logger,
) *Service {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		trackingRepo: trackingRepo,
		analyzer:     analyzer,
		jobQueue:     jobQueue,
		interval:     interval,
		concurrency:  concurrency,
		logger:       logger,
	}
}

// Start begins the periodic sweep. Calling Start on a running service is a
// no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.logger.Debug("scheduler_already_running")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.run(ctx, s.done)

	s.logger.Info("scheduler_started",
		zap.Duration("interval", s.interval),
		zap.Int("concurrency", s.concurrency),
		zap.Bool("queue_fanout", s.jobQueue != nil),
	)
}

// Stop cancels the periodic sweep and waits for an in-flight tick to finish,
// bounded by StopTimeout. Calling Stop on a stopped service is a no-op.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		s.logger.Debug("scheduler_already_stopped")
		return
	}
	cancel := s.cancel
	done := s.done
	s.running = false
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
		s.logger.Info("scheduler_stopped")
	case <-time.After(StopTimeout):
		s.logger.Warn("scheduler_stop_timeout", zap.Duration("timeout", StopTimeout))
	}
}

// Running reports whether the periodic sweep is active
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error("scheduler_tick_failed", zap.Error(err))
			}
		}
	}
}

// RunOnce performs a single analysis sweep across all tracked users. Per-user
// failures are logged and do not abort the batch.
func (s *Service) RunOnce(ctx context.Context) error {
	start := time.Now()

	emails, err := s.trackingRepo.ListEmails(ctx)
	if err != nil {
		return err
	}

	var failures int
	if s.jobQueue != nil {
		failures = s.fanOut(ctx, emails)
	} else {
		failures = s.runInline(ctx, emails)
	}

	s.logger.Info("scheduler_tick_complete",
		zap.Int("user_count", len(emails)),
		zap.Int("failures", failures),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// fanOut enqueues one analysis job per user plus a single expiry sweep
func (s *Service) fanOut(ctx context.Context, emails []string) int {
	var failures int
	for _, email := range emails {
		if ctx.Err() != nil {
			return failures
		}
		job := queue.NewUserAnalysisJob(email)
		// Stale analysis jobs are useless once the next tick enqueues fresh ones.
		notAfter := time.Now().Add(s.interval)
		job.NotAfter = &notAfter

		if err := s.jobQueue.Enqueue(ctx, job); err != nil {
			failures++
			s.logger.Warn("analysis_job_enqueue_failed", zap.Error(err))
		}
	}

	if err := s.jobQueue.Enqueue(ctx, queue.NewExpirySweepJob()); err != nil {
		failures++
		s.logger.Warn("sweep_job_enqueue_failed", zap.Error(err))
	}
	return failures
}

// runInline analyzes users concurrently on a bounded pool
func (s *Service) runInline(ctx context.Context, emails []string) int {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures int
	)

	sem := make(chan struct{}, s.concurrency)
	for _, email := range emails {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(email string) {
			defer wg.Done()
			defer func() { <-sem }()

			if err := s.analyzer.AnalyzeUser(ctx, email); err != nil {
				mu.Lock()
				failures++
				mu.Unlock()
				s.logger.Warn("user_analysis_failed", zap.Error(err))
			}
		}(email)
	}
	wg.Wait()

	if err := s.analyzer.ProcessExpirySweep(ctx); err != nil {
		failures++
		s.logger.Warn("expiry_sweep_failed", zap.Error(err))
	}
	return failures
}
