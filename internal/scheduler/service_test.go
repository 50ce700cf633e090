package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mindwell/wellness-api/internal/models"
	"github.com/mindwell/wellness-api/internal/queue"
	"go.uber.org/zap"
)

type fakeTrackingRepo struct {
	emails []string
	err    error
}

func (f *fakeTrackingRepo) GetByEmail(_ context.Context, _ string) (*models.TrackingDocument, error) {
	return nil, nil
}

func (f *fakeTrackingRepo) Upsert(_ context.Context, _ *models.TrackingDocument) error {
	return nil
}

func (f *fakeTrackingRepo) ListEmails(_ context.Context) ([]string, error) {
	return f.emails, f.err
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	analyzed []string
	swept    int
	failFor  map[string]bool
}

func (f *fakeAnalyzer) AnalyzeUser(_ context.Context, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, email)
	if f.failFor[email] {
		return errors.New("analysis failed")
	}
	return nil
}

func (f *fakeAnalyzer) ProcessExpirySweep(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.swept++
	return nil
}

type fakeJobQueue struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (f *fakeJobQueue) Enqueue(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeJobQueue) Consume(_ context.Context, _ int) (<-chan *queue.Message, <-chan error, error) {
	return nil, nil, errors.New("not implemented")
}

func (f *fakeJobQueue) Close() error { return nil }

func (f *fakeJobQueue) HealthCheck(_ context.Context) error { return nil }

func newTestService(repo *fakeTrackingRepo, analyzer *fakeAnalyzer, jq queue.JobQueue) *Service {
	return New(repo, analyzer, jq, time.Hour, 2, zap.NewNop())
}

func TestStartStopIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestService(&fakeTrackingRepo{}, &fakeAnalyzer{}, nil)

	if s.Running() {
		t.Fatal("new service should not be running")
	}

	s.Start()
	s.Start()
	if !s.Running() {
		t.Error("service should be running after Start")
	}

	s.Stop()
	s.Stop()
	if s.Running() {
		t.Error("service should be stopped after Stop")
	}
}

func TestStartAfterStop(t *testing.T) {
	t.Parallel()

	s := newTestService(&fakeTrackingRepo{}, &fakeAnalyzer{}, nil)

	s.Start()
	s.Stop()
	s.Start()
	if !s.Running() {
		t.Error("service should restart after a stop")
	}
	s.Stop()
}

func TestRunOnceInline(t *testing.T) {
	t.Parallel()

	repo := &fakeTrackingRepo{emails: []string{"a@x.com", "b@x.com", "c@x.com"}}
	analyzer := &fakeAnalyzer{}
	s := newTestService(repo, analyzer, nil)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce error = %v", err)
	}

	if len(analyzer.analyzed) != 3 {
		t.Errorf("analyzed %d users, want 3", len(analyzer.analyzed))
	}
	if analyzer.swept != 1 {
		t.Errorf("swept %d times, want 1", analyzer.swept)
	}
}

// One user's failure must not abort the rest of the batch.
func TestRunOnceFailureIsolation(t *testing.T) {
	t.Parallel()

	repo := &fakeTrackingRepo{emails: []string{"a@x.com", "b@x.com", "c@x.com"}}
	analyzer := &fakeAnalyzer{failFor: map[string]bool{"b@x.com": true}}
	s := newTestService(repo, analyzer, nil)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce error = %v", err)
	}

	if len(analyzer.analyzed) != 3 {
		t.Errorf("analyzed %d users, want all 3 despite one failure", len(analyzer.analyzed))
	}
	if analyzer.swept != 1 {
		t.Errorf("swept %d times, want 1", analyzer.swept)
	}
}

func TestRunOnceListError(t *testing.T) {
	t.Parallel()

	repo := &fakeTrackingRepo{err: errors.New("db down")}
	s := newTestService(repo, &fakeAnalyzer{}, nil)

	if err := s.RunOnce(context.Background()); err == nil {
		t.Error("expected error when listing tracked users fails")
	}
}

func TestRunOnceFanOut(t *testing.T) {
	t.Parallel()

	repo := &fakeTrackingRepo{emails: []string{"a@x.com", "b@x.com"}}
	analyzer := &fakeAnalyzer{}
	jq := &fakeJobQueue{}
	s := newTestService(repo, analyzer, jq)

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce error = %v", err)
	}

	// Two analysis jobs plus one expiry sweep.
	if len(jq.jobs) != 3 {
		t.Fatalf("enqueued %d jobs, want 3", len(jq.jobs))
	}

	var analysisJobs, sweepJobs int
	for _, job := range jq.jobs {
		switch job.Type {
		case queue.JobTypeUserAnalysis:
			analysisJobs++
			if job.NotAfter == nil {
				t.Error("analysis job should carry a NotAfter deadline")
			}
		case queue.JobTypeExpirySweep:
			sweepJobs++
		}
	}
	if analysisJobs != 2 || sweepJobs != 1 {
		t.Errorf("got %d analysis and %d sweep jobs, want 2 and 1", analysisJobs, sweepJobs)
	}

	// Fan-out must not run analysis inline.
	if len(analyzer.analyzed) != 0 {
		t.Errorf("fan-out analyzed %d users inline, want 0", len(analyzer.analyzed))
	}
}

func TestPeriodicTick(t *testing.T) {
	t.Parallel()

	repo := &fakeTrackingRepo{emails: []string{"a@x.com"}}
	analyzer := &fakeAnalyzer{}
	s := New(repo, analyzer, nil, 20*time.Millisecond, 1, zap.NewNop())

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for {
		analyzer.mu.Lock()
		n := len(analyzer.analyzed)
		analyzer.mu.Unlock()
		if n >= 2 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("expected at least 2 ticks, got %d", n)
		case <-time.After(10 * time.Millisecond):
		}
	}
}
