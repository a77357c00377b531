package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"chat-server/internal/utils/platformerrors"
	"chat-server/internal/worker"
)

func TestRunnerExecutesSubmittedJobs(t *testing.T) {
	runner := worker.NewRunner(worker.Config{PoolSize: 2, JobBuffer: 8}, zerolog.Nop())
	defer runner.Stop()

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		err := runner.Submit("count", func(ctx context.Context) error {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	wg.Wait()
	if got := atomic.LoadInt64(&counter); got != 5 {
		t.Errorf("executed %d jobs, want 5", got)
	}
}

func TestRunnerSurvivesFailingAndPanickingJobs(t *testing.T) {
	runner := worker.NewRunner(worker.Config{PoolSize: 1, JobBuffer: 8}, zerolog.Nop())
	defer runner.Stop()

	var wg sync.WaitGroup
	wg.Add(2)
	if err := runner.Submit("fail", func(ctx context.Context) error {
		defer wg.Done()
		return errors.New("boom")
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if err := runner.Submit("panic", func(ctx context.Context) error {
		defer wg.Done()
		panic("boom")
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	wg.Wait()

	// The pool keeps serving jobs after failures.
	done := make(chan struct{})
	if err := runner.Submit("ok", func(ctx context.Context) error {
		close(done)
		return nil
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job after failures never ran")
	}
}

func TestRunnerRejectsWhenQueueFull(t *testing.T) {
	runner := worker.NewRunner(worker.Config{PoolSize: 1, JobBuffer: 1, DrainWait: time.Second}, zerolog.Nop())
	defer runner.Stop()

	block := make(chan struct{})
	defer close(block)

	// First job occupies the single worker.
	if err := runner.Submit("block", func(ctx context.Context) error {
		<-block
		return nil
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	// Fill the buffer, then expect backpressure. The blocking job may not
	// have been picked up yet, so tolerate one extra slot.
	var rejected error
	for i := 0; i < 3; i++ {
		if err := runner.Submit("queued", func(ctx context.Context) error { return nil }); err != nil {
			rejected = err
			break
		}
	}
	if !platformerrors.IsErrorType(rejected, platformerrors.ErrorTypeInternal) {
		t.Fatalf("expected an internal error for a full queue, got %v", rejected)
	}
}

func TestRunnerRejectsAfterStop(t *testing.T) {
	runner := worker.NewRunner(worker.Config{PoolSize: 1, JobBuffer: 1, DrainWait: time.Second}, zerolog.Nop())
	runner.Stop()

	err := runner.Submit("late", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("expected an error after Stop")
	}
}

func TestRunnerStopCancelsJobContext(t *testing.T) {
	runner := worker.NewRunner(worker.Config{PoolSize: 1, JobBuffer: 1, DrainWait: time.Second}, zerolog.Nop())

	started := make(chan struct{})
	cancelled := make(chan struct{})
	if err := runner.Submit("watch", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(cancelled)
		return ctx.Err()
	}); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	<-started
	runner.Stop()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("job context was not cancelled on Stop")
	}
}
