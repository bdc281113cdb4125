package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type countingSweeper struct {
	mu    sync.Mutex
	count int
	err   error
}

func (s *countingSweeper) PublishPendingPosts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return s.err
}

func (s *countingSweeper) sweeps() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestPublishJobSweepsImmediatelyOnStart(t *testing.T) {
	sweeper := &countingSweeper{}
	j := NewPublishJob(sweeper, time.Hour)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer j.Stop()

	waitFor(t, time.Second, func() bool { return sweeper.sweeps() == 1 })
}

func TestPublishJobSweepsPeriodically(t *testing.T) {
	sweeper := &countingSweeper{}
	j := NewPublishJob(sweeper, 20*time.Millisecond)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer j.Stop()

	waitFor(t, time.Second, func() bool { return sweeper.sweeps() >= 3 })
}

func TestPublishJobDoubleStart(t *testing.T) {
	j := NewPublishJob(&countingSweeper{}, time.Hour)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer j.Stop()

	if err := j.Start(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestPublishJobStop(t *testing.T) {
	sweeper := &countingSweeper{}
	j := NewPublishJob(sweeper, 10*time.Millisecond)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	waitFor(t, time.Second, func() bool { return sweeper.sweeps() >= 1 })

	if err := j.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if j.IsRunning() {
		t.Fatal("job should not be running after Stop")
	}

	count := sweeper.sweeps()
	time.Sleep(50 * time.Millisecond)
	if got := sweeper.sweeps(); got > count+1 {
		t.Fatalf("sweeps continued after Stop: %d -> %d", count, got)
	}

	if err := j.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning on second Stop, got %v", err)
	}
}

func TestPublishJobSweepErrorsDoNotStopLoop(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("store unavailable")}
	j := NewPublishJob(sweeper, 10*time.Millisecond)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer j.Stop()

	waitFor(t, time.Second, func() bool { return sweeper.sweeps() >= 3 })
}

func TestPublishJobRestart(t *testing.T) {
	sweeper := &countingSweeper{}
	j := NewPublishJob(sweeper, time.Hour)

	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := j.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := j.Start(context.Background()); err != nil {
		t.Fatalf("restart after Stop: %v", err)
	}
	defer j.Stop()

	waitFor(t, time.Second, func() bool { return sweeper.sweeps() >= 2 })
}

func TestNewPublishJobDefaultInterval(t *testing.T) {
	j := NewPublishJob(&countingSweeper{}, 0)
	if j.interval != 600*time.Second {
		t.Fatalf("expected 600s default interval, got %s", j.interval)
	}
}
