package job

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Sweeper is the slice of the publisher the job needs.
type Sweeper interface {
	PublishPendingPosts(ctx context.Context) error
}

var ErrAlreadyRunning = errors.New("publish job already running")

var ErrNotRunning = errors.New("publish job not running")

// PublishJob is the process-wide background loop: one sweep immediately on
// start, then one per interval until stopped. Sweep errors are logged and
// never break the loop.
type PublishJob struct {
	sweeper  Sweeper
	interval time.Duration

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

func NewPublishJob(sweeper Sweeper, interval time.Duration) *PublishJob {
	if interval <= 0 {
		interval = 600 * time.Second
	}
	return &PublishJob{sweeper: sweeper, interval: interval}
}

func (j *PublishJob) Start(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.running {
		return ErrAlreadyRunning
	}

	if ctx == nil {
		ctx = context.Background()
	}

	loopCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.running = true

	go j.run(loopCtx)
	slog.Info("post publish job started", "interval", j.interval)

	return nil
}

// Stop cancels the loop. An in-flight sweep sees the cancelled context on
// its next remote or store call; Stop does not wait for it.
func (j *PublishJob) Stop() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.running {
		return ErrNotRunning
	}

	j.cancel()
	j.running = false
	slog.Info("post publish job stopped")
	return nil
}

func (j *PublishJob) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}

func (j *PublishJob) run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *PublishJob) sweep(ctx context.Context) {
	if err := j.sweeper.PublishPendingPosts(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("publish sweep failed", "error", err)
	}
}
