package job

import (
	"context"
	"log/slog"
	"time"

	"instapilot/internal/repository"
)

// AttemptCleanupJob prunes old publish attempt rows. Wired on a daily cron
// schedule from main.
type AttemptCleanupJob struct {
	pa            repository.PublishAttemptRepository
	retentionDays int
}

func NewAttemptCleanupJob(pa repository.PublishAttemptRepository, retentionDays int) *AttemptCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &AttemptCleanupJob{pa: pa, retentionDays: retentionDays}
}

func (c *AttemptCleanupJob) Run() {
	ctx := context.Background()

	cutoff := time.Now().AddDate(0, 0, -c.retentionDays)
	deleted, err := c.pa.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if deleted > 0 {
		slog.Info("pruned old publish attempts", "count", deleted)
	}
}
