package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"instapilot/internal/models"
	"instapilot/internal/repository"
	"instapilot/pkg/utils"
)

// PublisherService drives scheduled posts through the Graph API. One sweep
// publishes every due post it can; a failing post never blocks the rest of
// the batch, it just stays pending for the next sweep.
type PublisherService interface {
	PublishPendingPosts(ctx context.Context) error
}

type publisherService struct {
	pr  repository.PostRepository
	ia  repository.InstagramAccountRepository
	pa  repository.PublishAttemptRepository
	ig  InstagramService
	key []byte
}

func NewPublisherService(
	pr repository.PostRepository,
	ia repository.InstagramAccountRepository,
	pa repository.PublishAttemptRepository,
	ig InstagramService,
	encryptionKey string) PublisherService {
	return &publisherService{
		pr:  pr,
		ia:  ia,
		pa:  pa,
		ig:  ig,
		key: []byte(encryptionKey),
	}
}

// PublishPendingPosts runs one sweep over the due posts. It returns an
// error only when the batch itself cannot be listed; per-post failures are
// logged and swallowed so the remaining posts still get their attempt.
func (s *publisherService) PublishPendingPosts(ctx context.Context) error {
	posts, err := s.pr.GetDuePosts(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("listing due posts: %w", err)
	}

	if len(posts) == 0 {
		return nil
	}

	slog.Info("found posts to publish", "count", len(posts))

	for _, post := range posts {
		published, err := s.publishSinglePost(ctx, post)
		if published || err != nil {
			s.recordAttempt(ctx, post, err)
		}
		if err != nil {
			slog.Error("failed to publish post",
				"post_id", post.ID,
				"user_id", post.UserID,
				"error", err)
		}
	}
	return nil
}

// publishSinglePost reports whether a publish was attempted against the
// remote platform. A user without credentials is a skip, not a failure:
// nothing is mutated and the post stays eligible for the next sweep.
func (s *publisherService) publishSinglePost(ctx context.Context, post *models.Post) (bool, error) {
	account, err := s.ia.GetByUserID(ctx, post.UserID)
	if err != nil {
		return false, fmt.Errorf("loading credentials: %w", err)
	}
	if account == nil {
		slog.Warn("instagram account not found, skipping post",
			"user_id", post.UserID,
			"post_id", post.ID)
		return false, nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, s.key)
	if err != nil {
		return false, fmt.Errorf("decrypting access token: %w", err)
	}

	if err := s.ig.PublishMedia(ctx, account.InstagramID, accessToken, post.CreationID); err != nil {
		return true, err
	}

	// Marking happens strictly after the remote call succeeds. If this
	// write fails the post is re-published next sweep; the gateway treats
	// "already published" as success, so the retry converges.
	if err := s.pr.MarkPublished(ctx, post.UserID, post.CreationID, time.Now()); err != nil {
		return true, fmt.Errorf("marking post published: %w", err)
	}

	slog.Info("post published", "post_id", post.ID, "creation_id", post.CreationID)
	return true, nil
}

func (s *publisherService) recordAttempt(ctx context.Context, post *models.Post, attemptErr error) {
	attempt := models.PublishAttempt{
		PostID:    post.ID,
		UserID:    post.UserID,
		Succeeded: attemptErr == nil,
	}
	if attemptErr != nil {
		attempt.ErrorMessage = attemptErr.Error()
	}

	if _, err := s.pa.Create(ctx, &attempt); err != nil {
		slog.Error("failed to record publish attempt", "post_id", post.ID, "error", err)
	}
}
