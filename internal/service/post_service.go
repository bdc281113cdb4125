package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"instapilot/internal/models"
	"instapilot/internal/repository"
	"instapilot/internal/transfer"
	"instapilot/pkg/utils"
)

type PostService interface {
	Create(ctx context.Context, userID uuid.UUID, req *transfer.CreatePostRequest) (*models.Post, error)
	Prepare(ctx context.Context, userID uuid.UUID, req *transfer.PreparePostRequest) (*transfer.PreparePostResponse, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.Post, error)
	Info(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error)
	Schedule(ctx context.Context, userID, postID uuid.UUID, at time.Time) (*models.Post, error)
	Publish(ctx context.Context, userID, postID uuid.UUID) error
	Attempts(ctx context.Context, userID, postID uuid.UUID) ([]*models.PublishAttempt, error)
	Remove(ctx context.Context, userID, postID uuid.UUID) error
}

type postService struct {
	pr  repository.PostRepository
	ia  repository.InstagramAccountRepository
	pcr repository.ContextRepository
	pa  repository.PublishAttemptRepository
	ig  InstagramService
	or  OpenRouterService
	st  *StorageService
	key []byte
}

func NewPostService(
	pr repository.PostRepository,
	ia repository.InstagramAccountRepository,
	pcr repository.ContextRepository,
	pa repository.PublishAttemptRepository,
	ig InstagramService,
	or OpenRouterService,
	st *StorageService,
	encryptionKey string) PostService {
	return &postService{
		pr:  pr,
		ia:  ia,
		pcr: pcr,
		pa:  pa,
		ig:  ig,
		or:  or,
		st:  st,
		key: []byte(encryptionKey),
	}
}

func (s *postService) Create(ctx context.Context, userID uuid.UUID, req *transfer.CreatePostRequest) (*models.Post, error) {
	if req.CreationID == "" {
		err := errors.New("creation_id cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}
	if req.Caption == "" {
		err := errors.New("caption cannot be empty")
		slog.Info(err.Error())
		return nil, err
	}

	post := &models.Post{
		UserID:     userID,
		CreationID: req.CreationID,
		Caption:    req.Caption,
		ImageURL:   req.ImageURL,
	}
	return s.pr.Create(ctx, post)
}

// Prepare runs the whole content pipeline: generate caption and image with
// the LLM, upload the image, create the media container and save the post
// record. The post is left unscheduled; publication happens later via
// Schedule or Publish.
func (s *postService) Prepare(ctx context.Context, userID uuid.UUID, req *transfer.PreparePostRequest) (*transfer.PreparePostResponse, error) {
	account, token, err := s.credentials(ctx, userID)
	if err != nil {
		return nil, err
	}

	var systemContext string
	if pc, err := s.pcr.Get(ctx, userID); err == nil && pc != nil {
		systemContext = pc.Content
	}

	generated, err := s.or.GeneratePost(ctx, req.Caption, req.ImageURLs, systemContext)
	if err != nil {
		return nil, fmt.Errorf("generating post content: %w", err)
	}

	imageURL, err := s.st.Upload(ctx, generated.ImageData)
	if err != nil {
		return nil, fmt.Errorf("uploading image: %w", err)
	}

	creationID, err := s.ig.CreateMediaContainer(ctx, account.InstagramID, token, imageURL, generated.Caption)
	if err != nil {
		return nil, fmt.Errorf("creating media container: %w", err)
	}

	post, err := s.pr.Create(ctx, &models.Post{
		UserID:     userID,
		CreationID: creationID,
		Caption:    generated.Caption,
		ImageURL:   imageURL,
	})
	if err != nil {
		return nil, fmt.Errorf("saving post record: %w", err)
	}

	return &transfer.PreparePostResponse{
		PostID:     post.ID.String(),
		ImageURL:   imageURL,
		Caption:    generated.Caption,
		CreationID: creationID,
	}, nil
}

func (s *postService) List(ctx context.Context, userID uuid.UUID) ([]*models.Post, error) {
	return s.pr.ListByUserID(ctx, userID)
}

func (s *postService) Info(ctx context.Context, userID, postID uuid.UUID) (*models.Post, error) {
	return s.pr.GetByID(ctx, userID, postID)
}

func (s *postService) Schedule(ctx context.Context, userID, postID uuid.UUID, at time.Time) (*models.Post, error) {
	return s.pr.SetScheduledAt(ctx, userID, postID, at)
}

// Publish is the manual path: publish one post now, regardless of its
// schedule. It shares MarkPublished with the background sweep, which is
// what keeps the two paths from double-marking.
func (s *postService) Publish(ctx context.Context, userID, postID uuid.UUID) error {
	post, err := s.pr.GetByID(ctx, userID, postID)
	if err != nil {
		return err
	}

	account, token, err := s.credentials(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.ig.PublishMedia(ctx, account.InstagramID, token, post.CreationID); err != nil {
		return err
	}

	return s.pr.MarkPublished(ctx, userID, post.CreationID, time.Now())
}

// Attempts lists the publish history for one of the user's posts, newest
// first. The ownership check runs first so attempt rows never leak across
// users.
func (s *postService) Attempts(ctx context.Context, userID, postID uuid.UUID) ([]*models.PublishAttempt, error) {
	if _, err := s.pr.GetByID(ctx, userID, postID); err != nil {
		return nil, err
	}
	return s.pa.ListByPostID(ctx, postID)
}

func (s *postService) Remove(ctx context.Context, userID, postID uuid.UUID) error {
	return s.pr.Remove(ctx, userID, postID)
}

func (s *postService) credentials(ctx context.Context, userID uuid.UUID) (*models.InstagramAccount, string, error) {
	account, err := s.ia.GetByUserID(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if account == nil {
		return nil, "", repository.ErrInstagramAccountNotFound
	}

	token, err := utils.Decrypt(account.AccessToken, s.key)
	if err != nil {
		return nil, "", fmt.Errorf("decrypting access token: %w", err)
	}
	return account, token, nil
}
