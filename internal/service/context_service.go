package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"instapilot/internal/models"
	"instapilot/internal/repository"
)

// ContextService wraps one of the per-user context stores (post or wiki).
type ContextService interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserContext, error)
	Create(ctx context.Context, userID uuid.UUID, content string) error
	Update(ctx context.Context, userID uuid.UUID, content string) error
	Remove(ctx context.Context, userID uuid.UUID) error
}

type contextService struct {
	r repository.ContextRepository
}

func NewContextService(r repository.ContextRepository) ContextService {
	return &contextService{r: r}
}

func (s *contextService) Get(ctx context.Context, userID uuid.UUID) (*models.UserContext, error) {
	uc, err := s.r.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if uc == nil {
		return nil, repository.ErrContextNotFound
	}
	return uc, nil
}

func (s *contextService) Create(ctx context.Context, userID uuid.UUID, content string) error {
	if content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return err
	}
	return s.r.Create(ctx, userID, content)
}

func (s *contextService) Update(ctx context.Context, userID uuid.UUID, content string) error {
	if content == "" {
		err := errors.New("content cannot be empty")
		slog.Info(err.Error())
		return err
	}
	return s.r.Update(ctx, userID, content)
}

func (s *contextService) Remove(ctx context.Context, userID uuid.UUID) error {
	return s.r.Remove(ctx, userID)
}
