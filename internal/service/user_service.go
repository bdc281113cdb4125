package service

import (
	"context"

	"github.com/google/uuid"

	"instapilot/internal/models"
	"instapilot/internal/repository"
)

type UserService interface {
	Info(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

func (s *userService) Info(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	return s.u.GetByID(ctx, userID)
}
