package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	config "instapilot/configs"
	"instapilot/internal/models"
	"instapilot/internal/repository"
	"instapilot/pkg/utils"
)

const accessTokenDuration = 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, email, password string) (uuid.UUID, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{
		cfg: cfg,
		u:   u,
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (uuid.UUID, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		err := errors.New("email cannot be empty")
		slog.Info(err.Error())
		return uuid.Nil, err
	}
	if len(password) < 8 {
		err := errors.New("password must be at least 8 characters")
		slog.Info(err.Error())
		return uuid.Nil, err
	}

	_, exists, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	if exists {
		return uuid.Nil, repository.ErrUserExists
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		slog.Info(err.Error())
		return uuid.Nil, err
	}

	return s.u.Create(ctx, &models.User{Email: email, PasswordHash: hash})
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, exists, err := s.u.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !exists || !utils.CheckPassword(user.PasswordHash, password) {
		return "", errors.New("invalid email or password")
	}

	return utils.GenerateToken(s.cfg.SecretKey, user.ID.String(), accessTokenDuration)
}
