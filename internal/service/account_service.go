package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	config "instapilot/configs"
	"instapilot/internal/models"
	"instapilot/internal/repository"
	"instapilot/internal/transfer"
	"instapilot/pkg/utils"
)

// AccountService manages the per-user Instagram account record. Tokens can
// be supplied directly (register/update) or obtained via the OAuth connect
// flow; either way they are encrypted before storage.
type AccountService interface {
	RegisterCredentials(ctx context.Context, userID uuid.UUID, creds *transfer.InstagramCredentials) error
	GetCredentials(ctx context.Context, userID uuid.UUID) (*transfer.InstagramCredentials, error)
	UpdateCredentials(ctx context.Context, userID uuid.UUID, creds *transfer.InstagramCredentials) error
	RemoveCredentials(ctx context.Context, userID uuid.UUID) error
	ConnectURL(state string) string
	ConnectCallback(ctx context.Context, userID uuid.UUID, code string) error
}

type accountService struct {
	cfg    config.Config
	ia     repository.InstagramAccountRepository
	oauth  *oauth2.Config
	client *http.Client
}

func NewAccountService(cfg config.Config, ia repository.InstagramAccountRepository) AccountService {
	return &accountService{
		cfg: cfg,
		ia:  ia,
		oauth: &oauth2.Config{
			ClientID:     cfg.InstagramClientID,
			ClientSecret: cfg.InstagramClientSecret,
			RedirectURL:  cfg.InstagramRedirectURI,
			Scopes:       []string{"instagram_business_basic", "instagram_business_content_publish", "instagram_business_manage_messages"},
			Endpoint:     endpoints.Instagram,
		},
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *accountService) RegisterCredentials(ctx context.Context, userID uuid.UUID, creds *transfer.InstagramCredentials) error {
	if creds.InstagramID <= 0 || len(creds.AccessToken) < 16 {
		err := errors.New("invalid instagram credentials")
		slog.Info(err.Error())
		return err
	}

	encryptedToken, err := utils.Encrypt([]byte(creds.AccessToken), []byte(s.cfg.EncryptionKey))
	if err != nil {
		return err
	}

	return s.ia.Create(ctx, &models.InstagramAccount{
		UserID:      userID,
		InstagramID: creds.InstagramID,
		AccessToken: encryptedToken,
	})
}

func (s *accountService) GetCredentials(ctx context.Context, userID uuid.UUID) (*transfer.InstagramCredentials, error) {
	account, err := s.ia.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, repository.ErrInstagramAccountNotFound
	}

	token, err := utils.Decrypt(account.AccessToken, []byte(s.cfg.EncryptionKey))
	if err != nil {
		return nil, fmt.Errorf("decrypting access token: %w", err)
	}

	return &transfer.InstagramCredentials{
		InstagramID: account.InstagramID,
		AccessToken: token,
	}, nil
}

func (s *accountService) UpdateCredentials(ctx context.Context, userID uuid.UUID, creds *transfer.InstagramCredentials) error {
	if creds.InstagramID <= 0 || len(creds.AccessToken) < 16 {
		err := errors.New("invalid instagram credentials")
		slog.Info(err.Error())
		return err
	}

	encryptedToken, err := utils.Encrypt([]byte(creds.AccessToken), []byte(s.cfg.EncryptionKey))
	if err != nil {
		return err
	}

	return s.ia.Update(ctx, &models.InstagramAccount{
		UserID:      userID,
		InstagramID: creds.InstagramID,
		AccessToken: encryptedToken,
	})
}

func (s *accountService) RemoveCredentials(ctx context.Context, userID uuid.UUID) error {
	return s.ia.Remove(ctx, userID)
}

func (s *accountService) ConnectURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// ConnectCallback exchanges the authorization code for a short-lived token,
// upgrades it to a long-lived one and stores the resulting account.
func (s *accountService) ConnectCallback(ctx context.Context, userID uuid.UUID, code string) error {
	if code == "" {
		err := errors.New("authorization code is empty")
		slog.Info(err.Error())
		return err
	}

	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("exchanging code: %w", err)
	}

	instagramID, err := extractInstagramID(token)
	if err != nil {
		return err
	}

	longLived, err := s.exchangeLongLivedToken(ctx, token.AccessToken)
	if err != nil {
		return err
	}

	encryptedToken, err := utils.Encrypt([]byte(longLived), []byte(s.cfg.EncryptionKey))
	if err != nil {
		return err
	}

	account := &models.InstagramAccount{
		UserID:      userID,
		InstagramID: instagramID,
		AccessToken: encryptedToken,
	}

	err = s.ia.Create(ctx, account)
	if errors.Is(err, repository.ErrInstagramAccountExists) {
		return s.ia.Update(ctx, account)
	}
	return err
}

func (s *accountService) exchangeLongLivedToken(ctx context.Context, shortLivedToken string) (string, error) {
	url := fmt.Sprintf(
		"https://graph.instagram.com/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
		s.cfg.InstagramClientSecret,
		shortLivedToken,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to get long-lived token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Info(err.Error())
		return "", fmt.Errorf("failed to decode long-lived token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", errors.New("no access token returned from Instagram")
	}
	return result.AccessToken, nil
}

func extractInstagramID(token *oauth2.Token) (int64, error) {
	switch v := token.Extra("user_id").(type) {
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	default:
		return 0, errors.New("no user_id in token response")
	}
}
