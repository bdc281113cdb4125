package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "instapilot/configs"
	"instapilot/internal/transfer"
)

const graphBaseURL = "https://graph.instagram.com/v24.0"

// ErrPublishFailed covers any non-success answer from the Graph API
// publish endpoints, transport failures included.
var ErrPublishFailed = errors.New("instagram publish failed")

// InstagramService is the Graph API gateway. One network call per method,
// no internal retries; retry policy belongs to the callers.
type InstagramService interface {
	CreateMediaContainer(ctx context.Context, instagramID int64, accessToken, imageURL, caption string) (string, error)
	PublishMedia(ctx context.Context, instagramID int64, accessToken, creationID string) error
	SendMessage(ctx context.Context, instagramID int64, accessToken, recipientID, text string) error
}

type instagramService struct {
	baseURL      string
	client       *http.Client
	publishDelay time.Duration
}

func NewInstagramService(cfg config.Config) InstagramService {
	return &instagramService{
		baseURL:      graphBaseURL,
		client:       &http.Client{Timeout: 60 * time.Second},
		publishDelay: cfg.PublishDelay,
	}
}

func (s *instagramService) postJSON(ctx context.Context, url, accessToken string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return s.client.Do(req)
}

func (s *instagramService) CreateMediaContainer(ctx context.Context, instagramID int64, accessToken, imageURL, caption string) (string, error) {
	url := fmt.Sprintf("%s/%d/media", s.baseURL, instagramID)
	payload := map[string]string{
		"image_url": imageURL,
		"caption":   caption,
	}

	resp, err := s.postJSON(ctx, url, accessToken, payload)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code from Instagram: %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if result.ID == "" {
		return "", errors.New("no media ID returned from Instagram")
	}

	slog.Info("media container created", "creation_id", result.ID)
	return result.ID, nil
}

func (s *instagramService) PublishMedia(ctx context.Context, instagramID int64, accessToken, creationID string) error {
	// Containers are not publishable right after creation; give the
	// platform time to process the media.
	if s.publishDelay > 0 {
		select {
		case <-time.After(s.publishDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	url := fmt.Sprintf("%s/%d/media_publish", s.baseURL, instagramID)
	payload := map[string]string{"creation_id": creationID}

	resp, err := s.postJSON(ctx, url, accessToken, payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPublishFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading response: %v", ErrPublishFailed, err)
	}

	if resp.StatusCode != http.StatusOK {
		if isAlreadyPublished(respBody) {
			slog.Info("container already published, treating as success", "creation_id", creationID)
			return nil
		}
		return fmt.Errorf("%w: status %d: %s", ErrPublishFailed, resp.StatusCode, respBody)
	}

	slog.Info("media published", "creation_id", creationID)
	return nil
}

func (s *instagramService) SendMessage(ctx context.Context, instagramID int64, accessToken, recipientID, text string) error {
	url := fmt.Sprintf("%s/%d/messages", s.baseURL, instagramID)
	payload := map[string]any{
		"recipient": map[string]string{"id": recipientID},
		"message":   map[string]string{"text": text},
	}

	resp, err := s.postJSON(ctx, url, accessToken, payload)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code from Instagram: %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

// isAlreadyPublished reports whether a publish error means the container
// was published before. Re-publishing after a lost mark write hits this:
// it must count as success so the post can finally be marked.
func isAlreadyPublished(respBody []byte) bool {
	var igErr transfer.InstagramErrorResponse
	if err := json.Unmarshal(respBody, &igErr); err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(igErr.Error.Message), "already published")
}
