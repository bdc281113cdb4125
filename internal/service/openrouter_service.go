package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "instapilot/configs"
)

// GeneratedPost is the LLM output for one post: final caption text plus
// the generated image decoded from the model's data URL.
type GeneratedPost struct {
	Caption   string
	ImageData []byte
}

type OpenRouterService interface {
	GenerateReply(ctx context.Context, query, systemContext string) (string, error)
	GeneratePost(ctx context.Context, prompt string, imageURLs []string, systemContext string) (*GeneratedPost, error)
}

type openRouterService struct {
	cfg    config.OpenRouter
	client *http.Client
}

func NewOpenRouterService(cfg config.Config) OpenRouterService {
	return &openRouterService{
		cfg:    cfg.OpenRouter,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Images  []struct {
				ImageURL struct {
					URL string `json:"url"`
				} `json:"image_url"`
			} `json:"images"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *openRouterService) complete(ctx context.Context, model string, messages []chatMessage) (*chatResponse, error) {
	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from OpenRouter: %d: %s", resp.StatusCode, respBody)
	}

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, errors.New("no choices returned from OpenRouter")
	}
	return &result, nil
}

// GenerateReply answers an inbound DM, optionally grounded on the owner's
// wiki context as the system prompt.
func (s *openRouterService) GenerateReply(ctx context.Context, query, systemContext string) (string, error) {
	var messages []chatMessage
	if systemContext = strings.TrimSpace(systemContext); systemContext != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemContext})
	}
	messages = append(messages, chatMessage{
		Role:    "user",
		Content: strings.TrimSpace(query) + "\n\nAnswer in at most 900 characters.",
	})

	result, err := s.complete(ctx, s.cfg.Model, messages)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(result.Choices[0].Message.Content)
	slog.Info("generated DM reply", "length", len(reply))
	return reply, nil
}

func (s *openRouterService) GeneratePost(ctx context.Context, prompt string, imageURLs []string, systemContext string) (*GeneratedPost, error) {
	content := []map[string]any{
		{"type": "text", "text": strings.TrimSpace(prompt) + "\n\nCaption of at most 2000 characters."},
	}
	for _, imageURL := range imageURLs {
		content = append(content, map[string]any{
			"type":      "image_url",
			"image_url": map[string]string{"url": imageURL},
		})
	}

	var messages []chatMessage
	if systemContext = strings.TrimSpace(systemContext); systemContext != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemContext})
	}
	messages = append(messages, chatMessage{Role: "user", Content: content})

	result, err := s.complete(ctx, s.cfg.ImageModel, messages)
	if err != nil {
		return nil, err
	}

	message := result.Choices[0].Message
	if len(message.Images) == 0 {
		return nil, errors.New("no image returned from OpenRouter")
	}

	imageData, err := decodeDataURL(message.Images[0].ImageURL.URL)
	if err != nil {
		return nil, fmt.Errorf("decoding generated image: %w", err)
	}

	return &GeneratedPost{
		Caption:   strings.TrimSpace(message.Content),
		ImageData: imageData,
	}, nil
}

func decodeDataURL(dataURL string) ([]byte, error) {
	_, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return nil, errors.New("malformed data URL")
	}
	return base64.StdEncoding.DecodeString(encoded)
}
