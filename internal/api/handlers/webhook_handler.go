package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"

	config "instapilot/configs"
	"instapilot/internal/queue"
	"instapilot/internal/transfer"
)

type WebhookHandler struct {
	cfg         config.Config
	AsynqClient *asynq.Client
}

func NewWebhookHandler(cfg config.Config, asynqClient *asynq.Client) *WebhookHandler {
	return &WebhookHandler{cfg: cfg, AsynqClient: asynqClient}
}

// Verify answers the platform's subscription handshake.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	challenge := c.Query("hub.challenge")
	verifyToken := c.Query("hub.verify_token")

	if mode == "subscribe" && verifyToken == h.cfg.VerifyToken {
		return c.Status(fiber.StatusOK).SendString(challenge)
	}

	slog.Warn("webhook verification failed")
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "Verification failed",
	})
}

// Receive accepts inbound messaging events and enqueues one reply task per
// message. The handler always answers 200 quickly; the LLM work happens on
// the queue worker.
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload transfer.WebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		slog.Info("failed to parse webhook payload", "error", err)
		return c.SendStatus(fiber.StatusOK)
	}

	for _, entry := range payload.Entry {
		for _, messaging := range entry.Messaging {
			if messaging.Message == nil || messaging.Message.Text == "" {
				continue
			}

			err := queue.EnqueueDirectMessage(h.AsynqClient, queue.DirectMessagePayload{
				RecipientID: messaging.Recipient.ID,
				SenderID:    messaging.Sender.ID,
				Text:        messaging.Message.Text,
			})
			if err != nil {
				slog.Error("failed to enqueue DM reply", "error", err)
			}
		}
	}

	return c.SendStatus(fiber.StatusOK)
}
