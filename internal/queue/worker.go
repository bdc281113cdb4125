package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/hibiken/asynq"

	"instapilot/pkg/utils"
)

func (q *Queue) HandleDirectMessageTask(ctx context.Context, task *asynq.Task) error {
	var payload DirectMessagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	// Business failures are logged and dropped rather than returned:
	// retrying a DM reply minutes later is worse than not answering.
	if err := q.replyToMessage(ctx, payload); err != nil {
		slog.Error("failed to reply to DM",
			"recipient_id", payload.RecipientID,
			"sender_id", payload.SenderID,
			"error", err)
	}
	return nil
}

func (q *Queue) replyToMessage(ctx context.Context, payload DirectMessagePayload) error {
	instagramID, err := strconv.ParseInt(payload.RecipientID, 10, 64)
	if err != nil {
		slog.Info("webhook recipient id is not numeric, ignoring", "recipient_id", payload.RecipientID)
		return nil
	}

	userID, found, err := q.ia.GetUserIDByInstagramID(ctx, instagramID)
	if err != nil {
		return err
	}
	if !found {
		slog.Info("no user for instagram id, ignoring message", "instagram_id", instagramID)
		return nil
	}

	var systemContext string
	if wiki, err := q.wc.Get(ctx, userID); err == nil && wiki != nil {
		systemContext = wiki.Content
	}

	reply, err := q.or.GenerateReply(ctx, payload.Text, systemContext)
	if err != nil {
		return err
	}

	account, err := q.ia.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if account == nil {
		slog.Info("instagram account removed before reply could be sent", "user_id", userID)
		return nil
	}

	accessToken, err := utils.Decrypt(account.AccessToken, []byte(q.cfg.EncryptionKey))
	if err != nil {
		return err
	}

	return q.ig.SendMessage(ctx, account.InstagramID, accessToken, payload.SenderID, reply)
}
