package queue

import (
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"
)

func EnqueueDirectMessage(asynqClient *asynq.Client, payload DirectMessagePayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeDirectMessageReply, taskPayload)

	_, err = asynqClient.Enqueue(task)
	if err != nil {
		return err
	}

	slog.Info("DM reply task enqueued", "recipient_id", payload.RecipientID, "sender_id", payload.SenderID)
	return nil
}
