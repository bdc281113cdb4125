package queue

import (
	config "instapilot/configs"
	"instapilot/internal/repository"
	"instapilot/internal/service"
)

type Queue struct {
	cfg config.Config
	ia  repository.InstagramAccountRepository
	wc  repository.ContextRepository
	or  service.OpenRouterService
	ig  service.InstagramService
}

func NewQueue(
	cfg config.Config,
	ia repository.InstagramAccountRepository,
	wc repository.ContextRepository,
	or service.OpenRouterService,
	ig service.InstagramService) *Queue {
	return &Queue{
		cfg: cfg,
		ia:  ia,
		wc:  wc,
		or:  or,
		ig:  ig,
	}
}

const TaskTypeDirectMessageReply = "dm:reply"

type DirectMessagePayload struct {
	RecipientID string `json:"recipient_id"`
	SenderID    string `json:"sender_id"`
	Text        string `json:"text"`
}
