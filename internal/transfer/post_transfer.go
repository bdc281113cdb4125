package transfer

import "time"

type CreatePostRequest struct {
	CreationID string `json:"creation_id"`
	Caption    string `json:"caption"`
	ImageURL   string `json:"image_url"`
}

type PreparePostRequest struct {
	Caption   string   `json:"caption"`
	ImageURLs []string `json:"image_urls"`
}

type PreparePostResponse struct {
	PostID     string `json:"post_id"`
	ImageURL   string `json:"image_url"`
	Caption    string `json:"caption"`
	CreationID string `json:"creation_id"`
}

type SchedulePostRequest struct {
	PostID      string    `json:"post_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

type PublishPostRequest struct {
	PostID string `json:"post_id"`
}

type ContextRequest struct {
	Content string `json:"content"`
}
