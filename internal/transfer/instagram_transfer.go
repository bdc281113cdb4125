package transfer

type InstagramCredentials struct {
	InstagramID int64  `json:"instagram_id"`
	AccessToken string `json:"access_token"`
}

type InstagramErrorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode"`
		IsTransient  bool   `json:"is_transient"`
		ErrorUserMsg string `json:"error_user_msg"`
		FbtraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// Webhook payload shapes for inbound Instagram messaging events.

type WebhookSender struct {
	ID string `json:"id"`
}

type WebhookRecipient struct {
	ID string `json:"id"`
}

type WebhookMessage struct {
	MID  string `json:"mid"`
	Text string `json:"text"`
}

type WebhookMessaging struct {
	Sender    WebhookSender    `json:"sender"`
	Recipient WebhookRecipient `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *WebhookMessage  `json:"message"`
}

type WebhookEntry struct {
	ID        string             `json:"id"`
	Time      int64              `json:"time"`
	Messaging []WebhookMessaging `json:"messaging"`
}

type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}
