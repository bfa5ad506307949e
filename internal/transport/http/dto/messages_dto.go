package dto

import "time"

type SendMessageRequest struct {
	MatchID int64  `json:"match_id"`
	Body    string `json:"body"`
}

type MessageResponse struct {
	ID       string    `json:"id"`
	MatchID  int64     `json:"match_id"`
	SenderID int64     `json:"sender_id"`
	Body     string    `json:"body"`
	Seq      int64     `json:"seq"`
	SentAt   time.Time `json:"sent_at"`
}

type MessageListResponse struct {
	Messages   []MessageResponse `json:"messages"`
	NextCursor string            `json:"next_cursor,omitempty"`
}
