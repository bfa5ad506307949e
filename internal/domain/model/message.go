package model

import "time"

// Message ordering inside a match is by Seq, assigned monotonically at
// append time. SentAt is informational and may collide under load.
type Message struct {
	ID       string    `json:"id"`
	MatchID  int64     `json:"match_id"`
	SenderID int64     `json:"sender_id"`
	Body     string    `json:"body"`
	Seq      int64     `json:"seq"`
	SentAt   time.Time `json:"sent_at"`
}
