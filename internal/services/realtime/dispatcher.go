package realtime

import (
	"time"

	"go.uber.org/zap"

	"github.com/Awkwardd-code/Swipe/internal/domain/model"
)

const (
	EventMatchCreated = "match_created"
	EventMessageSent  = "message_sent"
)

type MatchPayload struct {
	MatchID   int64     `json:"match_id"`
	PartnerID int64     `json:"partner_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MessagePayload struct {
	MessageID string    `json:"message_id"`
	MatchID   int64     `json:"match_id"`
	SenderID  int64     `json:"sender_id"`
	Body      string    `json:"body"`
	Seq       int64     `json:"seq"`
	SentAt    time.Time `json:"sent_at"`
}

// Dispatcher turns committed domain events into hub pushes. It is called
// after the owning transaction commits, so delivery failures never reach
// the caller.
type Dispatcher struct {
	hub    *Hub
	logger *zap.Logger
}

func NewDispatcher(hub *Hub, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Dispatcher{hub: hub, logger: logger}
}

// MatchCreated tells both participants about their new match. Each side
// sees the other as the partner.
func (d *Dispatcher) MatchCreated(match model.Match) {
	if d.hub == nil {
		return
	}

	for _, userID := range []int64{match.UserAID, match.UserBID} {
		d.hub.SendToUser(userID, Event{
			Type: EventMatchCreated,
			Payload: MatchPayload{
				MatchID:   match.ID,
				PartnerID: match.PartnerOf(userID),
				CreatedAt: match.CreatedAt,
			},
		})
	}

	d.logger.Debug("dispatched match_created",
		zap.Int64("match_id", match.ID),
		zap.Int64("user_a_id", match.UserAID),
		zap.Int64("user_b_id", match.UserBID),
	)
}

// MessageSent pushes the stored message to both participants, so the
// sender's other devices stay in sync.
func (d *Dispatcher) MessageSent(match model.Match, msg model.Message) {
	if d.hub == nil {
		return
	}

	event := Event{
		Type: EventMessageSent,
		Payload: MessagePayload{
			MessageID: msg.ID,
			MatchID:   msg.MatchID,
			SenderID:  msg.SenderID,
			Body:      msg.Body,
			Seq:       msg.Seq,
			SentAt:    msg.SentAt,
		},
	}

	d.hub.SendToUser(match.UserAID, event)
	d.hub.SendToUser(match.UserBID, event)

	d.logger.Debug("dispatched message_sent",
		zap.Int64("match_id", msg.MatchID),
		zap.String("message_id", msg.ID),
	)
}
