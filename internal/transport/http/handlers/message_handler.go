package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	chatsvc "github.com/Awkwardd-code/Swipe/internal/services/chat"
	"github.com/Awkwardd-code/Swipe/internal/transport/http/dto"
	httperrors "github.com/Awkwardd-code/Swipe/internal/transport/http/errors"
)

type MessageHandler struct {
	service *chatsvc.Service
}

func NewMessageHandler(service *chatsvc.Service) *MessageHandler {
	return &MessageHandler{service: service}
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	var req dto.SendMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if req.MatchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "match_id is required")
		return
	}

	msg, err := h.service.Append(r.Context(), identity.UserID, req.MatchID, req.Body)
	if err != nil {
		handleChatError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, messageResponse(msg.ID, msg.MatchID, msg.SenderID, msg.Body, msg.Seq, msg.SentAt))
}

func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CHAT_SERVICE_UNAVAILABLE", "chat service is unavailable")
		return
	}

	query := r.URL.Query()
	matchID, err := strconv.ParseInt(strings.TrimSpace(query.Get("match_id")), 10, 64)
	if err != nil || matchID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "match_id must be a positive integer")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	order := chatsvc.OrderNewestFirst
	switch strings.TrimSpace(query.Get("order")) {
	case "", "newest":
	case "oldest":
		order = chatsvc.OrderOldestFirst
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "order must be \"newest\" or \"oldest\"")
		return
	}

	page, err := h.service.History(r.Context(), chatsvc.HistoryQuery{
		RequesterID: identity.UserID,
		MatchID:     matchID,
		Cursor:      query.Get("cursor"),
		Limit:       limit,
		Order:       order,
	})
	if err != nil {
		handleChatError(w, err)
		return
	}

	items := make([]dto.MessageResponse, 0, len(page.Messages))
	for _, msg := range page.Messages {
		items = append(items, messageResponse(msg.ID, msg.MatchID, msg.SenderID, msg.Body, msg.Seq, msg.SentAt))
	}

	httperrors.Write(w, http.StatusOK, dto.MessageListResponse{
		Messages:   items,
		NextCursor: page.NextCursor,
	})
}

func handleChatError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, chatsvc.ErrEmptyBody):
		writeBadRequest(w, "EMPTY_BODY", "message body is empty")
	case errors.Is(err, chatsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid message request")
	case errors.Is(err, chatsvc.ErrInvalidCursor):
		writeBadRequest(w, "VALIDATION_ERROR", "invalid cursor")
	case errors.Is(err, chatsvc.ErrNotAMatch):
		writeForbidden(w, "NOT_A_MATCH", "you are not part of this match")
	case errors.Is(err, chatsvc.ErrMatchNotFound):
		writeNotFound(w, "NOT_FOUND", "match not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to process message request")
	}
}

func messageResponse(id string, matchID, senderID int64, body string, seq int64, sentAt time.Time) dto.MessageResponse {
	return dto.MessageResponse{
		ID:       id,
		MatchID:  matchID,
		SenderID: senderID,
		Body:     body,
		Seq:      seq,
		SentAt:   sentAt,
	}
}
