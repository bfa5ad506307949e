package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	matchsvc "github.com/Awkwardd-code/Swipe/internal/services/matches"
	presencesvc "github.com/Awkwardd-code/Swipe/internal/services/presence"
	"github.com/Awkwardd-code/Swipe/internal/transport/http/dto"
	httperrors "github.com/Awkwardd-code/Swipe/internal/transport/http/errors"
)

type MatchesHandler struct {
	service  *matchsvc.Service
	presence *presencesvc.Service
}

func NewMatchesHandler(service *matchsvc.Service, presence *presencesvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service, presence: presence}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MATCH_SERVICE_UNAVAILABLE", "match service is unavailable")
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	views, err := h.service.List(r.Context(), identity.UserID, limit)
	if err != nil {
		if errors.Is(err, matchsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid matches request")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to load matches")
		return
	}

	items := make([]dto.MatchResponse, 0, len(views))
	for _, view := range views {
		online := false
		if h.presence != nil {
			// a failed lookup leaves the flag false
			if isOnline, err := h.presence.IsOnline(r.Context(), view.Partner.ID); err == nil {
				online = isOnline
			}
		}
		items = append(items, dto.MatchResponse{
			MatchID:   view.Match.ID,
			CreatedAt: view.Match.CreatedAt,
			Partner: dto.MatchPartnerResponse{
				ID:     view.Partner.ID,
				Name:   view.Partner.Name,
				Age:    view.Partner.Age,
				Gender: string(view.Partner.Gender),
				Online: online,
			},
		})
	}

	httperrors.Write(w, http.StatusOK, dto.MatchListResponse{Matches: items})
}
