package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	catalogsvc "github.com/Awkwardd-code/Swipe/internal/services/catalog"
	"github.com/Awkwardd-code/Swipe/internal/transport/http/dto"
	httperrors "github.com/Awkwardd-code/Swipe/internal/transport/http/errors"
)

type CandidateHandler struct {
	service *catalogsvc.Service
}

func NewCandidateHandler(service *catalogsvc.Service) *CandidateHandler {
	return &CandidateHandler{service: service}
}

func (h *CandidateHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "CATALOG_SERVICE_UNAVAILABLE", "catalog service is unavailable")
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

	candidates, err := h.service.Candidates(r.Context(), identity.UserID, limit)
	if err != nil {
		switch {
		case errors.Is(err, catalogsvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "invalid candidates request")
		case errors.Is(err, catalogsvc.ErrViewerGone):
			writeUnauthorized(w, "UNAUTHORIZED", "account no longer exists")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to load candidates")
		}
		return
	}

	items := make([]dto.UserResponse, 0, len(candidates))
	for _, c := range candidates {
		items = append(items, dto.UserResponse{
			ID:     c.ID,
			Name:   c.Name,
			Age:    c.Age,
			Gender: string(c.Gender),
		})
	}

	httperrors.Write(w, http.StatusOK, dto.CandidateListResponse{Candidates: items})
}
