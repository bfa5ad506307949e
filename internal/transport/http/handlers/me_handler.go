package handlers

import (
	"net/http"

	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	"github.com/Awkwardd-code/Swipe/internal/transport/http/dto"
	httperrors "github.com/Awkwardd-code/Swipe/internal/transport/http/errors"
)

type MeHandler struct {
	service *authsvc.Service
}

func NewMeHandler(service *authsvc.Service) *MeHandler {
	return &MeHandler{service: service}
}

func (h *MeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	user, err := h.service.Me(r.Context(), identity.UserID)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		Email:            user.Email,
		Age:              user.Age,
		Gender:           string(user.Gender),
		GenderPreference: string(user.GenderPreference),
		CreatedAt:        user.CreatedAt,
	})
}
