package apiapp

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Awkwardd-code/Swipe/internal/config"
	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	catalogsvc "github.com/Awkwardd-code/Swipe/internal/services/catalog"
	chatsvc "github.com/Awkwardd-code/Swipe/internal/services/chat"
	matchsvc "github.com/Awkwardd-code/Swipe/internal/services/matches"
	presencesvc "github.com/Awkwardd-code/Swipe/internal/services/presence"
	realtimesvc "github.com/Awkwardd-code/Swipe/internal/services/realtime"
	swipesvc "github.com/Awkwardd-code/Swipe/internal/services/swipes"
	"github.com/Awkwardd-code/Swipe/internal/transport/http/handlers"
)

type Dependencies struct {
	AuthService     *authsvc.Service
	JWTManager      *authsvc.JWTManager
	CatalogService  *catalogsvc.Service
	SwipeService    *swipesvc.Service
	MatchService    *matchsvc.Service
	ChatService     *chatsvc.Service
	PresenceService *presencesvc.Service
	Hub             *realtimesvc.Hub
	Logger          *zap.Logger
	Config          config.Config
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.AuthService)
	healthHandler := handlers.NewHealthHandler()
	meHandler := handlers.NewMeHandler(deps.AuthService)
	candidateHandler := handlers.NewCandidateHandler(deps.CatalogService)
	swipeHandler := handlers.NewSwipeHandler(deps.SwipeService)
	matchesHandler := handlers.NewMatchesHandler(deps.MatchService, deps.PresenceService)
	messageHandler := handlers.NewMessageHandler(deps.ChatService)
	wsHandler := handlers.NewWSHandler(
		deps.JWTManager,
		deps.Hub,
		deps.PresenceService,
		deps.Config.Presence.HeartbeatTimeout,
		deps.Logger,
	)
	authMW := AuthMiddleware(deps.JWTManager, deps.Logger)

	r.Get("/healthz", healthHandler.Get)
	r.Get("/ws", wsHandler.Handle)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		r.With(authMW).Get("/me", meHandler.Handle)
		r.With(authMW).Get("/candidates", candidateHandler.Handle)
		r.With(authMW).Post("/swipes", swipeHandler.Handle)
		r.With(authMW).Get("/matches", matchesHandler.Handle)
		r.With(authMW).Get("/messages", messageHandler.History)
		r.With(authMW).Post("/messages", messageHandler.Send)
	})
}
