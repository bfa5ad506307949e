package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Awkwardd-code/Swipe/internal/config"
	pgrepo "github.com/Awkwardd-code/Swipe/internal/repo/postgres"
	redrepo "github.com/Awkwardd-code/Swipe/internal/repo/redis"
	authsvc "github.com/Awkwardd-code/Swipe/internal/services/auth"
	catalogsvc "github.com/Awkwardd-code/Swipe/internal/services/catalog"
	chatsvc "github.com/Awkwardd-code/Swipe/internal/services/chat"
	matchsvc "github.com/Awkwardd-code/Swipe/internal/services/matches"
	presencesvc "github.com/Awkwardd-code/Swipe/internal/services/presence"
	ratesvc "github.com/Awkwardd-code/Swipe/internal/services/rate"
	realtimesvc "github.com/Awkwardd-code/Swipe/internal/services/realtime"
	swipesvc "github.com/Awkwardd-code/Swipe/internal/services/swipes"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	postgres   *pgxpool.Pool
	redis      *goredis.Client
	hub        *realtimesvc.Hub
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	r := chi.NewRouter()
	ApplyMiddlewares(r, log)

	var pool *pgxpool.Pool
	if p, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN); err != nil {
		log.Warn("postgres init failed, continuing in degraded mode", zap.Error(err))
	} else {
		pool = p
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	rateRepo := redrepo.NewRateRepo(redisClient)
	presenceRepo := redrepo.NewPresenceRepo(redisClient)
	userRepo := pgrepo.NewUserRepo(pool)
	swipeRepo := pgrepo.NewSwipeRepo(pool)
	matchRepo := pgrepo.NewMatchRepo(pool)
	messageRepo := pgrepo.NewMessageRepo(pool)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	authService := authsvc.NewService(authsvc.Dependencies{
		Users:  userRepo,
		Tokens: jwtManager,
	})
	catalogService := catalogsvc.NewService(userRepo)
	rateLimiter := ratesvc.NewLimiter(
		rateRepo,
		cfg.Limits.SwipesPerMinute,
		cfg.Limits.SwipesPer10Sec,
	)
	presenceService := presencesvc.NewService(presenceRepo, presencesvc.Config{
		HeartbeatTimeout: cfg.Presence.HeartbeatTimeout,
	})
	hub := realtimesvc.NewHub(realtimesvc.Config{
		SendBuffer:   cfg.Realtime.SendBuffer,
		WriteTimeout: cfg.Realtime.WriteTimeout,
	}, log)
	dispatcher := realtimesvc.NewDispatcher(hub, log)

	swipeService := swipesvc.NewService(swipesvc.Dependencies{
		Pool:        pool,
		SwipeStore:  swipeRepo,
		MatchStore:  matchRepo,
		UserStore:   userRepo,
		RateLimiter: rateLimiter,
		Notifier:    dispatcher,
	})
	matchService := matchsvc.NewService(matchRepo)
	chatService := chatsvc.NewService(chatsvc.Dependencies{
		Pool:         pool,
		MatchStore:   matchRepo,
		MessageStore: messageRepo,
		Notifier:     dispatcher,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	RegisterRoutes(r, Dependencies{
		AuthService:     authService,
		JWTManager:      jwtManager,
		CatalogService:  catalogService,
		SwipeService:    swipeService,
		MatchService:    matchService,
		ChatService:     chatService,
		PresenceService: presenceService,
		Hub:             hub,
		Logger:          log,
		Config:          cfg,
	})

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		postgres:   pool,
		redis:      redisClient,
		hub:        hub,
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	a.logger.Info("api server started", zap.String("addr", a.cfg.HTTP.Addr))
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	if a.hub != nil {
		a.hub.Close()
	}
	if a.postgres != nil {
		a.postgres.Close()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}
