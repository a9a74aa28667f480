package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prperemyshlev/identity-sync-service/internal/config"
	"github.com/prperemyshlev/identity-sync-service/internal/handler"
	"github.com/prperemyshlev/identity-sync-service/internal/identity"
	"github.com/prperemyshlev/identity-sync-service/internal/repository"
	"github.com/prperemyshlev/identity-sync-service/internal/service"
	"github.com/prperemyshlev/identity-sync-service/internal/utils"
	"github.com/prperemyshlev/identity-sync-service/internal/webhook"
	"github.com/prperemyshlev/identity-sync-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	serviceName     = "identity-sync-service"
	shutdownTimeout = 5 * time.Second
)

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

type handlers struct {
	user    *handler.UserHandler
	me      *handler.MeHandler
	admin   *handler.AdminHandler
	webhook *handler.WebhookHandler
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	logger := infra.Logger()

	sealer, err := utils.NewSealer(cfg.Security.CredentialsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create credentials sealer: %w", err)
	}

	verifier, err := identity.NewJWKSVerifier(identity.Config{
		JWKSURL:           cfg.Clerk.JWKSURL,
		SecretKey:         cfg.Clerk.SecretKey,
		Issuer:            cfg.Clerk.Issuer,
		AuthorizedParties: cfg.Clerk.AuthorizedParties,
		CacheTTL:          cfg.Clerk.JWKSCacheTTL.Duration,
		ClockSkew:         cfg.Clerk.ClockSkew.Duration,
		Timeout:           cfg.Clerk.VerifyTimeout.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}

	authenticator, err := webhook.NewAuthenticator(cfg.Clerk.WebhookSecret, cfg.Clerk.WebhookTolerance.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook authenticator: %w", err)
	}

	repos := repository.NewRepositories(infra.Postgres(), sealer)
	validator := utils.NewValidator()

	userService := service.NewUserService(repos.User, repos.UserData)
	adminService := service.NewAdminService(repos.User, repos.UserData)
	synchronizer := service.NewUserSynchronizer(repos.User, logger)
	ledger := service.NewDeliveryLedger(infra.Redis(), cfg.Security.WebhookDedupTTL.Duration)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	h := handlers{
		user:  handler.NewUserHandler(userService, validator, logger),
		me:    handler.NewMeHandler(userService, logger),
		admin: handler.NewAdminHandler(adminService, validator, logger),
		webhook: handler.NewWebhookHandler(
			authenticator,
			webhook.NewDispatcher(synchronizer, logger),
			ledger,
			infra.Metrics(),
			logger,
		),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, h, verifier, rateLimiter, healthChecker, infra)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	h handlers,
	verifier identity.Verifier,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	infra Infrastructure,
) {
	router.GET("/metrics", observability.PrometheusHandler(infra.MetricsHandler()))
	router.GET("/health", healthChecker.Handler)

	// Webhooks authenticate by signature, not by session token
	router.POST("/webhooks/clerk", h.webhook.HandleClerk)

	api := router.Group("/api/v1",
		handler.RateLimitMiddleware(
			rateLimiter,
			cfg.Security.RateLimitRequests,
			cfg.Security.RateLimitWindow.Duration,
			handler.IPBasedKey,
			infra.Logger(),
		),
		handler.AuthMiddleware(verifier, infra.Metrics(), infra.Logger()),
	)
	{
		api.GET("/me", h.me.GetMe)

		users := api.Group("/users")
		{
			users.POST("", h.user.Create)
			users.GET("", h.user.List)
			users.GET("/email/:email/userdata", h.user.UserDataByEmail)
			users.GET("/:id", h.user.Get)
			users.PATCH("/:id", h.user.Update)
			users.DELETE("/:id", h.user.Delete)
		}

		admin := api.Group("/admin", handler.RequireClaims())
		{
			admin.GET("/users/count", h.admin.CountUsers)
			admin.POST("/user-data", h.admin.CreateUserData)
			admin.POST("/user-data/by-email", h.admin.CreateUserDataByEmail)
			admin.GET("/user-data", h.admin.ListUserData)
			admin.GET("/user-data/:id", h.admin.GetUserData)
			admin.PATCH("/user-data/:id", h.admin.UpdateUserData)
			admin.DELETE("/user-data/:id", h.admin.DeleteUserData)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	// Drain in-flight requests before closing the pools they use
	if err := a.server.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("HTTP server shutdown failed", zap.Error(err))
		return errors.Join(err, a.infra.Shutdown(ctx))
	}

	if err := a.infra.Shutdown(ctx); err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
