package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/freelancehub/auth-service/docs"
	"github.com/freelancehub/auth-service/internal/api/handler"
	"github.com/freelancehub/auth-service/internal/api/middleware"
	"github.com/freelancehub/auth-service/internal/core/domain"
	"github.com/freelancehub/auth-service/internal/core/ports"
	"github.com/freelancehub/auth-service/internal/core/service"
	"github.com/freelancehub/auth-service/internal/infrastructure/config"
	mongodb "github.com/freelancehub/auth-service/internal/infrastructure/db/mongo"
	redisdb "github.com/freelancehub/auth-service/internal/infrastructure/db/redis"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	mailer ports.Mailer,
	dispatch ports.MailDispatcher,
	cfg *config.Config,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("auth"))

	// --- Dependencies ---
	accountRepo := mongodb.NewAccountRepository(db)
	hasher := service.NewPasswordHasher(cfg.Auth.HashConcurrency)
	minter := service.NewTokenMinter(cfg.JWTSecret, cfg.JWTTTL)
	resetTokens := service.NewResetTokenManager(cfg.Auth.ResetTokenTTL, cfg.Auth.VerifyTokenTTL)
	throttle := redisdb.NewResetThrottle(rdb, cfg.Auth.ResetRequestLimit, cfg.Auth.ResetRequestWindow)

	authService := service.NewAuthService(
		accountRepo, hasher, minter, resetTokens,
		mailer, dispatch, throttle, log,
		service.AuthPolicy{
			MaxLoginAttempts: cfg.Auth.MaxLoginAttempts,
			LockoutDuration:  cfg.Auth.LockoutDuration,
			ResetURLBase:     cfg.AppBaseURL + "/reset-password",
			VerifyURLBase:    cfg.AppBaseURL + "/verify-email",
		},
	)

	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(minter)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/forgot-password", authHandler.ForgotPassword)
	e.PUT("/auth/reset-password/:token", authHandler.ResetPassword)
	e.GET("/auth/verify-email/:token", authHandler.VerifyEmail)
	e.GET("/auth/me", authHandler.Me,
		authMiddleware,
		middleware.RequireRole(domain.RoleClient, domain.RoleFreelancer))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
