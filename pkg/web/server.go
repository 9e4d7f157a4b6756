// Package web serves the CivicLink HTTP API with echo.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"civiclink/pkg/api/auth"
	"civiclink/pkg/api/repository"
	"civiclink/pkg/api/service"
	"civiclink/pkg/config"
	"civiclink/pkg/log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

const bodyLimit = "10M"

type Server struct {
	cfg          *config.Config
	echo         *echo.Echo
	users        repository.Users
	tokens       *auth.Tokens
	claims       *service.ClaimService
	translations *service.TranslationService
	accounts     *service.AccountService
	metrics      *Metrics
	limiter      *RateLimiter
}

func NewServer(cfg *config.Config, repo repository.Repository, opts ...service.Option) (*Server, error) {
	metrics, err := NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("error creating metrics, %w", err)
	}

	tokens := auth.NewTokens(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	directory := service.NewDirectory(repo)

	s := &Server{
		cfg:          cfg,
		echo:         echo.New(),
		users:        repo,
		tokens:       tokens,
		claims:       service.NewClaimService(repo, directory, opts...),
		translations: service.NewTranslationService(repo, directory, opts...),
		accounts:     service.NewAccountService(repo, tokens, opts...),
		metrics:      metrics,
		limiter:      NewRateLimiter(cfg.Server.RateLimit.Requests, cfg.Server.RateLimit.Window),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.HTTPErrorHandler = s.handleError

	s.configureMiddleware()
	s.routes()

	return s, nil
}

func (s *Server) configureMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(s.observe)
	s.echo.Use(middleware.Secure())
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{s.cfg.Server.FrontendURL},
		AllowCredentials: true,
	}))
	s.echo.Use(s.limiter.Middleware())
	s.echo.Use(middleware.BodyLimit(bodyLimit))
}

func (s *Server) routes() {
	s.echo.GET("/health", s.healthHandler)
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))

	api := s.echo.Group("/api")

	claims := api.Group("/claims")
	claims.GET("", s.listClaimsHandler)
	claims.GET("/trending", s.trendingClaimsHandler)
	claims.GET("/:id", s.getClaimHandler)
	claims.POST("", s.submitClaimHandler, s.authenticate)
	claims.PUT("/:id/review", s.reviewClaimHandler, s.authenticate)
	claims.POST("/:id/feedback", s.claimFeedbackHandler, s.authenticate)
	claims.POST("/:id/share", s.shareClaimHandler)

	translations := api.Group("/translations")
	translations.GET("", s.listTranslationsHandler)
	translations.GET("/categories", s.translationCategoriesHandler)
	translations.GET("/stats/overview", s.translationStatsHandler)
	translations.GET("/:id", s.getTranslationHandler)
	translations.POST("", s.createTranslationHandler, s.authenticate)
	translations.PUT("/:id/verify", s.verifyTranslationHandler, s.authenticate)
	translations.POST("/:id/feedback", s.translationFeedbackHandler, s.authenticate)

	accounts := api.Group("/auth")
	accounts.POST("/register", s.registerHandler)
	accounts.POST("/login", s.loginHandler)
	accounts.GET("/me", s.meHandler, s.authenticate)
	accounts.PUT("/profile", s.updateProfileHandler, s.authenticate)
	accounts.POST("/change-password", s.changePasswordHandler, s.authenticate)

	api.GET("/help/languages", s.languagesHandler)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves until the server is shut down
func (s *Server) Start() error {
	address := fmt.Sprintf(":%d", s.cfg.Server.Port)
	log.Logger().Rawf(log.Notice, "civiclink api listening on %s", address)

	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
