// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-account-api/config"
	"go-account-api/db"
	"go-account-api/errorhandler"
	"go-account-api/handler"
	"go-account-api/logger"
	"go-account-api/metrics"
	"go-account-api/repository"
	"go-account-api/router"
	"go-account-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

// App is the wired application.
type App struct {
	DB       *sql.DB
	Redis    *redis.Client
	Router   http.Handler
	Registry *prometheus.Registry
}

// New wires every layer on top of open database and redis connections.
func New(cfg *config.Config, database *sql.DB, rdb *redis.Client) (*App, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	hasher, err := service.NewPasswordHasher(cfg.Security.PasswordHash, cfg.Security.BcryptCost)
	if err != nil {
		return nil, err
	}

	// Repositories
	tokenRepo := repository.NewTokenRepository(database)
	userRepo := repository.NewUserRepository(database, tokenRepo)
	sessionRepo := repository.NewSessionRepository(rdb)

	// Services
	tokenService := service.NewTokenService(cfg.JWT.SecretKey, cfg.JWT.TTL)
	csrfGuard := service.NewCSRFGuard(cfg.CSRF.SecretKey)
	registrationService := service.NewRegistrationService(userRepo, hasher, cfg.Registration, service.LogNotifier{}, m)
	authService := service.NewAuthService(userRepo, tokenService)

	// Error pipeline
	classifier := errorhandler.NewClassifier(errorhandler.DefaultHandlerType)
	if err := handler.RegisterErrorHandlers(classifier); err != nil {
		return nil, fmt.Errorf("failed to register error handlers: %w", err)
	}
	responder := errorhandler.NewResponder(classifier, errorhandler.Options{
		Debug:      cfg.Server.Debug,
		DebugAsync: cfg.Server.DebugAsync,
		Negotiator: errorhandler.NewAcceptNegotiator(),
		Alerts:     handler.NewSessionAlertPublisher(sessionRepo),
		Metrics:    m,
	})

	// Handlers
	registrationHandler := handler.NewRegistrationHandler(registrationService, sessionRepo, csrfGuard, service.CaptchaChecker{})
	authHandler := handler.NewAuthHandler(authService, sessionRepo, csrfGuard)
	healthHandler := handler.NewHealthHandler(map[string]handler.Pinger{
		"postgres": database.PingContext,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})

	r := router.NewRouter(router.Dependencies{
		Registration:   registrationHandler,
		Auth:           authHandler,
		Health:         healthHandler,
		Responder:      responder,
		Tokens:         tokenService,
		Gatherer:       registry,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	return &App{DB: database, Redis: rdb, Router: r, Registry: registry}, nil
}

// Run connects to the backing stores, serves HTTP and shuts down gracefully
// on SIGINT or SIGTERM.
func Run(cfg *config.Config) error {
	database, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	rdb, err := db.ConnectRedis(cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	a, err := New(cfg, database, rdb)
	if err != nil {
		return err
	}

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Log.Info("Server exited properly")
	return nil
}
