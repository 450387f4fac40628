package router

import (
	"go-account-api/handler"
	"go-account-api/logger"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "go-account-api/docs"
)

// Dependencies are the handlers and collaborators the router mounts.
// Nil handlers leave their routes unmounted.
type Dependencies struct {
	Registration   *handler.RegistrationHandler
	Auth           *handler.AuthHandler
	Health         *handler.HealthHandler
	Responder      handler.ErrorResponder
	Tokens         handler.TokenParser
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(handler.RecoverMiddleware(deps.Responder))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(handler.SessionMiddleware)

	r.NotFound(handler.NotFound(deps.Responder))
	r.MethodNotAllowed(handler.MethodNotAllowed(deps.Responder))

	r.Get("/health", handler.HealthCheck)
	if deps.Health != nil {
		r.Get("/ready", handler.ErrorHandlingMiddleware(deps.Responder, deps.Health.Ready))
	}
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(handler.OptionalAuth(deps.Tokens))

		if deps.Registration != nil {
			r.Post("/register", handler.ErrorHandlingMiddleware(deps.Responder, deps.Registration.Register))
		}
		if deps.Auth != nil {
			r.Post("/login", handler.ErrorHandlingMiddleware(deps.Responder, deps.Auth.Login))
			r.Post("/activate", handler.ErrorHandlingMiddleware(deps.Responder, deps.Auth.Activate))
			r.Get("/captcha", handler.ErrorHandlingMiddleware(deps.Responder, deps.Auth.Captcha))
			r.Get("/alerts", handler.ErrorHandlingMiddleware(deps.Responder, deps.Auth.Alerts))
		}
	})

	if deps.Auth != nil {
		r.Group(func(r chi.Router) {
			r.Use(handler.AuthMiddleware(deps.Tokens, deps.Responder))
			r.Get("/csrf-token", handler.ErrorHandlingMiddleware(deps.Responder, deps.Auth.CSRFToken))
		})
	}

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Log.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Info("Request handled")
	})
}
