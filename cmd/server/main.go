package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/quotedesk/internal/auth"
	"github.com/Simplici0/quotedesk/internal/config"
	"github.com/Simplici0/quotedesk/internal/db"
	"github.com/Simplici0/quotedesk/internal/logging"
	"github.com/Simplici0/quotedesk/internal/migrations"
	"github.com/Simplici0/quotedesk/internal/quoting"
	"github.com/Simplici0/quotedesk/internal/seed"
	"github.com/Simplici0/quotedesk/internal/store"
)

type server struct {
	store             *store.Store
	quotes            *quoting.Service
	signer            *auth.Signer
	logger            *zap.Logger
	defaultCommission decimal.Decimal
}

func newServer(st *store.Store, signer *auth.Signer, logger *zap.Logger, defaultCommission decimal.Decimal) *server {
	return &server{
		store:             st,
		quotes:            quoting.NewService(st, logger.Named("quoting")),
		signer:            signer,
		logger:            logger,
		defaultCommission: defaultCommission,
	}
}

func main() {
	cfg := config.Load()

	logger, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	for _, warning := range cfg.Warnings() {
		logger.Warn("configuration incomplete", zap.String("detail", warning))
	}

	ctx := context.Background()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	if cfg.IsDev() {
		if err := migrations.Up(ctx, database, logger.Named("migrations")); err != nil {
			logger.Fatal("failed to run database migrations", zap.Error(err))
		}
	}

	stats, err := seed.Run(ctx, database, seed.Config{
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		logger.Fatal("failed to seed database", zap.Error(err))
	}
	logger.Info("seed complete", zap.Int("inserts", stats.Inserts))

	srv := newServer(store.New(database), auth.NewSigner(cfg.SessionSecret), logger, cfg.DefaultCommissionRate)

	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)
	r.Get("/q/{ref}", s.handleCustomerQuote)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/categories", s.handleCategoriesList)
		r.With(s.requirePrivileged).Post("/categories", s.handleCategoryCreate)
		r.With(s.requirePrivileged).Put("/categories/{id}", s.handleCategoryUpdate)
		r.Get("/agents", s.handleAgentsList)

		r.Post("/pricing/preview", s.handlePricingPreview)

		r.Get("/quotes", s.handleQuotesList)
		r.Post("/quotes", s.handleQuoteCreate)
		r.Get("/quotes/{id}", s.handleQuoteDetail)
		r.Get("/quotes/{id}/text", s.handleQuoteText)
		r.Post("/quotes/{id}/items", s.handleItemCreate)
		r.Put("/quotes/{id}/items/{itemID}", s.handleItemUpdate)
		r.Delete("/quotes/{id}/items/{itemID}", s.handleItemDelete)
	})

	return r
}

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := db.Ping(r.Context(), s.store.DB()); err != nil {
		s.logger.Error("health check failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
