package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdesk/internal/domain/audit"
	"hrdesk/internal/domain/auth"
	"hrdesk/internal/domain/contact"
	"hrdesk/internal/domain/directory"
	"hrdesk/internal/domain/evaluation"
	"hrdesk/internal/domain/notifications"
	"hrdesk/internal/platform/config"
	cryptoutil "hrdesk/internal/platform/crypto"
	"hrdesk/internal/platform/db"
	"hrdesk/internal/platform/email"
	"hrdesk/internal/platform/metrics"
	"hrdesk/internal/transport/http/api"
	audithandler "hrdesk/internal/transport/http/handlers/audit"
	authhandler "hrdesk/internal/transport/http/handlers/auth"
	contacthandler "hrdesk/internal/transport/http/handlers/contact"
	directoryhandler "hrdesk/internal/transport/http/handlers/directory"
	evaluationhandler "hrdesk/internal/transport/http/handlers/evaluation"
	notificationshandler "hrdesk/internal/transport/http/handlers/notifications"
	"hrdesk/internal/transport/http/middleware"
)

// Run wires the whole application together and blocks serving HTTP.
func Run() error {
	ctx := context.Background()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, "migrations"); err != nil {
			return err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			return err
		}
	}

	cryptoSvc, err := cryptoutil.New(cfg.DataEncryptionKey)
	if err != nil {
		return err
	}

	mailer := email.New(cfg)

	directoryService := directory.NewService(directory.NewStore(pool))
	notificationsService := notifications.New(notifications.NewStore(pool), mailer)
	evaluationService := evaluation.NewService(evaluation.NewStore(pool), directoryService, notificationsService)
	contactService := contact.NewService(pool, mailer, cfg.ContactInbox)
	auditService := audit.New(pool)
	authStore := auth.NewStore(pool)

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New()
	}

	authHandler := authhandler.NewHandler(authStore, cfg.JWTSecret, cfg.TokenTTL, cryptoSvc)
	directoryHandler := directoryhandler.NewHandler(directoryService)
	evaluationHandler := evaluationhandler.NewHandler(evaluationService, auditService)
	notificationsHandler := notificationshandler.NewHandler(notificationsService)
	contactHandler := contacthandler.NewHandler(contactService)
	auditHandler := audithandler.NewHandler(auditService)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(collector))
	router.Use(middleware.Auth(cfg.JWTSecret))
	router.Use(middleware.SensitiveMutationRateLimit(cfg.AuthRatePerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		pingCtx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			api.Fail(w, http.StatusServiceUnavailable, "not_ready", "database unreachable", middleware.GetRequestID(r.Context()))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if collector != nil {
		router.With(middleware.RequireRole(auth.RoleAdmin)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, collector.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", authHandler.HandleLogin)
		r.Post("/auth/request-reset", authHandler.HandleRequestReset)
		r.Post("/auth/reset", authHandler.HandleResetPassword)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Post("/auth/logout", authHandler.HandleLogout)
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/auth/mfa/setup", authHandler.HandleMFASetup)
			r.Post("/auth/mfa/enable", authHandler.HandleMFAEnable)
			r.Post("/auth/mfa/disable", authHandler.HandleMFADisable)
		})

		directoryHandler.RegisterRoutes(r)
		evaluationHandler.RegisterRoutes(r)
		notificationsHandler.RegisterRoutes(r)
		contactHandler.RegisterRoutes(r)
		auditHandler.RegisterRoutes(r)
	})

	slog.Info("server listening", "addr", cfg.Addr, "env", cfg.Environment)
	return http.ListenAndServe(cfg.Addr, router)
}
