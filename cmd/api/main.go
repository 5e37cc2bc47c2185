// Package main is the entrypoint for the Keydesk admin panel.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/keydesk/keydesk/internal/cache"
	"github.com/keydesk/keydesk/internal/config"
	"github.com/keydesk/keydesk/internal/handler"
	"github.com/keydesk/keydesk/internal/metrics"
	"github.com/keydesk/keydesk/internal/middleware"
	"github.com/keydesk/keydesk/internal/repository"
	"github.com/keydesk/keydesk/internal/server"
	"github.com/keydesk/keydesk/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := repository.Migrate(cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("database schema up to date")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL, repository.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewPrometheus(registry)
	pool := repo.Pool()
	metrics.RegisterPoolStats(registry,
		func() int32 { return pool.Stat().AcquiredConns() },
		func() int32 { return pool.Stat().IdleConns() },
		func() int32 { return pool.Stat().MaxConns() },
	)

	accounts := service.NewAccountService(repo, cacheClient, cfg.SessionTTL, recorder)
	keys := service.NewKeyService(repo, recorder)

	r := setupRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		recorder: recorder,
		sessions: cacheClient,
		limiter:  cacheClient,
		health:   handler.NewHealthHandler(logger, repo, cacheClient),
		pages:    handler.NewPageHandler(logger),
		auth: handler.NewAuthHandler(accounts, handler.CookieConfig{
			Name:   cfg.SessionCookieName,
			Secure: cfg.SessionCookieSecure,
			TTL:    cfg.SessionTTL,
		}, logger),
		users:   handler.NewUserHandler(keys, logger),
		metrics: handler.NewMetricsHandler(registry),
	})

	srv := server.New(r, server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// LIFO: Redis closes before the database pool.
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"session_ttl", cfg.SessionTTL.String(),
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routerDeps struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	sessions middleware.SessionLookup
	limiter  middleware.LoginLimiter
	health   *handler.HealthHandler
	pages    *handler.PageHandler
	auth     *handler.AuthHandler
	users    *handler.UserHandler
	metrics  http.Handler
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(d routerDeps) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	if d.cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.logger, d.recorder))
	r.Use(middleware.Recoverer(d.logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      d.cfg.IsDevelopment(),
		MaxRequestBodySize: d.cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(d.cfg.MaxRequestBodySize))

	// Operational endpoints
	r.Get("/healthz", d.health.Healthz)
	r.Get("/readyz", d.health.Readyz)
	r.Method(http.MethodGet, "/metrics", d.metrics)
	r.Method(http.MethodGet, "/static/*", handler.Static())

	requireSession := middleware.RequireSession(middleware.SessionConfig{
		Logger:     d.logger,
		Sessions:   d.sessions,
		CookieName: d.cfg.SessionCookieName,
		Metrics:    d.recorder,
	})
	rateLimitLogin := middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:    d.logger,
		Limiter:   d.limiter,
		Metrics:   d.recorder,
		Enabled:   d.cfg.LoginRateLimitEnabled,
		PerMinute: d.cfg.LoginRateLimitPerMinute,
		Burst:     d.cfg.LoginRateLimitBurst,
	})

	// Public pages
	r.Get("/", d.pages.Serve("index.html"))
	r.Get("/login", d.pages.Serve("admin-login.html"))
	r.Get("/register", d.pages.Serve("admin-register.html"))
	r.Get("/user-register", d.pages.Serve("user-register.html"))

	// Admin account
	r.With(rateLimitLogin).Post("/login", d.auth.Login)
	r.Post("/register", d.auth.Register)
	r.Post("/logout", d.auth.Logout)

	// Public key issuance
	r.Post("/api/generate-key", d.users.GenerateKey)
	r.Post("/api/save-user", d.users.Save)

	// Admin-only
	r.Group(func(r chi.Router) {
		r.Use(requireSession)
		r.Get("/dashboard", d.pages.Serve("admin-dashboard.html"))
		r.Get("/api/users", d.users.List)
		r.Delete("/api/delete-user/{id}", d.users.Delete)
	})

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
