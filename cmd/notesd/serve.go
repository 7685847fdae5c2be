package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"tenantnotes/internal/auth"
	"tenantnotes/internal/config"
	"tenantnotes/internal/handler"
	"tenantnotes/internal/metrics"
	"tenantnotes/internal/middleware"
	"tenantnotes/internal/plans"
	"tenantnotes/internal/ratelimit"
	"tenantnotes/internal/repository/postgres"
	"tenantnotes/internal/service"
	svcauth "tenantnotes/internal/service/auth"
)

// publicPaths skip session resolution
var publicPaths = []string{"/health", "/metrics", "/api/auth/login"}

func serveCmd() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), shutdownTimeout)
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Grace period for in-flight requests on shutdown")

	return cmd
}

func serve(ctx context.Context, shutdownTimeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closeLog, err := config.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	logger.Info("database connected")

	// Repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	tenantRepo := postgres.NewTenantRepository(repoConfig)
	userRepo := postgres.NewUserRepository(repoConfig)
	noteRepo := postgres.NewNoteRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Tokens: our own HS256 sessions, plus an external issuer when configured
	tokens, err := auth.NewHMACTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.SessionTTL, logger)
	if err != nil {
		return err
	}
	verifier := auth.ChainVerifier{tokens}
	if cfg.JWKSURL != "" {
		jwks, err := auth.NewJWKSVerifier(cfg.JWKSURL, logger)
		if err != nil {
			return err
		}
		verifier = append(verifier, jwks)
	}
	defer verifier.Close()

	registry, err := plans.NewRegistry()
	if err != nil {
		return fmt.Errorf("load plans: %w", err)
	}

	m := metrics.New("tenantnotes")
	guard := svcauth.NewTenantAccessGuard(registry)

	// Services
	noteService := service.NewNoteService(noteRepo, tenantRepo, txManager, guard, m, logger)
	tenantService := service.NewTenantService(tenantRepo, noteRepo, guard, registry, m, logger)
	authService := service.NewAuthService(userRepo, tokens, m, logger)
	sessions := service.NewSessionResolver(verifier, userRepo, logger)

	// Handlers
	noteHandler := handler.NewNoteHandler(noteService, logger)
	tenantHandler := handler.NewTenantHandler(tenantService, logger)
	authHandler := handler.NewAuthHandler(authService, logger)

	// Login throttling is shared across instances through Redis
	var loginHandler http.Handler = http.HandlerFunc(authHandler.Login)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		limiter := ratelimit.NewRedisLimiter(rdb, "tenantnotes:rl:")
		policy := ratelimit.Policy{Burst: cfg.LoginRateBurst, RefillRate: cfg.LoginRefillPerSecond()}
		loginHandler = ratelimit.LoginMiddleware(limiter, policy, m, logger)(loginHandler)
		logger.Info("login rate limiting enabled", "burst", policy.Burst, "per_minute", cfg.LoginRatePerMinute)
	} else {
		logger.Warn("REDIS_URL not set, login rate limiting disabled")
	}

	// Go 1.22+ method patterns; unknown methods on known paths get 405
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", m.Handler())

	// Auth
	mux.Handle("POST /api/auth/login", loginHandler)
	mux.HandleFunc("GET /api/auth/me", authHandler.Me)

	// Notes
	mux.HandleFunc("GET /api/notes", noteHandler.ListNotes)
	mux.HandleFunc("POST /api/notes", noteHandler.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", noteHandler.GetNote)
	mux.HandleFunc("PUT /api/notes/{id}", noteHandler.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", noteHandler.DeleteNote)

	// Tenants
	mux.HandleFunc("GET /api/tenant", tenantHandler.GetCurrentTenant)
	mux.HandleFunc("POST /api/tenants/{slug}/upgrade", tenantHandler.UpgradeTenant)

	// Build middleware chain
	// Order: CORS → Recovery → Auth → Instrument → Routes
	var h http.Handler = mux
	h = middleware.Instrument(m, logger)(h)
	h = middleware.Authenticate(sessions, publicPaths, m, logger)(h)
	h = middleware.Recovery(m, logger)(h)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	h = cors.New(cors.Options{
		AllowedOrigins: strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(h)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}
}
