package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/keraflour/storefront/internal/auth"
	"github.com/keraflour/storefront/internal/cart"
	"github.com/keraflour/storefront/internal/catalog"
	"github.com/keraflour/storefront/internal/checkout"
	"github.com/keraflour/storefront/internal/config"
	"github.com/keraflour/storefront/internal/domain"
	"github.com/keraflour/storefront/internal/httpx"
	"github.com/keraflour/storefront/internal/payments"
	"github.com/keraflour/storefront/internal/pkg/cache"
	"github.com/keraflour/storefront/internal/pkg/telemetry"
	"github.com/keraflour/storefront/internal/store"
	"github.com/keraflour/storefront/internal/store/sqlite"
)

func main() {
	cfg, err := config.Load(getEnv("ENV_FILE", ""))
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	telemetry.InitLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, cfg.ServiceName, cfg.OTELEndpoint, cfg.OTELEnvironment)
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisCache := cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)

	tokenMaker, err := auth.NewPasetoMaker(cfg.TokenKey)
	if err != nil {
		slog.Error("failed to create token maker", "error", err)
		os.Exit(1)
	}

	if err := seedAdmin(ctx, db, cfg); err != nil {
		slog.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	gateway := payments.NewStripeGateway(
		cfg.StripeAPIBase, cfg.StripeSecretKey, cfg.CheckoutSuccessURL, cfg.CheckoutCancelURL)
	verifier := auth.NewHTTPIdentityVerifier(cfg.IdentityTokeninfoURL)

	catalogSvc := catalog.NewService(db, redisCache)
	cartSvc := cart.NewService(db, db)
	orchestrator := checkout.NewOrchestrator(db, db, db, gateway)
	confirmer := checkout.NewConfirmer(gateway, db, db, db, redisCache)
	authSvc := auth.NewService(db, tokenMaker, verifier, cfg.TokenDuration)

	handler := httpx.NewHandler(
		catalogSvc, cartSvc, orchestrator, confirmer, authSvc, db, db, cfg.AdminReadOnly)
	router := httpx.NewRouter(handler, tokenMaker)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("storefront API running", "addr", server.Addr, "admin_read_only", cfg.AdminReadOnly)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}

// seedAdmin provisions the configured admin account once. Subsequent boots
// find the account and do nothing.
func seedAdmin(ctx context.Context, users store.UserRepository, cfg *config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	_, err := users.GetUserByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if err != store.ErrNotFound {
		return err
	}

	hash, err := auth.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}
	return users.CreateUser(ctx, &domain.User{
		ID:           uuid.NewString(),
		Email:        cfg.AdminEmail,
		Name:         "Admin",
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    time.Now().UTC(),
	})
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
