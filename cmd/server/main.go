package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"wizardgo/internal/auth"
	"wizardgo/internal/battle"
	"wizardgo/internal/institution"
	"wizardgo/internal/item"
	"wizardgo/internal/middleware"
	"wizardgo/internal/profile"
	"wizardgo/internal/server"
	serverHandlers "wizardgo/internal/server/handlers"
	"wizardgo/internal/shared/config"
	"wizardgo/internal/shared/cookies"
	"wizardgo/internal/shared/logger"
	"wizardgo/internal/shared/redis"
	"wizardgo/internal/storage"
)

func main() {
	if err := config.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init()

	if err := run(); err != nil {
		slog.Error("Server exited with error", "component", "main", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.GlobalConfig
	log := slog.With("component", "main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Starting WizardGo server",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
	)

	stores, err := storage.Open(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error("Failed to close storage", "error", err)
		}
	}()

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close redis", "error", err)
		}
	}()

	issuer, err := auth.NewIssuer(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to create token issuer: %w", err)
	}

	profileService := profile.NewService(stores.Profiles, cfg.Game.StartingGems, slog.Default())
	itemService := item.NewService(stores.Items, item.ConfigFrom(cfg.Game), slog.Default())
	battleService := battle.NewService(stores.Battles, slog.Default())
	institutionService := institution.NewService(stores.Institutions, slog.Default())

	var locker item.Locker
	if redisClient != nil {
		locker = redisClient
	}
	sweeper, err := item.NewSweeper(itemService, cfg.Game.CleanupInterval, locker, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sweeper: %w", err)
	}
	sweeper.Start()
	defer func() {
		if err := sweeper.Stop(); err != nil {
			log.Error("Failed to stop sweeper", "error", err)
		}
	}()

	var pinger serverHandlers.Pinger
	if stores.DB != nil {
		pinger = stores.DB
	}

	routes := server.NewRoutes(server.Dependencies{
		Profiles:     profileService,
		Items:        itemService,
		Battles:      battleService,
		Institutions: institutionService,
		Tokens:       issuer,
		Cookies:      cookies.NewPolicy(cfg),
		DB:           pinger,
		StorageName:  stores.Driver,
	}, slog.Default())

	handler := server.Handler(
		routes.Setup(),
		middleware.NewCORS(cfg.Frontend),
		middleware.NewRateLimiter(ctx, cfg.RateLimit),
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
