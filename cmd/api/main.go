package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"aloka/internal/cache"
	"aloka/internal/config"
	"aloka/internal/database"
	"aloka/internal/pkg/jwt"
	"aloka/internal/pkg/logger"
	"aloka/internal/realtime"
	"aloka/internal/repository"
	"aloka/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		l := logger.Base()
		l.Fatal().Err(err).Msg("invalid configuration")
	}

	logger.Configure(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})
	log := logger.WithComponent("main")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer func() { _ = database.Close(db) }()

	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	deps := server.Deps{
		Config: cfg,
		DB:     db,
		JWT:    jwt.New(cfg.JWTSecret, cfg.JWTTTL),
		Hub:    realtime.NewHub(),
	}
	defer deps.Hub.Close()

	if cfg.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		listCache, err := cache.NewFromURL(ctx, cfg.RedisURL, cfg.CacheTTL)
		cancel()
		if err != nil {
			// the API works without the cache, just slower
			log.Warn().Err(err).Msg("redis unavailable, studio list cache disabled")
		} else {
			defer func() { _ = listCache.Close() }()
			deps.Cache = listCache
		}
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("env", cfg.AppEnv).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// websocket feeds are hijacked and not drained by Shutdown
	deps.Hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
