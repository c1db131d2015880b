package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cache-viewer/internal/cache"
	"cache-viewer/internal/config"
	"cache-viewer/internal/logging"
	"cache-viewer/internal/routes"

	"github.com/gin-gonic/gin"
)

const purgeInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	log, closeLog, err := logging.Open(cfg.LogLevel, cfg.LogFormat, cfg.LogFile, os.Stderr)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	defer closeLog()
	log = logging.WithComponent(log, "cache-server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gin.SetMode(gin.ReleaseMode)
	store := cache.NewTTLCache(cache.Options{ConcurrencySafe: true})
	go purgeLoop(ctx, store)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           routes.SetupCacheRoutes(store, cfg.ServerMaxTTL, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.ServerAddr).
			Int64("max_ttl", cfg.ServerMaxTTL).
			Msg("cache server starting")
		log.Info().Msg("API endpoints: GET|POST|DELETE /api/cache, GET|DELETE /api/cache/:key, GET /health")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		log.Fatal().Err(err).Msg("failed to start server")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("cache server stopped")
}

// purgeLoop drops expired entries every purgeInterval until ctx is done.
func purgeLoop(ctx context.Context, c cache.Cache) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.PurgeExpired()
		}
	}
}
