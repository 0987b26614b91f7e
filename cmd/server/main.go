package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/Aryanprakashh/sync-music-app/internal/adapters/http"
	wsignal "github.com/Aryanprakashh/sync-music-app/internal/adapters/signal"
	"github.com/Aryanprakashh/sync-music-app/internal/adapters/spotify"
	"github.com/Aryanprakashh/sync-music-app/internal/app"
	"github.com/Aryanprakashh/sync-music-app/internal/cache"
	"github.com/Aryanprakashh/sync-music-app/internal/config"
	"github.com/Aryanprakashh/sync-music-app/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
	}

	sessionStore := core.NewSessionRegistry()
	connRegistry := app.NewRegistry()
	instances := spotify.NewInstanceManager(cfg.InstanceMaxAge)

	orch := &app.Orchestrator{
		Conns:           connRegistry,
		Sessions:        sessionStore,
		Gate:            app.NewThrottleGate(cfg.ThrottleDelay),
		Playback:        instances,
		PlaybackTimeout: cfg.PlaybackTimeout,
	}

	sweeper := &app.Sweeper{
		Sessions: sessionStore,
		Interval: cfg.SweepInterval,
		Grace:    cfg.SessionGrace,
	}
	go sweeper.Run(ctx)
	go instances.Run(ctx, cfg.InstanceSweep)

	limiter := router.NewIPRateLimiter(cfg.RateLimitPerMin, cfg.RateLimitBurst)
	go limiter.Run(ctx, 5*time.Minute, 5*time.Minute)

	api := &router.CatalogAPI{
		Catalog:    instances,
		Cache:      cache.New(1024, cfg.CacheTTL),
		EvictToken: instances.Evict,
	}
	auth := spotify.NewAuthenticator(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI)
	ws := wsignal.NewController(orch, cfg.ReadLimit)

	r := router.SetupRouter(ctx, cfg, ws, api, limiter, auth)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("sync server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
