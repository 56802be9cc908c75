package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parksphere/portal/internal/devapi"
	"github.com/parksphere/portal/internal/infrastructure/config"
	"github.com/parksphere/portal/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadDevAPI(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "devapi"})
		bootLog.Fatal().Err(err).Msg("config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "devapi",
		Env:     cfg.Env,
	})

	srv, err := devapi.New(devapi.Options{JWTSecret: cfg.JWTSecret, TokenTTL: cfg.TokenTTL}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}

	if cfg.SpotFeedInterval > 0 {
		go srv.RunFeed(ctx, cfg.SpotFeedInterval)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Dur("spot_feed", cfg.SpotFeedInterval).
			Msg("devapi started")
		if err := srv.Start(":" + cfg.Port); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failure")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
