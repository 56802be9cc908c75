package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	_ "github.com/parksphere/portal/docs" // swagger docs
	"github.com/parksphere/portal/internal/api"
	"github.com/parksphere/portal/internal/api/handler"
	"github.com/parksphere/portal/internal/core/ports"
	"github.com/parksphere/portal/internal/core/service"
	"github.com/parksphere/portal/internal/infrastructure/apiclient"
	"github.com/parksphere/portal/internal/infrastructure/config"
	"github.com/parksphere/portal/internal/infrastructure/db/memory"
	mongokv "github.com/parksphere/portal/internal/infrastructure/db/mongo"
	rediskv "github.com/parksphere/portal/internal/infrastructure/db/redis"
	"github.com/parksphere/portal/internal/infrastructure/push"
	"github.com/parksphere/portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// kvBackend is a session store backend that can report its health.
type kvBackend interface {
	ports.KeyValueStore
	handler.Pinger
}

// @title ParkSphere Portal API
// @version 1.0
// @description Session, role-routed views, federated search and live spot updates for the ParkSphere parking client.
// @host localhost:8090
// @BasePath /
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := logger.Init(logger.Options{Service: "portal"})
		bootLog.Fatal().Err(err).Msg("config")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: "portal",
		Env:     cfg.Env,
	})

	kv, closeKV, err := openSessionBackend(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Session.Backend).Msg("session storage")
	}
	defer closeKV()

	sessions := service.NewSessionStore(kv, log)
	if err := sessions.Bootstrap(ctx); err != nil {
		log.Fatal().Err(err).Msg("session bootstrap")
	}

	backend := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout, log)
	authService := service.NewAuthService(backend, sessions, log)
	searcher := service.NewFederatedSearch(backend, log)
	panel := service.NewSearchPanel(searcher, sessions, log, service.WithDebounce(cfg.Search.Debounce))

	live := service.NewLiveChannel(sessions, push.NewDialer(cfg.API.PushURL), cfg.Live.LogLimit, log)
	live.Bind(ctx)

	e := api.NewRouter(api.Deps{
		Sessions: sessions,
		Auth:     authService,
		Search:   panel,
		Live:     live,
		Pingers:  map[string]handler.Pinger{cfg.Session.Backend: kv},
		Log:      log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Str("api", cfg.API.BaseURL).
			Str("session_backend", cfg.Session.Backend).
			Msg("portal started")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		log.Error().Err(err).Msg("server failure")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	live.Close()
}

func openSessionBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (kvBackend, func(), error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		client, err := rediskv.Connect(ctx, rediskv.Config{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			ClientName: "parksphere-portal",
		})
		if err != nil {
			return nil, nil, err
		}
		return rediskv.NewKVStore(client, cfg.Session.KeyPrefix), func() { _ = client.Close() }, nil

	case config.BackendMongo:
		client, db, err := mongokv.Connect(ctx, mongokv.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  "parksphere-portal",
		})
		if err != nil {
			return nil, nil, err
		}
		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return mongokv.NewKVStore(db, cfg.Session.KeyPrefix), closeFn, nil

	default:
		log.Warn().Msg("session kept in memory only, it will not survive a restart")
		return memory.NewKVStore(), func() {}, nil
	}
}
