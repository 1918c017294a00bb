package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/dygon/bus-tracking/internal/api"
	"github.com/dygon/bus-tracking/internal/api/handler"
	"github.com/dygon/bus-tracking/internal/core/ports"
	"github.com/dygon/bus-tracking/internal/core/registry"
	"github.com/dygon/bus-tracking/internal/core/service"
	mongostore "github.com/dygon/bus-tracking/internal/infrastructure/db/mongo"
	redisstore "github.com/dygon/bus-tracking/internal/infrastructure/db/redis"
	"github.com/dygon/bus-tracking/internal/infrastructure/queue"
	"github.com/dygon/bus-tracking/internal/infrastructure/realtime"
	"github.com/dygon/bus-tracking/internal/pkg/config"
	"github.com/dygon/bus-tracking/pkg/logger"
)

// @title        Bus Tracking API
// @version      1.0
// @description  Live vehicle positions for the campus bus fleet.
// @BasePath     /
func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.IsDevelopment(),
		File: logger.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		},
	})
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("cannot create store client")
	}

	reg := registry.New()
	viewers := realtime.NewAudience("viewer", log)
	operators := realtime.NewAudience("operator", log)
	broadcast := service.NewBroadcastService(reg, viewers, operators, log)

	writes := queue.NewDispatcher(store.repo, queue.Options{
		Workers:      cfg.Writes.Workers,
		Buffer:       cfg.Writes.Buffer,
		WriteTimeout: cfg.Realtime.WriteTimeout,
	}, log)
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()
	writes.Start(workerCtx)

	ingest := service.NewIngestionService(reg, writes, broadcast, log)
	admin := service.NewAdminService(reg, store.repo, broadcast, log)

	// Recovery completes before the listener opens.
	if _, err := service.NewRecoveryService(reg, store.repo, log).Restore(ctx); err != nil {
		log.Error().Err(err).Msg("recovery failed, starting with an empty registry")
	}

	e := api.NewRouter(api.Deps{
		Ingestion: ingest,
		Admin:     admin,
		Broadcast: broadcast,
		Viewers:   viewers,
		Operators: operators,
		Pingers:   []handler.Pinger{store.pinger},
		Socket: handler.SocketOptions{
			SendBuffer:   cfg.Realtime.SendBuffer,
			WriteTimeout: cfg.Realtime.WriteTimeout,
			PingInterval: cfg.Realtime.PingInterval,
		},
		Log: log,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()
	log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Msg("bus tracking service started")

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-serverErr:
		log.Fatal().Err(err).Msg("http server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Stop persisting first: producers dropped by the shutdown must stay
	// RUNNING in the store so the next start restores them.
	writes.Close()
	waitWrites(shutdownCtx, writes, log)

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	viewers.CloseAll()
	operators.CloseAll()
	cancelWorkers()

	if err := store.close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("store disconnect")
	}
	log.Info().Msg("bus tracking service stopped")
}

type store struct {
	repo   ports.VehicleRepository
	pinger handler.Pinger
	close  func(context.Context) error
}

// openStore builds the configured durable store. An unreachable server is
// logged and tolerated; writes fail until it comes back.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*store, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		rcfg := redisstore.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB}
		client, err := redisstore.Connect(ctx, rcfg)
		if err != nil {
			log.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unreachable, continuing")
			client = redisstore.NewClient(rcfg)
		}
		return &store{
			repo:   redisstore.NewVehicleStore(client),
			pinger: redisstore.NewPinger(client),
			close:  func(context.Context) error { return client.Close() },
		}, nil

	default:
		mcfg := mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database}
		client, db, err := mongostore.Connect(ctx, mcfg)
		if err != nil {
			log.Error().Err(err).Msg("mongodb unreachable, continuing")
			client, db, err = mongostore.Dial(ctx, mcfg)
			if err != nil {
				return nil, err
			}
		}
		repo := mongostore.NewVehicleRepository(db)
		if err := repo.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("could not ensure vehicle indexes")
		}
		return &store{
			repo:   repo,
			pinger: mongostore.NewPinger(db),
			close:  client.Disconnect,
		}, nil
	}
}

func waitWrites(ctx context.Context, writes *queue.Dispatcher, log zerolog.Logger) {
	done := make(chan struct{})
	go func() {
		writes.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("write-through queue not drained before shutdown deadline")
	}
}
