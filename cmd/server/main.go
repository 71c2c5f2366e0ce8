package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/Kairos/internal/adapters/events"
	router "github.com/dkeye/Kairos/internal/adapters/http"
	"github.com/dkeye/Kairos/internal/adapters/presence"
	"github.com/dkeye/Kairos/internal/app"
	"github.com/dkeye/Kairos/internal/app/orch"
	"github.com/dkeye/Kairos/internal/config"
	"github.com/dkeye/Kairos/internal/core"
	"github.com/dkeye/Kairos/internal/logging"
	"github.com/dkeye/Kairos/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Console logger until the config says otherwise.
	_ = logging.Setup(logging.Options{Level: "info", Console: true})

	if err := run(ctx); err != nil {
		log.Error().Err(err).Msg("server error")
		cancel()
		os.Exit(1)
	}
	log.Info().Msg("Server exited gracefully")
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logging.Setup(logging.Options{Level: cfg.Log.Level, Console: cfg.Mode != "release", File: cfg.Log.File}); err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}

	st, err := store.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("store close")
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	var mirror core.PresenceMirror = core.NopPresence{}
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		rm := presence.NewRedisMirror(rdb, cfg.Redis.PresenceTTL)
		g.Go(func() error { return rm.Run(gctx) })
		mirror = rm
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis presence mirror enabled")
	}

	var publisher core.MessagePublisher = core.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() {
			if err := kp.Close(); err != nil {
				log.Error().Err(err).Msg("kafka close")
			}
		}()
		publisher = kp
	}

	hub := &orch.Orchestrator{
		Registry:       app.NewRegistry(),
		Rooms:          app.NewMembership(),
		Calls:          app.NewCallBook(),
		Store:          st,
		Presence:       mirror,
		Events:         publisher,
		Policy:         app.SimplePolicy{},
		RingTimeout:    cfg.Calls.RingTimeout,
		PersistTimeout: cfg.PersistTimeout,
	}

	r := router.SetupRouter(gctx, cfg, hub, st)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("Kairos server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
