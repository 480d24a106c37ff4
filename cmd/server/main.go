package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"euchre/internal/bot"
	"euchre/internal/config"
	"euchre/internal/euchre"
	"euchre/internal/room"
	"euchre/internal/server"
	"euchre/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	store, err := storage.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	policy, err := bot.DefaultRegistry().Get(cfg.BotPolicy)
	if err != nil {
		return err
	}

	mgr := room.NewManager(euchre.NewEngine(), store,
		room.WithLogger(logger.Named("room")),
		room.WithPolicy(policy),
		room.WithMaxBotSteps(cfg.BotMaxSteps),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go mgr.CleanupLoop(ctx, cfg.CleanupEvery, cfg.RoomMaxAge)

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           server.New(mgr, store, logger, cfg.Origins()),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpSrv.Addr), zap.String("db", cfg.DBPath))
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
