package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mazungumzo/chat-service/config"
	"github.com/mazungumzo/chat-service/internal/persist"
	"github.com/mazungumzo/chat-service/internal/service"
	"github.com/mazungumzo/chat-service/internal/store"
	httpx "github.com/mazungumzo/chat-service/internal/transport/http"
	"github.com/mazungumzo/chat-service/internal/transport/ws"
	"github.com/mazungumzo/chat-service/pkg/logger"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting chat-service",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	// --- persistence ---
	ctx := context.Background()
	sink, err := openSink(ctx, cfg.Persistence)
	if err != nil {
		log.Fatalf("persistence: %v", err)
	}
	defer sink.Close()

	// --- stores ---
	messages := store.NewMessageStore(sink)
	if logs, err := sink.LoadAll(ctx); err != nil {
		slog.Warn("load persisted logs failed", "err", err)
	} else if len(logs) > 0 {
		messages.Seed(logs)
		slog.Info("restored room logs", "rooms", len(logs))
	}

	registry := store.NewSessionRegistry()
	directory := store.NewDirectory()
	directory.EnsureRoom("General") // открытая комната по умолчанию
	tracker := store.NewHeartbeatTracker(cfg.Presence.WindowDuration())

	// --- services ---
	memberSvc := service.NewMemberService(registry, directory)
	chatSvc := service.NewChatService(directory, messages)
	groupSvc := service.NewGroupService(directory)

	// --- WS Hub & Server ---
	hub := ws.NewHub()
	wsServer := ws.NewServer(hub, memberSvc, chatSvc, groupSvc, tracker)

	// --- HTTP ---
	handler := httpx.NewHandler(chatSvc, groupSvc, memberSvc, tracker, hub, cfg.Uploads.Dir)
	router := httpx.NewRouter(handler, wsServer, tracker)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal", "sig", sig)
	case err := <-errCh:
		slog.Error("server error", "err", err)
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = httpSrv.Shutdown(ctxShutdown)
	slog.Info("stopped")
}

func openSink(ctx context.Context, cfg config.Persistence) (persist.Store, error) {
	switch cfg.Backend {
	case "badger":
		return persist.OpenBadger(cfg.BadgerPath)
	case "postgres":
		return persist.OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		return persist.Noop{}, nil
	}
}
