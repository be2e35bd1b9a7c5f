package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/alikaskat/calendar-bot/internal/auth"
	authfile "github.com/alikaskat/calendar-bot/internal/auth/file"
	authsqlite "github.com/alikaskat/calendar-bot/internal/auth/sqlite"
	"github.com/alikaskat/calendar-bot/internal/botapi"
	"github.com/alikaskat/calendar-bot/internal/calendar"
	"github.com/alikaskat/calendar-bot/internal/config"
	"github.com/alikaskat/calendar-bot/internal/dialog"
	"github.com/alikaskat/calendar-bot/internal/logging"
	"github.com/alikaskat/calendar-bot/internal/session"
)

func main() {
	// Absent .env files are fine; container deployments inject real env vars.
	_ = godotenv.Load()

	logger := logging.New(os.Stdout, slog.LevelInfo)
	logger.Info("запуск Calendar Bot", "version", botapi.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	authStore, closeStore, err := openAuthStore(cfg)
	if err != nil {
		logger.Error("failed to open auth ledger", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := closeStore(); cerr != nil {
			logger.Error("failed to close auth ledger", "error", cerr)
		}
	}()

	gateway := calendar.NewClient(cfg.CalendarBaseURL, cfg.CalendarToken,
		calendar.WithLogger(logger),
	)
	sessions := session.NewStore(cfg.SessionIdleTimeout, time.Now)
	engine := dialog.NewEngineWithLogger(sessions, gateway, authStore, dialog.Config{
		Location:           cfg.Location(),
		EventDuration:      cfg.EventDuration,
		FallbackCalendarID: cfg.CalendarID,
	}, logger)

	sender := botapi.NewHTTPSender(cfg.APIBaseURL, cfg.BotToken, nil, logger)
	dispatcher := botapi.NewDispatcher(engine, sender, logger)

	switch cfg.Mode {
	case config.ModePolling:
		runPolling(ctx, cfg, dispatcher, sender, logger)
	default:
		runWebhook(ctx, cfg, dispatcher, sender, logger)
	}
}

func openAuthStore(cfg config.Config) (auth.Store, func() error, error) {
	if cfg.AuthDSN != "" {
		store, err := authsqlite.Open(cfg.AuthDSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	}

	store, err := authfile.Open(cfg.AuthFile)
	if err != nil {
		return nil, nil, err
	}
	return store, func() error { return nil }, nil
}

func runWebhook(ctx context.Context, cfg config.Config, dispatcher *botapi.Dispatcher, sender *botapi.HTTPSender, logger *slog.Logger) {
	handler := botapi.NewRouter(botapi.RouterConfig{
		Token:      cfg.BotToken,
		Dispatcher: dispatcher,
		Logger:     logger,
		Middleware: []func(http.Handler) http.Handler{botapi.RequestLogger(logger)},
	})

	server := newServer(cfg.HTTPPort, handler)
	go shutdownOnCancel(ctx, server, logger)

	registerCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sender.RegisterWebhook(registerCtx, cfg.ExternalURL); err != nil {
		logger.Error("failed to register webhook", "error", err)
		os.Exit(1)
	}

	logger.Info("webhook mode listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func runPolling(ctx context.Context, cfg config.Config, dispatcher *botapi.Dispatcher, sender *botapi.HTTPSender, logger *slog.Logger) {
	unregisterCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := sender.UnregisterWebhook(unregisterCtx); err != nil {
		logger.Warn("failed to remove webhook before polling", "error", err)
	}

	// Health stays reachable in polling mode; the platform is not involved.
	server := newServer(cfg.HTTPPort, botapi.NewRouter(botapi.RouterConfig{Logger: logger}))
	go shutdownOnCancel(ctx, server, logger)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("health server encountered error", "error", err)
		}
	}()

	poller := botapi.NewPoller(cfg.APIBaseURL, cfg.BotToken, dispatcher, logger)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("poller stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("бот остановлен")
}

func newServer(port int, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func shutdownOnCancel(ctx context.Context, server *http.Server, logger *slog.Logger) {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("failed to shutdown server", "error", err)
	}
}
