package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"fieldbot/internal/auth"
	"fieldbot/internal/bus"
	"fieldbot/internal/channel"
	"fieldbot/internal/config"
	"fieldbot/internal/domain"
	"fieldbot/internal/engine"
	"fieldbot/internal/events"
	"fieldbot/internal/metrics"
	"fieldbot/internal/server"
	"fieldbot/internal/store"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bot (HTTP API + enabled channels)",
		Long:  "Starts the HTTP API and all enabled channels. Press Ctrl+C to stop.",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	closeLog, err := setupLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(cfg.Database.Path, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if cfg.Database.AutoSeed {
		seed, err := store.LoadSeedFile(cfg.Database.SeedFile)
		if err != nil {
			return fmt.Errorf("load seed data: %w", err)
		}
		if err := st.Seed(ctx, seed); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	// Exchanges always land in the store; the event publisher is an extra
	// best-effort recorder when a broker is configured.
	recorder := domain.ExchangeRecorder(st)
	if cfg.Events.Enabled {
		publisher, err := events.NewPublisher(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.Producer, logger)
		if err != nil {
			return fmt.Errorf("connect event broker: %w", err)
		}
		defer publisher.Close()
		recorder = engine.MultiRecorder{st, publisher}
		logger.Info("event publishing enabled", "exchange", cfg.Events.Exchange)
	}

	eng := engine.New(engine.Config{
		Store:     st,
		Exchanges: st,
		Recorder:  recorder,
		Logger:    logger,
	})

	dispatcher := bus.New(eng, logger)
	defer dispatcher.Close()

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	var metricsHandler http.HandlerFunc
	if cfg.Metrics.Enabled {
		metricsHandler = metrics.Collector.Handler()
	}

	srv := server.New(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        version,
		Tokens:         tokens,
		Agents:         st,
		Responder:      dispatcher,
		History:        eng,
		Logger:         logger,
		MetricsHandler: metricsHandler,
		MetricsPath:    cfg.Metrics.Endpoint,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Start(gctx)
	})

	if cfg.Channels.Telegram.Enabled && cfg.Channels.Telegram.Token != "" {
		telegramCh := channel.NewTelegram(channel.TelegramConfig{
			Token:     cfg.Channels.Telegram.Token,
			ParseMode: cfg.Channels.Telegram.ParseMode,
			Bindings:  cfg.Channels.Telegram.Bindings,
			Logger:    logger,
		})
		g.Go(func() error {
			return telegramCh.Start(gctx, dispatcher)
		})
		logger.Info("telegram channel enabled")
	} else {
		logger.Info("telegram channel disabled")
	}

	logger.Info("fieldbot started", "version", version)

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
