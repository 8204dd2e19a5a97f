package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Spok95/stock-intake/internal/bot"
	"github.com/Spok95/stock-intake/internal/config"
	httpx "github.com/Spok95/stock-intake/internal/infra/http"
	"github.com/Spok95/stock-intake/internal/infra/logger"
	"github.com/Spok95/stock-intake/internal/infra/metrics"
	"github.com/Spok95/stock-intake/internal/intake"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (and the Telegram bot when enabled)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(parent context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log := logger.New(cfg.App.Env)

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer d.Close()

	archiver, err := newArchiver(ctx, cfg, log)
	if err != nil {
		return err
	}

	m := metrics.New()
	opts := []intake.Option{intake.WithLocation(d.loc)}

	var tg *tgbotapi.BotAPI
	if cfg.Telegram.Enabled {
		tg, err = tgbotapi.NewBotAPI(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		tg.Debug = cfg.App.Env == "dev"
		log.Info("bot authorized", "username", tg.Self.UserName)
		opts = append(opts, intake.WithNotifier(bot.NewNotifier(tg, log, d.catalog, cfg.Telegram.AdminChatID)))
	}

	svc := intake.NewService(d.catalog, d.sink, log, m, opts...)

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = m.Handler()
	}
	srv := httpx.New(cfg.HTTP.Addr, metricsHandler, log, intake.NewHandler(svc, log, archiver))
	go func() {
		if err := srv.Start(); err != nil {
			log.Error("http server error", "err", err)
			stop()
		}
	}()
	log.Info("HTTP server started", "addr", cfg.HTTP.Addr)

	if tg != nil {
		b := bot.New(tg, log, svc)
		go func() {
			if err := b.Run(ctx, cfg.Telegram.TimeoutSec); err != nil && ctx.Err() == nil {
				log.Error("bot stopped", "err", err)
			}
		}()
		log.Info("bot started")
	}

	<-ctx.Done()
	if tg != nil {
		tg.StopReceivingUpdates()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("graceful shutdown complete")
	return nil
}
