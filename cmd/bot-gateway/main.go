package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"

	"leetcode-bot/internal/adapters/bot"
	"leetcode-bot/internal/adapters/telegram"
	"leetcode-bot/internal/app"
	"leetcode-bot/internal/infra/config"
	infrahttp "leetcode-bot/internal/infra/http"
	"leetcode-bot/internal/infra/log"
	"leetcode-bot/internal/infra/metrics"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось собрать приложение")
	}
	defer application.Close()

	botAPI, err := telegram.NewBotAPI(cfg.Telegram.Token, cfg.Telegram.Timeout)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	notifier := application.Notifier(cfg, telegram.NewSender(botAPI), logger)

	h := bot.NewHandler(application.Tasks, application.Subscriptions, logger)

	srv := infrahttp.NewServer(logger)
	srv.Router.Post("/bot/webhook", h.Webhook())
	srv.Router.Post("/reminder", bot.ReminderHandler(notifier, logger))

	go func() {
		if err := srv.Start(cfg.ListenAddr()); err != nil {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("остановка бота")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("не удалось корректно остановить HTTP сервер")
		os.Exit(1)
	}
}
