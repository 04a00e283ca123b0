package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "time/tzdata"

	"leetcode-bot/internal/adapters/telegram"
	"leetcode-bot/internal/app"
	"leetcode-bot/internal/infra/config"
	"leetcode-bot/internal/infra/log"
)

// Одноразовый запуск рассылки: внешний планировщик (cron, k8s CronJob) вызывает его раз в день.
func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv).With().Str("cmd", "reminder").Logger()

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

	report, err := application.Notifier(cfg, telegram.NewSender(botAPI), logger).NotifyAllSubscribers(ctx)
	if err != nil {
		logger.Error().Err(err).Str("run_id", report.RunID).Msg("рассылка не запущена")
		application.Close()
		os.Exit(1)
	}
	for _, f := range report.Failed {
		logger.Warn().Err(f.Err).Int64("user_id", f.UserID).Int("attempts", f.Attempts).Msg("не доставлено")
	}
	logger.Info().
		Str("run_id", report.RunID).
		Int64("date_id", report.DateID).
		Int("total", report.Total).
		Int("delivered", report.Delivered).
		Int("failed", len(report.Failed)).
		Msg("рассылка завершена")
}
