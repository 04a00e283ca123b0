package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
	"leetcode-bot/internal/infra/retry"
)

// Renderer собирает сообщение с задачей для чата.
type Renderer func(chatID int64, task domain.Task) (domain.OutboundMessage, error)

// Failure: неудачная доставка одному подписчику.
type Failure struct {
	UserID   int64
	ChatID   int64
	Attempts int
	Err      error
}

// Report: итог одной рассылки.
type Report struct {
	RunID     string
	DateID    int64
	Total     int
	Delivered int
	Failed    []Failure
}

// Config задаёт параллелизм и повторы рассылки.
type Config struct {
	Concurrency int
	Policy      retry.Policy
}

// Service рассылает задачу дня всем подписчикам.
type Service struct {
	tasks       domain.TaskProvider
	subscribers domain.SubscriberRepo
	sender      domain.Sender
	render      Renderer
	cfg         Config
	log         zerolog.Logger
}

// NewService создаёт сервис рассылки.
func NewService(tasks domain.TaskProvider, subscribers domain.SubscriberRepo, sender domain.Sender, render Renderer, cfg Config, logger zerolog.Logger) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 8
	}
	if cfg.Policy.Attempts <= 0 {
		cfg.Policy.Attempts = 3
	}
	return &Service{
		tasks:       tasks,
		subscribers: subscribers,
		sender:      sender,
		render:      render,
		cfg:         cfg,
		log:         logger.With().Str("component", "notify").Logger(),
	}
}

// NotifyAllSubscribers отправляет задачу дня каждому подписчику.
// Ошибка возвращается, только если не удалось получить задачу или список подписчиков.
// Неудачные доставки попадают в отчёт и в лог, но рассылку не прерывают.
func (s *Service) NotifyAllSubscribers(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{RunID: uuid.NewString()}
	log := s.log.With().Str("run_id", report.RunID).Logger()

	task, err := s.tasks.GetDailyTask(ctx)
	if err != nil {
		return report, fmt.Errorf("получение задачи дня: %w", err)
	}
	report.DateID = task.DateID

	subs, err := s.subscribers.ListSubscribed(ctx)
	if err != nil {
		return report, fmt.Errorf("получение подписчиков: %w", err)
	}
	report.Total = len(subs)
	log.Info().Int64("date_id", task.DateID).Int("subscribers", len(subs)).Msg("рассылка начата")

	var (
		mu        sync.Mutex
		delivered int
		failed    []Failure
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, sub := range subs {
		g.Go(func() error {
			attempts, err := s.deliver(gctx, sub, task)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				log.Warn().Err(err).Int64("user_id", sub.UserID).Int("attempts", attempts).Msg("не удалось доставить задачу")
				failed = append(failed, Failure{UserID: sub.UserID, ChatID: sub.ChatID, Attempts: attempts, Err: err})
				return nil
			}
			delivered++
			return nil
		})
	}
	_ = g.Wait()

	report.Delivered = delivered
	report.Failed = failed
	metrics.ObserveNotifyRun(time.Since(start), delivered, len(failed))
	log.Info().Int("delivered", delivered).Int("failed", len(failed)).Dur("took", time.Since(start)).Msg("рассылка завершена")
	return report, nil
}

func (s *Service) deliver(ctx context.Context, sub domain.Subscriber, task domain.Task) (int, error) {
	msg, err := s.render(sub.ChatID, task)
	if err != nil {
		return 0, fmt.Errorf("подготовка сообщения: %w", err)
	}
	return s.cfg.Policy.Do(ctx, func(ctx context.Context) error {
		return s.sender.Send(ctx, msg)
	})
}
