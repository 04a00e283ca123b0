package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
)

// Уровни, с которых может быть отдана задача.
const (
	TierCache    = "cache"
	TierStore    = "store"
	TierUpstream = "upstream"
)

// Service отдаёт задачу дня: сначала локальный кэш, затем хранилище, затем LeetCode.
type Service struct {
	fetcher   domain.TaskFetcher
	store     domain.TaskRepo
	cache     domain.TaskCache
	normalize func(domain.Task) domain.Task
	now       func() time.Time
	log       zerolog.Logger
}

// Option настраивает сервис.
type Option func(*Service)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithNormalizer задаёт преобразование свежей задачи перед сохранением.
func WithNormalizer(fn func(domain.Task) domain.Task) Option {
	return func(s *Service) {
		if fn != nil {
			s.normalize = fn
		}
	}
}

// NewService создаёт сервис. cache может быть nil.
func NewService(fetcher domain.TaskFetcher, store domain.TaskRepo, cache domain.TaskCache, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		fetcher:   fetcher,
		store:     store,
		cache:     cache,
		normalize: func(t domain.Task) domain.Task { return t },
		now:       time.Now,
		log:       logger.With().Str("component", "tasks").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ domain.TaskProvider = (*Service)(nil)

// GetDailyTask возвращает задачу на текущий день по тихоокеанскому времени.
// Если задачи нет ни в кэше, ни в хранилище, она загружается из LeetCode и сохраняется.
// Ошибка чтения хранилища считается промахом.
// Ошибка записи в хранилище только логируется: пользователь всё равно получает задачу.
func (s *Service) GetDailyTask(ctx context.Context) (domain.Task, error) {
	date := domain.TaskDate(s.now())
	dateID := domain.TaskID(date)

	found, task, err := s.GetTaskByID(ctx, dateID)
	if err != nil {
		s.log.Error().Err(err).Int64("date_id", dateID).Msg("хранилище недоступно, берём задачу из LeetCode")
	}
	if found {
		return task, nil
	}

	fetched, err := s.fetcher.FetchTaskOfDay(ctx, date)
	if err != nil {
		return domain.Task{}, fmt.Errorf("загрузка задачи %d: %w", dateID, err)
	}
	if !fetched.Found() {
		return domain.Task{}, fmt.Errorf("загрузка задачи %d: %w", dateID, domain.ErrEmptyTask)
	}
	metrics.IncTaskLookup(TierUpstream)

	task = s.normalize(fetched)
	task.DateID = dateID
	if err := s.SaveTask(ctx, task); err != nil {
		s.log.Error().Err(err).Int64("date_id", dateID).Msg("не удалось сохранить задачу")
	}
	return task, nil
}

// GetTaskByID ищет задачу в кэше и в хранилище, LeetCode не опрашивается.
// Ошибки кэша считаются промахом. Найденная в хранилище задача попадает в кэш.
func (s *Service) GetTaskByID(ctx context.Context, dateID int64) (bool, domain.Task, error) {
	if s.cache != nil {
		task, err := s.cache.GetTask(ctx, dateID)
		switch {
		case err == nil && task.Found():
			metrics.IncTaskLookup(TierCache)
			return true, task, nil
		case err != nil && !errors.Is(err, domain.ErrTaskNotFound):
			s.log.Warn().Err(err).Int64("date_id", dateID).Msg("кэш задач недоступен")
		}
	}

	task, err := s.store.GetTask(ctx, dateID)
	if errors.Is(err, domain.ErrTaskNotFound) {
		return false, domain.Task{}, nil
	}
	if err != nil {
		return false, domain.Task{}, fmt.Errorf("чтение задачи %d: %w", dateID, err)
	}
	if !task.Found() {
		return false, domain.Task{}, nil
	}
	metrics.IncTaskLookup(TierStore)
	s.putCache(ctx, task)
	return true, task, nil
}

// SaveTask пишет задачу в кэш, если её там нет, и в хранилище с заменой.
func (s *Service) SaveTask(ctx context.Context, task domain.Task) error {
	if !task.Found() {
		return domain.ErrEmptyTask
	}
	s.putCache(ctx, task)
	if err := s.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("сохранение задачи %d: %w", task.DateID, err)
	}
	return nil
}

func (s *Service) putCache(ctx context.Context, task domain.Task) {
	if s.cache == nil {
		return
	}
	if err := s.cache.PutTask(ctx, task); err != nil {
		s.log.Warn().Err(err).Int64("date_id", task.DateID).Msg("не удалось записать задачу в кэш")
	}
}
