// Package app собирает зависимости бота из конфига.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"leetcode-bot/internal/adapters/leetcode"
	"leetcode-bot/internal/adapters/repo"
	"leetcode-bot/internal/adapters/telegram"
	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/cache"
	"leetcode-bot/internal/infra/config"
	"leetcode-bot/internal/infra/db"
	"leetcode-bot/internal/infra/retry"
	"leetcode-bot/internal/usecase/notify"
	"leetcode-bot/internal/usecase/subscription"
	"leetcode-bot/internal/usecase/tasks"
)

// Подключение и миграции Postgres подменяются в тестах.
var (
	connectPostgres = db.Connect
	migratePostgres = db.Migrate
)

// Store объединяет оба репозитория одного хранилища.
type Store interface {
	domain.TaskRepo
	domain.SubscriberRepo
	Connected() bool
}

// App держит собранные сервисы и ресурсы, которые надо закрыть.
type App struct {
	Store         Store
	Cache         domain.TaskCache
	Tasks         *tasks.Service
	Subscriptions *subscription.Service

	closers []func()
}

// New подключает хранилище и кэш и собирает сервисы.
// Недоступное хранилище не считается ошибкой: сервисы работают в деградированном режиме.
func New(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(ctx, cfg, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Store = store
	a.Cache = a.openCache(ctx, cfg, logger)

	fetcher, err := leetcode.New(cfg.LeetCode.URL,
		leetcode.WithMethod(cfg.LeetCode.Method),
		leetcode.WithTimeout(cfg.LeetCode.Timeout),
	)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("клиент leetcode: %w", err)
	}

	a.Tasks = tasks.NewService(fetcher, a.Store, a.Cache, logger, tasks.WithNormalizer(telegram.NormalizedTask))
	a.Subscriptions = subscription.NewService(a.Store)
	return a, nil
}

// Notifier собирает сервис рассылки поверх отправителя.
func (a *App) Notifier(cfg config.AppConfig, sender domain.Sender, logger zerolog.Logger) *notify.Service {
	policy := retry.Default(cfg.Notify.Attempts)
	policy.Retryable = func(err error) bool { return !telegram.IsPermanent(err) }
	return notify.NewService(a.Tasks, a.Store, sender, telegram.TaskMessage, notify.Config{
		Concurrency: cfg.Notify.Concurrency,
		Policy:      policy,
	}, logger)
}

// Close освобождает ресурсы в обратном порядке.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) openStore(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) (Store, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		s, err := repo.OpenSQLite(cfg.DB.SQLitePath)
		if err != nil {
			logger.Error().Err(err).Str("path", cfg.DB.SQLitePath).Msg("sqlite недоступен, работаем без хранилища")
			return repo.NewSQLite(nil), nil
		}
		a.closers = append(a.closers, func() { _ = s.Close() })
		return s, nil
	case config.DriverPostgres:
		pool, err := connectPostgres(ctx, logger, cfg.DB.PGDSN, cfg.DB.ConnectAttempts)
		if err != nil {
			logger.Error().Err(err).Msg("postgres недоступен, работаем без хранилища")
			return repo.NewPostgres(nil), nil
		}
		if err := migratePostgres(pool); err != nil {
			logger.Error().Err(err).Msg("миграции postgres не применены, работаем без хранилища")
			pool.Close()
			return repo.NewPostgres(nil), nil
		}
		a.closers = append(a.closers, pool.Close)
		return repo.NewPostgres(pool), nil
	default:
		return nil, fmt.Errorf("неизвестный драйвер %q", cfg.DB.Driver)
	}
}

func (a *App) openCache(ctx context.Context, cfg config.AppConfig, logger zerolog.Logger) domain.TaskCache {
	switch cfg.Cache.Backend {
	case config.CacheFile:
		return cache.NewFile(cfg.Cache.Dir)
	case config.CacheRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		c := cache.NewRedis(client, cfg.Cache.TTL)
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := c.Ping(pingCtx); err != nil {
			logger.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis недоступен, кэш выключен")
			_ = client.Close()
			return cache.Nop{}
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		return c
	default:
		return cache.Nop{}
	}
}
