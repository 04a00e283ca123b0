package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"

	"leetcode-bot/internal/infra/retry"
	"leetcode-bot/migrations"
)

const connectTimeout = 5 * time.Second

// Connect создаёт пул подключений к Postgres и проверяет его ping-ом.
// Делает не больше attempts попыток, между ними пауза растёт.
func Connect(ctx context.Context, logger zerolog.Logger, dsn string, attempts int) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = 5

	var pool *pgxpool.Pool
	policy := retry.Default(attempts)
	policy.Initial = 500 * time.Millisecond
	made, err := policy.Do(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		p, err := pgxpool.NewWithConfig(attemptCtx, cfg)
		if err != nil {
			return err
		}
		if err := p.Ping(attemptCtx); err != nil {
			p.Close()
			logger.Warn().Err(err).Msg("postgres недоступен, повторяем")
			return err
		}
		pool = p
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres after %d attempts: %w", made, err)
	}
	return pool, nil
}

// OpenSQL оборачивает пул в *sql.DB для goose. Закрытие *sql.DB не закрывает пул.
func OpenSQL(pool *pgxpool.Pool) *sql.DB {
	return stdlib.OpenDBFromPool(pool)
}

// Migrate применяет миграции к Postgres через database/sql поверх пула.
func Migrate(pool *pgxpool.Pool) error {
	sqlDB := OpenSQL(pool)
	defer sqlDB.Close()
	return migrations.Run(sqlDB, migrations.Postgres)
}
