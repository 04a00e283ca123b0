package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"leetcode-bot/internal/infra/config"
	"leetcode-bot/internal/infra/db"
	"leetcode-bot/internal/infra/log"
	"leetcode-bot/migrations"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)

	driver := flag.String("driver", cfg.DB.Driver, "storage driver: postgres or sqlite")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-driver postgres|sqlite] <command>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  up          Migrate to the latest version")
		fmt.Fprintln(os.Stderr, "  up-one      Migrate one version up")
		fmt.Fprintln(os.Stderr, "  down        Roll back one version")
		fmt.Fprintln(os.Stderr, "  status      Show migration status")
		fmt.Fprintln(os.Stderr, "  version     Show current version")
		fmt.Fprintln(os.Stderr, "  reset       Roll back all migrations")
		os.Exit(1)
	}

	dialect, err := migrations.ForDriver(*driver)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: неизвестный драйвер")
	}

	sqlDB, closeDB, err := open(cfg, dialect)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: нет подключения к БД")
	}
	defer closeDB()

	if err := migrations.Setup(dialect); err != nil {
		logger.Fatal().Err(err).Msg("migrate: настройка goose")
	}

	cmd := args[0]
	switch cmd {
	case "up":
		err = goose.Up(sqlDB, dialect.Dir)
	case "up-one":
		err = goose.UpByOne(sqlDB, dialect.Dir)
	case "down":
		err = goose.Down(sqlDB, dialect.Dir)
	case "status":
		err = goose.Status(sqlDB, dialect.Dir)
	case "version":
		err = goose.Version(sqlDB, dialect.Dir)
	case "reset":
		err = goose.Reset(sqlDB, dialect.Dir)
	default:
		logger.Fatal().Str("command", cmd).Msg("migrate: неизвестная команда")
	}
	if err != nil {
		logger.Fatal().Err(err).Str("command", cmd).Msg("migrate: команда завершилась ошибкой")
	}
}

func open(cfg config.AppConfig, dialect migrations.Dialect) (*sql.DB, func(), error) {
	if dialect == migrations.SQLite {
		sqlDB, err := sql.Open("sqlite", cfg.DB.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return sqlDB, func() { _ = sqlDB.Close() }, nil
	}
	pool, err := db.Connect(context.Background(), log.NewLogger(cfg.AppEnv), cfg.DB.PGDSN, cfg.DB.ConnectAttempts)
	if err != nil {
		return nil, nil, err
	}
	sqlDB := db.OpenSQL(pool)
	return sqlDB, func() {
		_ = sqlDB.Close()
		pool.Close()
	}, nil
}
