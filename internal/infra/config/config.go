package config

import (
	"fmt"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища и бэкенды кэша.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// AppConfig описывает конфигурацию сервисов.
type AppConfig struct {
	AppEnv string `envconfig:"APP_ENV" default:"dev" validate:"oneof=dev prod test"`
	Port   int    `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`

	Telegram struct {
		Token   string        `envconfig:"TG_BOT_TOKEN" validate:"required"`
		Timeout time.Duration `envconfig:"TG_TIMEOUT" default:"5s" validate:"min=1s,max=1m"`
	} `envconfig:""`

	DB struct {
		Driver          string `envconfig:"DB_DRIVER" default:"postgres" validate:"oneof=postgres sqlite"`
		PGDSN           string `envconfig:"PG_DSN" validate:"required_if=Driver postgres"`
		SQLitePath      string `envconfig:"SQLITE_PATH" default:"leetcode-bot.db" validate:"required_if=Driver sqlite"`
		ConnectAttempts int    `envconfig:"DB_CONNECT_ATTEMPTS" default:"3" validate:"min=1,max=20"`
	} `envconfig:""`

	Cache struct {
		Backend   string        `envconfig:"CACHE_BACKEND" default:"file" validate:"oneof=file redis none"`
		Dir       string        `envconfig:"CACHE_DIR" default:"/tmp" validate:"required_if=Backend file"`
		TTL       time.Duration `envconfig:"CACHE_TTL" default:"48h" validate:"min=1m"`
		RedisAddr string        `envconfig:"REDIS_ADDR" validate:"required_if=Backend redis"`
	} `envconfig:""`

	LeetCode struct {
		URL     string        `envconfig:"LEETCODE_URL" default:"https://leetcode.com/graphql" validate:"required,url"`
		Method  string        `envconfig:"LEETCODE_METHOD" default:"POST" validate:"oneof=GET POST"`
		Timeout time.Duration `envconfig:"LEETCODE_TIMEOUT" default:"5s" validate:"min=1s,max=1m"`
	} `envconfig:""`

	Notify struct {
		Concurrency int `envconfig:"NOTIFY_CONCURRENCY" default:"8" validate:"min=1,max=64"`
		Attempts    int `envconfig:"NOTIFY_ATTEMPTS" default:"3" validate:"min=1,max=10"`
	} `envconfig:""`
}

// Parse читает конфиг из окружения и проверяет его.
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("read env: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return AppConfig{}, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Load загружает конфиг из окружения.
func Load() AppConfig {
	cfg, err := Parse()
	if err != nil {
		log.Fatalf("не удалось загрузить конфиг: %v", err)
	}
	return cfg
}

// ListenAddr возвращает адрес HTTP сервера.
func (c AppConfig) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
