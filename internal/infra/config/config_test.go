package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"APP_ENV", "PORT", "TG_BOT_TOKEN", "TG_TIMEOUT", "PG_DSN", "DB_DRIVER", "SQLITE_PATH",
	"DB_CONNECT_ATTEMPTS", "REDIS_ADDR", "CACHE_BACKEND", "CACHE_DIR", "CACHE_TTL",
	"LEETCODE_URL", "LEETCODE_METHOD", "LEETCODE_TIMEOUT", "NOTIFY_CONCURRENCY", "NOTIFY_ATTEMPTS",
}

// clearEnv убирает переменные окружения, t.Setenv вернёт их после теста.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TG_BOT_TOKEN", "123:abc")
	t.Setenv("PG_DSN", "postgres://bot@localhost/bot")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.AppEnv != "dev" || cfg.Port != 8080 {
		t.Fatalf("unexpected app defaults: %+v", cfg)
	}
	if cfg.DB.Driver != DriverPostgres || cfg.DB.ConnectAttempts != 3 {
		t.Fatalf("unexpected db defaults: %+v", cfg.DB)
	}
	if cfg.Cache.Backend != CacheFile || cfg.Cache.Dir != "/tmp" || cfg.Cache.TTL != 48*time.Hour {
		t.Fatalf("unexpected cache defaults: %+v", cfg.Cache)
	}
	if cfg.LeetCode.Method != "POST" || cfg.LeetCode.Timeout != 5*time.Second {
		t.Fatalf("unexpected leetcode defaults: %+v", cfg.LeetCode)
	}
	if cfg.Notify.Concurrency != 8 || cfg.Notify.Attempts != 3 {
		t.Fatalf("unexpected notify defaults: %+v", cfg.Notify)
	}
	if cfg.ListenAddr() != ":8080" {
		t.Fatalf("unexpected listen addr %q", cfg.ListenAddr())
	}
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{
			name:  "missing token",
			env:   map[string]string{"PG_DSN": "postgres://x"},
			field: "Token",
		},
		{
			name:  "postgres without dsn",
			env:   map[string]string{"TG_BOT_TOKEN": "t"},
			field: "PGDSN",
		},
		{
			name:  "redis without addr",
			env:   map[string]string{"TG_BOT_TOKEN": "t", "DB_DRIVER": "sqlite", "CACHE_BACKEND": "redis"},
			field: "RedisAddr",
		},
		{
			name:  "unknown driver",
			env:   map[string]string{"TG_BOT_TOKEN": "t", "DB_DRIVER": "mysql"},
			field: "Driver",
		},
		{
			name:  "unsupported method",
			env:   map[string]string{"TG_BOT_TOKEN": "t", "DB_DRIVER": "sqlite", "LEETCODE_METHOD": "PUT"},
			field: "Method",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Fatalf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestParseSQLiteWithoutDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("TG_BOT_TOKEN", "t")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CACHE_BACKEND", "none")

	cfg, err := Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.DB.SQLitePath == "" {
		t.Fatalf("sqlite path should have a default")
	}
}
