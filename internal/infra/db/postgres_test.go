package db

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConnectRejectsBadDSN(t *testing.T) {
	_, err := Connect(context.Background(), zerolog.Nop(), "::not a dsn::", 3)
	if err == nil || !strings.Contains(err.Error(), "parse dsn") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestConnectGivesUpAfterAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Connect(ctx, zerolog.Nop(), "postgres://bot@127.0.0.1:1/bot?connect_timeout=1", 2)
	if err == nil {
		t.Fatalf("expected connection error")
	}
}
