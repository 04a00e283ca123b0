package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy описывает повторы одной операции.
type Policy struct {
	// Attempts: общее число попыток, включая первую.
	Attempts int
	// Initial: пауза перед второй попыткой, дальше она растёт экспоненциально.
	Initial time.Duration
	// MaxInterval ограничивает рост паузы.
	MaxInterval time.Duration
	// Retryable решает, стоит ли повторять ошибку. nil означает «повторять всё».
	Retryable func(error) bool
}

// Default возвращает политику на заданное число попыток.
func Default(attempts int) Policy {
	return Policy{
		Attempts:    attempts,
		Initial:     200 * time.Millisecond,
		MaxInterval: 2 * time.Second,
	}
}

// Do выполняет op, пока она не завершится успешно, не кончатся попытки
// или не отменится контекст. Возвращает последнюю ошибку op и число сделанных попыток.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) (int, error) {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	exp := backoff.NewExponentialBackOff()
	if p.Initial > 0 {
		exp.InitialInterval = p.Initial
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithMaxRetries(exp, uint64(attempts-1))
	b = backoff.WithContext(b, ctx)

	made := 0
	err := backoff.Retry(func() error {
		made++
		err := op(ctx)
		if err != nil && p.Retryable != nil && !p.Retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
	return made, err
}
