package cache

import (
	"context"

	"leetcode-bot/internal/domain"
)

// Nop: выключенный кэш: всегда промах, запись игнорируется.
type Nop struct{}

// GetTask всегда возвращает domain.ErrTaskNotFound.
func (Nop) GetTask(context.Context, int64) (domain.Task, error) {
	return domain.Task{}, domain.ErrTaskNotFound
}

// PutTask ничего не делает.
func (Nop) PutTask(context.Context, domain.Task) error {
	return nil
}
