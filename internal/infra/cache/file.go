package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"leetcode-bot/internal/domain"
)

const (
	fileNameFormat  = "task_%d.cache"
	tempNamePattern = ".task_%d.*.tmp"
)

// File хранит задачи JSON-файлами в каталоге, по файлу на dateId.
// Переживает перезапуск процесса, но не пересоздание контейнера.
type File struct {
	dir string
}

// NewFile создаёт файловый кэш в каталоге dir.
func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (c *File) path(dateID int64) string {
	return filepath.Join(c.dir, fmt.Sprintf(fileNameFormat, dateID))
}

// GetTask читает задачу из файла.
func (c *File) GetTask(ctx context.Context, dateID int64) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	raw, err := os.ReadFile(c.path(dateID))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("read cache file: %w", err)
	}
	return decodeTask(raw)
}

// PutTask пишет файл, только если его ещё нет.
// Данные пишутся во временный файл и появляются под своим именем через os.Link целиком.
func (c *File) PutTask(ctx context.Context, task domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeTask(task)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(c.dir, fmt.Sprintf(tempNamePattern, task.DateID))
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Link(tmp.Name(), c.path(task.DateID)); err != nil && !errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("publish cache file: %w", err)
	}
	return nil
}
