package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"leetcode-bot/internal/domain"
)

func sampleTask() domain.Task {
	return domain.Task{
		DateID:     20210214,
		QuestionID: 1,
		ItemID:     42,
		TitleSlug:  "two-sum",
		Title:      "Two Sum",
		Content:    "Given an array",
		Hints:      []string{"use a map"},
		Difficulty: "Easy",
	}
}

func TestFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewFile(t.TempDir())

	if _, err := c.GetTask(ctx, 20210214); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
	want := sampleTask()
	if err := c.PutTask(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.GetTask(ctx, want.DateID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cached task mismatch (-want +got):\n%s", diff)
	}
}

func TestFilePutKeepsExisting(t *testing.T) {
	ctx := context.Background()
	c := NewFile(t.TempDir())

	first := sampleTask()
	if err := c.PutTask(ctx, first); err != nil {
		t.Fatalf("put: %v", err)
	}
	second := first
	second.Title = "Changed"
	if err := c.PutTask(ctx, second); err != nil {
		t.Fatalf("second put: %v", err)
	}
	got, err := c.GetTask(ctx, first.DateID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != first.Title {
		t.Fatalf("existing entry was overwritten: %q", got.Title)
	}
}

func TestFileCorruptEntry(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "task_20210214.cache"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := NewFile(dir).GetTask(context.Background(), 20210214)
	if err == nil || errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestNop(t *testing.T) {
	var c Nop
	if err := c.PutTask(context.Background(), sampleTask()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := c.GetTask(context.Background(), 20210214); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("expected miss, got %v", err)
	}
}

func TestFilePutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := NewFile(dir)

	task := sampleTask()
	for i := 0; i < 2; i++ {
		if err := c.PutTask(ctx, task); err != nil {
			t.Fatalf("put %d: %v", i, err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "task_20210214.cache" {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only the cache entry, got %v", names)
	}
}

func TestFileIgnoresStaleTempFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	// недописанный файл от упавшего процесса
	if err := os.WriteFile(filepath.Join(dir, ".task_20210214.123.tmp"), []byte(`{"questi`), 0o644); err != nil {
		t.Fatal(err)
	}
	c := NewFile(dir)
	if _, err := c.GetTask(ctx, 20210214); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Fatalf("partial write must not be visible, got %v", err)
	}
	want := sampleTask()
	if err := c.PutTask(ctx, want); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := c.GetTask(ctx, want.DateID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cached task mismatch (-want +got):\n%s", diff)
	}
}
