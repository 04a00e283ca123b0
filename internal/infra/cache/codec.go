package cache

import (
	"encoding/json"
	"fmt"

	"leetcode-bot/internal/domain"
)

func encodeTask(task domain.Task) ([]byte, error) {
	raw, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("encode task %d: %w", task.DateID, err)
	}
	return raw, nil
}

func decodeTask(raw []byte) (domain.Task, error) {
	var task domain.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return domain.Task{}, fmt.Errorf("decode cached task: %w", err)
	}
	if task.Hints == nil {
		task.Hints = []string{}
	}
	return task, nil
}
