package repo

import (
	"encoding/json"
	"fmt"
)

// Подсказки хранятся одной колонкой JSON-массивом строк.
func encodeHints(hints []string) (string, error) {
	if hints == nil {
		hints = []string{}
	}
	raw, err := json.Marshal(hints)
	if err != nil {
		return "", fmt.Errorf("encode hints: %w", err)
	}
	return string(raw), nil
}

func decodeHints(raw string) ([]string, error) {
	hints := []string{}
	if raw == "" {
		return hints, nil
	}
	if err := json.Unmarshal([]byte(raw), &hints); err != nil {
		return nil, fmt.Errorf("decode hints: %w", err)
	}
	return hints, nil
}
