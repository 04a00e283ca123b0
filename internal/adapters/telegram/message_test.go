package telegram

import (
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/go-cmp/cmp"

	"leetcode-bot/internal/domain"
)

func taskWithHints(n int) domain.Task {
	task := domain.Task{DateID: 20210214, QuestionID: 1, TitleSlug: "two-sum", Title: "Two Sum", Content: "Body"}
	for i := 0; i < n; i++ {
		task.Hints = append(task.Hints, "hint")
	}
	return task
}

func TestTaskKeyboardLayout(t *testing.T) {
	kb, err := TaskKeyboard(taskWithHints(7))
	if err != nil {
		t.Fatalf("keyboard: %v", err)
	}
	rows := kb.InlineKeyboard
	// ссылка, 5 подсказок, 2 подсказки, сложность
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}
	if url := rows[0][0].URL; url == nil || *url != "https://leetcode.com/problems/two-sum/" {
		t.Fatalf("unexpected link button %+v", rows[0][0])
	}
	if len(rows[1]) != 5 || len(rows[2]) != 2 {
		t.Fatalf("hints must be packed five per row: %d, %d", len(rows[1]), len(rows[2]))
	}
	if rows[2][1].Text != "Hint 7" {
		t.Fatalf("unexpected last hint label %q", rows[2][1].Text)
	}

	data := *rows[2][1].CallbackData
	got, err := DecodeCallback(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(domain.CallbackData{DateID: 20210214, Hint: 6}, got); diff != "" {
		t.Fatalf("callback mismatch (-want +got):\n%s", diff)
	}
	if len(data) > 64 {
		t.Fatalf("callback data exceeds Telegram limit: %d bytes", len(data))
	}

	diffData, err := DecodeCallback(*rows[3][0].CallbackData)
	if err != nil || diffData.Type != domain.CallbackDifficulty {
		t.Fatalf("last row must request the difficulty: %+v err=%v", diffData, err)
	}
}

func TestTaskKeyboardWithoutHints(t *testing.T) {
	kb, err := TaskKeyboard(taskWithHints(0))
	if err != nil {
		t.Fatalf("keyboard: %v", err)
	}
	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("expected link and difficulty rows only, got %d", len(kb.InlineKeyboard))
	}
}

func TestCallbackWireFormat(t *testing.T) {
	raw, err := EncodeCallback(domain.CallbackData{DateID: 20210214, Hint: 2})
	if err != nil {
		t.Fatal(err)
	}
	if raw != `{"dateId":20210214,"hint":2}` {
		t.Fatalf("unexpected callback json %s", raw)
	}
	if _, err := DecodeCallback("{"); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestTaskMessage(t *testing.T) {
	msg, err := TaskMessage(42, taskWithHints(1))
	if err != nil {
		t.Fatalf("task message: %v", err)
	}
	if msg.ChatID != 42 || msg.Method != MethodSendMessage || msg.ParseMode != tgbotapi.ModeHTML {
		t.Fatalf("unexpected envelope %+v", msg)
	}
	if msg.Text != "<strong>Two Sum</strong>\n\nBody" {
		t.Fatalf("unexpected text %q", msg.Text)
	}
}

func TestMainKeyboard(t *testing.T) {
	kb := MainKeyboard()
	if !kb.ResizeKeyboard || !strings.Contains(kb.InputFieldPlaceholder, "buttons") {
		t.Fatalf("unexpected keyboard options %+v", kb)
	}
	labels := []string{kb.Keyboard[0][0].Text, kb.Keyboard[1][0].Text, kb.Keyboard[1][1].Text}
	if diff := cmp.Diff([]string{ButtonDailyTask, ButtonSubscribe, ButtonUnsubscribe}, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
}
