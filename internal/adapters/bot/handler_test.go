package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"leetcode-bot/internal/adapters/telegram"
	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/usecase/subscription"
)

type stubTasks struct {
	task       domain.Task
	dailyErr   error
	byIDErr    error
	dailyCalls int
	panicOn    bool
}

func (s *stubTasks) GetDailyTask(context.Context) (domain.Task, error) {
	s.dailyCalls++
	if s.panicOn {
		panic("boom")
	}
	return s.task, s.dailyErr
}

func (s *stubTasks) GetTaskByID(_ context.Context, id int64) (bool, domain.Task, error) {
	if s.byIDErr != nil {
		return false, domain.Task{}, s.byIDErr
	}
	if id != s.task.DateID {
		return false, domain.Task{}, nil
	}
	return true, s.task, nil
}

type memSubscribers struct {
	users   map[int64]domain.Subscriber
	touches int
}

func (m *memSubscribers) GetOrCreate(_ context.Context, p domain.Subscriber) (domain.Subscriber, error) {
	m.touches++
	if existing, ok := m.users[p.UserID]; ok {
		p.Subscribed = existing.Subscribed
	}
	m.users[p.UserID] = p
	return p, nil
}

func (m *memSubscribers) GetSubscriber(_ context.Context, id int64) (domain.Subscriber, error) {
	sub, ok := m.users[id]
	if !ok {
		return domain.Subscriber{}, domain.ErrSubscriberNotFound
	}
	return sub, nil
}

func (m *memSubscribers) SetSubscribed(_ context.Context, id int64, v bool) (bool, error) {
	sub, ok := m.users[id]
	if !ok {
		return false, domain.ErrSubscriberNotFound
	}
	if sub.Subscribed == v {
		return false, nil
	}
	sub.Subscribed = v
	m.users[id] = sub
	return true, nil
}

func (m *memSubscribers) ListSubscribed(context.Context) ([]domain.Subscriber, error) { return nil, nil }

func sampleTask() domain.Task {
	return domain.Task{
		DateID:     20210214,
		QuestionID: 1,
		TitleSlug:  "two-sum",
		Title:      "Two Sum",
		Content:    "Given an array",
		Hints:      []string{"first", "second"},
		Difficulty: "Easy",
	}
}

func newTestHandler() (*Handler, *stubTasks, *memSubscribers) {
	tasks := &stubTasks{task: sampleTask()}
	subs := &memSubscribers{users: map[int64]domain.Subscriber{}}
	return NewHandler(tasks, subscription.NewService(subs), zerolog.Nop()), tasks, subs
}

func messageUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 1,
		Message: &tgbotapi.Message{
			Text: text,
			Chat: &tgbotapi.Chat{ID: 555},
			From: &tgbotapi.User{ID: 7, FirstName: "Alice", UserName: "alice"},
		},
	}
}

func callbackUpdate(t *testing.T, data domain.CallbackData) tgbotapi.Update {
	t.Helper()
	raw, err := telegram.EncodeCallback(data)
	if err != nil {
		t.Fatal(err)
	}
	return rawCallbackUpdate(raw)
}

func rawCallbackUpdate(raw string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: 2,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    &tgbotapi.User{ID: 7},
			Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 555}},
			Data:    raw,
		},
	}
}

func TestDailyTaskCommands(t *testing.T) {
	for _, text := range []string{"/getDailyTask", "Get actual daily task", "/getDailyTask@LeetBot"} {
		t.Run(text, func(t *testing.T) {
			h, _, _ := newTestHandler()
			msg, err := h.HandleUpdate(context.Background(), messageUpdate(text))
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if msg.ChatID != 555 || msg.Method != telegram.MethodSendMessage || msg.ParseMode != tgbotapi.ModeHTML {
				t.Fatalf("unexpected envelope %+v", msg)
			}
			if !strings.Contains(msg.Text, "<strong>Two Sum</strong>") {
				t.Fatalf("task title missing: %q", msg.Text)
			}
			if _, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); !ok {
				t.Fatalf("task reply must carry the task keyboard, got %T", msg.ReplyMarkup)
			}
		})
	}
}

func TestSubscribeDialog(t *testing.T) {
	ctx := context.Background()
	h, _, subs := newTestHandler()

	steps := []struct {
		text string
		want string
	}{
		{"/Subscribe", "successfully subscribed"},
		{"Subscribe", "already subscribed"},
		{"/Unsubscribe", "successfully unsubscribed"},
		{"Unsubscribe", "not subscribed"},
	}
	for _, step := range steps {
		msg, err := h.HandleUpdate(ctx, messageUpdate(step.text))
		if err != nil {
			t.Fatalf("%s: %v", step.text, err)
		}
		if !strings.Contains(msg.Text, step.want) || !strings.HasPrefix(msg.Text, "Alice") {
			t.Fatalf("%s: unexpected reply %q", step.text, msg.Text)
		}
		if _, ok := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup); !ok {
			t.Fatalf("%s: reply must carry the main keyboard", step.text)
		}
	}
	if subs.touches != len(steps) {
		t.Fatalf("every message must register the user once, got %d touches", subs.touches)
	}
}

func TestUnknownCommandShowsHelp(t *testing.T) {
	h, tasks, subs := newTestHandler()
	msg, err := h.HandleUpdate(context.Background(), messageUpdate("/dance"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.Contains(msg.Text, `"/dance"`) || !strings.Contains(msg.Text, "/getDailyTask") {
		t.Fatalf("unexpected help text %q", msg.Text)
	}
	if tasks.dailyCalls != 0 {
		t.Fatalf("help must not fetch the task")
	}
	if _, ok := subs.users[7]; !ok {
		t.Fatalf("user should be registered on any message")
	}
}

func TestStartGreets(t *testing.T) {
	h, _, _ := newTestHandler()
	msg, err := h.HandleUpdate(context.Background(), messageUpdate("/start payload"))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	if !strings.HasPrefix(msg.Text, "Hi, Alice!") {
		t.Fatalf("unexpected greeting %q", msg.Text)
	}
}

func TestCallbacks(t *testing.T) {
	tests := []struct {
		name string
		upd  func(t *testing.T) tgbotapi.Update
		want string
	}{
		{
			name: "first hint",
			upd: func(t *testing.T) tgbotapi.Update {
				return callbackUpdate(t, domain.CallbackData{DateID: 20210214, Hint: 0})
			},
			want: "Hint #1: first",
		},
		{
			name: "last hint",
			upd: func(t *testing.T) tgbotapi.Update {
				return callbackUpdate(t, domain.CallbackData{DateID: 20210214, Hint: 1})
			},
			want: "Hint #2: second",
		},
		{
			name: "hint out of range",
			upd: func(t *testing.T) tgbotapi.Update {
				return callbackUpdate(t, domain.CallbackData{DateID: 20210214, Hint: 2})
			},
			want: "There is no such hint for task 20210214",
		},
		{
			name: "negative hint",
			upd: func(t *testing.T) tgbotapi.Update {
				return callbackUpdate(t, domain.CallbackData{DateID: 20210214, Hint: -1})
			},
			want: "There is no such hint for task 20210214",
		},
		{
			name: "difficulty",
			upd: func(t *testing.T) tgbotapi.Update {
				return callbackUpdate(t, domain.CallbackData{DateID: 20210214, Type: domain.CallbackDifficulty})
			},
			want: "Task difficulty: Easy",
		},
		{
			name: "unknown task",
			upd: func(t *testing.T) tgbotapi.Update {
				return callbackUpdate(t, domain.CallbackData{DateID: 20000101})
			},
			want: noSuchTaskText,
		},
		{
			name: "garbage data",
			upd:  func(*testing.T) tgbotapi.Update { return rawCallbackUpdate("not json") },
			want: noSuchTaskText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, tasks, _ := newTestHandler()
			msg, err := h.HandleUpdate(context.Background(), tt.upd(t))
			if err != nil {
				t.Fatalf("handle: %v", err)
			}
			if msg.Text != tt.want || msg.ChatID != 555 {
				t.Fatalf("got %q to %d, want %q", msg.Text, msg.ChatID, tt.want)
			}
			if tasks.dailyCalls != 0 {
				t.Fatalf("callbacks must never fetch the daily task")
			}
		})
	}
}

func TestCommandParsing(t *testing.T) {
	cases := map[string]string{
		"/getDailyTask":         "/getDailyTask",
		"/getDailyTask@SomeBot": "/getDailyTask",
		"/start ref":            "/start",
		"Subscribe":             "Subscribe",
		"hello there":           "hello there",
	}
	for in, want := range cases {
		if got := command(in); got != want {
			t.Fatalf("command(%q) = %q, want %q", in, got, want)
		}
	}
}

func postWebhook(t *testing.T, h *Handler, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/bot/webhook", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Webhook().ServeHTTP(rec, req)
	return rec.Code, rec.Body.String()
}

func TestWebhookReturnsSendMessage(t *testing.T) {
	h, _, _ := newTestHandler()
	raw, err := json.Marshal(messageUpdate("/getDailyTask"))
	if err != nil {
		t.Fatal(err)
	}
	code, body := postWebhook(t, h, string(raw))
	if code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	var out map[string]any
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("decode body %q: %v", body, err)
	}
	if out["method"] != "sendMessage" || out["parse_mode"] != "HTML" || out["chat_id"] != float64(555) {
		t.Fatalf("unexpected body %s", body)
	}
	if _, ok := out["reply_markup"].(map[string]any)["inline_keyboard"]; !ok {
		t.Fatalf("expected inline keyboard in %s", body)
	}
}

func TestWebhookApologises(t *testing.T) {
	updJSON := func(t *testing.T) string {
		raw, err := json.Marshal(messageUpdate("/getDailyTask"))
		if err != nil {
			t.Fatal(err)
		}
		return string(raw)
	}
	tests := []struct {
		name  string
		setup func(*stubTasks)
		body  func(t *testing.T) string
	}{
		{
			name:  "provider error",
			setup: func(s *stubTasks) { s.dailyErr = errors.New("leetcode down") },
			body:  updJSON,
		},
		{
			name:  "panic",
			setup: func(s *stubTasks) { s.panicOn = true },
			body:  updJSON,
		},
		{
			name:  "invalid json",
			setup: func(*stubTasks) {},
			body:  func(*testing.T) string { return "{broken" },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, tasks, _ := newTestHandler()
			tt.setup(tasks)
			code, body := postWebhook(t, h, tt.body(t))
			if code != http.StatusOK {
				t.Fatalf("webhook must always answer 200, got %d", code)
			}
			if !strings.Contains(body, apologyText) {
				t.Fatalf("expected apology, got %s", body)
			}
		})
	}
}

func TestWebhookEmptyUpdate(t *testing.T) {
	h, _, _ := newTestHandler()
	code, body := postWebhook(t, h, `{"update_id": 10}`)
	if code != http.StatusOK || body != "{}" {
		t.Fatalf("expected empty object, got %d %q", code, body)
	}
}
