package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"leetcode-bot/internal/adapters/telegram"
	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
	"leetcode-bot/internal/usecase/subscription"
)

// Handler превращает входящий апдейт в ответное сообщение. Состояния между вызовами не хранит.
type Handler struct {
	tasks domain.TaskProvider
	subs  *subscription.Service
	log   zerolog.Logger
}

// NewHandler создаёт обработчик.
func NewHandler(tasks domain.TaskProvider, subs *subscription.Service, logger zerolog.Logger) *Handler {
	return &Handler{
		tasks: tasks,
		subs:  subs,
		log:   logger.With().Str("component", "bot").Logger(),
	}
}

// HandleUpdate обрабатывает входящий апдейт. Пустой ответ означает, что отвечать нечем.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) (domain.OutboundMessage, error) {
	switch {
	case upd.Message != nil:
		metrics.IncUpdate("message")
		return h.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		metrics.IncUpdate("callback")
		return h.handleCallback(ctx, upd.CallbackQuery)
	default:
		metrics.IncUpdate("other")
		return domain.OutboundMessage{}, nil
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) (domain.OutboundMessage, error) {
	profile := profileOf(msg)
	if _, err := h.subs.Touch(ctx, profile); err != nil {
		return domain.OutboundMessage{}, err
	}

	text := strings.TrimSpace(msg.Text)
	switch command(text) {
	case cmdStart:
		return h.reply(profile.ChatID, fmt.Sprintf(startText, displayName(profile))), nil
	case cmdDailyTask, telegram.ButtonDailyTask:
		task, err := h.tasks.GetDailyTask(ctx)
		if err != nil {
			return domain.OutboundMessage{}, err
		}
		return telegram.TaskMessage(profile.ChatID, task)
	case cmdSubscribe, telegram.ButtonSubscribe:
		res, err := h.subs.Subscribe(ctx, profile)
		if err != nil {
			return domain.OutboundMessage{}, err
		}
		if res == subscription.AlreadyInState {
			return h.reply(profile.ChatID, fmt.Sprintf(alreadySubscribedText, displayName(profile))), nil
		}
		return h.reply(profile.ChatID, fmt.Sprintf(subscribedText, displayName(profile))), nil
	case cmdUnsubscribe, telegram.ButtonUnsubscribe:
		res, err := h.subs.Unsubscribe(ctx, profile)
		if err != nil {
			return domain.OutboundMessage{}, err
		}
		if res == subscription.AlreadyInState {
			return h.reply(profile.ChatID, fmt.Sprintf(notSubscribedText, displayName(profile))), nil
		}
		return h.reply(profile.ChatID, fmt.Sprintf(unsubscribedText, displayName(profile))), nil
	default:
		return h.reply(profile.ChatID, fmt.Sprintf(helpText, text)), nil
	}
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) (domain.OutboundMessage, error) {
	chatID := callbackChatID(cb)
	data, err := telegram.DecodeCallback(cb.Data)
	if err != nil {
		h.log.Debug().Err(err).Str("data", cb.Data).Msg("некорректные данные кнопки")
		return telegram.NewMessage(chatID, noSuchTaskText, nil), nil
	}

	found, task, err := h.tasks.GetTaskByID(ctx, data.DateID)
	if err != nil {
		return domain.OutboundMessage{}, err
	}
	if !found {
		return telegram.NewMessage(chatID, noSuchTaskText, nil), nil
	}

	switch data.Type {
	case domain.CallbackDifficulty:
		return telegram.NewMessage(chatID, fmt.Sprintf(difficultyText, task.Difficulty), nil), nil
	case domain.CallbackHint:
		if data.Hint < 0 || data.Hint >= len(task.Hints) {
			return telegram.NewMessage(chatID, fmt.Sprintf(noSuchHintText, task.DateID), nil), nil
		}
		return telegram.NewMessage(chatID, fmt.Sprintf(hintText, data.Hint+1, task.Hints[data.Hint]), nil), nil
	default:
		return telegram.NewMessage(chatID, noSuchTaskText, nil), nil
	}
}

// reply добавляет к ответу основную клавиатуру.
func (h *Handler) reply(chatID int64, text string) domain.OutboundMessage {
	return telegram.NewMessage(chatID, text, telegram.MainKeyboard())
}

// apology: ответ на любую ошибку обработки.
func apology(chatID int64) domain.OutboundMessage {
	return telegram.NewMessage(chatID, apologyText, nil)
}

// command отрезает у слеш-команды аргументы и суффикс @botname.
func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}

func profileOf(msg *tgbotapi.Message) domain.Subscriber {
	profile := domain.Subscriber{}
	if msg.Chat != nil {
		profile.ChatID = msg.Chat.ID
	}
	if msg.From != nil {
		profile.UserID = msg.From.ID
		profile.Username = msg.From.UserName
		profile.FirstName = msg.From.FirstName
		profile.LastName = msg.From.LastName
	}
	if profile.UserID == 0 {
		profile.UserID = profile.ChatID
	}
	if profile.ChatID == 0 {
		profile.ChatID = profile.UserID
	}
	return profile
}

func displayName(profile domain.Subscriber) string {
	switch {
	case profile.FirstName != "":
		return profile.FirstName
	case profile.Username != "":
		return profile.Username
	default:
		return fallbackFirstName
	}
}

func callbackChatID(cb *tgbotapi.CallbackQuery) int64 {
	if cb.Message != nil && cb.Message.Chat != nil {
		return cb.Message.Chat.ID
	}
	if cb.From != nil {
		return cb.From.ID
	}
	return 0
}

// chatOf достаёт чат из апдейта, чтобы было кому извиниться.
func chatOf(upd tgbotapi.Update) int64 {
	switch {
	case upd.Message != nil:
		return profileOf(upd.Message).ChatID
	case upd.CallbackQuery != nil:
		return callbackChatID(upd.CallbackQuery)
	default:
		return 0
	}
}
