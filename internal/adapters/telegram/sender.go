package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender доставляет исходящие сообщения через Bot API.
type Sender struct {
	api   botAPI
	limit int
}

// NewBotAPI создаёт клиент Bot API с ограниченным таймаутом HTTP.
func NewBotAPI(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: timeout}
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	return api, nil
}

// NewSender создаёт отправитель поверх клиента Bot API.
func NewSender(api botAPI) *Sender {
	return &Sender{api: api, limit: MessageLimit}
}

// Send отправляет сообщение. Длинный текст уходит несколькими сообщениями,
// клавиатура прикрепляется к последнему.
func (s *Sender) Send(ctx context.Context, msg domain.OutboundMessage) error {
	parts := SplitMessage(msg.Text, s.limit)
	for i, part := range parts {
		if err := ctx.Err(); err != nil {
			return err
		}
		cfg := tgbotapi.NewMessage(msg.ChatID, part)
		cfg.ParseMode = msg.ParseMode
		cfg.DisableWebPagePreview = true
		if i == len(parts)-1 && msg.ReplyMarkup != nil {
			cfg.ReplyMarkup = msg.ReplyMarkup
		}
		start := time.Now()
		_, err := s.api.Send(cfg)
		metrics.ObserveNetworkRequest("telegram", "send_message", "bot_api", start, err)
		if err != nil {
			metrics.BotSendErrors.Inc()
			return fmt.Errorf("send message to chat %d: %w", msg.ChatID, err)
		}
	}
	return nil
}

// IsPermanent сообщает, что повтор отправки бессмыслен:
// бот заблокирован, чат не найден или запрос некорректен.
func IsPermanent(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
	}
	return false
}
