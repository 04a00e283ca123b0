package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leetcode-bot/internal/domain"
	"leetcode-bot/internal/infra/metrics"
)

const maxUpdateBytes = 1 << 20

var errPanic = errors.New("panic while handling update")

// Webhook возвращает HTTP обработчик вебхука. Ответ всегда 200:
// Telegram повторяет доставку апдейта при любом другом коде.
// Ответное сообщение уходит в теле ответа как вызов sendMessage.
func (h *Handler) Webhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var upd tgbotapi.Update
		var msg domain.OutboundMessage
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&upd); err != nil {
			metrics.IncUpdate("invalid")
			h.log.Warn().Err(err).Msg("не удалось разобрать апдейт")
			msg = apology(0)
		} else {
			msg = h.safeHandle(r.Context(), upd)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if msg.Empty() {
			_, _ = w.Write([]byte("{}"))
			return
		}
		if err := json.NewEncoder(w).Encode(msg); err != nil {
			h.log.Error().Err(err).Msg("не удалось записать ответ вебхука")
		}
	}
}

// safeHandle превращает ошибку или панику обработчика в извинение.
func (h *Handler) safeHandle(ctx context.Context, upd tgbotapi.Update) (msg domain.OutboundMessage) {
	chatID := chatOf(upd)
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Err(fmt.Errorf("%w: %v", errPanic, rec)).Int("update_id", upd.UpdateID).Msg("паника при обработке апдейта")
			msg = apology(chatID)
		}
	}()

	msg, err := h.HandleUpdate(ctx, upd)
	if err != nil {
		h.log.Error().Err(err).Int("update_id", upd.UpdateID).Int64("chat_id", chatID).Msg("ошибка обработки апдейта")
		return apology(chatID)
	}
	return msg
}
