package telegram

import (
	"encoding/json"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"leetcode-bot/internal/domain"
)

const (
	// MethodSendMessage: метод Bot API для ответа на вебхук.
	MethodSendMessage = "sendMessage"

	// Подписи кнопок основной клавиатуры, они же текстовые команды.
	ButtonDailyTask   = "Get actual daily task"
	ButtonSubscribe   = "Subscribe"
	ButtonUnsubscribe = "Unsubscribe"

	hintsPerRow      = 5
	problemURLFormat = "https://leetcode.com/problems/%s/"
)

// NewMessage создаёт исходящее HTML-сообщение.
func NewMessage(chatID int64, text string, markup any) domain.OutboundMessage {
	return domain.OutboundMessage{
		Method:      MethodSendMessage,
		ChatID:      chatID,
		Text:        text,
		ParseMode:   tgbotapi.ModeHTML,
		ReplyMarkup: markup,
	}
}

// MainKeyboard возвращает постоянную клавиатуру с основными командами.
func MainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(ButtonDailyTask)),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(ButtonSubscribe),
			tgbotapi.NewKeyboardButton(ButtonUnsubscribe),
		),
	)
	kb.ResizeKeyboard = true
	kb.InputFieldPlaceholder = "Please, use buttons below:"
	return kb
}

// TaskText форматирует условие задачи.
func TaskText(task domain.Task) string {
	return fmt.Sprintf("<strong>%s</strong>\n\n%s", task.Title, task.Content)
}

// TaskKeyboard строит inline-клавиатуру: ссылка на задачу, подсказки по пять в ряд, сложность.
func TaskKeyboard(task domain.Task) (tgbotapi.InlineKeyboardMarkup, error) {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("See task on LeetCode website", fmt.Sprintf(problemURLFormat, task.TitleSlug)),
		),
	}

	var row []tgbotapi.InlineKeyboardButton
	for i := range task.Hints {
		data, err := EncodeCallback(domain.CallbackData{DateID: task.DateID, Hint: i, Type: domain.CallbackHint})
		if err != nil {
			return tgbotapi.InlineKeyboardMarkup{}, err
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("Hint %d", i+1), data))
		if len(row) == hintsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}

	data, err := EncodeCallback(domain.CallbackData{DateID: task.DateID, Type: domain.CallbackDifficulty})
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Hint: Get the difficulty of the task", data),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...), nil
}

// TaskMessage собирает сообщение с задачей и её клавиатурой.
func TaskMessage(chatID int64, task domain.Task) (domain.OutboundMessage, error) {
	kb, err := TaskKeyboard(task)
	if err != nil {
		return domain.OutboundMessage{}, fmt.Errorf("task keyboard: %w", err)
	}
	return NewMessage(chatID, TaskText(task), kb), nil
}

// EncodeCallback сериализует данные inline-кнопки.
func EncodeCallback(data domain.CallbackData) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeCallback разбирает данные inline-кнопки.
func DecodeCallback(raw string) (domain.CallbackData, error) {
	var data domain.CallbackData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return domain.CallbackData{}, fmt.Errorf("decode callback data: %w", err)
	}
	return data, nil
}
