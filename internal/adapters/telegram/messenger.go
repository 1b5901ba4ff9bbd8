// Package telegram connects the dispatcher to the Telegram Bot API: inbound
// updates become dispatcher events and replies go out through the Messenger.
package telegram

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// BotAPI is the subset of *bot.Bot used for outbound calls
type BotAPI interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendPhoto(ctx context.Context, params *bot.SendPhotoParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
}

// Messenger implements ports.Messenger over the Bot API. Texts are sent as HTML.
type Messenger struct {
	api BotAPI
}

func NewMessenger(api BotAPI) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string, keyboard *ports.Keyboard) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if markup := replyMarkup(keyboard); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := m.api.SendMessage(ctx, params); err != nil {
		return errors.NewMessagingError("failed to send message", err)
	}
	return nil
}

func (m *Messenger) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, keyboard *ports.Keyboard) error {
	params := &bot.SendPhotoParams{
		ChatID:    chatID,
		Photo:     &models.InputFileString{Data: photoURL},
		Caption:   caption,
		ParseMode: models.ParseModeHTML,
	}
	if markup := replyMarkup(keyboard); markup != nil {
		params.ReplyMarkup = markup
	}

	if _, err := m.api.SendPhoto(ctx, params); err != nil {
		return errors.NewMessagingError("failed to send photo", err)
	}
	return nil
}

func (m *Messenger) AnswerCallback(ctx context.Context, callbackID string) error {
	if callbackID == "" {
		return errors.NewValidationError("callback id cannot be empty")
	}
	if _, err := m.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID}); err != nil {
		return errors.NewMessagingError("failed to answer callback query", err)
	}
	return nil
}

// replyMarkup converts a platform-neutral keyboard; nil or empty keyboards yield nil
func replyMarkup(keyboard *ports.Keyboard) models.ReplyMarkup {
	if keyboard == nil || len(keyboard.Rows) == 0 {
		return nil
	}

	switch keyboard.Kind {
	case ports.KeyboardReply:
		rows := make([][]models.KeyboardButton, 0, len(keyboard.Rows))
		for _, row := range keyboard.Rows {
			buttons := make([]models.KeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.KeyboardButton{Text: b.Text, RequestLocation: b.RequestLocation})
			}
			rows = append(rows, buttons)
		}
		return &models.ReplyKeyboardMarkup{Keyboard: rows, ResizeKeyboard: true}
	default:
		rows := make([][]models.InlineKeyboardButton, 0, len(keyboard.Rows))
		for _, row := range keyboard.Rows {
			buttons := make([]models.InlineKeyboardButton, 0, len(row))
			for _, b := range row {
				buttons = append(buttons, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.CallbackData})
			}
			rows = append(rows, buttons)
		}
		return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	}
}
