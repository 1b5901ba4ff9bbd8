package telegram

import (
	"github.com/go-telegram/bot/models"
	"weatherbot.app/internal/core/dispatcher"
	"weatherbot.app/internal/core/user"
	"weatherbot.app/internal/ports"
)

// ToEvent converts a raw update into a dispatcher event. It reports false for
// updates the bot does not react to (edits, stickers, channel posts and so on).
func ToEvent(update *models.Update) (dispatcher.Event, bool) {
	if update == nil {
		return dispatcher.Event{}, false
	}

	if cq := update.CallbackQuery; cq != nil {
		return dispatcher.Event{
			Kind:       dispatcher.EventCallback,
			ChatID:     callbackChatID(cq),
			Sender:     profile(&cq.From),
			CallbackID: cq.ID,
			Payload:    cq.Data,
		}, true
	}

	msg := update.Message
	if msg == nil || msg.From == nil {
		return dispatcher.Event{}, false
	}

	ev := dispatcher.Event{
		ChatID: msg.Chat.ID,
		Sender: profile(msg.From),
	}

	switch {
	case msg.Location != nil:
		ev.Kind = dispatcher.EventLocation
		ev.Location = ports.Coordinates{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}
	case msg.Text != "":
		if name, args, ok := dispatcher.ParseCommand(msg.Text); ok {
			ev.Kind = dispatcher.EventCommand
			ev.Command = name
			ev.Args = args
		} else {
			ev.Kind = dispatcher.EventText
			ev.Text = msg.Text
		}
	default:
		return dispatcher.Event{}, false
	}

	return ev, true
}

// callbackChatID is the chat the pressed button lives in. Buttons on messages
// too old for Telegram to return fall back to the presser's private chat.
func callbackChatID(cq *models.CallbackQuery) int64 {
	switch {
	case cq.Message.Message != nil:
		return cq.Message.Message.Chat.ID
	case cq.Message.InaccessibleMessage != nil:
		return cq.Message.InaccessibleMessage.Chat.ID
	default:
		return cq.From.ID
	}
}

func profile(u *models.User) user.Profile {
	return user.Profile{
		TelegramID:   u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		LanguageCode: u.LanguageCode,
		IsPremium:    u.IsPremium,
	}
}
