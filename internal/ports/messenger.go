package ports

import "context"

// KeyboardKind selects how a keyboard is attached to a message
type KeyboardKind int

const (
	// KeyboardInline renders buttons under the message that answer with callback data
	KeyboardInline KeyboardKind = iota
	// KeyboardReply replaces the user's input keyboard
	KeyboardReply
)

// Button is a single keyboard button
type Button struct {
	Text            string
	CallbackData    string
	RequestLocation bool
}

// Keyboard is a platform-neutral keyboard layout
type Keyboard struct {
	Kind KeyboardKind
	Rows [][]Button
}

// Messenger defines the outbound reply sink of the chat platform
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, keyboard *Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, keyboard *Keyboard) error
	AnswerCallback(ctx context.Context, callbackID string) error
}
