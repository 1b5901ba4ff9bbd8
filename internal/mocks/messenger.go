package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/ports"
)

// Messenger is a mock of ports.Messenger
type Messenger struct {
	mock.Mock
}

// NewMessenger creates a mock that asserts its expectations on cleanup
func NewMessenger(t TestingT) *Messenger {
	m := &Messenger{}
	register(&m.Mock, t)
	return m
}

func (m *Messenger) SendText(ctx context.Context, chatID int64, text string, keyboard *ports.Keyboard) error {
	args := m.Called(ctx, chatID, text, keyboard)
	return args.Error(0)
}

func (m *Messenger) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, keyboard *ports.Keyboard) error {
	args := m.Called(ctx, chatID, photoURL, caption, keyboard)
	return args.Error(0)
}

func (m *Messenger) AnswerCallback(ctx context.Context, callbackID string) error {
	args := m.Called(ctx, callbackID)
	return args.Error(0)
}
