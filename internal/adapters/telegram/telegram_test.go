package telegram

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"weatherbot.app/internal/core/dispatcher"
	"weatherbot.app/internal/mocks"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

var _ ports.Messenger = (*Messenger)(nil)

type fakeBotAPI struct {
	messages  []*bot.SendMessageParams
	photos    []*bot.SendPhotoParams
	callbacks []string
	err       error
}

func (f *fakeBotAPI) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.messages = append(f.messages, params)
	return &models.Message{}, f.err
}

func (f *fakeBotAPI) SendPhoto(_ context.Context, params *bot.SendPhotoParams) (*models.Message, error) {
	f.photos = append(f.photos, params)
	return &models.Message{}, f.err
}

func (f *fakeBotAPI) AnswerCallbackQuery(_ context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.callbacks = append(f.callbacks, params.CallbackQueryID)
	return f.err == nil, f.err
}

func TestMessenger_SendTextWithInlineKeyboard(t *testing.T) {
	api := &fakeBotAPI{}
	messenger := NewMessenger(api)
	keyboard := &ports.Keyboard{
		Kind: ports.KeyboardInline,
		Rows: [][]ports.Button{
			{{Text: "Subscribe", CallbackData: "sub:London"}},
			{{Text: "Forecast", CallbackData: "fc:London"}},
		},
	}

	require.NoError(t, messenger.SendText(context.Background(), 42, "<b>hi</b>", keyboard))

	require.Len(t, api.messages, 1)
	sent := api.messages[0]
	assert.Equal(t, int64(42), sent.ChatID)
	assert.Equal(t, models.ParseModeHTML, sent.ParseMode)
	markup, ok := sent.ReplyMarkup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "fc:London", markup.InlineKeyboard[1][0].CallbackData)
}

func TestMessenger_SendTextWithoutKeyboard(t *testing.T) {
	api := &fakeBotAPI{}

	require.NoError(t, NewMessenger(api).SendText(context.Background(), 1, "plain", nil))

	assert.Nil(t, api.messages[0].ReplyMarkup)
}

func TestMessenger_SendPhotoWithReplyKeyboard(t *testing.T) {
	api := &fakeBotAPI{}
	keyboard := &ports.Keyboard{
		Kind: ports.KeyboardReply,
		Rows: [][]ports.Button{{{Text: "📍 Send Location", RequestLocation: true}}},
	}

	err := NewMessenger(api).SendPhoto(context.Background(), 7, "https://icons/01d.png", "caption", keyboard)

	require.NoError(t, err)
	photo, ok := api.photos[0].Photo.(*models.InputFileString)
	require.True(t, ok)
	assert.Equal(t, "https://icons/01d.png", photo.Data)
	markup, ok := api.photos[0].ReplyMarkup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, markup.ResizeKeyboard)
	assert.True(t, markup.Keyboard[0][0].RequestLocation)
}

func TestMessenger_ErrorsAreMessagingErrors(t *testing.T) {
	api := &fakeBotAPI{err: stderrors.New("forbidden: bot was blocked by the user")}
	messenger := NewMessenger(api)
	ctx := context.Background()

	assert.True(t, errors.IsMessagingError(messenger.SendText(ctx, 1, "x", nil)))
	assert.True(t, errors.IsMessagingError(messenger.SendPhoto(ctx, 1, "u", "c", nil)))
	assert.True(t, errors.IsMessagingError(messenger.AnswerCallback(ctx, "cb-1")))
	assert.True(t, errors.IsValidationError(messenger.AnswerCallback(ctx, "")))
}

func TestToEvent(t *testing.T) {
	from := &models.User{ID: 99, FirstName: "Ann", Username: "ann", LanguageCode: "ru", IsPremium: true}

	tests := []struct {
		name     string
		update   *models.Update
		expectOK bool
		check    func(t *testing.T, ev dispatcher.Event)
	}{
		{
			name:     "command",
			update:   &models.Update{Message: &models.Message{From: from, Chat: models.Chat{ID: 5}, Text: "/start@weather_bot now"}},
			expectOK: true,
			check: func(t *testing.T, ev dispatcher.Event) {
				assert.Equal(t, dispatcher.EventCommand, ev.Kind)
				assert.Equal(t, "start", ev.Command)
				assert.Equal(t, "now", ev.Args)
				assert.Equal(t, int64(5), ev.ChatID)
				assert.Equal(t, int64(99), ev.Sender.TelegramID)
				assert.Equal(t, "ru", ev.Sender.LanguageCode)
				assert.True(t, ev.Sender.IsPremium)
			},
		},
		{
			name:     "text",
			update:   &models.Update{Message: &models.Message{From: from, Chat: models.Chat{ID: 5}, Text: "London"}},
			expectOK: true,
			check: func(t *testing.T, ev dispatcher.Event) {
				assert.Equal(t, dispatcher.EventText, ev.Kind)
				assert.Equal(t, "London", ev.Text)
			},
		},
		{
			name: "location",
			update: &models.Update{Message: &models.Message{
				From:     from,
				Chat:     models.Chat{ID: 5},
				Location: &models.Location{Latitude: 41.3, Longitude: 69.2},
			}},
			expectOK: true,
			check: func(t *testing.T, ev dispatcher.Event) {
				assert.Equal(t, dispatcher.EventLocation, ev.Kind)
				assert.Equal(t, ports.Coordinates{Latitude: 41.3, Longitude: 69.2}, ev.Location)
			},
		},
		{
			name:     "callback",
			update:   &models.Update{CallbackQuery: &models.CallbackQuery{ID: "cb-1", From: *from, Data: "sub:Paris"}},
			expectOK: true,
			check: func(t *testing.T, ev dispatcher.Event) {
				assert.Equal(t, dispatcher.EventCallback, ev.Kind)
				assert.Equal(t, int64(99), ev.ChatID)
				assert.Equal(t, "cb-1", ev.CallbackID)
				assert.Equal(t, "sub:Paris", ev.Payload)
			},
		},
		{
			name: "callback in group chat",
			update: &models.Update{CallbackQuery: &models.CallbackQuery{
				ID:   "cb-2",
				From: *from,
				Data: "fc:Paris",
				Message: models.MaybeInaccessibleMessage{
					Message: &models.Message{ID: 7, Chat: models.Chat{ID: -100123}},
				},
			}},
			expectOK: true,
			check: func(t *testing.T, ev dispatcher.Event) {
				assert.Equal(t, int64(-100123), ev.ChatID)
				assert.Equal(t, int64(99), ev.Sender.TelegramID)
			},
		},
		{
			name: "callback on inaccessible message",
			update: &models.Update{CallbackQuery: &models.CallbackQuery{
				ID:   "cb-3",
				From: *from,
				Data: "London",
				Message: models.MaybeInaccessibleMessage{
					InaccessibleMessage: &models.InaccessibleMessage{Chat: models.Chat{ID: -100456}},
				},
			}},
			expectOK: true,
			check: func(t *testing.T, ev dispatcher.Event) {
				assert.Equal(t, int64(-100456), ev.ChatID)
			},
		},
		{name: "nil update", update: nil},
		{name: "channel post", update: &models.Update{ChannelPost: &models.Message{Text: "news"}}},
		{name: "sticker", update: &models.Update{Message: &models.Message{From: from, Chat: models.Chat{ID: 5}}}},
		{name: "anonymous", update: &models.Update{Message: &models.Message{Chat: models.Chat{ID: 5}, Text: "hi"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := ToEvent(tt.update)
			assert.Equal(t, tt.expectOK, ok)
			if tt.check != nil {
				tt.check(t, ev)
			}
		})
	}
}

type recordingHandler struct {
	mu     sync.Mutex
	events []dispatcher.Event
	done   chan struct{}
	want   int
}

func (h *recordingHandler) Handle(_ context.Context, ev dispatcher.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, ev)
	if len(h.events) == h.want {
		close(h.done)
	}
}

func TestAdapter_DispatchesInArrivalOrder(t *testing.T) {
	logger := mocks.NewLogger()
	adapter := &Adapter{events: make(chan dispatcher.Event, 8), logger: logger}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	from := &models.User{ID: 1}
	texts := []string{"London", "/start", "Paris"}
	for i, text := range texts {
		adapter.onUpdate(ctx, nil, &models.Update{ID: int64(i), Message: &models.Message{From: from, Chat: models.Chat{ID: 1}, Text: text}})
	}
	adapter.onUpdate(ctx, nil, &models.Update{ID: 100, EditedMessage: &models.Message{Text: "edit"}})

	handler := &recordingHandler{done: make(chan struct{}), want: len(texts)}
	served := make(chan struct{})
	go func() {
		adapter.serve(ctx, handler)
		close(served)
	}()

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not dispatched")
	}
	cancel()
	<-served

	require.Len(t, handler.events, 3)
	assert.Equal(t, "London", handler.events[0].Text)
	assert.Equal(t, "start", handler.events[1].Command)
	assert.Equal(t, "Paris", handler.events[2].Text)
	assert.True(t, logger.Has("debug", "Skipping unsupported update"))
}

func TestAdapter_FullQueueUnblocksOnCancel(t *testing.T) {
	adapter := &Adapter{events: make(chan dispatcher.Event, 1), logger: mocks.NewLogger()}
	ctx, cancel := context.WithCancel(context.Background())
	update := &models.Update{Message: &models.Message{From: &models.User{ID: 1}, Text: "London"}}

	adapter.onUpdate(ctx, nil, update)
	returned := make(chan struct{})
	go func() {
		adapter.onUpdate(ctx, nil, update)
		close(returned)
	}()

	cancel()
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("enqueue did not observe cancellation")
	}
}

func TestNew(t *testing.T) {
	_, err := New(Options{Logger: mocks.NewLogger()})
	assert.True(t, errors.IsConfigurationError(err))

	_, err = New(Options{Token: "token"})
	assert.True(t, errors.IsValidationError(err))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Weather","username":"weather_bot"}}`))
	}))
	defer server.Close()

	adapter, err := New(Options{Token: "123:abc", Logger: mocks.NewLogger(), ServerURL: server.URL, QueueSize: 4})
	require.NoError(t, err)
	assert.NotNil(t, adapter.Messenger())
	assert.Equal(t, 4, cap(adapter.events))
}

func TestNew_RejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	defer server.Close()

	_, err := New(Options{Token: "123:bad", Logger: mocks.NewLogger(), ServerURL: server.URL})

	assert.True(t, errors.IsMessagingError(err))
}
