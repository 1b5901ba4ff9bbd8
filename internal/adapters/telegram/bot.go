package telegram

import (
	"context"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"weatherbot.app/internal/core/dispatcher"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

const pollSlack = 10 * time.Second

// EventHandler consumes dispatcher events one at a time
type EventHandler interface {
	Handle(ctx context.Context, ev dispatcher.Event)
}

type Options struct {
	Token       string
	PollTimeout time.Duration
	QueueSize   int
	Logger      ports.Logger

	// ServerURL overrides the Bot API endpoint; empty means api.telegram.org
	ServerURL string
}

// Adapter long-polls Telegram and feeds updates to a single dispatch loop,
// so events are handled strictly in arrival order.
type Adapter struct {
	bot       *bot.Bot
	messenger *Messenger
	events    chan dispatcher.Event
	logger    ports.Logger
}

func New(opts Options) (*Adapter, error) {
	if opts.Token == "" {
		return nil, errors.NewConfigurationError("telegram bot token cannot be empty", nil)
	}
	if opts.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if opts.QueueSize < 1 {
		opts.QueueSize = 1
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}

	a := &Adapter{
		events: make(chan dispatcher.Event, opts.QueueSize),
		logger: opts.Logger,
	}

	botOpts := []bot.Option{
		bot.WithDefaultHandler(a.onUpdate),
		bot.WithHTTPClient(opts.PollTimeout, &http.Client{Timeout: opts.PollTimeout + pollSlack}),
		bot.WithErrorsHandler(func(err error) {
			a.logger.Warn("Telegram polling error", ports.F("error", err.Error()))
		}),
	}
	if opts.ServerURL != "" {
		botOpts = append(botOpts, bot.WithServerURL(opts.ServerURL))
	}

	b, err := bot.New(opts.Token, botOpts...)
	if err != nil {
		return nil, errors.NewMessagingError("failed to initialize Telegram bot", err)
	}

	a.bot = b
	a.messenger = NewMessenger(b)
	return a, nil
}

// Messenger returns the outbound side bound to the same bot
func (a *Adapter) Messenger() *Messenger {
	return a.messenger
}

// Run polls for updates and dispatches them until ctx is cancelled
func (a *Adapter) Run(ctx context.Context, handler EventHandler) {
	pollerDone := make(chan struct{})
	go func() {
		defer close(pollerDone)
		a.bot.Start(ctx)
	}()

	a.logger.Info("Telegram polling started")
	a.serve(ctx, handler)
	<-pollerDone
	a.logger.Info("Telegram polling stopped")
}

func (a *Adapter) serve(ctx context.Context, handler EventHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events:
			handler.Handle(ctx, ev)
		}
	}
}

// onUpdate runs on the poller goroutine. A full queue blocks polling
// instead of dropping updates.
func (a *Adapter) onUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	ev, ok := ToEvent(update)
	if !ok {
		if update != nil {
			a.logger.Debug("Skipping unsupported update", ports.F("update_id", update.ID))
		}
		return
	}

	select {
	case a.events <- ev:
	case <-ctx.Done():
	}
}
