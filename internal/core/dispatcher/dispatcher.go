// Package dispatcher routes inbound chat events to the weather, subscription
// and user use cases and answers through the messenger.
package dispatcher

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"weatherbot.app/internal/core/conversation"
	"weatherbot.app/internal/core/i18n"
	"weatherbot.app/internal/core/reply"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/core/user"
	"weatherbot.app/internal/core/weather"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

type Dispatcher struct {
	weatherUseCase      *weather.UseCase
	subscriptionUseCase *subscription.UseCase
	userUseCase         *user.UseCase
	conversations       *conversation.Store
	composer            *reply.Composer
	messenger           ports.Messenger
	config              ports.ConfigProvider
	logger              ports.Logger
	metrics             ports.MetricsCollector
}

type Dependencies struct {
	WeatherUseCase      *weather.UseCase
	SubscriptionUseCase *subscription.UseCase
	UserUseCase         *user.UseCase
	Conversations       *conversation.Store
	Composer            *reply.Composer
	Messenger           ports.Messenger
	Config              ports.ConfigProvider
	Logger              ports.Logger
	Metrics             ports.MetricsCollector
}

func New(deps Dependencies) (*Dispatcher, error) {
	if deps.WeatherUseCase == nil {
		return nil, errors.NewValidationError("weather use case is required")
	}
	if deps.SubscriptionUseCase == nil {
		return nil, errors.NewValidationError("subscription use case is required")
	}
	if deps.UserUseCase == nil {
		return nil, errors.NewValidationError("user use case is required")
	}
	if deps.Conversations == nil {
		return nil, errors.NewValidationError("conversation store is required")
	}
	if deps.Composer == nil {
		return nil, errors.NewValidationError("composer is required")
	}
	if deps.Messenger == nil {
		return nil, errors.NewValidationError("messenger is required")
	}
	if deps.Config == nil {
		return nil, errors.NewValidationError("config is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}
	if deps.Metrics == nil {
		return nil, errors.NewValidationError("metrics is required")
	}

	return &Dispatcher{
		weatherUseCase:      deps.WeatherUseCase,
		subscriptionUseCase: deps.SubscriptionUseCase,
		userUseCase:         deps.UserUseCase,
		conversations:       deps.Conversations,
		composer:            deps.Composer,
		messenger:           deps.Messenger,
		config:              deps.Config,
		logger:              deps.Logger,
		metrics:             deps.Metrics,
	}, nil
}

// Handle processes one event to completion. It never panics or returns an
// error; every failure ends in a log line and, where useful, a reply.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) {
	l := d.composer.Localizer(ev.Sender.LanguageCode)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Event handler panicked",
				ports.F("kind", ev.Kind.String()),
				ports.F("chat_id", ev.ChatID),
				ports.F("panic", fmt.Sprint(r)))
			d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.GenericError))
		}
	}()

	d.metrics.RecordEvent(ctx, ev.Kind.String())
	d.logger.Debug("Handling event",
		ports.F("kind", ev.Kind.String()),
		ports.F("chat_id", ev.ChatID),
		ports.F("user_id", ev.Sender.TelegramID))

	d.userUseCase.Remember(ctx, ev.Sender)

	switch ev.Kind {
	case EventCommand:
		d.handleCommand(ctx, l, ev)
	case EventText:
		d.handleText(ctx, l, ev)
	case EventLocation:
		d.handleLocation(ctx, l, ev)
	case EventCallback:
		d.handleCallback(ctx, l, ev)
	default:
		d.logger.Warn("Ignoring unsupported event", ports.F("chat_id", ev.ChatID))
	}
}

func (d *Dispatcher) handleCommand(ctx context.Context, l i18n.Localizer, ev Event) {
	switch ev.Command {
	case CommandStart, CommandHelp:
		d.send(ctx, ev.ChatID, d.composer.Welcome(l, ev.Sender.DisplayName()))
	case CommandUsersCount:
		d.usersCount(ctx, l, ev)
	case CommandUnsubscribe:
		d.unsubscribe(ctx, l, ev)
	case CommandSubscription:
		d.showSubscription(ctx, l, ev)
	default:
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.UnknownCommand))
	}
}

func (d *Dispatcher) handleText(ctx context.Context, l i18n.Localizer, ev Event) {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return
	}

	if d.composer.IsChooseCityButton(text) {
		d.conversations.MarkAwaitingCityInput(ev.ChatID)
		d.send(ctx, ev.ChatID, d.composer.PopularCities(l))
		return
	}

	// A pending city prompt and plain text are handled alike; consuming the
	// flag only ends the prompt.
	d.conversations.ConsumeIfAwaiting(ev.ChatID)
	d.showCurrent(ctx, l, ev.ChatID, NormalizeCity(text))
}

func (d *Dispatcher) handleLocation(ctx context.Context, l i18n.Localizer, ev Event) {
	current, err := d.weatherUseCase.CurrentByLocation(ctx, ev.Location)
	if err != nil {
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.LocationUnknown))
		return
	}

	d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.LocationNear, "city", current.City))
	d.send(ctx, ev.ChatID, d.composer.Weather(l, current))

	nearby, err := d.weatherUseCase.NearbyCities(ctx, ev.Location)
	if err != nil {
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.NearbyError))
		return
	}
	d.send(ctx, ev.ChatID, d.composer.NearbyCities(l, nearby))
}

func (d *Dispatcher) handleCallback(ctx context.Context, l i18n.Localizer, ev Event) {
	if ev.CallbackID != "" {
		if err := d.messenger.AnswerCallback(ctx, ev.CallbackID); err != nil {
			d.logger.Warn("Failed to answer callback",
				ports.F("chat_id", ev.ChatID),
				ports.F("error", err))
		}
	}

	cb := ParseCallback(ev.Payload)
	d.logger.Debug("Callback parsed",
		ports.F("chat_id", ev.ChatID),
		ports.F("intent", cb.Kind.String()),
		ports.F("city", cb.City))

	switch cb.Kind {
	case CallbackShowCurrent:
		d.showCurrent(ctx, l, ev.ChatID, cb.City)
	case CallbackShowForecast:
		d.showForecast(ctx, l, ev.ChatID, cb.City)
	case CallbackSubscribe:
		d.subscribe(ctx, l, ev, cb.City)
	case CallbackUnsubscribe:
		d.unsubscribe(ctx, l, ev)
	case CallbackInvalid:
		d.logger.Warn("Ignoring malformed callback payload",
			ports.F("chat_id", ev.ChatID),
			ports.F("payload", ev.Payload))
	}
}

func (d *Dispatcher) showCurrent(ctx context.Context, l i18n.Localizer, chatID int64, city string) {
	current, err := d.weatherUseCase.Current(ctx, city)
	switch {
	case err == nil:
		d.send(ctx, chatID, d.composer.Weather(l, current))
	case errors.IsNotFoundError(err), errors.IsValidationError(err):
		d.send(ctx, chatID, d.composer.Text(l, i18n.CityNotFound, "city", city))
	default:
		d.send(ctx, chatID, d.composer.Text(l, i18n.TryLater))
	}
}

func (d *Dispatcher) showForecast(ctx context.Context, l i18n.Localizer, chatID int64, city string) {
	forecast, err := d.weatherUseCase.TomorrowForecast(ctx, city)
	switch {
	case err == nil:
		d.send(ctx, chatID, d.composer.Forecast(l, forecast))
	case errors.IsNotFoundError(err), errors.IsValidationError(err):
		d.send(ctx, chatID, d.composer.Text(l, i18n.ForecastNotFound, "city", city))
	default:
		d.send(ctx, chatID, d.composer.Text(l, i18n.TryLater))
	}
}

func (d *Dispatcher) subscribe(ctx context.Context, l i18n.Localizer, ev Event, city string) {
	err := d.subscriptionUseCase.Subscribe(ctx, subscription.SubscribeParams{
		UserID: ev.Sender.TelegramID,
		City:   city,
	})
	if err != nil {
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.SubscribeFailed))
		return
	}
	d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.Subscribed, "city", city))
}

func (d *Dispatcher) unsubscribe(ctx context.Context, l i18n.Localizer, ev Event) {
	if err := d.subscriptionUseCase.Unsubscribe(ctx, ev.Sender.TelegramID); err != nil {
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.UnsubscribeFailed))
		return
	}
	d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.Unsubscribed))
}

func (d *Dispatcher) showSubscription(ctx context.Context, l i18n.Localizer, ev Event) {
	sub, err := d.subscriptionUseCase.Current(ctx, ev.Sender.TelegramID)
	switch {
	case err == nil:
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.CurrentSubscription, "city", sub.City))
	case errors.IsNotFoundError(err):
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.NoSubscription))
	default:
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.GenericError))
	}
}

// usersCount answers the admin-only diagnostic; other senders never see the number
func (d *Dispatcher) usersCount(ctx context.Context, l i18n.Localizer, ev Event) {
	adminID := d.config.GetBotConfig().AdminID
	if adminID == 0 || ev.Sender.TelegramID != adminID {
		d.logger.Warn("Refused admin command",
			ports.F("command", ev.Command),
			ports.F("user_id", ev.Sender.TelegramID))
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.AdminOnly))
		return
	}

	count, err := d.userUseCase.Count(ctx)
	if err != nil {
		d.logger.Error("Failed to count users", ports.F("error", err))
		d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.GenericError))
		return
	}
	d.send(ctx, ev.ChatID, d.composer.Text(l, i18n.UsersCount, "count", strconv.FormatInt(count, 10)))
}

func (d *Dispatcher) send(ctx context.Context, chatID int64, m reply.Message) {
	if err := reply.Send(ctx, d.messenger, chatID, m); err != nil {
		d.logger.Warn("Failed to send reply",
			ports.F("chat_id", chatID),
			ports.F("error", err))
	}
}

// NormalizeCity trims, collapses inner whitespace and title-cases free text
func NormalizeCity(text string) string {
	return cases.Title(language.Und).String(strings.Join(strings.Fields(text), " "))
}
