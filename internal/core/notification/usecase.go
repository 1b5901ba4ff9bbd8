package notification

import (
	"context"
	"fmt"
	"time"

	"weatherbot.app/internal/core/i18n"
	"weatherbot.app/internal/core/reply"
	"weatherbot.app/internal/core/subscription"
	"weatherbot.app/internal/core/weather"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

type UseCase struct {
	subscriptionUseCase *subscription.UseCase
	weatherUseCase      *weather.UseCase
	composer            *reply.Composer
	messenger           ports.Messenger
	config              ports.ConfigProvider
	logger              ports.Logger
	metrics             ports.MetricsCollector
}

type UseCaseDependencies struct {
	SubscriptionUseCase *subscription.UseCase
	WeatherUseCase      *weather.UseCase
	Composer            *reply.Composer
	Messenger           ports.Messenger
	Config              ports.ConfigProvider
	Logger              ports.Logger
	Metrics             ports.MetricsCollector
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.SubscriptionUseCase == nil {
		return nil, errors.NewValidationError("subscription use case is required")
	}
	if deps.WeatherUseCase == nil {
		return nil, errors.NewValidationError("weather use case is required")
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

	return &UseCase{
		subscriptionUseCase: deps.SubscriptionUseCase,
		weatherUseCase:      deps.WeatherUseCase,
		composer:            deps.Composer,
		messenger:           deps.Messenger,
		config:              deps.Config,
		logger:              deps.Logger,
		metrics:             deps.Metrics,
	}, nil
}

// SendDailyUpdates sends the current weather to every subscriber. A failure
// for one subscriber is recorded in the report and never stops the loop.
func (uc *UseCase) SendDailyUpdates(ctx context.Context) (report Report) {
	report = Report{TickID: TickID(ctx), StartedAt: time.Now()}
	defer func() { report.Duration = time.Since(report.StartedAt) }()

	schedulerCfg := uc.config.GetSchedulerConfig()

	listCtx, cancel := withOptionalTimeout(ctx, schedulerCfg.ListSubscriptionsTimeout)
	subs, err := uc.subscriptionUseCase.List(listCtx)
	cancel()
	if err != nil {
		uc.logger.Error("Failed to list subscriptions",
			ports.F("tick_id", report.TickID),
			ports.F("error", err))
		report.Err = err
		return report
	}

	uc.logger.Info("Sending daily weather updates",
		ports.F("tick_id", report.TickID),
		ports.F("subscribers", len(subs)))

	localizer := uc.composer.Localizer(uc.config.GetBotConfig().DefaultLocale)
	report.Results = make([]Result, 0, len(subs))

	for _, sub := range subs {
		if ctx.Err() != nil {
			report.Results = append(report.Results, Result{
				UserID: sub.UserID, City: sub.City, Outcome: OutcomeSkipped, Err: ctx.Err(),
			})
			continue
		}

		result := uc.notify(ctx, localizer, sub, schedulerCfg.SubscriberTimeout)
		uc.metrics.RecordNotification(ctx, string(result.Outcome))
		report.Results = append(report.Results, result)

		fields := []ports.Field{
			ports.F("tick_id", report.TickID),
			ports.F("user_id", sub.UserID),
			ports.F("city", sub.City),
			ports.F("outcome", result.Outcome),
		}
		switch result.Outcome {
		case OutcomeSent:
			uc.logger.Debug("Daily update sent", fields...)
		case OutcomeNotFound:
			uc.logger.Warn("Subscribed city not found", fields...)
		default:
			uc.logger.Error("Daily update failed", append(fields, ports.F("error", result.Err))...)
		}
	}

	return report
}

func (uc *UseCase) notify(ctx context.Context, l i18n.Localizer, sub subscription.Subscription, timeout time.Duration) (result Result) {
	result = Result{UserID: sub.UserID, City: sub.City}

	defer func() {
		if r := recover(); r != nil {
			result.Outcome = OutcomeFailed
			result.Err = fmt.Errorf("panic while notifying subscriber: %v", r)
		}
	}()

	subCtx, cancel := withOptionalTimeout(ctx, timeout)
	defer cancel()

	var message reply.Message
	current, err := uc.weatherUseCase.Current(subCtx, sub.City)
	switch {
	case err == nil:
		message = uc.composer.DailyWeather(l, current)
		result.Outcome = OutcomeSent
	case errors.IsNotFoundError(err) || errors.IsValidationError(err):
		message = uc.composer.Text(l, i18n.SubscriptionNotice, "city", sub.City)
		result.Outcome = OutcomeNotFound
	default:
		result.Outcome = OutcomeFailed
		result.Err = err
		return result
	}

	if err := reply.Send(subCtx, uc.messenger, sub.UserID, message); err != nil {
		result.Outcome = OutcomeSendFailed
		result.Err = err
	}
	return result
}

func withOptionalTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
