package subscription

import (
	"context"
	"fmt"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/validation"
)

type UseCase struct {
	subscriptionRepo ports.SubscriptionRepository
	logger           ports.Logger
}

type UseCaseDependencies struct {
	SubscriptionRepo ports.SubscriptionRepository
	Logger           ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.SubscriptionRepo == nil {
		return nil, errors.NewValidationError("subscription repository is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		subscriptionRepo: deps.SubscriptionRepo,
		logger:           deps.Logger,
	}, nil
}

// Subscribe stores city as the only subscription of the user, replacing any previous one
func (uc *UseCase) Subscribe(ctx context.Context, params SubscribeParams) error {
	params.Normalize()
	if err := validation.Struct(params); err != nil {
		return errors.NewValidationError("invalid subscription: " + err.Error())
	}

	uc.logger.Debug("Processing subscription",
		ports.F("user_id", params.UserID),
		ports.F("city", params.City))

	if err := uc.subscriptionRepo.Set(ctx, params.UserID, params.City); err != nil {
		uc.logger.Error("Failed to save subscription",
			ports.F("user_id", params.UserID),
			ports.F("city", params.City),
			ports.F("error", err))
		return fmt.Errorf("set subscription: %w", err)
	}

	uc.logger.Info("Subscription saved",
		ports.F("user_id", params.UserID),
		ports.F("city", params.City))
	return nil
}

// Unsubscribe removes the subscription of the user; a user without one is not an error
func (uc *UseCase) Unsubscribe(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return errors.NewValidationError("user id must be positive")
	}

	if err := uc.subscriptionRepo.Clear(ctx, userID); err != nil {
		uc.logger.Error("Failed to clear subscription",
			ports.F("user_id", userID),
			ports.F("error", err))
		return fmt.Errorf("clear subscription: %w", err)
	}

	uc.logger.Info("Subscription cleared", ports.F("user_id", userID))
	return nil
}

// Current returns the subscription of the user or a NotFound error
func (uc *UseCase) Current(ctx context.Context, userID int64) (*Subscription, error) {
	if userID <= 0 {
		return nil, errors.NewValidationError("user id must be positive")
	}

	data, err := uc.subscriptionRepo.Get(ctx, userID)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get subscription: %w", err)
	}

	return fromPortsSubscription(data), nil
}

// List returns a point-in-time read of every subscription
func (uc *UseCase) List(ctx context.Context) ([]Subscription, error) {
	rows, err := uc.subscriptionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}

	subs := make([]Subscription, 0, len(rows))
	for i := range rows {
		subs = append(subs, *fromPortsSubscription(&rows[i]))
	}
	return subs, nil
}

func (uc *UseCase) Count(ctx context.Context) (int64, error) {
	count, err := uc.subscriptionRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}
	return count, nil
}

func fromPortsSubscription(data *ports.SubscriptionData) *Subscription {
	return &Subscription{
		UserID:    data.UserID,
		City:      data.City,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
