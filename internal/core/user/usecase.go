package user

import (
	"context"
	"fmt"

	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
	"weatherbot.app/pkg/validation"
)

type UseCase struct {
	userRepo ports.UserRepository
	logger   ports.Logger
}

type UseCaseDependencies struct {
	UserRepo ports.UserRepository
	Logger   ports.Logger
}

func NewUseCase(deps UseCaseDependencies) (*UseCase, error) {
	if deps.UserRepo == nil {
		return nil, errors.NewValidationError("user repository is required")
	}
	if deps.Logger == nil {
		return nil, errors.NewValidationError("logger is required")
	}

	return &UseCase{
		userRepo: deps.UserRepo,
		logger:   deps.Logger,
	}, nil
}

// Remember upserts the profile. Failures are logged and swallowed so that
// saving a profile never blocks the interaction that carried it.
func (uc *UseCase) Remember(ctx context.Context, profile Profile) {
	profile.Normalize()
	if err := validation.Struct(profile); err != nil {
		uc.logger.Warn("Skipping invalid user profile",
			ports.F("telegram_id", profile.TelegramID),
			ports.F("error", err))
		return
	}

	data := &ports.UserData{
		TelegramID:   profile.TelegramID,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		LanguageCode: profile.LanguageCode,
		IsPremium:    profile.IsPremium,
	}

	if err := uc.userRepo.Upsert(ctx, data); err != nil {
		uc.logger.Error("Failed to save user profile",
			ports.F("telegram_id", profile.TelegramID),
			ports.F("error", err))
		return
	}

	uc.logger.Debug("User profile saved", ports.F("telegram_id", profile.TelegramID))
}

func (uc *UseCase) Count(ctx context.Context) (int64, error) {
	count, err := uc.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
