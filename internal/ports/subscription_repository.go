package ports

import (
	"context"
	"time"
)

// UserData represents a chat user profile for persistence
type UserData struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsPremium    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SubscriptionData represents the single subscribed city of a user
type SubscriptionData struct {
	UserID    int64
	City      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserRepository defines the contract for user profile persistence
type UserRepository interface {
	Upsert(ctx context.Context, user *UserData) error
	Count(ctx context.Context) (int64, error)
}

// SubscriptionRepository defines the contract for subscription persistence.
// Set replaces any previous city of the user; Clear on a missing row is a no-op.
type SubscriptionRepository interface {
	Set(ctx context.Context, userID int64, city string) error
	Clear(ctx context.Context, userID int64) error
	Get(ctx context.Context, userID int64) (*SubscriptionData, error)
	List(ctx context.Context) ([]SubscriptionData, error)
	Count(ctx context.Context) (int64, error)
}
