package database

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// SubscriptionModel represents the database model for subscriptions.
// The user ID is the primary key, so a user holds at most one city.
type SubscriptionModel struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	City      string `gorm:"size:100;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (SubscriptionModel) TableName() string {
	return "weather_subscriptions"
}

// SubscriptionRepositoryAdapter implements the SubscriptionRepository port using GORM
type SubscriptionRepositoryAdapter struct {
	db *gorm.DB
}

func NewSubscriptionRepositoryAdapter(db *gorm.DB) ports.SubscriptionRepository {
	return &SubscriptionRepositoryAdapter{db: db}
}

// Set inserts the subscription or replaces the city of an existing one
func (r *SubscriptionRepositoryAdapter) Set(ctx context.Context, userID int64, city string) error {
	if userID <= 0 {
		return errors.NewValidationError("user ID must be positive")
	}
	city = strings.TrimSpace(city)
	if city == "" {
		return errors.NewValidationError("city cannot be empty")
	}

	model := &SubscriptionModel{UserID: userID, City: city}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"city", "updated_at"}),
		}).Create(model).Error
	})
	if err != nil {
		return errors.NewDatabaseError("failed to save subscription", err)
	}

	return nil
}

// Clear removes the subscription of userID; a missing row is not an error
func (r *SubscriptionRepositoryAdapter) Clear(ctx context.Context, userID int64) error {
	if userID <= 0 {
		return errors.NewValidationError("user ID must be positive")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).Delete(&SubscriptionModel{}).Error
	})
	if err != nil {
		return errors.NewDatabaseError("failed to delete subscription", err)
	}

	return nil
}

// Get retrieves the subscription of userID
func (r *SubscriptionRepositoryAdapter) Get(ctx context.Context, userID int64) (*ports.SubscriptionData, error) {
	if userID <= 0 {
		return nil, errors.NewValidationError("user ID must be positive")
	}

	var model SubscriptionModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("user_id = ?", userID).First(&model).Error
	})
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("subscription not found")
		}
		return nil, errors.NewDatabaseError("failed to find subscription", err)
	}

	return r.modelToData(&model), nil
}

// List returns every subscription ordered by user ID
func (r *SubscriptionRepositoryAdapter) List(ctx context.Context) ([]ports.SubscriptionData, error) {
	var models []SubscriptionModel
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Order("user_id").Find(&models).Error
	})
	if err != nil {
		return nil, errors.NewDatabaseError("failed to list subscriptions", err)
	}

	subscriptions := make([]ports.SubscriptionData, len(models))
	for i := range models {
		subscriptions[i] = *r.modelToData(&models[i])
	}

	return subscriptions, nil
}

// Count returns the number of subscriptions
func (r *SubscriptionRepositoryAdapter) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&SubscriptionModel{}).Count(&count).Error
	})
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count subscriptions", err)
	}

	return count, nil
}

func (r *SubscriptionRepositoryAdapter) modelToData(model *SubscriptionModel) *ports.SubscriptionData {
	return &ports.SubscriptionData{
		UserID:    model.UserID,
		City:      model.City,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}
