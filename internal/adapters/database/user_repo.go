package database

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"weatherbot.app/internal/ports"
	"weatherbot.app/pkg/errors"
)

// UserModel represents the database model for chat users
type UserModel struct {
	TelegramID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Username     string `gorm:"size:64"`
	FirstName    string `gorm:"size:128"`
	LastName     string `gorm:"size:128"`
	LanguageCode string `gorm:"size:16"`
	IsPremium    bool   `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (UserModel) TableName() string {
	return "telegram_users"
}

// UserRepositoryAdapter implements the UserRepository port using GORM
type UserRepositoryAdapter struct {
	db *gorm.DB
}

func NewUserRepositoryAdapter(db *gorm.DB) ports.UserRepository {
	return &UserRepositoryAdapter{db: db}
}

// Upsert inserts the user or refreshes the profile columns of an existing row
func (r *UserRepositoryAdapter) Upsert(ctx context.Context, user *ports.UserData) error {
	if user == nil {
		return errors.NewValidationError("user cannot be nil")
	}
	if user.TelegramID <= 0 {
		return errors.NewValidationError("telegram ID must be positive")
	}

	model := r.dataToModel(user)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "telegram_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"username", "first_name", "last_name", "language_code", "is_premium", "updated_at",
			}),
		}).Create(model).Error
	})
	if err != nil {
		return errors.NewDatabaseError("failed to upsert user", err)
	}

	return nil
}

// Count returns the number of known users
func (r *UserRepositoryAdapter) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&UserModel{}).Count(&count).Error
	})
	if err != nil {
		return 0, errors.NewDatabaseError("failed to count users", err)
	}

	return count, nil
}

func (r *UserRepositoryAdapter) dataToModel(data *ports.UserData) *UserModel {
	return &UserModel{
		TelegramID:   data.TelegramID,
		Username:     data.Username,
		FirstName:    data.FirstName,
		LastName:     data.LastName,
		LanguageCode: data.LanguageCode,
		IsPremium:    data.IsPremium,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}
