package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"weatherbot.app/internal/ports"
)

// UserRepository is a mock of ports.UserRepository
type UserRepository struct {
	mock.Mock
}

// NewUserRepository creates a mock that asserts its expectations on cleanup
func NewUserRepository(t TestingT) *UserRepository {
	m := &UserRepository{}
	register(&m.Mock, t)
	return m
}

func (m *UserRepository) Upsert(ctx context.Context, user *ports.UserData) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// SubscriptionRepository is a mock of ports.SubscriptionRepository
type SubscriptionRepository struct {
	mock.Mock
}

// NewSubscriptionRepository creates a mock that asserts its expectations on cleanup
func NewSubscriptionRepository(t TestingT) *SubscriptionRepository {
	m := &SubscriptionRepository{}
	register(&m.Mock, t)
	return m
}

func (m *SubscriptionRepository) Set(ctx context.Context, userID int64, city string) error {
	args := m.Called(ctx, userID, city)
	return args.Error(0)
}

func (m *SubscriptionRepository) Clear(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *SubscriptionRepository) Get(ctx context.Context, userID int64) (*ports.SubscriptionData, error) {
	args := m.Called(ctx, userID)
	var sub *ports.SubscriptionData
	if v := args.Get(0); v != nil {
		sub = v.(*ports.SubscriptionData)
	}
	return sub, args.Error(1)
}

func (m *SubscriptionRepository) List(ctx context.Context) ([]ports.SubscriptionData, error) {
	args := m.Called(ctx)
	var subs []ports.SubscriptionData
	if v := args.Get(0); v != nil {
		subs = v.([]ports.SubscriptionData)
	}
	return subs, args.Error(1)
}

func (m *SubscriptionRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
