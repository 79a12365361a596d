package services

import (
	"context"
	"time"

	"github.com/pura-ai/call-tracker/internal/model"
	"github.com/pura-ai/call-tracker/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockCallRepository struct {
	mock.Mock
}

func (m *MockCallRepository) Create(ctx context.Context, call *model.Call) (*model.Call, error) {
	args := m.Called(ctx, call)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Call), args.Error(1)
}

func (m *MockCallRepository) FindByID(ctx context.Context, id int64) (*model.Call, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Call), args.Error(1)
}

func (m *MockCallRepository) FindByIdentity(ctx context.Context, identity model.CallIdentity) (*model.Call, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Call), args.Error(1)
}

func (m *MockCallRepository) List(ctx context.Context, activeOnly bool) ([]*model.Call, error) {
	args := m.Called(ctx, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Call), args.Error(1)
}

func (m *MockCallRepository) Update(ctx context.Context, id int64, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockCallRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCallRepository) DeactivateAll(ctx context.Context, at time.Time) (int64, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCallRepository) Aggregate(ctx context.Context) ([]repository.CallAggregate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CallAggregate), args.Error(1)
}

func (m *MockCallRepository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event model.CallEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Save(ctx context.Context, s *model.Session, ttl time.Duration) error {
	args := m.Called(ctx, s, ttl)
	return args.Error(0)
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*model.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func eventOfType(t model.CallEventType) any {
	return mock.MatchedBy(func(e model.CallEvent) bool { return e.Type == t && e.ID != "" })
}

func ptr[T any](v T) *T {
	return &v
}
