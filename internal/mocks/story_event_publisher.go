package mocks

import (
	"context"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStoryEventPublisher is a mock type for the StoryEventPublisher type
type MockStoryEventPublisher struct {
	mock.Mock
}

// PublishStoryEvent provides a mock function with given fields: ctx, event
func (_m *MockStoryEventPublisher) PublishStoryEvent(ctx context.Context, event models.StoryEvent) error {
	ret := _m.Called(ctx, event)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, models.StoryEvent) error); ok {
		r0 = rf(ctx, event)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockStoryEventPublisher creates a new instance of MockStoryEventPublisher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStoryEventPublisher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryEventPublisher {
	m := &MockStoryEventPublisher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ interfaces.StoryEventPublisher = (*MockStoryEventPublisher)(nil)
