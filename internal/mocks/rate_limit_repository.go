package mocks

import (
	"context"

	"storybook-server/internal/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockRateLimitRepository is a mock type for the RateLimitRepository type
type MockRateLimitRepository struct {
	mock.Mock
}

// GetCount provides a mock function with given fields: ctx, ipAddress, day
func (_m *MockRateLimitRepository) GetCount(ctx context.Context, ipAddress string, day string) (int, error) {
	ret := _m.Called(ctx, ipAddress, day)

	var r0 int
	if rf, ok := ret.Get(0).(func(context.Context, string, string) int); ok {
		r0 = rf(ctx, ipAddress, day)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, ipAddress, day)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Increment provides a mock function with given fields: ctx, ipAddress, day
func (_m *MockRateLimitRepository) Increment(ctx context.Context, ipAddress string, day string) (int, error) {
	ret := _m.Called(ctx, ipAddress, day)

	var r0 int
	if rf, ok := ret.Get(0).(func(context.Context, string, string) int); ok {
		r0 = rf(ctx, ipAddress, day)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(int)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, ipAddress, day)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PruneBefore provides a mock function with given fields: ctx, day
func (_m *MockRateLimitRepository) PruneBefore(ctx context.Context, day string) (int64, error) {
	ret := _m.Called(ctx, day)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, string) int64); ok {
		r0 = rf(ctx, day)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(int64)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, day)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockRateLimitRepository creates a new instance of MockRateLimitRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockRateLimitRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockRateLimitRepository {
	m := &MockRateLimitRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ interfaces.RateLimitRepository = (*MockRateLimitRepository)(nil)
