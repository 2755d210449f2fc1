package mocks

import (
	"context"

	"storybook-server/internal/clients"

	"github.com/stretchr/testify/mock"
)

// MockSoundLibrary is a mock type for the SoundLibrary type
type MockSoundLibrary struct {
	mock.Mock
}

// Authenticate provides a mock function with given fields: ctx
func (_m *MockSoundLibrary) Authenticate(ctx context.Context) (string, error) {
	ret := _m.Called(ctx)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context) string); ok {
		r0 = rf(ctx)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context) error); ok {
		r1 = rf(ctx)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SearchFirst provides a mock function with given fields: ctx, token, query
func (_m *MockSoundLibrary) SearchFirst(ctx context.Context, token string, query string) (*clients.SoundResult, error) {
	ret := _m.Called(ctx, token, query)

	var r0 *clients.SoundResult
	if rf, ok := ret.Get(0).(func(context.Context, string, string) *clients.SoundResult); ok {
		r0 = rf(ctx, token, query)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*clients.SoundResult)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, token, query)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockSoundLibrary creates a new instance of MockSoundLibrary. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockSoundLibrary(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockSoundLibrary {
	m := &MockSoundLibrary{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ clients.SoundLibrary = (*MockSoundLibrary)(nil)
