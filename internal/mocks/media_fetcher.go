package mocks

import (
	"context"

	"storybook-server/internal/clients"

	"github.com/stretchr/testify/mock"
)

// MockMediaFetcher is a mock type for the MediaFetcher type
type MockMediaFetcher struct {
	mock.Mock
}

// Fetch provides a mock function with given fields: ctx, rawURL
func (_m *MockMediaFetcher) Fetch(ctx context.Context, rawURL string) (*clients.MediaStream, error) {
	ret := _m.Called(ctx, rawURL)

	var r0 *clients.MediaStream
	if rf, ok := ret.Get(0).(func(context.Context, string) *clients.MediaStream); ok {
		r0 = rf(ctx, rawURL)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*clients.MediaStream)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, rawURL)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockMediaFetcher creates a new instance of MockMediaFetcher. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockMediaFetcher(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMediaFetcher {
	m := &MockMediaFetcher{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ clients.MediaFetcher = (*MockMediaFetcher)(nil)
