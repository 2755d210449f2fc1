package mocks

import (
	"context"

	"storybook-server/internal/interfaces"

	"github.com/stretchr/testify/mock"
)

// MockImageStore is a mock type for the ImageStore type
type MockImageStore struct {
	mock.Mock
}

// SavePNG provides a mock function with given fields: ctx, objectName, data
func (_m *MockImageStore) SavePNG(ctx context.Context, objectName string, data []byte) (string, error) {
	ret := _m.Called(ctx, objectName, data)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, string, []byte) string); ok {
		r0 = rf(ctx, objectName, data)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, []byte) error); ok {
		r1 = rf(ctx, objectName, data)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockImageStore creates a new instance of MockImageStore. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockImageStore(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockImageStore {
	m := &MockImageStore{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ interfaces.ImageStore = (*MockImageStore)(nil)
