package mocks

import (
	"context"

	"storybook-server/internal/clients"
	"storybook-server/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockMusicProvider is a mock type for the MusicProvider type
type MockMusicProvider struct {
	mock.Mock
}

// Submit provides a mock function with given fields: ctx, req
func (_m *MockMusicProvider) Submit(ctx context.Context, req models.MusicSubmission) (string, error) {
	ret := _m.Called(ctx, req)

	var r0 string
	if rf, ok := ret.Get(0).(func(context.Context, models.MusicSubmission) string); ok {
		r0 = rf(ctx, req)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, models.MusicSubmission) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// JobStatus provides a mock function with given fields: ctx, jobID
func (_m *MockMusicProvider) JobStatus(ctx context.Context, jobID string) (*models.MusicJobState, error) {
	ret := _m.Called(ctx, jobID)

	var r0 *models.MusicJobState
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.MusicJobState); ok {
		r0 = rf(ctx, jobID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.MusicJobState)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, jobID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockMusicProvider creates a new instance of MockMusicProvider. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockMusicProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockMusicProvider {
	m := &MockMusicProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ clients.MusicProvider = (*MockMusicProvider)(nil)
