package mocks

import (
	"context"
	"time"

	"storybook-server/internal/taskmanager"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskManager is a mock type for the ITaskManager type
type MockTaskManager struct {
	mock.Mock
}

// SubmitTask provides a mock function with given fields: name, taskFunc
func (_m *MockTaskManager) SubmitTask(name string, taskFunc taskmanager.TaskFunc) (uuid.UUID, error) {
	ret := _m.Called(name, taskFunc)

	var r0 uuid.UUID
	if rf, ok := ret.Get(0).(func(string, taskmanager.TaskFunc) uuid.UUID); ok {
		r0 = rf(name, taskFunc)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(uuid.UUID)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(string, taskmanager.TaskFunc) error); ok {
		r1 = rf(name, taskFunc)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetTask provides a mock function with given fields: taskID
func (_m *MockTaskManager) GetTask(taskID uuid.UUID) (taskmanager.Task, error) {
	ret := _m.Called(taskID)

	var r0 taskmanager.Task
	if rf, ok := ret.Get(0).(func(uuid.UUID) taskmanager.Task); ok {
		r0 = rf(taskID)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(taskmanager.Task)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(uuid.UUID) error); ok {
		r1 = rf(taskID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// CancelTask provides a mock function with given fields: taskID
func (_m *MockTaskManager) CancelTask(taskID uuid.UUID) error {
	ret := _m.Called(taskID)

	var r0 error
	if rf, ok := ret.Get(0).(func(uuid.UUID) error); ok {
		r0 = rf(taskID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CleanupTasks provides a mock function with given fields: age
func (_m *MockTaskManager) CleanupTasks(age time.Duration) int {
	ret := _m.Called(age)

	var r0 int
	if rf, ok := ret.Get(0).(func(time.Duration) int); ok {
		r0 = rf(age)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(int)
	}

	return r0
}

// Shutdown provides a mock function with given fields: ctx
func (_m *MockTaskManager) Shutdown(ctx context.Context) error {
	ret := _m.Called(ctx)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context) error); ok {
		r0 = rf(ctx)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewMockTaskManager creates a new instance of MockTaskManager. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockTaskManager(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTaskManager {
	m := &MockTaskManager{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ taskmanager.ITaskManager = (*MockTaskManager)(nil)
