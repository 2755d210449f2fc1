package mocks

import (
	"context"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStoryRepository is a mock type for the StoryRepository type
type MockStoryRepository struct {
	mock.Mock
}

// Create provides a mock function with given fields: ctx, story
func (_m *MockStoryRepository) Create(ctx context.Context, story *models.Story) error {
	ret := _m.Called(ctx, story)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.Story) error); ok {
		r0 = rf(ctx, story)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// CreateMany provides a mock function with given fields: ctx, stories
func (_m *MockStoryRepository) CreateMany(ctx context.Context, stories []*models.Story) error {
	ret := _m.Called(ctx, stories)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, []*models.Story) error); ok {
		r0 = rf(ctx, stories)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetByID provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Story); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListVisibleTo provides a mock function with given fields: ctx, ownerIP
func (_m *MockStoryRepository) ListVisibleTo(ctx context.Context, ownerIP string) ([]*models.Story, error) {
	ret := _m.Called(ctx, ownerIP)

	var r0 []*models.Story
	if rf, ok := ret.Get(0).(func(context.Context, string) []*models.Story); ok {
		r0 = rf(ctx, ownerIP)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, ownerIP)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Search provides a mock function with given fields: ctx, query, language, ownerIP
func (_m *MockStoryRepository) Search(ctx context.Context, query string, language string, ownerIP string) ([]*models.Story, error) {
	ret := _m.Called(ctx, query, language, ownerIP)

	var r0 []*models.Story
	if rf, ok := ret.Get(0).(func(context.Context, string, string, string) []*models.Story); ok {
		r0 = rf(ctx, query, language, ownerIP)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).([]*models.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string, string) error); ok {
		r1 = rf(ctx, query, language, ownerIP)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Update provides a mock function with given fields: ctx, id, patch
func (_m *MockStoryRepository) Update(ctx context.Context, id uuid.UUID, patch models.StoryPatch) (*models.Story, error) {
	ret := _m.Called(ctx, id, patch)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, models.StoryPatch) *models.Story); ok {
		r0 = rf(ctx, id, patch)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, models.StoryPatch) error); ok {
		r1 = rf(ctx, id, patch)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ToggleShare provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) ToggleShare(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	ret := _m.Called(ctx, id)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) *models.Story); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Delete provides a mock function with given fields: ctx, id
func (_m *MockStoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	ret := _m.Called(ctx, id)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID) bool); ok {
		r0 = rf(ctx, id)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID) error); ok {
		r1 = rf(ctx, id)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SetMusicJob provides a mock function with given fields: ctx, id, jobID, prompt
func (_m *MockStoryRepository) SetMusicJob(ctx context.Context, id uuid.UUID, jobID string, prompt string) error {
	ret := _m.Called(ctx, id, jobID, prompt)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, string, string) error); ok {
		r0 = rf(ctx, id, jobID, prompt)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetMusicURL provides a mock function with given fields: ctx, id, musicURL
func (_m *MockStoryRepository) SetMusicURL(ctx context.Context, id uuid.UUID, musicURL string) error {
	ret := _m.Called(ctx, id, musicURL)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, string) error); ok {
		r0 = rf(ctx, id, musicURL)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// SetMusicURLByJobID provides a mock function with given fields: ctx, jobID, musicURL
func (_m *MockStoryRepository) SetMusicURLByJobID(ctx context.Context, jobID string, musicURL string) (uuid.UUID, error) {
	ret := _m.Called(ctx, jobID, musicURL)

	var r0 uuid.UUID
	if rf, ok := ret.Get(0).(func(context.Context, string, string) uuid.UUID); ok {
		r0 = rf(ctx, jobID, musicURL)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(uuid.UUID)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, jobID, musicURL)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// SetSoundEffects provides a mock function with given fields: ctx, id, effects
func (_m *MockStoryRepository) SetSoundEffects(ctx context.Context, id uuid.UUID, effects models.SoundEffects) (*models.Story, error) {
	ret := _m.Called(ctx, id, effects)

	var r0 *models.Story
	if rf, ok := ret.Get(0).(func(context.Context, uuid.UUID, models.SoundEffects) *models.Story); ok {
		r0 = rf(ctx, id, effects)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.Story)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, uuid.UUID, models.SoundEffects) error); ok {
		r1 = rf(ctx, id, effects)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockStoryRepository creates a new instance of MockStoryRepository. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockStoryRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockStoryRepository {
	m := &MockStoryRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}

var _ interfaces.StoryRepository = (*MockStoryRepository)(nil)
