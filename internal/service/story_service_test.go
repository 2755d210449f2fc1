package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
	"storybook-server/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults source to user and keeps owner IP", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())

		repo.On("Create", ctx, mock.MatchedBy(func(s *models.Story) bool {
			return s.Title == "Moon" && s.Source == models.SourceUser && s.IPAddress == "10.0.0.1" &&
				s.Tag != nil && *s.Tag == "bedtime" && s.ImageURL == nil
		})).Return(nil).Once()

		story, err := svc.Create(ctx, service.StoryInput{
			Title:    "  Moon ",
			Content:  "Once upon a time",
			Language: "en",
			Tag:      "bedtime",
		}, "10.0.0.1")
		require.NoError(t, err)
		assert.Equal(t, "Moon", story.Title)
	})

	t.Run("Lists every missing field", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())

		_, err := svc.Create(ctx, service.StoryInput{Content: "text"}, "ip")
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "title")
		assert.Contains(t, err.Error(), "language")
		assert.NotContains(t, err.Error(), "content")
	})

	t.Run("Rejects long title and unknown source", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())

		_, err := svc.Create(ctx, service.StoryInput{Title: strings.Repeat("я", 201), Content: "c", Language: "ru"}, "ip")
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = svc.Create(ctx, service.StoryInput{Title: "t", Content: "c", Language: "en", Source: "radio"}, "ip")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Title of exactly 200 runes is accepted", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())
		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, service.StoryInput{Title: strings.Repeat("я", 200), Content: "c", Language: "ru"}, "ip")
		assert.NoError(t, err)
	})
}

func TestStoryService_CreateMany(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid item rejects the whole batch before any insert", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())

		_, err := svc.CreateMany(ctx, []service.StoryInput{
			{Title: "a", Content: "b", Language: "en"},
			{Title: "", Content: "b", Language: "en"},
		}, "ip")
		require.ErrorIs(t, err, models.ErrValidation)
		assert.Contains(t, err.Error(), "story 1")
		repo.AssertNotCalled(t, "CreateMany", mock.Anything, mock.Anything)
	})

	t.Run("Empty batch", func(t *testing.T) {
		svc := service.NewStoryService(mocks.NewMockStoryRepository(t), zap.NewNop())
		_, err := svc.CreateMany(ctx, nil, "ip")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Repository failure is returned as is", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())
		repo.On("CreateMany", ctx, mock.MatchedBy(func(s []*models.Story) bool { return len(s) == 2 })).
			Return(models.ErrStorage).Once()

		_, err := svc.CreateMany(ctx, []service.StoryInput{
			{Title: "a", Content: "b", Language: "en"},
			{Title: "c", Content: "d", Language: "en", Source: models.SourcePDF},
		}, "ip")
		assert.ErrorIs(t, err, models.ErrStorage)
	})
}

func TestStoryService_UpdateAndSearch(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	t.Run("Empty patch", func(t *testing.T) {
		svc := service.NewStoryService(mocks.NewMockStoryRepository(t), zap.NewNop())
		_, err := svc.Update(ctx, id, models.StoryPatch{})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Blank title in patch", func(t *testing.T) {
		svc := service.NewStoryService(mocks.NewMockStoryRepository(t), zap.NewNop())
		blank := "   "
		_, err := svc.Update(ctx, id, models.StoryPatch{Title: &blank})
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("Not found passes through", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())
		tag := "sea"
		repo.On("Update", ctx, id, models.StoryPatch{Tag: &tag}).Return(nil, models.ErrNotFound).Once()

		_, err := svc.Update(ctx, id, models.StoryPatch{Tag: &tag})
		assert.True(t, errors.Is(err, models.ErrNotFound))
	})

	t.Run("Patch fields are trimmed like on create", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())
		title, language, tag := "  New Title \n", " fr ", "   "
		repo.On("Update", ctx, id, mock.MatchedBy(func(p models.StoryPatch) bool {
			return *p.Title == "New Title" && *p.Language == "fr" && p.Tag != nil && *p.Tag == ""
		})).Return(&models.Story{ID: id, Title: "New Title"}, nil).Once()

		story, err := svc.Update(ctx, id, models.StoryPatch{Title: &title, Language: &language, Tag: &tag})
		require.NoError(t, err)
		assert.Equal(t, "New Title", story.Title)
		assert.Equal(t, "  New Title \n", title, "caller's value is not mutated")
	})

	t.Run("Search requires a query and trims language", func(t *testing.T) {
		repo := mocks.NewMockStoryRepository(t)
		svc := service.NewStoryService(repo, zap.NewNop())

		_, err := svc.Search(ctx, "  ", "", "ip")
		assert.ErrorIs(t, err, models.ErrValidation)

		repo.On("Search", ctx, "dragon", "en", "ip").Return([]*models.Story{{Title: "Dragon"}}, nil).Once()
		found, err := svc.Search(ctx, " dragon ", " en ", "ip")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
