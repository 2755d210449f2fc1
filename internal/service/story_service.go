package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxTagLength = 100

// StoryInput данные для сохранения истории, пришедшие от клиента.
type StoryInput struct {
	Title    string
	Content  string
	Language string
	Tag      string
	ImageURL string
	Source   models.StorySource
}

// StoryService defines CRUD operations on saved stories.
type StoryService interface {
	Create(ctx context.Context, input StoryInput, ownerIP string) (*models.Story, error)
	CreateMany(ctx context.Context, inputs []StoryInput, ownerIP string) ([]*models.Story, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)
	ListVisibleTo(ctx context.Context, ownerIP string) ([]*models.Story, error)
	Search(ctx context.Context, query, language, ownerIP string) ([]*models.Story, error)
	Update(ctx context.Context, id uuid.UUID, patch models.StoryPatch) (*models.Story, error)
	ToggleShare(ctx context.Context, id uuid.UUID) (*models.Story, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type storyServiceImpl struct {
	repo   interfaces.StoryRepository
	logger *zap.Logger
}

// NewStoryService creates a new instance of StoryService.
func NewStoryService(repo interfaces.StoryRepository, logger *zap.Logger) StoryService {
	return &storyServiceImpl{
		repo:   repo,
		logger: logger.Named("StoryService"),
	}
}

func (s *storyServiceImpl) Create(ctx context.Context, input StoryInput, ownerIP string) (*models.Story, error) {
	story, err := buildStory(input, ownerIP)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, story); err != nil {
		s.logger.Error("Failed to create story", zap.Error(err))
		return nil, err
	}
	return story, nil
}

// CreateMany валидирует все элементы до первой вставки.
func (s *storyServiceImpl) CreateMany(ctx context.Context, inputs []StoryInput, ownerIP string) ([]*models.Story, error) {
	if len(inputs) == 0 {
		return nil, models.NewValidationError("stories array must not be empty")
	}
	stories := make([]*models.Story, 0, len(inputs))
	for i, input := range inputs {
		story, err := buildStory(input, ownerIP)
		if err != nil {
			return nil, fmt.Errorf("story %d: %w", i, err)
		}
		stories = append(stories, story)
	}
	if err := s.repo.CreateMany(ctx, stories); err != nil {
		s.logger.Error("Failed to create stories batch", zap.Int("count", len(stories)), zap.Error(err))
		return nil, err
	}
	return stories, nil
}

func (s *storyServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *storyServiceImpl) ListVisibleTo(ctx context.Context, ownerIP string) ([]*models.Story, error) {
	return s.repo.ListVisibleTo(ctx, ownerIP)
}

func (s *storyServiceImpl) Search(ctx context.Context, query, language, ownerIP string) ([]*models.Story, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("search query is required")
	}
	return s.repo.Search(ctx, query, strings.TrimSpace(language), ownerIP)
}

func (s *storyServiceImpl) Update(ctx context.Context, id uuid.UUID, patch models.StoryPatch) (*models.Story, error) {
	if patch.IsEmpty() {
		return nil, models.NewValidationError("no fields to update")
	}
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}
	story, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Error("Failed to update story", zap.Stringer("storyID", id), zap.Error(err))
		}
		return nil, err
	}
	return story, nil
}

func (s *storyServiceImpl) ToggleShare(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story, err := s.repo.ToggleShare(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Story share toggled", zap.Stringer("storyID", id), zap.Bool("isShared", story.IsShared))
	return story, nil
}

func (s *storyServiceImpl) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		s.logger.Error("Failed to delete story", zap.Stringer("storyID", id), zap.Error(err))
		return false, err
	}
	return deleted, nil
}

// buildStory проверяет обязательные поля и собирает запись для вставки.
func buildStory(input StoryInput, ownerIP string) (*models.Story, error) {
	var missing []string
	title := strings.TrimSpace(input.Title)
	if title == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(input.Content) == "" {
		missing = append(missing, "content")
	}
	language := strings.TrimSpace(input.Language)
	if language == "" {
		missing = append(missing, "language")
	}
	if len(missing) > 0 {
		return nil, models.NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}
	if utf8.RuneCountInString(title) > models.MaxTitleLength {
		return nil, models.NewValidationError("title must be at most %d characters", models.MaxTitleLength)
	}
	if utf8.RuneCountInString(input.Tag) > maxTagLength {
		return nil, models.NewValidationError("tag must be at most %d characters", maxTagLength)
	}

	source := input.Source
	if source == "" {
		source = models.SourceUser
	}
	if !validSource(source) {
		return nil, models.NewValidationError("unknown source '%s'", source)
	}

	story := &models.Story{
		Title:     title,
		Content:   input.Content,
		Language:  language,
		Source:    source,
		IPAddress: ownerIP,
	}
	if tag := strings.TrimSpace(input.Tag); tag != "" {
		story.Tag = &tag
	}
	if imageURL := strings.TrimSpace(input.ImageURL); imageURL != "" {
		story.ImageURL = &imageURL
	}
	return story, nil
}

// normalizePatch приводит поля патча к тому же виду, что и buildStory:
// title, language и tag обрезаются, пустой tag очищает колонку (NULL).
func normalizePatch(patch models.StoryPatch) (models.StoryPatch, error) {
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return patch, models.NewValidationError("title must not be empty")
		}
		if utf8.RuneCountInString(title) > models.MaxTitleLength {
			return patch, models.NewValidationError("title must be at most %d characters", models.MaxTitleLength)
		}
		patch.Title = &title
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return patch, models.NewValidationError("content must not be empty")
	}
	if patch.Language != nil {
		language := strings.TrimSpace(*patch.Language)
		if language == "" {
			return patch, models.NewValidationError("language must not be empty")
		}
		patch.Language = &language
	}
	if patch.Tag != nil {
		tag := strings.TrimSpace(*patch.Tag)
		if utf8.RuneCountInString(tag) > maxTagLength {
			return patch, models.NewValidationError("tag must be at most %d characters", maxTagLength)
		}
		patch.Tag = &tag
	}
	if patch.Source != nil && !validSource(*patch.Source) {
		return patch, models.NewValidationError("unknown source '%s'", *patch.Source)
	}
	return patch, nil
}

func validSource(source models.StorySource) bool {
	switch source {
	case models.SourceAI, models.SourcePDF, models.SourceUser:
		return true
	}
	return false
}
