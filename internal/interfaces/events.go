package interfaces

import (
	"context"

	"storybook-server/internal/models"
)

// StoryEventPublisher публикует события жизненного цикла историй.
//
//go:generate mockery --name StoryEventPublisher --output ../mocks --outpkg mocks --case=underscore
type StoryEventPublisher interface {
	PublishStoryEvent(ctx context.Context, event models.StoryEvent) error
}
