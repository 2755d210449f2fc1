package interfaces

import (
	"context"

	"storybook-server/internal/models"

	"github.com/google/uuid"
)

// StoryRepository defines persistence operations for stories.
//
//go:generate mockery --name StoryRepository --output ../mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// Create inserts a story. ID and timestamps are assigned by the repository.
	Create(ctx context.Context, story *models.Story) error

	// CreateMany inserts all stories in a single transaction: either every row is committed or none.
	CreateMany(ctx context.Context, stories []*models.Story) error

	// GetByID returns models.ErrNotFound when the story does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)

	// ListVisibleTo returns stories owned by ownerIP, migrated stories and shared stories, newest first.
	// An empty ownerIP returns every story.
	ListVisibleTo(ctx context.Context, ownerIP string) ([]*models.Story, error)

	// Search performs a case-insensitive substring match on title or content.
	// Empty language/ownerIP disable the respective filter.
	Search(ctx context.Context, query, language, ownerIP string) ([]*models.Story, error)

	// Update applies only non-nil patch fields.
	Update(ctx context.Context, id uuid.UUID, patch models.StoryPatch) (*models.Story, error)

	// ToggleShare flips is_shared in a single statement.
	ToggleShare(ctx context.Context, id uuid.UUID) (*models.Story, error)

	// Delete returns false when no row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	// SetMusicJob records the external music job id and the prompt sent to the provider.
	SetMusicJob(ctx context.Context, id uuid.UUID, jobID, prompt string) error

	// SetMusicURL stores the generated track and clears the job id.
	SetMusicURL(ctx context.Context, id uuid.UUID, musicURL string) error

	// SetMusicURLByJobID resolves the story by its music job id and stores the track.
	SetMusicURLByJobID(ctx context.Context, jobID, musicURL string) (uuid.UUID, error)

	// SetSoundEffects replaces the sound-effect mapping (NULL when empty).
	SetSoundEffects(ctx context.Context, id uuid.UUID, effects models.SoundEffects) (*models.Story, error)
}
