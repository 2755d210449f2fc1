package service

import (
	"context"
	"net/url"
	"strings"

	"storybook-server/internal/clients"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"
	"storybook-server/internal/taskmanager"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const musicStartedMessage = "Music generation started. The track will be attached to the story when ready."

// MusicStartResult ответ на запуск генерации музыки.
type MusicStartResult struct {
	Story   *models.Story
	JobID   string
	Message string
}

// MusicService запускает генерацию музыки и принимает результаты от провайдера.
type MusicService interface {
	StartMusic(ctx context.Context, storyID uuid.UUID) (*MusicStartResult, error)
	HandleCallback(ctx context.Context, storyIDParam string, body []byte) (CallbackSummary, error)
}

type musicServiceImpl struct {
	provider    clients.MusicProvider
	stories     interfaces.StoryRepository
	tasks       taskmanager.ITaskManager
	poller      *MusicPoller
	publisher   interfaces.StoryEventPublisher
	callbackURL string
	logger      *zap.Logger
}

// NewMusicService creates a new instance of MusicService.
// callbackURL: публичный адрес эндпоинта колбэка без query-параметров.
func NewMusicService(
	provider clients.MusicProvider,
	stories interfaces.StoryRepository,
	tasks taskmanager.ITaskManager,
	poller *MusicPoller,
	publisher interfaces.StoryEventPublisher,
	callbackURL string,
	logger *zap.Logger,
) MusicService {
	return &musicServiceImpl{
		provider:    provider,
		stories:     stories,
		tasks:       tasks,
		poller:      poller,
		publisher:   publisher,
		callbackURL: callbackURL,
		logger:      logger.Named("MusicService"),
	}
}

// MusicPrompt полный текст истории, без сокращений.
func MusicPrompt(story *models.Story) string {
	return story.Title + "\n\n" + story.Content
}

func (s *musicServiceImpl) StartMusic(ctx context.Context, storyID uuid.UUID) (*MusicStartResult, error) {
	log := s.logger.With(zap.Stringer("storyID", storyID))

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}

	prompt := MusicPrompt(story)
	jobID, err := s.provider.Submit(ctx, models.MusicSubmission{
		Prompt:       prompt,
		Title:        story.Title,
		Instrumental: true,
		CallbackURL:  s.storyCallbackURL(storyID),
	})
	if err != nil {
		log.Warn("Music submission failed", zap.Error(err))
		return nil, err
	}

	if err := s.stories.SetMusicJob(ctx, storyID, jobID, prompt); err != nil {
		log.Warn("Failed to record music job, relying on callback storyId", zap.String("jobID", jobID), zap.Error(err))
	} else {
		story.MusicJobID = &jobID
		story.MusicPrompt = &prompt
	}

	if s.poller != nil && s.tasks != nil {
		taskID, err := s.tasks.SubmitTask("music-poll:"+storyID.String(), s.poller.Task(storyID, jobID))
		if err != nil {
			log.Warn("Failed to schedule music polling, relying on callback", zap.Error(err))
		} else {
			log.Debug("Music polling scheduled", zap.Stringer("taskID", taskID))
		}
	}

	log.Info("Music generation started", zap.String("jobID", jobID))
	return &MusicStartResult{Story: story, JobID: jobID, Message: musicStartedMessage}, nil
}

func (s *musicServiceImpl) storyCallbackURL(storyID uuid.UUID) string {
	sep := "?"
	if strings.Contains(s.callbackURL, "?") {
		sep = "&"
	}
	return s.callbackURL + sep + "storyId=" + url.QueryEscape(storyID.String())
}
