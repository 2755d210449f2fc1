package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storybook-server/internal/clients"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"
	"storybook-server/internal/taskmanager"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrPollBudgetExhausted = errors.New("poll budget exhausted")
	ErrMusicJobFailed      = errors.New("music job failed")
)

// PollConfig ограничения опроса статуса задачи.
type PollConfig struct {
	Interval       time.Duration
	MaxAttempts    int
	AttemptTimeout time.Duration
}

// MusicPoller опрашивает провайдера, пока трек не готов или не исчерпан бюджет попыток.
type MusicPoller struct {
	provider  clients.MusicProvider
	stories   interfaces.StoryRepository
	publisher interfaces.StoryEventPublisher
	cfg       PollConfig
	logger    *zap.Logger
}

func NewMusicPoller(
	provider clients.MusicProvider,
	stories interfaces.StoryRepository,
	publisher interfaces.StoryEventPublisher,
	cfg PollConfig,
	logger *zap.Logger,
) *MusicPoller {
	return &MusicPoller{
		provider:  provider,
		stories:   stories,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.Named("MusicPoller"),
	}
}

// Task возвращает функцию для taskmanager.
func (p *MusicPoller) Task(storyID uuid.UUID, jobID string) taskmanager.TaskFunc {
	return func(ctx context.Context) error {
		return p.Run(ctx, storyID, jobID)
	}
}

// Run выполняет опрос. Возвращает nil, когда трек сохранен.
func (p *MusicPoller) Run(ctx context.Context, storyID uuid.UUID, jobID string) error {
	log := p.logger.With(zap.Stringer("storyID", storyID), zap.String("jobID", jobID))
	timer := time.NewTimer(p.cfg.Interval)
	defer timer.Stop()

	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			musicPollOutcomes.WithLabelValues("cancelled").Inc()
			return ctx.Err()
		case <-timer.C:
		}

		state, err := p.poll(ctx, jobID)
		switch {
		case err != nil:
			log.Debug("Music status check failed, will retry", zap.Int("attempt", attempt), zap.Error(err))
		case state.Status == models.MusicStatusCompleted && len(state.AudioURLs) > 0:
			return p.complete(ctx, log, storyID, state.AudioURLs[0])
		case state.Status == models.MusicStatusFailed:
			musicPollOutcomes.WithLabelValues("failed").Inc()
			log.Warn("Music job failed", zap.String("status", state.RawStatus), zap.String("error", state.ErrorMessage))
			return fmt.Errorf("%w: %s %s", ErrMusicJobFailed, state.RawStatus, state.ErrorMessage)
		default:
			log.Debug("Music job in progress", zap.Int("attempt", attempt), zap.String("status", state.RawStatus))
		}
		timer.Reset(p.cfg.Interval)
	}

	musicPollOutcomes.WithLabelValues("exhausted").Inc()
	log.Info("Music polling stopped without result", zap.Int("attempts", p.cfg.MaxAttempts))
	return ErrPollBudgetExhausted
}

func (p *MusicPoller) poll(ctx context.Context, jobID string) (*models.MusicJobState, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, p.cfg.AttemptTimeout)
	defer cancel()
	return p.provider.JobStatus(attemptCtx, jobID)
}

func (p *MusicPoller) complete(ctx context.Context, log *zap.Logger, storyID uuid.UUID, musicURL string) error {
	if err := p.stories.SetMusicURL(ctx, storyID, musicURL); err != nil {
		log.Error("Failed to store polled music URL", zap.Error(err))
		return err
	}
	musicPollOutcomes.WithLabelValues("completed").Inc()
	log.Info("Music ready (poll)", zap.String("musicURL", musicURL))
	publishMusicReady(ctx, p.publisher, log, storyID, musicURL)
	return nil
}

func publishMusicReady(ctx context.Context, publisher interfaces.StoryEventPublisher, log *zap.Logger, storyID uuid.UUID, musicURL string) {
	if publisher == nil {
		return
	}
	err := publisher.PublishStoryEvent(ctx, models.StoryEvent{
		Type:      models.EventStoryMusicReady,
		StoryID:   storyID,
		MusicURL:  musicURL,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Warn("Failed to publish music ready event", zap.Error(err))
	}
}
