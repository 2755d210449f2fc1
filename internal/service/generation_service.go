package service

import (
	"context"
	"strings"
	"time"

	"storybook-server/internal/clients"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var storyTemperature = 0.9

// GenerateRequest запрос на генерацию истории.
type GenerateRequest struct {
	Query    string
	Language string
	Multiple bool
	Count    int
	OwnerIP  string
}

// GenerateResult сохраненные истории и актуальный статус лимита.
type GenerateResult struct {
	Query     string
	Stories   []*models.Story
	RateLimit models.RateLimitStatus
}

// GenerationService генерирует истории через текстового провайдера.
type GenerationService interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
	RateLimitStatus(ctx context.Context, ownerIP string) models.RateLimitStatus
}

type generationServiceImpl struct {
	text       clients.TextGenerator
	images     clients.ImageGenerator
	imageStore interfaces.ImageStore
	stories    interfaces.StoryRepository
	limiter    *RateLimiter
	publisher  interfaces.StoryEventPublisher
	logger     *zap.Logger
}

// NewGenerationService creates a new instance of GenerationService.
// images и imageStore могут быть nil: тогда история сохраняется без иллюстрации
// или с иллюстрацией в виде data URL.
func NewGenerationService(
	text clients.TextGenerator,
	images clients.ImageGenerator,
	imageStore interfaces.ImageStore,
	stories interfaces.StoryRepository,
	limiter *RateLimiter,
	publisher interfaces.StoryEventPublisher,
	logger *zap.Logger,
) GenerationService {
	return &generationServiceImpl{
		text:       text,
		images:     images,
		imageStore: imageStore,
		stories:    stories,
		limiter:    limiter,
		publisher:  publisher,
		logger:     logger.Named("GenerationService"),
	}
}

func (s *generationServiceImpl) RateLimitStatus(ctx context.Context, ownerIP string) models.RateLimitStatus {
	return s.limiter.Check(ctx, ownerIP)
}

func (s *generationServiceImpl) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, models.NewValidationError("query is required")
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = defaultLanguage
	}
	log := s.logger.With(zap.String("ip", req.OwnerIP), zap.String("language", language), zap.Bool("multiple", req.Multiple))

	status := s.limiter.Check(ctx, req.OwnerIP)
	if !status.Allowed {
		log.Info("Daily generation limit reached", zap.Int("count", status.CurrentCount))
		return nil, &models.QuotaExceededError{Limit: status.Limit, ResetAt: status.ResetAt}
	}

	variants := 1
	if req.Multiple {
		variants = req.Count
		if variants < 2 || variants > maxVariantCount {
			variants = defaultVariantCount
		}
	}

	start := time.Now()
	raw, err := s.text.GenerateText(ctx, storySystemPrompt(language, variants), storyUserPrompt(query),
		clients.GenerationParams{Temperature: &storyTemperature})
	if err != nil {
		log.Warn("Story generation failed", zap.Error(err))
		return nil, err
	}

	generated := SplitStories(raw)
	if len(generated) == 0 {
		return nil, &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: "text", Message: "model returned no story text"}
	}
	log.Info("Stories generated", zap.Int("count", len(generated)), zap.Duration("duration", time.Since(start)))

	stories := make([]*models.Story, 0, len(generated))
	for _, g := range generated {
		stories = append(stories, &models.Story{
			ID:        uuid.New(),
			Title:     truncateRunes(g.Title, models.MaxTitleLength),
			Content:   g.Content,
			Language:  language,
			Source:    models.SourceAI,
			IPAddress: req.OwnerIP,
		})
	}
	if !req.Multiple && len(stories) == 1 {
		stories[0].ImageURL = s.illustrate(ctx, stories[0])
	}

	s.limiter.IncrementAfterSuccess(ctx, req.OwnerIP)

	if err := s.stories.CreateMany(ctx, stories); err != nil {
		log.Error("Failed to persist generated stories", zap.Error(err))
		return nil, err
	}

	for _, story := range stories {
		s.publish(ctx, models.StoryEvent{
			Type:     models.EventStoryGenerated,
			StoryID:  story.ID,
			Title:    story.Title,
			Language: story.Language,
		})
	}

	return &GenerateResult{
		Query:     query,
		Stories:   stories,
		RateLimit: s.limiter.Check(ctx, req.OwnerIP),
	}, nil
}

// illustrate возвращает URL иллюстрации или nil; ошибки не прерывают генерацию.
func (s *generationServiceImpl) illustrate(ctx context.Context, story *models.Story) *string {
	if s.images == nil {
		return nil
	}
	log := s.logger.With(zap.Stringer("storyID", story.ID))
	img, err := s.images.GenerateImage(ctx, imagePrompt(story.Title, story.Language))
	if err != nil {
		log.Warn("Image generation failed, continuing without image", zap.Error(err))
		return nil
	}

	var imageURL string
	switch {
	case len(img.PNG) > 0 && s.imageStore != nil:
		imageURL, err = s.imageStore.SavePNG(ctx, "stories/"+story.ID.String()+".png", img.PNG)
		if err != nil {
			log.Warn("Image upload failed, storing inline data URL", zap.Error(err))
			imageURL = clients.DataURL(img.PNG)
		}
	case len(img.PNG) > 0:
		imageURL = clients.DataURL(img.PNG)
	default:
		imageURL = img.URL
	}
	if imageURL == "" {
		return nil
	}
	return &imageURL
}

func (s *generationServiceImpl) publish(ctx context.Context, event models.StoryEvent) {
	if s.publisher == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	if err := s.publisher.PublishStoryEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish story event", zap.String("type", event.Type), zap.Error(err))
	}
}

func truncateRunes(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
