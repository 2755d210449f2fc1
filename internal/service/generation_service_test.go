package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"storybook-server/internal/clients"
	"storybook-server/internal/mocks"
	"storybook-server/internal/models"
	"storybook-server/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type generationDeps struct {
	text      *mocks.MockTextGenerator
	images    *mocks.MockImageGenerator
	store     *mocks.MockImageStore
	stories   *mocks.MockStoryRepository
	counters  *mocks.MockRateLimitRepository
	publisher *mocks.MockStoryEventPublisher
}

func newGenerationDeps(t *testing.T) generationDeps {
	return generationDeps{
		text:      mocks.NewMockTextGenerator(t),
		images:    mocks.NewMockImageGenerator(t),
		store:     mocks.NewMockImageStore(t),
		stories:   mocks.NewMockStoryRepository(t),
		counters:  mocks.NewMockRateLimitRepository(t),
		publisher: mocks.NewMockStoryEventPublisher(t),
	}
}

func (d generationDeps) service(limit int) service.GenerationService {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter := service.NewRateLimiter(d.counters, limit, zap.NewNop()).WithClock(func() time.Time { return now })
	return service.NewGenerationService(d.text, d.images, d.store, d.stories, limiter, d.publisher, zap.NewNop())
}

func TestGenerationService_Generate(t *testing.T) {
	ctx := context.Background()
	const ip = "203.0.113.7"
	const day = "2026-05-01"

	t.Run("Single story gets an uploaded illustration", func(t *testing.T) {
		d := newGenerationDeps(t)
		svc := d.service(10)
		png := []byte{0x89, 'P', 'N', 'G'}

		d.counters.On("GetCount", ctx, ip, day).Return(2, nil).Once()
		d.text.On("GenerateText", ctx, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Russian") && !strings.Contains(p, "[STORY_START]")
		}), "Story idea: a kind hedgehog", mock.Anything).
			Return("Ёжик\nЖил-был ёжик.", nil).Once()
		d.images.On("GenerateImage", ctx, mock.Anything).Return(&clients.GeneratedImage{PNG: png}, nil).Once()
		d.store.On("SavePNG", ctx, mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "stories/") && strings.HasSuffix(name, ".png")
		}), png).Return("http://minio/stories/x.png", nil).Once()
		d.counters.On("Increment", ctx, ip, day).Return(3, nil).Once()
		d.stories.On("CreateMany", ctx, mock.MatchedBy(func(s []*models.Story) bool {
			return len(s) == 1 && s[0].Source == models.SourceAI && s[0].IPAddress == ip
		})).Return(nil).Once()
		d.publisher.On("PublishStoryEvent", ctx, mock.MatchedBy(func(e models.StoryEvent) bool {
			return e.Type == models.EventStoryGenerated && e.Title == "Ёжик"
		})).Return(nil).Once()
		d.counters.On("GetCount", ctx, ip, day).Return(3, nil).Once()

		result, err := svc.Generate(ctx, service.GenerateRequest{Query: " a kind hedgehog ", Language: "ru", OwnerIP: ip})
		require.NoError(t, err)
		require.Len(t, result.Stories, 1)
		story := result.Stories[0]
		assert.Equal(t, "Жил-был ёжик.", story.Content)
		require.NotNil(t, story.ImageURL)
		assert.Equal(t, "http://minio/stories/x.png", *story.ImageURL)
		assert.Equal(t, 7, result.RateLimit.Remaining)
		assert.Equal(t, "a kind hedgehog", result.Query)
	})

	t.Run("Upload failure falls back to data URL and image errors are ignored", func(t *testing.T) {
		d := newGenerationDeps(t)
		svc := d.service(10)

		d.counters.On("GetCount", ctx, ip, day).Return(0, nil)
		d.text.On("GenerateText", ctx, mock.Anything, mock.Anything, mock.Anything).Return("Moon\nThe moon smiled.", nil)
		d.images.On("GenerateImage", ctx, mock.Anything).Return(&clients.GeneratedImage{PNG: []byte("png")}, nil).Once()
		d.store.On("SavePNG", ctx, mock.Anything, mock.Anything).Return("", errors.New("bucket gone")).Once()
		d.counters.On("Increment", ctx, ip, day).Return(1, nil)
		d.stories.On("CreateMany", ctx, mock.Anything).Return(nil)
		d.publisher.On("PublishStoryEvent", ctx, mock.Anything).Return(errors.New("broker down"))

		result, err := svc.Generate(ctx, service.GenerateRequest{Query: "moon", OwnerIP: ip})
		require.NoError(t, err)
		require.NotNil(t, result.Stories[0].ImageURL)
		assert.True(t, strings.HasPrefix(*result.Stories[0].ImageURL, "data:image/png;base64,"))
		assert.Equal(t, "en", result.Stories[0].Language)

		d.images.On("GenerateImage", ctx, mock.Anything).Return(nil, errors.New("content policy")).Once()
		result, err = svc.Generate(ctx, service.GenerateRequest{Query: "moon", OwnerIP: ip})
		require.NoError(t, err)
		assert.Nil(t, result.Stories[0].ImageURL)
	})

	t.Run("Multiple variants are stored together without images", func(t *testing.T) {
		d := newGenerationDeps(t)
		svc := d.service(10)
		raw := "[STORY_START]One\nFirst.[STORY_END]\n[STORY_START]Two\nSecond.[STORY_END]\n[STORY_START]Three\nThird.[STORY_END]"

		d.counters.On("GetCount", ctx, ip, day).Return(0, nil)
		d.text.On("GenerateText", ctx, mock.MatchedBy(func(p string) bool {
			return strings.Contains(p, "Write 3 different stories")
		}), mock.Anything, mock.Anything).Return(raw, nil).Once()
		d.counters.On("Increment", ctx, ip, day).Return(1, nil).Once()
		d.stories.On("CreateMany", ctx, mock.MatchedBy(func(s []*models.Story) bool { return len(s) == 3 })).Return(nil).Once()
		d.publisher.On("PublishStoryEvent", ctx, mock.Anything).Return(nil).Times(3)

		result, err := svc.Generate(ctx, service.GenerateRequest{Query: "space", Multiple: true, Count: 9, OwnerIP: ip})
		require.NoError(t, err)
		require.Len(t, result.Stories, 3)
		assert.Equal(t, []string{"One", "Two", "Three"}, []string{result.Stories[0].Title, result.Stories[1].Title, result.Stories[2].Title})
		for _, s := range result.Stories {
			assert.Nil(t, s.ImageURL)
		}
	})

	t.Run("Quota exhausted stops before the provider call", func(t *testing.T) {
		d := newGenerationDeps(t)
		svc := d.service(10)
		d.counters.On("GetCount", ctx, ip, day).Return(10, nil).Once()

		_, err := svc.Generate(ctx, service.GenerateRequest{Query: "anything", OwnerIP: ip})
		var quota *models.QuotaExceededError
		require.ErrorAs(t, err, &quota)
		assert.Equal(t, 10, quota.Limit)
		assert.Equal(t, time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC), quota.ResetAt)
	})

	t.Run("Provider failure leaves the counter untouched", func(t *testing.T) {
		d := newGenerationDeps(t)
		svc := d.service(10)
		d.counters.On("GetCount", ctx, ip, day).Return(0, nil).Once()
		d.text.On("GenerateText", ctx, mock.Anything, mock.Anything, mock.Anything).
			Return("", &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: "openai", StatusCode: 429, Message: "slow down"}).Once()

		_, err := svc.Generate(ctx, service.GenerateRequest{Query: "anything", OwnerIP: ip})
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
		d.counters.AssertNotCalled(t, "Increment", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Blank model output is a provider error", func(t *testing.T) {
		d := newGenerationDeps(t)
		svc := d.service(10)
		d.counters.On("GetCount", ctx, ip, day).Return(0, nil).Once()
		d.text.On("GenerateText", ctx, mock.Anything, mock.Anything, mock.Anything).Return("   ", nil).Once()

		_, err := svc.Generate(ctx, service.GenerateRequest{Query: "anything", OwnerIP: ip})
		assert.ErrorIs(t, err, models.ErrGenerationFailed)
	})

	t.Run("Blank query", func(t *testing.T) {
		svc := newGenerationDeps(t).service(10)
		_, err := svc.Generate(ctx, service.GenerateRequest{Query: "  "})
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestTranslateService(t *testing.T) {
	ctx := context.Background()
	text := mocks.NewMockTextGenerator(t)
	svc := service.NewTranslateService(text, zap.NewNop())

	_, err := svc.Translate(ctx, "Hello", "")
	require.ErrorIs(t, err, models.ErrValidation)
	assert.Contains(t, err.Error(), "targetLanguage")

	text.On("GenerateText", ctx, mock.MatchedBy(func(p string) bool { return strings.Contains(p, "Spanish") }), "Hello",
		mock.MatchedBy(func(p clients.GenerationParams) bool { return p.Temperature != nil && *p.Temperature < 0.5 })).
		Return("  Hola \n", nil).Once()

	out, err := svc.Translate(ctx, "Hello", "es")
	require.NoError(t, err)
	assert.Equal(t, "Hola", out)
}
