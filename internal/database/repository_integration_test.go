package database_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"storybook-server/internal/database"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RepositoryIntegrationSuite гоняет репозитории против настоящих PostgreSQL и Redis.
type RepositoryIntegrationSuite struct {
	suite.Suite
	ctx         context.Context
	pgContainer *postgres.PostgresContainer
	rdContainer *tcredis.RedisContainer
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	logger      *zap.Logger

	stories   interfaces.StoryRepository
	pgLimits  interfaces.RateLimitRepository
	rdbLimits interfaces.RateLimitRepository
}

func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoryIntegrationSuite))
}

func (s *RepositoryIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()
	var err error

	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("storybook_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start postgres container")

	dsn, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.pgPool, err = database.NewPgPool(s.ctx, database.PoolConfig{DSN: dsn, Attempts: 3, RetryDelay: time.Second}, s.logger)
	require.NoError(s.T(), err)

	migrator := database.NewMigrator(s.pgPool, s.logger)
	require.NoError(s.T(), migrator.EnsureSchema(s.ctx, true), "schema gate should pass after migrating")

	s.rdContainer, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.rdContainer.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.rdContainer.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)
	s.redisClient = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(s.T(), s.redisClient.Ping(s.ctx).Err())

	s.stories = database.NewPgStoryRepository(s.pgPool, s.logger)
	s.pgLimits = database.NewPgRateLimitRepository(s.pgPool, s.logger)
	s.rdbLimits = database.NewRedisRateLimitRepository(s.redisClient, s.logger)
}

func (s *RepositoryIntegrationSuite) TearDownSuite() {
	if s.redisClient != nil {
		_ = s.redisClient.Close()
	}
	if s.pgPool != nil {
		s.pgPool.Close()
	}
	if s.rdContainer != nil {
		_ = s.rdContainer.Terminate(s.ctx)
	}
	if s.pgContainer != nil {
		_ = s.pgContainer.Terminate(s.ctx)
	}
}

func (s *RepositoryIntegrationSuite) SetupTest() {
	_, err := s.pgPool.Exec(s.ctx, "TRUNCATE stories, rate_limits")
	s.Require().NoError(err)
	s.Require().NoError(s.redisClient.FlushDB(s.ctx).Err())
}

func newStory(title, ip string) *models.Story {
	return &models.Story{Title: title, Content: "Once upon a time.", Language: "en", IPAddress: ip}
}

func (s *RepositoryIntegrationSuite) TestCreateAndGetRoundTrip() {
	tag := "animals"
	story := newStory("The Fox", "10.0.0.1")
	story.Tag = &tag
	s.Require().NoError(s.stories.Create(s.ctx, story))
	s.NotEqual(uuid.Nil, story.ID)

	got, err := s.stories.GetByID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Equal("The Fox", got.Title)
	s.Equal("Once upon a time.", got.Content)
	s.Equal("en", got.Language)
	s.Equal(models.SourceUser, got.Source)
	s.Equal(&tag, got.Tag)
	s.False(got.IsShared)
	s.Nil(got.MusicURL)
	s.Nil(got.SoundEffects)
	s.WithinDuration(story.CreatedAt, got.CreatedAt, time.Millisecond)
}

func (s *RepositoryIntegrationSuite) TestGetByID_NotFound() {
	_, err := s.stories.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestCreateMany_RollsBackOnFailure() {
	tooLong := newStory(strings.Repeat("x", models.MaxTitleLength+1), "10.0.0.1")
	err := s.stories.CreateMany(s.ctx, []*models.Story{newStory("ok", "10.0.0.1"), tooLong})
	s.ErrorIs(err, models.ErrStorage)

	all, err := s.stories.ListVisibleTo(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(all, "no row from a failed batch must be committed")
}

func (s *RepositoryIntegrationSuite) TestVisibilityFilter() {
	own := newStory("mine", "A")
	other := newStory("theirs", "B")
	migrated := newStory("legacy", models.MigratedOwnerIP)
	s.Require().NoError(s.stories.CreateMany(s.ctx, []*models.Story{own, other, migrated}))

	visible, err := s.stories.ListVisibleTo(s.ctx, "A")
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{own.ID, migrated.ID}, storyIDs(visible))

	shared, err := s.stories.ToggleShare(s.ctx, other.ID)
	s.Require().NoError(err)
	s.True(shared.IsShared)

	visible, err = s.stories.ListVisibleTo(s.ctx, "A")
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{own.ID, other.ID, migrated.ID}, storyIDs(visible))

	unshared, err := s.stories.ToggleShare(s.ctx, other.ID)
	s.Require().NoError(err)
	s.False(unshared.IsShared)
}

func (s *RepositoryIntegrationSuite) TestUpdatePreservesUntouchedFields() {
	story := newStory("Before", "A")
	s.Require().NoError(s.stories.Create(s.ctx, story))
	s.Require().NoError(s.stories.SetMusicJob(s.ctx, story.ID, "job-1", "prompt"))

	title := "After"
	updated, err := s.stories.Update(s.ctx, story.ID, models.StoryPatch{Title: &title})
	s.Require().NoError(err)
	s.Equal("After", updated.Title)
	s.Equal(story.Content, updated.Content)
	s.Equal(story.Language, updated.Language)
	s.Require().NotNil(updated.MusicJobID)
	s.Equal("job-1", *updated.MusicJobID)
	s.Require().NotNil(updated.MusicPrompt)
	s.Equal("prompt", *updated.MusicPrompt)

	_, err = s.stories.Update(s.ctx, uuid.New(), models.StoryPatch{Title: &title})
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestUpdateEmptyTagStoresNull() {
	story := newStory("Tagged", "A")
	s.Require().NoError(s.stories.Create(s.ctx, story))

	tag := "sea"
	updated, err := s.stories.Update(s.ctx, story.ID, models.StoryPatch{Tag: &tag})
	s.Require().NoError(err)
	s.Require().NotNil(updated.Tag)
	s.Equal("sea", *updated.Tag)

	empty := ""
	updated, err = s.stories.Update(s.ctx, story.ID, models.StoryPatch{Tag: &empty, ImageURL: &empty})
	s.Require().NoError(err)
	s.Nil(updated.Tag)
	s.Nil(updated.ImageURL)
}

func (s *RepositoryIntegrationSuite) TestDeleteIsIdempotent() {
	story := newStory("Bye", "A")
	s.Require().NoError(s.stories.Create(s.ctx, story))

	deleted, err := s.stories.Delete(s.ctx, story.ID)
	s.Require().NoError(err)
	s.True(deleted)

	for i := 0; i < 2; i++ {
		deleted, err = s.stories.Delete(s.ctx, story.ID)
		s.Require().NoError(err)
		s.False(deleted)
	}
}

func (s *RepositoryIntegrationSuite) TestSearchByKeyword() {
	fox := newStory("The Sharing Fox", "A")
	bear := newStory("Bear", "A")
	bear.Content = "A bear finds 100% honey."
	ru := newStory("Лиса", "A")
	ru.Language = "ru"
	ru.Content = "Лиса и FOX."
	s.Require().NoError(s.stories.CreateMany(s.ctx, []*models.Story{fox, bear, ru}))

	found, err := s.stories.Search(s.ctx, "fox", "", "")
	s.Require().NoError(err)
	s.ElementsMatch([]uuid.UUID{fox.ID, ru.ID}, storyIDs(found))

	found, err = s.stories.Search(s.ctx, "fox", "en", "")
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{fox.ID}, storyIDs(found))

	found, err = s.stories.Search(s.ctx, "100%", "", "")
	s.Require().NoError(err)
	s.Equal([]uuid.UUID{bear.ID}, storyIDs(found))

	found, err = s.stories.Search(s.ctx, "fox", "", "B")
	s.Require().NoError(err)
	s.Empty(found)
}

func (s *RepositoryIntegrationSuite) TestMusicURLByJobIDClearsJob() {
	story := newStory("Song", "A")
	s.Require().NoError(s.stories.Create(s.ctx, story))
	s.Require().NoError(s.stories.SetMusicJob(s.ctx, story.ID, "job-42", "Song\n\nOnce upon a time."))

	id, err := s.stories.SetMusicURLByJobID(s.ctx, "job-42", "https://cdn.example.com/a.mp3")
	s.Require().NoError(err)
	s.Equal(story.ID, id)

	got, err := s.stories.GetByID(s.ctx, story.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.MusicURL)
	s.Equal("https://cdn.example.com/a.mp3", *got.MusicURL)
	s.Nil(got.MusicJobID)

	_, err = s.stories.SetMusicURLByJobID(s.ctx, "job-42", "https://cdn.example.com/b.mp3")
	s.ErrorIs(err, models.ErrNotFound)
}

func (s *RepositoryIntegrationSuite) TestSoundEffectsRoundTrip() {
	story := newStory("Forest", "A")
	s.Require().NoError(s.stories.Create(s.ctx, story))

	effects := models.SoundEffects{{ParagraphIndex: 1, EffectName: "door", EffectURL: "https://cdn/door.mp3", Volume: 0.6, MatchedKeywords: []string{"door", "open"}}}
	updated, err := s.stories.SetSoundEffects(s.ctx, story.ID, effects)
	s.Require().NoError(err)
	s.Equal(effects, updated.SoundEffects)

	cleared, err := s.stories.SetSoundEffects(s.ctx, story.ID, nil)
	s.Require().NoError(err)
	s.Nil(cleared.SoundEffects)
}

func (s *RepositoryIntegrationSuite) TestRateLimitCounters() {
	for name, repo := range map[string]interfaces.RateLimitRepository{"postgres": s.pgLimits, "redis": s.rdbLimits} {
		s.Run(name, func() {
			count, err := repo.GetCount(s.ctx, "1.2.3.4", "2026-05-01")
			s.Require().NoError(err)
			s.Equal(0, count)

			for want := 1; want <= 3; want++ {
				got, err := repo.Increment(s.ctx, "1.2.3.4", "2026-05-01")
				s.Require().NoError(err)
				s.Equal(want, got)
			}

			count, err = repo.GetCount(s.ctx, "1.2.3.4", "2026-05-02")
			s.Require().NoError(err)
			s.Equal(0, count, "a new day starts from zero")
		})
	}

	pruned, err := s.pgLimits.PruneBefore(s.ctx, "2026-05-02")
	s.Require().NoError(err)
	s.Equal(int64(1), pruned)
}

func storyIDs(stories []*models.Story) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(stories))
	for _, st := range stories {
		ids = append(ids, st.ID)
	}
	return ids
}
