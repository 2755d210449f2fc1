package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// Compile-time check
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

const storyColumns = `id, title, content, language, source, image_url, music_url, music_prompt,
	sound_effects, music_job_id, tag, is_shared, ip_address, created_at, updated_at`

const (
	insertStoryQuery = `
        INSERT INTO stories
            (id, title, content, language, source, image_url, tag, is_shared, ip_address, created_at, updated_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	getStoryByIDQuery = `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`

	listAllStoriesQuery = `SELECT ` + storyColumns + ` FROM stories ORDER BY created_at DESC, id`

	listVisibleStoriesQuery = `SELECT ` + storyColumns + ` FROM stories
        WHERE ip_address = $1 OR ip_address = $2 OR is_shared
        ORDER BY created_at DESC, id`

	toggleShareQuery = `UPDATE stories SET is_shared = NOT is_shared, updated_at = $2
        WHERE id = $1 RETURNING ` + storyColumns

	deleteStoryQuery = `DELETE FROM stories WHERE id = $1`

	setMusicJobQuery = `UPDATE stories SET music_job_id = $2, music_prompt = $3, updated_at = $4 WHERE id = $1`

	// music_url и music_job_id меняются одним оператором: задача считается завершенной.
	setMusicURLQuery = `UPDATE stories SET music_url = $2, music_job_id = NULL, updated_at = $3 WHERE id = $1`

	setMusicURLByJobQuery = `UPDATE stories SET music_url = $2, music_job_id = NULL, updated_at = $3
        WHERE id = (SELECT id FROM stories WHERE music_job_id = $1 ORDER BY created_at DESC LIMIT 1)
        RETURNING id`

	setSoundEffectsQuery = `UPDATE stories SET sound_effects = $2, updated_at = $3
        WHERE id = $1 RETURNING ` + storyColumns
)

// pgStoryRepository реализует StoryRepository для PostgreSQL.
type pgStoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// NewPgStoryRepository создает новый экземпляр репозитория историй.
func NewPgStoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

// isNoRows покрывает и pgx.ErrNoRows, и ошибку scany для пустого результата.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || pgxscan.NotFound(err)
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", models.ErrStorage, op, err)
}

// Create вставляет одну историю.
func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	if err := r.insert(ctx, r.db, story); err != nil {
		return err
	}
	r.logger.Info("Story created", zap.String("storyID", story.ID.String()), zap.String("source", string(story.Source)))
	return nil
}

// CreateMany вставляет все истории в одной транзакции.
func (r *pgStoryRepository) CreateMany(ctx context.Context, stories []*models.Story) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, story := range stories {
			if err := r.insert(ctx, tx, story); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Batch story insert rolled back", zap.Int("count", len(stories)), zap.Error(err))
		if errors.Is(err, models.ErrStorage) {
			return err
		}
		return storageErr("create stories batch", err)
	}
	r.logger.Info("Stories batch created", zap.Int("count", len(stories)))
	return nil
}

func (r *pgStoryRepository) insert(ctx context.Context, q interfaces.DBTX, story *models.Story) error {
	if story.ID == uuid.Nil {
		story.ID = uuid.New()
	}
	if story.Source == "" {
		story.Source = models.SourceUser
	}
	now := time.Now().UTC()
	story.CreatedAt = now
	story.UpdatedAt = now

	_, err := q.Exec(ctx, insertStoryQuery,
		story.ID, story.Title, story.Content, story.Language, story.Source,
		story.ImageURL, story.Tag, story.IsShared, story.IPAddress,
		story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert story", zap.String("storyID", story.ID.String()), zap.Error(err))
		return storageErr("insert story", err)
	}
	return nil
}

// GetByID возвращает историю по ID.
func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, getStoryByIDQuery, id); err != nil {
		if isNoRows(err) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to get story by ID", zap.String("storyID", id.String()), zap.Error(err))
		return nil, storageErr("get story", err)
	}
	return story, nil
}

// ListVisibleTo возвращает истории, видимые владельцу ownerIP.
func (r *pgStoryRepository) ListVisibleTo(ctx context.Context, ownerIP string) ([]*models.Story, error) {
	stories := make([]*models.Story, 0)
	var err error
	if ownerIP == "" {
		err = pgxscan.Select(ctx, r.db, &stories, listAllStoriesQuery)
	} else {
		err = pgxscan.Select(ctx, r.db, &stories, listVisibleStoriesQuery, ownerIP, models.MigratedOwnerIP)
	}
	if err != nil {
		r.logger.Error("Failed to list stories", zap.String("ownerIP", ownerIP), zap.Error(err))
		return nil, storageErr("list stories", err)
	}
	return stories, nil
}

// Search ищет подстроку в заголовке или тексте без учета регистра.
func (r *pgStoryRepository) Search(ctx context.Context, query, language, ownerIP string) ([]*models.Story, error) {
	sql := `SELECT ` + storyColumns + ` FROM stories WHERE (title ILIKE $1 OR content ILIKE $1)`
	args := []any{"%" + escapeLike(query) + "%"}
	paramIndex := 2

	if language != "" {
		sql += fmt.Sprintf(" AND language = $%d", paramIndex)
		args = append(args, language)
		paramIndex++
	}
	if ownerIP != "" {
		sql += fmt.Sprintf(" AND (ip_address = $%d OR ip_address = $%d OR is_shared)", paramIndex, paramIndex+1)
		args = append(args, ownerIP, models.MigratedOwnerIP)
	}
	sql += " ORDER BY created_at DESC, id"

	stories := make([]*models.Story, 0)
	if err := pgxscan.Select(ctx, r.db, &stories, sql, args...); err != nil {
		r.logger.Error("Failed to search stories", zap.String("query", query), zap.Error(err))
		return nil, storageErr("search stories", err)
	}
	return stories, nil
}

// escapeLike экранирует спецсимволы LIKE (обратный слэш: escape по умолчанию в PostgreSQL).
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update динамически строит SET только из переданных полей.
func (r *pgStoryRepository) Update(ctx context.Context, id uuid.UUID, patch models.StoryPatch) (*models.Story, error) {
	query := `UPDATE stories SET updated_at = $2`
	args := []any{id, time.Now().UTC()}
	paramIndex := 3

	set := func(column string, value any) {
		query += fmt.Sprintf(", %s = $%d", column, paramIndex)
		args = append(args, value)
		paramIndex++
	}
	if patch.Title != nil {
		set("title", *patch.Title)
	}
	if patch.Content != nil {
		set("content", *patch.Content)
	}
	if patch.Language != nil {
		set("language", *patch.Language)
	}
	// пустая строка в nullable-колонках означает очистку
	if patch.Tag != nil {
		set("tag", nullIfEmpty(*patch.Tag))
	}
	if patch.ImageURL != nil {
		set("image_url", nullIfEmpty(*patch.ImageURL))
	}
	if patch.Source != nil {
		set("source", *patch.Source)
	}
	query += ` WHERE id = $1 RETURNING ` + storyColumns

	logFields := []zap.Field{zap.String("storyID", id.String()), zap.Int("fields", len(args)-2)}
	r.logger.Debug("Updating story", append(logFields, zap.String("query", query))...)

	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, query, args...); err != nil {
		if isNoRows(err) {
			r.logger.Warn("No rows affected when updating story", logFields...)
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to update story", append(logFields, zap.Error(err))...)
		return nil, storageErr("update story", err)
	}
	r.logger.Info("Story updated", logFields...)
	return story, nil
}

// ToggleShare инвертирует is_shared одним оператором.
func (r *pgStoryRepository) ToggleShare(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, toggleShareQuery, id, time.Now().UTC()); err != nil {
		if isNoRows(err) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to toggle story share flag", zap.String("storyID", id.String()), zap.Error(err))
		return nil, storageErr("toggle share", err)
	}
	r.logger.Info("Story share flag toggled", zap.String("storyID", id.String()), zap.Bool("isShared", story.IsShared))
	return story, nil
}

// Delete удаляет историю навсегда.
func (r *pgStoryRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, deleteStoryQuery, id)
	if err != nil {
		r.logger.Error("Failed to delete story", zap.String("storyID", id.String()), zap.Error(err))
		return false, storageErr("delete story", err)
	}
	deleted := tag.RowsAffected() > 0
	if deleted {
		r.logger.Info("Story deleted", zap.String("storyID", id.String()))
	}
	return deleted, nil
}

func (r *pgStoryRepository) SetMusicJob(ctx context.Context, id uuid.UUID, jobID, prompt string) error {
	tag, err := r.db.Exec(ctx, setMusicJobQuery, id, jobID, prompt, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to store music job", zap.String("storyID", id.String()), zap.String("jobID", jobID), zap.Error(err))
		return storageErr("set music job", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *pgStoryRepository) SetMusicURL(ctx context.Context, id uuid.UUID, musicURL string) error {
	tag, err := r.db.Exec(ctx, setMusicURLQuery, id, musicURL, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to store music URL", zap.String("storyID", id.String()), zap.Error(err))
		return storageErr("set music url", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	r.logger.Info("Story music URL stored", zap.String("storyID", id.String()))
	return nil
}

func (r *pgStoryRepository) SetMusicURLByJobID(ctx context.Context, jobID, musicURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRow(ctx, setMusicURLByJobQuery, jobID, musicURL, time.Now().UTC()).Scan(&id)
	if err != nil {
		if isNoRows(err) {
			return uuid.Nil, models.ErrNotFound
		}
		r.logger.Error("Failed to store music URL by job ID", zap.String("jobID", jobID), zap.Error(err))
		return uuid.Nil, storageErr("set music url by job", err)
	}
	r.logger.Info("Story music URL stored by job ID", zap.String("storyID", id.String()), zap.String("jobID", jobID))
	return id, nil
}

func (r *pgStoryRepository) SetSoundEffects(ctx context.Context, id uuid.UUID, effects models.SoundEffects) (*models.Story, error) {
	raw, err := effects.MarshalForDB()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sound effects: %w", err)
	}

	story := &models.Story{}
	if err := pgxscan.Get(ctx, r.db, story, setSoundEffectsQuery, id, raw, time.Now().UTC()); err != nil {
		if isNoRows(err) {
			return nil, models.ErrNotFound
		}
		r.logger.Error("Failed to store sound effects", zap.String("storyID", id.String()), zap.Error(err))
		return nil, storageErr("set sound effects", err)
	}
	return story, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
