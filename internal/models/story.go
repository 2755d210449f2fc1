package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// StorySource происхождение истории.
type StorySource string

const (
	SourceAI   StorySource = "openai"
	SourcePDF  StorySource = "pdf"
	SourceUser StorySource = "user"
)

// MigratedOwnerIP помечает записи без владельца (видны всем).
const MigratedOwnerIP = "migrated"

// MaxTitleLength ограничение длины заголовка в символах.
const MaxTitleLength = 200

// Story is a persisted story row.
type Story struct {
	ID           uuid.UUID    `db:"id"`
	Title        string       `db:"title"`
	Content      string       `db:"content"`
	Language     string       `db:"language"`
	Source       StorySource  `db:"source"`
	ImageURL     *string      `db:"image_url"`
	MusicURL     *string      `db:"music_url"`
	MusicPrompt  *string      `db:"music_prompt"`
	SoundEffects SoundEffects `db:"sound_effects"`
	MusicJobID   *string      `db:"music_job_id"`
	Tag          *string      `db:"tag"`
	IsShared     bool         `db:"is_shared"`
	IPAddress    string       `db:"ip_address"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// StoryPatch описывает частичное обновление: nil означает "не трогать".
type StoryPatch struct {
	Title    *string
	Content  *string
	Language *string
	Tag      *string
	ImageURL *string
	Source   *StorySource
}

// IsEmpty reports whether the patch carries no fields.
func (p StoryPatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Language == nil &&
		p.Tag == nil && p.ImageURL == nil && p.Source == nil
}

// SoundEffect привязывает звуковой эффект к абзацу истории.
type SoundEffect struct {
	ParagraphIndex  int      `json:"paragraphIndex"`
	EffectName      string   `json:"effectName"`
	EffectURL       string   `json:"effectUrl"`
	Volume          float64  `json:"volume"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// SoundEffects хранится в jsonb; пустой список пишется как NULL.
type SoundEffects []SoundEffect

// MarshalForDB готовит значение для колонки jsonb.
func (s SoundEffects) MarshalForDB() ([]byte, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return json.Marshal(s)
}

// StoryEvent публикуется в брокер при значимых изменениях истории.
type StoryEvent struct {
	Type      string    `json:"type"`
	StoryID   uuid.UUID `json:"storyId"`
	Title     string    `json:"title,omitempty"`
	Language  string    `json:"language,omitempty"`
	MusicURL  string    `json:"musicUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventStoryGenerated  = "story.generated"
	EventStoryMusicReady = "story.music_ready"
)
