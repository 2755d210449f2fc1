package handler

import (
	"time"

	"storybook-server/internal/models"
	"storybook-server/internal/service"
)

// storyResponse проекция истории для клиента.
type storyResponse struct {
	ID           string               `json:"id"`
	Title        string               `json:"title"`
	Content      string               `json:"content"`
	Language     string               `json:"language"`
	Source       models.StorySource   `json:"source"`
	Tag          *string              `json:"tag"`
	ImageURL     *string              `json:"imageUrl"`
	MusicURL     *string              `json:"musicUrl,omitempty"`
	MusicPrompt  *string              `json:"musicPrompt,omitempty"`
	SoundEffects []models.SoundEffect `json:"soundEffects,omitempty"`
	IsShared     bool                 `json:"isShared"`
	CreatedAt    time.Time            `json:"createdAt"`
}

func toStoryResponse(s *models.Story) storyResponse {
	return storyResponse{
		ID:           s.ID.String(),
		Title:        s.Title,
		Content:      s.Content,
		Language:     s.Language,
		Source:       s.Source,
		Tag:          s.Tag,
		ImageURL:     s.ImageURL,
		MusicURL:     s.MusicURL,
		MusicPrompt:  s.MusicPrompt,
		SoundEffects: s.SoundEffects,
		IsShared:     s.IsShared,
		CreatedAt:    s.CreatedAt,
	}
}

func toStoryResponses(stories []*models.Story) []storyResponse {
	out := make([]storyResponse, 0, len(stories))
	for _, s := range stories {
		out = append(out, toStoryResponse(s))
	}
	return out
}

type createStoryRequest struct {
	Title    string             `json:"title"`
	Content  string             `json:"content"`
	Language string             `json:"language"`
	Tag      string             `json:"tag"`
	ImageURL string             `json:"imageUrl"`
	Source   models.StorySource `json:"source"`
}

func (r createStoryRequest) toInput() service.StoryInput {
	return service.StoryInput{
		Title:    r.Title,
		Content:  r.Content,
		Language: r.Language,
		Tag:      r.Tag,
		ImageURL: r.ImageURL,
		Source:   r.Source,
	}
}

type updateStoryRequest struct {
	Title    *string             `json:"title"`
	Content  *string             `json:"content"`
	Language *string             `json:"language"`
	Tag      *string             `json:"tag"`
	ImageURL *string             `json:"imageUrl"`
	Source   *models.StorySource `json:"source"`
}

func (r updateStoryRequest) toPatch() models.StoryPatch {
	return models.StoryPatch{
		Title:    r.Title,
		Content:  r.Content,
		Language: r.Language,
		Tag:      r.Tag,
		ImageURL: r.ImageURL,
		Source:   r.Source,
	}
}

type generateRequest struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Multiple bool   `json:"multiple"`
	Count    int    `json:"count"`
}

type generateResponse struct {
	Query   string          `json:"query"`
	Results []storyResponse `json:"results"`
}

type rateLimitResponse struct {
	Remaining int       `json:"remaining"`
	Limit     int       `json:"limit"`
	ResetDate time.Time `json:"resetDate"`
}

type musicRequest struct {
	StoryID string `json:"storyId"`
}

type musicResponse struct {
	Story   storyResponse `json:"story"`
	JobID   string        `json:"jobId"`
	Message string        `json:"message"`
}

type soundEffectsRequest struct {
	StoryID  string `json:"storyId"`
	Analysis *struct {
		Paragraphs []struct {
			Index    int      `json:"index"`
			Keywords []string `json:"keywords"`
		} `json:"paragraphs"`
	} `json:"analysis"`
}

func (r soundEffectsRequest) toAnalysis() *service.SoundAnalysis {
	if r.Analysis == nil {
		return nil
	}
	analysis := &service.SoundAnalysis{}
	for _, p := range r.Analysis.Paragraphs {
		analysis.Paragraphs = append(analysis.Paragraphs, service.ParagraphKeywords{Index: p.Index, Keywords: p.Keywords})
	}
	return analysis
}

type translateRequest struct {
	Text           string `json:"text"`
	TargetLanguage string `json:"targetLanguage"`
}
