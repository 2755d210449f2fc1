package service

import (
	"context"
	"strings"

	"storybook-server/internal/clients"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ParagraphKeywords ключевые слова абзаца из внешнего анализа текста.
type ParagraphKeywords struct {
	Index    int
	Keywords []string
}

// SoundAnalysis необязательный результат анализа текста.
type SoundAnalysis struct {
	Paragraphs []ParagraphKeywords
}

// SoundEffectsService подбирает звуковые эффекты к абзацам истории.
type SoundEffectsService interface {
	MapSoundEffects(ctx context.Context, storyID uuid.UUID, analysis *SoundAnalysis) (*models.Story, error)
}

type soundEffectsServiceImpl struct {
	library clients.SoundLibrary
	stories interfaces.StoryRepository
	logger  *zap.Logger
}

func NewSoundEffectsService(library clients.SoundLibrary, stories interfaces.StoryRepository, logger *zap.Logger) SoundEffectsService {
	return &soundEffectsServiceImpl{
		library: library,
		stories: stories,
		logger:  logger.Named("SoundEffectsService"),
	}
}

type effectCandidate struct {
	paragraph int
	keyword   soundKeyword
	matched   []string
}

func (s *soundEffectsServiceImpl) MapSoundEffects(ctx context.Context, storyID uuid.UUID, analysis *SoundAnalysis) (*models.Story, error) {
	log := s.logger.With(zap.Stringer("storyID", storyID))

	story, err := s.stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}

	token, err := s.library.Authenticate(ctx)
	if err != nil {
		log.Warn("Sound library authentication failed, returning story without effects", zap.Error(err))
		story.SoundEffects = models.SoundEffects{}
		return story, nil
	}

	var candidates []effectCandidate
	if analysis != nil && len(analysis.Paragraphs) > 0 {
		candidates = candidatesFromAnalysis(analysis)
	} else {
		candidates = candidatesFromContent(story.Content)
	}

	effects := make(models.SoundEffects, 0, len(candidates))
	for _, c := range candidates {
		found, err := s.library.SearchFirst(ctx, token, c.keyword.Query)
		if err != nil {
			log.Debug("Sound search failed, skipping paragraph", zap.Int("paragraph", c.paragraph), zap.Error(err))
			continue
		}
		if found == nil {
			continue
		}
		effects = append(effects, models.SoundEffect{
			ParagraphIndex:  c.paragraph,
			EffectName:      c.keyword.Effect,
			EffectURL:       found.PreviewURL,
			Volume:          c.keyword.Volume,
			MatchedKeywords: c.matched,
		})
	}
	soundEffectsMatched.Observe(float64(len(effects)))

	updated, err := s.stories.SetSoundEffects(ctx, storyID, effects)
	if err != nil {
		log.Error("Failed to store sound effects", zap.Error(err))
		return nil, err
	}
	log.Info("Sound effects mapped", zap.Int("paragraphs", len(candidates)), zap.Int("effects", len(effects)))
	return updated, nil
}

// candidatesFromAnalysis: в каждом абзаце побеждает первое слово из таблицы.
func candidatesFromAnalysis(analysis *SoundAnalysis) []effectCandidate {
	var out []effectCandidate
	for _, p := range analysis.Paragraphs {
		var (
			winner  soundKeyword
			found   bool
			matched []string
		)
		for _, kw := range p.Keywords {
			k, ok := lookupSoundKeyword(kw)
			if !ok {
				continue
			}
			matched = append(matched, k.Keyword)
			if !found {
				winner, found = k, true
			}
		}
		if found {
			out = append(out, effectCandidate{paragraph: p.Index, keyword: winner, matched: matched})
		}
	}
	return out
}

// candidatesFromContent делит текст на непустые строки-абзацы с индексами от 0.
func candidatesFromContent(content string) []effectCandidate {
	var out []effectCandidate
	index := 0
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if best, matched, ok := matchParagraph(line); ok {
			out = append(out, effectCandidate{paragraph: index, keyword: best, matched: matched})
		}
		index++
	}
	return out
}
