package service

import (
	"context"
	"strings"

	"storybook-server/internal/clients"
	"storybook-server/internal/models"

	"go.uber.org/zap"
)

var translationTemperature = 0.2

// TranslateService переводит текст истории через текстового провайдера.
type TranslateService interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type translateServiceImpl struct {
	text   clients.TextGenerator
	logger *zap.Logger
}

func NewTranslateService(text clients.TextGenerator, logger *zap.Logger) TranslateService {
	return &translateServiceImpl{text: text, logger: logger.Named("TranslateService")}
}

func (s *translateServiceImpl) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	var missing []string
	if strings.TrimSpace(text) == "" {
		missing = append(missing, "text")
	}
	if strings.TrimSpace(targetLanguage) == "" {
		missing = append(missing, "targetLanguage")
	}
	if len(missing) > 0 {
		return "", models.NewValidationError("missing required fields: %s", strings.Join(missing, ", "))
	}

	translated, err := s.text.GenerateText(ctx, translationSystemPrompt(targetLanguage), text,
		clients.GenerationParams{Temperature: &translationTemperature})
	if err != nil {
		s.logger.Warn("Translation failed", zap.String("targetLanguage", targetLanguage), zap.Error(err))
		return "", err
	}
	return strings.TrimSpace(translated), nil
}
