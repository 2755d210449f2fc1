package clients

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storybook-server/internal/config"
	"storybook-server/internal/models"

	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GeneratedImage результат генерации иллюстрации: либо готовый URL, либо PNG.
type GeneratedImage struct {
	URL string
	PNG []byte
}

// ImageGenerator генерирует иллюстрацию по текстовому описанию.
//
//go:generate mockery --name ImageGenerator --output ../mocks --outpkg mocks --case=underscore
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

type openAIImageClient struct {
	client *openaigo.Client
	model  string
	size   string
	logger *zap.Logger
}

// NewImageGenerator возвращает nil, если генерация иллюстраций выключена или нет ключа.
func NewImageGenerator(cfg *config.Config, logger *zap.Logger) ImageGenerator {
	log := logger.Named("ImageGenerator")
	if !cfg.ImageEnabled || cfg.AIAPIKey == "" {
		log.Info("Image generation is disabled")
		return nil
	}
	openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
	openaiConfig.BaseURL = cfg.ImageBaseURL
	openaiConfig.HTTPClient = &http.Client{Timeout: cfg.ImageTimeout}
	return &openAIImageClient{
		client: openaigo.NewClientWithConfig(openaiConfig),
		model:  cfg.ImageModel,
		size:   cfg.ImageSize,
		logger: log,
	}
}

func (c *openAIImageClient) GenerateImage(ctx context.Context, prompt string) (img *GeneratedImage, err error) {
	start := time.Now()
	defer func() { observe("openai", "image", start, err) }()

	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Prompt:         prompt,
		Model:          c.model,
		Size:           c.size,
		N:              1,
		ResponseFormat: openaigo.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, openAIProviderError("openai-images", err)
	}
	if len(resp.Data) == 0 {
		return nil, &models.ProviderError{Kind: models.ErrInvalidProviderResponse, Provider: "openai-images", Message: "no images returned"}
	}

	data := resp.Data[0]
	if data.B64JSON != "" {
		png, decodeErr := base64.StdEncoding.DecodeString(data.B64JSON)
		if decodeErr != nil {
			return nil, fmt.Errorf("%w: invalid base64 image: %v", models.ErrInvalidProviderResponse, decodeErr)
		}
		c.logger.Debug("Image generated", zap.Int("bytes", len(png)), zap.Duration("duration", time.Since(start)))
		return &GeneratedImage{PNG: png}, nil
	}
	if strings.TrimSpace(data.URL) != "" {
		return &GeneratedImage{URL: data.URL}, nil
	}
	return nil, &models.ProviderError{Kind: models.ErrInvalidProviderResponse, Provider: "openai-images", Message: "image has neither url nor data"}
}

// DataURL кодирует PNG в data: URL для хранения без объектного хранилища.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
