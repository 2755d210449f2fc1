package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"storybook-server/internal/config"
	"storybook-server/internal/models"

	"github.com/ollama/ollama/api"
	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// GenerationParams необязательные параметры генерации.
// Указатели отличают "не задано" от нуля.
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
}

// TextGenerator генерирует текст по системному промпту и вводу пользователя.
//
//go:generate mockery --name TextGenerator --output ../mocks --outpkg mocks --case=underscore
type TextGenerator interface {
	GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (string, error)
}

// --- OpenAI ---

type openAIClient struct {
	client *openaigo.Client
	model  string
	logger *zap.Logger
}

func (c *openAIClient) GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (text string, err error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return "", fmt.Errorf("%w: системный промпт пуст", models.ErrGenerationFailed)
	}
	start := time.Now()
	defer func() { observe("openai", "chat", start, err) }()

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: openaigo.ChatMessageRoleUser, Content: userInput})
	}

	c.logger.Debug("Sending chat completion request",
		zap.String("model", c.model), zap.Int("systemPromptBytes", len(systemPrompt)), zap.Int("userInputBytes", len(userInput)))

	resp, err := c.client.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: float32Val(params.Temperature),
		MaxTokens:   intVal(params.MaxTokens),
	})
	if err != nil {
		c.logger.Warn("Chat completion failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return "", openAIProviderError("openai", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: "openai", Message: "empty response"}
	}

	promptTokens := resp.Usage.PromptTokens
	if promptTokens == 0 {
		// Некоторые совместимые API не возвращают usage
		promptTokens = estimateTokens(c.model, systemPrompt+userInput)
	}
	if promptTokens > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(promptTokens))
	}
	if resp.Usage.CompletionTokens > 0 {
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.Usage.CompletionTokens))
	}

	text = resp.Choices[0].Message.Content
	c.logger.Debug("Chat completion received",
		zap.Duration("duration", time.Since(start)), zap.Int("length", len(text)), zap.Int("promptTokens", promptTokens))
	return text, nil
}

// openAIProviderError переносит HTTP-статус и сообщение OpenAI в ProviderError.
func openAIProviderError(provider string, err error) error {
	pe := &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: provider, Message: err.Error()}
	var apiErr *openaigo.APIError
	var reqErr *openaigo.RequestError
	switch {
	case errors.As(err, &apiErr):
		pe.StatusCode = apiErr.HTTPStatusCode
		pe.Message = apiErr.Message
	case errors.As(err, &reqErr):
		pe.StatusCode = reqErr.HTTPStatusCode
	}
	return pe
}

// estimateTokens оценивает количество токенов; 0 если токенизатор недоступен.
func estimateTokens(model, text string) int {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0
		}
	}
	return len(enc.Encode(text, nil, nil))
}

func float32Val(f64 *float64) float32 {
	if f64 == nil {
		return 0
	}
	return float32(*f64)
}

func intVal(i *int) int {
	if i == nil {
		return 0
	}
	return *i
}

// --- Ollama ---

type ollamaClient struct {
	client  *api.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

func newOllamaClient(cfg *config.Config, logger *zap.Logger) (*ollamaClient, error) {
	// api.NewClient ожидает URL без суффикса /v1
	baseURL := strings.TrimSuffix(strings.TrimSuffix(cfg.AIBaseURL, "/"), "/v1")
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга Ollama Base URL '%s': %w", baseURL, err)
	}
	return &ollamaClient{
		client:  api.NewClient(parsedURL, &http.Client{Timeout: cfg.AITimeout}),
		model:   cfg.AIModel,
		timeout: cfg.AITimeout,
		logger:  logger,
	}, nil
}

func (c *ollamaClient) GenerateText(ctx context.Context, systemPrompt, userInput string, params GenerationParams) (text string, err error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return "", fmt.Errorf("%w: системный промпт пуст", models.ErrGenerationFailed)
	}
	start := time.Now()
	defer func() { observe("ollama", "chat", start, err) }()

	messages := []api.Message{{Role: "system", Content: systemPrompt}}
	if userInput != "" {
		messages = append(messages, api.Message{Role: "user", Content: userInput})
	}
	options := map[string]any{}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if params.MaxTokens != nil {
		options["num_predict"] = *params.MaxTokens
	}
	stream := false
	req := &api.ChatRequest{Model: c.model, Messages: messages, Stream: &stream, Options: options}

	requestCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var resp api.ChatResponse
	err = c.client.Chat(requestCtx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		c.logger.Warn("Ollama chat failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		pe := &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: "ollama", Message: err.Error()}
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			pe.StatusCode = statusErr.StatusCode
			pe.Message = statusErr.ErrorMessage
		}
		return "", pe
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: "ollama", Message: "empty response"}
	}
	if resp.PromptEvalCount > 0 {
		aiPromptTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.PromptEvalCount))
	}
	if resp.EvalCount > 0 {
		aiCompletionTokens.With(prometheus.Labels{"model": c.model}).Observe(float64(resp.EvalCount))
	}
	return resp.Message.Content, nil
}

// --- Не настроенный провайдер ---

type unconfiguredGenerator struct {
	provider string
}

func (u unconfiguredGenerator) GenerateText(context.Context, string, string, GenerationParams) (string, error) {
	return "", fmt.Errorf("%w: %s", models.ErrProviderNotConfigured, u.provider)
}

// NewTextGenerator выбирает реализацию по AI_CLIENT_TYPE.
// Для openai без ключа возвращается генератор, который всегда отвечает ErrProviderNotConfigured.
func NewTextGenerator(cfg *config.Config, logger *zap.Logger) (TextGenerator, error) {
	log := logger.Named("TextGenerator")
	switch strings.ToLower(cfg.AIClientType) {
	case "openai":
		if cfg.AIAPIKey == "" {
			log.Warn("AI API key is not set, text generation is disabled")
			return unconfiguredGenerator{provider: "openai"}, nil
		}
		openaiConfig := openaigo.DefaultConfig(cfg.AIAPIKey)
		openaiConfig.BaseURL = cfg.AIBaseURL
		openaiConfig.HTTPClient = &http.Client{Timeout: cfg.AITimeout}
		log.Info("OpenAI client created",
			zap.String("baseURL", cfg.AIBaseURL), zap.String("model", cfg.AIModel), zap.Duration("timeout", cfg.AITimeout))
		return &openAIClient{
			client: openaigo.NewClientWithConfig(openaiConfig),
			model:  cfg.AIModel,
			logger: log,
		}, nil
	case "ollama":
		client, err := newOllamaClient(cfg, log)
		if err != nil {
			return nil, err
		}
		log.Info("Ollama client created", zap.String("baseURL", cfg.AIBaseURL), zap.String("model", cfg.AIModel))
		return client, nil
	default:
		return nil, fmt.Errorf("неизвестный тип AI клиента: '%s'", cfg.AIClientType)
	}
}
