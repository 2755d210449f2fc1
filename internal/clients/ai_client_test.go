package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storybook-server/internal/config"
	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func aiConfig(clientType, baseURL, key string) *config.Config {
	return &config.Config{
		AIClientType: clientType,
		AIBaseURL:    baseURL,
		AIModel:      "gpt-4o-mini",
		AITimeout:    5 * time.Second,
		AIAPIKey:     key,
	}
}

func TestOpenAIClient_GenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"gpt-4o-mini",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Once upon a time"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":12,"completion_tokens":5,"total_tokens":17}}`))
	}))
	defer srv.Close()

	gen, err := NewTextGenerator(aiConfig("openai", srv.URL, "test-key"), zap.NewNop())
	require.NoError(t, err)

	text, err := gen.GenerateText(context.Background(), "You write stories", "dragons", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "Once upon a time", text)
}

func TestOpenAIClient_ProviderErrorCarriesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota exceeded","type":"insufficient_quota"}}`))
	}))
	defer srv.Close()

	gen, err := NewTextGenerator(aiConfig("openai", srv.URL, "test-key"), zap.NewNop())
	require.NoError(t, err)

	_, err = gen.GenerateText(context.Background(), "system", "user", GenerationParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)

	var pe *models.ProviderError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, http.StatusTooManyRequests, pe.StatusCode)
	assert.Equal(t, "quota exceeded", pe.Message)
}

func TestOpenAIClient_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[],"usage":{"prompt_tokens":1,"completion_tokens":0,"total_tokens":1}}`))
	}))
	defer srv.Close()

	gen, err := NewTextGenerator(aiConfig("openai", srv.URL, "test-key"), zap.NewNop())
	require.NoError(t, err)
	_, err = gen.GenerateText(context.Background(), "system", "", GenerationParams{})
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
}

func TestNewTextGenerator_WithoutKey(t *testing.T) {
	gen, err := NewTextGenerator(aiConfig("openai", "http://127.0.0.1:1", ""), zap.NewNop())
	require.NoError(t, err)
	_, err = gen.GenerateText(context.Background(), "system", "user", GenerationParams{})
	assert.ErrorIs(t, err, models.ErrProviderNotConfigured)
}

func TestNewTextGenerator_UnknownType(t *testing.T) {
	_, err := NewTextGenerator(aiConfig("gemini", "", "k"), zap.NewNop())
	assert.Error(t, err)
}

func TestOllamaClient_GenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","message":{"role":"assistant","content":"A tiny fox"},"done":true,"prompt_eval_count":9,"eval_count":4}`))
	}))
	defer srv.Close()

	gen, err := NewTextGenerator(aiConfig("ollama", srv.URL+"/v1", ""), zap.NewNop())
	require.NoError(t, err)

	text, err := gen.GenerateText(context.Background(), "system", "fox", GenerationParams{})
	require.NoError(t, err)
	assert.Equal(t, "A tiny fox", text)
}

func TestOllamaClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'llama3' not found"}`))
	}))
	defer srv.Close()

	gen, err := NewTextGenerator(aiConfig("ollama", srv.URL, ""), zap.NewNop())
	require.NoError(t, err)

	_, err = gen.GenerateText(context.Background(), "system", "fox", GenerationParams{})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "not found")
}
