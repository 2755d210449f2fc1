package models

import (
	"errors"
	"fmt"
	"time"
)

// Application-wide standard errors
var (
	ErrNotFound   = errors.New("resource not found")
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")

	// Provider errors
	ErrGenerationFailed        = errors.New("generation failed")
	ErrInvalidProviderResponse = errors.New("invalid provider response")
	ErrProviderNotConfigured   = errors.New("provider is not configured")
	ErrUnsupportedMedia        = errors.New("unsupported media type")
	ErrUpstreamFetch           = errors.New("failed to fetch upstream resource")

	// Music submission categories
	ErrMusicAuth        = errors.New("music provider rejected credentials")
	ErrMusicForbidden   = errors.New("music provider denied permission")
	ErrMusicRateLimited = errors.New("music provider rate limit reached")
	ErrMusicUnavailable = errors.New("music provider is temporarily unavailable")
	ErrMusicBadRequest  = errors.New("music provider rejected the request")
	ErrMusicUpstream    = errors.New("music provider error")
)

// Error codes returned to clients.
const (
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeQuotaExceeded       = "QUOTA_EXCEEDED"
	ErrCodeGenerationFailed    = "GENERATION_FAILED"
	ErrCodeInvalidProviderResp = "INVALID_PROVIDER_RESPONSE"
	ErrCodeProviderConfig      = "PROVIDER_NOT_CONFIGURED"
	ErrCodeMusicAuth           = "MUSIC_AUTH_FAILED"
	ErrCodeMusicForbidden      = "MUSIC_PERMISSION_DENIED"
	ErrCodeMusicRateLimited    = "MUSIC_RATE_LIMITED"
	ErrCodeMusicUnavailable    = "MUSIC_UPSTREAM_UNAVAILABLE"
	ErrCodeMusicBadRequest     = "MUSIC_BAD_REQUEST"
	ErrCodeMusicUpstream       = "MUSIC_UPSTREAM_ERROR"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"
	ErrCodeBadGateway          = "BAD_GATEWAY"
	ErrCodeUnsupportedMedia    = "UNSUPPORTED_MEDIA_TYPE"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// QuotaExceededError возвращается, когда дневной лимит генераций исчерпан.
type QuotaExceededError struct {
	Limit   int
	ResetAt time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("daily generation limit of %d reached, resets at %s", e.Limit, e.ResetAt.Format(time.RFC3339))
}

// ProviderError сохраняет статус и сообщение внешнего провайдера.
// Unwrap отдает категорию (ErrGenerationFailed, ErrMusicAuth и т.п.).
type ProviderError struct {
	Kind       error
	Provider   string
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s returned status %d: %s", e.Kind, e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Kind
}

// NewValidationError оборачивает ErrValidation с перечислением полей.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
