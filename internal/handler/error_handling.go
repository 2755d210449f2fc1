package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storybook-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// musicErrorCodes коды ошибок отправки задачи на генерацию музыки.
var musicErrorCodes = []struct {
	err  error
	code string
}{
	{models.ErrMusicAuth, models.ErrCodeMusicAuth},
	{models.ErrMusicForbidden, models.ErrCodeMusicForbidden},
	{models.ErrMusicRateLimited, models.ErrCodeMusicRateLimited},
	{models.ErrMusicUnavailable, models.ErrCodeMusicUnavailable},
	{models.ErrMusicBadRequest, models.ErrCodeMusicBadRequest},
	{models.ErrMusicUpstream, models.ErrCodeMusicUpstream},
}

func handleServiceError(c *gin.Context, logger *zap.Logger, err error) {
	var statusCode int
	var errResp models.ErrorResponse
	var quota *models.QuotaExceededError

	switch {
	case errors.Is(err, models.ErrValidation):
		statusCode = http.StatusBadRequest
		errResp = models.ErrorResponse{Code: models.ErrCodeValidation, Message: err.Error()}
	case errors.Is(err, models.ErrNotFound):
		statusCode = http.StatusNotFound
		errResp = models.ErrorResponse{Code: models.ErrCodeNotFound, Message: "Story not found"}
	case errors.As(err, &quota):
		statusCode = http.StatusTooManyRequests
		errResp = models.ErrorResponse{Code: models.ErrCodeQuotaExceeded, Message: err.Error()}
		c.Header("X-RateLimit-Limit", strconv.Itoa(quota.Limit))
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("X-RateLimit-Reset", quota.ResetAt.UTC().Format(time.RFC3339))
		c.Header("Retry-After", strconv.Itoa(max(int(time.Until(quota.ResetAt).Seconds()), 0)))
	case errors.Is(err, models.ErrUnsupportedMedia):
		statusCode = http.StatusUnsupportedMediaType
		errResp = models.ErrorResponse{Code: models.ErrCodeUnsupportedMedia, Message: "Only image and audio resources can be proxied"}
	case errors.Is(err, models.ErrUpstreamFetch):
		statusCode = http.StatusBadGateway
		errResp = models.ErrorResponse{Code: models.ErrCodeBadGateway, Message: "Failed to fetch remote resource"}
	case errors.Is(err, models.ErrGenerationFailed):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeGenerationFailed, Message: err.Error()}
	case errors.Is(err, models.ErrInvalidProviderResponse):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInvalidProviderResp, Message: err.Error()}
	case errors.Is(err, models.ErrProviderNotConfigured):
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeProviderConfig, Message: err.Error()}
	default:
		statusCode = http.StatusInternalServerError
		errResp = models.ErrorResponse{Code: models.ErrCodeInternal, Message: "An unexpected internal error occurred"}
		for _, m := range musicErrorCodes {
			if errors.Is(err, m.err) {
				errResp = models.ErrorResponse{Code: m.code, Message: err.Error()}
				break
			}
		}
		if errResp.Code == models.ErrCodeInternal {
			logger.Error("Unhandled internal error", zap.String("path", c.FullPath()), zap.Error(err))
		}
	}

	c.AbortWithStatusJSON(statusCode, errResp)
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.ErrorResponse{Code: models.ErrCodeValidation, Message: message})
}

// setRateLimitHeaders выставляет заголовки X-RateLimit-*.
func setRateLimitHeaders(c *gin.Context, status models.RateLimitStatus) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(status.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(status.Remaining))
	c.Header("X-RateLimit-Reset", status.ResetAt.UTC().Format(time.RFC3339))
}
