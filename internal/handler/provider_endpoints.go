package handler

import (
	"errors"
	"io"
	"net/http"

	"storybook-server/internal/clients"
	"storybook-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxCallbackBody ограничение размера тела колбэка (1 MiB).
const maxCallbackBody = 1 << 20

func (h *StoryHandler) startMusic(c *gin.Context) {
	var req musicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}
	storyID, err := uuid.Parse(req.StoryID)
	if err != nil {
		badRequest(c, "storyId must be a valid UUID")
		return
	}

	result, err := h.music.StartMusic(c.Request.Context(), storyID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusAccepted, musicResponse{
		Story:   toStoryResponse(result.Story),
		JobID:   result.JobID,
		Message: result.Message,
	})
}

// musicCallback всегда отвечает 200: провайдер не должен повторять доставку.
func (h *StoryHandler) musicCallback(c *gin.Context) {
	musicCallbacksReceived.Inc()
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		h.logger.Warn("Failed to read music callback body", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"status": "received"})
		return
	}

	summary, err := h.music.HandleCallback(c.Request.Context(), c.Query("storyId"), body)
	if err != nil {
		h.logger.Warn("Music callback not processed", zap.Error(err))
	} else {
		h.logger.Debug("Music callback processed", zap.Int("received", summary.Received), zap.Int("applied", summary.Applied))
	}
	c.JSON(http.StatusOK, gin.H{"status": "received"})
}

func (h *StoryHandler) mapSoundEffects(c *gin.Context) {
	var req soundEffectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}
	storyID, err := uuid.Parse(req.StoryID)
	if err != nil {
		badRequest(c, "storyId must be a valid UUID")
		return
	}

	story, err := h.sounds.MapSoundEffects(c.Request.Context(), storyID, req.toAnalysis())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toStoryResponse(story))
}

func (h *StoryHandler) translateText(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data: "+err.Error())
		return
	}
	translated, err := h.translate.Translate(c.Request.Context(), req.Text, req.TargetLanguage)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"translatedText": translated})
}

func (h *StoryHandler) proxyMedia(c *gin.Context) {
	rawURL := c.Query("url")
	if err := clients.ValidateMediaURL(rawURL); err != nil {
		mediaProxyRequests.WithLabelValues("invalid").Inc()
		handleServiceError(c, h.logger, err)
		return
	}

	stream, err := h.media.Fetch(c.Request.Context(), rawURL)
	if err != nil {
		result := "upstream_error"
		if errors.Is(err, models.ErrUnsupportedMedia) {
			result = "unsupported"
		}
		mediaProxyRequests.WithLabelValues(result).Inc()
		handleServiceError(c, h.logger, err)
		return
	}
	defer stream.Body.Close()

	mediaProxyRequests.WithLabelValues("ok").Inc()
	c.DataFromReader(http.StatusOK, stream.ContentLength, stream.ContentType, stream.Body, map[string]string{
		"Cache-Control": "public, max-age=3600",
	})
}
