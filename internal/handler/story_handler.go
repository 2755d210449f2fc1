package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"storybook-server/internal/clients"
	"storybook-server/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger проверка доступности базы для /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services набор сервисов, которые обслуживает HTTP-слой.
type Services struct {
	Stories      service.StoryService
	Generation   service.GenerationService
	Music        service.MusicService
	SoundEffects service.SoundEffectsService
	Translate    service.TranslateService
	Media        clients.MediaFetcher
}

type StoryHandler struct {
	stories    service.StoryService
	generation service.GenerationService
	music      service.MusicService
	sounds     service.SoundEffectsService
	translate  service.TranslateService
	media      clients.MediaFetcher
	db         Pinger
	logger     *zap.Logger
}

func NewStoryHandler(svc Services, db Pinger, logger *zap.Logger) *StoryHandler {
	return &StoryHandler{
		stories:    svc.Stories,
		generation: svc.Generation,
		music:      svc.Music,
		sounds:     svc.SoundEffects,
		translate:  svc.Translate,
		media:      svc.Media,
		db:         db,
		logger:     logger.Named("StoryHandler"),
	}
}

// NewEngine создает gin.Engine, который берет X-Forwarded-For/X-Real-IP только
// от перечисленных прокси. Пустой список означает RemoteAddr для всех запросов:
// IP клиента определяет и владельца историй, и дневную квоту.
func NewEngine(trustedProxies []string, middlewares ...gin.HandlerFunc) (*gin.Engine, error) {
	router := gin.New()
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies %v: %w", trustedProxies, err)
	}
	router.Use(middlewares...)
	return router, nil
}

// RegisterRoutes регистрирует маршруты. generationLimit применяется только к дорогим
// эндпоинтам генерации; nil допустим.
func (h *StoryHandler) RegisterRoutes(router *gin.Engine, generationLimit gin.HandlerFunc) {
	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		if generationLimit == nil {
			return []gin.HandlerFunc{handler}
		}
		return []gin.HandlerFunc{generationLimit, handler}
	}

	router.GET("/health", h.health)
	router.HEAD("/health", h.health)

	storiesGroup := router.Group("/stories")
	{
		storiesGroup.GET("", h.listStories)
		storiesGroup.POST("", h.createStories)
		storiesGroup.GET("/search", h.searchStories)
		storiesGroup.POST("/search", limited(h.generateStories)...)
		storiesGroup.GET("/rate-limit", h.rateLimitStatus)
		storiesGroup.POST("/music", limited(h.startMusic)...)
		storiesGroup.POST("/music-callback", h.musicCallback)
		storiesGroup.POST("/sound-effects", h.mapSoundEffects)
		storiesGroup.GET("/:id", h.getStory)
		storiesGroup.PATCH("/:id", h.updateStory)
		storiesGroup.PATCH("/:id/share", h.toggleShare)
		storiesGroup.DELETE("/:id", h.deleteStory)
	}

	router.POST("/generate", limited(h.generateStories)...)
	router.POST("/translate", limited(h.translateText)...)
	router.GET("/media/proxy", h.proxyMedia)
}

func (h *StoryHandler) health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Health check: database ping failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
