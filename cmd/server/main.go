package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storybook-server/internal/clients"
	"storybook-server/internal/config"
	"storybook-server/internal/database"
	"storybook-server/internal/handler"
	"storybook-server/internal/interfaces"
	"storybook-server/internal/logger"
	"storybook-server/internal/messaging"
	"storybook-server/internal/middleware"
	"storybook-server/internal/service"
	"storybook-server/internal/storage"
	"storybook-server/internal/taskmanager"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const (
	rateLimitKeepDays     = 30
	rateLimitPruneEvery   = 6 * time.Hour
	taskCleanupEvery      = 10 * time.Minute
	visitorCleanupEvery   = time.Minute
	visitorIdleTimeout    = 3 * time.Minute
	shutdownGracePeriod   = 15 * time.Second
	taskShutdownGraceTime = 10 * time.Second
)

func main() {
	cfg, err := config.LoadConfig(".env")
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogFormat,
		Service:     "storybook-server",
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)
	log.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel), zap.String("env", cfg.Env))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- PostgreSQL ---
	pool, err := database.NewPgPool(ctx, database.PoolConfig{
		DSN:         cfg.GetDSN(),
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
		Attempts:    cfg.DBConnAttempts,
	}, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer pool.Close()

	if err := database.NewMigrator(pool, log).EnsureSchema(ctx, cfg.DBAutoMigrate); err != nil {
		log.Fatal("Database schema check failed", zap.Error(err))
	}

	storyRepo := database.NewPgStoryRepository(pool, log)

	// --- Rate limit counters ---
	var counters interfaces.RateLimitRepository
	switch strings.ToLower(cfg.RateLimitBackend) {
	case "redis":
		redisClient, err := setupRedis(ctx, cfg, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		counters = database.NewRedisRateLimitRepository(redisClient, log)
	default:
		counters = database.NewPgRateLimitRepository(pool, log)
	}
	limiter := service.NewRateLimiter(counters, cfg.EffectiveDailyLimit(), log)
	go limiter.RunPruning(ctx, rateLimitPruneEvery, rateLimitKeepDays)

	// --- Providers ---
	textGen, err := clients.NewTextGenerator(cfg, log)
	if err != nil {
		log.Fatal("Failed to create text generator", zap.Error(err))
	}
	imageGen := clients.NewImageGenerator(cfg, log)
	musicProvider := clients.NewMusicClient(cfg, log)
	soundLibrary := clients.NewSoundLibraryClient(cfg, log)
	mediaProxy := clients.NewMediaProxy(clients.MediaProxyConfig{
		Timeout:           cfg.MediaProxyTimeout,
		AllowPrivateHosts: cfg.MediaProxyAllowPrivate,
	}, log)

	var imageStore interfaces.ImageStore
	if cfg.MinioEndpoint != "" {
		store, err := storage.NewMinioImageStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		}, log)
		if err != nil {
			log.Warn("MinIO unavailable, illustrations will be stored as data URLs", zap.Error(err))
		} else {
			imageStore = store
		}
	}

	// --- Story events ---
	var publisher interfaces.StoryEventPublisher = messaging.NoopStoryEventPublisher{}
	if cfg.RabbitMQURL != "" {
		conn, err := connectRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQConnAttempts, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, story events disabled", zap.Error(err))
		} else {
			defer conn.Close()
			rmq, err := messaging.NewRabbitMQStoryEventPublisher(conn, cfg.StoryEventsExchange, log)
			if err != nil {
				log.Warn("Failed to set up story event publisher", zap.Error(err))
			} else {
				defer rmq.Close()
				publisher = rmq
			}
		}
	}

	// --- Background tasks ---
	tasks := taskmanager.New(taskmanager.Config{MaxTasks: cfg.MaxBackgroundTasks}, log)
	go tasks.RunCleanup(ctx, taskCleanupEvery, cfg.TaskRetention)

	poller := service.NewMusicPoller(musicProvider, storyRepo, publisher, service.PollConfig{
		Interval:       cfg.MusicPollInterval,
		MaxAttempts:    cfg.MusicPollMaxAttempts,
		AttemptTimeout: cfg.MusicPollTimeout,
	}, log)

	storyHandler := handler.NewStoryHandler(handler.Services{
		Stories:      service.NewStoryService(storyRepo, log),
		Generation:   service.NewGenerationService(textGen, imageGen, imageStore, storyRepo, limiter, publisher, log),
		Music:        service.NewMusicService(musicProvider, storyRepo, tasks, poller, publisher, cfg.MusicCallbackURL(), log),
		SoundEffects: service.NewSoundEffectsService(soundLibrary, storyRepo, log),
		Translate:    service.NewTranslateService(textGen, log),
		Media:        mediaProxy,
	}, pool, log)

	burst := middleware.NewBurstLimiter(cfg.BurstRPS, cfg.BurstSize, log)
	go burst.RunCleanup(ctx, visitorCleanupEvery, visitorIdleTimeout)

	// --- HTTP ---
	gin.SetMode(gin.ReleaseMode)
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	}
	router, err := handler.NewEngine(cfg.GetTrustedProxies(), middleware.GinZapLogger(log), gin.Recovery())
	if err != nil {
		log.Fatal("Failed to configure router", zap.Error(err))
	}
	log.Info("Client IP resolution", zap.Strings("trustedProxies", cfg.GetTrustedProxies()))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.GetAllowedOrigins()
	corsConfig.AllowMethods = []string{"GET", "HEAD", "POST", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"X-RateLimit-Remaining", "X-RateLimit-Reset", "X-RateLimit-Limit", middleware.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	p := ginprometheus.NewPrometheus("gin")
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		if route := c.FullPath(); route != "" {
			return route
		}
		return "unmatched"
	}

	storyHandler.RegisterRoutes(router, burst.Middleware())
	p.Use(router)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AITimeout + cfg.ImageTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	taskCtx, taskCancel := context.WithTimeout(context.Background(), taskShutdownGraceTime)
	defer taskCancel()
	if err := tasks.Shutdown(taskCtx); err != nil {
		log.Warn("Background tasks did not finish in time", zap.Error(err))
	}
	stop()

	log.Info("Server exiting")
}

// setupRedis подключается к Redis и проверяет соединение.
func setupRedis(ctx context.Context, cfg *config.Config, log *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to ping redis at %s: %w", cfg.RedisAddr, err)
	}
	log.Info("Connected to Redis", zap.String("address", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
	return client, nil
}

// connectRabbitMQ подключается к RabbitMQ с несколькими попытками.
func connectRabbitMQ(rawURL string, attempts int, log *zap.Logger) (*amqp.Connection, error) {
	if attempts <= 0 {
		attempts = 1
	}
	retryDelay := 3 * time.Second
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		var conn *amqp.Connection
		conn, err = amqp.Dial(rawURL)
		if err == nil {
			log.Info("Connected to RabbitMQ", zap.String("url", maskURL(rawURL)), zap.Int("attempt", attempt))
			go func() {
				if closeErr := <-conn.NotifyClose(make(chan *amqp.Error, 1)); closeErr != nil {
					log.Error("RabbitMQ connection closed unexpectedly", zap.Error(closeErr))
				}
			}()
			return conn, nil
		}
		log.Warn("RabbitMQ connection failed, retrying...",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
		if attempt < attempts {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", attempts, err)
}

// maskURL скрывает пароль в URL для логов.
func maskURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "invalid-url"
	}
	return u.Redacted()
}
