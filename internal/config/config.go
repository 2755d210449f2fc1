package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"storybook-server/internal/utils"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvDevelopment снимает дневной лимит генераций, если он не задан явно.
	EnvDevelopment = "development"

	defaultProductionDailyLimit  = 3
	defaultDevelopmentDailyLimit = 1_000_000
)

// Config holds the application configuration.
type Config struct {
	Env        string `envconfig:"ENV" default:"production"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	SecretsDir string `envconfig:"SECRETS_DIR" default:"/run/secrets"`

	// PostgreSQL
	DBHost         string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort         string        `envconfig:"DB_PORT" default:"5432"`
	DBUser         string        `envconfig:"DB_USER" default:"postgres"`
	DBName         string        `envconfig:"DB_NAME" default:"storybook"`
	DBSSLMode      string        `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConns     int           `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	DBIdleTimeout  time.Duration `envconfig:"DB_MAX_IDLE_MINUTES" default:"5m"`
	DBAutoMigrate  bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
	DBConnAttempts int           `envconfig:"DB_CONNECT_ATTEMPTS" default:"5"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	// Text generation
	AIClientType string        `envconfig:"AI_CLIENT_TYPE" default:"openai"`
	AIBaseURL    string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel      string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AITimeout    time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`
	AIAPIKey     string

	// Image generation
	ImageEnabled bool          `envconfig:"IMAGE_ENABLED" default:"true"`
	ImageBaseURL string        `envconfig:"IMAGE_BASE_URL" default:"https://api.openai.com/v1"`
	ImageModel   string        `envconfig:"IMAGE_MODEL" default:"dall-e-3"`
	ImageSize    string        `envconfig:"IMAGE_SIZE" default:"1024x1024"`
	ImageTimeout time.Duration `envconfig:"IMAGE_TIMEOUT" default:"60s"`

	// Music generation
	MusicBaseURL         string        `envconfig:"MUSIC_BASE_URL" default:"https://api.sunoapi.org"`
	MusicModel           string        `envconfig:"MUSIC_MODEL" default:"V4"`
	MusicSubmitTimeout   time.Duration `envconfig:"MUSIC_SUBMIT_TIMEOUT" default:"30s"`
	MusicPollInterval    time.Duration `envconfig:"MUSIC_POLL_INTERVAL" default:"10s"`
	MusicPollMaxAttempts int           `envconfig:"MUSIC_POLL_MAX_ATTEMPTS" default:"30"`
	MusicPollTimeout     time.Duration `envconfig:"MUSIC_POLL_TIMEOUT" default:"15s"`
	MusicAPIKey          string

	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`

	// Sound library (OAuth2 client credentials)
	SoundBaseURL  string        `envconfig:"SOUND_BASE_URL" default:"https://freesound.org/apiv2"`
	SoundTokenURL string        `envconfig:"SOUND_TOKEN_URL" default:"https://freesound.org/apiv2/oauth2/access_token/"`
	SoundClientID string        `envconfig:"SOUND_CLIENT_ID"`
	SoundTimeout  time.Duration `envconfig:"SOUND_TIMEOUT" default:"15s"`

	SoundClientSecret string

	MediaProxyTimeout      time.Duration `envconfig:"MEDIA_PROXY_TIMEOUT" default:"30s"`
	// Разрешить прокси ходить на loopback/частные адреса (только для локальной разработки).
	MediaProxyAllowPrivate bool          `envconfig:"MEDIA_PROXY_ALLOW_PRIVATE" default:"false"`

	// MinIO для сгенерированных иллюстраций (необязательно)
	MinioEndpoint  string `envconfig:"MINIO_ENDPOINT"`
	MinioAccessKey string `envconfig:"MINIO_ACCESS_KEY"`
	MinioBucket    string `envconfig:"MINIO_BUCKET" default:"story-images"`
	MinioUseSSL    bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioPublicURL string `envconfig:"MINIO_PUBLIC_URL"`
	MinioSecretKey string

	// RabbitMQ для событий историй (необязательно)
	RabbitMQURL          string `envconfig:"RABBITMQ_URL"`
	StoryEventsExchange  string `envconfig:"STORY_EVENTS_EXCHANGE" default:"story_events"`
	RabbitMQConnAttempts int    `envconfig:"RABBITMQ_CONNECT_ATTEMPTS" default:"5"`

	// Rate limiting
	DailyGenerationLimit int     `envconfig:"DAILY_GENERATION_LIMIT" default:"0"`
	RateLimitBackend     string  `envconfig:"RATE_LIMIT_BACKEND" default:"postgres"`
	BurstRPS             float64 `envconfig:"BURST_RPS" default:"5"`
	BurstSize            int     `envconfig:"BURST_SIZE" default:"30"`

	// Redis (используется при RATE_LIMIT_BACKEND=redis)
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`

	RedisPassword string

	// Task manager
	MaxBackgroundTasks int           `envconfig:"MAX_BACKGROUND_TASKS" default:"100"`
	TaskRetention      time.Duration `envconfig:"TASK_RETENTION" default:"1h"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
	// IP/CIDR обратных прокси, которым разрешено передавать X-Forwarded-For.
	// Пусто: IP клиента всегда берется из RemoteAddr.
	TrustedProxies     string `envconfig:"TRUSTED_PROXIES"`
}

// GetDSN возвращает строку подключения (DSN) для PostgreSQL
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

// GetAllowedOrigins splits the CORSAllowedOrigins string into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// GetTrustedProxies разбирает TRUSTED_PROXIES; nil означает "не доверять никому".
func (c *Config) GetTrustedProxies() []string {
	var proxies []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, EnvDevelopment)
}

// EffectiveDailyLimit возвращает дневной лимит генераций на IP.
// Если DAILY_GENERATION_LIMIT не задан, в development лимит фактически снят.
func (c *Config) EffectiveDailyLimit() int {
	if c.DailyGenerationLimit > 0 {
		return c.DailyGenerationLimit
	}
	if c.IsDevelopment() {
		return defaultDevelopmentDailyLimit
	}
	return defaultProductionDailyLimit
}

// MusicCallbackURL строит адрес, на который провайдер музыки присылает результат.
func (c *Config) MusicCallbackURL() string {
	return strings.TrimSuffix(c.PublicBaseURL, "/") + "/stories/music-callback"
}

// LoadConfig loads configuration from environment variables and secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		if _, err := os.Stat(envFilePath); err == nil {
			if err := godotenv.Load(envFilePath); err != nil {
				log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
			}
		} else if !os.IsNotExist(err) {
			log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	// Загружаем ОБЯЗАТЕЛЬНЫЕ секреты из файлов
	var loadErr error
	cfg.DBPassword, loadErr = utils.ReadSecret(cfg.SecretsDir, "db_password")
	if loadErr != nil {
		return nil, loadErr
	}

	// НЕОБЯЗАТЕЛЬНЫЕ секреты: без них соответствующий провайдер считается не настроенным
	cfg.AIAPIKey = utils.ReadOptionalSecret(cfg.SecretsDir, "ai_api_key")
	cfg.MusicAPIKey = utils.ReadOptionalSecret(cfg.SecretsDir, "music_api_key")
	cfg.SoundClientSecret = utils.ReadOptionalSecret(cfg.SecretsDir, "sound_client_secret")
	cfg.MinioSecretKey = utils.ReadOptionalSecret(cfg.SecretsDir, "minio_secret_key")
	cfg.RedisPassword = utils.ReadOptionalSecret(cfg.SecretsDir, "redis_password")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log.Printf("Configuration loaded (env=%s, rate limit backend=%s, daily limit=%d)",
		cfg.Env, cfg.RateLimitBackend, cfg.EffectiveDailyLimit())
	return &cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.RateLimitBackend) {
	case "postgres", "redis":
	default:
		return fmt.Errorf("unknown RATE_LIMIT_BACKEND '%s' (expected postgres or redis)", c.RateLimitBackend)
	}
	if c.MusicPollMaxAttempts <= 0 {
		return fmt.Errorf("MUSIC_POLL_MAX_ATTEMPTS must be positive, got %d", c.MusicPollMaxAttempts)
	}
	if c.MusicPollInterval <= 0 {
		return fmt.Errorf("MUSIC_POLL_INTERVAL must be positive, got %v", c.MusicPollInterval)
	}
	return nil
}
