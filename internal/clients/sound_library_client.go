package clients

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storybook-server/internal/config"
	"storybook-server/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// SoundResult первый найденный звук.
type SoundResult struct {
	Name       string
	PreviewURL string
}

// SoundLibrary ищет звуковые эффекты в внешней библиотеке.
//
//go:generate mockery --name SoundLibrary --output ../mocks --outpkg mocks --case=underscore
type SoundLibrary interface {
	// Authenticate получает токен доступа один раз на запрос.
	Authenticate(ctx context.Context) (string, error)
	// SearchFirst возвращает nil без ошибки, если ничего не найдено.
	SearchFirst(ctx context.Context, token, query string) (*SoundResult, error)
}

type soundLibraryClient struct {
	credentials *clientcredentials.Config
	tokenHTTP   *http.Client
	http        *resty.Client
	logger      *zap.Logger
}

// NewSoundLibraryClient создает клиент библиотеки звуков с OAuth2 client credentials.
func NewSoundLibraryClient(cfg *config.Config, logger *zap.Logger) SoundLibrary {
	return &soundLibraryClient{
		credentials: &clientcredentials.Config{
			ClientID:     cfg.SoundClientID,
			ClientSecret: cfg.SoundClientSecret,
			TokenURL:     cfg.SoundTokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		},
		tokenHTTP: &http.Client{Timeout: cfg.SoundTimeout},
		http: resty.New().
			SetBaseURL(strings.TrimSuffix(cfg.SoundBaseURL, "/")).
			SetTimeout(cfg.SoundTimeout),
		logger: logger.Named("SoundLibrary"),
	}
}

func (c *soundLibraryClient) Authenticate(ctx context.Context) (token string, err error) {
	if c.credentials.ClientID == "" || c.credentials.ClientSecret == "" {
		return "", fmt.Errorf("%w: sound library", models.ErrProviderNotConfigured)
	}
	start := time.Now()
	defer func() { observe("sound", "token", start, err) }()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.tokenHTTP)
	tok, err := c.credentials.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("sound library token: %w", err)
	}
	return tok.AccessToken, nil
}

func (c *soundLibraryClient) SearchFirst(ctx context.Context, token, query string) (result *SoundResult, err error) {
	start := time.Now()
	defer func() { observe("sound", "search", start, err) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetQueryParams(map[string]string{
			"query":     query,
			"fields":    "id,name,previews",
			"page_size": "1",
		}).
		Get("/search/text/")
	if err != nil {
		return nil, fmt.Errorf("sound search %q: %w", query, err)
	}
	if resp.IsError() {
		return nil, &models.ProviderError{Kind: models.ErrGenerationFailed, Provider: "sound", StatusCode: resp.StatusCode(), Message: resp.String()}
	}

	first := gjson.GetBytes(resp.Body(), "results.0")
	if !first.Exists() {
		return nil, nil
	}
	preview := firstString(first, []string{"previews.preview-hq-mp3", "previews.preview-lq-mp3"})
	if preview == "" {
		return nil, nil
	}
	return &SoundResult{Name: first.Get("name").String(), PreviewURL: preview}, nil
}
