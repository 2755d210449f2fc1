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
)

// Пути, по которым провайдер в разных версиях API отдает идентификатор задачи.
var jobIDPaths = []string{"data.taskId", "data.task_id", "taskId", "task_id", "data.id", "id", "jobId"}

// Пути к статусу и трекам в ответе эндпоинта статуса.
var (
	jobStatusPaths = []string{"data.status", "status", "data.callbackType"}
	trackListPaths = []string{"data.response.sunoData", "data.response.data", "data.data", "data.tracks"}
	audioURLPaths  = []string{"audioUrl", "audio_url", "sourceAudioUrl", "source_audio_url", "streamAudioUrl", "stream_audio_url"}
	errorMsgPaths  = []string{"data.errorMessage", "data.error_message", "msg"}
)

// MusicProvider запускает генерацию фоновой музыки и сообщает статус задачи.
//
//go:generate mockery --name MusicProvider --output ../mocks --outpkg mocks --case=underscore
type MusicProvider interface {
	Submit(ctx context.Context, req models.MusicSubmission) (string, error)
	JobStatus(ctx context.Context, jobID string) (*models.MusicJobState, error)
}

type musicClient struct {
	http   *resty.Client
	apiKey string
	model  string
	logger *zap.Logger
}

// NewMusicClient создает клиент HTTP API генерации музыки.
func NewMusicClient(cfg *config.Config, logger *zap.Logger) MusicProvider {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.MusicBaseURL, "/")).
		SetTimeout(cfg.MusicSubmitTimeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &musicClient{
		http:   client,
		apiKey: cfg.MusicAPIKey,
		model:  cfg.MusicModel,
		logger: logger.Named("MusicClient"),
	}
}

type musicGenerateRequest struct {
	Prompt       string `json:"prompt"`
	Title        string `json:"title,omitempty"`
	CustomMode   bool   `json:"customMode"`
	Instrumental bool   `json:"instrumental"`
	Model        string `json:"model"`
	CallBackURL  string `json:"callBackUrl"`
}

func (c *musicClient) Submit(ctx context.Context, req models.MusicSubmission) (jobID string, err error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%w: music", models.ErrProviderNotConfigured)
	}
	start := time.Now()
	defer func() { observe("music", "submit", start, err) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(musicGenerateRequest{
			Prompt:       req.Prompt,
			Title:        req.Title,
			Instrumental: req.Instrumental,
			Model:        c.model,
			CallBackURL:  req.CallbackURL,
		}).
		Post("/api/v1/generate")
	if err != nil {
		c.logger.Warn("Music submit transport error", zap.Error(err))
		return "", &models.ProviderError{Kind: models.ErrMusicUpstream, Provider: "music", Message: err.Error()}
	}

	body := resp.Body()
	status := resp.StatusCode()
	// Провайдер может ответить 200 с кодом ошибки внутри тела
	if status >= 200 && status < 300 {
		if code := gjson.GetBytes(body, "code"); code.Exists() && code.Type == gjson.Number && code.Int() != http.StatusOK {
			status = int(code.Int())
		}
	}
	if status < 200 || status >= 300 {
		message := gjson.GetBytes(body, "msg").String()
		if message == "" {
			message = strings.TrimSpace(string(body))
		}
		c.logger.Warn("Music submit rejected", zap.Int("status", status), zap.String("message", message))
		return "", &models.ProviderError{Kind: MusicSubmitCategory(status), Provider: "music", StatusCode: status, Message: message}
	}

	jobID = ExtractJobID(body)
	if jobID == "" {
		return "", &models.ProviderError{Kind: models.ErrInvalidProviderResponse, Provider: "music", StatusCode: status, Message: "job id not found in response"}
	}
	c.logger.Info("Music generation submitted", zap.String("jobID", jobID))
	return jobID, nil
}

// MusicSubmitCategory сопоставляет HTTP-статус отказа с категорией ошибки.
func MusicSubmitCategory(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return models.ErrMusicAuth
	case http.StatusForbidden:
		return models.ErrMusicForbidden
	case http.StatusTooManyRequests:
		return models.ErrMusicRateLimited
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return models.ErrMusicUnavailable
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return models.ErrMusicBadRequest
	default:
		return models.ErrMusicUpstream
	}
}

// ExtractJobID ищет идентификатор задачи по известным путям; пустая строка, если не найден.
func ExtractJobID(body []byte) string {
	for _, path := range jobIDPaths {
		if v := gjson.GetBytes(body, path); v.Exists() && v.Type != gjson.JSON {
			if id := strings.TrimSpace(v.String()); id != "" {
				return id
			}
		}
	}
	return ""
}

func (c *musicClient) JobStatus(ctx context.Context, jobID string) (state *models.MusicJobState, err error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: music", models.ErrProviderNotConfigured)
	}
	start := time.Now()
	defer func() { observe("music", "status", start, err) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetQueryParam("taskId", jobID).
		Get("/api/v1/generate/record-info")
	if err != nil {
		return nil, fmt.Errorf("%w: status request: %v", models.ErrMusicUpstream, err)
	}
	if resp.IsError() {
		return nil, &models.ProviderError{Kind: MusicSubmitCategory(resp.StatusCode()), Provider: "music", StatusCode: resp.StatusCode(), Message: resp.String()}
	}
	return ParseJobState(resp.Body()), nil
}

// ParseJobState разбирает ответ эндпоинта статуса задачи.
func ParseJobState(body []byte) *models.MusicJobState {
	state := &models.MusicJobState{Status: models.MusicStatusUnknown}
	for _, path := range jobStatusPaths {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			state.RawStatus = v.String()
			state.Status = models.ClassifyMusicStatus(state.RawStatus)
			break
		}
	}
	for _, path := range trackListPaths {
		tracks := gjson.GetBytes(body, path)
		if !tracks.IsArray() {
			continue
		}
		tracks.ForEach(func(_, track gjson.Result) bool {
			if u := firstString(track, audioURLPaths); u != "" {
				state.AudioURLs = append(state.AudioURLs, u)
			}
			return true
		})
		break
	}
	if state.Status == models.MusicStatusFailed {
		state.ErrorMessage = firstString(gjson.ParseBytes(body), errorMsgPaths)
	}
	return state
}

func firstString(v gjson.Result, paths []string) string {
	for _, path := range paths {
		if s := strings.TrimSpace(v.Get(path).String()); s != "" {
			return s
		}
	}
	return ""
}
