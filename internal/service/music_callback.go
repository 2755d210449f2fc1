package service

import (
	"context"
	"errors"
	"strings"

	"storybook-server/internal/models"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// callbackShape форма тела колбэка провайдера музыки.
type callbackShape int

const (
	shapeUnknown callbackShape = iota
	// [ {...}, {...} ]
	shapeArray
	// {code, msg, data: {task_id, callbackType, data: [...]}} или {data: [...]}
	shapeWrapped
	// { ...один результат... }
	shapeSingle
)

var (
	callbackJobIDPaths    = []string{"task_id", "taskId", "jobId", "job_id"}
	callbackStatusPaths   = []string{"status", "state", "callbackType", "callback_type"}
	callbackAudioURLPaths = []string{"audio_url", "audioUrl", "source_audio_url", "sourceAudioUrl", "stream_audio_url", "streamAudioUrl"}
	callbackErrorPaths    = []string{"error", "error_message", "errorMessage"}
)

// callbackWrapper поля обертки, общие для всех элементов.
type callbackWrapper struct {
	jobID   string
	status  string
	code    int64
	hasCode bool
	message string
}

func detectCallbackShape(root gjson.Result) callbackShape {
	switch {
	case root.IsArray():
		return shapeArray
	case !root.IsObject():
		return shapeUnknown
	case root.Get("data.data").IsArray(), root.Get("data").IsArray():
		return shapeWrapped
	default:
		return shapeSingle
	}
}

// NormalizeCallback приводит любую из известных форм колбэка к списку результатов.
func NormalizeCallback(body []byte) ([]models.CallbackResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, models.NewValidationError("callback body is not valid JSON")
	}
	root := gjson.ParseBytes(body)

	switch detectCallbackShape(root) {
	case shapeArray:
		var results []models.CallbackResult
		root.ForEach(func(_, item gjson.Result) bool {
			results = append(results, normalizeItem(item, callbackWrapper{}, true))
			return true
		})
		return results, nil

	case shapeWrapped:
		items := root.Get("data.data")
		inner := root.Get("data")
		if !items.IsArray() {
			items = inner
			inner = root
		}
		wrapper := callbackWrapper{
			jobID:   firstNonEmpty(inner, callbackJobIDPaths),
			status:  firstNonEmpty(inner, []string{"callbackType", "callback_type", "status"}),
			message: root.Get("msg").String(),
		}
		if wrapper.jobID == "" {
			wrapper.jobID = firstNonEmpty(root, callbackJobIDPaths)
		}
		if code := root.Get("code"); code.Exists() {
			wrapper.code, wrapper.hasCode = code.Int(), true
		}
		var results []models.CallbackResult
		items.ForEach(func(_, item gjson.Result) bool {
			results = append(results, normalizeItem(item, wrapper, false))
			return true
		})
		// Обертка об ошибке может прийти без элементов
		if len(results) == 0 {
			results = append(results, normalizeItem(gjson.Result{}, wrapper, false))
		}
		return results, nil

	case shapeSingle:
		item := root
		if data := root.Get("data"); data.IsObject() {
			item = data
		}
		wrapper := callbackWrapper{
			jobID:   firstNonEmpty(root, callbackJobIDPaths),
			message: root.Get("msg").String(),
		}
		if code := root.Get("code"); code.Exists() {
			wrapper.code, wrapper.hasCode = code.Int(), true
		}
		return []models.CallbackResult{normalizeItem(item, wrapper, true)}, nil

	default:
		return nil, models.NewValidationError("unsupported callback payload")
	}
}

func normalizeItem(item gjson.Result, wrapper callbackWrapper, idIsJob bool) models.CallbackResult {
	jobPaths := callbackJobIDPaths
	if idIsJob {
		jobPaths = append(append([]string{}, callbackJobIDPaths...), "id")
	}
	result := models.CallbackResult{
		JobID:     firstNonEmpty(item, jobPaths),
		RawStatus: firstNonEmpty(item, callbackStatusPaths),
		AudioURL:  firstNonEmpty(item, callbackAudioURLPaths),
	}
	if result.JobID == "" {
		result.JobID = wrapper.jobID
	}
	if result.RawStatus == "" {
		result.RawStatus = wrapper.status
	}
	result.ErrorMessage = firstNonEmpty(item, callbackErrorPaths)

	wrapperFailed := wrapper.hasCode && wrapper.code != 200
	if wrapperFailed && result.ErrorMessage == "" {
		result.ErrorMessage = wrapper.message
	}

	switch {
	case wrapperFailed, result.ErrorMessage != "":
		result.Status = models.MusicStatusFailed
	default:
		result.Status = models.ClassifyMusicStatus(result.RawStatus)
	}
	return result
}

func firstNonEmpty(v gjson.Result, paths []string) string {
	for _, path := range paths {
		r := v.Get(path)
		// false/null означают "нет значения", а не строку "false"
		if !r.Exists() || r.IsObject() || r.IsArray() || r.Type == gjson.False || r.Type == gjson.Null {
			continue
		}
		if s := strings.TrimSpace(r.String()); s != "" {
			return s
		}
	}
	return ""
}

// CallbackSummary итог обработки колбэка.
type CallbackSummary struct {
	Received int
	Applied  int
}

// HandleCallback обрабатывает колбэк провайдера. storyIDParam берется из query-строки
// callback URL и имеет приоритет над поиском по job id.
func (s *musicServiceImpl) HandleCallback(ctx context.Context, storyIDParam string, body []byte) (CallbackSummary, error) {
	results, err := NormalizeCallback(body)
	if err != nil {
		s.logger.Warn("Malformed music callback", zap.Error(err), zap.Int("bytes", len(body)))
		return CallbackSummary{}, err
	}

	var storyID uuid.UUID
	if storyIDParam != "" {
		if storyID, err = uuid.Parse(storyIDParam); err != nil {
			s.logger.Warn("Music callback has invalid storyId, falling back to job id", zap.String("storyId", storyIDParam))
			storyID = uuid.Nil
		}
	}

	summary := CallbackSummary{Received: len(results)}
	applied := make(map[string]bool)
	for _, r := range results {
		musicCallbackResults.WithLabelValues(string(r.Status)).Inc()
		log := s.logger.With(zap.String("jobID", r.JobID), zap.String("status", r.RawStatus))

		switch r.Status {
		case models.MusicStatusFailed:
			log.Warn("Music generation failed (callback)", zap.String("error", r.ErrorMessage))
			continue
		case models.MusicStatusCompleted:
		default:
			log.Debug("Intermediate music callback")
			continue
		}
		if r.AudioURL == "" {
			log.Debug("Completed callback without audio URL")
			continue
		}

		// Один трек на историю: провайдер присылает несколько вариантов
		target := storyID.String()
		if storyID == uuid.Nil {
			target = "job:" + r.JobID
		}
		if applied[target] {
			continue
		}

		resolvedID, err := s.applyCallbackResult(ctx, storyID, r)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				log.Warn("No story matches music callback", zap.Stringer("storyID", storyID))
			} else {
				log.Error("Failed to store music URL from callback", zap.Error(err))
			}
			continue
		}
		applied[target] = true
		summary.Applied++
		log.Info("Music ready (callback)", zap.Stringer("storyID", resolvedID), zap.String("musicURL", r.AudioURL))
		publishMusicReady(ctx, s.publisher, log, resolvedID, r.AudioURL)
	}
	return summary, nil
}

func (s *musicServiceImpl) applyCallbackResult(ctx context.Context, storyID uuid.UUID, r models.CallbackResult) (uuid.UUID, error) {
	if storyID != uuid.Nil {
		return storyID, s.stories.SetMusicURL(ctx, storyID, r.AudioURL)
	}
	if r.JobID == "" {
		return uuid.Nil, models.ErrNotFound
	}
	return s.stories.SetMusicURLByJobID(ctx, r.JobID, r.AudioURL)
}
