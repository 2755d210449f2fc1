package models

import "strings"

// MusicJobStatus нормализованный статус задачи генерации музыки.
type MusicJobStatus string

const (
	MusicStatusCompleted    MusicJobStatus = "completed"
	MusicStatusIntermediate MusicJobStatus = "intermediate"
	MusicStatusFailed       MusicJobStatus = "failed"
	MusicStatusUnknown      MusicJobStatus = "unknown"
)

// CallbackResult одна запись результата от провайдера музыки.
type CallbackResult struct {
	JobID        string
	Status       MusicJobStatus
	RawStatus    string
	AudioURL     string
	ErrorMessage string
}

// MusicJobState ответ эндпоинта статуса задачи.
type MusicJobState struct {
	Status       MusicJobStatus
	RawStatus    string
	AudioURLs    []string
	ErrorMessage string
}

// MusicSubmission параметры запуска генерации.
type MusicSubmission struct {
	Prompt       string
	Title        string
	Instrumental bool
	CallbackURL  string
}

// ClassifyMusicStatus сводит строковые статусы провайдера к нормализованным.
func ClassifyMusicStatus(raw string) MusicJobStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "complete", "completed", "success", "succeeded":
		return MusicStatusCompleted
	case "text", "first", "pending", "processing", "queued", "running",
		"text_success", "first_success", "create_task":
		return MusicStatusIntermediate
	case "error", "failed", "failure", "create_task_failed", "generate_audio_failed",
		"callback_exception", "sensitive_word_error":
		return MusicStatusFailed
	default:
		return MusicStatusUnknown
	}
}
