package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"storybook-server/internal/config"
	"storybook-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMusicClient(baseURL, apiKey string) MusicProvider {
	return NewMusicClient(&config.Config{
		MusicBaseURL:       baseURL,
		MusicAPIKey:        apiKey,
		MusicModel:         "V4",
		MusicSubmitTimeout: 2 * time.Second,
	}, zap.NewNop())
}

func TestExtractJobID(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"data.taskId", `{"code":200,"data":{"taskId":"t-1"}}`, "t-1"},
		{"data.task_id", `{"data":{"task_id":"t-2"}}`, "t-2"},
		{"top-level taskId", `{"taskId":"t-3"}`, "t-3"},
		{"top-level task_id", `{"task_id":"t-4"}`, "t-4"},
		{"data.id", `{"data":{"id":"t-5"}}`, "t-5"},
		{"id", `{"id":"t-6"}`, "t-6"},
		{"jobId", `{"jobId":"t-7"}`, "t-7"},
		{"numeric id", `{"id":42}`, "42"},
		{"priority order", `{"id":"late","data":{"taskId":"early"}}`, "early"},
		{"blank value skipped", `{"data":{"taskId":"  "},"jobId":"t-8"}`, "t-8"},
		{"missing", `{"data":{"status":"ok"}}`, ""},
		{"not json", `oops`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractJobID([]byte(tt.body)))
		})
	}
}

func TestMusicSubmitCategory(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, models.ErrMusicAuth},
		{http.StatusForbidden, models.ErrMusicForbidden},
		{http.StatusTooManyRequests, models.ErrMusicRateLimited},
		{http.StatusBadGateway, models.ErrMusicUnavailable},
		{http.StatusServiceUnavailable, models.ErrMusicUnavailable},
		{http.StatusGatewayTimeout, models.ErrMusicUnavailable},
		{http.StatusBadRequest, models.ErrMusicBadRequest},
		{http.StatusUnprocessableEntity, models.ErrMusicBadRequest},
		{http.StatusInternalServerError, models.ErrMusicUpstream},
		{http.StatusTeapot, models.ErrMusicUpstream},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MusicSubmitCategory(tt.status), "status %d", tt.status)
	}
}

func TestMusicClient_Submit(t *testing.T) {
	var received map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/generate", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"msg":"success","data":{"taskId":"job-123"}}`))
	}))
	defer srv.Close()

	client := newTestMusicClient(srv.URL, "secret")
	jobID, err := client.Submit(context.Background(), models.MusicSubmission{
		Prompt:       "Title\n\nContent",
		Title:        "Title",
		Instrumental: true,
		CallbackURL:  "http://example.com/stories/music-callback?storyId=1",
	})
	require.NoError(t, err)
	assert.Equal(t, "job-123", jobID)
	assert.Equal(t, "Title\n\nContent", received["prompt"])
	assert.Equal(t, true, received["instrumental"])
	assert.Equal(t, "V4", received["model"])
	assert.Equal(t, "http://example.com/stories/music-callback?storyId=1", received["callBackUrl"])
}

func TestMusicClient_SubmitErrors(t *testing.T) {
	tests := []struct {
		name       string
		httpStatus int
		body       string
		want       error
	}{
		{"http 401", http.StatusUnauthorized, `{"msg":"bad key"}`, models.ErrMusicAuth},
		{"http 503", http.StatusServiceUnavailable, `busy`, models.ErrMusicUnavailable},
		{"code in body", http.StatusOK, `{"code":429,"msg":"insufficient credits"}`, models.ErrMusicRateLimited},
		{"no job id", http.StatusOK, `{"code":200,"data":{}}`, models.ErrInvalidProviderResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.httpStatus)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestMusicClient(srv.URL, "secret").Submit(context.Background(), models.MusicSubmission{Prompt: "p"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestMusicClient_NotConfigured(t *testing.T) {
	client := newTestMusicClient("http://127.0.0.1:1", "")
	_, err := client.Submit(context.Background(), models.MusicSubmission{Prompt: "p"})
	assert.ErrorIs(t, err, models.ErrProviderNotConfigured)
	_, err = client.JobStatus(context.Background(), "job")
	assert.ErrorIs(t, err, models.ErrProviderNotConfigured)
}

func TestParseJobState(t *testing.T) {
	completed := ParseJobState([]byte(`{"code":200,"data":{"taskId":"j","status":"SUCCESS","response":{"sunoData":[
		{"id":"a","audioUrl":"https://cdn/a.mp3"},{"id":"b","audio_url":"https://cdn/b.mp3"},{"id":"c"}]}}}`))
	assert.Equal(t, models.MusicStatusCompleted, completed.Status)
	assert.Equal(t, []string{"https://cdn/a.mp3", "https://cdn/b.mp3"}, completed.AudioURLs)

	pending := ParseJobState([]byte(`{"data":{"status":"TEXT_SUCCESS","response":{"sunoData":[]}}}`))
	assert.Equal(t, models.MusicStatusIntermediate, pending.Status)
	assert.Empty(t, pending.AudioURLs)

	failed := ParseJobState([]byte(`{"data":{"status":"GENERATE_AUDIO_FAILED","errorMessage":"content rejected"}}`))
	assert.Equal(t, models.MusicStatusFailed, failed.Status)
	assert.Equal(t, "content rejected", failed.ErrorMessage)

	unknown := ParseJobState([]byte(`{}`))
	assert.Equal(t, models.MusicStatusUnknown, unknown.Status)
}

func TestMusicClient_JobStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/generate/record-info", r.URL.Path)
		assert.Equal(t, "job-9", r.URL.Query().Get("taskId"))
		_, _ = w.Write([]byte(`{"data":{"status":"complete","response":{"sunoData":[{"audioUrl":"https://cdn/x.mp3"}]}}}`))
	}))
	defer srv.Close()

	state, err := newTestMusicClient(srv.URL, "secret").JobStatus(context.Background(), "job-9")
	require.NoError(t, err)
	assert.Equal(t, models.MusicStatusCompleted, state.Status)
	assert.Equal(t, []string{"https://cdn/x.mp3"}, state.AudioURLs)
}
