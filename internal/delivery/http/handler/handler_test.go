package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/handler"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/router"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/usecase"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/metrics"
)

type fakeBatch struct {
	single    entity.VideoResult
	singleErr error
	batch     *entity.BatchResult
	batchErr  error
	gotURLs   []string
}

func (f *fakeBatch) Run(ctx context.Context, urls []string) (*entity.BatchResult, error) {
	f.gotURLs = urls
	return f.batch, f.batchErr
}

func (f *fakeBatch) RunSingle(ctx context.Context, rawURL string) (entity.VideoResult, error) {
	return f.single, f.singleErr
}

type fakeJournal struct {
	failure *entity.FetchFailure
	findErr error
	ping    map[string]error
}

func (f *fakeJournal) Find(ctx context.Context, rawURL string) (*entity.FetchFailure, error) {
	return f.failure, f.findErr
}

func (f *fakeJournal) Ping(ctx context.Context) map[string]error { return f.ping }

func newServer(t *testing.T, b *fakeBatch, j *fakeJournal) (http.Handler, *metrics.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := zaptest.NewLogger(t)
	h := handler.NewHandler(b, j, logger)
	return router.New(h, router.Options{Metrics: m, Gatherer: reg, Logger: logger, RequestTimeout: time.Second}), m
}

func do(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHandleFetchCommentsSuccess(t *testing.T) {
	comments := []entity.Comment{{ID: "1", Text: "hi", Author: entity.Author{Nickname: "A"}}}
	b := &fakeBatch{single: entity.NewSuccessfulVideoResult("https://www.tiktok.com/@u/video/1", "1", comments)}
	srv, m := newServer(t, b, &fakeJournal{})

	rec := do(t, srv, http.MethodPost, "/api/fetch-comments", `{"url":"https://www.tiktok.com/@u/video/1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "1", body["video_id"])
	assert.EqualValues(t, 1, body["total"])
	assert.Len(t, body["comments"], 1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/api/fetch-comments", "200")))
}

func TestHandleFetchCommentsErrors(t *testing.T) {
	tests := []struct {
		name   string
		batch  *fakeBatch
		body   string
		status int
		errMsg string
	}{
		{"bad json", &fakeBatch{}, `{`, http.StatusBadRequest, "Invalid request body"},
		{"empty url", &fakeBatch{singleErr: usecase.ErrEmptyInput}, `{"url":""}`, http.StatusBadRequest, "Please provide a TikTok video URL"},
		{"no video id", &fakeBatch{singleErr: usecase.ErrVideoIDNotFound}, `{"url":"x"}`, http.StatusBadRequest, "Cannot extract a video ID from the URL, check the URL format"},
		{
			"collector failure",
			&fakeBatch{single: entity.NewFailedVideoResult("u", "1", "fetch page 1: HTTP 500: oops")},
			`{"url":"u"}`, http.StatusInternalServerError, "fetch page 1: HTTP 500: oops",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.batch, &fakeJournal{})
			rec := do(t, srv, http.MethodPost, "/api/fetch-comments", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.errMsg, body["error"])
		})
	}
}

func TestHandleFetchCommentsBatch(t *testing.T) {
	b := &fakeBatch{batch: &entity.BatchResult{
		TotalVideos:      2,
		SuccessfulVideos: 1,
		TotalComments:    3,
		Videos: []entity.VideoResult{
			entity.NewSuccessfulVideoResult("a", "1", make([]entity.Comment, 3)),
			entity.NewFailedVideoResult("bad-url", "", "cannot extract video id"),
		},
	}}
	srv, _ := newServer(t, b, &fakeJournal{})

	rec := do(t, srv, http.MethodPost, "/api/fetch-comments-batch", `{"urls":["a","bad-url"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "bad-url"}, b.gotURLs)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 2, body["total_videos"])
	assert.EqualValues(t, 1, body["successful_videos"])
	assert.EqualValues(t, 3, body["total_comments"])

	videos := body["videos"].([]any)
	failed := videos[1].(map[string]any)
	assert.Nil(t, failed["video_id"])
	assert.Equal(t, "cannot extract video id", failed["error"])
	assert.Equal(t, []any{}, failed["comments"])
}

func TestHandleFetchCommentsBatchErrors(t *testing.T) {
	tooMany := fmt.Errorf("%w: got 11, maximum is 10", usecase.ErrTooManyInputs)
	tests := []struct {
		name   string
		batch  *fakeBatch
		body   string
		errMsg string
	}{
		{"missing urls", &fakeBatch{}, `{}`, "urls is required"},
		{"empty input", &fakeBatch{batchErr: usecase.ErrEmptyInput}, `{"urls":[" "]}`, "Please provide at least one TikTok video URL"},
		{"too many", &fakeBatch{batchErr: tooMany}, `{"urls":["a"]}`, tooMany.Error()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.batch, &fakeJournal{})
			rec := do(t, srv, http.MethodPost, "/api/fetch-comments-batch", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.errMsg, decode(t, rec)["error"])
		})
	}
}

func TestHandleExportCSV(t *testing.T) {
	srv, _ := newServer(t, &fakeBatch{}, &fakeJournal{})
	body := `{"video_id":"42","comments":[{"id":"1","text":"hi","author":{"nickname":"A","username":"a"},"likes":5,"reply_count":1,"create_time_formatted":"2024-01-01 00:00:00"}]}`

	rec := do(t, srv, http.MethodPost, "/api/export/csv", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tiktok_comments_42.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "\ufeffComment ID,"))
	assert.Contains(t, rec.Body.String(), "1,A,a,hi,5,1,2024-01-01 00:00:00")
}

func TestHandleExportJSON(t *testing.T) {
	srv, _ := newServer(t, &fakeBatch{}, &fakeJournal{})

	rec := do(t, srv, http.MethodPost, "/api/export/json", `{"comments":[{"id":"1"}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="tiktok_comments_unknown.json"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var comments []entity.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	assert.Equal(t, "1", comments[0].ID)
}

func TestHandleExportUnsupported(t *testing.T) {
	srv, _ := newServer(t, &fakeBatch{}, &fakeJournal{})
	rec := do(t, srv, http.MethodPost, "/api/export/xlsx", `{"comments":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unsupported export format", decode(t, rec)["error"])
}

func TestHandleGetFailure(t *testing.T) {
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	j := &fakeJournal{failure: &entity.FetchFailure{URL: "u", VideoID: "1", FailureKind: "timeout", FailureCount: 2, LastAttemptTimestamp: at}}
	srv, _ := newServer(t, &fakeBatch{}, j)

	rec := do(t, srv, http.MethodGet, "/api/failures?url=u", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "timeout", body["failure_kind"])
	assert.EqualValues(t, 2, body["failure_count"])

	rec = do(t, srv, http.MethodGet, "/api/failures", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetFailureErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{repository.ErrFailureNotFound, http.StatusNotFound},
		{usecase.ErrNoFailureStore, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		srv, _ := newServer(t, &fakeBatch{}, &fakeJournal{findErr: tt.err})
		rec := do(t, srv, http.MethodGet, "/api/failures?url=u", "")
		assert.Equal(t, tt.status, rec.Code, tt.err.Error())
	}
}

func TestHandleHealthCheck(t *testing.T) {
	srv, _ := newServer(t, &fakeBatch{}, &fakeJournal{})
	rec := do(t, srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotContains(t, body, "stores")

	srv, _ = newServer(t, &fakeBatch{}, &fakeJournal{ping: map[string]error{"redis": nil, "postgres": errors.New("down")}})
	rec = do(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body = decode(t, rec)
	assert.Equal(t, map[string]any{"redis": "healthy", "postgres": "unhealthy"}, body["stores"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t, &fakeBatch{}, &fakeJournal{})
	do(t, srv, http.MethodGet, "/health", "")

	rec := do(t, srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/health",status="200"} 1`)
}
