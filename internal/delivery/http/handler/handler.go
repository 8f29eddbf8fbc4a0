package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/request"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/response"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/export"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/usecase"
)

const healthCheckTimeout = 2 * time.Second

type Handler struct {
	batch    usecase.Batch
	failures usecase.FailureJournal
	logger   *zap.Logger
}

func NewHandler(batch usecase.Batch, failures usecase.FailureJournal, logger *zap.Logger) *Handler {
	return &Handler{
		batch:    batch,
		failures: failures,
		logger:   logger,
	}
}

func (h *Handler) HandleFetchComments(w http.ResponseWriter, r *http.Request) {
	var req request.FetchCommentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.batch.RunSingle(r.Context(), req.URL)
	switch {
	case errors.Is(err, usecase.ErrEmptyInput):
		h.writeJSONError(w, "Please provide a TikTok video URL", http.StatusBadRequest)
		return
	case errors.Is(err, usecase.ErrVideoIDNotFound):
		h.writeJSONError(w, "Cannot extract a video ID from the URL, check the URL format", http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("failed to fetch comments", zap.String("url", req.URL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if !result.Success {
		h.writeJSONError(w, derefOr(result.Error, "comment collection failed"), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FetchCommentsResponse{
		Success:  true,
		VideoID:  derefOr(result.VideoID, ""),
		Total:    result.TotalComments,
		Comments: result.Comments,
	})
}

func (h *Handler) HandleFetchCommentsBatch(w http.ResponseWriter, r *http.Request) {
	var req request.FetchCommentsBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.URLs == nil {
		h.writeJSONError(w, "urls is required", http.StatusBadRequest)
		return
	}

	result, err := h.batch.Run(r.Context(), req.URLs)
	switch {
	case errors.Is(err, usecase.ErrEmptyInput):
		h.writeJSONError(w, "Please provide at least one TikTok video URL", http.StatusBadRequest)
		return
	case errors.Is(err, usecase.ErrTooManyInputs):
		h.writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		h.logger.Error("failed to run batch", zap.Int("urls", len(req.URLs)), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FetchCommentsBatchResponse{
		Success:          true,
		TotalVideos:      result.TotalVideos,
		SuccessfulVideos: result.SuccessfulVideos,
		TotalComments:    result.TotalComments,
		Videos:           result.Videos,
	})
}

func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.writeJSONError(w, "Unsupported export format", http.StatusBadRequest)
		return
	}

	var req request.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Render fully before writing headers so a failure can still return JSON.
	var buf bytes.Buffer
	if err := export.Write(&buf, format, req.Comments); err != nil {
		h.logger.Error("failed to render export", zap.String("format", string(format)), zap.Error(err))
		h.writeJSONError(w, "Export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(req.VideoID)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Error("failed to write export", zap.Error(err))
	}
}

func (h *Handler) HandleGetFailure(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return
	}

	failure, err := h.failures.Find(r.Context(), rawURL)
	switch {
	case errors.Is(err, usecase.ErrNoFailureStore):
		h.writeJSONError(w, "No failure journal is configured", http.StatusServiceUnavailable)
		return
	case errors.Is(err, repository.ErrFailureNotFound):
		h.writeJSONError(w, "No failure recorded for the given URL", http.StatusNotFound)
		return
	case err != nil:
		h.logger.Error("failed to look up failure", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.FailureResponse{
		URL:                  failure.URL,
		VideoID:              failure.VideoID,
		FailureKind:          failure.FailureKind,
		FailureReason:        failure.FailureReason,
		HTTPStatusCode:       failure.HTTPStatusCode,
		LastAttemptTimestamp: failure.LastAttemptTimestamp,
		FailureCount:         failure.FailureCount,
	})
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	resp := response.HealthResponse{Status: "healthy", Timestamp: time.Now().UTC()}
	status := http.StatusOK

	checks := h.failures.Ping(ctx)
	if len(checks) > 0 {
		resp.Stores = make(map[string]string, len(checks))
	}
	for name, err := range checks {
		if err != nil {
			h.logger.Error("health check failed", zap.String("store", name), zap.Error(err))
			resp.Stores[name] = "unhealthy"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Stores[name] = "healthy"
	}

	h.writeJSON(w, status, resp)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Success: false, Error: message})
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
