package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/handler"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/delivery/http/middleware"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/metrics"
)

// Options wires the router to its collaborators.
type Options struct {
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	Logger         *zap.Logger
	RequestTimeout time.Duration
}

func New(h *handler.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.Metrics(opts.Metrics))
	r.Use(chimw.Recoverer)
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/health", h.HandleHealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Post("/fetch-comments", h.HandleFetchComments)
		r.Post("/fetch-comments-batch", h.HandleFetchCommentsBatch)
		r.Post("/export/{format}", h.HandleExport)
		r.Get("/failures", h.HandleGetFailure)
	})

	return r
}
