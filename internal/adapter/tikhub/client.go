package tikhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Leooooooow/tiktok-comment-fetcher/internal/entity"
	"github.com/Leooooooow/tiktok-comment-fetcher/internal/repository"
	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/metrics"
)

const (
	commentsPath  = "/api/v1/tiktok/app/v3/fetch_video_comments"
	bodyPrefixLen = 200
)

// Config is injected at construction; the client keeps no process-wide credential state.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	RatePerSecond float64 // 0 disables client-side pacing
}

// Client implements repository.CommentPageFetcher against the TikHub comment listing endpoint.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewClient creates a new comment page client.
func NewClient(cfg Config, m *metrics.Metrics, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		endpoint: cfg.BaseURL + commentsPath,
		apiKey:   cfg.APIKey,
		client:   &http.Client{Timeout: timeout},
		metrics:  m,
		logger:   logger,
	}
	if cfg.RatePerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return c
}

type commentsResponse struct {
	Data struct {
		Comments []entity.RawComment `json:"comments"`
		HasMore  flexBool            `json:"has_more"`
		Cursor   int64               `json:"cursor"`
	} `json:"data"`
}

// FetchPage issues one GET for a page of comments.
func (c *Client) FetchPage(ctx context.Context, videoID string, cursor int64, pageSize int) (*entity.CommentPage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(&repository.UpstreamError{Kind: repository.KindOther, Detail: err.Error()})
		}
	}

	q := url.Values{}
	q.Set("aweme_id", videoID)
	q.Set("cursor", strconv.FormatInt(cursor, 10))
	q.Set("count", strconv.Itoa(pageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, c.fail(&repository.UpstreamError{Kind: repository.KindOther, Detail: err.Error()})
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	c.metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, c.fail(classify(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*bodyPrefixLen))
		return nil, c.fail(&repository.UpstreamError{
			Kind:       repository.KindHTTPStatus,
			StatusCode: resp.StatusCode,
			Detail:     prefix(string(body), bodyPrefixLen),
		})
	}

	var payload commentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, c.fail(classify(fmt.Errorf("decode comments response: %w", err)))
	}

	c.metrics.UpstreamRequestsTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("fetched comment page",
		zap.String("video_id", videoID),
		zap.Int64("cursor", cursor),
		zap.Int("comments", len(payload.Data.Comments)),
		zap.Bool("has_more", bool(payload.Data.HasMore)),
	)

	return &entity.CommentPage{
		Comments: payload.Data.Comments,
		Cursor:   payload.Data.Cursor,
		HasMore:  bool(payload.Data.HasMore),
	}, nil
}

func (c *Client) fail(err *repository.UpstreamError) error {
	c.metrics.UpstreamRequestsTotal.WithLabelValues(string(err.Kind)).Inc()
	return err
}

// classify maps a transport error onto an upstream error kind.
func classify(err error) *repository.UpstreamError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &repository.UpstreamError{Kind: repository.KindTimeout, Detail: err.Error()}
	}

	// Timeout errors first: net.OpError also satisfies net.Error.
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &repository.UpstreamError{Kind: repository.KindTimeout, Detail: err.Error()}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &repository.UpstreamError{Kind: repository.KindConnectionFailure, Detail: err.Error()}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &repository.UpstreamError{Kind: repository.KindConnectionFailure, Detail: err.Error()}
	}

	return &repository.UpstreamError{Kind: repository.KindOther, Detail: err.Error()}
}

// prefix returns at most n runes of s.
func prefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// flexBool accepts both JSON booleans and the 0/1 integers the app API uses for has_more.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true":
		*b = true
		return nil
	case "false", "null":
		*b = false
		return nil
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("has_more: unexpected value %s", data)
	}
	*b = n != 0
	return nil
}
