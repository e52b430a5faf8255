// Package youtube resolves comment ids against the YouTube Data API v3.
package youtube

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"github.com/hay-kot/commentrank/internal/core/comment"
)

// DefaultTimeout bounds a single commentThreads.list call.
const DefaultTimeout = 15 * time.Second

// quotaReasons are the error reasons the API uses once the daily quota is
// spent. rateLimitExceeded is deliberately absent: it clears on its own.
var quotaReasons = map[string]bool{
	"quotaExceeded":      true,
	"dailyLimitExceeded": true,
}

// Config configures a Client.
type Config struct {
	APIKey string
	// Endpoint overrides the API base URL. Empty uses the public endpoint.
	Endpoint string
	// RequestsPerSecond paces calls. Zero or negative disables pacing.
	RequestsPerSecond float64
	// Timeout bounds each call. Zero uses DefaultTimeout.
	Timeout time.Duration
}

// Client implements comment.Fetcher using commentThreads.list.
type Client struct {
	threads *yt.CommentThreadsService
	limiter *rate.Limiter
	timeout time.Duration
	log     zerolog.Logger
}

var _ comment.Fetcher = (*Client)(nil)

// New builds a client authenticated with an API key.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("youtube: api key is required")
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	svc, err := yt.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube: create service: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		threads: svc.CommentThreads,
		timeout: timeout,
		log:     logger,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return c, nil
}

// Fetch looks up a single top-level comment. An empty result means the
// comment was deleted or hidden and yields the NotFound sentinel.
func (c *Client) Fetch(ctx context.Context, id string) (comment.Record, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return comment.Record{}, &comment.FetchError{ID: id, Err: err}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.threads.List([]string{"snippet"}).Id(id).Context(callCtx).Do()
	if err != nil {
		return comment.Record{}, &comment.FetchError{ID: id, Err: err, Quota: isQuotaError(err)}
	}

	if len(resp.Items) == 0 {
		c.log.Debug().Ctx(ctx).Msg("comment no longer available")
		return comment.NotFound(id), nil
	}

	thread := resp.Items[0]
	if thread.Snippet == nil || thread.Snippet.TopLevelComment == nil || thread.Snippet.TopLevelComment.Snippet == nil {
		return comment.Record{}, &comment.FetchError{ID: id, Err: errors.New("response is missing the top level comment snippet")}
	}

	snippet := thread.Snippet.TopLevelComment.Snippet
	return comment.Record{
		ID:        id,
		Text:      strings.TrimSpace(snippet.TextDisplay),
		LikeCount: snippet.LikeCount,
	}, nil
}

func isQuotaError(err error) bool {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	if apiErr.Code != 403 {
		return false
	}
	for _, item := range apiErr.Errors {
		if quotaReasons[item.Reason] {
			return true
		}
	}
	return false
}
