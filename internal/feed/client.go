package feed

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
)

// DefaultTimeout bounds a feed download.
const DefaultTimeout = 10 * time.Second

// ClientConfig controls feed downloads.
type ClientConfig struct {
	UserAgent string
	Timeout   time.Duration
}

// Client downloads and decodes feed scripts.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a Client.
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client := resty.New()
	client.SetTimeout(timeout)
	if cfg.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.UserAgent)
	}
	return &Client{http: client, logger: logger}
}

// Fetch downloads the feed at url and decodes it. Transport failures and error
// statuses wrap menu.ErrSourceUnavailable.
func (c *Client) Fetch(ctx context.Context, url string) (*Feed, error) {
	start := time.Now()
	res, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		metrics.ObserveFetch("feed", "error", time.Since(start))
		return nil, fmt.Errorf("%w: fetch feed %s: %w", menu.ErrSourceUnavailable, url, err)
	}
	metrics.ObserveFetch("feed", strconv.Itoa(res.StatusCode()), time.Since(start))
	if res.IsError() {
		return nil, fmt.Errorf("%w: fetch feed %s: status %d", menu.ErrSourceUnavailable, url, res.StatusCode())
	}
	c.logger.Debug("feed downloaded", zap.String("url", url), zap.Int("bytes", len(res.Body())))
	return Parse(res.String(), c.logger.With(zap.String("url", url)))
}
