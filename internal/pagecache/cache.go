// Package pagecache fetches upstream documents and memoizes them for the length of one run.
//
// A Cache is owned by a single resolution run. Successful fetches are stored and
// served again without touching the network; failures are never stored, so a
// later lookup in the same run retries.
package pagecache

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
)

// DefaultSize bounds the number of documents a run keeps.
const DefaultSize = 64

// Request describes one document fetch.
type Request struct {
	URL string
	// Charset is the declared encoding of the body; empty leaves it as served.
	Charset string
}

// Response is the raw result of a fetch, its body already transcoded to UTF-8.
type Response struct {
	URL        string
	StatusCode int
	Body       []byte
	Duration   time.Duration
}

// Fetcher performs a single HTTP GET.
type Fetcher interface {
	Fetch(ctx context.Context, request Request) (Response, error)
}

// Document is a fetched page: the decoded markup and its parsed DOM.
// The DOM is shared by every reader of the cache and must not be mutated.
type Document struct {
	URL string
	Raw string
	DOM *goquery.Document
}

// Find runs a selector against the document root.
func (d *Document) Find(selector string) *goquery.Selection {
	return d.DOM.Find(selector)
}

// OwnText is the text of the selection's direct text children, excluding nested elements.
func OwnText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return b.String()
}

// Cache memoizes documents by URL.
type Cache struct {
	fetcher Fetcher
	entries *expirable.LRU[string, *Document]
	logger  *zap.Logger
}

// Option customizes a Cache.
type Option func(*options)

type options struct {
	size   int
	logger *zap.Logger
}

// WithSize bounds the number of cached documents.
func WithSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.size = size
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an empty Cache backed by fetcher.
func New(fetcher Fetcher, opts ...Option) *Cache {
	o := options{size: DefaultSize, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache{
		fetcher: fetcher,
		// Entries live as long as the run; eviction is by size only.
		entries: expirable.NewLRU[string, *Document](o.size, nil, 0),
		logger:  o.logger,
	}
}

// Len reports how many documents are held.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Fetch returns the document at rawURL, downloading it on first use.
// Network failures and error statuses wrap menu.ErrSourceUnavailable; an
// unparseable body wraps menu.ErrMalformedSource.
func (c *Cache) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	if doc, ok := c.entries.Get(rawURL); ok {
		metrics.ObserveCacheLookup(metrics.CacheHit)
		return doc, nil
	}
	metrics.ObserveCacheLookup(metrics.CacheMiss)

	class := sodexo.DocumentClass(rawURL)
	logger := c.logger.With(zap.String("url", rawURL), zap.String("class", class))
	start := time.Now()

	resp, err := c.fetcher.Fetch(ctx, Request{URL: rawURL, Charset: sodexo.CharsetFor(rawURL)})
	if err != nil {
		metrics.ObserveFetch(class, "error", time.Since(start))
		logger.Debug("fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: fetch %s: %w", menu.ErrSourceUnavailable, rawURL, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		metrics.ObserveFetch(class, strconv.Itoa(resp.StatusCode), time.Since(start))
		return nil, fmt.Errorf("%w: fetch %s: status %d", menu.ErrSourceUnavailable, rawURL, resp.StatusCode)
	}
	metrics.ObserveFetch(class, "ok", time.Since(start))

	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", menu.ErrMalformedSource, rawURL, err)
	}
	doc := &Document{URL: rawURL, Raw: string(resp.Body), DOM: dom}
	c.entries.Add(rawURL, doc)
	logger.Debug("document cached", zap.Int("bytes", len(resp.Body)))
	return doc, nil
}
