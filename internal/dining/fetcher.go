// Package dining produces a facility's menu for a day.
//
// A menu document is resolved and extracted first. When no document can be
// resolved, or the resolved one cannot be extracted, the facility's script-data
// feed is tried as an independent fallback. A Menu is always returned; when no
// source has data its Meals are empty.
package dining

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/extract"
	"github.com/JakeFAU/menufetcher/internal/feed"
	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
	"github.com/JakeFAU/menufetcher/internal/pagecache"
	"github.com/JakeFAU/menufetcher/internal/resolver"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
	"github.com/JakeFAU/menufetcher/internal/week"
)

// Sources a menu can come from.
const (
	SourceDocument = "document"
	SourceFeed     = "feed"
	SourceNone     = "none"
)

// FeedFetcher downloads and decodes a feed script.
type FeedFetcher interface {
	Fetch(ctx context.Context, url string) (*feed.Feed, error)
}

// IDGenerator mints run ids.
type IDGenerator interface {
	NewID() (string, error)
}

// Config wires a Fetcher.
type Config struct {
	Site      sodexo.Site
	Documents pagecache.Fetcher
	Feeds     FeedFetcher
	Clock     resolver.Clock
	IDs       IDGenerator
	CacheSize int
	Logger    *zap.Logger
}

// Fetcher produces menus for one facility. It is safe for concurrent use; the
// state of each resolution lives in its own Run.
type Fetcher struct {
	site      sodexo.Site
	documents pagecache.Fetcher
	feeds     FeedFetcher
	resolver  *resolver.Resolver
	ids       IDGenerator
	cacheSize int
	logger    *zap.Logger
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("facility", cfg.Site.ID))
	return &Fetcher{
		site:      cfg.Site,
		documents: cfg.Documents,
		feeds:     cfg.Feeds,
		resolver:  resolver.Default(cfg.Site, cfg.Clock, logger),
		ids:       cfg.IDs,
		cacheSize: cfg.CacheSize,
		logger:    logger,
	}
}

// Site returns the facility this Fetcher serves.
func (f *Fetcher) Site() sodexo.Site {
	return f.site
}

// Run is the state of one resolution run: its id, its page cache and the feed
// once downloaded. A Run must not be used from more than one goroutine.
type Run struct {
	ID    string
	Pages *pagecache.Cache

	feed *feed.Feed
}

// NewRun starts a run with an empty cache.
func (f *Fetcher) NewRun() *Run {
	id := "unknown"
	if f.ids != nil {
		if generated, err := f.ids.NewID(); err == nil {
			id = generated
		} else {
			f.logger.Warn("could not generate run id", zap.Error(err))
		}
	}
	logger := f.logger.With(zap.String("run_id", id))
	return &Run{
		ID:    id,
		Pages: pagecache.New(f.documents, pagecache.WithSize(f.cacheSize), pagecache.WithLogger(logger)),
	}
}

// Menu resolves the menu for day in a fresh run.
func (f *Fetcher) Menu(ctx context.Context, day time.Time) menu.Menu {
	return f.MenuFor(ctx, f.NewRun(), day)
}

// MenuFor resolves the menu for day, reusing whatever run has already fetched.
func (f *Fetcher) MenuFor(ctx context.Context, run *Run, day time.Time) menu.Menu {
	day = week.Truncate(day)
	logger := f.logger.With(zap.String("run_id", run.ID), zap.String("date", day.Format(time.DateOnly)))

	if m, ok := f.fromDocument(ctx, run, day, logger); ok {
		metrics.ObserveMenu(f.site.ID, SourceDocument)
		return m
	}
	if f.site.HasFeed() {
		if m, ok := f.fromFeed(ctx, run, day, logger); ok {
			metrics.ObserveMenu(f.site.ID, SourceFeed)
			return m
		}
	}

	logger.Info("no menu available")
	metrics.ObserveMenu(f.site.ID, SourceNone)
	return menu.Normalize(f.site.Facility(), f.site.PublicMenuURL("", day), day, nil)
}

func (f *Fetcher) fromDocument(ctx context.Context, run *Run, day time.Time, logger *zap.Logger) (menu.Menu, bool) {
	url, err := f.resolver.Resolve(ctx, run.Pages, day)
	if err != nil {
		logger.Info("menu document not resolved", zap.Error(err))
		return menu.Menu{}, false
	}
	doc, err := run.Pages.Fetch(ctx, url)
	if err != nil {
		logger.Warn("resolved menu document unavailable", zap.String("url", url), zap.Error(err))
		return menu.Menu{}, false
	}
	raw, err := extract.Table(doc, day)
	if err != nil {
		logger.Warn("menu document could not be extracted", zap.String("url", url), zap.Error(err))
		return menu.Menu{}, false
	}
	return menu.Normalize(f.site.Facility(), f.site.PublicMenuURL(url, day), day, raw), true
}

func (f *Fetcher) fromFeed(ctx context.Context, run *Run, day time.Time, logger *zap.Logger) (menu.Menu, bool) {
	if f.feeds == nil {
		return menu.Menu{}, false
	}
	logger = logger.With(zap.String("url", f.site.FeedURL()))
	if run.feed == nil {
		decoded, err := f.feeds.Fetch(ctx, f.site.FeedURL())
		if err != nil {
			logger.Warn("feed unavailable", zap.Error(err))
			return menu.Menu{}, false
		}
		run.feed = decoded
	}
	raw, err := run.feed.Meals(day)
	if err != nil {
		logger.Info("feed has no menu", zap.Error(err))
		return menu.Menu{}, false
	}
	return menu.Normalize(f.site.Facility(), f.site.PublicFeedURL(), day, raw), true
}
