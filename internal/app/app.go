// Package app initializes and holds long-lived application services, acting as a dependency injection container.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/clock/system"
	"github.com/JakeFAU/menufetcher/internal/config"
	"github.com/JakeFAU/menufetcher/internal/dining"
	"github.com/JakeFAU/menufetcher/internal/feed"
	collyfetcher "github.com/JakeFAU/menufetcher/internal/fetcher/colly"
	"github.com/JakeFAU/menufetcher/internal/id/uuid"
	"github.com/JakeFAU/menufetcher/internal/logging"
	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
	"github.com/JakeFAU/menufetcher/internal/policy/ratelimit"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
)

// ErrUnknownFacility is returned for facility ids missing from the configuration.
var ErrUnknownFacility = errors.New("unknown facility")

// App holds all the shared, long-lived services for the application.
// The HTTP stack and the politeness limiter are shared by every facility; each
// facility gets its own dining.Fetcher on top of them.
type App struct {
	cfg      config.Config
	logger   *zap.Logger
	clock    *system.Clock
	fetchers map[string]*dining.Fetcher
}

// NewApp loads the configuration at path (empty means the default search paths)
// and builds the application from it.
func NewApp(path string) (*App, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return New(cfg, logger)
}

// New wires the services for an already loaded configuration. A nil logger
// discards output.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	clock, err := system.ForZone(cfg.Run.Timezone)
	if err != nil {
		return nil, fmt.Errorf("init clock: %w", err)
	}

	limiter := ratelimit.New(ratelimit.Config{
		DefaultRPS:   cfg.Fetch.RequestsPerSecond,
		DefaultBurst: cfg.Fetch.Burst,
	})
	documents := collyfetcher.New(collyfetcher.Config{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
		Limiter:   limiter,
	})
	feeds := feed.NewClient(feed.ClientConfig{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   cfg.FetchTimeout(),
	}, logger.Named("feed"))
	ids := uuid.New()

	fetchers := make(map[string]*dining.Fetcher, len(cfg.Facilities))
	for _, site := range cfg.Sites() {
		fetchers[site.ID] = dining.New(dining.Config{
			Site:      site,
			Documents: documents,
			Feeds:     feeds,
			Clock:     clock,
			IDs:       ids,
			CacheSize: cfg.Fetch.CacheSize,
			Logger:    logger.Named("dining"),
		})
	}

	logger.Debug("application services initialized", zap.Int("facilities", len(fetchers)))

	return &App{
		cfg:      cfg,
		logger:   logger,
		clock:    clock,
		fetchers: fetchers,
	}, nil
}

// GetLogger returns the shared zap logger instance.
func (a *App) GetLogger() *zap.Logger {
	return a.logger
}

// Concurrency is the number of facilities resolved at once.
func (a *App) Concurrency() int {
	return a.cfg.Run.Concurrency
}

// Today is the current civil date in the configured time zone.
func (a *App) Today() time.Time {
	return a.clock.Today()
}

// Facilities lists the configured sites ordered by id.
func (a *App) Facilities() []sodexo.Site {
	return a.cfg.Sites()
}

// Fetcher returns the menu fetcher of a configured facility.
func (a *App) Fetcher(id string) (*dining.Fetcher, error) {
	f, ok := a.fetchers[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFacility, id)
	}
	return f, nil
}

// Menu resolves one facility's menu for day.
func (a *App) Menu(ctx context.Context, id string, day time.Time) (menu.Menu, error) {
	f, err := a.Fetcher(id)
	if err != nil {
		return menu.Menu{}, err
	}
	return f.Menu(ctx, day), nil
}

// Close flushes run artefacts: the metrics textfile when configured, then the logger.
// It is called by a Cobra hook after the command finishes execution.
func (a *App) Close() {
	if path := a.cfg.Metrics.Textfile; path != "" {
		if err := metrics.WriteTextfile(path); err != nil {
			a.logger.Warn("Error writing metrics textfile", zap.String("path", path), zap.Error(err))
		}
	}
	// Best-effort flush.
	_ = a.logger.Sync()
}
