// Package resolver finds the weekly menu document covering a target date.
//
// Resolution walks an ordered list of strategies. Each strategy proposes
// candidate URLs; the first candidate whose title cell names the target week
// wins. Strategy and fetch errors are logged and only surface, wrapped in
// menu.ErrSourceUnavailable, once every strategy is exhausted.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
	"github.com/JakeFAU/menufetcher/internal/pagecache"
	"github.com/JakeFAU/menufetcher/internal/week"
)

// Verdict is the outcome of checking one candidate URL.
type Verdict int

// Verdicts.
const (
	Failed Verdict = iota
	WrongWeek
	Verified
)

func (v Verdict) String() string {
	switch v {
	case Verified:
		return "verified"
	case WrongWeek:
		return "wrong_week"
	default:
		return "failed"
	}
}

// Candidate is a proposed menu document and how verification went.
type Candidate struct {
	URL     string
	Verdict Verdict
	Err     error
}

// Pages is the run-scoped document source strategies read from.
type Pages interface {
	Fetch(ctx context.Context, rawURL string) (*pagecache.Document, error)
}

// Strategy proposes menu document URLs for a date.
type Strategy interface {
	Name() string
	// Applicable reports whether the strategy can help for day at all.
	Applicable(day time.Time) bool
	Candidates(ctx context.Context, pages Pages, day time.Time) ([]string, error)
}

// Clock tells the resolver what "this week" is.
type Clock interface {
	Now() time.Time
}

// Resolver runs strategies in order.
type Resolver struct {
	id         string
	strategies []Strategy
	logger     *zap.Logger
}

// New builds a Resolver for the facility id over an explicit strategy list.
func New(id string, strategies []Strategy, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{id: id, strategies: strategies, logger: logger}
}

// Strategies returns the names of the configured strategies, in order.
func (r *Resolver) Strategies() []string {
	names := make([]string, 0, len(r.strategies))
	for _, s := range r.strategies {
		names = append(names, s.Name())
	}
	return names
}

// Resolve returns the URL of a verified menu document for day.
func (r *Resolver) Resolve(ctx context.Context, pages Pages, day time.Time) (string, error) {
	var firstErr error
	keep := func(err error) {
		if firstErr == nil {
			firstErr = err
		}
	}

	for _, strategy := range r.strategies {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("resolve %s: %w", r.id, err)
		}
		logger := r.logger.With(zap.String("strategy", strategy.Name()))
		if !strategy.Applicable(day) {
			logger.Debug("strategy not applicable")
			metrics.ObserveStrategy(strategy.Name(), "skipped")
			continue
		}
		logger.Info("attempting strategy")

		urls, err := strategy.Candidates(ctx, pages, day)
		if err != nil {
			logger.Warn("strategy failed", zap.Error(err))
			metrics.ObserveStrategy(strategy.Name(), "error")
			keep(fmt.Errorf("%s: %w", strategy.Name(), err))
			continue
		}

		for _, url := range urls {
			c := Verify(ctx, pages, url, day)
			switch c.Verdict {
			case Verified:
				logger.Info("menu document verified", zap.String("url", url))
				metrics.ObserveStrategy(strategy.Name(), c.Verdict.String())
				return url, nil
			case WrongWeek:
				logger.Debug("candidate is for another week", zap.String("url", url))
			default:
				logger.Warn("candidate discarded", zap.String("url", url), zap.Error(c.Err))
				keep(fmt.Errorf("%s: %w", strategy.Name(), c.Err))
			}
		}
		metrics.ObserveStrategy(strategy.Name(), "exhausted")
	}

	if firstErr != nil {
		return "", fmt.Errorf("%w: %s: fetching menu failed: %w", menu.ErrSourceUnavailable, r.id, firstErr)
	}
	return "", fmt.Errorf("%w: %s: menu is not available yet", menu.ErrSourceUnavailable, r.id)
}

// Verify fetches url and checks that its title cell names the week containing day.
func Verify(ctx context.Context, pages Pages, url string, day time.Time) Candidate {
	doc, err := pages.Fetch(ctx, url)
	if err != nil {
		return Candidate{URL: url, Verdict: Failed, Err: err}
	}
	cells := doc.Find(".titlecell").Map(func(_ int, s *goquery.Selection) string { return s.Text() })
	title := strings.Join(strings.Fields(strings.Join(cells, " ")), " ")
	if strings.Contains(title, week.Label(day)) {
		return Candidate{URL: url, Verdict: Verified}
	}
	return Candidate{URL: url, Verdict: WrongWeek}
}
