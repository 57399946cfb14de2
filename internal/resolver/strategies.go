package resolver

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
	"github.com/JakeFAU/menufetcher/internal/pagecache"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
	"github.com/JakeFAU/menufetcher/internal/week"
)

// Default returns the standard strategy chain for a site: portal, front page, bruteforce.
func Default(site sodexo.Site, clock Clock, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return New(site.ID, []Strategy{
		Portal{Site: site, Logger: logger},
		Frontpage{Site: site, Clock: clock},
		Bruteforce{Site: site},
	}, logger)
}

// Portal reads the dining-choices listing, where each entry pairs a date range with a menu link.
type Portal struct {
	Site   sodexo.Site
	Logger *zap.Logger
}

// Name implements Strategy.
func (Portal) Name() string { return "portal" }

// Applicable implements Strategy.
func (Portal) Applicable(time.Time) bool { return true }

// Candidates implements Strategy.
func (p Portal) Candidates(ctx context.Context, pages Pages, day time.Time) ([]string, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	doc, err := pages.Fetch(ctx, p.Site.PortalURL())
	if err != nil {
		return nil, fmt.Errorf("fetch portal: %w", err)
	}
	section := doc.Find(p.Site.PortalSelector())
	if section.Length() == 0 {
		return nil, fmt.Errorf("%w: portal has no %s listing", menu.ErrMalformedSource, p.Site.PortalSelector())
	}
	list := section.Find("ul").First()
	if list.Length() == 0 {
		return nil, fmt.Errorf("%w: portal listing %s has no entries", menu.ErrMalformedSource, p.Site.PortalSelector())
	}
	base, err := url.Parse(doc.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: portal url %q: %w", menu.ErrMalformedSource, doc.URL, err)
	}

	var found string
	list.ChildrenFiltered("li").EachWithBreak(func(_ int, entry *goquery.Selection) bool {
		link := entry.Children().First()
		caption := strings.TrimSpace(pagecache.OwnText(link))
		window, err := week.ParseRange(caption)
		if err != nil {
			logger.Warn("skipping portal entry", zap.String("range", caption), zap.Error(err))
			metrics.ObserveSkippedPortalEntry()
			return true
		}
		if !window.Contains(day) {
			return true
		}
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			logger.Warn("portal entry has no link", zap.String("range", caption))
			return true
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			logger.Warn("portal entry has a bad link", zap.String("href", href), zap.Error(err))
			return true
		}
		found = sodexo.WithDesktop(base.ResolveReference(ref).String())
		return false
	})
	if found == "" {
		return nil, fmt.Errorf("%w: no portal entry covers %s", menu.ErrNotFoundForDate, day.Format(time.DateOnly))
	}
	return []string{found}, nil
}

// Frontpage scrapes the landing page for a link to this week's menu document.
// It only runs for dates in the current week, since that is all the page links.
type Frontpage struct {
	Site  sodexo.Site
	Clock Clock
}

// Name implements Strategy.
func (Frontpage) Name() string { return "frontpage" }

// Applicable implements Strategy.
func (f Frontpage) Applicable(day time.Time) bool {
	if f.Clock == nil {
		return false
	}
	return week.SameWeek(f.Clock.Now(), day)
}

// Candidates implements Strategy.
func (f Frontpage) Candidates(ctx context.Context, pages Pages, day time.Time) ([]string, error) {
	doc, err := pages.Fetch(ctx, f.Site.FrontpageURL())
	if err != nil {
		return nil, fmt.Errorf("fetch frontpage: %w", err)
	}
	match := f.Site.MenuLinkPattern().FindString(doc.Raw)
	if match == "" {
		return nil, fmt.Errorf("%w: frontpage links no menu for %s", menu.ErrNotFoundForDate, day.Format(time.DateOnly))
	}
	return []string{f.Site.Base() + match}, nil
}

// Bruteforce tries the known weekly menu document ids one by one.
type Bruteforce struct {
	Site sodexo.Site
}

// Name implements Strategy.
func (Bruteforce) Name() string { return "bruteforce" }

// Applicable implements Strategy.
func (Bruteforce) Applicable(time.Time) bool { return true }

// Candidates implements Strategy.
func (b Bruteforce) Candidates(context.Context, Pages, time.Time) ([]string, error) {
	ids := b.Site.CandidateIDs()
	urls := make([]string, 0, len(ids))
	for _, id := range ids {
		urls = append(urls, b.Site.MenuURL(id))
	}
	return urls, nil
}
