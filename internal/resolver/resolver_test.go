package resolver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/pagecache"
	"github.com/JakeFAU/menufetcher/internal/pagecache/pagecachetest"
	"github.com/JakeFAU/menufetcher/internal/resolver"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
	"github.com/JakeFAU/menufetcher/internal/sodexo/sodexotest"
	"github.com/JakeFAU/menufetcher/internal/week"
)

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

var (
	site      = sodexo.Site{ID: "hoch", Name: "Hoch-Shanahan", Sitename: "hmc", TemplateID: 15, MenuIDs: []int{7, 8}}
	wednesday = week.Date(2025, time.January, 8)
	thisWeek  = week.Date(2025, time.January, 6)
	lastWeek  = week.Date(2024, time.December, 30)
	sameWeek  = fixedClock(time.Date(2025, time.January, 10, 15, 0, 0, 0, time.UTC))
	otherWeek = fixedClock(time.Date(2025, time.February, 3, 9, 0, 0, 0, time.UTC))
)

func TestResolvePortalSkipsMalformedRanges(t *testing.T) {
	t.Parallel()

	current := site.Base() + "/images/WeeklyMenu_tcm15-2.htm"
	fetcher := pagecachetest.New(map[string]string{
		site.PortalURL(): sodexotest.PortalPage(sodexo.DefaultPortalSection,
			sodexotest.PortalEntry{Range: "Week of 1/13", Href: "/images/WeeklyMenu_tcm15-3.htm"},
			sodexotest.PortalEntry{Range: "12/30/24 - 1/5/25", Href: "/images/WeeklyMenu_tcm15-1.htm"},
			sodexotest.PortalEntry{Range: "1/6/25 - 1/12/25", Href: "/images/WeeklyMenu_tcm15-2.htm"},
		),
		current + "?forcedesktop=true": sodexotest.MenuDocument(thisWeek),
	})
	core, logs := observer.New(zap.WarnLevel)

	r := resolver.Default(site, otherWeek, zap.New(core))
	got, err := r.Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.NoError(t, err)
	assert.Equal(t, current+"?forcedesktop=true", got)

	skipped := logs.FilterMessage("skipping portal entry").All()
	require.Len(t, skipped, 1)
	assert.Equal(t, "Week of 1/13", skipped[0].ContextMap()["range"])
	assert.Equal(t, 0, fetcher.Calls(site.MenuURL(7)))
}

func TestResolveFallsBackToFrontpageInCurrentWeek(t *testing.T) {
	t.Parallel()

	linked := site.MenuURL(121817)
	fetcher := pagecachetest.New(map[string]string{
		site.PortalURL():    "<html><body><p>Under construction</p></body></html>",
		site.FrontpageURL(): sodexotest.FrontPage("/images/WeeklyMenu_tcm99-1.htm", "/Images/WeeklyMenu_tcm15-121817.htm"),
		site.Base() + "/Images/WeeklyMenu_tcm15-121817.htm": sodexotest.MenuDocument(thisWeek),
		linked: sodexotest.MenuDocument(lastWeek),
	})

	r := resolver.Default(site, sameWeek, nil)
	got, err := r.Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.NoError(t, err)
	assert.Equal(t, site.Base()+"/Images/WeeklyMenu_tcm15-121817.htm", got)
}

func TestResolveSkipsFrontpageOutsideCurrentWeek(t *testing.T) {
	t.Parallel()

	fetcher := pagecachetest.New(map[string]string{
		site.FrontpageURL(): sodexotest.FrontPage("/images/WeeklyMenu_tcm15-5.htm"),
		site.MenuURL(8):     sodexotest.MenuDocument(thisWeek),
	})

	r := resolver.Default(site, otherWeek, nil)
	got, err := r.Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.NoError(t, err)
	assert.Equal(t, site.MenuURL(8), got)
	assert.Equal(t, 0, fetcher.Calls(site.FrontpageURL()))
	assert.Equal(t, 1, fetcher.Calls(site.MenuURL(7)))
}

func TestResolveNeverReturnsUnverifiedCandidate(t *testing.T) {
	t.Parallel()

	stale := site.Base() + "/images/WeeklyMenu_tcm15-1.htm?forcedesktop=true"
	fetcher := pagecachetest.New(map[string]string{
		site.PortalURL(): sodexotest.PortalPage(sodexo.DefaultPortalSection,
			sodexotest.PortalEntry{Range: "1/6/25 - 1/12/25", Href: "/images/WeeklyMenu_tcm15-1.htm"},
		),
		stale:           sodexotest.MenuDocument(lastWeek),
		site.MenuURL(7): sodexotest.MenuDocument(lastWeek),
		site.MenuURL(8): sodexotest.MenuDocument(lastWeek),
	})

	r := resolver.Default(site, otherWeek, nil)
	_, err := r.Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.Error(t, err)
	assert.ErrorIs(t, err, menu.ErrSourceUnavailable)
	assert.Contains(t, err.Error(), "menu is not available yet")
}

func TestResolveKeepsFirstError(t *testing.T) {
	t.Parallel()

	// The portal is reachable but has no listing; every bruteforce id is missing.
	fetcher := pagecachetest.New(map[string]string{
		site.PortalURL(): "<html><body></body></html>",
	})

	r := resolver.Default(site, otherWeek, nil)
	_, err := r.Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.Error(t, err)
	assert.ErrorIs(t, err, menu.ErrSourceUnavailable)
	assert.ErrorIs(t, err, menu.ErrMalformedSource)
	assert.Contains(t, err.Error(), "hoch: fetching menu failed: portal:")
	assert.Equal(t, 1, fetcher.Calls(site.MenuURL(7)))
	assert.Equal(t, 1, fetcher.Calls(site.MenuURL(8)))
}

func TestResolveReportsDateNotListed(t *testing.T) {
	t.Parallel()

	fetcher := pagecachetest.New(map[string]string{
		site.PortalURL(): sodexotest.PortalPage(sodexo.DefaultPortalSection,
			sodexotest.PortalEntry{Range: "12/30/24 - 1/5/25", Href: "/images/WeeklyMenu_tcm15-1.htm"},
		),
		site.MenuURL(7): sodexotest.MenuDocument(lastWeek),
		site.MenuURL(8): sodexotest.MenuDocument(lastWeek),
	})

	r := resolver.Default(site, otherWeek, nil)
	_, err := r.Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.Error(t, err)
	assert.ErrorIs(t, err, menu.ErrNotFoundForDate)
}

func TestResolveHonorsPortalSectionOverride(t *testing.T) {
	t.Parallel()

	custom := site
	custom.PortalSection = "menus"
	fetcher := pagecachetest.New(map[string]string{
		custom.PortalURL(): sodexotest.PortalPage("menus",
			sodexotest.PortalEntry{Range: "1/6/2025 - 1/12/2025", Href: "https://hmc.sodexomyway.com/images/WeeklyMenu_tcm15-4.htm"},
		),
		custom.Base() + "/images/WeeklyMenu_tcm15-4.htm?forcedesktop=true": sodexotest.MenuDocument(thisWeek),
	})

	got, err := resolver.Default(custom, otherWeek, nil).Resolve(context.Background(), pagecache.New(fetcher), wednesday)
	require.NoError(t, err)
	assert.Equal(t, custom.Base()+"/images/WeeklyMenu_tcm15-4.htm?forcedesktop=true", got)
}

func TestResolveCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := resolver.Default(site, otherWeek, nil).Resolve(ctx, pagecache.New(pagecachetest.New(nil)), wednesday)
	require.ErrorIs(t, err, context.Canceled)
}

func TestVerifyNormalizesWhitespace(t *testing.T) {
	t.Parallel()

	url := site.MenuURL(7)
	fetcher := pagecachetest.New(map[string]string{
		url: `<table><tr><td class="titlecell">Week of</td><td class="titlecell">Monday   January
		6,  2025</td></tr></table>`,
	})
	pages := pagecache.New(fetcher)

	assert.Equal(t, resolver.Verified, resolver.Verify(context.Background(), pages, url, wednesday).Verdict)
	assert.Equal(t, resolver.WrongWeek, resolver.Verify(context.Background(), pages, url, week.Date(2025, time.January, 13)).Verdict)

	failed := resolver.Verify(context.Background(), pages, site.MenuURL(8), wednesday)
	assert.Equal(t, resolver.Failed, failed.Verdict)
	assert.ErrorIs(t, failed.Err, menu.ErrSourceUnavailable)
}

func TestDefaultStrategyOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"portal", "frontpage", "bruteforce"}, resolver.Default(site, nil, nil).Strategies())
	assert.False(t, resolver.Frontpage{Site: site}.Applicable(wednesday))
	assert.Equal(t, "verified", resolver.Verified.String())
}
