package sodexo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSiteURLs(t *testing.T) {
	t.Parallel()

	s := Site{ID: "hoch", Name: "Hoch-Shanahan", Sitename: "hmc", TemplateID: 15, FeedName: "hoch"}

	assert.Equal(t, "https://hmc.sodexomyway.com", s.Base())
	assert.Equal(t, "https://hmc.sodexomyway.com/dining-choices/index.html?forcedesktop=true", s.PortalURL())
	assert.Equal(t, "https://hmc.sodexomyway.com/?forcedesktop=true", s.FrontpageURL())
	assert.Equal(t, "https://hmc.sodexomyway.com/images/WeeklyMenu_tcm15-121814.htm", s.MenuURL(121814))
	assert.Equal(t, "https://hmc.sodexomyway.com/smgmenu/json/hoch?forcedesktop=true", s.FeedURL())
	assert.Equal(t, "https://hmc.sodexomyway.com/smgmenu/display/hoch?forcedesktop=true", s.PublicFeedURL())
	assert.Equal(t, "#accordion_3543", s.PortalSelector())
	assert.Equal(t, DefaultMenuIDs, s.CandidateIDs())

	wed := time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://x/m.htm#wednesday", s.PublicMenuURL("https://x/m.htm", wed))
	assert.Equal(t, s.PortalURL()+"#wednesday", s.PublicMenuURL("", wed))
}

func TestSiteOverrides(t *testing.T) {
	t.Parallel()

	s := Site{Sitename: "hmc", TemplateID: 15, BaseURL: "http://127.0.0.1:8080/", MenuIDs: []int{1, 2}, PortalSection: "menus"}
	assert.Equal(t, "http://127.0.0.1:8080", s.Base())
	assert.Equal(t, []int{1, 2}, s.CandidateIDs())
	assert.Equal(t, "#menus", s.PortalSelector())
	assert.False(t, s.HasFeed())
}

func TestMenuLinkPattern(t *testing.T) {
	t.Parallel()

	s := Site{TemplateID: 15}
	markup := `<a href="/Images/WeeklyMenu_tcm16-1.htm">other</a><a href="/images/WeeklyMenu_tcm15-121817.htm">menu</a>`
	m := s.MenuLinkPattern().FindStringSubmatch(markup)
	if assert.Len(t, m, 2) {
		assert.Equal(t, "/images/WeeklyMenu_tcm15-121817.htm", m[0])
		assert.Equal(t, "121817", m[1])
	}
}

func TestCharsetFor(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"https://hmc.sodexomyway.com/images/WeeklyMenu_tcm15-121814.htm":                   CharsetWindows1252,
		"https://hmc.sodexomyway.com/Images/WeeklyMenu_tcm15-121814.htm?forcedesktop=true": CharsetWindows1252,
		"https://hmc.sodexomyway.com/dining-choices/index.html?forcedesktop=true":          CharsetUTF8,
		"https://hmc.sodexomyway.com/?forcedesktop=true":                                   CharsetUTF8,
		"://bad": CharsetUTF8,
	}
	for raw, want := range tests {
		assert.Equal(t, want, CharsetFor(raw), raw)
	}
}

func TestDocumentClassAndDesktop(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "menu", DocumentClass("https://a/images/WeeklyMenu_tcm1-2.htm"))
	assert.Equal(t, "portal", DocumentClass("https://a/dining-choices/index.html"))
	assert.Equal(t, "feed", DocumentClass("https://a/smgmenu/json/x"))
	assert.Equal(t, "frontpage", DocumentClass("https://a/?forcedesktop=true"))
	assert.Equal(t, "other", DocumentClass("https://a/about"))

	assert.Equal(t, "https://a/m.htm?forcedesktop=true", WithDesktop("https://a/m.htm"))
	assert.Equal(t, "https://a/m.htm?x=1&forcedesktop=true", WithDesktop("https://a/m.htm?x=1"))
	assert.Equal(t, "https://a/m.htm?forcedesktop=true", WithDesktop("https://a/m.htm?forcedesktop=true"))
}
