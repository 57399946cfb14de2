// Package sodexo knows the URL layout of Sodexo "myway" dining sites: where the
// portal, front page, weekly menu documents and the menu feed live, and which
// character encoding each document class is served in.
package sodexo

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/week"
)

// Character encodings declared per document class.
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1252 = "windows-1252"
)

// DefaultPortalSection is the listing block on the portal page that links weekly menus.
const DefaultPortalSection = "accordion_3543"

const desktopQuery = "forcedesktop=true"

// DefaultMenuIDs are weekly menu document ids observed in the wild. They go stale
// and are meant to be overridden from configuration.
var DefaultMenuIDs = []int{109893, 110702, 121814, 121817, 121818, 121819}

var menuDocumentPath = regexp.MustCompile(`(?i)/images/WeeklyMenu_tcm[0-9]+-[0-9]+\.htm$`)

// Site describes one facility hosted on a Sodexo site.
type Site struct {
	ID            string
	Name          string
	Sitename      string
	TemplateID    int
	FeedName      string
	MenuIDs       []int
	BaseURL       string
	PortalSection string
}

// Facility returns the identity stamped on every menu for this site.
func (s Site) Facility() menu.Facility {
	return menu.Facility{Name: s.Name, ID: s.ID}
}

// Base returns the scheme and host all site URLs hang off.
func (s Site) Base() string {
	if s.BaseURL != "" {
		return strings.TrimRight(s.BaseURL, "/")
	}
	return "https://" + s.Sitename + ".sodexomyway.com"
}

// PortalURL is the dining-choices page listing weekly menus by date range.
func (s Site) PortalURL() string {
	return s.Base() + "/dining-choices/index.html?" + desktopQuery
}

// PortalSelector locates the listing block on the portal page.
func (s Site) PortalSelector() string {
	section := s.PortalSection
	if section == "" {
		section = DefaultPortalSection
	}
	return "#" + section
}

// FrontpageURL is the landing page, which sometimes links this week's menu.
func (s Site) FrontpageURL() string {
	return s.Base() + "/?" + desktopQuery
}

// MenuURL builds the weekly menu document URL for a numeric document id.
func (s Site) MenuURL(menuID int) string {
	return fmt.Sprintf("%s/images/WeeklyMenu_tcm%d-%d.htm", s.Base(), s.TemplateID, menuID)
}

// MenuLinkPattern matches menu document paths for this site's template inside raw markup.
func (s Site) MenuLinkPattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`/[Ii]mages/WeeklyMenu_tcm%d-([0-9]+)\.htm`, s.TemplateID))
}

// CandidateIDs returns the bruteforce list, falling back to DefaultMenuIDs.
func (s Site) CandidateIDs() []int {
	if len(s.MenuIDs) > 0 {
		return s.MenuIDs
	}
	return DefaultMenuIDs
}

// HasFeed reports whether the facility publishes the script-data feed.
func (s Site) HasFeed() bool {
	return s.FeedName != ""
}

// FeedURL is the script payload behind the feed display page.
func (s Site) FeedURL() string {
	return s.Base() + "/smgmenu/json/" + url.PathEscape(s.FeedName) + "?" + desktopQuery
}

// PublicFeedURL is the human-facing display page of the feed.
func (s Site) PublicFeedURL() string {
	return s.Base() + "/smgmenu/display/" + url.PathEscape(s.FeedName) + "?" + desktopQuery
}

// PublicMenuURL qualifies a menu document URL with the day's anchor.
func (s Site) PublicMenuURL(documentURL string, day time.Time) string {
	if documentURL == "" {
		documentURL = s.PortalURL()
	}
	return documentURL + "#" + week.DayName(day)
}

// WithDesktop appends the desktop query flag the site needs to serve full markup.
func WithDesktop(rawURL string) string {
	if strings.Contains(rawURL, desktopQuery) {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + desktopQuery
}

// CharsetFor picks the declared encoding of a URL's document class: weekly menu
// documents are served in windows-1252, everything else in UTF-8.
func CharsetFor(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CharsetUTF8
	}
	if menuDocumentPath.MatchString(u.Path) {
		return CharsetWindows1252
	}
	return CharsetUTF8
}

// DocumentClass labels a URL for metrics.
func DocumentClass(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	switch {
	case menuDocumentPath.MatchString(u.Path):
		return "menu"
	case strings.HasPrefix(u.Path, "/dining-choices"):
		return "portal"
	case strings.HasPrefix(u.Path, "/smgmenu"):
		return "feed"
	case u.Path == "" || u.Path == "/":
		return "frontpage"
	default:
		return "other"
	}
}
