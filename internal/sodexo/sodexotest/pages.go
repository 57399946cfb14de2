// Package sodexotest fakes a Sodexo dining site for tests: page builders for the
// portal, front page, weekly menu documents and feed script, plus a chi-routed
// httptest server that serves them.
package sodexotest

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// PortalEntry is one listing line on the portal page.
type PortalEntry struct {
	Range string
	Href  string
}

// PortalPage renders a dining-choices page whose listing block has the given id.
func PortalPage(section string, entries ...PortalEntry) string {
	var b strings.Builder
	b.WriteString("<html><body><h1>Dining Choices</h1>\n")
	fmt.Fprintf(&b, "<div id=%q class=\"accordion\">\n<ul>\n", section)
	for _, e := range entries {
		fmt.Fprintf(&b, "<li><a href=%q>%s</a> <span class=\"note\">Weekly Menu</span></li>\n",
			e.Href, html.EscapeString(e.Range))
	}
	b.WriteString("</ul>\n</div></body></html>")
	return b.String()
}

// FrontPage renders a landing page linking the given paths.
func FrontPage(links ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><script>var promo = \"/images/banner.png\";</script></head><body>\n")
	for _, l := range links {
		fmt.Fprintf(&b, "<a class=\"menu-link\" href=%q>This week's menu</a>\n", l)
	}
	b.WriteString("</body></html>")
	return b.String()
}

// Row is a line in a meal block. A non-empty Station opens a new station; Spacer
// renders a row with no station cell.
type Row struct {
	Station string
	Item    string
	Tags    []string
	Spacer  bool
}

// Meal is a meal block marked with brk, lun or din.
type Meal struct {
	Marker string
	Title  string
	Rows   []Row
}

// Day is the container for one weekday, keyed by its lowercase name.
type Day struct {
	Name  string
	Meals []Meal
}

// MenuDocument renders a weekly menu document for the week starting weekOf.
func MenuDocument(weekOf time.Time, days ...Day) string {
	var b strings.Builder
	b.WriteString("<html><body>\n<table class=\"header\"><tr><td class=\"titlecell\">\n")
	fmt.Fprintf(&b, "  Week of\n  %s\n</td></tr></table>\n", weekOf.Format("Monday January 2, 2006"))
	for _, d := range days {
		fmt.Fprintf(&b, "<div id=%q class=\"dayinner\"><table>\n", d.Name)
		for _, m := range d.Meals {
			fmt.Fprintf(&b, "<tr class=%q><td class=\"mealname\">%s<span class=\"hours\">7:00 - 9:00</span></td></tr>\n",
				m.Marker, html.EscapeString(m.Title))
			for _, r := range m.Rows {
				if r.Spacer {
					fmt.Fprintf(&b, "<tr class=%q><td class=\"spacer\">&nbsp;</td></tr>\n", m.Marker)
					continue
				}
				station := ""
				if r.Station != "" {
					station = "|" + html.EscapeString(r.Station)
				}
				fmt.Fprintf(&b, "<tr class=%q><td class=\"station\">%s</td><td class=\"menuitem\"><span>%s</span>",
					m.Marker, station, html.EscapeString(r.Item))
				for _, tag := range r.Tags {
					fmt.Fprintf(&b, " <img class=\"icon\" src=\"/images/icon.png\" alt=%q>", tag)
				}
				b.WriteString("</td></tr>\n")
			}
		}
		b.WriteString("</table></div>\n")
	}
	b.WriteString("</body></html>")
	return b.String()
}

// FeedScript renders a feed payload with one week starting weekOf. Monday's tab
// has breakfast and lunch; the Saturday tab has a lunch. Item 9999 is referenced
// but has no record.
func FeedScript(weekOf time.Time) string {
	start := weekOf.Format(time.DateOnly)
	end := weekOf.AddDate(0, 0, 6).Format(time.DateOnly)
	return fmt.Sprintf(`/* generated menu feed */
var menuData = {
  "0": {
    startDate: '%s',
    endDate: "%sT00:00:00",
    menus: [{
      tabs: {
        "0": {groups: [
          {title: "Breakfast", category: {"0": {title: "Grill", products: ["101", 102]}}},
          {title: "Lunch", category: [
            {title: "Deli", products: {"1": "104", "0": "103"}},
            {title: "Salad Bar", products: ["105"]},
          ]},
        ]},
        "5": {groups: [
          {title: "Lunch", category: [{title: "Omelets", products: ["106", "9999"]}]},
        ]},
      },
    }],
  },
};
// item table
var aData = {
  "101": {"22": "Pancakes", "23": "Buttermilk", "30": "vegetarian"},
  "102": {"22": "Bacon", "23": "", "30": ""},
  "103": {"22": "Turkey Club", "23": "On sourdough", "30": ""},
  "104": {"22": "Veggie Wrap", "23": "", "30": "vegan  vegetarian vegan"},
  "105": {"22": "Garden Salad", "23": "", "30": "vegan"},
  "106": {"22": "Western Omelet", "23": "Ham, peppers", "30": "glutenfree"},
};
`, start, end)
}
