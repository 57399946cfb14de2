// Package menu defines the canonical menu model shared by every extraction backend
// and the normalizer that assembles it from raw extracted records.
package menu

import (
	"sort"
	"strings"
	"time"
)

// Canonical meal names. Brunch is only ever derived from Lunch on weekends.
const (
	MealBreakfast = "Breakfast"
	MealLunch     = "Lunch"
	MealDinner    = "Dinner"
	MealBrunch    = "Brunch"
)

// Menu is the resolved menu of one facility for one day.
type Menu struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	SourceURL string `json:"source_url"`
	Meals     []Meal `json:"meals"`
}

// Empty reports whether the menu carries no meals.
func (m Menu) Empty() bool {
	return len(m.Meals) == 0
}

// Meal groups the stations served during one meal period.
type Meal struct {
	Name        string     `json:"name"`
	Stations    []Station  `json:"stations"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	Description string     `json:"description"`
}

// Station is a serving line within a meal. An empty Name means the source did not
// expose a header for it.
type Station struct {
	Name  string     `json:"name,omitempty"`
	Items []MenuItem `json:"items"`
}

// Named reports whether the station header was resolved.
func (s Station) Named() bool {
	return s.Name != ""
}

// MenuItem is a single dish.
type MenuItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tags        Tags   `json:"tags"`
}

// Tags is a set of dietary markers kept sorted and free of duplicates so that
// two items with the same markers compare equal.
type Tags []string

// NewTags builds a tag set, dropping blanks and duplicates.
func NewTags(raw ...string) Tags {
	seen := make(map[string]struct{}, len(raw))
	out := make(Tags, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// Has reports whether tag is in the set.
func (t Tags) Has(tag string) bool {
	i := sort.SearchStrings(t, tag)
	return i < len(t) && t[i] == tag
}
