package menu

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Facility identifies the dining location a menu belongs to.
type Facility struct {
	Name string
	ID   string
}

// RawMeal is a meal block as an extractor found it, before any naming rules apply.
type RawMeal struct {
	Title    string
	Stations []RawStation
}

// RawStation is a station block in source order.
type RawStation struct {
	Name  string
	Items []RawItem
}

// RawItem is an item row in source order.
type RawItem struct {
	Name        string
	Description string
	Tags        []string
}

// Normalize assembles raw records into a Menu. Source order is preserved, duplicate
// meal names are merged into their first occurrence and items without a name are
// dropped. A nil or empty input yields a Menu without meals.
func Normalize(facility Facility, sourceURL string, day time.Time, raw []RawMeal) Menu {
	out := Menu{
		Name:      facility.Name,
		ID:        facility.ID,
		SourceURL: sourceURL,
		Meals:     []Meal{},
	}
	index := make(map[string]int, len(raw))
	for _, rm := range raw {
		name := MealName(rm.Title, day)
		if name == "" {
			continue
		}
		stations := normalizeStations(rm.Stations)
		if i, ok := index[name]; ok {
			out.Meals[i].Stations = append(out.Meals[i].Stations, stations...)
			continue
		}
		index[name] = len(out.Meals)
		out.Meals = append(out.Meals, Meal{Name: name, Stations: stations})
	}
	return out
}

func normalizeStations(raw []RawStation) []Station {
	stations := make([]Station, 0, len(raw))
	for _, rs := range raw {
		items := make([]MenuItem, 0, len(rs.Items))
		for _, ri := range rs.Items {
			name := collapse(ri.Name)
			if name == "" {
				continue
			}
			items = append(items, MenuItem{
				Name:        name,
				Description: collapse(ri.Description),
				Tags:        NewTags(ri.Tags...),
			})
		}
		if len(items) == 0 && collapse(rs.Name) == "" {
			continue
		}
		stations = append(stations, Station{Name: collapse(rs.Name), Items: items})
	}
	return stations
}

// MealName canonicalizes a source meal title: whitespace collapsed, Title-cased, and
// Lunch relabeled Brunch on Saturdays and Sundays.
func MealName(title string, day time.Time) string {
	title = collapse(title)
	if title == "" {
		return ""
	}
	name := cases.Title(language.English).String(title)
	if name == MealLunch && isWeekend(day) {
		return MealBrunch
	}
	return name
}

func isWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
