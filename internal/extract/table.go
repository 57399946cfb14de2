// Package extract reads raw meal records out of weekly menu documents.
package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/pagecache"
	"github.com/JakeFAU/menufetcher/internal/week"
)

// Meal block markers in document order, with the title used when a header has none.
var markers = []struct {
	class string
	title string
}{
	{"brk", menu.MealBreakfast},
	{"lun", menu.MealLunch},
	{"din", menu.MealDinner},
}

// Table extracts the meals listed for day from a weekly menu document.
//
// The day lives under an element whose id is the lowercase weekday name. Each
// meal is the set of elements carrying its marker class: the first is the
// header, the rest are rows. A row with a non-empty station cell opens a new
// station. The document is not modified.
func Table(doc *pagecache.Document, day time.Time) ([]menu.RawMeal, error) {
	container := doc.Find("#" + week.DayName(day)).First()
	if container.Length() == 0 {
		return nil, fmt.Errorf("%w: %s has no %s section", menu.ErrMalformedSource, doc.URL, week.DayName(day))
	}

	meals := make([]menu.RawMeal, 0, len(markers))
	for _, m := range markers {
		block := container.Find("." + m.class)
		if block.Length() == 0 {
			continue
		}
		meals = append(meals, readMeal(block, m.title))
	}
	return meals, nil
}

func readMeal(block *goquery.Selection, fallback string) menu.RawMeal {
	title := strings.TrimSpace(pagecache.OwnText(block.First().Find(".mealname").First()))
	if title == "" {
		title = fallback
	}
	meal := menu.RawMeal{Title: title}

	block.Slice(1, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		cell := row.Find(".station").First()
		if cell.Length() == 0 {
			return
		}
		if name := stationName(cell); name != "" || len(meal.Stations) == 0 {
			meal.Stations = append(meal.Stations, menu.RawStation{Name: name})
		}
		item := readItem(row)
		if item.Name == "" {
			return
		}
		current := &meal.Stations[len(meal.Stations)-1]
		current.Items = append(current.Items, item)
	})
	return meal
}

func stationName(cell *goquery.Selection) string {
	name := strings.TrimPrefix(strings.TrimSpace(cell.Text()), "|")
	return collapse(name)
}

func readItem(row *goquery.Selection) menu.RawItem {
	// Strip the station cell from a copy; the cached DOM is shared.
	clone := row.Clone()
	clone.Find(".station").Remove()

	var tags []string
	row.Find(".icon").Each(func(_ int, icon *goquery.Selection) {
		if alt := strings.TrimSpace(icon.AttrOr("alt", "")); alt != "" {
			tags = append(tags, alt)
		}
	})
	return menu.RawItem{Name: collapse(clone.Text()), Tags: tags}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
