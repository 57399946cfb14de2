// Package feed decodes the script-data menu feed some facilities publish instead
// of, or in addition to, weekly menu documents.
//
// The feed is a script of literal assignments. Two of them matter: menuData,
// the week → menu → day tab → group → station → product tree, and aData, the
// item table keyed by product id. Objects keyed by integers are read in
// ascending key order and arrays in index order.
package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/titanous/json5"
	"go.uber.org/zap"

	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/metrics"
	"github.com/JakeFAU/menufetcher/internal/week"
)

// Names of the assignments the feed must carry.
const (
	MenuVariable  = "menuData"
	ItemsVariable = "aData"
)

// Feed is a decoded feed script.
type Feed struct {
	weeks  indexed[weekRecord]
	items  map[string]itemRecord
	logger *zap.Logger
}

type weekRecord struct {
	StartDate string              `json:"startDate"`
	EndDate   string              `json:"endDate"`
	Menus     indexed[menuRecord] `json:"menus"`
}

type menuRecord struct {
	Tabs indexed[tabRecord] `json:"tabs"`
}

type tabRecord struct {
	Groups indexed[groupRecord] `json:"groups"`
}

type groupRecord struct {
	Title    string                 `json:"title"`
	Category indexed[stationRecord] `json:"category"`
}

type stationRecord struct {
	Title    string       `json:"title"`
	Products indexed[ref] `json:"products"`
}

type itemRecord struct {
	Name        ref `json:"22"`
	Description ref `json:"23"`
	Tags        ref `json:"30"`
}

// Parse decodes a feed script. A missing assignment or a value of the wrong
// shape wraps menu.ErrMalformedSource.
func Parse(src string, logger *zap.Logger) (*Feed, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	assignments, err := Assignments(src)
	if err != nil {
		return nil, err
	}
	values := make(map[string]string, len(assignments))
	for _, a := range assignments {
		values[a.Name] = a.Literal
	}

	f := &Feed{logger: logger}
	if err := decodeVariable(values, MenuVariable, &f.weeks); err != nil {
		return nil, err
	}
	if err := decodeVariable(values, ItemsVariable, &f.items); err != nil {
		return nil, err
	}
	return f, nil
}

func decodeVariable(values map[string]string, name string, target any) error {
	literal, ok := values[name]
	if !ok {
		return fmt.Errorf("%w: feed has no %s", menu.ErrMalformedSource, name)
	}
	var generic any
	if err := json5.Unmarshal([]byte(literal), &generic); err != nil {
		return fmt.Errorf("%w: decode %s: %w", menu.ErrMalformedSource, name, err)
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return fmt.Errorf("%w: re-encode %s: %w", menu.ErrMalformedSource, name, err)
	}
	if err := json.Unmarshal(canonical, target); err != nil {
		return fmt.Errorf("%w: %s has an unexpected shape: %w", menu.ErrMalformedSource, name, err)
	}
	return nil
}

// Meals returns the raw meals the feed lists for day. Weeks with unreadable
// bounds are skipped. A day outside every week, or without a tab, wraps
// menu.ErrNotFoundForDate.
func (f *Feed) Meals(day time.Time) ([]menu.RawMeal, error) {
	for _, w := range f.weeks {
		window, err := week.ParseISORange(w.Value.StartDate, w.Value.EndDate)
		if err != nil {
			f.logger.Warn("skipping feed week", zap.String("week", w.Key), zap.Error(err))
			continue
		}
		if !window.Contains(day) {
			continue
		}
		if len(w.Value.Menus) == 0 {
			return nil, fmt.Errorf("%w: feed week %s has no menus", menu.ErrNotFoundForDate, window)
		}
		offset := strconv.Itoa(window.Offset(day))
		tab, ok := w.Value.Menus[0].Value.Tabs.get(offset)
		if !ok {
			return nil, fmt.Errorf("%w: feed week %s has no tab %s", menu.ErrNotFoundForDate, window, offset)
		}
		return f.meals(tab), nil
	}
	return nil, fmt.Errorf("%w: no feed week covers %s", menu.ErrNotFoundForDate, day.Format(time.DateOnly))
}

func (f *Feed) meals(tab tabRecord) []menu.RawMeal {
	meals := make([]menu.RawMeal, 0, len(tab.Groups))
	for _, g := range tab.Groups {
		meal := menu.RawMeal{Title: g.Value.Title}
		for _, c := range g.Value.Category {
			station := menu.RawStation{Name: strings.TrimSpace(c.Value.Title)}
			for _, p := range c.Value.Products {
				id := string(p.Value)
				item, ok := f.items[id]
				if !ok {
					f.logger.Warn("feed references unknown item", zap.String("item_id", id), zap.String("station", station.Name))
					metrics.ObserveDanglingItem()
					continue
				}
				station.Items = append(station.Items, menu.RawItem{
					Name:        string(item.Name),
					Description: string(item.Description),
					Tags:        strings.Fields(string(item.Tags)),
				})
			}
			meal.Stations = append(meal.Stations, station)
		}
		meals = append(meals, meal)
	}
	return meals
}

// entry is one member of an array or integer-keyed object.
type entry[T any] struct {
	Key   string
	Value T
}

// indexed decodes from either an array or an object, keeping members in
// script iteration order.
type indexed[T any] []entry[T]

func (x *indexed[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*x = nil
		return nil
	case len(data) > 0 && data[0] == '[':
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(indexed[T], 0, len(items))
		for i, v := range items {
			out = append(out, entry[T]{Key: strconv.Itoa(i), Value: v})
		}
		*x = out
		return nil
	case len(data) > 0 && data[0] == '{':
		var members map[string]T
		if err := json.Unmarshal(data, &members); err != nil {
			return err
		}
		keys := make([]string, 0, len(members))
		for k := range members {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
		out := make(indexed[T], 0, len(keys))
		for _, k := range keys {
			out = append(out, entry[T]{Key: k, Value: members[k]})
		}
		*x = out
		return nil
	default:
		return fmt.Errorf("expected an array or object, got %.20s", data)
	}
}

func (x indexed[T]) get(key string) (T, bool) {
	for _, e := range x {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero T
	return zero, false
}

// keyLess orders property names the way a script engine iterates them:
// array-index keys ascending, then the rest.
func keyLess(a, b string) bool {
	ai, aok := arrayIndex(a)
	bi, bok := arrayIndex(b)
	switch {
	case aok && bok:
		return ai < bi
	case aok != bok:
		return aok
	default:
		return a < b
	}
}

func arrayIndex(key string) (uint64, bool) {
	if key == "" || (len(key) > 1 && key[0] == '0') {
		return 0, false
	}
	n, err := strconv.ParseUint(key, 10, 32)
	if err != nil || n == 1<<32-1 {
		return 0, false
	}
	return n, true
}

// ref is a scalar that may be written as a string or a number.
type ref string

func (r *ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*r = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = ref(s)
	case len(data) > 0 && (data[0] == '-' || data[0] >= '0' && data[0] <= '9'):
		*r = ref(data)
	default:
		return fmt.Errorf("expected a string or number, got %.20s", data)
	}
	return nil
}
