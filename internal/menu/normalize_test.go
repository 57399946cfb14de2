package menu

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tuesday  = time.Date(2025, time.January, 7, 0, 0, 0, 0, time.UTC)
	saturday = time.Date(2025, time.January, 11, 0, 0, 0, 0, time.UTC)
	sunday   = time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC)
)

func TestMealName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		title string
		day   time.Time
		want  string
	}{
		{name: "upper case breakfast", title: "BREAKFAST", day: tuesday, want: MealBreakfast},
		{name: "weekday lunch stays", title: "Lunch", day: tuesday, want: MealLunch},
		{name: "saturday lunch", title: "LUNCH", day: saturday, want: MealBrunch},
		{name: "sunday lunch", title: "lunch", day: sunday, want: MealBrunch},
		{name: "sunday dinner untouched", title: "DINNER", day: sunday, want: MealDinner},
		{name: "multi word", title: "  LATE   NIGHT ", day: tuesday, want: "Late Night"},
		{name: "blank", title: "   ", day: tuesday, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MealName(tt.title, tt.day))
		})
	}
}

func TestNewTagsDeduplicates(t *testing.T) {
	t.Parallel()

	tags := NewTags("Vegan", "Vegan", " ", "Gluten Free", "")
	require.Len(t, tags, 2)
	assert.True(t, tags.Has("Vegan"))
	assert.True(t, tags.Has("Gluten Free"))
	assert.False(t, tags.Has("Halal"))

	assert.Len(t, NewTags("Vegan", "Vegan"), 1)
}

func TestNormalizePreservesOrderAndMergesDuplicates(t *testing.T) {
	t.Parallel()

	facility := Facility{Name: "Hoch-Shanahan", ID: "hoch"}
	raw := []RawMeal{
		{
			Title: "BREAKFAST",
			Stations: []RawStation{
				{Name: "Grill", Items: []RawItem{{Name: "Pancakes"}, {Name: "  Bacon  "}}},
				{Name: "", Items: []RawItem{{Name: "Fruit", Tags: []string{"Vegan", "Vegan"}}}},
			},
		},
		{
			Title: "LUNCH",
			Stations: []RawStation{
				{Name: "Deli", Items: []RawItem{{Name: "Turkey Club"}, {Name: ""}}},
			},
		},
		{
			Title: "Brunch",
			Stations: []RawStation{
				{Name: "Omelets", Items: []RawItem{{Name: "Western Omelet"}}},
			},
		},
	}

	got := Normalize(facility, "https://example.com/menu.htm#saturday", saturday, raw)

	want := Menu{
		Name:      "Hoch-Shanahan",
		ID:        "hoch",
		SourceURL: "https://example.com/menu.htm#saturday",
		Meals: []Meal{
			{
				Name: MealBreakfast,
				Stations: []Station{
					{Name: "Grill", Items: []MenuItem{
						{Name: "Pancakes", Tags: Tags{}},
						{Name: "Bacon", Tags: Tags{}},
					}},
					{Items: []MenuItem{{Name: "Fruit", Tags: Tags{"Vegan"}}}},
				},
			},
			{
				Name: MealBrunch,
				Stations: []Station{
					{Name: "Deli", Items: []MenuItem{{Name: "Turkey Club", Tags: Tags{}}}},
					{Name: "Omelets", Items: []MenuItem{{Name: "Western Omelet", Tags: Tags{}}}},
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize() mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, got.Meals[0].Stations[1].Named())
}

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	got := Normalize(Facility{Name: "Frary", ID: "frary"}, "https://example.com", tuesday, nil)
	require.NotNil(t, got.Meals)
	assert.True(t, got.Empty())
	assert.Equal(t, "frary", got.ID)
}
