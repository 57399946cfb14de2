package cmd

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/menufetcher/internal/app"
	"github.com/JakeFAU/menufetcher/internal/menu"
	"github.com/JakeFAU/menufetcher/internal/sodexo"
)

var (
	wednesday = time.Date(2025, time.January, 8, 0, 0, 0, 0, time.UTC)
	hochMenu  = menu.Menu{
		Name:      "Hoch-Shanahan",
		ID:        "hoch",
		SourceURL: "https://hmc.sodexomyway.com/images/WeeklyMenu_tcm15-121814.htm?forcedesktop=true#wednesday",
		Meals: []menu.Meal{{
			Name: menu.MealBreakfast,
			Stations: []menu.Station{{Name: "Grill", Items: []menu.MenuItem{
				{Name: "Pancakes", Tags: menu.Tags{"Vegan", "Vegetarian"}},
			}}},
		}},
	}
	fraryMenu = menu.Menu{
		Name:      "Frary",
		ID:        "frary",
		SourceURL: "https://pomona.sodexomyway.com/dining-choices/index.html?forcedesktop=true#wednesday",
		Meals:     []menu.Meal{},
	}
)

func TestFetchPrintsTables(t *testing.T) {
	a := &MockApp{}
	a.On("Menu", mock.Anything, "hoch", wednesday).Return(hochMenu, nil).Once()
	a.On("Menu", mock.Anything, "frary", wednesday).Return(fraryMenu, nil).Once()
	a.On("Close")
	withApp(t, a, nil)

	out, err := execute(t, "fetch", "hoch", "frary", "--date", "2025-01-08")
	require.NoError(t, err)
	assert.Contains(t, out, "Hoch-Shanahan | Wednesday, January 8, 2025")
	assert.Contains(t, out, "Pancakes")
	assert.Contains(t, out, "Vegan, Vegetarian")
	assert.Contains(t, out, "no menu available")
	assert.Less(t, strings.Index(out, "Hoch-Shanahan"), strings.Index(out, "Frary"))
	a.AssertExpectations(t)
}

func TestFetchAllAsJSONDefaultsToToday(t *testing.T) {
	a := &MockApp{}
	a.On("Today").Return(wednesday)
	a.On("Facilities").Return([]sodexo.Site{{ID: "frary"}, {ID: "hoch"}})
	a.On("Menu", mock.Anything, "frary", wednesday).Return(fraryMenu, nil).Once()
	a.On("Menu", mock.Anything, "hoch", wednesday).Return(hochMenu, nil).Once()
	a.On("Close")
	withApp(t, a, nil)

	out, err := execute(t, "fetch", "--all", "--output", "json")
	require.NoError(t, err)

	var got fetchResult
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "2025-01-08", got.Date)
	require.Len(t, got.Menus, 2)
	assert.Equal(t, "frary", got.Menus[0].ID)
	assert.Equal(t, hochMenu, got.Menus[1])
	a.AssertExpectations(t)
}

func TestFetchRejectsBadInvocations(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "no facility", args: []string{"fetch", "--date", "2025-01-08"}, want: "name at least one facility"},
		{name: "all with names", args: []string{"fetch", "--all", "hoch", "--date", "2025-01-08"}, want: "--all cannot be combined"},
		{name: "bad date", args: []string{"fetch", "hoch", "--date", "01/08/2025"}, want: "parse --date"},
		{name: "bad output", args: []string{"fetch", "hoch", "--output", "html"}, want: `unknown output format "html"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &MockApp{}
			a.On("Close")
			withApp(t, a, nil)

			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFetchUnknownFacility(t *testing.T) {
	a := &MockApp{}
	a.On("Menu", mock.Anything, "collins", wednesday).Return(menu.Menu{}, app.ErrUnknownFacility)
	a.On("Close")
	withApp(t, a, nil)

	_, err := execute(t, "fetch", "collins", "--date", "2025-01-08")
	require.Error(t, err)
	assert.ErrorIs(t, err, app.ErrUnknownFacility)
}
