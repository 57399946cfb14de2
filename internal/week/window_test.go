package week

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/menufetcher/internal/menu"
)

func TestParseRange(t *testing.T) {
	t.Parallel()

	w, err := ParseRange("9/1/24 - 9/7/24")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.September, 1), w.Start)
	assert.Equal(t, Date(2024, time.September, 7), w.End)

	w, err = ParseRange(" 12/30/2024 - 1/5/2025 ")
	require.NoError(t, err)
	assert.Equal(t, Date(2024, time.December, 30), w.Start)
	assert.Equal(t, Date(2025, time.January, 5), w.End)
}

func TestParseRangeRejectsMalformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		"9/1/24 9/7/24",
		"Week of 9/1/24",
		"13/1/24 - 13/7/24",
		"2/30/24 - 3/6/24",
		"9/7/24 - 9/1/24",
		"",
	} {
		raw := raw
		t.Run(raw, func(t *testing.T) {
			t.Parallel()
			_, err := ParseRange(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, menu.ErrMalformedSource))
		})
	}
}

func TestWindowContainsIsInclusive(t *testing.T) {
	t.Parallel()

	w := Window{Start: Date(2025, time.January, 6), End: Date(2025, time.January, 12)}
	assert.True(t, w.Contains(Date(2025, time.January, 6)))
	assert.True(t, w.Contains(Date(2025, time.January, 8)))
	assert.True(t, w.Contains(time.Date(2025, time.January, 12, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(Date(2025, time.January, 5)))
	assert.False(t, w.Contains(Date(2025, time.January, 13)))
	assert.Equal(t, 2, w.Offset(Date(2025, time.January, 8)))
}

func TestMondayAndLabel(t *testing.T) {
	t.Parallel()

	wednesday := Date(2025, time.January, 8)
	sunday := Date(2025, time.January, 12)
	assert.Equal(t, Date(2025, time.January, 6), Monday(wednesday))
	assert.Equal(t, Date(2025, time.January, 6), Monday(sunday))
	assert.Equal(t, "Monday January 6, 2025", Label(wednesday))
	assert.Equal(t, "Monday December 30, 2024", Label(Date(2025, time.January, 1)))
	assert.True(t, SameWeek(wednesday, sunday))
	assert.False(t, SameWeek(sunday, Date(2025, time.January, 13)))
}

func TestDayHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, IsWeekend(Date(2025, time.January, 11)))
	assert.False(t, IsWeekend(Date(2025, time.January, 10)))
	assert.Equal(t, "wednesday", DayName(Date(2025, time.January, 8)))
}

func TestParseISORange(t *testing.T) {
	t.Parallel()

	w, err := ParseISORange("2025-01-06", "2025-01-12T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-06..2025-01-12", w.String())

	_, err = ParseISORange("01/06/2025", "2025-01-12")
	assert.ErrorIs(t, err, menu.ErrMalformedSource)
}
