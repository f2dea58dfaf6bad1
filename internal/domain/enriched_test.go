package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekLabel(t *testing.T) {
	assert.Equal(t, "2023-W05", WeekLabel(2023, 5))
	assert.Equal(t, "2022-W52", WeekLabel(2022, 52))
	assert.Equal(t, "2024-W01", WeekLabel(2024, 1))
}

func TestWeekLabelSortsChronologically(t *testing.T) {
	labels := []string{
		WeekLabel(2023, 9),
		WeekLabel(2022, 52),
		WeekLabel(2023, 10),
		WeekLabel(2023, 1),
	}
	sort.Strings(labels)
	assert.Equal(t, []string{"2022-W52", "2023-W01", "2023-W09", "2023-W10"}, labels)
}

func TestParseWeekLabelRoundTrip(t *testing.T) {
	for _, tc := range []struct{ year, week int }{
		{2022, 52}, {2023, 1}, {2023, 9}, {2024, 53},
	} {
		year, week, err := ParseWeekLabel(WeekLabel(tc.year, tc.week))
		require.NoError(t, err)
		assert.Equal(t, tc.year, year)
		assert.Equal(t, tc.week, week)
	}

	_, _, err := ParseWeekLabel("garbage")
	assert.Error(t, err)
}
