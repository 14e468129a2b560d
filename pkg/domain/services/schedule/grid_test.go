package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marchApril() *Grid {
	return NewGrid(MonthWindow(day(2024, 3, 1)), 40)
}

func TestGrid_Columns(t *testing.T) {
	g := marchApril()

	cols := g.Columns()
	require.Len(t, cols, 61)
	assert.Equal(t, day(2024, 3, 1), cols[0])
	assert.Equal(t, day(2024, 4, 30), cols[60])
	assert.Equal(t, 2440.0, g.TotalWidth())

	for i := 1; i < len(cols); i++ {
		assert.Equal(t, 1, DaysBetween(cols[i-1], cols[i]), "gap between %v and %v", cols[i-1], cols[i])
	}

	// callers cannot mutate the grid through Columns
	cols[0] = day(1999, 1, 1)
	assert.Equal(t, day(2024, 3, 1), g.Columns()[0])
}

func TestGrid_ColumnIndex(t *testing.T) {
	g := marchApril()

	testCases := []struct {
		name  string
		in    time.Time
		index int
		found bool
	}{
		{"first day", day(2024, 3, 1), 0, true},
		{"leap day", day(2024, 2, 29), 0, false},
		{"time of day ignored", time.Date(2024, 3, 10, 17, 45, 0, 0, time.UTC), 9, true},
		{"last day", day(2024, 4, 30), 60, true},
		{"after window", day(2024, 5, 1), 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			idx, ok := g.ColumnIndex(tc.in)
			assert.Equal(t, tc.found, ok)
			if tc.found {
				assert.Equal(t, tc.index, idx)
			}
		})
	}
}

func TestGrid_ColumnIndexInViewingLocation(t *testing.T) {
	window := MonthWindow(time.Date(2024, 3, 1, 0, 0, 0, 0, seoul))
	g := NewGrid(window, 40)

	// 20:00 UTC on Mar 1 is Mar 2 in Seoul
	idx, ok := g.ColumnIndex(time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestGrid_XAndWidth(t *testing.T) {
	g := marchApril()

	assert.Equal(t, 360.0, g.XOf(day(2024, 3, 10)))
	assert.Equal(t, 40.0, g.WidthOf(day(2024, 3, 10), day(2024, 3, 10)))
	assert.Equal(t, 400.0, g.WidthOf(day(2024, 3, 1), day(2024, 3, 10)))
	assert.Equal(t, 2440.0, g.WidthOf(day(2024, 3, 1), day(2024, 4, 30)))

	// reversed indexed interval collapses to the minimum bar
	assert.Equal(t, MinBarWidth, g.WidthOf(day(2024, 3, 10), day(2024, 3, 1)))
}

func TestGrid_OutOfWindowEstimates(t *testing.T) {
	g := marchApril()

	// Feb 25 is 5 days before the window: -5/61 * 2440
	assert.InDelta(t, -200.0, g.XOf(day(2024, 2, 25)), 1e-9)
	// 7 days spanning the left edge: 7/61 * 2440
	assert.InDelta(t, 280.0, g.WidthOf(day(2024, 2, 25), day(2024, 3, 2)), 1e-9)
	assert.Greater(t, g.XOf(day(2024, 6, 1)), g.TotalWidth())

	// tiny estimates are floored and never negative
	assert.Equal(t, MinBarWidth, g.WidthOf(day(2024, 6, 2), day(2024, 6, 1)))
	assert.Equal(t, MinBarWidth, g.WidthOf(day(2023, 1, 1), day(2022, 1, 1)))
}

func TestGrid_Defaults(t *testing.T) {
	g := NewGrid(MonthWindow(day(2024, 3, 1)), 0)
	assert.Equal(t, DefaultCellWidth, g.CellWidth())

	inverted := NewGrid(Window{Start: day(2024, 3, 10), End: day(2024, 3, 1)}, 40)
	require.Len(t, inverted.Columns(), 1)
	assert.Equal(t, day(2024, 3, 10), inverted.Window().End)
	assert.Equal(t, 40.0, inverted.TotalWidth())
}

func TestGrid_MonthHeaders(t *testing.T) {
	testCases := []struct {
		name   string
		window Window
		want   []MonthHeader
	}{
		{
			name:   "two full months",
			window: MonthWindow(day(2024, 3, 1)),
			want: []MonthHeader{
				{Label: "2024년 3월", StartCol: 0, Span: 31},
				{Label: "2024년 4월", StartCol: 31, Span: 30},
			},
		},
		{
			name:   "short leading month is widened",
			window: Window{Start: day(2024, 3, 30), End: day(2024, 4, 10)},
			want: []MonthHeader{
				{Label: "2024년 3월", StartCol: 0, Span: 3},
				{Label: "2024년 4월", StartCol: 2, Span: 10},
			},
		},
		{
			name:   "year boundary",
			window: MonthWindow(day(2024, 12, 1)),
			want: []MonthHeader{
				{Label: "2024년 12월", StartCol: 0, Span: 31},
				{Label: "2025년 1월", StartCol: 31, Span: 31},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewGrid(tc.window, 40).MonthHeaders())
		})
	}
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "2024년 3월", MonthLabel(day(2024, 3, 17)))
	assert.Equal(t, "2025년 11월", MonthLabel(day(2025, 11, 1)))
}
