package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNormalize_IdempotentAndMidnight(t *testing.T) {
	inputs := []time.Time{
		time.Date(2024, 3, 5, 14, 37, 12, 999, time.UTC),
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, seoul),
		time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC),
		{},
	}

	for _, loc := range []*time.Location{time.UTC, seoul, nil} {
		for _, in := range inputs {
			n := Normalize(in, loc)
			assert.Equal(t, n, Normalize(n, loc), "Normalize not idempotent for %v", in)
			h, mi, s := n.Clock()
			assert.Zero(t, h+mi+s, "time of day left on %v", n)
			assert.Zero(t, n.Nanosecond())
		}
	}
}

func TestNormalize_UsesViewingLocation(t *testing.T) {
	// 20:00 UTC on Feb 29 is already Mar 1 in Seoul
	in := time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), Normalize(in, time.UTC))
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, seoul), Normalize(in, seoul))
}

func TestDaysBetween(t *testing.T) {
	testCases := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"same day", day(2024, 3, 1), day(2024, 3, 1), 0},
		{"forward", day(2024, 3, 1), day(2024, 3, 10), 9},
		{"backward", day(2024, 3, 10), day(2024, 3, 1), -9},
		{"leap february", day(2024, 2, 1), day(2024, 3, 1), 29},
		{"year boundary", day(2023, 12, 31), day(2024, 1, 1), 1},
		{
			"time of day ignored",
			time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC),
			time.Date(2024, 3, 2, 0, 1, 0, 0, time.UTC),
			1,
		},
		{"zero time does not overflow", time.Time{}, day(1, 1, 11), 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DaysBetween(tc.a, tc.b))
		})
	}
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}

	// clocks spring forward on 2024-03-10; the raw duration is 47h
	a := time.Date(2024, 3, 9, 0, 0, 0, 0, ny)
	b := time.Date(2024, 3, 11, 0, 0, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, ny), AddDays(a, 2))
}

func TestMonthWindow(t *testing.T) {
	testCases := []struct {
		in        time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), day(2024, 3, 1), day(2024, 4, 30)},
		{day(2024, 1, 31), day(2024, 1, 1), day(2024, 2, 29)},
		{day(2023, 1, 31), day(2023, 1, 1), day(2023, 2, 28)},
		{day(2024, 12, 1), day(2024, 12, 1), day(2025, 1, 31)},
		{day(2024, 11, 30), day(2024, 11, 1), day(2024, 12, 31)},
	}

	for _, tc := range testCases {
		w := MonthWindow(tc.in)
		assert.Equal(t, tc.wantStart, w.Start, "start for %v", tc.in)
		assert.Equal(t, tc.wantEnd, w.End, "end for %v", tc.in)
	}

	assert.Equal(t, 61, MonthWindow(day(2024, 3, 1)).Days())
}

func TestShiftWindow(t *testing.T) {
	w := MonthWindow(day(2024, 1, 31))

	next := ShiftWindow(w, Next)
	assert.Equal(t, day(2024, 2, 1), next.Start)
	assert.Equal(t, day(2024, 3, 31), next.End)

	prev := ShiftWindow(w, Prev)
	assert.Equal(t, day(2023, 12, 1), prev.Start)
	assert.Equal(t, day(2024, 1, 31), prev.End)

	// a full year of forward steps lands on the same month a year later
	cur := w
	for i := 0; i < 12; i++ {
		cur = Navigate(cur, Next)
	}
	assert.Equal(t, day(2025, 1, 1), cur.Start)
	assert.Equal(t, day(2025, 2, 28), cur.End)
}

func TestShiftWindow_RoundTripKeepsStartMonth(t *testing.T) {
	start := day(2023, 1, 1)
	for i := 0; i < 36; i++ {
		w := MonthWindow(AddDays(start, i*17))
		back := ShiftWindow(ShiftWindow(w, Next), Prev)
		assert.Equal(t, w.Start, back.Start, "round trip from %s", w)
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("Next")
	require.NoError(t, err)
	assert.Equal(t, Next, d)

	d, err = ParseDirection(" prev ")
	require.NoError(t, err)
	assert.Equal(t, Prev, d)
	assert.Equal(t, "prev", d.String())

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestWindow_Contains(t *testing.T) {
	w := MonthWindow(day(2024, 3, 1))
	assert.True(t, w.Contains(day(2024, 3, 1)))
	assert.True(t, w.Contains(time.Date(2024, 4, 30, 23, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(day(2024, 5, 1)))
	assert.False(t, w.Contains(day(2024, 2, 29)))
	assert.Equal(t, "2024-03-01..2024-04-30", w.String())
}
