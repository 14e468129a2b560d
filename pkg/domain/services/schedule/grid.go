package schedule

import (
	"fmt"
	"time"
)

const (
	// DefaultCellWidth is the pixel width of one day column
	DefaultCellWidth = 40.0
	// MinBarWidth keeps estimated bars visible and clickable
	MinBarWidth = 8.0
	// MinHeaderSpan is the narrowest a month header may be drawn, in columns
	MinHeaderSpan = 3
)

type dayKey struct {
	year  int
	month time.Month
	day   int
}

func keyOf(t time.Time) dayKey {
	y, m, d := t.Date()
	return dayKey{y, m, d}
}

// MonthHeader labels the columns belonging to one calendar month
type MonthHeader struct {
	Label    string `json:"label"`
	StartCol int    `json:"start_col"`
	Span     int    `json:"span"`
}

// Grid maps days in a window to fixed-width columns
type Grid struct {
	window    Window
	cellWidth float64
	columns   []time.Time
	index     map[dayKey]int
}

// NewGrid precomputes one column per day of the window. A non-positive
// cell width falls back to DefaultCellWidth; an inverted window yields a
// single column at its start.
func NewGrid(window Window, cellWidth float64) *Grid {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}

	loc := window.Start.Location()
	window.Start = Normalize(window.Start, loc)
	window.End = Normalize(window.End, loc)
	if window.End.Before(window.Start) {
		window.End = window.Start
	}

	n := DaysBetween(window.Start, window.End) + 1
	g := &Grid{
		window:    window,
		cellWidth: cellWidth,
		columns:   make([]time.Time, 0, n),
		index:     make(map[dayKey]int, n),
	}
	for i := 0; i < n; i++ {
		day := AddDays(window.Start, i)
		g.index[keyOf(day)] = i
		g.columns = append(g.columns, day)
	}
	return g
}

// Window returns the normalized window the grid covers
func (g *Grid) Window() Window { return g.window }

// CellWidth returns the pixel width of one column
func (g *Grid) CellWidth() float64 { return g.cellWidth }

// Columns returns a copy of the column dates
func (g *Grid) Columns() []time.Time {
	out := make([]time.Time, len(g.columns))
	copy(out, g.columns)
	return out
}

// TotalWidth is the pixel width of all columns
func (g *Grid) TotalWidth() float64 {
	return float64(len(g.columns)) * g.cellWidth
}

// ColumnIndex finds the column for t's calendar day in the grid's location
func (g *Grid) ColumnIndex(t time.Time) (int, bool) {
	idx, ok := g.index[keyOf(Normalize(t, g.window.Start.Location()))]
	return idx, ok
}

// XOf returns the left edge of t's column. Days outside the window get a
// proportional estimate, which may be negative or beyond TotalWidth.
func (g *Grid) XOf(t time.Time) float64 {
	if idx, ok := g.ColumnIndex(t); ok {
		return float64(idx) * g.cellWidth
	}
	days := DaysBetween(g.window.Start, Normalize(t, g.window.Start.Location()))
	return float64(days) / float64(len(g.columns)) * g.TotalWidth()
}

// WidthOf returns the pixel width of the inclusive interval [start, end].
// When either end falls outside the window the width is estimated from the
// day count and floored at MinBarWidth. The result is never negative.
func (g *Grid) WidthOf(start, end time.Time) float64 {
	si, sok := g.ColumnIndex(start)
	ei, eok := g.ColumnIndex(end)
	if sok && eok {
		if ei < si {
			return MinBarWidth
		}
		return float64(ei-si+1) * g.cellWidth
	}

	loc := g.window.Start.Location()
	days := DaysBetween(Normalize(start, loc), Normalize(end, loc)) + 1
	width := float64(days) / float64(len(g.columns)) * g.TotalWidth()
	if width < MinBarWidth {
		width = MinBarWidth
	}
	return width
}

// MonthHeaders returns one header per calendar month in the window. Each
// starts at the month's first visible column and spans to the next month
// boundary, never narrower than MinHeaderSpan.
func (g *Grid) MonthHeaders() []MonthHeader {
	var headers []MonthHeader
	for i, day := range g.columns {
		if i > 0 && day.Day() != 1 {
			continue
		}
		span := 0
		for j := i; j < len(g.columns); j++ {
			if j > i && g.columns[j].Day() == 1 {
				break
			}
			span++
		}
		if span < MinHeaderSpan {
			span = MinHeaderSpan
		}
		headers = append(headers, MonthHeader{
			Label:    MonthLabel(day),
			StartCol: i,
			Span:     span,
		})
	}
	return headers
}

// MonthLabel formats a month the way the portal shows it, e.g. "2024년 3월"
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%d년 %d월", t.Year(), int(t.Month()))
}
