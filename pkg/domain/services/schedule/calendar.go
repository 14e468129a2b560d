// Package schedule turns production orders into deterministic Gantt
// geometry: calendar arithmetic, per-status date resolution, a day-column
// grid, ordinal lane stacking and free-text filtering.
//
// Everything in this package is a pure function of its inputs. Callers pass
// the current time and viewing location explicitly.
package schedule

import (
	"fmt"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// Direction moves a window one month back or forward
type Direction int

const (
	Prev Direction = iota
	Next
)

func (d Direction) String() string {
	switch d {
	case Prev:
		return "prev"
	case Next:
		return "next"
	default:
		return "unknown"
	}
}

// ParseDirection parses "prev" or "next"
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prev", "previous":
		return Prev, nil
	case "next":
		return Next, nil
	default:
		return Prev, fmt.Errorf("invalid direction: %s (expected prev or next)", s)
	}
}

// Window is an inclusive range of days, both bounds at local midnight
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days returns the number of day columns in the window
func (w Window) Days() int {
	return DaysBetween(w.Start, w.End) + 1
}

// Contains reports whether t's calendar day lies inside the window
func (w Window) Contains(t time.Time) bool {
	d := Normalize(t, w.Start.Location())
	return !d.Before(w.Start) && !d.After(w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// Normalize returns midnight of t's calendar day in loc. A nil loc means
// time.Local.
func Normalize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DaysBetween returns b minus a in whole calendar days. Only the (year,
// month, day) of each value is used, so DST transitions and time-of-day
// never leak into the count.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int((ub.Unix() - ua.Unix()) / secondsPerDay)
}

// AddDays moves t by n calendar days, returning midnight in t's location
func AddDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// MonthWindow spans the first day of t's month to the last day of the
// following month.
func MonthWindow(t time.Time) Window {
	y, m, _ := t.Date()
	loc := t.Location()
	return Window{
		Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
		End:   time.Date(y, m+2, 0, 0, 0, 0, 0, loc),
	}
}

// ShiftWindow moves a window exactly one month, recomputing it from the
// month of w.Start rather than adding days.
func ShiftWindow(w Window, dir Direction) Window {
	y, m, _ := w.Start.Date()
	delta := 1
	if dir == Prev {
		delta = -1
	}
	return MonthWindow(time.Date(y, m+time.Month(delta), 1, 0, 0, 0, 0, w.Start.Location()))
}

// Navigate is the window-navigation entry point used by the UI shell
func Navigate(w Window, dir Direction) Window {
	return ShiftWindow(w, dir)
}
