package dto

import (
	"time"

	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
)

// ScheduleResult is one laid-out schedule plus the facts a renderer shows
// around it
type ScheduleResult struct {
	Layout       schedule.Layout `json:"layout"`
	GeneratedAt  time.Time       `json:"generated_at"`
	Query        string          `json:"query,omitempty"`
	TaskCount    int             `json:"task_count"`
	HiddenCount  int             `json:"hidden_count"`
	OverdueCount int             `json:"overdue_count"`

	// Stale is set when the latest read of the order source failed and this
	// layout was computed from the last good snapshot.
	Stale       bool   `json:"stale"`
	StaleReason string `json:"stale_reason,omitempty"`
}

// NewScheduleResult wraps a layout. hidden is the number of resolved tasks
// the query filtered out.
func NewScheduleResult(layout schedule.Layout, query string, hidden int, generatedAt time.Time) *ScheduleResult {
	return &ScheduleResult{
		Layout:       layout,
		GeneratedAt:  generatedAt,
		Query:        query,
		TaskCount:    layout.TaskCount(),
		HiddenCount:  hidden,
		OverdueCount: layout.OverdueCount(),
	}
}

// Window returns the date range the result covers
func (r *ScheduleResult) Window() schedule.Window {
	return r.Layout.Window
}
