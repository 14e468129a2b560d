// Package styles defines shared lipgloss styles for terminal rendering.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

var (
	// Colors
	primaryColor   = lipgloss.Color("#5FAFAF")
	secondaryColor = lipgloss.Color("#666666")
	errorColor     = lipgloss.Color("#AF5F5F")
	warnColor      = lipgloss.Color("#D7AF5F")

	pendingColor    = lipgloss.Color("#FFB300")
	confirmedColor  = lipgloss.Color("#2196F3")
	inProgressColor = lipgloss.Color("#4CAF50")
	completedColor  = lipgloss.Color("#9E9E9E")
	unknownColor    = lipgloss.Color("#7E57C2")

	// TitleStyle for headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// SubtleStyle for hints/help text
	SubtleStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// LaneStyle for production line labels
	LaneStyle = lipgloss.NewStyle().
			Bold(true)

	// TodayStyle marks the current day column
	TodayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	// OverdueStyle for bars past their end date
	OverdueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// StatusBarStyle for bottom status bar
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	// WarningStyle for stale data notices
	WarningStyle = lipgloss.NewStyle().
			Foreground(warnColor)

	// ErrorStyle for error messages
	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)
)

// StatusStyle returns the bar style for an order status
func StatusStyle(status entities.OrderStatus) lipgloss.Style {
	switch status {
	case entities.PendingReview:
		return lipgloss.NewStyle().Foreground(pendingColor)
	case entities.Confirmed:
		return lipgloss.NewStyle().Foreground(confirmedColor)
	case entities.InProgress:
		return lipgloss.NewStyle().Foreground(inProgressColor)
	case entities.Completed:
		return lipgloss.NewStyle().Foreground(completedColor)
	default:
		return lipgloss.NewStyle().Foreground(unknownColor)
	}
}
