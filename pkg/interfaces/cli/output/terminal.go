package output

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/prodschedule/pkg/application/dto"
	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
	"github.com/vsinha/prodschedule/pkg/interfaces/styles"
)

const laneLabelWidth = 12

// statusGlyph keeps statuses distinguishable when colors are unavailable
func statusGlyph(status entities.OrderStatus) string {
	switch status {
	case entities.PendingReview:
		return "░"
	case entities.Confirmed:
		return "▒"
	case entities.InProgress:
		return "▓"
	case entities.Completed:
		return "█"
	default:
		return "▪"
	}
}

// RenderTerminal draws the schedule with one character per day column.
// today is highlighted in the day header when it falls inside the window.
func RenderTerminal(result *dto.ScheduleResult, today time.Time) string {
	layout := result.Layout
	days := len(layout.Columns)

	var b strings.Builder

	title := fmt.Sprintf("생산 일정 %s", result.Window())
	if result.Query != "" {
		title += fmt.Sprintf("  검색: %q", result.Query)
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n")
	if result.Stale {
		b.WriteString(styles.WarningStyle.Render("⚠ 최신 데이터를 불러오지 못했습니다: " + result.StaleReason))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(pad(""))
	b.WriteString(monthHeaderRow(layout.MonthHeaders, days))
	b.WriteString("\n")
	b.WriteString(pad(""))
	b.WriteString(dayHeaderRow(layout.Window, layout.Columns, today))
	b.WriteString("\n")

	if result.TaskCount == 0 {
		b.WriteString(styles.SubtleStyle.Render("표시할 생산 주문이 없습니다"))
		b.WriteString("\n")
	}

	for _, lane := range layout.Lanes {
		for i, p := range lane.Tasks {
			label := ""
			if i == 0 {
				label = lane.Line
			}
			b.WriteString(styles.LaneStyle.Render(pad(label)))
			b.WriteString(barRow(p, layout.CellWidth, days))
			b.WriteString(" ")
			b.WriteString(taskCaption(p))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.StatusBarStyle.Render(summaryLine(result)))
	b.WriteString("\n")
	return b.String()
}

func pad(label string) string {
	w := lipgloss.Width(label)
	if w >= laneLabelWidth {
		runes := []rune(label)
		for lipgloss.Width(string(runes)) >= laneLabelWidth && len(runes) > 0 {
			runes = runes[:len(runes)-1]
		}
		label = string(runes)
		w = lipgloss.Width(label)
	}
	return label + strings.Repeat(" ", laneLabelWidth-w)
}

func monthHeaderRow(headers []schedule.MonthHeader, days int) string {
	row := make([]string, days)
	for i := range row {
		row[i] = " "
	}
	// month labels are double-width, so each rune of the label covers two cells
	for _, h := range headers {
		col := h.StartCol
		for _, r := range h.Label {
			if col >= h.StartCol+h.Span || col >= days {
				break
			}
			cell := string(r)
			width := lipgloss.Width(cell)
			if width == 2 {
				if col+1 >= days || col+1 >= h.StartCol+h.Span {
					break
				}
				row[col] = cell
				row[col+1] = ""
				col += 2
				continue
			}
			row[col] = cell
			col++
		}
	}
	return strings.Join(row, "")
}

func dayHeaderRow(window schedule.Window, columns []time.Time, today time.Time) string {
	todayCol := -1
	if window.Contains(today) {
		todayCol = schedule.DaysBetween(window.Start, schedule.Normalize(today, window.Start.Location()))
	}

	var b strings.Builder
	for i, day := range columns {
		if i == todayCol {
			b.WriteString(styles.TodayStyle.Render("▼"))
			continue
		}
		if day.Day()%10 == 0 {
			b.WriteString(fmt.Sprintf("%d", day.Day()%10))
		} else {
			b.WriteString(styles.SubtleStyle.Render("·"))
		}
	}
	return b.String()
}

// barColumns converts a placement's pixel geometry to inclusive day columns.
// ok is false when the bar lies entirely outside the grid.
func barColumns(p schedule.Placement, cellWidth float64, days int) (first, last int, ok bool) {
	if cellWidth <= 0 || days == 0 {
		return 0, 0, false
	}
	first = int(math.Floor(p.X/cellWidth + 1e-9))
	last = int(math.Ceil((p.X+p.Width)/cellWidth-1e-9)) - 1
	if last < first {
		last = first
	}
	if last < 0 || first >= days {
		return 0, 0, false
	}
	if first < 0 {
		first = 0
	}
	if last >= days {
		last = days - 1
	}
	return first, last, true
}

func barRow(p schedule.Placement, cellWidth float64, days int) string {
	first, last, ok := barColumns(p, cellWidth, days)
	if !ok {
		return strings.Repeat(" ", days)
	}

	style := styles.StatusStyle(p.Task.Status)
	if p.Overdue {
		style = styles.OverdueStyle
	}

	return strings.Repeat(" ", first) +
		style.Render(strings.Repeat(statusGlyph(p.Task.Status), last-first+1)) +
		strings.Repeat(" ", days-last-1)
}

func taskCaption(p schedule.Placement) string {
	caption := fmt.Sprintf("%s %s [%s]", p.Task.ID, p.Task.Label, p.Task.Status.Label())
	if p.Overdue {
		return styles.OverdueStyle.Render(caption + " 지연")
	}
	return caption
}

func summaryLine(result *dto.ScheduleResult) string {
	line := fmt.Sprintf("주문 %d건 · 지연 %d건", result.TaskCount, result.OverdueCount)
	if result.HiddenCount > 0 {
		line += fmt.Sprintf(" · 검색으로 숨김 %d건", result.HiddenCount)
	}
	return line
}
