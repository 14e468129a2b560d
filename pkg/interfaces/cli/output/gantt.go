package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/vsinha/prodschedule/pkg/application/dto"
	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
)

// GanttChart renders a laid-out schedule as SVG. All geometry comes from
// the layout; the chart only adds margins for labels and headers.
type GanttChart struct {
	Width        int
	Height       int
	MarginLeft   int
	MarginTop    int
	MarginRight  int
	MarginBottom int
}

const (
	headerRowHeight = 24
	barHeight       = 36
)

// NewGanttChart sizes a chart around the result's layout
func NewGanttChart(result *dto.ScheduleResult) *GanttChart {
	gc := &GanttChart{
		MarginLeft:   140,
		MarginTop:    2*headerRowHeight + 40,
		MarginRight:  20,
		MarginBottom: 60,
	}
	layout := result.Layout
	gc.Width = gc.MarginLeft + int(layout.TotalWidth) + gc.MarginRight
	gc.Height = gc.MarginTop + layout.TotalHeight + gc.MarginBottom
	if layout.TotalHeight == 0 {
		gc.Height += schedule.MinLaneHeight
	}
	return gc
}

// GenerateSVG creates an SVG representation of the schedule
func (gc *GanttChart) GenerateSVG(result *dto.ScheduleResult) string {
	if result.TaskCount == 0 {
		return gc.generateEmptyChart(result)
	}

	layout := result.Layout
	var svg strings.Builder

	svg.WriteString(fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">`, gc.Width, gc.Height))
	gc.writeDefs(&svg, layout)

	svg.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="white"/>`, gc.Width, gc.Height))
	svg.WriteString(fmt.Sprintf(`<text x="%d" y="24" class="title">%s</text>`, gc.MarginLeft, escapeXML(gc.title(result))))

	gc.drawMonthHeaders(&svg, layout)
	gc.drawDayGrid(&svg, layout)
	gc.drawLanes(&svg, layout)
	gc.drawToday(&svg, layout, result.GeneratedAt)
	gc.drawLegend(&svg)

	svg.WriteString(`</svg>`)
	return svg.String()
}

func (gc *GanttChart) title(result *dto.ScheduleResult) string {
	title := fmt.Sprintf("생산 일정 %s", result.Window())
	if result.Query != "" {
		title += fmt.Sprintf(" · \"%s\"", result.Query)
	}
	if result.Stale {
		title += " (stale)"
	}
	return title
}

func (gc *GanttChart) writeDefs(svg *strings.Builder, layout schedule.Layout) {
	svg.WriteString(`<defs>`)
	svg.WriteString(`<style>`)
	svg.WriteString(`.lane-label { font-family: Arial, sans-serif; font-size: 12px; fill: #333; }`)
	svg.WriteString(`.month-label { font-family: Arial, sans-serif; font-size: 12px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.day-label { font-family: Arial, sans-serif; font-size: 9px; fill: #666; }`)
	svg.WriteString(`.title { font-family: Arial, sans-serif; font-size: 16px; font-weight: bold; fill: #333; }`)
	svg.WriteString(`.grid-line { stroke: #e0e0e0; stroke-width: 1; }`)
	svg.WriteString(`.lane-line { stroke: #bdbdbd; stroke-width: 1; }`)
	svg.WriteString(`.task-bar { stroke: #333; stroke-width: 1; }`)
	svg.WriteString(`.task-bar.overdue { stroke: #d32f2f; stroke-width: 2; }`)
	svg.WriteString(`.today-line { stroke: #d32f2f; stroke-width: 1; stroke-dasharray: 4,3; }`)
	svg.WriteString(`.task-text { font-family: Arial, sans-serif; font-size: 10px; fill: white; }`)
	svg.WriteString(`</style>`)
	// bars estimated outside the window are clipped to the grid
	svg.WriteString(fmt.Sprintf(`<clipPath id="grid-area"><rect x="%d" y="%d" width="%s" height="%d"/></clipPath>`,
		gc.MarginLeft, gc.MarginTop, formatFloat(layout.TotalWidth), layout.TotalHeight))
	svg.WriteString(`</defs>`)
}

func (gc *GanttChart) drawMonthHeaders(svg *strings.Builder, layout schedule.Layout) {
	y := gc.MarginTop - 2*headerRowHeight
	for _, header := range layout.MonthHeaders {
		x := float64(gc.MarginLeft) + float64(header.StartCol)*layout.CellWidth
		width := float64(header.Span) * layout.CellWidth
		svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%d" width="%s" height="%d" fill="#f5f5f5" class="grid-line"/>`,
			formatFloat(x), y, formatFloat(width), headerRowHeight))
		svg.WriteString(fmt.Sprintf(`<text x="%s" y="%d" class="month-label">%s</text>`,
			formatFloat(x+6), y+16, escapeXML(header.Label)))
	}
}

func (gc *GanttChart) drawDayGrid(svg *strings.Builder, layout schedule.Layout) {
	top := gc.MarginTop - headerRowHeight
	bottom := gc.MarginTop + layout.TotalHeight

	for i, day := range layout.Columns {
		x := float64(gc.MarginLeft) + float64(i)*layout.CellWidth
		svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%d" x2="%s" y2="%d" class="grid-line"/>`,
			formatFloat(x), top, formatFloat(x), bottom))
		svg.WriteString(fmt.Sprintf(`<text x="%s" y="%d" class="day-label" text-anchor="middle">%d</text>`,
			formatFloat(x+layout.CellWidth/2), top+16, day.Day()))
	}

	right := float64(gc.MarginLeft) + layout.TotalWidth
	svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%d" x2="%s" y2="%d" class="grid-line"/>`,
		formatFloat(right), top, formatFloat(right), bottom))
}

// drawToday marks the middle of today's column; nothing is drawn when
// today is outside the window.
func (gc *GanttChart) drawToday(svg *strings.Builder, layout schedule.Layout, now time.Time) {
	if now.IsZero() || !layout.Window.Contains(now) {
		return
	}
	today := schedule.Normalize(now, layout.Window.Start.Location())
	col := schedule.DaysBetween(layout.Window.Start, today)
	x := float64(gc.MarginLeft) + (float64(col)+0.5)*layout.CellWidth
	svg.WriteString(fmt.Sprintf(`<line x1="%s" y1="%d" x2="%s" y2="%d" class="today-line"/>`,
		formatFloat(x), gc.MarginTop-headerRowHeight, formatFloat(x), gc.MarginTop+layout.TotalHeight))
}

func (gc *GanttChart) drawLanes(svg *strings.Builder, layout schedule.Layout) {
	right := float64(gc.MarginLeft) + layout.TotalWidth

	for _, lane := range layout.Lanes {
		y := gc.MarginTop + lane.Top

		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="lane-label" text-anchor="end">%s</text>`,
			gc.MarginLeft-12, y+lane.Height/2+4, escapeXML(lane.Line)))
		svg.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%s" y2="%d" class="lane-line"/>`,
			gc.MarginLeft, y+lane.Height, formatFloat(right), y+lane.Height))

		svg.WriteString(`<g clip-path="url(#grid-area)">`)
		for _, p := range lane.Tasks {
			gc.drawBar(svg, p, y)
		}
		svg.WriteString(`</g>`)
	}
}

func (gc *GanttChart) drawBar(svg *strings.Builder, p schedule.Placement, laneTop int) {
	x := float64(gc.MarginLeft) + p.X
	y := laneTop + p.Y

	class := "task-bar"
	if p.Overdue {
		class += " overdue"
	}

	svg.WriteString(`<g>`)
	svg.WriteString(fmt.Sprintf(`<rect x="%s" y="%d" width="%s" height="%d" rx="4" fill="%s" class="%s"/>`,
		formatFloat(x), y, formatFloat(p.Width), barHeight, statusColor(p.Task.Status), class))

	if p.Width > 80 {
		svg.WriteString(fmt.Sprintf(`<text x="%s" y="%d" class="task-text">%s</text>`,
			formatFloat(x+6), y+barHeight/2+4, escapeXML(truncate(p.Task.Label, int(p.Width/7)))))
	}

	tooltip := fmt.Sprintf("%s\n%s ~ %s\n%s",
		p.Task.Label,
		p.Task.Start.Format("2006-01-02"),
		p.Task.End.Format("2006-01-02"),
		p.Task.Status.Label())
	if p.Overdue {
		tooltip += " (지연)"
	}
	svg.WriteString(fmt.Sprintf(`<title>%s</title>`, escapeXML(tooltip)))
	svg.WriteString(`</g>`)
}

func (gc *GanttChart) drawLegend(svg *strings.Builder) {
	legendY := gc.Height - gc.MarginBottom + 20

	items := []entities.OrderStatus{
		entities.PendingReview,
		entities.Confirmed,
		entities.InProgress,
		entities.Completed,
	}

	for i, status := range items {
		x := gc.MarginLeft + i*110
		svg.WriteString(fmt.Sprintf(`<rect x="%d" y="%d" width="12" height="12" fill="%s"/>`,
			x, legendY, statusColor(status)))
		svg.WriteString(fmt.Sprintf(`<text x="%d" y="%d" class="lane-label">%s</text>`,
			x+18, legendY+10, escapeXML(status.Label())))
	}
}

// statusColor returns the bar fill for a status
func statusColor(status entities.OrderStatus) string {
	switch status {
	case entities.PendingReview:
		return "#FFB300"
	case entities.Confirmed:
		return "#2196F3"
	case entities.InProgress:
		return "#4CAF50"
	case entities.Completed:
		return "#9E9E9E"
	default:
		return "#7E57C2"
	}
}

func (gc *GanttChart) generateEmptyChart(result *dto.ScheduleResult) string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">%s</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, gc.Width, gc.Height, gc.Width, gc.Height, gc.Width/2, gc.Height/2,
		escapeXML(fmt.Sprintf("표시할 생산 주문이 없습니다 (%s)", result.Window())))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}

func formatFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if max < 1 || len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
