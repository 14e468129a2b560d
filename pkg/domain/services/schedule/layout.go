package schedule

import (
	"time"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

// Options are the explicit inputs a layout pass needs besides orders,
// window and query. Zero values select defaults.
type Options struct {
	CellWidth float64
	Now       time.Time
	Location  *time.Location
	Policy    *Policy
}

func (o Options) withDefaults() Options {
	if o.CellWidth <= 0 {
		o.CellWidth = DefaultCellWidth
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Policy == nil {
		p := DefaultPolicy()
		o.Policy = &p
	}
	return o
}

// Placement is the renderable geometry of one task. X and Width are in
// pixels from the grid's left edge; Y is relative to the lane top.
type Placement struct {
	Task    entities.Task `json:"task"`
	Slot    int           `json:"slot"`
	X       float64       `json:"x"`
	Y       int           `json:"y"`
	Width   float64       `json:"width"`
	Overdue bool          `json:"overdue"`
}

// LaneLayout is one production line row
type LaneLayout struct {
	Line   string      `json:"line"`
	Top    int         `json:"top"`
	Height int         `json:"height"`
	Tasks  []Placement `json:"tasks"`
}

// Layout is everything a renderer needs; it never has to touch dates
type Layout struct {
	Window       Window        `json:"window"`
	CellWidth    float64       `json:"cell_width"`
	Columns      []time.Time   `json:"columns"`
	MonthHeaders []MonthHeader `json:"month_headers"`
	Lanes        []LaneLayout  `json:"lanes"`
	TotalWidth   float64       `json:"total_width"`
	TotalHeight  int           `json:"total_height"`
}

// TaskCount returns the number of placed tasks
func (l Layout) TaskCount() int {
	n := 0
	for _, lane := range l.Lanes {
		n += len(lane.Tasks)
	}
	return n
}

// OverdueCount returns the number of placed tasks marked overdue
func (l Layout) OverdueCount() int {
	n := 0
	for _, lane := range l.Lanes {
		for _, p := range lane.Tasks {
			if p.Overdue {
				n++
			}
		}
	}
	return n
}

// ComputeLayout resolves, filters, groups and places orders. Given the same
// orders, window, query and options it always returns the same geometry.
func ComputeLayout(orders []*entities.Order, window Window, query string, opts Options) Layout {
	opts = opts.withDefaults()
	tasks := opts.Policy.ResolveAll(orders, opts.Now, opts.Location)
	return BuildLayout(Filter(tasks, query), window, opts)
}

// BuildLayout places already resolved and filtered tasks on a grid
func BuildLayout(tasks []entities.Task, window Window, opts Options) Layout {
	opts = opts.withDefaults()
	window = Window{
		Start: Normalize(window.Start, opts.Location),
		End:   Normalize(window.End, opts.Location),
	}
	grid := NewGrid(window, opts.CellWidth)

	layout := Layout{
		Window:       grid.Window(),
		CellWidth:    grid.CellWidth(),
		Columns:      grid.Columns(),
		MonthHeaders: grid.MonthHeaders(),
		Lanes:        []LaneLayout{},
		TotalWidth:   grid.TotalWidth(),
	}

	top := 0
	for _, lane := range GroupByLine(tasks) {
		ll := LaneLayout{
			Line:   lane.Line,
			Top:    top,
			Height: RowHeight(len(lane.Slots)),
			Tasks:  make([]Placement, 0, len(lane.Slots)),
		}
		for _, slot := range lane.Slots {
			ll.Tasks = append(ll.Tasks, Placement{
				Task:    slot.Task,
				Slot:    slot.Index,
				X:       grid.XOf(slot.Task.Start),
				Y:       SlotOffset(slot.Index),
				Width:   grid.WidthOf(slot.Task.Start, slot.Task.End),
				Overdue: IsOverdue(slot.Task, opts.Now, opts.Location),
			})
		}
		layout.Lanes = append(layout.Lanes, ll)
		top += ll.Height
	}
	layout.TotalHeight = top

	return layout
}
