package schedule

import (
	"strings"
	"time"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

const (
	// PendingReviewLine groups every order still awaiting review
	PendingReviewLine = "검토 대기"
	// UnassignedLine is used when an order has no production line yet
	UnassignedLine = "미지정"
	// DefaultSpanDays is the assumed duration when no end date is known
	DefaultSpanDays = 30
	// UnknownStatusLeadDays is how far before the end an unknown-status task starts
	UnknownStatusLeadDays = 7
)

// DateSource reads one optional date field from an order
type DateSource struct {
	Name string
	Get  func(o *entities.Order) (time.Time, bool)
}

// LineSource reads an optional line label from an order
type LineSource struct {
	Name string
	Get  func(o *entities.Order) (string, bool)
}

func required(name string, field func(o *entities.Order) time.Time) DateSource {
	return DateSource{Name: name, Get: func(o *entities.Order) (time.Time, bool) {
		t := field(o)
		return t, !t.IsZero()
	}}
}

func optional(name string, field func(o *entities.Order) *time.Time) DateSource {
	return DateSource{Name: name, Get: func(o *entities.Order) (time.Time, bool) {
		t := field(o)
		if t == nil || t.IsZero() {
			return time.Time{}, false
		}
		return *t, true
	}}
}

var (
	RequestDate = required("request_date", func(o *entities.Order) time.Time { return o.RequestDate })
	CreatedAt   = required("created_at", func(o *entities.Order) time.Time { return o.CreatedAt })

	RequestedCompletion = required("requested_completion_date", func(o *entities.Order) time.Time {
		return o.RequestedCompletionDate
	})
	PlannedCompletion = optional("planned_completion_date", func(o *entities.Order) *time.Time {
		return o.PlannedCompletionDate
	})
	ActualCompletion = optional("actual_completion_date", func(o *entities.Order) *time.Time {
		return o.ActualCompletionDate
	})

	AssignedLine = LineSource{Name: "line", Get: func(o *entities.Order) (string, bool) {
		line := strings.TrimSpace(o.AssignedLine)
		return line, line != ""
	}}
)

// Rule is the resolution recipe for one status. Sources are tried in
// order; the first one present wins.
type Rule struct {
	Start []DateSource
	End   []DateSource

	// SpanDays is added to the anchor when no End source is present.
	SpanDays int

	// StartFromEnd, when positive, derives start as end minus this many
	// days. The End fallback is then EndAnchor + SpanDays instead of
	// start + SpanDays.
	StartFromEnd int
	EndAnchor    []DateSource

	Line        []LineSource
	LineDefault string
}

// Policy maps statuses to rules. Statuses in Excluded never produce tasks;
// statuses without a rule use Default.
type Policy struct {
	Rules    map[entities.OrderStatus]Rule
	Default  Rule
	Excluded map[entities.OrderStatus]bool
}

// DefaultPolicy returns the portal's resolution table
func DefaultPolicy() Policy {
	requested := Rule{
		Start:       []DateSource{RequestDate, CreatedAt},
		SpanDays:    DefaultSpanDays,
		Line:        []LineSource{AssignedLine},
		LineDefault: UnassignedLine,
	}

	pending := requested
	pending.End = []DateSource{RequestedCompletion}
	pending.Line = nil
	pending.LineDefault = PendingReviewLine

	planned := requested
	planned.End = []DateSource{PlannedCompletion, RequestedCompletion}

	completed := requested
	completed.End = []DateSource{ActualCompletion, PlannedCompletion, RequestedCompletion}

	return Policy{
		Rules: map[entities.OrderStatus]Rule{
			entities.PendingReview: pending,
			entities.Confirmed:     planned,
			entities.InProgress:    planned,
			entities.Completed:     completed,
		},
		Default: Rule{
			End:          []DateSource{PlannedCompletion, RequestedCompletion},
			SpanDays:     DefaultSpanDays,
			StartFromEnd: UnknownStatusLeadDays,
			EndAnchor:    []DateSource{CreatedAt},
			Line:         []LineSource{AssignedLine},
			LineDefault:  UnassignedLine,
		},
		Excluded: map[entities.OrderStatus]bool{
			entities.Cancelled: true,
		},
	}
}

// RuleFor returns the rule applied to status
func (p Policy) RuleFor(status entities.OrderStatus) Rule {
	if rule, ok := p.Rules[status]; ok {
		return rule
	}
	return p.Default
}

// Resolve projects an order into a task. It returns false for nil orders
// and excluded statuses. Missing dates fall through the rule's chains and
// never produce an error.
func (p Policy) Resolve(o *entities.Order, now time.Time, loc *time.Location) (entities.Task, bool) {
	if o == nil || p.Excluded[o.Status] {
		return entities.Task{}, false
	}

	rule := p.RuleFor(o.Status)
	today := Normalize(now, loc)

	var start, end time.Time
	if rule.StartFromEnd > 0 {
		if t, ok := firstDate(rule.End, o); ok {
			end = Normalize(t, loc)
		} else {
			anchor := today
			if t, ok := firstDate(rule.EndAnchor, o); ok {
				anchor = Normalize(t, loc)
			}
			end = AddDays(anchor, rule.SpanDays)
		}
		start = AddDays(end, -rule.StartFromEnd)
	} else {
		start = today
		if t, ok := firstDate(rule.Start, o); ok {
			start = Normalize(t, loc)
		}
		if t, ok := firstDate(rule.End, o); ok {
			end = Normalize(t, loc)
		} else {
			end = AddDays(start, rule.SpanDays)
		}
	}

	if end.Before(start) {
		end = start
	}

	line := rule.LineDefault
	for _, src := range rule.Line {
		if v, ok := src.Get(o); ok {
			line = v
			break
		}
	}

	return entities.Task{
		ID:            o.ID,
		Label:         entities.TaskLabel(o.ProductName, o.Quantity, o.RequesterName),
		ProductName:   o.ProductName,
		RequesterName: o.RequesterName,
		Quantity:      o.Quantity,
		Start:         start,
		End:           end,
		Status:        o.Status,
		Line:          line,
	}, true
}

// ResolveAll resolves orders in input order, dropping excluded ones
func (p Policy) ResolveAll(orders []*entities.Order, now time.Time, loc *time.Location) []entities.Task {
	tasks := make([]entities.Task, 0, len(orders))
	for _, o := range orders {
		if task, ok := p.Resolve(o, now, loc); ok {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

func firstDate(sources []DateSource, o *entities.Order) (time.Time, bool) {
	for _, src := range sources {
		if t, ok := src.Get(o); ok {
			return t, true
		}
	}
	return time.Time{}, false
}
