package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a production order
type OrderStatus string

const (
	PendingReview OrderStatus = "pending_review"
	Confirmed     OrderStatus = "confirmed"
	InProgress    OrderStatus = "in_progress"
	Completed     OrderStatus = "completed"
	Cancelled     OrderStatus = "cancelled"
)

// Label returns the human-readable status label shown in the portal.
// Unknown statuses are labelled with their raw value.
func (s OrderStatus) Label() string {
	switch s {
	case PendingReview:
		return "검토 대기"
	case Confirmed:
		return "확정"
	case InProgress:
		return "생산 중"
	case Completed:
		return "완료"
	case Cancelled:
		return "취소"
	default:
		return string(s)
	}
}

// Known reports whether s is one of the lifecycle states the portal defines
func (s OrderStatus) Known() bool {
	switch s {
	case PendingReview, Confirmed, InProgress, Completed, Cancelled:
		return true
	}
	return false
}

// ParseOrderStatus normalizes a raw status value. It never fails: unrecognized
// values are kept so the schedule can still place them.
func ParseOrderStatus(s string) OrderStatus {
	return OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

// Order is a production request as stored by the record store.
// Zero time values and nil pointers mean the date was never filled in.
type Order struct {
	ID                      string          `json:"id"`
	Status                  OrderStatus     `json:"status"`
	ProductName             string          `json:"product_name"`
	Quantity                decimal.Decimal `json:"quantity"`
	RequesterName           string          `json:"requester_name"`
	CreatedAt               time.Time       `json:"created_at"`
	RequestDate             time.Time       `json:"request_date,omitempty"`
	RequestedCompletionDate time.Time       `json:"requested_completion_date,omitempty"`
	PlannedStartDate        *time.Time      `json:"planned_start_date,omitempty"`
	PlannedCompletionDate   *time.Time      `json:"planned_completion_date,omitempty"`
	ActualStartDate         *time.Time      `json:"actual_start_date,omitempty"`
	ActualCompletionDate    *time.Time      `json:"actual_completion_date,omitempty"`
	AssignedLine            string          `json:"line,omitempty"`
}

// NewOrder creates a validated Order with the required fields set
func NewOrder(
	id string,
	status OrderStatus,
	productName string,
	quantity decimal.Decimal,
	requesterName string,
	createdAt time.Time,
) (*Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}

	return &Order{
		ID:            id,
		Status:        status,
		ProductName:   productName,
		Quantity:      quantity,
		RequesterName: requesterName,
		CreatedAt:     createdAt,
	}, nil
}

// Clone returns a deep copy so stores never share pointers with callers
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.PlannedStartDate = cloneTime(o.PlannedStartDate)
	c.PlannedCompletionDate = cloneTime(o.PlannedCompletionDate)
	c.ActualStartDate = cloneTime(o.ActualStartDate)
	c.ActualCompletionDate = cloneTime(o.ActualCompletionDate)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CloneOrders deep-copies a slice of orders
func CloneOrders(orders []*Order) []*Order {
	out := make([]*Order, 0, len(orders))
	for _, o := range orders {
		if o != nil {
			out = append(out, o.Clone())
		}
	}
	return out
}

// OrderField names a field orders can be sorted by
type OrderField string

const (
	FieldCreatedAt               OrderField = "created_at"
	FieldRequestDate             OrderField = "request_date"
	FieldRequestedCompletionDate OrderField = "requested_completion_date"
	FieldProductName             OrderField = "product_name"
	FieldID                      OrderField = "id"
)

// Valid reports whether f is a sortable field
func (f OrderField) Valid() bool {
	switch f {
	case FieldCreatedAt, FieldRequestDate, FieldRequestedCompletionDate, FieldProductName, FieldID:
		return true
	}
	return false
}

// SortOrders stable-sorts orders in place by field. Zero dates sort first
// when ascending. An unknown field leaves the order untouched.
func SortOrders(orders []*Order, field OrderField, descending bool) {
	less := orderLess(field)
	if less == nil {
		return
	}
	sort.SliceStable(orders, func(i, j int) bool {
		if descending {
			return less(orders[j], orders[i])
		}
		return less(orders[i], orders[j])
	})
}

func orderLess(field OrderField) func(a, b *Order) bool {
	switch field {
	case FieldCreatedAt:
		return func(a, b *Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case FieldRequestDate:
		return func(a, b *Order) bool { return a.RequestDate.Before(b.RequestDate) }
	case FieldRequestedCompletionDate:
		return func(a, b *Order) bool { return a.RequestedCompletionDate.Before(b.RequestedCompletionDate) }
	case FieldProductName:
		return func(a, b *Order) bool { return a.ProductName < b.ProductName }
	case FieldID:
		return func(a, b *Order) bool { return a.ID < b.ID }
	default:
		return nil
	}
}
