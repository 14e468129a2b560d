package entities

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestOrder_Validation(t *testing.T) {
	createdAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	validOrder, err := NewOrder("ORD-001", Confirmed, "Widget", decimal.NewFromInt(5), "Kim", createdAt)
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	if !validOrder.Quantity.Equal(decimal.NewFromInt(5)) {
		t.Errorf("Expected quantity 5, got %s", validOrder.Quantity)
	}

	testCases := []struct {
		name        string
		id          string
		quantity    decimal.Decimal
		expectError string
	}{
		{"empty id", "", decimal.NewFromInt(1), "order id cannot be empty"},
		{"blank id", "   ", decimal.NewFromInt(1), "order id cannot be empty"},
		{"negative quantity", "ORD", decimal.NewFromInt(-2), "quantity cannot be negative, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.id, Confirmed, "Widget", tc.quantity, "Kim", createdAt)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestOrder_ZeroQuantityAllowed(t *testing.T) {
	if _, err := NewOrder("ORD", PendingReview, "Widget", decimal.Zero, "Kim", time.Now()); err != nil {
		t.Fatalf("Expected zero quantity to be accepted: %v", err)
	}
}

func TestParseOrderStatus(t *testing.T) {
	testCases := []struct {
		raw   string
		want  OrderStatus
		known bool
	}{
		{"pending_review", PendingReview, true},
		{" Confirmed ", Confirmed, true},
		{"IN_PROGRESS", InProgress, true},
		{"completed", Completed, true},
		{"cancelled", Cancelled, true},
		{"on_hold", OrderStatus("on_hold"), false},
		{"", OrderStatus(""), false},
	}

	for _, tc := range testCases {
		got := ParseOrderStatus(tc.raw)
		if got != tc.want {
			t.Errorf("ParseOrderStatus(%q) = %q, want %q", tc.raw, got, tc.want)
		}
		if got.Known() != tc.known {
			t.Errorf("%q.Known() = %v, want %v", got, got.Known(), tc.known)
		}
	}
}

func TestOrderStatus_Label(t *testing.T) {
	if PendingReview.Label() != "검토 대기" {
		t.Errorf("unexpected pending_review label %q", PendingReview.Label())
	}
	if Completed.Label() != "완료" {
		t.Errorf("unexpected completed label %q", Completed.Label())
	}
	if OrderStatus("on_hold").Label() != "on_hold" {
		t.Errorf("unknown statuses should label as their raw value")
	}
}

func TestOrder_CloneIsDeep(t *testing.T) {
	planned := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	original := &Order{ID: "ORD", PlannedCompletionDate: &planned}

	clone := original.Clone()
	*clone.PlannedCompletionDate = planned.AddDate(0, 0, 5)

	if !original.PlannedCompletionDate.Equal(planned) {
		t.Errorf("mutating the clone changed the original: %v", original.PlannedCompletionDate)
	}

	var nilOrder *Order
	if nilOrder.Clone() != nil {
		t.Errorf("Clone of nil should be nil")
	}
}

func TestSortOrders(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }
	orders := []*Order{
		{ID: "b", ProductName: "Bolt", CreatedAt: day(3)},
		{ID: "a", ProductName: "Axle", CreatedAt: day(1)},
		{ID: "c", ProductName: "Cog", CreatedAt: day(2)},
	}

	SortOrders(orders, FieldCreatedAt, false)
	if orders[0].ID != "a" || orders[1].ID != "c" || orders[2].ID != "b" {
		t.Errorf("ascending created_at sort wrong: %s %s %s", orders[0].ID, orders[1].ID, orders[2].ID)
	}

	SortOrders(orders, FieldProductName, true)
	if orders[0].ProductName != "Cog" || orders[2].ProductName != "Axle" {
		t.Errorf("descending product_name sort wrong: %s .. %s", orders[0].ProductName, orders[2].ProductName)
	}

	SortOrders(orders, OrderField("nope"), false)
	if orders[0].ProductName != "Cog" {
		t.Errorf("unknown field must not reorder")
	}
	if OrderField("nope").Valid() {
		t.Errorf("unknown field reported valid")
	}
}

func TestTaskLabel(t *testing.T) {
	label := TaskLabel("Widget", decimal.RequireFromString("12.5"), "Kim")
	if label != "Widget (12.5) - Kim" {
		t.Errorf("unexpected label %q", label)
	}
}
