package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Task is the schedule's projection of one non-cancelled order.
// It is recomputed on every layout pass and never stored.
type Task struct {
	ID            string          `json:"id"`
	Label         string          `json:"label"`
	ProductName   string          `json:"product_name"`
	RequesterName string          `json:"requester_name"`
	Quantity      decimal.Decimal `json:"quantity"`
	Start         time.Time       `json:"start"`
	End           time.Time       `json:"end"` // inclusive
	Status        OrderStatus     `json:"status"`
	Line          string          `json:"line"`
}

// TaskLabel formats the display label for an order: product, quantity, requester
func TaskLabel(productName string, quantity decimal.Decimal, requesterName string) string {
	return fmt.Sprintf("%s (%s) - %s", productName, quantity.String(), requesterName)
}
