package testing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

// Date returns midnight UTC of the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DatePtr returns a pointer to midnight UTC of the given day
func DatePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// BuildScenarioOrders builds the two-order March 2024 scenario: one confirmed
// order on Line1 and one pending-review order with only a creation time.
func BuildScenarioOrders() []*entities.Order {
	return []*entities.Order{
		{
			ID:                    "ORD-001",
			Status:                entities.Confirmed,
			ProductName:           "Gear Housing",
			Quantity:              decimal.NewFromInt(120),
			RequesterName:         "Park",
			CreatedAt:             Date(2024, time.February, 20),
			RequestDate:           Date(2024, time.March, 1),
			PlannedCompletionDate: DatePtr(2024, time.March, 10),
			AssignedLine:          "Line1",
		},
		{
			ID:            "ORD-002",
			Status:        entities.PendingReview,
			ProductName:   "Drive Shaft",
			Quantity:      decimal.NewFromInt(40),
			RequesterName: "Lee",
			CreatedAt:     time.Date(2024, time.March, 5, 14, 37, 0, 0, time.UTC),
		},
	}
}

// BuildPortalTestOrders builds a portal snapshot covering every lifecycle
// status, missing-date fallbacks and a cancelled order.
func BuildPortalTestOrders() []*entities.Order {
	return []*entities.Order{
		{
			ID:                      "PO-100",
			Status:                  entities.PendingReview,
			ProductName:             "Bracket A",
			Quantity:                decimal.NewFromInt(500),
			RequesterName:           "Choi",
			CreatedAt:               Date(2024, time.March, 2),
			RequestDate:             Date(2024, time.March, 4),
			RequestedCompletionDate: Date(2024, time.March, 20),
		},
		{
			ID:                      "PO-101",
			Status:                  entities.Confirmed,
			ProductName:             "Valve Body",
			Quantity:                decimal.RequireFromString("12.5"),
			RequesterName:           "Kim",
			CreatedAt:               Date(2024, time.March, 1),
			RequestDate:             Date(2024, time.March, 6),
			RequestedCompletionDate: Date(2024, time.March, 25),
			PlannedCompletionDate:   DatePtr(2024, time.March, 18),
			AssignedLine:            "Line2",
		},
		{
			ID:                      "PO-102",
			Status:                  entities.InProgress,
			ProductName:             "Pump Cover",
			Quantity:                decimal.NewFromInt(80),
			RequesterName:           "Kim",
			CreatedAt:               Date(2024, time.March, 3),
			RequestDate:             Date(2024, time.March, 8),
			RequestedCompletionDate: Date(2024, time.March, 15),
			AssignedLine:            "Line1",
		},
		{
			ID:                      "PO-103",
			Status:                  entities.Completed,
			ProductName:             "Valve Stem",
			Quantity:                decimal.NewFromInt(300),
			RequesterName:           "Jung",
			CreatedAt:               Date(2024, time.February, 25),
			RequestDate:             Date(2024, time.March, 1),
			RequestedCompletionDate: Date(2024, time.March, 30),
			PlannedCompletionDate:   DatePtr(2024, time.March, 20),
			ActualCompletionDate:    DatePtr(2024, time.March, 12),
			AssignedLine:            "Line1",
		},
		{
			ID:                      "PO-104",
			Status:                  entities.Cancelled,
			ProductName:             "Bracket B",
			Quantity:                decimal.NewFromInt(10),
			RequesterName:           "Choi",
			CreatedAt:               Date(2024, time.March, 1),
			RequestDate:             Date(2024, time.March, 2),
			RequestedCompletionDate: Date(2024, time.March, 9),
			AssignedLine:            "Line2",
		},
		{
			ID:            "PO-105",
			Status:        entities.Confirmed,
			ProductName:   "Flange",
			Quantity:      decimal.NewFromInt(60),
			RequesterName: "Han",
			CreatedAt:     Date(2024, time.March, 10),
		},
		{
			ID:                    "PO-106",
			Status:                entities.OrderStatus("on_hold"),
			ProductName:           "Coupling",
			Quantity:              decimal.NewFromInt(25),
			RequesterName:         "Yoon",
			CreatedAt:             Date(2024, time.March, 1),
			PlannedCompletionDate: DatePtr(2024, time.March, 28),
			AssignedLine:          "Line3",
		},
	}
}
