package schedule

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	fixtures "github.com/vsinha/prodschedule/pkg/infrastructure/testing"
)

var now = time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)

func resolve(t *testing.T, o *entities.Order) entities.Task {
	t.Helper()
	task, ok := DefaultPolicy().Resolve(o, now, time.UTC)
	require.True(t, ok, "order %s was excluded", o.ID)
	assert.False(t, task.End.Before(task.Start), "end before start for %s", o.ID)
	return task
}

func TestResolve_PendingReview(t *testing.T) {
	t.Run("only created at", func(t *testing.T) {
		task := resolve(t, &entities.Order{
			ID:        "P1",
			Status:    entities.PendingReview,
			CreatedAt: time.Date(2024, 3, 5, 14, 37, 0, 0, time.UTC),
		})
		assert.Equal(t, day(2024, 3, 5), task.Start)
		assert.Equal(t, day(2024, 4, 4), task.End)
		assert.Equal(t, PendingReviewLine, task.Line)
	})

	t.Run("request dates win", func(t *testing.T) {
		task := resolve(t, &entities.Order{
			ID:                      "P2",
			Status:                  entities.PendingReview,
			CreatedAt:               day(2024, 3, 1),
			RequestDate:             day(2024, 3, 4),
			RequestedCompletionDate: day(2024, 3, 20),
			AssignedLine:            "Line9",
		})
		assert.Equal(t, day(2024, 3, 4), task.Start)
		assert.Equal(t, day(2024, 3, 20), task.End)
		assert.Equal(t, PendingReviewLine, task.Line, "pending orders ignore the assigned line")
	})

	t.Run("no dates at all", func(t *testing.T) {
		task := resolve(t, &entities.Order{ID: "P3", Status: entities.PendingReview})
		assert.Equal(t, day(2024, 3, 15), task.Start)
		assert.Equal(t, day(2024, 4, 14), task.End)
	})
}

func TestResolve_ConfirmedAndInProgress(t *testing.T) {
	for _, status := range []entities.OrderStatus{entities.Confirmed, entities.InProgress} {
		t.Run(string(status), func(t *testing.T) {
			planned := resolve(t, &entities.Order{
				ID:                      "C1",
				Status:                  status,
				CreatedAt:               day(2024, 2, 28),
				RequestDate:             day(2024, 3, 1),
				RequestedCompletionDate: day(2024, 3, 25),
				PlannedCompletionDate:   fixtures.DatePtr(2024, 3, 10),
				AssignedLine:            "Line1",
			})
			assert.Equal(t, day(2024, 3, 1), planned.Start)
			assert.Equal(t, day(2024, 3, 10), planned.End)
			assert.Equal(t, "Line1", planned.Line)

			requested := resolve(t, &entities.Order{
				ID:                      "C2",
				Status:                  status,
				CreatedAt:               day(2024, 3, 2),
				RequestedCompletionDate: day(2024, 3, 25),
			})
			assert.Equal(t, day(2024, 3, 2), requested.Start)
			assert.Equal(t, day(2024, 3, 25), requested.End)
			assert.Equal(t, UnassignedLine, requested.Line)

			spanned := resolve(t, &entities.Order{
				ID:          "C3",
				Status:      status,
				RequestDate: day(2024, 3, 2),
			})
			assert.Equal(t, day(2024, 4, 1), spanned.End)
		})
	}
}

func TestResolve_CompletedPrefersActualCompletion(t *testing.T) {
	task := resolve(t, &entities.Order{
		ID:                      "D1",
		Status:                  entities.Completed,
		RequestDate:             day(2024, 3, 1),
		RequestedCompletionDate: day(2024, 3, 30),
		PlannedCompletionDate:   fixtures.DatePtr(2024, 3, 20),
		ActualCompletionDate:    fixtures.DatePtr(2024, 3, 12),
	})
	assert.Equal(t, day(2024, 3, 12), task.End)

	withoutActual := resolve(t, &entities.Order{
		ID:                      "D2",
		Status:                  entities.Completed,
		RequestDate:             day(2024, 3, 1),
		RequestedCompletionDate: day(2024, 3, 30),
		PlannedCompletionDate:   fixtures.DatePtr(2024, 3, 20),
	})
	assert.Equal(t, day(2024, 3, 20), withoutActual.End)
}

func TestResolve_UnknownStatus(t *testing.T) {
	task := resolve(t, &entities.Order{
		ID:                    "U1",
		Status:                entities.OrderStatus("on_hold"),
		CreatedAt:             day(2024, 3, 1),
		RequestDate:           day(2024, 2, 1),
		PlannedCompletionDate: fixtures.DatePtr(2024, 3, 28),
		AssignedLine:          "Line3",
	})
	assert.Equal(t, day(2024, 3, 28), task.End)
	assert.Equal(t, day(2024, 3, 21), task.Start, "start is derived from end, request date is ignored")
	assert.Equal(t, "Line3", task.Line)

	fromCreated := resolve(t, &entities.Order{
		ID:        "U2",
		Status:    entities.OrderStatus(""),
		CreatedAt: day(2024, 3, 1),
	})
	assert.Equal(t, day(2024, 3, 31), fromCreated.End)
	assert.Equal(t, day(2024, 3, 24), fromCreated.Start)
	assert.Equal(t, UnassignedLine, fromCreated.Line)

	bare := resolve(t, &entities.Order{ID: "U3", Status: entities.OrderStatus("archived")})
	assert.Equal(t, day(2024, 4, 14), bare.End)
	assert.Equal(t, day(2024, 4, 7), bare.Start)
}

func TestResolve_ExcludesCancelledAndNil(t *testing.T) {
	_, ok := DefaultPolicy().Resolve(&entities.Order{ID: "X", Status: entities.Cancelled}, now, time.UTC)
	assert.False(t, ok)

	_, ok = DefaultPolicy().Resolve(nil, now, time.UTC)
	assert.False(t, ok)
}

func TestResolve_ClampsInvertedInterval(t *testing.T) {
	task := resolve(t, &entities.Order{
		ID:                    "K1",
		Status:                entities.Confirmed,
		RequestDate:           day(2024, 3, 10),
		PlannedCompletionDate: fixtures.DatePtr(2024, 3, 1),
	})
	assert.Equal(t, day(2024, 3, 10), task.Start)
	assert.Equal(t, day(2024, 3, 10), task.End)
}

func TestResolve_BlankLineIsUnassigned(t *testing.T) {
	task := resolve(t, &entities.Order{ID: "L1", Status: entities.InProgress, AssignedLine: "   "})
	assert.Equal(t, UnassignedLine, task.Line)

	trimmed := resolve(t, &entities.Order{ID: "L2", Status: entities.InProgress, AssignedLine: " Line2 "})
	assert.Equal(t, "Line2", trimmed.Line)
}

func TestResolve_NormalizesInViewingLocation(t *testing.T) {
	task, ok := DefaultPolicy().Resolve(&entities.Order{
		ID:          "Z1",
		Status:      entities.Confirmed,
		RequestDate: time.Date(2024, 2, 29, 20, 0, 0, 0, time.UTC),
	}, now, seoul)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, seoul), task.Start)
	assert.Equal(t, time.Date(2024, 3, 31, 0, 0, 0, 0, seoul), task.End)
}

func TestResolve_CopiesDisplayFields(t *testing.T) {
	task := resolve(t, &entities.Order{
		ID:            "F1",
		Status:        entities.Confirmed,
		ProductName:   "Valve Body",
		Quantity:      decimal.RequireFromString("12.5"),
		RequesterName: "Kim",
	})
	assert.Equal(t, "F1", task.ID)
	assert.Equal(t, "Valve Body (12.5) - Kim", task.Label)
	assert.Equal(t, entities.Confirmed, task.Status)
}

func TestPolicy_IsData(t *testing.T) {
	policy := DefaultPolicy()
	assert.Len(t, policy.RuleFor(entities.Completed).End, 3)
	assert.Equal(t, UnknownStatusLeadDays, policy.RuleFor("whatever").StartFromEnd)

	// swapping a rule changes resolution without touching code
	rule := policy.RuleFor(entities.InProgress)
	rule.End = []DateSource{ActualCompletion, RequestedCompletion}
	policy.Rules[entities.InProgress] = rule

	task, ok := policy.Resolve(&entities.Order{
		ID:                    "R1",
		Status:                entities.InProgress,
		RequestDate:           day(2024, 3, 1),
		PlannedCompletionDate: fixtures.DatePtr(2024, 3, 5),
		ActualCompletionDate:  fixtures.DatePtr(2024, 3, 8),
	}, now, time.UTC)
	require.True(t, ok)
	assert.Equal(t, day(2024, 3, 8), task.End)

	// the default table is rebuilt on every call
	assert.Len(t, DefaultPolicy().RuleFor(entities.InProgress).End, 2)
	assert.Equal(t, "planned_completion_date", DefaultPolicy().RuleFor(entities.InProgress).End[0].Name)
}

func TestResolveAll_KeepsOrderAndDropsCancelled(t *testing.T) {
	orders := fixtures.BuildPortalTestOrders()
	tasks := DefaultPolicy().ResolveAll(append(orders, nil), now, time.UTC)

	require.Len(t, tasks, len(orders)-1)
	var ids []string
	for _, task := range tasks {
		ids = append(ids, task.ID)
		assert.NotEqual(t, entities.Cancelled, task.Status)
	}
	assert.Equal(t, []string{"PO-100", "PO-101", "PO-102", "PO-103", "PO-105", "PO-106"}, ids)
}
