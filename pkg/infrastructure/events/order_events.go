package events

import (
	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

const (
	OrdersChangedEvent    = "orders.changed"
	OrdersReadFailedEvent = "orders.read_failed"
)

// OrdersChanged carries the full contents of a collection after a mutation
type OrdersChanged struct {
	Collection string            `json:"collection"`
	Orders     []*entities.Order `json:"orders"`
}

// OrdersReadFailed reports that a source could not be read; consumers keep
// whatever they last had.
type OrdersReadFailed struct {
	Collection string `json:"collection"`
	Reason     string `json:"reason"`
}

func NewOrdersChangedEvent(collection string, orders []*entities.Order) Event {
	return NewEvent(OrdersChangedEvent, collection, OrdersChanged{
		Collection: collection,
		Orders:     entities.CloneOrders(orders),
	})
}

func NewOrdersReadFailedEvent(collection string, err error) Event {
	reason := ""
	if err != nil {
		reason = err.Error()
	}
	return NewEvent(OrdersReadFailedEvent, collection, OrdersReadFailed{
		Collection: collection,
		Reason:     reason,
	})
}
