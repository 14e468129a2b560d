package repositories

import (
	"context"
	"errors"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

// DefaultCollection is the collection production orders live in
const DefaultCollection = "orders"

var (
	// ErrOrderNotFound is returned when an order id does not exist in a collection
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidCollection is returned for collection names a store cannot address
	ErrInvalidCollection = errors.New("invalid collection name")
	// ErrInvalidOrderField is returned when a query sorts by an unknown field
	ErrInvalidOrderField = errors.New("invalid order field")
)

// OrderQuery selects a collection and the field its records are ordered by
type OrderQuery struct {
	Collection string
	OrderBy    entities.OrderField
	Descending bool
}

// WithDefaults fills in the default collection and ordering
func (q OrderQuery) WithDefaults() OrderQuery {
	if q.Collection == "" {
		q.Collection = DefaultCollection
	}
	if q.OrderBy == "" {
		q.OrderBy = entities.FieldCreatedAt
	}
	return q
}

// Subscription is a push stream of full order snapshots.
// Every value received replaces the previous one; it is never a delta.
type Subscription interface {
	ID() string
	Snapshots() <-chan []*entities.Order
	Close() error
}

// OrderRepository provides access to production order records
type OrderRepository interface {
	ListOrders(ctx context.Context, query OrderQuery) ([]*entities.Order, error)
	SaveOrder(ctx context.Context, collection string, order *entities.Order) error
	DeleteOrder(ctx context.Context, collection string, id string) error

	// ReplaceOrders swaps the whole collection for the given orders.
	ReplaceOrders(ctx context.Context, collection string, orders []*entities.Order) error

	// Subscribe emits the current snapshot immediately and a new one after
	// every mutation of the collection, until ctx is done or Close is called.
	Subscribe(ctx context.Context, query OrderQuery) (Subscription, error)
}
