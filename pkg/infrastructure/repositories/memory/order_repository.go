package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
	"github.com/vsinha/prodschedule/pkg/infrastructure/events"
)

type collection struct {
	orders    []entities.Order
	ordersMap map[string]int
}

func newCollection(expected int) *collection {
	return &collection{
		orders:    make([]entities.Order, 0, expected),
		ordersMap: make(map[string]int, expected),
	}
}

func (c *collection) put(order entities.Order) {
	if idx, exists := c.ordersMap[order.ID]; exists {
		c.orders[idx] = order
		return
	}
	c.ordersMap[order.ID] = len(c.orders)
	c.orders = append(c.orders, order)
}

func (c *collection) remove(id string) bool {
	idx, exists := c.ordersMap[id]
	if !exists {
		return false
	}
	c.orders = append(c.orders[:idx], c.orders[idx+1:]...)
	delete(c.ordersMap, id)
	for i := idx; i < len(c.orders); i++ {
		c.ordersMap[c.orders[i].ID] = i
	}
	return true
}

func (c *collection) snapshot() []*entities.Order {
	orders := make([]*entities.Order, 0, len(c.orders))
	for i := range c.orders {
		orders = append(orders, c.orders[i].Clone())
	}
	return orders
}

// OrderRepository provides in-memory order storage with push snapshots
type OrderRepository struct {
	mu          sync.Mutex
	collections map[string]*collection
	store       events.EventStore
}

// NewOrderRepository creates a new in-memory order repository publishing
// changes to store. A nil store gets a private in-memory event store.
func NewOrderRepository(store events.EventStore) *OrderRepository {
	if store == nil {
		store = events.NewInMemoryEventStore()
	}
	return &OrderRepository{
		collections: make(map[string]*collection),
		store:       store,
	}
}

// Verify interface compliance
var _ repositories.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) collection(name string) *collection {
	c, exists := r.collections[name]
	if !exists {
		c = newCollection(0)
		r.collections[name] = c
	}
	return c
}

// ListOrders returns copies of the collection's orders sorted by the query field
func (r *OrderRepository) ListOrders(ctx context.Context, query repositories.OrderQuery) ([]*entities.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	query = query.WithDefaults()
	if !query.OrderBy.Valid() {
		return nil, fmt.Errorf("%w: %s", repositories.ErrInvalidOrderField, query.OrderBy)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	orders := r.collection(query.Collection).snapshot()
	entities.SortOrders(orders, query.OrderBy, query.Descending)
	return orders, nil
}

// SaveOrder inserts or replaces an order by id
func (r *OrderRepository) SaveOrder(ctx context.Context, name string, order *entities.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if order == nil || order.ID == "" {
		return fmt.Errorf("order must have an id")
	}
	name = collectionName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.collection(name)
	c.put(*order.Clone())
	return r.publish(name, c)
}

// DeleteOrder removes an order by id
func (r *OrderRepository) DeleteOrder(ctx context.Context, name string, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name = collectionName(name)

	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.collection(name)
	if !c.remove(id) {
		return fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, id)
	}
	return r.publish(name, c)
}

// ReplaceOrders swaps the whole collection
func (r *OrderRepository) ReplaceOrders(ctx context.Context, name string, orders []*entities.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name = collectionName(name)

	c := newCollection(len(orders))
	for i, order := range orders {
		if order == nil || order.ID == "" {
			return fmt.Errorf("order %d must have an id", i)
		}
		c.put(*order.Clone())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.collections[name] = c
	return r.publish(name, c)
}

// Subscribe emits the current snapshot and one per mutation thereafter.
// Registration happens under the repository lock so no mutation can slip
// between the initial snapshot and the first event.
func (r *OrderRepository) Subscribe(ctx context.Context, query repositories.OrderQuery) (repositories.Subscription, error) {
	query = query.WithDefaults()
	if !query.OrderBy.Valid() {
		return nil, fmt.Errorf("%w: %s", repositories.ErrInvalidOrderField, query.OrderBy)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	sub := events.NewSnapshotSubscription(query)
	sub.Push(r.collection(query.Collection).snapshot())
	if err := sub.Attach(ctx, r.store); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", query.Collection, err)
	}
	return sub, nil
}

// Count returns the number of orders in a collection
func (r *OrderRepository) Count(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, exists := r.collections[collectionName(name)]; exists {
		return len(c.orders)
	}
	return 0
}

func (r *OrderRepository) publish(name string, c *collection) error {
	if err := r.store.AppendEvent(name, events.NewOrdersChangedEvent(name, c.snapshot())); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", name, err)
	}
	return nil
}

func collectionName(name string) string {
	if name == "" {
		return repositories.DefaultCollection
	}
	return name
}
