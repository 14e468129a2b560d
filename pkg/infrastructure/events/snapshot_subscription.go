package events

import (
	"context"
	"sync"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
)

// SnapshotSubscription turns orders.changed events for one collection into a
// latest-wins stream of sorted snapshots.
type SnapshotSubscription struct {
	id     string
	query  repositories.OrderQuery
	store  EventStore
	ch     chan []*entities.Order
	done   chan struct{}
	mu     sync.Mutex
	closed bool
}

var _ repositories.Subscription = (*SnapshotSubscription)(nil)

// NewSnapshotSubscription creates an unregistered subscription for query.
// Callers push the initial snapshot and then call Attach.
func NewSnapshotSubscription(query repositories.OrderQuery) *SnapshotSubscription {
	return &SnapshotSubscription{
		query: query.WithDefaults(),
		ch:    make(chan []*entities.Order, 1),
		done:  make(chan struct{}),
	}
}

// Attach registers the subscription with store and closes it when ctx ends
func (s *SnapshotSubscription) Attach(ctx context.Context, store EventStore) error {
	id, err := store.Subscribe([]string{OrdersChangedEvent}, s)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.id = id
	s.store = store
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return nil
}

func (s *SnapshotSubscription) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

func (s *SnapshotSubscription) Snapshots() <-chan []*entities.Order {
	return s.ch
}

func (s *SnapshotSubscription) CanHandle(eventType string) bool {
	return eventType == OrdersChangedEvent
}

func (s *SnapshotSubscription) Handle(event Event) error {
	changed, ok := event.Data().(OrdersChanged)
	if !ok || changed.Collection != s.query.Collection {
		return nil
	}
	s.Push(changed.Orders)
	return nil
}

// Push delivers a snapshot, replacing any snapshot not yet received
func (s *SnapshotSubscription) Push(orders []*entities.Order) {
	snapshot := entities.CloneOrders(orders)
	entities.SortOrders(snapshot, s.query.OrderBy, s.query.Descending)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- snapshot
}

// Close unregisters the subscription and closes the snapshot channel.
// It is safe to call more than once.
func (s *SnapshotSubscription) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.ch)
	close(s.done)
	store, id := s.store, s.id
	s.mu.Unlock()

	if store != nil && id != "" {
		return store.Unsubscribe(id)
	}
	return nil
}
