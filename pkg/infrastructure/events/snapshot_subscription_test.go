package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
)

func receive(t *testing.T, sub *SnapshotSubscription) []*entities.Order {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		require.True(t, ok, "snapshot channel closed")
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSnapshotSubscription_SortsAndFiltersByCollection(t *testing.T) {
	store := NewInMemoryEventStore()
	sub := NewSnapshotSubscription(repositories.OrderQuery{OrderBy: entities.FieldID})
	require.NoError(t, sub.Attach(context.Background(), store))
	defer sub.Close()

	assert.NotEmpty(t, sub.ID())

	require.NoError(t, store.AppendEvent("archive", NewOrdersChangedEvent("archive", []*entities.Order{{ID: "x"}})))
	require.NoError(t, store.AppendEvent("orders", NewOrdersChangedEvent("orders", []*entities.Order{{ID: "b"}, {ID: "a"}})))

	snap := receive(t, sub)
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].ID)
	assert.Equal(t, "b", snap[1].ID)
}

func TestSnapshotSubscription_LatestWins(t *testing.T) {
	sub := NewSnapshotSubscription(repositories.OrderQuery{})
	defer sub.Close()

	sub.Push([]*entities.Order{{ID: "old"}})
	sub.Push([]*entities.Order{{ID: "new-1"}, {ID: "new-2"}})

	snap := receive(t, sub)
	require.Len(t, snap, 2)
	assert.Equal(t, "new-1", snap[0].ID)

	select {
	case <-sub.Snapshots():
		t.Fatal("stale snapshot was not replaced")
	default:
	}
}

func TestSnapshotSubscription_ClosesOnContextCancel(t *testing.T) {
	store := NewInMemoryEventStore()
	ctx, cancel := context.WithCancel(context.Background())
	sub := NewSnapshotSubscription(repositories.OrderQuery{})
	require.NoError(t, sub.Attach(ctx, store))

	cancel()

	select {
	case _, ok := <-sub.Snapshots():
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription did not close after cancel")
	}

	// closing twice is fine and pushes after close are dropped
	require.NoError(t, sub.Close())
	sub.Push([]*entities.Order{{ID: "late"}})
	require.NoError(t, store.AppendEvent("orders", NewOrdersChangedEvent("orders", nil)))
}
