package watch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
	"github.com/vsinha/prodschedule/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/prodschedule/pkg/infrastructure/repositories/memory"
	fixtures "github.com/vsinha/prodschedule/pkg/infrastructure/testing"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeOrders(t *testing.T, path string, orders []*entities.Order) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, csv.WriteOrders(&buf, orders))
	// write then rename, the way editors save
	tmp := path + ".tmp"
	require.NoError(t, os.WriteFile(tmp, buf.Bytes(), 0o644))
	require.NoError(t, os.Rename(tmp, path))
}

func waitForIDs(t *testing.T, sub repositories.Subscription, want []string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case snap, ok := <-sub.Snapshots():
			require.True(t, ok, "subscription closed")
			got := make([]string, 0, len(snap))
			for _, o := range snap {
				got = append(got, o.ID)
			}
			if assert.ObjectsAreEqual(want, got) {
				return
			}
		case <-deadline:
			require.FailNow(t, "timed out waiting for snapshot", "want %v", want)
		}
	}
}

func TestOrdersWatcher_ReloadsOnChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "orders.csv")
	writeOrders(t, path, fixtures.BuildScenarioOrders())

	repo := memory.NewOrderRepository(nil)
	w := NewOrdersWatcher(path, csv.NewLoader(), repo, "", 20*time.Millisecond, zaptest.NewLogger(t))
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	sub, err := repo.Subscribe(ctx, repositories.OrderQuery{OrderBy: entities.FieldID})
	require.NoError(t, err)
	defer sub.Close()

	waitForIDs(t, sub, []string{"ORD-001", "ORD-002"})

	writeOrders(t, path, fixtures.BuildPortalTestOrders()[:2])
	waitForIDs(t, sub, []string{"PO-100", "PO-101"})

	assert.GreaterOrEqual(t, w.Stats().Reloads, 2)
	assert.Equal(t, 0, w.Stats().Failures)
}

func TestOrdersWatcher_FailedReloadKeepsLastSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "orders.csv")
	writeOrders(t, path, fixtures.BuildScenarioOrders())

	repo := memory.NewOrderRepository(nil)
	w := NewOrdersWatcher(path, csv.NewLoader(), repo, "orders", 20*time.Millisecond, zaptest.NewLogger(t))

	var failures atomic.Int32
	w.OnReadError(func(error) { failures.Add(1) })
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("not,an,orders,file\n"), 0o644))
	require.Eventually(t, func() bool { return failures.Load() > 0 }, 5*time.Second, 10*time.Millisecond)

	orders, err := repo.ListOrders(ctx, repositories.OrderQuery{})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Contains(t, w.Stats().LastError, "header mismatch")
}

func TestOrdersWatcher_IgnoresOtherFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "orders.csv")
	writeOrders(t, path, fixtures.BuildScenarioOrders())

	w := NewOrdersWatcher(path, csv.NewLoader(), memory.NewOrderRepository(nil), "", 10*time.Millisecond, nil)
	require.NoError(t, w.Start(ctx))
	defer w.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644))
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, 1, w.Stats().Reloads)
	assert.Zero(t, w.Stats().Events)
}

func TestOrdersWatcher_InitialLoadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")
	w := NewOrdersWatcher(path, csv.NewLoader(), memory.NewOrderRepository(nil), "", 0, nil)

	err := w.Start(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	// nothing was started, so Stop is a no-op
	w.Stop()
}

func TestOrdersWatcher_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	path := filepath.Join(t.TempDir(), "orders.csv")
	writeOrders(t, path, fixtures.BuildScenarioOrders())

	w := NewOrdersWatcher(path, csv.NewLoader(), memory.NewOrderRepository(nil), "", 0, nil)
	require.NoError(t, w.Start(ctx))
	require.NoError(t, w.Start(ctx), "second Start is a no-op")

	cancel()
	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after cancellation")
	}
	w.Stop()
}
