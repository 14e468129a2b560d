// Package watch keeps a record-store collection in sync with an orders file
// on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
)

// DefaultDebounce batches the burst of events an editor save produces
const DefaultDebounce = 300 * time.Millisecond

// Loader reads a full order snapshot from a file
type Loader interface {
	LoadOrders(filename string) ([]*entities.Order, error)
}

// Stats counts watcher activity
type Stats struct {
	Events        int
	Reloads       int
	Failures      int
	LastReload    time.Time
	LastError     string
	LastEventPath string
}

// OrdersWatcher reloads an orders file into a collection whenever the file
// changes. A reload that fails is logged and skipped, so the collection
// keeps its last good contents.
type OrdersWatcher struct {
	mu         sync.Mutex
	watcher    *fsnotify.Watcher
	path       string
	dir        string
	loader     Loader
	repo       repositories.OrderRepository
	collection string
	debounce   time.Duration
	logger     *zap.Logger
	onError    func(error)
	stopCh     chan struct{}
	doneCh     chan struct{}
	running    bool
	stats      Stats
}

// NewOrdersWatcher creates a watcher for path. A non-positive debounce uses
// DefaultDebounce.
func NewOrdersWatcher(
	path string,
	loader Loader,
	repo repositories.OrderRepository,
	collection string,
	debounce time.Duration,
	logger *zap.Logger,
) *OrdersWatcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if collection == "" {
		collection = repositories.DefaultCollection
	}
	path = filepath.Clean(path)

	return &OrdersWatcher{
		path:       path,
		dir:        filepath.Dir(path),
		loader:     loader,
		repo:       repo,
		collection: collection,
		debounce:   debounce,
		logger:     logger.With(zap.String("file", path), zap.String("collection", collection)),
	}
}

// OnReadError registers a callback for failed reloads
func (w *OrdersWatcher) OnReadError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start loads the file once and then watches its directory. It returns an
// error when the initial load fails. The watch loop runs until ctx is done
// or Stop is called.
func (w *OrdersWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	if err := w.Reload(ctx); err != nil {
		return fmt.Errorf("initial load of %s failed: %w", w.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// editors replace files by rename, which drops a watch on the file itself
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	w.mu.Lock()
	w.watcher = watcher
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.running = true
	stopCh, doneCh := w.stopCh, w.doneCh
	w.mu.Unlock()

	w.logger.Info("watching orders file", zap.Duration("debounce", w.debounce))
	go w.run(ctx, watcher, stopCh, doneCh)
	return nil
}

// Stop ends the watch loop and waits for it to exit
func (w *OrdersWatcher) Stop() {
	w.mu.Lock()
	if w.doneCh == nil {
		w.mu.Unlock()
		return
	}
	if w.running {
		w.running = false
		close(w.stopCh)
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	<-doneCh
	w.logger.Debug("orders watcher stopped")
}

// Reload reads the file and replaces the collection with its contents
func (w *OrdersWatcher) Reload(ctx context.Context) error {
	orders, err := w.loader.LoadOrders(w.path)
	if err == nil {
		err = w.repo.ReplaceOrders(ctx, w.collection, orders)
	}

	w.mu.Lock()
	onError := w.onError
	if err != nil {
		w.stats.Failures++
		w.stats.LastError = err.Error()
	} else {
		w.stats.Reloads++
		w.stats.LastReload = time.Now()
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("failed to reload orders, keeping last snapshot", zap.Error(err))
		if onError != nil {
			onError(err)
		}
		return err
	}

	w.logger.Info("reloaded orders", zap.Int("count", len(orders)))
	return nil
}

// Stats returns a copy of the watcher's counters
func (w *OrdersWatcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

func (w *OrdersWatcher) run(ctx context.Context, watcher *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Warn("failed to close watcher", zap.Error(err))
		}
	}()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.markStopped()
			return

		case <-stopCh:
			return

		case event, ok := <-watcher.Events:
			if !ok {
				w.markStopped()
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.mu.Lock()
			w.stats.Events++
			w.stats.LastEventPath = event.Name
			w.mu.Unlock()
			w.logger.Debug("orders file event", zap.String("op", event.Op.String()))

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				w.markStopped()
				return
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-fire:
			fire = nil
			_ = w.Reload(ctx)
		}
	}
}

func (w *OrdersWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// markStopped records that the loop ended without Stop
func (w *OrdersWatcher) markStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}
