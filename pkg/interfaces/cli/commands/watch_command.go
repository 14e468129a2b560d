package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/prodschedule/pkg/application/dto"
	"github.com/vsinha/prodschedule/pkg/config"
	"github.com/vsinha/prodschedule/pkg/infrastructure/events"
	"github.com/vsinha/prodschedule/pkg/infrastructure/watch"
	"github.com/vsinha/prodschedule/pkg/interfaces/cli/output"
)

// WatchConfig holds configuration for the watch command
type WatchConfig struct {
	App        *config.Config
	OrdersFile string
	Query      string
	Format     string
	OutputDir  string
	Verbose    bool

	Writer io.Writer
	Clock  func() time.Time

	// OnRender is called after every render; tests use it to observe
	// progress.
	OnRender func(*dto.ScheduleResult)
}

// WatchCommand re-renders the schedule every time the orders file changes
type WatchCommand struct {
	config WatchConfig
	logger *zap.Logger

	mu sync.Mutex
}

// NewWatchCommand creates a new watch command with the given configuration
func NewWatchCommand(cfg WatchConfig, logger *zap.Logger) *WatchCommand {
	if cfg.App == nil {
		cfg.App = config.DefaultConfig()
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WatchCommand{config: cfg, logger: logger}
}

// Execute runs until ctx is cancelled. A failed reload keeps the last good
// schedule on screen, marked stale.
func (c *WatchCommand) Execute(ctx context.Context) error {
	source := firstNonEmpty(c.config.OrdersFile, c.config.App.OrdersFile)
	if source == "" {
		return fmt.Errorf("no orders file to watch")
	}

	env, err := NewEnvironment(ctx, c.config.App, c.logger)
	if err != nil {
		return err
	}
	defer env.Close()

	timeline := env.NewTimeline(c.config.Clock)
	timeline.ShiftSearchQuery(c.config.Query)

	handlerID, err := env.Bus.Subscribe([]string{events.OrdersReadFailedEvent}, timeline)
	if err != nil {
		return fmt.Errorf("failed to subscribe timeline: %w", err)
	}
	defer env.Bus.Unsubscribe(handlerID)

	watcher := watch.NewOrdersWatcher(source, env.Loader(), env.Repo, env.Collection(),
		env.Config.GetDebounce(), c.logger)
	watcher.OnReadError(func(err error) {
		if appendErr := env.Bus.AppendEvent(env.Collection(), events.NewOrdersReadFailedEvent(env.Collection(), err)); appendErr != nil {
			c.logger.Warn("failed to publish read failure", zap.Error(appendErr))
			return
		}
		c.render(timeline.Current())
	})

	g, gctx := errgroup.WithContext(ctx)

	if err := watcher.Start(gctx); err != nil {
		return err
	}

	sub, err := env.Repo.Subscribe(gctx, env.Query())
	if err != nil {
		watcher.Stop()
		return fmt.Errorf("failed to subscribe to orders: %w", err)
	}

	g.Go(func() error {
		<-gctx.Done()
		watcher.Stop()
		return sub.Close()
	})

	g.Go(func() error {
		return timeline.Watch(gctx, sub, c.render)
	})

	err = g.Wait()
	c.logSummary(env, watcher)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

func (c *WatchCommand) logSummary(env *Environment, watcher *watch.OrdersWatcher) {
	retained, err := env.Bus.ReadAllEvents(0)
	if err != nil {
		c.logger.Warn("failed to read event history", zap.Error(err))
	}
	stats := watcher.Stats()
	c.logger.Debug("watch stopped",
		zap.Int("reloads", stats.Reloads),
		zap.Int("failures", stats.Failures),
		zap.Int("events", env.Bus.Position()),
		zap.Int("retained", len(retained)))
}

func (c *WatchCommand) render(result *dto.ScheduleResult) {
	if result == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	err := output.Generate(result, output.Config{
		Format:    firstNonEmpty(c.config.Format, c.config.App.Output.Format),
		OutputDir: firstNonEmpty(c.config.OutputDir, c.config.App.Output.Dir),
		Verbose:   c.config.Verbose,
		Writer:    c.config.Writer,
	})
	if err != nil {
		c.logger.Warn("render failed", zap.Error(err))
		return
	}

	if c.config.OnRender != nil {
		c.config.OnRender(result)
	}
}
