package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/config"
	"github.com/vsinha/prodschedule/pkg/infrastructure/events"
	"github.com/vsinha/prodschedule/pkg/infrastructure/watch"
	"github.com/vsinha/prodschedule/pkg/interfaces/tui"
)

// TUIConfig holds configuration for the interactive viewer
type TUIConfig struct {
	App        *config.Config
	OrdersFile string
	Query      string
	Clock      func() time.Time
}

// TUICommand opens the interactive schedule viewer. When an orders file is
// in use it is watched and edits show up live.
type TUICommand struct {
	config TUIConfig
	logger *zap.Logger
}

// NewTUICommand creates a new viewer command with the given configuration
func NewTUICommand(cfg TUIConfig, logger *zap.Logger) *TUICommand {
	if cfg.App == nil {
		cfg.App = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TUICommand{config: cfg, logger: logger}
}

// Execute runs the viewer until the user quits or ctx is done
func (c *TUICommand) Execute(ctx context.Context) error {
	env, err := NewEnvironment(ctx, c.config.App, c.logger)
	if err != nil {
		return err
	}
	defer env.Close()

	source := c.config.OrdersFile
	if source == "" && env.Config.Store.Driver == config.DriverMemory {
		source = env.Config.OrdersFile
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	timeline := env.NewTimeline(c.config.Clock)
	timeline.ShiftSearchQuery(c.config.Query)

	handlerID, err := env.Bus.Subscribe([]string{events.OrdersReadFailedEvent}, timeline)
	if err != nil {
		return fmt.Errorf("failed to subscribe timeline: %w", err)
	}
	defer env.Bus.Unsubscribe(handlerID)

	var watcher *watch.OrdersWatcher
	if source != "" {
		watcher = watch.NewOrdersWatcher(source, env.Loader(), env.Repo, env.Collection(),
			env.Config.GetDebounce(), c.logger)
		if err := watcher.Start(ctx); err != nil {
			return err
		}
		defer watcher.Stop()
	}

	sub, err := env.Repo.Subscribe(ctx, env.Query())
	if err != nil {
		return fmt.Errorf("failed to subscribe to orders: %w", err)
	}
	defer sub.Close()

	program := tui.NewProgram(ctx, tui.NewModel(timeline, sub, c.config.Clock))

	// registered after Start so the initial load never sends to a program
	// that is not running yet
	if watcher != nil {
		watcher.OnReadError(func(err error) {
			if appendErr := env.Bus.AppendEvent(env.Collection(), events.NewOrdersReadFailedEvent(env.Collection(), err)); appendErr != nil {
				c.logger.Warn("failed to publish read failure", zap.Error(appendErr))
			}
			program.Send(tui.ReadFailedMsg{Reason: err.Error()})
		})
	}

	return tui.Run(program)
}
