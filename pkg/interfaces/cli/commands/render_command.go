package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/config"
	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
	"github.com/vsinha/prodschedule/pkg/interfaces/cli/output"
)

// RenderConfig holds configuration for the render command
type RenderConfig struct {
	App *config.Config

	// OrdersFile is read into the store before rendering. When empty the
	// memory driver falls back to App.OrdersFile and the sqlite driver
	// renders what is already stored.
	OrdersFile string
	Month      string // YYYY-MM; empty means the current month
	Query      string
	Format     string
	OutputDir  string
	Verbose    bool

	Writer io.Writer
	Clock  func() time.Time
}

// RenderCommand renders one schedule snapshot
type RenderCommand struct {
	config RenderConfig
	logger *zap.Logger
}

// NewRenderCommand creates a new render command with the given configuration
func NewRenderCommand(cfg RenderConfig, logger *zap.Logger) *RenderCommand {
	if cfg.App == nil {
		cfg.App = config.DefaultConfig()
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RenderCommand{config: cfg, logger: logger}
}

// Execute runs the render command
func (c *RenderCommand) Execute(ctx context.Context) error {
	env, err := NewEnvironment(ctx, c.config.App, c.logger)
	if err != nil {
		return err
	}
	defer env.Close()

	source := c.config.OrdersFile
	if source == "" && env.Config.Store.Driver == config.DriverMemory {
		source = env.Config.OrdersFile
	}
	if source != "" {
		n, err := env.ImportFile(ctx, source)
		if err != nil {
			return err
		}
		c.logger.Debug("orders loaded", zap.String("file", source), zap.Int("count", n))
	}

	orders, err := env.Repo.ListOrders(ctx, env.Query())
	if err != nil {
		return fmt.Errorf("failed to list orders: %w", err)
	}

	timeline := env.NewTimeline(c.config.Clock)
	timeline.Load(orders)

	if c.config.Month != "" {
		month, err := parseMonth(c.config.Month, env.Location)
		if err != nil {
			return err
		}
		timeline.SetWindow(schedule.MonthWindow(month))
	}

	result := timeline.ShiftSearchQuery(c.config.Query)

	c.logger.Info("schedule rendered",
		zap.String("window", result.Window().String()),
		zap.Int("tasks", result.TaskCount),
		zap.Int("hidden", result.HiddenCount),
		zap.Int("overdue", result.OverdueCount))

	return output.Generate(result, output.Config{
		Format:    firstNonEmpty(c.config.Format, env.Config.Output.Format),
		OutputDir: firstNonEmpty(c.config.OutputDir, env.Config.Output.Dir),
		Verbose:   c.config.Verbose,
		Writer:    c.config.Writer,
	})
}

func firstNonEmpty(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
