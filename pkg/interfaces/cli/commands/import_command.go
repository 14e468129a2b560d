package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/config"
)

// ImportConfig holds configuration for the import command
type ImportConfig struct {
	App        *config.Config
	OrdersFile string
	Writer     io.Writer
}

// ImportCommand copies an orders CSV into the SQLite store
type ImportCommand struct {
	config ImportConfig
	logger *zap.Logger
}

// NewImportCommand creates a new import command with the given configuration
func NewImportCommand(cfg ImportConfig, logger *zap.Logger) *ImportCommand {
	if cfg.App == nil {
		cfg.App = config.DefaultConfig()
	}
	if cfg.Writer == nil {
		cfg.Writer = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportCommand{config: cfg, logger: logger}
}

// Execute runs the import command
func (c *ImportCommand) Execute(ctx context.Context) error {
	if c.config.App.Store.Driver != config.DriverSQLite {
		return fmt.Errorf("import requires the %s store driver, got %s", config.DriverSQLite, c.config.App.Store.Driver)
	}

	source := firstNonEmpty(c.config.OrdersFile, c.config.App.OrdersFile)
	if source == "" {
		return fmt.Errorf("no orders file given")
	}

	env, err := NewEnvironment(ctx, c.config.App, c.logger)
	if err != nil {
		return err
	}
	defer env.Close()

	n, err := env.ImportFile(ctx, source)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.config.Writer, "✅ Imported %d orders from %s into %s (%s)\n",
		n, source, env.Config.Store.Path, env.Collection())
	return nil
}
