package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/config"
	"github.com/vsinha/prodschedule/pkg/infrastructure/logging"
	"github.com/vsinha/prodschedule/pkg/interfaces/cli/commands"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Shared by several subcommands
	ordersFile string
	query      string
	format     string
	outputDir  string
	month      string

	appConfig *config.Config
	logger    *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Production order schedule timeline",
	Long: `schedule lays production orders out on a Gantt timeline grouped by
production line. Orders come from a CSV file or a SQLite store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		appConfig = cfg

		logger, err = logging.New(cfg.Logging, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the schedule once as text, JSON, SVG or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.NewRenderCommand(commands.RenderConfig{
			App:        appConfig,
			OrdersFile: ordersFile,
			Month:      month,
			Query:      query,
			Format:     format,
			OutputDir:  outputDir,
			Verbose:    verbose,
		}, logger).Execute(cmd.Context())
	},
}

var importCmd = &cobra.Command{
	Use:   "import [orders.csv]",
	Short: "Import an orders CSV into the SQLite store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := ordersFile
		if len(args) == 1 {
			source = args[0]
		}
		// import always targets the database at store.path
		appConfig.Store.Driver = config.DriverSQLite
		return commands.NewImportCommand(commands.ImportConfig{
			App:        appConfig,
			OrdersFile: source,
		}, logger).Execute(cmd.Context())
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-render the schedule whenever the orders file changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.NewWatchCommand(commands.WatchConfig{
			App:        appConfig,
			OrdersFile: ordersFile,
			Query:      query,
			Format:     format,
			OutputDir:  outputDir,
			Verbose:    verbose,
		}, logger).Execute(cmd.Context())
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the schedule interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		return commands.NewTUICommand(commands.TUIConfig{
			App:        appConfig,
			OrdersFile: ordersFile,
			Query:      query,
		}, logger).Execute(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "schedule.yaml", "Path to config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	for _, cmd := range []*cobra.Command{renderCmd, importCmd, watchCmd, tuiCmd} {
		cmd.Flags().StringVarP(&ordersFile, "orders", "o", "", "Orders CSV file (overrides orders_file)")
	}
	for _, cmd := range []*cobra.Command{renderCmd, watchCmd, tuiCmd} {
		cmd.Flags().StringVarP(&query, "query", "q", "", "Free-text filter on product, requester or status")
	}
	for _, cmd := range []*cobra.Command{renderCmd, watchCmd} {
		cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, svg, csv")
		cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: stdout)")
	}
	renderCmd.Flags().StringVarP(&month, "month", "m", "", "First month to show, YYYY-MM (default: current month)")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(tuiCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
