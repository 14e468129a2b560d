package commands

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/application/services"
	"github.com/vsinha/prodschedule/pkg/config"
	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
	"github.com/vsinha/prodschedule/pkg/infrastructure/events"
	"github.com/vsinha/prodschedule/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/prodschedule/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/prodschedule/pkg/infrastructure/repositories/sqlite"
)

// Environment holds the store, event bus and settings shared by every
// command. Close releases the store.
type Environment struct {
	Config   *config.Config
	Logger   *zap.Logger
	Bus      *events.InMemoryEventStore
	Repo     repositories.OrderRepository
	Location *time.Location

	closeFn func() error
}

// NewEnvironment validates cfg and opens the configured record store
func NewEnvironment(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Environment, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	env := &Environment{
		Config: cfg,
		Logger: logger,
		Bus: events.NewInMemoryEventStore(
			events.WithLogger(logger),
			events.WithRetention(cfg.Events.Retention),
		),
		Location: loc,
		closeFn:  func() error { return nil },
	}

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		repo, err := sqlite.Open(ctx, cfg.Store.Path, env.Bus, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		env.Repo = repo
		env.closeFn = repo.Close
	default:
		env.Repo = memory.NewOrderRepository(env.Bus)
	}

	logger.Debug("environment ready",
		zap.String("driver", cfg.Store.Driver),
		zap.String("collection", cfg.Store.Collection),
		zap.String("location", loc.String()))

	return env, nil
}

// Close releases the record store
func (e *Environment) Close() error {
	return e.closeFn()
}

// Query returns the order query the configuration describes
func (e *Environment) Query() repositories.OrderQuery {
	return repositories.OrderQuery{
		Collection: e.Config.Store.Collection,
		OrderBy:    entities.OrderField(e.Config.Store.OrderBy),
		Descending: e.Config.Store.Descending,
	}.WithDefaults()
}

// Collection returns the configured collection name
func (e *Environment) Collection() string {
	return e.Query().Collection
}

// NewTimeline creates a timeline service using the configured geometry and
// location. clock may be nil.
func (e *Environment) NewTimeline(clock func() time.Time) *services.TimelineService {
	return services.NewTimelineService(services.TimelineConfig{
		CellWidth: e.Config.Layout.CellWidth,
		Location:  e.Location,
		Clock:     clock,
	}, e.Logger)
}

// Loader returns a CSV loader that reads date-only cells in the
// environment's timezone
func (e *Environment) Loader() *csv.Loader {
	return csv.NewLoader(csv.WithLocation(e.Location), csv.WithLogger(e.Logger))
}

// ImportFile loads an orders CSV and replaces the configured collection
// with its rows. It returns the number of orders imported.
func (e *Environment) ImportFile(ctx context.Context, path string) (int, error) {
	orders, err := e.Loader().LoadOrders(path)
	if err != nil {
		return 0, fmt.Errorf("error loading orders: %w", err)
	}
	if err := e.Repo.ReplaceOrders(ctx, e.Collection(), orders); err != nil {
		return 0, fmt.Errorf("failed to store orders: %w", err)
	}
	return len(orders), nil
}

// parseMonth parses YYYY-MM into the first day of that month in loc
func parseMonth(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return t, nil
}
