// Package sqlite stores production orders in SQLite, one table per
// collection, and publishes a full snapshot after every committed mutation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
	"github.com/vsinha/prodschedule/pkg/infrastructure/events"
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

// fixed-width UTC text so lexical order is chronological
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var collectionPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var orderColumns = map[entities.OrderField]string{
	entities.FieldCreatedAt:               "created_at",
	entities.FieldRequestDate:             "request_date",
	entities.FieldRequestedCompletionDate: "requested_completion_date",
	entities.FieldProductName:             "product_name",
	entities.FieldID:                      "id",
}

const selectColumns = `id, status, product_name, quantity, requester_name, created_at,
	request_date, requested_completion_date, planned_start_date, planned_completion_date,
	actual_start_date, actual_completion_date, line`

// OrderRepository is a SQLite-backed repositories.OrderRepository
type OrderRepository struct {
	db     *sql.DB
	path   string
	mu     sync.Mutex
	tables map[string]bool
	store  events.EventStore
	logger *zap.Logger
}

var _ repositories.OrderRepository = (*OrderRepository)(nil)

// Open opens or creates the database at path. Changes are published to
// store; a nil store gets a private in-memory event store.
func Open(ctx context.Context, path string, store events.EventStore, logger *zap.Logger) (*OrderRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = events.NewInMemoryEventStore(events.WithLogger(logger))
	}

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one connection: writes are serialized and :memory: stays a single database
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	logger.Debug("opened order database", zap.String("path", path))

	return &OrderRepository{
		db:     db,
		path:   path,
		tables: make(map[string]bool),
		store:  store,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (r *OrderRepository) Close() error {
	return r.db.Close()
}

// Path returns the database file path
func (r *OrderRepository) Path() string {
	return r.path
}

// ListOrders returns the collection ordered by the query field. Rows with
// equal keys keep insertion order.
func (r *OrderRepository) ListOrders(ctx context.Context, query repositories.OrderQuery) ([]*entities.Order, error) {
	query = query.WithDefaults()
	column, err := orderColumn(query.OrderBy)
	if err != nil {
		return nil, err
	}
	if err := validateCollection(query.Collection); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.list(ctx, query.Collection, column, query.Descending)
}

// SaveOrder inserts or updates an order by id
func (r *OrderRepository) SaveOrder(ctx context.Context, collection string, order *entities.Order) error {
	collection = collectionName(collection)
	if err := validateCollection(collection); err != nil {
		return err
	}
	if order == nil || order.ID == "" {
		return fmt.Errorf("order must have an id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.inTx(ctx, collection, func(tx *sql.Tx) error {
		return upsert(ctx, tx, collection, order)
	})
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", order.ID, err)
	}
	return r.publish(ctx, collection)
}

// DeleteOrder removes an order by id
func (r *OrderRepository) DeleteOrder(ctx context.Context, collection string, id string) error {
	collection = collectionName(collection)
	if err := validateCollection(collection); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.inTx(ctx, collection, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, quote(collection)), id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", repositories.ErrOrderNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return r.publish(ctx, collection)
}

// ReplaceOrders swaps the whole collection in one transaction
func (r *OrderRepository) ReplaceOrders(ctx context.Context, collection string, orders []*entities.Order) error {
	collection = collectionName(collection)
	if err := validateCollection(collection); err != nil {
		return err
	}
	for i, order := range orders {
		if order == nil || order.ID == "" {
			return fmt.Errorf("order %d must have an id", i)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.inTx(ctx, collection, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, quote(collection))); err != nil {
			return err
		}
		for _, order := range orders {
			if err := upsert(ctx, tx, collection, order); err != nil {
				return fmt.Errorf("order %s: %w", order.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", collection, err)
	}

	r.logger.Info("replaced orders",
		zap.String("collection", collection),
		zap.Int("count", len(orders)))
	return r.publish(ctx, collection)
}

// Subscribe emits the current rows and a new snapshot after every commit
func (r *OrderRepository) Subscribe(ctx context.Context, query repositories.OrderQuery) (repositories.Subscription, error) {
	query = query.WithDefaults()
	column, err := orderColumn(query.OrderBy)
	if err != nil {
		return nil, err
	}
	if err := validateCollection(query.Collection); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	initial, err := r.list(ctx, query.Collection, column, query.Descending)
	if err != nil {
		return nil, err
	}

	sub := events.NewSnapshotSubscription(query)
	sub.Push(initial)
	if err := sub.Attach(ctx, r.store); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", query.Collection, err)
	}
	return sub, nil
}

func (r *OrderRepository) ensureTable(ctx context.Context, collection string) error {
	if r.tables[collection] {
		return nil
	}

	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		product_name TEXT NOT NULL,
		quantity TEXT NOT NULL,
		requester_name TEXT NOT NULL,
		created_at TEXT,
		request_date TEXT,
		requested_completion_date TEXT,
		planned_start_date TEXT,
		planned_completion_date TEXT,
		actual_start_date TEXT,
		actual_completion_date TEXT,
		line TEXT NOT NULL DEFAULT ''
	)`, quote(collection))

	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create table %s: %w", collection, err)
	}
	r.tables[collection] = true
	r.logger.Debug("ensured order table", zap.String("collection", collection))
	return nil
}

func (r *OrderRepository) inTx(ctx context.Context, collection string, fn func(tx *sql.Tx) error) error {
	if err := r.ensureTable(ctx, collection); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func (r *OrderRepository) list(ctx context.Context, collection, column string, descending bool) ([]*entities.Order, error) {
	if err := r.ensureTable(ctx, collection); err != nil {
		return nil, err
	}

	direction := "ASC"
	if descending {
		direction = "DESC"
	}
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s %s, rowid ASC`,
		selectColumns, quote(collection), column, direction)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer rows.Close()

	orders := make([]*entities.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", collection, err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	return orders, nil
}

func (r *OrderRepository) publish(ctx context.Context, collection string) error {
	orders, err := r.list(ctx, collection, orderColumns[entities.FieldCreatedAt], false)
	if err != nil {
		return err
	}
	if err := r.store.AppendEvent(collection, events.NewOrdersChangedEvent(collection, orders)); err != nil {
		return fmt.Errorf("failed to publish change for %s: %w", collection, err)
	}
	return nil
}

func upsert(ctx context.Context, tx *sql.Tx, collection string, o *entities.Order) error {
	stmt := fmt.Sprintf(`
	INSERT INTO %s (%s)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		status = excluded.status,
		product_name = excluded.product_name,
		quantity = excluded.quantity,
		requester_name = excluded.requester_name,
		created_at = excluded.created_at,
		request_date = excluded.request_date,
		requested_completion_date = excluded.requested_completion_date,
		planned_start_date = excluded.planned_start_date,
		planned_completion_date = excluded.planned_completion_date,
		actual_start_date = excluded.actual_start_date,
		actual_completion_date = excluded.actual_completion_date,
		line = excluded.line`, quote(collection), selectColumns)

	_, err := tx.ExecContext(ctx, stmt,
		o.ID,
		string(o.Status),
		o.ProductName,
		o.Quantity.String(),
		o.RequesterName,
		timeValue(o.CreatedAt),
		timeValue(o.RequestDate),
		timeValue(o.RequestedCompletionDate),
		timePtrValue(o.PlannedStartDate),
		timePtrValue(o.PlannedCompletionDate),
		timePtrValue(o.ActualStartDate),
		timePtrValue(o.ActualCompletionDate),
		o.AssignedLine,
	)
	return err
}

func scanOrder(rows *sql.Rows) (*entities.Order, error) {
	var (
		o                                   entities.Order
		status, quantity                    string
		createdAt, requestDate, requestedAt sql.NullString
		plannedStart, plannedCompletion     sql.NullString
		actualStart, actualCompletion       sql.NullString
	)
	err := rows.Scan(&o.ID, &status, &o.ProductName, &quantity, &o.RequesterName,
		&createdAt, &requestDate, &requestedAt, &plannedStart, &plannedCompletion,
		&actualStart, &actualCompletion, &o.AssignedLine)
	if err != nil {
		return nil, err
	}

	o.Status = entities.OrderStatus(status)
	if o.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("order %s: invalid quantity %q: %w", o.ID, quantity, err)
	}

	for _, f := range []struct {
		src sql.NullString
		dst *time.Time
	}{
		{createdAt, &o.CreatedAt},
		{requestDate, &o.RequestDate},
		{requestedAt, &o.RequestedCompletionDate},
	} {
		t, err := parseTime(f.src)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		if t != nil {
			*f.dst = *t
		}
	}

	for _, f := range []struct {
		src sql.NullString
		dst **time.Time
	}{
		{plannedStart, &o.PlannedStartDate},
		{plannedCompletion, &o.PlannedCompletionDate},
		{actualStart, &o.ActualStartDate},
		{actualCompletion, &o.ActualCompletionDate},
	} {
		t, err := parseTime(f.src)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		*f.dst = t
	}

	return &o, nil
}

func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func timePtrValue(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeValue(*t)
}

func parseTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", s.String, err)
	}
	return &t, nil
}

func orderColumn(field entities.OrderField) (string, error) {
	column, ok := orderColumns[field]
	if !ok {
		return "", fmt.Errorf("%w: %s", repositories.ErrInvalidOrderField, field)
	}
	return column, nil
}

func validateCollection(name string) error {
	if !collectionPattern.MatchString(name) || strings.HasPrefix(name, "sqlite_") {
		return fmt.Errorf("%w: %q", repositories.ErrInvalidCollection, name)
	}
	return nil
}

func collectionName(name string) string {
	if name == "" {
		return repositories.DefaultCollection
	}
	return name
}

func quote(name string) string {
	return `"` + name + `"`
}
