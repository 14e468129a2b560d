package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/domain/entities"
)

// OrderHeader is the column layout of an orders CSV export
var OrderHeader = []string{
	"id",
	"status",
	"product_name",
	"quantity",
	"requester_name",
	"created_at",
	"request_date",
	"requested_completion_date",
	"planned_start_date",
	"planned_completion_date",
	"actual_start_date",
	"actual_completion_date",
	"line",
}

const (
	colID = iota
	colStatus
	colProductName
	colQuantity
	colRequesterName
	colCreatedAt
	colRequestDate
	colRequestedCompletionDate
	colPlannedStartDate
	colPlannedCompletionDate
	colActualStartDate
	colActualCompletionDate
	colLine
)

// Loader reads production orders from CSV files
type Loader struct {
	newID    func() string
	location *time.Location
	logger   *zap.Logger
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithLocation sets the zone date-only cells are read in. Defaults to UTC.
func WithLocation(loc *time.Location) LoaderOption {
	return func(l *Loader) {
		if loc != nil {
			l.location = loc
		}
	}
}

// WithLogger sets the logger used to report rows with unknown statuses
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a new CSV loader
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		newID:    uuid.NewString,
		location: time.UTC,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LoadOrders loads orders from a CSV file
func (l *Loader) LoadOrders(filename string) ([]*entities.Order, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file %s: %w", filename, err)
	}
	defer file.Close()

	return l.ReadOrders(file)
}

// ReadOrders parses an orders CSV stream. A header with no rows is an
// empty, valid snapshot.
func (l *Loader) ReadOrders(r io.Reader) ([]*entities.Order, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read orders CSV: %w", err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("orders CSV must have a header row")
	}

	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	if !validateHeader(header, OrderHeader) {
		return nil, fmt.Errorf("orders CSV header mismatch. Expected: %v, Got: %v", OrderHeader, header)
	}

	orders := make([]*entities.Order, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) != len(OrderHeader) {
			return nil, fmt.Errorf("orders CSV row %d: expected %d columns, got %d", i+2, len(OrderHeader), len(record))
		}

		order, err := l.parseOrder(record)
		if err != nil {
			return nil, fmt.Errorf("orders CSV row %d: %w", i+2, err)
		}

		orders = append(orders, order)
	}

	return orders, nil
}

// WriteOrders writes orders in the same layout ReadOrders accepts
func WriteOrders(w io.Writer, orders []*entities.Order) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(OrderHeader); err != nil {
		return fmt.Errorf("failed to write orders CSV header: %w", err)
	}

	for _, o := range orders {
		record := []string{
			o.ID,
			string(o.Status),
			o.ProductName,
			o.Quantity.String(),
			o.RequesterName,
			formatDate(o.CreatedAt),
			formatDate(o.RequestDate),
			formatDate(o.RequestedCompletionDate),
			formatDatePtr(o.PlannedStartDate),
			formatDatePtr(o.PlannedCompletionDate),
			formatDatePtr(o.ActualStartDate),
			formatDatePtr(o.ActualCompletionDate),
			o.AssignedLine,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write order %s: %w", o.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func (l *Loader) parseOrder(record []string) (*entities.Order, error) {
	id := strings.TrimSpace(record[colID])
	if id == "" {
		id = l.newID()
	}

	quantity := decimal.Zero
	if s := strings.TrimSpace(record[colQuantity]); s != "" {
		q, err := decimal.NewFromString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity: %s", record[colQuantity])
		}
		quantity = q
	}

	createdAt, err := l.parseDate("created_at", record[colCreatedAt])
	if err != nil {
		return nil, err
	}

	status := entities.ParseOrderStatus(record[colStatus])
	if !status.Known() {
		l.logger.Warn("unknown order status",
			zap.String("order", id),
			zap.String("status", string(status)))
	}

	order, err := entities.NewOrder(
		id,
		status,
		strings.TrimSpace(record[colProductName]),
		quantity,
		strings.TrimSpace(record[colRequesterName]),
		createdAt,
	)
	if err != nil {
		return nil, err
	}

	if order.RequestDate, err = l.parseDate("request_date", record[colRequestDate]); err != nil {
		return nil, err
	}
	if order.RequestedCompletionDate, err = l.parseDate("requested_completion_date", record[colRequestedCompletionDate]); err != nil {
		return nil, err
	}
	if order.PlannedStartDate, err = l.parseDatePtr("planned_start_date", record[colPlannedStartDate]); err != nil {
		return nil, err
	}
	if order.PlannedCompletionDate, err = l.parseDatePtr("planned_completion_date", record[colPlannedCompletionDate]); err != nil {
		return nil, err
	}
	if order.ActualStartDate, err = l.parseDatePtr("actual_start_date", record[colActualStartDate]); err != nil {
		return nil, err
	}
	if order.ActualCompletionDate, err = l.parseDatePtr("actual_completion_date", record[colActualCompletionDate]); err != nil {
		return nil, err
	}
	order.AssignedLine = strings.TrimSpace(record[colLine])

	return order, nil
}

// parseDate accepts YYYY-MM-DD, read as midnight in the loader's location,
// or RFC3339. An empty cell is the zero time.
func (l *Loader) parseDate(column, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, l.location); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s format: %s (expected YYYY-MM-DD or RFC3339)", column, s)
	}
	return t, nil
}

func (l *Loader) parseDatePtr(column, s string) (*time.Time, error) {
	t, err := l.parseDate(column, s)
	if err != nil || t.IsZero() {
		return nil, err
	}
	return &t, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	y, m, d := t.Date()
	h, mi, s := t.Clock()
	if h == 0 && mi == 0 && s == 0 && t.Nanosecond() == 0 {
		return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
	}
	return t.Format(time.RFC3339)
}

func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}
