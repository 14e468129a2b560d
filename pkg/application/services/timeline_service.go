package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/prodschedule/pkg/application/dto"
	"github.com/vsinha/prodschedule/pkg/domain/entities"
	"github.com/vsinha/prodschedule/pkg/domain/repositories"
	"github.com/vsinha/prodschedule/pkg/domain/services/schedule"
	"github.com/vsinha/prodschedule/pkg/infrastructure/events"
)

// State is the lifecycle position of a TimelineService
type State int

const (
	StateIdle State = iota
	StateLoaded
	StateFiltered
	StateLaidOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoaded:
		return "loaded"
	case StateFiltered:
		return "filtered"
	case StateLaidOut:
		return "laid_out"
	default:
		return "unknown"
	}
}

// TimelineConfig holds the fixed inputs of every layout pass
type TimelineConfig struct {
	CellWidth float64
	Location  *time.Location
	Policy    *schedule.Policy
	// Clock returns the current time; nil means time.Now
	Clock func() time.Time
}

// TimelineService is the reactive shell around the schedule engine. It owns
// the visible window, the search query and the last order snapshot, and
// recomputes the whole layout whenever any of them changes.
type TimelineService struct {
	mu     sync.Mutex
	config TimelineConfig
	logger *zap.Logger

	state    State
	window   schedule.Window
	query    string
	tasks    []entities.Task
	filtered []entities.Task
	loaded   bool

	current     *dto.ScheduleResult
	stale       bool
	staleReason string
}

// NewTimelineService creates a service showing the window around today
func NewTimelineService(config TimelineConfig, logger *zap.Logger) *TimelineService {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	if config.CellWidth <= 0 {
		config.CellWidth = schedule.DefaultCellWidth
	}
	if config.Policy == nil {
		p := schedule.DefaultPolicy()
		config.Policy = &p
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &TimelineService{
		config: config,
		logger: logger,
		state:  StateIdle,
	}
	s.window = s.todayWindow()
	return s
}

func (s *TimelineService) todayWindow() schedule.Window {
	return schedule.MonthWindow(schedule.Normalize(s.config.Clock(), s.config.Location))
}

func (s *TimelineService) options() schedule.Options {
	return schedule.Options{
		CellWidth: s.config.CellWidth,
		Now:       s.config.Clock(),
		Location:  s.config.Location,
		Policy:    s.config.Policy,
	}
}

// Load replaces the order snapshot. Every task is resolved again; the
// current query is re-applied when it is not blank. A successful load
// clears any stale marker.
func (s *TimelineService) Load(orders []*entities.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = s.config.Policy.ResolveAll(orders, s.config.Clock(), s.config.Location)
	s.loaded = true
	s.stale = false
	s.staleReason = ""
	s.state = StateLoaded
	s.applyQuery()

	s.logger.Debug("loaded orders",
		zap.Int("orders", len(orders)),
		zap.Int("tasks", len(s.tasks)),
		zap.String("state", s.state.String()))
}

func (s *TimelineService) applyQuery() {
	s.filtered = schedule.Filter(s.tasks, s.query)
	if strings.TrimSpace(s.query) != "" {
		s.state = StateFiltered
	} else if s.state == StateFiltered {
		s.state = StateLoaded
	}
}

// ShiftSearchQuery sets the free-text query and returns the re-laid-out
// schedule
func (s *TimelineService) ShiftSearchQuery(query string) *dto.ScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	if s.loaded {
		s.state = StateLoaded
		s.applyQuery()
	}
	return s.layout()
}

// Navigate moves the window one month and returns the new layout
func (s *TimelineService) Navigate(dir schedule.Direction) *dto.ScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = schedule.Navigate(s.window, dir)
	s.logger.Debug("navigated", zap.String("direction", dir.String()), zap.Stringer("window", s.window))
	return s.layout()
}

// SetWindow shows w and returns the new layout
func (s *TimelineService) SetWindow(w schedule.Window) *dto.ScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = w
	return s.layout()
}

// Today resets the window to the months around the current date
func (s *TimelineService) Today() *dto.ScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.window = s.todayWindow()
	return s.layout()
}

// Layout computes geometry for the current window, query and snapshot.
// With no snapshot loaded it returns an empty schedule and stays idle.
func (s *TimelineService) Layout() *dto.ScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.layout()
}

func (s *TimelineService) layout() *dto.ScheduleResult {
	opts := s.options()
	layout := schedule.BuildLayout(s.filtered, s.window, opts)

	result := dto.NewScheduleResult(layout, s.query, len(s.tasks)-len(s.filtered), opts.Now)
	result.Stale = s.stale
	result.StaleReason = s.staleReason

	if s.loaded {
		s.state = StateLaidOut
	}
	s.current = result
	return s.copyCurrent()
}

// Reset drops the snapshot and returns to idle. Window and query are kept.
func (s *TimelineService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tasks = nil
	s.filtered = nil
	s.loaded = false
	s.current = nil
	s.stale = false
	s.staleReason = ""
	s.state = StateIdle
}

// Current returns the last computed result, or nil before the first layout
func (s *TimelineService) Current() *dto.ScheduleResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyCurrent()
}

func (s *TimelineService) copyCurrent() *dto.ScheduleResult {
	if s.current == nil {
		return nil
	}
	c := *s.current
	c.Stale = s.stale
	c.StaleReason = s.staleReason
	return &c
}

// MarkStale records that the order source could not be read. The last good
// layout is kept and reported as stale until the next Load.
func (s *TimelineService) MarkStale(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stale = true
	s.staleReason = ""
	if err != nil {
		s.staleReason = err.Error()
	}
	s.logger.Warn("order source read failed, keeping last layout", zap.Error(err))
}

// State returns the current lifecycle state
func (s *TimelineService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Window returns the visible window
func (s *TimelineService) Window() schedule.Window {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// Query returns the current search query
func (s *TimelineService) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Watch applies every snapshot from sub and passes the new layout to
// onLayout. It returns nil when the subscription closes and ctx.Err() when
// ctx is done.
func (s *TimelineService) Watch(ctx context.Context, sub repositories.Subscription, onLayout func(*dto.ScheduleResult)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case orders, ok := <-sub.Snapshots():
			if !ok {
				s.logger.Debug("subscription closed", zap.String("subscription", sub.ID()))
				return nil
			}
			s.Load(orders)
			result := s.Layout()
			if onLayout != nil {
				onLayout(result)
			}
		}
	}
}

// CanHandle makes the service an events.EventHandler for read failures
func (s *TimelineService) CanHandle(eventType string) bool {
	return eventType == events.OrdersReadFailedEvent
}

// Handle marks the layout stale when an orders.read_failed event arrives
func (s *TimelineService) Handle(event events.Event) error {
	failed, ok := event.Data().(events.OrdersReadFailed)
	if !ok {
		return nil
	}
	s.MarkStale(errors.New(failed.Reason))
	return nil
}
