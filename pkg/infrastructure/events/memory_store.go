package events

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type subscriber struct {
	id      string
	types   map[string]bool
	handler EventHandler
}

type InMemoryEventStore struct {
	streams     map[string][]Event
	subscribers []subscriber
	mutex       sync.RWMutex
	deliverMu   sync.Mutex
	position    int
	offset      int
	allEvents   []Event
	retention   int
	logger      *zap.Logger
}

// Option configures an InMemoryEventStore
type Option func(*InMemoryEventStore)

// WithLogger sets the logger used to report handler failures
func WithLogger(logger *zap.Logger) Option {
	return func(s *InMemoryEventStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetention caps how many events each stream and the global log keep.
// Zero keeps everything.
func WithRetention(n int) Option {
	return func(s *InMemoryEventStore) {
		if n > 0 {
			s.retention = n
		}
	}
}

func NewInMemoryEventStore(opts ...Option) *InMemoryEventStore {
	s := &InMemoryEventStore{
		streams:   make(map[string][]Event),
		allEvents: make([]Event, 0),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendEvent records the event and delivers it synchronously to every
// matching subscriber. Deliveries never interleave: two concurrent appends
// reach handlers in the order they were recorded. Handlers must not append
// to the same store.
func (s *InMemoryEventStore) AppendEvent(streamID string, event Event) error {
	if event == nil {
		return fmt.Errorf("cannot append nil event to stream %s", streamID)
	}

	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()

	s.mutex.Lock()
	stream := s.streams[streamID]
	version := 1
	if n := len(stream); n > 0 {
		version = stream[n-1].Version() + 1
	}

	eventWithVersion := BaseEvent{
		EventType:    event.Type(),
		Stream:       streamID,
		EventData:    event.Data(),
		EventTime:    event.Timestamp(),
		EventVersion: version,
	}

	stream = append(stream, eventWithVersion)
	if s.retention > 0 && len(stream) > s.retention {
		stream = stream[len(stream)-s.retention:]
	}
	s.streams[streamID] = stream

	s.allEvents = append(s.allEvents, eventWithVersion)
	s.position++
	if s.retention > 0 && len(s.allEvents) > s.retention {
		drop := len(s.allEvents) - s.retention
		s.allEvents = s.allEvents[drop:]
		s.offset += drop
	}

	handlers := s.matchingHandlers(eventWithVersion.Type())
	s.mutex.Unlock()

	for _, h := range handlers {
		if err := h.Handle(eventWithVersion); err != nil {
			s.logger.Warn("event handler failed",
				zap.String("event", eventWithVersion.Type()),
				zap.String("stream", streamID),
				zap.Error(err))
		}
	}

	return nil
}

// ReadEvents returns the retained events of a stream starting at fromVersion
func (s *InMemoryEventStore) ReadEvents(streamID string, fromVersion int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, exists := s.streams[streamID]
	if !exists {
		return []Event{}, nil
	}

	result := make([]Event, 0, len(events))
	for _, e := range events {
		if e.Version() >= fromVersion {
			result = append(result, e)
		}
	}
	return result, nil
}

// ReadAllEvents returns retained events at or after the absolute position
func (s *InMemoryEventStore) ReadAllEvents(fromPosition int) ([]Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	idx := fromPosition - s.offset
	if idx < 0 {
		idx = 0
	}

	if idx >= len(s.allEvents) {
		return []Event{}, nil
	}

	result := make([]Event, len(s.allEvents)-idx)
	copy(result, s.allEvents[idx:])
	return result, nil
}

// Position returns the number of events ever appended
func (s *InMemoryEventStore) Position() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.position
}

func (s *InMemoryEventStore) Subscribe(eventTypes []string, handler EventHandler) (string, error) {
	if handler == nil {
		return "", fmt.Errorf("handler cannot be nil")
	}
	if len(eventTypes) == 0 {
		return "", fmt.Errorf("at least one event type is required")
	}

	types := make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		types[t] = true
	}

	id := uuid.NewString()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.subscribers = append(s.subscribers, subscriber{id: id, types: types, handler: handler})

	return id, nil
}

func (s *InMemoryEventStore) Unsubscribe(subscriptionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, sub := range s.subscribers {
		if sub.id == subscriptionID {
			s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
			return nil
		}
	}

	return fmt.Errorf("subscription %s not found", subscriptionID)
}

func (s *InMemoryEventStore) matchingHandlers(eventType string) []EventHandler {
	var handlers []EventHandler
	for _, sub := range s.subscribers {
		if sub.types[eventType] && sub.handler.CanHandle(eventType) {
			handlers = append(handlers, sub.handler)
		}
	}
	return handlers
}
