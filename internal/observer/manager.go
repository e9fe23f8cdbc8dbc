package observer

import (
	"context"
	"sync"

	"github.com/carter293/reactive-notebook/internal/logger"
)

// Subscriber receives events for the notebooks it has subscribed to.
// Deliver must not block the manager for long; a websocket adapter
// typically enqueues onto a small per-connection buffer and drops on
// backpressure (spec.md §4.7's "best-effort... dropped on subscriber
// backpressure or disconnect").
type Subscriber interface {
	Deliver(event Event)
	ID() string
}

// Manager fans events out to every subscriber currently registered for a
// notebook, one goroutine per subscriber per event so a slow or
// panicking subscriber never blocks or crashes the publisher.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]map[string]Subscriber // notebook_id -> subscriber_id -> Subscriber
	logger      *logger.Logger
}

// NewManager returns an empty fanout manager.
func NewManager(log *logger.Logger) *Manager {
	return &Manager{
		subscribers: make(map[string]map[string]Subscriber),
		logger:      log,
	}
}

// Subscribe registers sub to receive every future event for notebookID.
func (m *Manager) Subscribe(notebookID string, sub Subscriber) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribers[notebookID] == nil {
		m.subscribers[notebookID] = make(map[string]Subscriber)
	}
	m.subscribers[notebookID][sub.ID()] = sub
}

// Unsubscribe removes a subscriber. Count reports the number remaining
// so the orchestrator can decide whether to tear the kernel down.
func (m *Manager) Unsubscribe(notebookID, subscriberID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers[notebookID], subscriberID)
	if len(m.subscribers[notebookID]) == 0 {
		delete(m.subscribers, notebookID)
	}
}

// Count returns the number of live subscribers for notebookID.
func (m *Manager) Count(notebookID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[notebookID])
}

// Publish delivers event to every current subscriber of event.NotebookID.
// Non-blocking: each delivery runs in its own goroutine with panic
// recovery, matching mbflow's ObserverManager.Notify/notifyObserver.
func (m *Manager) Publish(ctx context.Context, event Event) {
	m.mu.RLock()
	subs := m.subscribers[event.NotebookID]
	copied := make([]Subscriber, 0, len(subs))
	for _, s := range subs {
		copied = append(copied, s)
	}
	m.mu.RUnlock()

	for _, sub := range copied {
		go m.deliver(ctx, sub, event)
	}
}

func (m *Manager) deliver(ctx context.Context, sub Subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			if m.logger != nil {
				m.logger.ErrorContext(ctx, "subscriber panic recovered",
					"subscriber", sub.ID(),
					"event_type", string(event.Type),
					"panic", r,
				)
			}
		}
	}()
	sub.Deliver(event)
}
