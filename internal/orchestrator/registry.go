package orchestrator

import (
	"context"
	"sync"

	"github.com/carter293/reactive-notebook/internal/logger"
	"github.com/carter293/reactive-notebook/internal/observer"
	"github.com/carter293/reactive-notebook/internal/storage"
)

// Registry owns one Orchestrator per notebook with at least one live
// subscriber, spawning on first subscribe and tearing down on last
// unsubscribe per spec.md §4.7's kernel-ownership responsibility.
type Registry struct {
	store      storage.Adapter
	events     *observer.Manager
	log        *logger.Logger
	reexecFlag string

	mu            sync.Mutex
	orchestrators map[string]*Orchestrator
}

// NewRegistry returns an empty registry.
func NewRegistry(store storage.Adapter, events *observer.Manager, log *logger.Logger, reexecFlag string) *Registry {
	return &Registry{
		store:         store,
		events:        events,
		log:           log,
		reexecFlag:    reexecFlag,
		orchestrators: make(map[string]*Orchestrator),
	}
}

// Acquire returns the live Orchestrator for notebookID, spawning and
// loading it if this is the first active subscriber.
func (r *Registry) Acquire(ctx context.Context, notebookID string) (*Orchestrator, error) {
	r.mu.Lock()
	o, exists := r.orchestrators[notebookID]
	if exists {
		r.mu.Unlock()
		return o, nil
	}
	o = New(notebookID, r.store, r.events, r.log, r.reexecFlag)
	r.orchestrators[notebookID] = o
	r.mu.Unlock()

	if err := o.Load(ctx); err != nil {
		r.mu.Lock()
		delete(r.orchestrators, notebookID)
		r.mu.Unlock()
		return nil, err
	}
	return o, nil
}

// Release tears the notebook's orchestrator down once its subscriber
// count has reached zero.
func (r *Registry) Release(ctx context.Context, notebookID string) error {
	r.mu.Lock()
	o, exists := r.orchestrators[notebookID]
	if !exists {
		r.mu.Unlock()
		return nil
	}
	delete(r.orchestrators, notebookID)
	r.mu.Unlock()

	return o.Shutdown(ctx)
}
