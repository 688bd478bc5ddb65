package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Factory builds a controller whose store is scoped to clientID.
type Factory func(clientID string) *Controller

type RegistryConfig struct {
	IdleTTL time.Duration
	MaxSize int
}

// RegistryStats are simple counters for diagnostics.
type RegistryStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	IdleTTL   time.Duration `json:"idleTtl"`
}

// Registry keeps one Controller per browser for the web front end.
// Dropping an entry loses nothing: credentials live in the store and
// the next Get bootstraps from there.
type Registry struct {
	factory Factory
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*registryEntry

	hits      int64
	misses    int64
	evictions int64
}

type registryEntry struct {
	ctrl     *Controller
	lastSeen time.Time
}

func NewRegistry(factory Factory, cfg RegistryConfig) *Registry {
	if cfg.IdleTTL == 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 10000
	}
	return &Registry{
		factory: factory,
		ttl:     cfg.IdleTTL,
		maxSize: cfg.MaxSize,
		now:     time.Now,
		entries: make(map[string]*registryEntry),
	}
}

// Get returns the controller for clientID, creating and bootstrapping
// it on first use or after it went idle.
func (r *Registry) Get(ctx context.Context, clientID string) *Controller {
	r.mu.Lock()
	if e, ok := r.entries[clientID]; ok {
		if r.now().Sub(e.lastSeen) <= r.ttl {
			e.lastSeen = r.now()
			r.mu.Unlock()
			atomic.AddInt64(&r.hits, 1)
			return e.ctrl
		}
		delete(r.entries, clientID)
		atomic.AddInt64(&r.evictions, 1)
	}
	r.mu.Unlock()
	atomic.AddInt64(&r.misses, 1)

	ctrl := r.factory(clientID)
	ctrl.Bootstrap(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[clientID]; ok {
		// Another request won the race; keep its controller.
		e.lastSeen = r.now()
		return e.ctrl
	}
	if len(r.entries) >= r.maxSize {
		r.evictOldestLocked()
	}
	r.entries[clientID] = &registryEntry{ctrl: ctrl, lastSeen: r.now()}
	return ctrl
}

// Remove forgets clientID's controller.
func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, clientID)
}

// Sweep drops every idle entry and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.entries {
		if r.now().Sub(e.lastSeen) > r.ttl {
			delete(r.entries, id)
			removed++
		}
	}
	atomic.AddInt64(&r.evictions, int64(removed))
	return removed
}

func (r *Registry) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range r.entries {
		if oldestID == "" || e.lastSeen.Before(oldest) {
			oldestID, oldest = id, e.lastSeen
		}
	}
	if oldestID != "" {
		delete(r.entries, oldestID)
		atomic.AddInt64(&r.evictions, 1)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) Stats() RegistryStats {
	return RegistryStats{
		Hits:      atomic.LoadInt64(&r.hits),
		Misses:    atomic.LoadInt64(&r.misses),
		Evictions: atomic.LoadInt64(&r.evictions),
		Size:      r.Len(),
		IdleTTL:   r.ttl,
	}
}
