package session

import (
	"context"
	"sync"
	"time"

	"github.com/feagi/feagi-core/pkg/wire"
)

// Registry tracks every session by its assigned AgentId and runs the
// heartbeat sweep described in spec.md §4.4. Grounded on the teacher's
// lifecycle.Manager ticker loop (StartMonitor/checkAllUsers), adapted
// from activity-sparseness sleep states to the session phase table, and
// on registry.Store for the snapshot-then-iterate locking shape.
type Registry struct {
	mu       sync.RWMutex
	sessions map[wire.AgentID]*Record
	leased   map[wire.AgentID][]EndpointProperties

	pool *EndpointPool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates an empty registry backed by the given endpoint
// free pool.
func NewRegistry(pool *EndpointPool) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		sessions: make(map[wire.AgentID]*Record),
		leased:   make(map[wire.AgentID][]EndpointProperties),
		pool:     pool,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Add registers a new session record under its (already assigned)
// AgentId, along with the endpoint properties leased for it so Close can
// recycle them later.
func (r *Registry) Add(id wire.AgentID, rec *Record, leased []EndpointProperties) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[id] = rec
	r.leased[id] = leased
}

// Get returns the session record for id, if any.
func (r *Registry) Get(id wire.AgentID) (*Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.sessions[id]
	return rec, ok
}

// Remove drops id from the registry without recycling endpoints; callers
// that have already recycled via Close should not call this too.
func (r *Registry) Remove(id wire.AgentID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	delete(r.leased, id)
}

// Close finalizes a Draining session into Closed and returns its leased
// endpoint properties to the free pool — spec.md §8's "endpoint recycling"
// invariant: O(max concurrent sessions) distinct allocations, not O(K)
// register/deregister cycles.
func (r *Registry) Close(id wire.AgentID) error {
	r.mu.Lock()
	rec, ok := r.sessions[id]
	leased := r.leased[id]
	r.mu.Unlock()
	if !ok {
		return ErrUnknownSession
	}

	if _, err := rec.AllEndpointsInactive(); err != nil {
		return err
	}

	for _, props := range leased {
		r.pool.Recycle(props)
	}

	r.mu.Lock()
	delete(r.sessions, id)
	delete(r.leased, id)
	r.mu.Unlock()
	return nil
}

// ActiveSessions returns every session currently in PhaseActive.
func (r *Registry) ActiveSessions() []wire.AgentID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]wire.AgentID, 0, len(r.sessions))
	for id, rec := range r.sessions {
		if rec.Phase() == PhaseActive {
			out = append(out, id)
		}
	}
	return out
}

// Count returns the number of tracked sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep checks every Active session's heartbeat against its configured
// deregistration timeout and moves timed-out sessions to Draining,
// returning the list of agent ids that transitioned this sweep so the
// caller can issue deregister notices on their control channels.
func (r *Registry) Sweep(now time.Time) []wire.AgentID {
	r.mu.RLock()
	snapshot := make(map[wire.AgentID]*Record, len(r.sessions))
	for id, rec := range r.sessions {
		snapshot[id] = rec
	}
	r.mu.RUnlock()

	var timedOut []wire.AgentID
	for id, rec := range snapshot {
		if _, transitioned := rec.CheckHeartbeatTimeout(now); transitioned {
			timedOut = append(timedOut, id)
		}
	}
	return timedOut
}

// StartSweep runs Sweep on a ticker until the registry is stopped.
// interval must be ≥1Hz per spec.md §4.4 ("a sweep running at ≥1 Hz").
func (r *Registry) StartSweep(interval time.Duration, onTimeout func(wire.AgentID)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case now := <-ticker.C:
				for _, id := range r.Sweep(now) {
					if onTimeout != nil {
						onTimeout(id)
					}
				}
			}
		}
	}()
}

// Stop halts the background sweep goroutine.
func (r *Registry) Stop() {
	r.cancel()
}
