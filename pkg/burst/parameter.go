package burst

import "sync"

// ParameterUpdate is a deferred change to a cortical area's configuration,
// queued from any thread and drained exclusively at burst start (spec.md
// §4.5 step 1, §3's ParameterUpdate type).
type ParameterUpdate struct {
	// CorticalID is the zero value for engine-wide parameters (currently
	// only FrequencyParameterName) rather than a per-area setting.
	CorticalID    CorticalTarget
	ParameterName string
	Value         any
}

// CorticalTarget names the area a ParameterUpdate applies to. Kept as its
// own type (rather than importing pkg/cortex.ID directly into the queue)
// so the queue has no opinion on whether the target is even a known area.
// The target is not validated when the update is applied either: the
// engine applies FrequencyParameterName and logs and ignores every
// area-scoped update.
type CorticalTarget string

// FrequencyParameterName is the reserved parameter name that reconfigures
// the burst loop's own frequency rather than a cortical area — spec.md
// §4.5: "Frequency is configurable at runtime (via a parameter update)."
const FrequencyParameterName = "burst_frequency_hz"

// ParameterQueue is the enqueue-cheap/drain-bulk-and-exclusive queue from
// spec.md §4.5's concurrency section. Grounded on the teacher's
// BrainWorker.ops channel pattern, simplified from a channel to a plain
// mutex-guarded slice since spec.md explicitly calls for "a queue with a
// simple mutex", not a buffered channel actor.
type ParameterQueue struct {
	mu      sync.Mutex
	pending []ParameterUpdate
}

// NewParameterQueue returns an empty queue.
func NewParameterQueue() *ParameterQueue {
	return &ParameterQueue{}
}

// Enqueue appends an update. Cheap: acquire, append, release.
func (q *ParameterQueue) Enqueue(update ParameterUpdate) {
	q.mu.Lock()
	q.pending = append(q.pending, update)
	q.mu.Unlock()
}

// DrainAll removes and returns every queued update in arrival order. Bulk
// and exclusive: the burst driver calls this once per burst at step 1.
func (q *ParameterQueue) DrainAll() []ParameterUpdate {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	drained := q.pending
	q.pending = nil
	return drained
}
