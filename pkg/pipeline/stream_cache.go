package pipeline

import (
	"sync"
	"time"
)

// StreamCache is PerChannelStreamCache: one per agent-capability-channel.
// Holds the pre-processed typed input, its ordered stage pipeline, the
// last post-processed value, the update timestamp, and a value-updated
// signal for fan-out.
//
// The signal is a bounded broadcast queue, not a callback registry — the
// redesign note on channel-level callbacks calls for consumers to poll a
// queue rather than register closures, so Changed() returns a channel
// subscribers select on. It holds one pending notification; a write that
// finds one already pending sends nothing rather than blocking the writer.
type StreamCache struct {
	mu sync.Mutex

	preprocessed  any
	pipeline      *Pipeline
	postprocessed any
	lastUpdated   time.Time
	changed       chan struct{}
}

// NewStreamCache wires a cache to its validated pipeline.
func NewStreamCache(p *Pipeline) *StreamCache {
	return &StreamCache{
		pipeline: p,
		changed:  make(chan struct{}, 1),
	}
}

// Write runs the pipeline over a freshly arrived typed input. On success
// the post-processed value and timestamp are updated and a signal is
// fired. On failure the cache keeps its previous post-processed value,
// per spec.md §4.3 step 2.
func (c *StreamCache) Write(in any, at time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.preprocessed = in
	out, err := c.pipeline.Run(in, at)
	if err != nil {
		return err
	}
	c.postprocessed = out
	c.lastUpdated = at
	c.notifyLocked()
	return nil
}

func (c *StreamCache) notifyLocked() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}

// PostProcessed returns the last successfully post-processed value and
// its timestamp.
func (c *StreamCache) PostProcessed() (any, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.postprocessed, c.lastUpdated
}

// UpdatedSince reports whether the cache's last successful update is at
// or after the given instant — the burst-start freshness check from
// spec.md §4.3 ("last_processed_instant >= previous_burst_instant").
func (c *StreamCache) UpdatedSince(previousBurst time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.lastUpdated.Before(previousBurst)
}

// Changed returns the channel subscribers poll for update notifications.
func (c *StreamCache) Changed() <-chan struct{} {
	return c.changed
}
