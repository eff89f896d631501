// Package burst implements the discrete-time burst scheduler (C5): the
// driver that drains parameter updates, injects sensory activity, steps
// neural dynamics through the opaque Dynamics boundary, archives the fire
// queue, and publishes decoded motor/visualization output — the strict
// seven-step order of spec.md §4.5.
package burst

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/feagi/feagi-core/pkg/pipeline"
)

// DefaultFrequencyHz is the burst loop's starting rate before any
// ParameterUpdate reconfigures it.
const DefaultFrequencyHz = 20.0

// DefaultLedgerCapacity is the default number of bursts retained per area
// in the FireLedger.
const DefaultLedgerCapacity = 64

// Engine is the burst driver. One Engine runs on exactly one goroutine
// (the "single burst driver" of spec.md §5); sensor/motor bindings are
// registered and removed from other goroutines under Engine's own lock,
// mirroring the copy-on-write/read-mostly shape spec.md §5 calls for on
// the dimensions table.
type Engine struct {
	registry *pipeline.Registry
	dims     *cortex.DimensionsTable
	dynamics Dynamics
	ledger   *FireLedger
	params   *ParameterQueue

	mu            sync.RWMutex
	sourcesByArea map[cortex.ID][]*SensorSource
	sinksByArea   map[cortex.ID][]*MotorSink

	freqMu      sync.Mutex
	frequencyHz float64

	burstIndex uint64
	lastBurst  time.Time

	candidates *cortex.MappedVoxels
}

// NewEngine wires an Engine to its cortical dimensions table, codec
// registry, and Dynamics implementation.
func NewEngine(dims *cortex.DimensionsTable, registry *pipeline.Registry, dynamics Dynamics) *Engine {
	return &Engine{
		registry:      registry,
		dims:          dims,
		dynamics:      dynamics,
		ledger:        NewFireLedger(DefaultLedgerCapacity),
		params:        NewParameterQueue(),
		sourcesByArea: make(map[cortex.ID][]*SensorSource),
		sinksByArea:   make(map[cortex.ID][]*MotorSink),
		frequencyHz:   DefaultFrequencyHz,
		candidates:    cortex.NewMappedVoxels(dims),
	}
}

// Parameters returns the engine's ParameterUpdate queue for enqueueing
// from agent-facing or control-channel workers.
func (e *Engine) Parameters() *ParameterQueue { return e.params }

// Ledger returns the engine's fire ledger, readable concurrently with the
// driver (spec.md §5's debug-surface allowance).
func (e *Engine) Ledger() *FireLedger { return e.ledger }

// Frequency returns the burst loop's current rate in Hz.
func (e *Engine) Frequency() float64 {
	e.freqMu.Lock()
	defer e.freqMu.Unlock()
	return e.frequencyHz
}

// BurstIndex returns the index of the next burst to run, i.e. the number of
// bursts completed so far. Safe to read from the debug HTTP surface
// concurrently with the driver.
func (e *Engine) BurstIndex() uint64 {
	return atomic.LoadUint64(&e.burstIndex)
}

// AddSource registers a sensory channel binding. Safe to call while Run
// is active.
func (e *Engine) AddSource(s *SensorSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sourcesByArea[s.Area] = append(e.sourcesByArea[s.Area], s)
}

// AddSink registers a motor/visualization output binding. Safe to call
// while Run is active.
func (e *Engine) AddSink(s *MotorSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinksByArea[s.Area] = append(e.sinksByArea[s.Area], s)
}

// RemoveSources drops every source bound to area for which match reports
// true, used when a session closes and its channel bindings must stop
// firing.
func (e *Engine) RemoveSources(area cortex.ID, match func(*SensorSource) bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	kept := e.sourcesByArea[area][:0:0]
	for _, s := range e.sourcesByArea[area] {
		if !match(s) {
			kept = append(kept, s)
		}
	}
	e.sourcesByArea[area] = kept
}

// Run drives the burst loop until ctx is cancelled. On cancellation the
// loop finishes any burst already in progress, then — before returning —
// invokes onShutdown so the caller can call RequestDisconnect on every
// endpoint and drain sessions to Closed, per spec.md §4.5's cancellation
// clause.
func (e *Engine) Run(ctx context.Context, onShutdown func()) error {
	e.lastBurst = time.Now()
	for {
		if ctx.Err() != nil {
			if onShutdown != nil {
				onShutdown()
			}
			return ctx.Err()
		}

		start := time.Now()
		if err := e.runBurst(ctx); err != nil {
			log.Printf("burst %d: %v", e.burstIndex, err)
		}
		atomic.AddUint64(&e.burstIndex, 1)

		interval := time.Duration(float64(time.Second) / e.Frequency())
		elapsed := time.Since(start)
		sleep := interval - elapsed

		if sleep <= 0 {
			continue
		}
		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			if onShutdown != nil {
				onShutdown()
			}
			return ctx.Err()
		}
	}
}

// runBurst executes steps 1-6 of spec.md §4.5 exactly once; Run does step
// 7's bookkeeping (burst counter and sleep).
func (e *Engine) runBurst(ctx context.Context) error {
	previousBurst := e.lastBurst
	now := time.Now()

	e.drainParameterUpdates()

	if err := e.injectSensoryActivity(previousBurst); err != nil {
		return fmt.Errorf("inject sensory activity: %w", err)
	}

	fired, err := e.dynamics.Step(ctx, e.burstIndex, e.candidates)
	if err != nil {
		return fmt.Errorf("dynamics step: %w", err)
	}

	e.archiveFireQueue(fired)

	if err := e.publishOutputs(now, fired); err != nil {
		log.Printf("burst %d: publish outputs: %v", e.burstIndex, err)
	}

	e.candidates.Reset()
	e.lastBurst = now
	return nil
}

// drainParameterUpdates is step 1: pop all queued updates and apply them.
// FrequencyParameterName reconfigures the loop itself; every other update
// is area-scoped, but pkg/burst has no notion of a cortical area's
// internal configuration fields (spec.md §1 leaves those to the
// connectome/genome layer) — it is logged and otherwise a no-op, which is
// the safe default for an update this package cannot interpret.
func (e *Engine) drainParameterUpdates() {
	for _, update := range e.params.DrainAll() {
		if update.ParameterName == FrequencyParameterName {
			if hz, ok := update.Value.(float64); ok && hz > 0 {
				e.freqMu.Lock()
				e.frequencyHz = hz
				e.freqMu.Unlock()
			}
			continue
		}
		log.Printf("burst: parameter update for area %q (%s) has no configuration sink; ignored", update.CorticalID, update.ParameterName)
	}
}

// injectSensoryActivity is step 2: for each updated channel, encode into
// its scratch, then concatenate per-area scratches into the candidate
// list.
func (e *Engine) injectSensoryActivity(previousBurst time.Time) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for area, sources := range e.sourcesByArea {
		dims, ok := e.dims.Get(area)
		if !ok {
			continue
		}

		updated := make([]*cortex.VoxelArrays, 0, len(sources))
		for _, src := range sources {
			scratch, err := src.encodeIfUpdated(previousBurst, dims, e.registry)
			if err != nil {
				return fmt.Errorf("area %s: %w", area, err)
			}
			if scratch != nil {
				updated = append(updated, scratch)
			}
		}
		if len(updated) == 0 {
			continue
		}

		target, err := e.candidates.EnsureClearAndBorrowMut(area)
		if err != nil {
			return err
		}
		pipeline.ConcatenateChannelScratches(target, updated)
	}
	return nil
}

// archiveFireQueue is step 4.
func (e *Engine) archiveFireQueue(fired *cortex.MappedVoxels) {
	if fired == nil {
		return
	}
	for _, area := range fired.Areas() {
		arr, ok := fired.Get(area)
		if !ok {
			continue
		}
		snapshot := make([]cortex.VoxelXYZP, arr.Len())
		for i := range snapshot {
			snapshot[i] = arr.At(i)
		}
		e.ledger.Archive(area, e.burstIndex, snapshot)
	}
}

// publishOutputs is steps 5-6: for every area with fire activity this
// burst, dispatch to its registered decoder and publish. An area with no
// registered sink is dropped silently and logged, per spec.md §4.3 edge
// case (c) — the registry itself is total, but not every cortical area
// the connectome defines has a sink wired up in a given deployment.
func (e *Engine) publishOutputs(now time.Time, fired *cortex.MappedVoxels) error {
	if fired == nil {
		return nil
	}
	e.mu.RLock()
	defer e.mu.RUnlock()

	var firstErr error
	for _, area := range fired.Areas() {
		sinks, ok := e.sinksByArea[area]
		if !ok || len(sinks) == 0 {
			log.Printf("burst: no motor/viz sink registered for area %s; dropping fired voxels", area)
			continue
		}
		arr, ok := fired.Get(area)
		if !ok {
			continue
		}
		for _, sink := range sinks {
			if err := sink.decodeAndPublish(now, arr, e.registry); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("area %s: %w", area, err)
			}
		}
	}
	return firstErr
}
