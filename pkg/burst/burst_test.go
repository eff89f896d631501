package burst

import (
	"context"
	"testing"
	"time"

	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/feagi/feagi-core/pkg/pipeline"
)

func proximityArea(t *testing.T) cortex.ID {
	t.Helper()
	id, err := cortex.NewID(cortex.Descriptor{Category: cortex.CategoryInput, UnitType: "prx", GroupIdx: "00", SubIdx: "00"})
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	return id
}

func motorArea(t *testing.T) cortex.ID {
	t.Helper()
	id, err := cortex.NewID(cortex.Descriptor{Category: cortex.CategoryOutput, UnitType: "mot", GroupIdx: "00", SubIdx: "00"})
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	return id
}

type recordingPublisher struct {
	published [][]byte
}

func (p *recordingPublisher) PublishData(data []byte) error {
	p.published = append(p.published, data)
	return nil
}

// Scenario 5: percentage linear round-trip through the full burst loop.
func TestPercentageLinearRoundTripThroughBurst(t *testing.T) {
	area := proximityArea(t)
	dims := cortex.NewDimensionsTable(map[cortex.ID]cortex.Dimensions{
		area: {X: 1, Y: 1, Z: 10},
	})
	registry := pipeline.NewRegistry()
	key := pipeline.RegistryKey{Kind: pipeline.KindPercentage, Mode: pipeline.Absolute, Positioning: pipeline.Linear}
	cfg := pipeline.PercentageConfig{ChannelIndex: 0, Depth: 10}

	engine := NewEngine(dims, registry, PassthroughDynamics{})

	pl, err := pipeline.NewPipeline([]pipeline.Stage{pipeline.IdentityStage{Type: "percentage"}})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	cache := pipeline.NewStreamCache(pl)
	if err := cache.Write(0.5, time.Now()); err != nil {
		t.Fatalf("cache.Write: %v", err)
	}

	engine.AddSource(NewSensorSource(area, cache, cfg, key))

	motorCache := pipeline.NewStreamCache(pl)
	sink := NewMotorSink(area, motorCache, cfg, key)
	pub := &recordingPublisher{}
	sink.Subscribers = append(sink.Subscribers, Subscriber{Publisher: pub})
	engine.AddSink(sink)

	if err := engine.runBurst(context.Background()); err != nil {
		t.Fatalf("runBurst: %v", err)
	}

	records := engine.Ledger().Recent(area)
	if len(records) != 1 {
		t.Fatalf("expected 1 ledger record, got %d", len(records))
	}
	fired := records[0].Fired
	if len(fired) != 1 {
		t.Fatalf("expected 1 fired voxel, got %d", len(fired))
	}
	want := cortex.VoxelXYZP{X: 0, Y: 0, Z: 5, P: 1.0}
	if fired[0] != want {
		t.Fatalf("fired voxel = %+v, want %+v", fired[0], want)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published frame, got %d", len(pub.published))
	}
}

// A channel that never writes contributes nothing to the burst, per
// spec.md §4.3 ("channels that did not update contribute nothing").
func TestUnupdatedChannelContributesNothing(t *testing.T) {
	area := proximityArea(t)
	dims := cortex.NewDimensionsTable(map[cortex.ID]cortex.Dimensions{area: {X: 1, Y: 1, Z: 10}})
	registry := pipeline.NewRegistry()
	key := pipeline.RegistryKey{Kind: pipeline.KindPercentage, Mode: pipeline.Absolute, Positioning: pipeline.Linear}
	cfg := pipeline.PercentageConfig{ChannelIndex: 0, Depth: 10}

	engine := NewEngine(dims, registry, PassthroughDynamics{})
	pl, _ := pipeline.NewPipeline([]pipeline.Stage{pipeline.IdentityStage{Type: "percentage"}})
	cache := pipeline.NewStreamCache(pl)
	engine.AddSource(NewSensorSource(area, cache, cfg, key))

	if err := engine.runBurst(context.Background()); err != nil {
		t.Fatalf("runBurst: %v", err)
	}
	if len(engine.Ledger().Areas()) != 0 {
		t.Fatalf("expected no archived activity for an unwritten channel")
	}
}

// Burst determinism: with PassthroughDynamics and no external input, two
// runs from identical injected activity yield identical fire queues.
func TestBurstDeterminismWithFixedInput(t *testing.T) {
	area := proximityArea(t)
	dims := cortex.NewDimensionsTable(map[cortex.ID]cortex.Dimensions{area: {X: 1, Y: 1, Z: 10}})
	registry := pipeline.NewRegistry()
	key := pipeline.RegistryKey{Kind: pipeline.KindPercentage, Mode: pipeline.Absolute, Positioning: pipeline.Linear}
	cfg := pipeline.PercentageConfig{ChannelIndex: 0, Depth: 10}
	pl, _ := pipeline.NewPipeline([]pipeline.Stage{pipeline.IdentityStage{Type: "percentage"}})

	runOnce := func() []cortex.VoxelXYZP {
		engine := NewEngine(dims, registry, PassthroughDynamics{})
		cache := pipeline.NewStreamCache(pl)
		cache.Write(0.3, time.Now())
		engine.AddSource(NewSensorSource(area, cache, cfg, key))
		engine.runBurst(context.Background())
		return engine.Ledger().Recent(area)[0].Fired
	}

	first := runOnce()
	second := runOnce()
	if len(first) != len(second) {
		t.Fatalf("fire queue length differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("fire queue differs at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestParameterUpdateReconfiguresFrequency(t *testing.T) {
	dims := cortex.NewDimensionsTable(nil)
	engine := NewEngine(dims, pipeline.NewRegistry(), PassthroughDynamics{})
	if engine.Frequency() != DefaultFrequencyHz {
		t.Fatalf("frequency = %v, want default %v", engine.Frequency(), DefaultFrequencyHz)
	}
	engine.Parameters().Enqueue(ParameterUpdate{ParameterName: FrequencyParameterName, Value: 50.0})
	engine.drainParameterUpdates()
	if engine.Frequency() != 50.0 {
		t.Fatalf("frequency = %v, want 50", engine.Frequency())
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	dims := cortex.NewDimensionsTable(nil)
	engine := NewEngine(dims, pipeline.NewRegistry(), PassthroughDynamics{})
	engine.Parameters().Enqueue(ParameterUpdate{ParameterName: FrequencyParameterName, Value: 1000.0})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	shutdownCalled := false

	go func() {
		engine.Run(ctx, func() { shutdownCalled = true })
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	if !shutdownCalled {
		t.Fatal("expected onShutdown to be invoked")
	}
}

func TestMissingSinkDropsSilently(t *testing.T) {
	area := motorArea(t)
	dims := cortex.NewDimensionsTable(map[cortex.ID]cortex.Dimensions{area: {X: 1, Y: 1, Z: 1}})
	engine := NewEngine(dims, pipeline.NewRegistry(), PassthroughDynamics{})

	fired := cortex.NewMappedVoxels(dims)
	target, err := fired.EnsureClearAndBorrowMut(area)
	if err != nil {
		t.Fatalf("EnsureClearAndBorrowMut: %v", err)
	}
	target.Push(0, 0, 0, 1.0)

	if err := engine.publishOutputs(time.Now(), fired); err != nil {
		t.Fatalf("publishOutputs: %v", err)
	}
}
