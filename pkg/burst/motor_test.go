package burst

import (
	"errors"
	"testing"
	"time"

	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/feagi/feagi-core/pkg/endpoint"
	"github.com/feagi/feagi-core/pkg/pipeline"
)

var errPublishFailed = errors.New("publish failed")

type failingPublisher struct{}

func (p *failingPublisher) PublishData(data []byte) error { return errPublishFailed }

func newMotorSinkWithFiredVoxel(t *testing.T, area cortex.ID) (*MotorSink, *cortex.VoxelArrays) {
	t.Helper()
	pl, err := pipeline.NewPipeline([]pipeline.Stage{pipeline.IdentityStage{Type: "percentage"}})
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	cache := pipeline.NewStreamCache(pl)
	key := pipeline.RegistryKey{Kind: pipeline.KindPercentage, Mode: pipeline.Absolute, Positioning: pipeline.Linear}
	cfg := pipeline.PercentageConfig{ChannelIndex: 0, Depth: 10}
	sink := NewMotorSink(area, cache, cfg, key)

	voxels := cortex.NewVoxelArrays(1)
	voxels.Push(0, 0, 0, 0.5)
	return sink, voxels
}

// A Reliable subscriber's publish failure must propagate out of
// decodeAndPublish rather than being swallowed.
func TestDecodeAndPublishPropagatesReliableSubscriberError(t *testing.T) {
	area := motorArea(t)
	sink, voxels := newMotorSinkWithFiredVoxel(t, area)
	sink.Subscribers = append(sink.Subscribers, Subscriber{Publisher: &failingPublisher{}, Policy: endpoint.Reliable})

	err := sink.decodeAndPublish(time.Now(), voxels, pipeline.NewRegistry())
	if err == nil {
		t.Fatal("expected an error from a failing Reliable subscriber, got nil")
	}
}

// A BestEffort subscriber's publish failure must not propagate, and must
// not stop delivery to other subscribers.
func TestDecodeAndPublishDropsBestEffortSubscriberError(t *testing.T) {
	area := motorArea(t)
	sink, voxels := newMotorSinkWithFiredVoxel(t, area)
	sink.Subscribers = append(sink.Subscribers,
		Subscriber{Publisher: &failingPublisher{}, Policy: endpoint.BestEffort},
	)
	reliable := &recordingPublisher{}
	sink.Subscribers = append(sink.Subscribers, Subscriber{Publisher: reliable, Policy: endpoint.Reliable})

	err := sink.decodeAndPublish(time.Now(), voxels, pipeline.NewRegistry())
	if err != nil {
		t.Fatalf("expected no error from a failing BestEffort subscriber, got %v", err)
	}
	if len(reliable.published) != 1 {
		t.Fatalf("expected delivery to the other subscriber to still happen, got %d publishes", len(reliable.published))
	}
}

// The zero value of Subscriber.Policy is Reliable, so a subscriber added
// without an explicit policy still fails loudly rather than silently.
func TestSubscriberDefaultPolicyIsReliable(t *testing.T) {
	area := motorArea(t)
	sink, voxels := newMotorSinkWithFiredVoxel(t, area)
	sink.Subscribers = append(sink.Subscribers, Subscriber{Publisher: &failingPublisher{}})

	err := sink.decodeAndPublish(time.Now(), voxels, pipeline.NewRegistry())
	if err == nil {
		t.Fatal("expected an error from the default (Reliable) policy, got nil")
	}
}
