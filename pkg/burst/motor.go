package burst

import (
	"fmt"
	"log"
	"time"

	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/feagi/feagi-core/pkg/endpoint"
	"github.com/feagi/feagi-core/pkg/pipeline"
	"github.com/feagi/feagi-core/pkg/wire"
)

// MotorPublisher is the subset of endpoint.Publisher a MotorSink drives.
// A real deployment wires in *endpoint.ChannelPublisher (or a future ZMQ/
// WebSocket variant); tests can supply a stub.
type MotorPublisher interface {
	PublishData(data []byte) error
}

// Subscriber pairs a publisher with the agent id it's publishing on
// behalf of, purely for logging/debug-surface purposes.
type Subscriber struct {
	AgentID   wire.AgentID
	Publisher MotorPublisher
	Policy    endpoint.BackpressurePolicy
}

// MotorSink binds a designated output cortical area to its decoder key
// and the stream cache the decoded value is written into (spec.md §4.3:
// "writes into the matching channel's stream cache input"), fanning the
// resulting bytes out to every subscribed session's publisher.
type MotorSink struct {
	Area   cortex.ID
	Cache  *pipeline.StreamCache
	Config pipeline.ChannelConfig
	Key    pipeline.RegistryKey

	Subscribers []Subscriber
}

// NewMotorSink wires an output area's decoder key and stream cache. The
// cache lets the decoded value run through the same staged-pipeline
// abstraction sensors use, rather than being a one-off code path.
func NewMotorSink(area cortex.ID, cache *pipeline.StreamCache, cfg pipeline.ChannelConfig, key pipeline.RegistryKey) *MotorSink {
	return &MotorSink{Area: area, Cache: cache, Config: cfg, Key: key}
}

// decodeAndPublish decodes this burst's fired voxels for the sink's area,
// writes the result through the sink's cache pipeline, and publishes the
// post-processed bytes to every subscriber. A publish failure on one
// subscriber does not stop delivery to the others.
func (s *MotorSink) decodeAndPublish(now time.Time, voxels *cortex.VoxelArrays, registry *pipeline.Registry) error {
	value, err := registry.Decode(s.Key, voxels, s.Config)
	if err != nil {
		return err
	}
	if err := s.Cache.Write(value, now); err != nil {
		return err
	}

	postprocessed, _ := s.Cache.PostProcessed()
	container := wire.NewEmpty()
	if err := container.OverwriteWithSingleStruct(wire.JSONStruct{Value: postprocessed}, 0); err != nil {
		return err
	}
	payload := container.GetByteRef()

	var firstErr error
	for _, sub := range s.Subscribers {
		err := sub.Publisher.PublishData(payload)
		if err == nil {
			continue
		}
		if sub.Policy == endpoint.BestEffort {
			log.Printf("burst: dropping frame for best-effort subscriber %s on area %s: %v", sub.AgentID, s.Area, err)
			continue
		}
		if firstErr == nil {
			firstErr = fmt.Errorf("subscriber %s: %w", sub.AgentID, err)
		}
	}
	return firstErr
}
