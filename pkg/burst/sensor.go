package burst

import (
	"time"

	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/feagi/feagi-core/pkg/pipeline"
)

// SensorSource binds one agent-facing input channel to the cortical area
// its encoded voxels land in. Each source owns a private scratch
// VoxelArrays so parallel encoding across channels of the same area is
// safe (spec.md §4.3: "scratch spaces are per-channel so parallel
// encoding across channels is safe") — this implementation encodes
// sequentially, but the per-channel scratch keeps the door open for a
// worker-pool fan-out without touching this type.
type SensorSource struct {
	Area   cortex.ID
	Cache  *pipeline.StreamCache
	Config pipeline.ChannelConfig
	Key    pipeline.RegistryKey

	scratch *cortex.VoxelArrays
}

// NewSensorSource wires a channel's stream cache to its target area and
// encoder key.
func NewSensorSource(area cortex.ID, cache *pipeline.StreamCache, cfg pipeline.ChannelConfig, key pipeline.RegistryKey) *SensorSource {
	return &SensorSource{
		Area:    area,
		Cache:   cache,
		Config:  cfg,
		Key:     key,
		scratch: cortex.NewVoxelArrays(0),
	}
}

// encodeIfUpdated encodes this channel's post-processed value into its
// scratch if the cache updated at or after previousBurst. Returns nil,
// nil when the channel did not update (spec.md: "channels that did not
// update contribute nothing").
func (s *SensorSource) encodeIfUpdated(previousBurst time.Time, dims cortex.Dimensions, registry *pipeline.Registry) (*cortex.VoxelArrays, error) {
	if !s.Cache.UpdatedSince(previousBurst) {
		return nil, nil
	}
	value, _ := s.Cache.PostProcessed()
	if value == nil {
		return nil, nil
	}
	s.scratch.Clear()
	target := pipeline.EncodeTarget{Arrays: s.scratch, Dims: dims}
	if err := registry.Encode(s.Key, value, s.Config, target); err != nil {
		return nil, err
	}
	return s.scratch, nil
}
