package pipeline

// ChannelConfig is the per-channel configuration an encoder/decoder
// consumes. Each codec family has its own shape — per original_source/
// sdk/sensory/text/encoder.rs and video.rs, configs are not crammed into
// one generic struct (SPEC_FULL.md §12).
type ChannelConfig interface {
	isChannelConfig()
}

// PercentageConfig configures a Percentage/PercentageSigned channel.
type PercentageConfig struct {
	ChannelIndex uint32
	Depth        uint32
}

func (PercentageConfig) isChannelConfig() {}

// ImageFrameConfig configures an ImageFrame channel.
type ImageFrameConfig struct {
	ChannelIndex uint32
	Width        uint32
	Height       uint32
}

func (ImageFrameConfig) isChannelConfig() {}

// MiscDataConfig configures a MiscData channel: an arbitrary 3D dense
// array passed through unchanged.
type MiscDataConfig struct {
	ChannelIndex uint32
	Dims         [3]uint32
}

func (MiscDataConfig) isChannelConfig() {}

// SegmentedImageFrameConfig configures a SegmentedImageFrame channel: an
// ImageFrameConfig plus the gaze-driven sub-region to crop before
// encoding.
type SegmentedImageFrameConfig struct {
	ImageFrameConfig
	RegionWidth  uint32
	RegionHeight uint32
}

func (SegmentedImageFrameConfig) isChannelConfig() {}
