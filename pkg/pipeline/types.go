// Package pipeline implements the sensorimotor coding pipeline (C3):
// per-channel stream caches, ordered stage processors, and the
// encoder/decoder registry mapping typed I/O data to sparse XYZP
// neuron-voxel activations.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/feagi/feagi-core/pkg/cortex"
)

// FrameChangeMode is one axis of the encoder/decoder registry key.
type FrameChangeMode int

const (
	Absolute FrameChangeMode = iota
	Incremental
)

func (m FrameChangeMode) String() string {
	if m == Incremental {
		return "incremental"
	}
	return "absolute"
}

// Positioning is the other axis of the registry key: how a scalar value
// maps to voxel position along z.
type Positioning int

const (
	Linear Positioning = iota
	Exponential
)

func (p Positioning) String() string {
	if p == Exponential {
		return "exponential"
	}
	return "linear"
}

// UnitKind identifies a cortical-unit kind (the codec family): e.g.
// "percentage", "percentage_signed", "image_frame", "misc_data",
// "segmented_image_frame". Kept as a string rather than an enum so new
// kinds can be registered without a central type edit, matching the
// data-driven-dispatch redesign note.
type UnitKind string

const (
	KindPercentage         UnitKind = "percentage"
	KindPercentageSigned   UnitKind = "percentage_signed"
	KindImageFrame         UnitKind = "image_frame"
	KindMiscData           UnitKind = "misc_data"
	KindSegmentedImageFrame UnitKind = "segmented_image_frame"
)

// RegistryKey is the (cortical-unit kind, frame-change mode, positioning)
// triple the encoder/decoder registry dispatches on.
type RegistryKey struct {
	Kind        UnitKind
	Mode        FrameChangeMode
	Positioning Positioning
}

func (k RegistryKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Kind, k.Mode, k.Positioning)
}

// ErrOutOfBounds is returned when an encoder attempts to write a voxel
// outside the target cortical area's dimensions.
var ErrOutOfBounds = errors.New("pipeline: encoder produced an out-of-bounds voxel")

// ErrChannelCountMismatch is returned at registration time when a
// channel's configured channel count does not match what the encoder
// expects.
var ErrChannelCountMismatch = errors.New("pipeline: channel count mismatch between cache and encoder")

// EncodeTarget is the bounds-checked handle encoders use to append
// voxels. cortex.VoxelArrays.Push itself is intentionally unchecked (hot
// path); this wrapper is the one required checkpoint so an encoder bug
// fails the burst encode with ErrOutOfBounds (spec.md §4.3 edge case b)
// instead of corrupting scratch state silently.
type EncodeTarget struct {
	Arrays *cortex.VoxelArrays
	Dims   cortex.Dimensions
}

// Push validates (x,y,z) against Dims before appending.
func (t EncodeTarget) Push(x, y, z uint32, p float32) error {
	if !t.Dims.Contains(x, y, z) {
		return fmt.Errorf("%w: (%d,%d,%d) outside (%d,%d,%d)", ErrOutOfBounds, x, y, z, t.Dims.X, t.Dims.Y, t.Dims.Z)
	}
	t.Arrays.Push(x, y, z, p)
	return nil
}
