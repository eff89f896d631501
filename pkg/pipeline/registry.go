package pipeline

import (
	"fmt"

	"github.com/feagi/feagi-core/pkg/cortex"
)

// Encoder reads a typed value out of a channel and appends voxel
// coordinates to target.
type Encoder func(value any, cfg ChannelConfig, target EncodeTarget) error

// Decoder reads voxels out of a cortical area and produces a typed value
// for the matching channel's stream cache input.
type Decoder func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error)

// Registry maps (cortical-unit kind, frame-change mode, positioning) to
// a concrete encoder or decoder. Populated once at startup; dispatch is
// a single map lookup — the data-driven-dispatch-table redesign in place
// of per-variant macros (spec.md §9), grounded on the teacher's
// map[CommandType]CommandHandler executor (pkg/protocol/executor.go).
type Registry struct {
	encoders map[RegistryKey]Encoder
	decoders map[RegistryKey]Decoder
}

// NewRegistry returns a registry pre-populated with every builtin codec
// family. The registry must be total over every registered cortical
// type (spec.md §4.3); registerBuiltins covers every triple named in
// spec.md plus the unused-but-preserved Percentage*Exponential variants
// (spec.md §9 open question).
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[RegistryKey]Encoder),
		decoders: make(map[RegistryKey]Decoder),
	}
	r.registerBuiltins()
	return r
}

// RegisterEncoder adds or replaces the encoder for key.
func (r *Registry) RegisterEncoder(key RegistryKey, e Encoder) {
	r.encoders[key] = e
}

// RegisterDecoder adds or replaces the decoder for key.
func (r *Registry) RegisterDecoder(key RegistryKey, d Decoder) {
	r.decoders[key] = d
}

// Encode dispatches to the registered encoder for key.
func (r *Registry) Encode(key RegistryKey, value any, cfg ChannelConfig, target EncodeTarget) error {
	e, ok := r.encoders[key]
	if !ok {
		return fmt.Errorf("pipeline: no encoder registered for %s", key)
	}
	return e(value, cfg, target)
}

// Decode dispatches to the registered decoder for key. Per spec.md §4.3
// edge case (c), callers that find no decoder for a cortical area
// (rather than no decoder for a registry key that was supposed to be
// total) must drop the output silently and log — that check happens one
// layer up, where CorticalId is resolved to a RegistryKey; Decode itself
// returns an error for a genuinely unregistered key, since the registry
// is meant to be total once startup completes.
func (r *Registry) Decode(key RegistryKey, voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
	d, ok := r.decoders[key]
	if !ok {
		return nil, fmt.Errorf("pipeline: no decoder registered for %s", key)
	}
	return d(voxels, cfg)
}

func (r *Registry) registerBuiltins() {
	r.registerPercentage()
	r.registerImageFamily()
}

func (r *Registry) registerPercentage() {
	percentageCfg := func(cfg ChannelConfig) PercentageConfig {
		return cfg.(PercentageConfig)
	}

	for _, mode := range []FrameChangeMode{Absolute, Incremental} {
		mode := mode

		r.RegisterEncoder(RegistryKey{Kind: KindPercentage, Mode: mode, Positioning: Linear}, func(value any, cfg ChannelConfig, target EncodeTarget) error {
			c := percentageCfg(cfg)
			v, err := asFloat(value)
			if err != nil {
				return err
			}
			idx := linearEncodeIndex(v, c.Depth)
			return target.Push(c.ChannelIndex, 0, idx, 1.0)
		})
		r.RegisterDecoder(RegistryKey{Kind: KindPercentage, Mode: mode, Positioning: Linear}, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
			c := percentageCfg(cfg)
			z, found := findChannelZ(voxels, c.ChannelIndex, 0)
			if !found {
				return 0.0, nil
			}
			return linearDecodeValue(z, c.Depth), nil
		})

		r.RegisterEncoder(RegistryKey{Kind: KindPercentage, Mode: mode, Positioning: Exponential}, func(value any, cfg ChannelConfig, target EncodeTarget) error {
			c := percentageCfg(cfg)
			v, err := asFloat(value)
			if err != nil {
				return err
			}
			for _, bit := range exponentialEncodeBits(v, c.Depth) {
				if err := target.Push(c.ChannelIndex, 0, bit, 1.0); err != nil {
					return err
				}
			}
			return nil
		})
		r.RegisterDecoder(RegistryKey{Kind: KindPercentage, Mode: mode, Positioning: Exponential}, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
			c := percentageCfg(cfg)
			return exponentialDecodeBits(findChannelZs(voxels, c.ChannelIndex, 0)), nil
		})

		r.RegisterEncoder(RegistryKey{Kind: KindPercentageSigned, Mode: mode, Positioning: Linear}, func(value any, cfg ChannelConfig, target EncodeTarget) error {
			c := percentageCfg(cfg)
			v, err := asFloat(value)
			if err != nil {
				return err
			}
			mag, neg := splitSign(v)
			idx := linearEncodeIndex(mag, c.Depth)
			return target.Push(c.ChannelIndex, signColumn(neg), idx, 1.0)
		})
		r.RegisterDecoder(RegistryKey{Kind: KindPercentageSigned, Mode: mode, Positioning: Linear}, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
			c := percentageCfg(cfg)
			if z, found := findChannelZ(voxels, c.ChannelIndex, 1); found {
				return -linearDecodeValue(z, c.Depth), nil
			}
			if z, found := findChannelZ(voxels, c.ChannelIndex, 0); found {
				return linearDecodeValue(z, c.Depth), nil
			}
			return 0.0, nil
		})

		// Percentage4D*Exponential: declared per the legacy source but
		// unused (spec.md §9); kept functional since the positioning
		// algorithm generalizes, not stubbed.
		r.RegisterEncoder(RegistryKey{Kind: KindPercentageSigned, Mode: mode, Positioning: Exponential}, func(value any, cfg ChannelConfig, target EncodeTarget) error {
			c := percentageCfg(cfg)
			v, err := asFloat(value)
			if err != nil {
				return err
			}
			mag, neg := splitSign(v)
			col := signColumn(neg)
			for _, bit := range exponentialEncodeBits(mag, c.Depth) {
				if err := target.Push(c.ChannelIndex, col, bit, 1.0); err != nil {
					return err
				}
			}
			return nil
		})
		r.RegisterDecoder(RegistryKey{Kind: KindPercentageSigned, Mode: mode, Positioning: Exponential}, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
			c := percentageCfg(cfg)
			if zs := findChannelZs(voxels, c.ChannelIndex, 1); len(zs) > 0 {
				return -exponentialDecodeBits(zs), nil
			}
			return exponentialDecodeBits(findChannelZs(voxels, c.ChannelIndex, 0)), nil
		})
	}
}

func (r *Registry) registerImageFamily() {
	for _, mode := range []FrameChangeMode{Absolute, Incremental} {
		for _, pos := range []Positioning{Linear, Exponential} {
			key := RegistryKey{Kind: KindImageFrame, Mode: mode, Positioning: pos}
			r.RegisterEncoder(key, func(value any, cfg ChannelConfig, target EncodeTarget) error {
				return encodeImageFrame(value, cfg.(ImageFrameConfig), target)
			})
			r.RegisterDecoder(key, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
				return decodeImageFrame(voxels, cfg.(ImageFrameConfig))
			})

			miscKey := RegistryKey{Kind: KindMiscData, Mode: mode, Positioning: pos}
			r.RegisterEncoder(miscKey, func(value any, cfg ChannelConfig, target EncodeTarget) error {
				return encodeMiscData(value, cfg.(MiscDataConfig), target)
			})
			r.RegisterDecoder(miscKey, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
				return decodeMiscData(voxels, cfg.(MiscDataConfig))
			})

			segKey := RegistryKey{Kind: KindSegmentedImageFrame, Mode: mode, Positioning: pos}
			r.RegisterEncoder(segKey, func(value any, cfg ChannelConfig, target EncodeTarget) error {
				return encodeSegmentedImageFrame(value, cfg.(SegmentedImageFrameConfig), target)
			})
			r.RegisterDecoder(segKey, func(voxels *cortex.VoxelArrays, cfg ChannelConfig) (any, error) {
				return decodeSegmentedImageFrame(voxels, cfg.(SegmentedImageFrameConfig))
			})
		}
	}
}

func signColumn(negative bool) uint32 {
	if negative {
		return 1
	}
	return 0
}

func findChannelZ(voxels *cortex.VoxelArrays, channel, column uint32) (uint32, bool) {
	for i := 0; i < voxels.Len(); i++ {
		v := voxels.At(i)
		if v.X == channel && v.Y == column {
			return v.Z, true
		}
	}
	return 0, false
}

func findChannelZs(voxels *cortex.VoxelArrays, channel, column uint32) []uint32 {
	var out []uint32
	for i := 0; i < voxels.Len(); i++ {
		v := voxels.At(i)
		if v.X == channel && v.Y == column {
			out = append(out, v.Z)
		}
	}
	return out
}

func asFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("pipeline: percentage encoder given non-numeric %T", value)
	}
}
