package pipeline

import (
	"fmt"

	"github.com/feagi/feagi-core/pkg/cortex"
)

// ImageFrame is a dense 2D intensity grid, row-major, values in [0,1].
type ImageFrame struct {
	Width, Height uint32
	Pixels        []float32 // len == Width*Height
}

func (f ImageFrame) at(x, y uint32) float32 {
	return f.Pixels[y*f.Width+x]
}

// encodeImageFrame copies per-pixel intensities into voxel-packed form:
// one voxel per pixel at (x, y, 0), potential = intensity.
func encodeImageFrame(value any, cfg ImageFrameConfig, target EncodeTarget) error {
	frame, ok := value.(ImageFrame)
	if !ok {
		return fmt.Errorf("pipeline: ImageFrame encoder given %T", value)
	}
	if frame.Width != cfg.Width || frame.Height != cfg.Height {
		return fmt.Errorf("pipeline: frame %dx%d does not match channel config %dx%d", frame.Width, frame.Height, cfg.Width, cfg.Height)
	}
	for y := uint32(0); y < frame.Height; y++ {
		for x := uint32(0); x < frame.Width; x++ {
			v := frame.at(x, y)
			if v == 0 {
				continue
			}
			if err := target.Push(x, y, 0, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// decodeImageFrame is the inverse: rebuilds a dense frame from sparse
// voxels, defaulting unlit pixels to zero.
func decodeImageFrame(voxels *cortex.VoxelArrays, cfg ImageFrameConfig) (any, error) {
	frame := ImageFrame{Width: cfg.Width, Height: cfg.Height, Pixels: make([]float32, cfg.Width*cfg.Height)}
	for i := 0; i < voxels.Len(); i++ {
		v := voxels.At(i)
		if v.X >= cfg.Width || v.Y >= cfg.Height {
			continue
		}
		frame.Pixels[v.Y*cfg.Width+v.X] = v.P
	}
	return frame, nil
}

// MiscData is an arbitrary 3D dense array passed through unchanged.
type MiscData struct {
	Dims   [3]uint32
	Values []float32 // len == Dims[0]*Dims[1]*Dims[2]
}

func (d MiscData) at(x, y, z uint32) float32 {
	return d.Values[x+y*d.Dims[0]+z*d.Dims[0]*d.Dims[1]]
}

func encodeMiscData(value any, cfg MiscDataConfig, target EncodeTarget) error {
	data, ok := value.(MiscData)
	if !ok {
		return fmt.Errorf("pipeline: MiscData encoder given %T", value)
	}
	if data.Dims != cfg.Dims {
		return fmt.Errorf("pipeline: misc data dims %v does not match channel config %v", data.Dims, cfg.Dims)
	}
	for z := uint32(0); z < data.Dims[2]; z++ {
		for y := uint32(0); y < data.Dims[1]; y++ {
			for x := uint32(0); x < data.Dims[0]; x++ {
				v := data.at(x, y, z)
				if v == 0 {
					continue
				}
				if err := target.Push(x, y, z, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func decodeMiscData(voxels *cortex.VoxelArrays, cfg MiscDataConfig) (any, error) {
	total := cfg.Dims[0] * cfg.Dims[1] * cfg.Dims[2]
	out := MiscData{Dims: cfg.Dims, Values: make([]float32, total)}
	for i := 0; i < voxels.Len(); i++ {
		v := voxels.At(i)
		if v.X >= cfg.Dims[0] || v.Y >= cfg.Dims[1] || v.Z >= cfg.Dims[2] {
			continue
		}
		out.Values[v.X+v.Y*cfg.Dims[0]+v.Z*cfg.Dims[0]*cfg.Dims[1]] = v.P
	}
	return out, nil
}

// encodeSegmentedImageFrame applies a gaze-driven sub-region filter
// before delegating to the plain ImageFrame encoder: the region of
// RegionWidth x RegionHeight centered on the gaze point (carried in the
// value as GazeX/GazeY) is cropped, clamped to the source frame's
// bounds, and only that crop is encoded, in region-local coordinates.
type GazeImageFrame struct {
	Frame      ImageFrame
	GazeX, GazeY uint32
}

func encodeSegmentedImageFrame(value any, cfg SegmentedImageFrameConfig, target EncodeTarget) error {
	gf, ok := value.(GazeImageFrame)
	if !ok {
		return fmt.Errorf("pipeline: SegmentedImageFrame encoder given %T", value)
	}
	frame := gf.Frame
	left, top := cropOrigin(gf.GazeX, cfg.RegionWidth, frame.Width), cropOrigin(gf.GazeY, cfg.RegionHeight, frame.Height)

	for ry := uint32(0); ry < cfg.RegionHeight; ry++ {
		srcY := top + ry
		if srcY >= frame.Height {
			continue
		}
		for rx := uint32(0); rx < cfg.RegionWidth; rx++ {
			srcX := left + rx
			if srcX >= frame.Width {
				continue
			}
			v := frame.at(srcX, srcY)
			if v == 0 {
				continue
			}
			if err := target.Push(rx, ry, 0, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeSegmentedImageFrame(voxels *cortex.VoxelArrays, cfg SegmentedImageFrameConfig) (any, error) {
	return decodeImageFrame(voxels, ImageFrameConfig{ChannelIndex: cfg.ChannelIndex, Width: cfg.RegionWidth, Height: cfg.RegionHeight})
}

// cropOrigin centers a region of size regionSize on gaze, clamped so the
// region stays within [0, totalSize).
func cropOrigin(gaze, regionSize, totalSize uint32) uint32 {
	half := regionSize / 2
	var origin uint32
	if gaze > half {
		origin = gaze - half
	}
	if origin+regionSize > totalSize {
		if totalSize > regionSize {
			origin = totalSize - regionSize
		} else {
			origin = 0
		}
	}
	return origin
}
