package pipeline

import "math"

// linearEncodeIndex maps value in [0,1] to a single voxel index along z:
// floor(value * (depth-1)).
func linearEncodeIndex(value float64, depth uint32) uint32 {
	if value < 0 {
		value = 0
	}
	if value > 1 {
		value = 1
	}
	if depth == 0 {
		return 0
	}
	idx := math.Floor(value * float64(depth-1))
	return uint32(idx)
}

// linearDecodeValue is the inverse of linearEncodeIndex: z / (depth-1).
func linearDecodeValue(z, depth uint32) float64 {
	if depth <= 1 {
		return 0
	}
	return float64(z) / float64(depth-1)
}

// exponentialEncodeBits decomposes value in [0,1) as a sum of
// negative-power-of-two bits, value = sum b_i * 2^-(i+1), returning the
// set z indices (i) whose bit is 1, up to depth bits.
func exponentialEncodeBits(value float64, depth uint32) []uint32 {
	if value < 0 {
		value = 0
	}
	if value >= 1 {
		value = 1 - math.SmallestNonzeroFloat64
	}
	var bits []uint32
	remaining := value
	for i := uint32(0); i < depth; i++ {
		bitValue := 1.0 / math.Pow(2, float64(i+1))
		if remaining >= bitValue {
			bits = append(bits, i)
			remaining -= bitValue
		}
	}
	return bits
}

// exponentialDecodeBits is the inverse of exponentialEncodeBits: sums
// 2^-(i+1) for every z index present.
func exponentialDecodeBits(indices []uint32) float64 {
	var sum float64
	for _, i := range indices {
		sum += 1.0 / math.Pow(2, float64(i+1))
	}
	return sum
}

// splitSign separates a signed value in [-1,1] into (magnitude in [0,1],
// negative bool) for the dual-voxel-column signed variants.
func splitSign(value float64) (magnitude float64, negative bool) {
	if value < 0 {
		return -value, true
	}
	return value, false
}
