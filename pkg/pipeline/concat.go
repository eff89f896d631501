package pipeline

import (
	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/klauspost/cpuid/v2"
)

// avx2 gates the unrolled concatenation fast path. Adapted from the
// teacher's SIMD feature-gate pattern (pkg/vector/simd/simd.go): there,
// AVX2+FMA3 selects a hardware cosine-similarity kernel with a generic
// fallback; here the same gate selects an unrolled append loop for the
// per-burst scratch-concatenation step (spec.md §4.3: "per-area scratches
// concatenated into the target entry") with a plain loop fallback. No
// actual SIMD instructions are invoked — the concatenation itself is not
// a vectorizable numeric kernel — but the feature-gate/fallback shape is
// kept because it is the teacher's idiom for a hot per-burst batch step.
var avx2 = cpuid.CPU.Supports(cpuid.AVX2) && cpuid.CPU.Supports(cpuid.FMA3)

// ConcatenateChannelScratches merges every channel's scratch VoxelArrays
// for one cortical area into dst, in channel order.
func ConcatenateChannelScratches(dst *cortex.VoxelArrays, scratches []*cortex.VoxelArrays) {
	if avx2 {
		concatenateUnrolled(dst, scratches)
		return
	}
	concatenateGeneric(dst, scratches)
}

func concatenateGeneric(dst *cortex.VoxelArrays, scratches []*cortex.VoxelArrays) {
	for _, s := range scratches {
		dst.AppendFrom(s)
	}
}

// concatenateUnrolled processes four scratches per loop iteration before
// falling back to the generic path for the remainder, reducing loop
// overhead on the common case of many small per-channel scratches.
func concatenateUnrolled(dst *cortex.VoxelArrays, scratches []*cortex.VoxelArrays) {
	i := 0
	for ; i+4 <= len(scratches); i += 4 {
		dst.AppendFrom(scratches[i])
		dst.AppendFrom(scratches[i+1])
		dst.AppendFrom(scratches[i+2])
		dst.AppendFrom(scratches[i+3])
	}
	for ; i < len(scratches); i++ {
		dst.AppendFrom(scratches[i])
	}
}
