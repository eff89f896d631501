package cortex

// VoxelXYZP is one neuron-voxel activation: position plus potential.
type VoxelXYZP struct {
	X, Y, Z uint32
	P       float32
}

// VoxelArrays is the canonical sparse representation of one cortical
// area's activity for one burst: four parallel vectors of equal length.
// Push does no bounds checking — this is the hot path invoked once per
// channel per burst, and callers are expected to size dimensions upstream
// (the pipeline registry validates against CorticalAreaDimensions before
// any voxel reaches here). Capacity can be pre-reserved with Reserve;
// Clear resets length to zero but keeps the underlying arrays.
type VoxelArrays struct {
	X []uint32
	Y []uint32
	Z []uint32
	P []float32
}

// NewVoxelArrays returns an empty VoxelArrays with capacity pre-reserved.
func NewVoxelArrays(capacity int) *VoxelArrays {
	return &VoxelArrays{
		X: make([]uint32, 0, capacity),
		Y: make([]uint32, 0, capacity),
		Z: make([]uint32, 0, capacity),
		P: make([]float32, 0, capacity),
	}
}

// Reserve grows capacity to at least n without changing length.
func (v *VoxelArrays) Reserve(n int) {
	if cap(v.X) >= n {
		return
	}
	grow := func(s []uint32) []uint32 {
		g := make([]uint32, len(s), n)
		copy(g, s)
		return g
	}
	v.X = grow(v.X)
	v.Y = grow(v.Y)
	v.Z = grow(v.Z)
	p := make([]float32, len(v.P), n)
	copy(p, v.P)
	v.P = p
}

// Push appends one voxel. No bounds checking against any
// CorticalAreaDimensions is performed here — that validation belongs to
// the encoder that calls Push, which knows the target area's bounds.
func (v *VoxelArrays) Push(x, y, z uint32, p float32) {
	v.X = append(v.X, x)
	v.Y = append(v.Y, y)
	v.Z = append(v.Z, z)
	v.P = append(v.P, p)
}

// Len returns the shared length of the four parallel vectors.
func (v *VoxelArrays) Len() int {
	return len(v.X)
}

// At returns the voxel at index i.
func (v *VoxelArrays) At(i int) VoxelXYZP {
	return VoxelXYZP{X: v.X[i], Y: v.Y[i], Z: v.Z[i], P: v.P[i]}
}

// Clear resets length to zero, keeping capacity — the steady-state path
// for scratch arrays reused burst to burst.
func (v *VoxelArrays) Clear() {
	v.X = v.X[:0]
	v.Y = v.Y[:0]
	v.Z = v.Z[:0]
	v.P = v.P[:0]
}

// AppendFrom concatenates the contents of other onto v, in order. Used
// when per-channel scratch arrays are merged into a cortical area's
// burst-wide entry.
func (v *VoxelArrays) AppendFrom(other *VoxelArrays) {
	v.X = append(v.X, other.X...)
	v.Y = append(v.Y, other.Y...)
	v.Z = append(v.Z, other.Z...)
	v.P = append(v.P, other.P...)
}
