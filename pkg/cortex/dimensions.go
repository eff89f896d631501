package cortex

import "fmt"

// Dimensions is a cortical area's 3D unsigned extent. All three axes must
// be strictly positive.
type Dimensions struct {
	X, Y, Z uint32
}

// NewDimensions validates and constructs a Dimensions value.
func NewDimensions(x, y, z uint32) (Dimensions, error) {
	if x == 0 || y == 0 || z == 0 {
		return Dimensions{}, fmt.Errorf("cortical area dimensions must be strictly positive, got (%d,%d,%d)", x, y, z)
	}
	return Dimensions{X: x, Y: y, Z: z}, nil
}

// TotalVoxels returns x*y*z.
func (d Dimensions) TotalVoxels() uint64 {
	return uint64(d.X) * uint64(d.Y) * uint64(d.Z)
}

// Contains reports whether (x,y,z) is within bounds.
func (d Dimensions) Contains(x, y, z uint32) bool {
	return x < d.X && y < d.Y && z < d.Z
}

// DimensionsTable is a read-mostly CorticalId -> Dimensions lookup. The
// burst driver reads this on the hot path; mutation is expected to be rare
// (genome load/update), so callers should treat instances as
// copy-on-write: build a new table and swap the pointer rather than
// mutating one in place while the driver runs.
type DimensionsTable struct {
	entries map[ID]Dimensions
}

// NewDimensionsTable builds a table from a fixed set of entries.
func NewDimensionsTable(entries map[ID]Dimensions) *DimensionsTable {
	copied := make(map[ID]Dimensions, len(entries))
	for k, v := range entries {
		copied[k] = v
	}
	return &DimensionsTable{entries: copied}
}

// Get returns the dimensions for a cortical area, and whether it is known.
func (t *DimensionsTable) Get(id ID) (Dimensions, bool) {
	d, ok := t.entries[id]
	return d, ok
}

// WithUpdated returns a new table equal to t but with id set to d,
// implementing copy-on-write: the original table, and anything holding a
// reference to it, is unaffected.
func (t *DimensionsTable) WithUpdated(id ID, d Dimensions) *DimensionsTable {
	next := make(map[ID]Dimensions, len(t.entries)+1)
	for k, v := range t.entries {
		next[k] = v
	}
	next[id] = d
	return &DimensionsTable{entries: next}
}

// IDs returns every cortical area id known to the table.
func (t *DimensionsTable) IDs() []ID {
	out := make([]ID, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	return out
}
