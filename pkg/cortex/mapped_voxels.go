package cortex

import "fmt"

// MappedVoxels maps CorticalId to that area's VoxelArrays for one burst.
// Invariant: every key corresponds to an area known to the connectome's
// DimensionsTable; callers construct instances through NewMappedVoxels or
// EnsureClearAndBorrowMut to preserve this.
type MappedVoxels struct {
	dims    *DimensionsTable
	entries map[ID]*VoxelArrays
}

// NewMappedVoxels returns an empty mapping scoped to dims. A fresh mapping
// is typically created once per burst and discarded after publish.
func NewMappedVoxels(dims *DimensionsTable) *MappedVoxels {
	return &MappedVoxels{dims: dims, entries: make(map[ID]*VoxelArrays)}
}

// EnsureClearAndBorrowMut guarantees a zeroed (length-0, capacity-retained)
// entry exists for id and returns it for the caller to populate. Fails if
// id is not a known cortical area.
func (m *MappedVoxels) EnsureClearAndBorrowMut(id ID) (*VoxelArrays, error) {
	if _, ok := m.dims.Get(id); !ok {
		return nil, fmt.Errorf("cortex: %q is not a known cortical area", id)
	}
	entry, ok := m.entries[id]
	if !ok {
		entry = NewVoxelArrays(0)
		m.entries[id] = entry
	} else {
		entry.Clear()
	}
	return entry, nil
}

// Get returns the entry for id without creating it.
func (m *MappedVoxels) Get(id ID) (*VoxelArrays, bool) {
	v, ok := m.entries[id]
	return v, ok
}

// Areas returns every cortical area id with a non-empty entry.
func (m *MappedVoxels) Areas() []ID {
	out := make([]ID, 0, len(m.entries))
	for id, v := range m.entries {
		if v.Len() > 0 {
			out = append(out, id)
		}
	}
	return out
}

// Reset clears every entry's length (keeping capacity) for reuse on the
// next burst, avoiding a fresh allocation per burst.
func (m *MappedVoxels) Reset() {
	for _, v := range m.entries {
		v.Clear()
	}
}
