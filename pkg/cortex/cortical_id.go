// Package cortex holds the cortical-area addressing and sparse voxel data
// model shared by the pipeline, burst loop, and session layers: CorticalId,
// CorticalAreaDimensions, NeuronVoxelXYZP and its parallel-array form, and
// the per-burst CorticalId -> voxels mapping.
package cortex

import (
	"errors"
	"fmt"
)

// IDLen is the fixed wire width of a CorticalId, in ASCII bytes.
const IDLen = 8

// Category is the taxonomy encoded by the first character of a CorticalId.
type Category byte

const (
	CategoryInput  Category = 'i'
	CategoryOutput Category = 'o'
	CategoryCore   Category = 'c'
	CategoryMemory Category = 'm'
	CategoryCustom Category = 'x'
)

func (c Category) valid() bool {
	switch c {
	case CategoryInput, CategoryOutput, CategoryCore, CategoryMemory, CategoryCustom:
		return true
	default:
		return false
	}
}

// ID is the fixed 8-byte ASCII tag identifying a cortical area. Byte
// layout: [0]=category, [1:4]=unit type, [4:6]=unit group index,
// [6:8]=sub-unit index. Conversion is total: every 8-byte tag decodes to
// exactly one Descriptor or an error.
type ID [IDLen]byte

// Descriptor is the decoded, typed form of a CorticalId.
type Descriptor struct {
	Category  Category
	UnitType  string // 3 ASCII chars
	GroupIdx  string // 2 ASCII chars
	SubIdx    string // 2 ASCII chars
}

// NewID packs a Descriptor into its 8-byte wire form.
func NewID(d Descriptor) (ID, error) {
	if !d.Category.valid() {
		return ID{}, fmt.Errorf("cortical id: invalid category %q", d.Category)
	}
	if len(d.UnitType) != 3 {
		return ID{}, fmt.Errorf("cortical id: unit type must be 3 ASCII chars, got %q", d.UnitType)
	}
	if len(d.GroupIdx) != 2 {
		return ID{}, fmt.Errorf("cortical id: group index must be 2 ASCII chars, got %q", d.GroupIdx)
	}
	if len(d.SubIdx) != 2 {
		return ID{}, fmt.Errorf("cortical id: sub index must be 2 ASCII chars, got %q", d.SubIdx)
	}
	var id ID
	id[0] = byte(d.Category)
	copy(id[1:4], d.UnitType)
	copy(id[4:6], d.GroupIdx)
	copy(id[6:8], d.SubIdx)
	for _, b := range id {
		if b < 0x20 || b > 0x7e {
			return ID{}, errors.New("cortical id: non-printable ASCII byte")
		}
	}
	return id, nil
}

// ParseID decodes an 8-byte ASCII tag into a Descriptor. Total: returns an
// error rather than a partial decode for any malformed tag.
func ParseID(raw [IDLen]byte) (Descriptor, error) {
	for _, b := range raw {
		if b < 0x20 || b > 0x7e {
			return Descriptor{}, errors.New("cortical id: non-printable ASCII byte")
		}
	}
	cat := Category(raw[0])
	if !cat.valid() {
		return Descriptor{}, fmt.Errorf("cortical id: unrecognized category %q", raw[0])
	}
	return Descriptor{
		Category: cat,
		UnitType: string(raw[1:4]),
		GroupIdx: string(raw[4:6]),
		SubIdx:   string(raw[6:8]),
	}, nil
}

// String returns the raw ASCII form.
func (id ID) String() string {
	return string(id[:])
}

// IDFromString builds an ID from an 8-character ASCII string, validating
// both length and that it decodes to a known category.
func IDFromString(s string) (ID, error) {
	if len(s) != IDLen {
		return ID{}, fmt.Errorf("cortical id: must be exactly %d characters, got %d", IDLen, len(s))
	}
	var id ID
	copy(id[:], s)
	if _, err := ParseID(id); err != nil {
		return ID{}, err
	}
	return id, nil
}
