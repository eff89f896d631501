package cortex

import "testing"

func TestIDRoundTrip(t *testing.T) {
	id, err := NewID(Descriptor{Category: CategoryInput, UnitType: "prx", GroupIdx: "00", SubIdx: "01"})
	if err != nil {
		t.Fatalf("NewID: %v", err)
	}
	d, err := ParseID(id)
	if err != nil {
		t.Fatalf("ParseID: %v", err)
	}
	if d.Category != CategoryInput || d.UnitType != "prx" || d.GroupIdx != "00" || d.SubIdx != "01" {
		t.Fatalf("decoded = %+v", d)
	}
}

func TestIDRejectsUnknownCategory(t *testing.T) {
	raw := [IDLen]byte{'z', 'p', 'r', 'x', '0', '0', '0', '1'}
	if _, err := ParseID(raw); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

func TestIDFromStringValidatesLength(t *testing.T) {
	if _, err := IDFromString("short"); err == nil {
		t.Fatal("expected error for short string")
	}
}

func TestDimensionsRejectsZeroAxis(t *testing.T) {
	if _, err := NewDimensions(0, 1, 1); err == nil {
		t.Fatal("expected error for zero axis")
	}
}

func TestDimensionsTotalVoxels(t *testing.T) {
	d, err := NewDimensions(2, 3, 4)
	if err != nil {
		t.Fatalf("NewDimensions: %v", err)
	}
	if got := d.TotalVoxels(); got != 24 {
		t.Fatalf("TotalVoxels() = %d, want 24", got)
	}
}

func TestDimensionsTableCopyOnWrite(t *testing.T) {
	id, _ := IDFromString("ixxx0001")
	d, _ := NewDimensions(1, 1, 1)
	table := NewDimensionsTable(map[ID]Dimensions{id: d})

	updated := table.WithUpdated(id, Dimensions{X: 2, Y: 2, Z: 2})

	if got, _ := table.Get(id); got != d {
		t.Fatalf("original table mutated: got %+v", got)
	}
	if got, _ := updated.Get(id); got.X != 2 {
		t.Fatalf("updated table = %+v", got)
	}
}

func TestVoxelArraysPushAndClear(t *testing.T) {
	v := NewVoxelArrays(2)
	v.Push(1, 2, 3, 0.5)
	v.Push(4, 5, 6, 1.0)
	if v.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", v.Len())
	}
	if got := v.At(0); got != (VoxelXYZP{X: 1, Y: 2, Z: 3, P: 0.5}) {
		t.Fatalf("At(0) = %+v", got)
	}

	capBefore := cap(v.X)
	v.Clear()
	if v.Len() != 0 {
		t.Fatalf("Len() after Clear = %d, want 0", v.Len())
	}
	if cap(v.X) != capBefore {
		t.Fatalf("Clear changed capacity: %d != %d", cap(v.X), capBefore)
	}
}

func TestVoxelArraysAppendFrom(t *testing.T) {
	a := NewVoxelArrays(0)
	a.Push(1, 1, 1, 1)
	b := NewVoxelArrays(0)
	b.Push(2, 2, 2, 2)
	a.AppendFrom(b)
	if a.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", a.Len())
	}
	if a.At(1) != (VoxelXYZP{X: 2, Y: 2, Z: 2, P: 2}) {
		t.Fatalf("At(1) = %+v", a.At(1))
	}
}

func TestMappedVoxelsEnsureClearAndBorrowMutRejectsUnknownArea(t *testing.T) {
	table := NewDimensionsTable(nil)
	m := NewMappedVoxels(table)
	id, _ := IDFromString("ixxx0001")
	if _, err := m.EnsureClearAndBorrowMut(id); err == nil {
		t.Fatal("expected error for unknown cortical area")
	}
}

func TestMappedVoxelsEnsureClearAndBorrowMutReusesEntry(t *testing.T) {
	id, _ := IDFromString("ixxx0001")
	d, _ := NewDimensions(1, 1, 1)
	table := NewDimensionsTable(map[ID]Dimensions{id: d})
	m := NewMappedVoxels(table)

	entry, err := m.EnsureClearAndBorrowMut(id)
	if err != nil {
		t.Fatalf("EnsureClearAndBorrowMut: %v", err)
	}
	entry.Push(0, 0, 0, 1)

	again, err := m.EnsureClearAndBorrowMut(id)
	if err != nil {
		t.Fatalf("EnsureClearAndBorrowMut: %v", err)
	}
	if again.Len() != 0 {
		t.Fatalf("expected cleared entry, got len %d", again.Len())
	}
	if again != entry {
		t.Fatal("expected the same underlying VoxelArrays to be reused")
	}
}
