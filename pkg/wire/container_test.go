package wire

import (
	"encoding/binary"
	"testing"
)

func mustAgentID(t *testing.T, b byte) AgentID {
	t.Helper()
	var id AgentID
	for i := range id {
		id[i] = b
	}
	return id
}

func TestNewEmptyHasHeaderDefaults(t *testing.T) {
	c := NewEmpty()
	if c.buf[markerOffset] != MultiStructMarker {
		t.Fatalf("marker = %d, want %d", c.buf[markerOffset], MultiStructMarker)
	}
	if c.buf[versionOffset] != CurrentVersion {
		t.Fatalf("version = %d, want %d", c.buf[versionOffset], CurrentVersion)
	}
}

func TestSetAgentIdentifierRoundTrip(t *testing.T) {
	c := NewEmpty()
	id := mustAgentID(t, 0x7)
	c.SetAgentIdentifier(id)
	if got := c.AgentIdentifier(); got != id {
		t.Fatalf("AgentIdentifier() = %v, want %v", got, id)
	}
}

func TestOverwriteWithSingleStructJSONRoundTrip(t *testing.T) {
	c := NewEmpty()
	c.SetAgentIdentifier(mustAgentID(t, 1))

	payload := map[string]any{"hello": "world"}
	if err := c.OverwriteWithSingleStruct(JSONStruct{Value: payload}, 1); err != nil {
		t.Fatalf("OverwriteWithSingleStruct: %v", err)
	}

	n, err := c.TryGetNumberContainedStructures()
	if err != nil {
		t.Fatalf("TryGetNumberContainedStructures: %v", err)
	}
	if n != 1 {
		t.Fatalf("struct count = %d, want 1", n)
	}

	view, err := c.TryCreateNewStructFromIndex(0)
	if err != nil {
		t.Fatalf("TryCreateNewStructFromIndex: %v", err)
	}
	if view.Type != StructTypeJSON {
		t.Fatalf("type = %d, want %d", view.Type, StructTypeJSON)
	}
	var decoded map[string]any
	if err := view.DecodeJSON(&decoded); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if decoded["hello"] != "world" {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestOverwriteWithSingleStructNeuronVoxelsRoundTrip(t *testing.T) {
	c := NewEmpty()
	voxels := []NeuronVoxel{{X: 1, Y: 2, Z: 3, P: 0.5}, {X: 4, Y: 5, Z: 6, P: 1.0}}
	if err := c.OverwriteWithSingleStruct(NeuronCategoricalStruct{Voxels: voxels}, 0); err != nil {
		t.Fatalf("OverwriteWithSingleStruct: %v", err)
	}

	view, err := c.TryCreateNewStructFromIndex(0)
	if err != nil {
		t.Fatalf("TryCreateNewStructFromIndex: %v", err)
	}
	got, err := view.DecodeNeuronCategorical()
	if err != nil {
		t.Fatalf("DecodeNeuronCategorical: %v", err)
	}
	if len(got) != len(voxels) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(voxels))
	}
	for i := range voxels {
		if got[i] != voxels[i] {
			t.Fatalf("voxel %d = %+v, want %+v", i, got[i], voxels[i])
		}
	}
}

func TestTryWriteDataByCopyAndVerifyRejectsShortFrame(t *testing.T) {
	c := NewEmpty()
	err := c.TryWriteDataByCopyAndVerify(make([]byte, 4))
	if err == nil {
		t.Fatal("expected error for short frame")
	}
	if !IsShortFrame(err) {
		t.Fatalf("expected short-frame error, got %v", err)
	}
	if got := err.Error(); got[:len(shortFrameMsg)] != shortFrameMsg {
		t.Fatalf("error message = %q, want prefix %q", got, shortFrameMsg)
	}
}

func TestTryWriteDataByCopyAndVerifyAcceptsEmptyStructList(t *testing.T) {
	c := NewEmpty()
	raw := make([]byte, minContainerLen)
	raw[markerOffset] = MultiStructMarker
	raw[versionOffset] = CurrentVersion
	raw[structCountOffset] = 0
	if err := c.TryWriteDataByCopyAndVerify(raw); err != nil {
		t.Fatalf("expected N=0 to be well-formed, got %v", err)
	}
	n, err := c.TryGetNumberContainedStructures()
	if err != nil || n != 0 {
		t.Fatalf("n=%d err=%v, want 0,nil", n, err)
	}
}

func TestTryWriteDataByCopyAndVerifyRejectsNonMonotonicOffsets(t *testing.T) {
	raw := make([]byte, offsetsStart+8+4)
	raw[markerOffset] = MultiStructMarker
	raw[versionOffset] = CurrentVersion
	raw[structCountOffset] = 2
	binary.LittleEndian.PutUint32(raw[offsetsStart:offsetsStart+4], uint32(offsetsStart+8))
	binary.LittleEndian.PutUint32(raw[offsetsStart+4:offsetsStart+8], uint32(offsetsStart+8))

	c := NewEmpty()
	err := c.TryWriteDataByCopyAndVerify(raw)
	if err == nil {
		t.Fatal("expected monotonicity violation error")
	}
	de, ok := err.(*DecodeError)
	if !ok || de.Kind != ErrOffsetsNotMonotonic {
		t.Fatalf("err = %v, want ErrOffsetsNotMonotonic", err)
	}
}

func TestTryWriteDataByCopyAndVerifyRejectsBadMarker(t *testing.T) {
	raw := make([]byte, minContainerLen)
	raw[markerOffset] = 9
	c := NewEmpty()
	if err := c.TryWriteDataByCopyAndVerify(raw); err == nil {
		t.Fatal("expected bad marker error")
	}
}

func TestGetContainedStructTypesMultiStruct(t *testing.T) {
	const offset0 = offsetsStart + 4*2 // header + 2 offsets
	struct0 := []byte{byte(StructTypeJSON), NestedStructVersion, '1'}
	offset1 := offset0 + len(struct0)
	struct1 := []byte{byte(StructTypeNeuronCategoricalXYZP), NestedStructVersion}

	raw := make([]byte, offset1+len(struct1))
	raw[markerOffset] = MultiStructMarker
	raw[versionOffset] = CurrentVersion
	raw[structCountOffset] = 2
	binary.LittleEndian.PutUint32(raw[offsetsStart:offsetsStart+4], uint32(offset0))
	binary.LittleEndian.PutUint32(raw[offsetsStart+4:offsetsStart+8], uint32(offset1))
	copy(raw[offset0:], struct0)
	copy(raw[offset1:], struct1)

	c := NewEmpty()
	if err := c.TryWriteDataByCopyAndVerify(raw); err != nil {
		t.Fatalf("TryWriteDataByCopyAndVerify: %v", err)
	}
	types, err := c.GetContainedStructTypes()
	if err != nil {
		t.Fatalf("GetContainedStructTypes: %v", err)
	}
	if len(types) != 2 || types[0] != StructTypeJSON || types[1] != StructTypeNeuronCategoricalXYZP {
		t.Fatalf("types = %v", types)
	}
}
