// Package wire implements the FeagiByteContainer envelope (C1): a typed,
// multi-struct, session-tagged binary wrapper used for every message that
// crosses a transport endpoint.
package wire

import (
	"encoding/binary"
	"encoding/json"
	"math"
)

// Wire layout constants, bit-exact per the external interface.
const (
	MultiStructMarker byte = 1
	CurrentVersion    byte = 1

	markerOffset     = 0
	versionOffset    = 1
	agentIDOffset    = 2
	structCountOffset = 14
	offsetsStart     = 15

	nestedHeaderLen = 2 // [type:u8, version:u8]
	minContainerLen = 16
)

// StructType identifies the payload format of one nested struct.
type StructType byte

const (
	// StructTypeJSON carries a UTF-8 JSON value.
	StructTypeJSON StructType = 1
	// StructTypeNeuronCategoricalXYZP carries 16-byte-per-voxel records.
	StructTypeNeuronCategoricalXYZP StructType = 11
)

// NestedStructVersion is the version byte written for every struct this
// package produces. The format has not revised since v1.
const NestedStructVersion byte = 1

// Container is the FeagiByteContainer: a zeroed, growable byte buffer plus
// the bookkeeping needed to address nested structs inside it.
type Container struct {
	buf []byte
}

// NewEmpty returns a zeroed container that is not yet a valid envelope —
// callers must set an agent identifier and write struct data before
// publishing it.
func NewEmpty() *Container {
	buf := make([]byte, offsetsStart)
	buf[markerOffset] = MultiStructMarker
	buf[versionOffset] = CurrentVersion
	return &Container{buf: buf}
}

// SetAgentIdentifier writes the 12-byte AgentID into the header.
func (c *Container) SetAgentIdentifier(id AgentID) {
	c.ensureHeader()
	copy(c.buf[agentIDOffset:agentIDOffset+AgentIDLen], id[:])
}

// SetSessionID is an alias for SetAgentIdentifier: on the wire the session
// is identified by the same 12-byte field as the agent.
func (c *Container) SetSessionID(id AgentID) {
	c.SetAgentIdentifier(id)
}

// AgentIdentifier reads the 12-byte AgentID out of the header.
func (c *Container) AgentIdentifier() AgentID {
	var id AgentID
	if len(c.buf) >= agentIDOffset+AgentIDLen {
		copy(id[:], c.buf[agentIDOffset:agentIDOffset+AgentIDLen])
	}
	return id
}

func (c *Container) ensureHeader() {
	if len(c.buf) < offsetsStart {
		grown := make([]byte, offsetsStart)
		copy(grown, c.buf)
		grown[markerOffset] = MultiStructMarker
		grown[versionOffset] = CurrentVersion
		c.buf = grown
	}
}

// Serializable produces the raw payload bytes for one nested struct, given
// its declared StructType.
type Serializable interface {
	StructType() StructType
	MarshalPayload() ([]byte, error)
}

// JSONStruct wraps an arbitrary JSON-serializable value as a nested
// StructTypeJSON struct.
type JSONStruct struct {
	Value any
}

func (JSONStruct) StructType() StructType { return StructTypeJSON }

func (j JSONStruct) MarshalPayload() ([]byte, error) {
	return json.Marshal(j.Value)
}

// NeuronCategoricalStruct wraps a flat voxel array as a nested
// StructTypeNeuronCategoricalXYZP struct.
type NeuronCategoricalStruct struct {
	Voxels []NeuronVoxel
}

func (NeuronCategoricalStruct) StructType() StructType { return StructTypeNeuronCategoricalXYZP }

func (n NeuronCategoricalStruct) MarshalPayload() ([]byte, error) {
	out := make([]byte, 0, len(n.Voxels)*VoxelByteWidth)
	for _, v := range n.Voxels {
		var rec [VoxelByteWidth]byte
		binary.LittleEndian.PutUint32(rec[0:4], v.X)
		binary.LittleEndian.PutUint32(rec[4:8], v.Y)
		binary.LittleEndian.PutUint32(rec[8:12], v.Z)
		binary.LittleEndian.PutUint32(rec[12:16], math.Float32bits(v.P))
		out = append(out, rec[:]...)
	}
	return out, nil
}

// NeuronVoxel is the wire-level (x,y,z,p) record, 16 bytes packed.
type NeuronVoxel struct {
	X, Y, Z uint32
	P       float32
}

// VoxelByteWidth is the fixed serialized size of one NeuronVoxel.
const VoxelByteWidth = 16

// OverwriteWithSingleStruct clears the container (preserving marker,
// version and agent id) and writes exactly one nested struct. The header
// has no field for increment, so increment does not change the bytes
// written (the signature matches
// overwrite_byte_data_with_single_struct_data(serializable, increment)).
func (c *Container) OverwriteWithSingleStruct(s Serializable, increment uint16) error {
	c.ensureHeader()
	agentID := c.AgentIdentifier()

	payload, err := s.MarshalPayload()
	if err != nil {
		return err
	}

	version := c.buf[versionOffset]

	nested := make([]byte, nestedHeaderLen+len(payload))
	nested[0] = byte(s.StructType())
	nested[1] = NestedStructVersion
	copy(nested[nestedHeaderLen:], payload)

	header := make([]byte, offsetsStart+4)
	header[markerOffset] = MultiStructMarker
	header[versionOffset] = version
	copy(header[agentIDOffset:agentIDOffset+AgentIDLen], agentID[:])
	header[structCountOffset] = 1
	binary.LittleEndian.PutUint32(header[offsetsStart:offsetsStart+4], uint32(offsetsStart+4))

	c.buf = append(header, nested...)
	return nil
}

// TryWriteDataByCopyAndVerify replaces the container's content with raw,
// validating it first. On failure the container is left unchanged.
func (c *Container) TryWriteDataByCopyAndVerify(raw []byte) error {
	if err := validate(raw); err != nil {
		return err
	}
	c.buf = append([]byte(nil), raw...)
	return nil
}

// GetByteRef returns a zero-copy view of the container's bytes, suitable
// for handing directly to a publisher endpoint.
func (c *Container) GetByteRef() []byte {
	return c.buf
}

// TryGetNumberContainedStructures returns N, the struct count in the
// header, failing if the container is shorter than the minimum frame.
func (c *Container) TryGetNumberContainedStructures() (int, error) {
	if err := validate(c.buf); err != nil {
		return 0, err
	}
	return int(c.buf[structCountOffset]), nil
}

// GetContainedStructTypes returns the type byte of every nested struct, in
// order.
func (c *Container) GetContainedStructTypes() ([]StructType, error) {
	offsets, err := c.offsets()
	if err != nil {
		return nil, err
	}
	types := make([]StructType, len(offsets))
	for i, off := range offsets {
		types[i] = StructType(c.buf[off])
	}
	return types, nil
}

// NestedView is a typed read-only view over one nested struct.
type NestedView struct {
	Type    StructType
	Version byte
	Payload []byte
}

// TryCreateNewStructFromIndex returns a typed view over nested struct i.
func (c *Container) TryCreateNewStructFromIndex(i int) (*NestedView, error) {
	offsets, err := c.offsets()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= len(offsets) {
		return nil, &DecodeError{Kind: ErrStructOutOfBounds, msg: "struct index out of range"}
	}
	start := offsets[i]
	end := len(c.buf)
	if i+1 < len(offsets) {
		end = offsets[i+1]
	}
	return &NestedView{
		Type:    StructType(c.buf[start]),
		Version: c.buf[start+1],
		Payload: c.buf[start+nestedHeaderLen : end],
	}, nil
}

// DecodeJSON unmarshals the payload of a StructTypeJSON view into v.
func (v *NestedView) DecodeJSON(out any) error {
	return json.Unmarshal(v.Payload, out)
}

// DecodeNeuronCategorical parses a StructTypeNeuronCategoricalXYZP payload
// into a flat voxel slice.
func (v *NestedView) DecodeNeuronCategorical() ([]NeuronVoxel, error) {
	if len(v.Payload)%VoxelByteWidth != 0 {
		return nil, &DecodeError{Kind: ErrStructOutOfBounds, msg: "neuron categorical payload is not a multiple of 16 bytes"}
	}
	count := len(v.Payload) / VoxelByteWidth
	out := make([]NeuronVoxel, count)
	for i := range out {
		rec := v.Payload[i*VoxelByteWidth : (i+1)*VoxelByteWidth]
		out[i] = NeuronVoxel{
			X: binary.LittleEndian.Uint32(rec[0:4]),
			Y: binary.LittleEndian.Uint32(rec[4:8]),
			Z: binary.LittleEndian.Uint32(rec[8:12]),
			P: math.Float32frombits(binary.LittleEndian.Uint32(rec[12:16])),
		}
	}
	return out, nil
}

// offsets parses and returns the N struct offsets from the header,
// re-running full validation.
func (c *Container) offsets() ([]int, error) {
	if err := validate(c.buf); err != nil {
		return nil, err
	}
	n := int(c.buf[structCountOffset])
	out := make([]int, n)
	for i := 0; i < n; i++ {
		start := offsetsStart + 4*i
		out[i] = int(binary.LittleEndian.Uint32(c.buf[start : start+4]))
	}
	return out, nil
}

// validate runs the full inbound validation order from the external
// interface: length, marker, version, struct count fit, offset
// monotonicity, last-struct bounds.
func validate(raw []byte) error {
	if len(raw) < minContainerLen {
		return errTooShort(len(raw))
	}
	if raw[markerOffset] != MultiStructMarker {
		return errBadMarker(raw[markerOffset])
	}
	if raw[versionOffset] > CurrentVersion {
		return errBadVersion(raw[versionOffset])
	}

	n := int(raw[structCountOffset])
	offsetsEnd := offsetsStart + 4*n
	if n > 0 && offsetsEnd > len(raw) {
		return errStructCountOverflow(n, len(raw)-offsetsStart)
	}

	prev := -1
	offs := make([]int, n)
	for i := 0; i < n; i++ {
		start := offsetsStart + 4*i
		off := int(binary.LittleEndian.Uint32(raw[start : start+4]))
		if off <= prev {
			return errOffsetsNotMonotonic(i)
		}
		prev = off
		offs[i] = off
	}

	for i, off := range offs {
		if off+nestedHeaderLen > len(raw) {
			return errStructOutOfBounds(i, off, len(raw))
		}
	}
	if n > 0 {
		last := offs[n-1]
		if last >= len(raw) {
			return errStructOutOfBounds(n-1, last, len(raw))
		}
	}

	return nil
}
