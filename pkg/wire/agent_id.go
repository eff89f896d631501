package wire

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
)

// AgentIDLen is the fixed wire width of an AgentId, in bytes.
const AgentIDLen = 12

// AgentID identifies one registered agent session. It is a fixed 12-byte
// random value, never a UUID — it must fit verbatim into bytes 2..14 of a
// FeagiByteContainer header.
type AgentID [AgentIDLen]byte

// BlankAgentID is the well-defined zero value used before a session has
// been assigned a real identifier by the server.
var BlankAgentID = AgentID{}

// NewAgentID generates a fresh random AgentID using a CSPRNG.
func NewAgentID() (AgentID, error) {
	var id AgentID
	if _, err := rand.Read(id[:]); err != nil {
		return AgentID{}, err
	}
	return id, nil
}

// IsBlank reports whether this is the well-defined blank value.
func (a AgentID) IsBlank() bool {
	return a == BlankAgentID
}

// String returns the base64 (standard, padded) encoding of the identifier.
func (a AgentID) String() string {
	return base64.StdEncoding.EncodeToString(a[:])
}

// AgentIDFromBase64 parses the base64 encoding produced by String.
func AgentIDFromBase64(s string) (AgentID, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return AgentID{}, err
	}
	return AgentIDFromBytes(raw)
}

// AgentIDFromBytes copies a raw byte slice into an AgentID. The slice must
// be exactly AgentIDLen bytes.
func AgentIDFromBytes(raw []byte) (AgentID, error) {
	if len(raw) != AgentIDLen {
		return AgentID{}, errors.New("agent id must be exactly 12 bytes")
	}
	var id AgentID
	copy(id[:], raw)
	return id, nil
}

// MarshalJSON encodes the AgentID as its base64 string form.
func (a AgentID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON decodes an AgentID from its base64 string form.
func (a *AgentID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("agent id must be a JSON string")
	}
	parsed, err := AgentIDFromBase64(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
