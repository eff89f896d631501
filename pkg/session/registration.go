package session

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/feagi/feagi-core/pkg/wire"
)

// MaxRegistrationBytes bounds an inbound registration request. Requests
// larger than this are silently dropped (anti-spam) rather than rejected
// with an error — spec.md §8 scenario 3.
const MaxRegistrationBytes = 1024

// AgentDescriptor identifies the agent software making the request, not
// the agent's runtime identity (that's AgentId, assigned on success).
type AgentDescriptor struct {
	Vendor  string `json:"vendor"`
	Kind    string `json:"kind"`
	Version int    `json:"version"`
}

// RegistrationRequest is the JSON payload nested (as a wire.JSONStruct)
// inside a control-channel byte container.
type RegistrationRequest struct {
	AgentDescriptor        AgentDescriptor `json:"agent_descriptor"`
	AuthToken              string          `json:"auth_token"`
	RequestedCapabilities  []Capability    `json:"requested_capabilities"`
	ConnectionProtocol     string          `json:"connection_protocol"`
	APIVersion             string          `json:"api_version"`
}

// ErrRequestTooLarge is returned by ParseRegistrationRequest when the raw
// payload exceeds MaxRegistrationBytes; callers must drop silently per
// spec.md §4.4, not propagate this as a protocol error.
var ErrRequestTooLarge = errors.New("feagi-core: registration request exceeds maximum size")

// ParseRegistrationRequest decodes and validates the size bound, then the
// JSON shape, of a raw registration payload.
func ParseRegistrationRequest(raw []byte) (RegistrationRequest, error) {
	if len(raw) > MaxRegistrationBytes {
		return RegistrationRequest{}, ErrRequestTooLarge
	}
	var req RegistrationRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return RegistrationRequest{}, fmt.Errorf("feagi-core: invalid registration request: %w", err)
	}
	return req, nil
}

// ResolveAuthToken decodes the request's auth_token field, trying hex then
// base64, matching spec.md §4.4's "raw, hex, or base64" constructors.
func (r RegistrationRequest) ResolveAuthToken() (AuthToken, error) {
	if tok, err := NewAuthTokenFromHex(r.AuthToken); err == nil {
		return tok, nil
	}
	return NewAuthTokenFromBase64(r.AuthToken)
}

// RequestedCapabilitySet returns the request's capabilities as a set.
func (r RegistrationRequest) RequestedCapabilitySet() CapabilitySet {
	return NewCapabilitySet(r.RequestedCapabilities...)
}

// ResponseStatus tags the kind of RegistrationResponse, mirroring the bare
// string / tagged-array shape in spec.md §6.
type ResponseStatus string

const (
	StatusFailedInvalidRequest ResponseStatus = "failed_invalid_request"
	StatusFailedInvalidAuth    ResponseStatus = "failed_invalid_auth"
	StatusAlreadyRegistered    ResponseStatus = "already_registered"
	StatusSuccess              ResponseStatus = "success"
)

// RegistrationResponse is the wire shape of a registration reply. A
// failure response marshals as a bare JSON string; a success response
// marshals as {"success": [agentId, endpointsByCapability]}.
type RegistrationResponse struct {
	Status    ResponseStatus
	AgentID   wire.AgentID
	Endpoints map[Capability]string
}

// FailedInvalidRequest builds a failed_invalid_request response.
func FailedInvalidRequest() RegistrationResponse {
	return RegistrationResponse{Status: StatusFailedInvalidRequest}
}

// FailedInvalidAuth builds a failed_invalid_auth response.
func FailedInvalidAuth() RegistrationResponse {
	return RegistrationResponse{Status: StatusFailedInvalidAuth}
}

// AlreadyRegistered builds an already_registered response.
func AlreadyRegistered() RegistrationResponse {
	return RegistrationResponse{Status: StatusAlreadyRegistered}
}

// Success builds a success response carrying the assigned AgentId and the
// endpoint address granted per capability.
func Success(id wire.AgentID, endpoints map[Capability]string) RegistrationResponse {
	return RegistrationResponse{Status: StatusSuccess, AgentID: id, Endpoints: endpoints}
}

// GrantsAll reports whether the response's endpoint map covers every
// requested capability — the C4 transition guard between Registering and
// Active.
func (r RegistrationResponse) GrantsAll(requested CapabilitySet) bool {
	if r.Status != StatusSuccess {
		return false
	}
	for c := range requested {
		if _, ok := r.Endpoints[c]; !ok {
			return false
		}
	}
	return true
}

// MarshalJSON renders the tagged shape from spec.md §6: bare strings for
// failures, {"success": [agentId, endpoints]} for success.
func (r RegistrationResponse) MarshalJSON() ([]byte, error) {
	if r.Status != StatusSuccess {
		return json.Marshal(string(r.Status))
	}
	endpoints := make(map[string]string, len(r.Endpoints))
	for capability, addr := range r.Endpoints {
		endpoints[string(capability)] = addr
	}
	payload := struct {
		Success [2]any `json:"success"`
	}{
		Success: [2]any{
			base64.StdEncoding.EncodeToString(r.AgentID[:]),
			endpoints,
		},
	}
	return json.Marshal(payload)
}

// UnmarshalJSON parses either a bare status string or a {"success": [...]}
// tagged array.
func (r *RegistrationResponse) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		r.Status = ResponseStatus(bare)
		r.AgentID = wire.AgentID{}
		r.Endpoints = nil
		return nil
	}

	var tagged struct {
		Success []json.RawMessage `json:"success"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("feagi-core: invalid registration response: %w", err)
	}
	if len(tagged.Success) != 2 {
		return fmt.Errorf("feagi-core: success response must carry [agentId, endpoints]")
	}
	var encodedID string
	if err := json.Unmarshal(tagged.Success[0], &encodedID); err != nil {
		return fmt.Errorf("feagi-core: invalid agent id in success response: %w", err)
	}
	id, err := wire.AgentIDFromBase64(encodedID)
	if err != nil {
		return err
	}
	var endpoints map[string]string
	if err := json.Unmarshal(tagged.Success[1], &endpoints); err != nil {
		return fmt.Errorf("feagi-core: invalid endpoints in success response: %w", err)
	}
	capEndpoints := make(map[Capability]string, len(endpoints))
	for k, v := range endpoints {
		capEndpoints[Capability(k)] = v
	}
	r.Status = StatusSuccess
	r.AgentID = id
	r.Endpoints = capEndpoints
	return nil
}
