package session

import (
	"testing"
	"time"

	"github.com/feagi/feagi-core/pkg/endpoint"
	"github.com/feagi/feagi-core/pkg/wire"
)

func newActiveRecord(t *testing.T, requested CapabilitySet, endpoints map[Capability]string) *Record {
	t.Helper()
	rec := NewRecord(time.Second, 3*time.Second)
	if _, err := rec.StartConnect(); err != nil {
		t.Fatalf("StartConnect: %v", err)
	}
	if _, err := rec.ObserveControlActiveWaiting(); err != nil {
		t.Fatalf("ObserveControlActiveWaiting: %v", err)
	}
	id, err := wire.NewAgentID()
	if err != nil {
		t.Fatalf("NewAgentID: %v", err)
	}
	resp := Success(id, endpoints)
	if _, err := rec.ReceiveRegistrationResponse(resp, requested); err != nil {
		t.Fatalf("ReceiveRegistrationResponse: %v", err)
	}
	return rec
}

// Scenario 1: happy registration.
func TestHappyRegistrationReachesActive(t *testing.T) {
	requested := NewCapabilitySet(CapabilitySendSensor, CapabilityReceiveMotor)
	endpoints := map[Capability]string{
		CapabilitySendSensor:   "inproc://sensor",
		CapabilityReceiveMotor: "inproc://motor",
	}
	rec := newActiveRecord(t, requested, endpoints)
	if rec.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want Active", rec.Phase())
	}
	if rec.AgentID().IsBlank() {
		t.Fatal("expected a non-blank assigned agent id")
	}
}

// Scenario 2: success response but missing endpoints fails the session.
func TestSuccessWithMissingEndpointFails(t *testing.T) {
	rec := NewRecord(time.Second, 3*time.Second)
	if _, err := rec.StartConnect(); err != nil {
		t.Fatalf("StartConnect: %v", err)
	}
	if _, err := rec.ObserveControlActiveWaiting(); err != nil {
		t.Fatalf("ObserveControlActiveWaiting: %v", err)
	}
	requested := NewCapabilitySet(CapabilitySendSensor, CapabilityReceiveMotor)
	resp := Success(wire.AgentID{}, map[Capability]string{})
	if _, err := rec.ReceiveRegistrationResponse(resp, requested); err != nil {
		t.Fatalf("ReceiveRegistrationResponse: %v", err)
	}
	if rec.Phase() != PhaseFailed {
		t.Fatalf("phase = %v, want Failed", rec.Phase())
	}
	if rec.LastError() != ErrMissingEndpoints {
		t.Fatalf("lastError = %v, want ErrMissingEndpoints", rec.LastError())
	}
}

// Scenario 3: over-large request is silently dropped.
func TestOverLargeRequestDropsSilently(t *testing.T) {
	raw := make([]byte, 2048)
	_, err := ParseRegistrationRequest(raw)
	if err != ErrRequestTooLarge {
		t.Fatalf("err = %v, want ErrRequestTooLarge", err)
	}
}

// Scenario 4: short sensory frame is dropped without killing the session.
func TestShortSensoryFrameIsDroppedNotFatal(t *testing.T) {
	puller := endpoint.NewChannelPuller()
	if err := puller.RequestConnect(); err != nil {
		t.Fatalf("RequestConnect: %v", err)
	}
	if err := puller.RequestStart(); err != nil {
		t.Fatalf("RequestStart: %v", err)
	}

	var dropped string
	tr := NewSensorTranslator(puller, func(reason string) { dropped = reason })

	if !puller.Push([]byte{1, 2, 3, 4}) {
		t.Fatal("expected push to succeed on an empty buffer")
	}
	puller.Poll()

	c, ok, err := tr.Poll()
	if err != nil {
		t.Fatalf("Poll returned a fatal error for a short frame: %v", err)
	}
	if ok || c != nil {
		t.Fatal("expected no usable container from a short frame")
	}
	if dropped == "" {
		t.Fatal("expected the drop callback to fire with a debug message")
	}
	if puller.Poll().Kind == endpoint.Errored {
		t.Fatal("short frame must not error the endpoint")
	}
}

// A non-short decode error on the sensor socket closes it.
func TestBadMarkerClosesSensorSocket(t *testing.T) {
	puller := endpoint.NewChannelPuller()
	if err := puller.RequestConnect(); err != nil {
		t.Fatalf("RequestConnect: %v", err)
	}
	if err := puller.RequestStart(); err != nil {
		t.Fatalf("RequestStart: %v", err)
	}
	tr := NewSensorTranslator(puller, nil)

	bad := make([]byte, 16)
	bad[0] = 99 // invalid marker
	if !puller.Push(bad) {
		t.Fatal("expected push to succeed")
	}
	puller.Poll()

	_, _, err := tr.Poll()
	if err == nil {
		t.Fatal("expected a fatal decode error for a bad marker")
	}
	if puller.Poll().Kind != endpoint.Errored {
		t.Fatal("expected the sensor socket to transition to Errored")
	}
}

// Scenario 6: heartbeat timeout deregisters the session and recycles
// its endpoint properties.
func TestHeartbeatTimeoutDeregistersAndRecycles(t *testing.T) {
	pool := NewEndpointPool(func(c Capability) EndpointProperties {
		return EndpointProperties{Capability: c, Address: "inproc://" + string(c)}
	})
	props := []EndpointProperties{pool.Lease(CapabilitySendSensor), pool.Lease(CapabilityReceiveMotor)}

	requested := NewCapabilitySet(CapabilitySendSensor, CapabilityReceiveMotor)
	endpoints := map[Capability]string{
		CapabilitySendSensor:   props[0].Address,
		CapabilityReceiveMotor: props[1].Address,
	}
	rec := newActiveRecord(t, requested, endpoints)

	registry := NewRegistry(pool)
	registry.Add(rec.AgentID(), rec, props)

	start := time.Now()
	rec.Heartbeat(start)

	if timedOut := registry.Sweep(start.Add(1 * time.Second)); len(timedOut) != 0 {
		t.Fatalf("expected no timeout yet, got %v", timedOut)
	}
	if rec.Phase() != PhaseActive {
		t.Fatalf("phase = %v, want still Active", rec.Phase())
	}

	timedOut := registry.Sweep(start.Add(4 * time.Second))
	if len(timedOut) != 1 {
		t.Fatalf("expected exactly one timeout, got %v", timedOut)
	}
	if rec.Phase() != PhaseDraining {
		t.Fatalf("phase = %v, want Draining", rec.Phase())
	}

	_, recycledBefore, freeBefore := pool.Stats()
	if err := registry.Close(rec.AgentID()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if rec.Phase() != PhaseClosed {
		t.Fatalf("phase = %v, want Closed", rec.Phase())
	}
	_, recycledAfter, freeAfter := pool.Stats()
	if recycledAfter != recycledBefore+2 {
		t.Fatalf("recycled = %d, want %d", recycledAfter, recycledBefore+2)
	}
	if freeAfter != freeBefore+2 {
		t.Fatalf("free count = %d, want %d", freeAfter, freeBefore+2)
	}
	if registry.Count() != 0 {
		t.Fatalf("registry count = %d, want 0 after close", registry.Count())
	}
}

func TestAuthTokenRedaction(t *testing.T) {
	tok, err := NewAuthTokenFromRaw(make([]byte, TokenLen))
	if err != nil {
		t.Fatalf("NewAuthTokenFromRaw: %v", err)
	}
	s := tok.String()
	if len(s) > 16 {
		t.Fatalf("redacted string too long to be safe: %q", s)
	}
	full := make([]byte, TokenLen)
	for i := range full {
		full[i] = byte(i)
	}
	tok2, err := NewAuthTokenFromRaw(full)
	if err != nil {
		t.Fatalf("NewAuthTokenFromRaw: %v", err)
	}
	if tok2.String() == tok.String() {
		t.Fatal("expected different tokens to redact to different strings")
	}
}

func TestRegistrationResponseJSONRoundTrip(t *testing.T) {
	id, err := wire.NewAgentID()
	if err != nil {
		t.Fatalf("NewAgentID: %v", err)
	}
	resp := Success(id, map[Capability]string{CapabilitySendSensor: "inproc://sensor"})
	data, err := resp.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}

	var decoded RegistrationResponse
	if err := decoded.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if decoded.Status != StatusSuccess {
		t.Fatalf("status = %v, want success", decoded.Status)
	}
	if decoded.AgentID != id {
		t.Fatal("agent id did not round-trip")
	}
	if decoded.Endpoints[CapabilitySendSensor] != "inproc://sensor" {
		t.Fatal("endpoint address did not round-trip")
	}
}

func TestFailedResponseMarshalsAsBareString(t *testing.T) {
	data, err := FailedInvalidAuth().MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	if string(data) != `"failed_invalid_auth"` {
		t.Fatalf("got %s, want bare string", data)
	}
}
