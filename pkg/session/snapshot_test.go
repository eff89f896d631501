package session

import (
	"testing"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

func testPool() *EndpointPool {
	seq := 0
	return NewEndpointPool(func(capability Capability) EndpointProperties {
		seq++
		return EndpointProperties{Capability: capability, Address: "inproc://test"}
	})
}

func TestDumpSnapshotEncodesActiveSession(t *testing.T) {
	registry := NewRegistry(testPool())
	defer registry.Stop()

	requested := NewCapabilitySet(CapabilitySendSensor)
	endpoints := map[Capability]string{CapabilitySendSensor: "inproc://sensor"}
	rec := newActiveRecord(t, requested, endpoints)
	registry.Add(rec.AgentID(), rec, nil)

	data, err := registry.DumpSnapshot()
	if err != nil {
		t.Fatalf("DumpSnapshot: %v", err)
	}

	var snap RegistrySnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		t.Fatalf("msgpack.Unmarshal: %v", err)
	}
	if snap.Version != SnapshotFormatVersion {
		t.Errorf("version = %d, want %d", snap.Version, SnapshotFormatVersion)
	}
	if len(snap.Sessions) != 1 {
		t.Fatalf("sessions = %d, want 1", len(snap.Sessions))
	}
	got := snap.Sessions[0]
	if got.Phase != PhaseActive.String() {
		t.Errorf("phase = %q, want %q", got.Phase, PhaseActive.String())
	}
	if got.Endpoints[string(CapabilitySendSensor)] != "inproc://sensor" {
		t.Errorf("endpoints = %v", got.Endpoints)
	}
}

func TestDumpSnapshotEmptyRegistry(t *testing.T) {
	registry := NewRegistry(testPool())
	defer registry.Stop()

	data, err := registry.DumpSnapshot()
	if err != nil {
		t.Fatalf("DumpSnapshot: %v", err)
	}
	var snap RegistrySnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		t.Fatalf("msgpack.Unmarshal: %v", err)
	}
	if len(snap.Sessions) != 0 {
		t.Errorf("sessions = %d, want 0", len(snap.Sessions))
	}
	if time.Since(snap.TakenAt) > time.Minute {
		t.Errorf("taken_at looks stale: %v", snap.TakenAt)
	}
}

func TestAllSessionsIncludesNonActive(t *testing.T) {
	registry := NewRegistry(testPool())
	defer registry.Stop()

	rec := NewRecord(time.Second, 3*time.Second)
	if _, err := rec.StartConnect(); err != nil {
		t.Fatalf("StartConnect: %v", err)
	}
	id := rec.AgentID() // still blank; zero value is a valid map key here
	registry.Add(id, rec, nil)

	if registry.ActiveSessions() != nil && len(registry.ActiveSessions()) != 0 {
		t.Fatalf("expected no active sessions, got %v", registry.ActiveSessions())
	}
	if len(registry.AllSessions()) != 1 {
		t.Fatalf("AllSessions = %d, want 1", len(registry.AllSessions()))
	}
}
