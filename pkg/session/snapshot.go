package session

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/feagi/feagi-core/pkg/wire"
)

// SnapshotFormatVersion guards DumpSnapshot's wire shape the way the
// teacher's persistence.FormatVersion guards its matrix snapshots —
// bumped whenever a field is added or removed below.
const SnapshotFormatVersion = 1

// SessionSnapshot is one session's state as of the moment DumpSnapshot was
// called — a debug-only point-in-time dump, never read back into a live
// Registry.
type SessionSnapshot struct {
	AgentID   string            `msgpack:"agent_id"`
	Phase     string            `msgpack:"phase"`
	Endpoints map[string]string `msgpack:"endpoints,omitempty"`
	Error     string            `msgpack:"error,omitempty"`
}

// RegistrySnapshot is the full registry dump DumpSnapshot encodes.
type RegistrySnapshot struct {
	Version  int               `msgpack:"version"`
	TakenAt  time.Time         `msgpack:"taken_at"`
	Sessions []SessionSnapshot `msgpack:"sessions"`
}

// AllSessions returns every tracked session id regardless of phase —
// unlike ActiveSessions, which only reports PhaseActive — for use by
// DumpSnapshot and other whole-registry debug introspection.
func (r *Registry) AllSessions() []wire.AgentID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]wire.AgentID, 0, len(r.sessions))
	for id := range r.sessions {
		out = append(out, id)
	}
	return out
}

// DumpSnapshot encodes the full registry state to msgpack, grounded on the
// teacher's persistence.Codec.Encode — adapted from matrix snapshots to
// session records, and dropped the teacher's gzip/checksum envelope since
// this is a debug-surface dump, not a durability format that ever gets
// decoded back into a live store.
func (r *Registry) DumpSnapshot() ([]byte, error) {
	ids := r.AllSessions()
	snap := RegistrySnapshot{
		Version:  SnapshotFormatVersion,
		TakenAt:  time.Now(),
		Sessions: make([]SessionSnapshot, 0, len(ids)),
	}

	for _, id := range ids {
		rec, ok := r.Get(id)
		if !ok {
			continue
		}
		s := SessionSnapshot{
			AgentID: id.String(),
			Phase:   rec.Phase().String(),
		}
		if err := rec.LastError(); err != nil {
			s.Error = err.Error()
		}
		if eps := rec.Endpoints(); len(eps) > 0 {
			s.Endpoints = make(map[string]string, len(eps))
			for capability, addr := range eps {
				s.Endpoints[string(capability)] = addr
			}
		}
		snap.Sessions = append(snap.Sessions, s)
	}

	return msgpack.Marshal(snap)
}
