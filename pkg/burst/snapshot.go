package burst

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// EngineSnapshotFormatVersion guards DumpSnapshot's wire shape, the same
// role the teacher's persistence.FormatVersion plays for matrix snapshots.
const EngineSnapshotFormatVersion = 1

// AreaFireSnapshot is one cortical area's archived fire records as of the
// moment DumpSnapshot was called.
type AreaFireSnapshot struct {
	Area    string       `msgpack:"area"`
	Records []FireRecord `msgpack:"records"`
}

// EngineSnapshot is the full burst-loop dump DumpSnapshot encodes: the
// current frequency, burst index, and every area's archived fire queue.
type EngineSnapshot struct {
	Version     int                `msgpack:"version"`
	TakenAt     time.Time          `msgpack:"taken_at"`
	BurstIndex  uint64             `msgpack:"burst_index"`
	FrequencyHz float64            `msgpack:"frequency_hz"`
	Areas       []AreaFireSnapshot `msgpack:"areas"`
}

// DumpSnapshot encodes the engine's current burst index, frequency, and
// fire ledger to msgpack, grounded on the teacher's persistence.Codec.Encode
// — adapted from matrix snapshots to burst-loop state and dropped the
// teacher's gzip/checksum envelope for the same reason pkg/session's
// DumpSnapshot does: this is a debug-surface dump, never decoded back into
// a live Engine.
func (e *Engine) DumpSnapshot() ([]byte, error) {
	areaIDs := e.ledger.Areas()
	snap := EngineSnapshot{
		Version:     EngineSnapshotFormatVersion,
		TakenAt:     time.Now(),
		BurstIndex:  e.BurstIndex(),
		FrequencyHz: e.Frequency(),
		Areas:       make([]AreaFireSnapshot, 0, len(areaIDs)),
	}

	for _, area := range areaIDs {
		snap.Areas = append(snap.Areas, AreaFireSnapshot{
			Area:    area.String(),
			Records: e.ledger.Recent(area),
		})
	}

	return msgpack.Marshal(snap)
}
