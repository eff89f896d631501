package burst

import (
	"sync"

	"github.com/feagi/feagi-core/pkg/cortex"
)

// FireRecord is one burst's fire queue for one cortical area, archived
// into the ring.
type FireRecord struct {
	BurstIndex uint64
	Fired      []cortex.VoxelXYZP
}

// areaRing is a fixed-capacity circular buffer of FireRecord for a single
// area. Grounded on the teacher's activityBuffer trim-by-window approach
// in pkg/lifecycle/manager.go, generalized from a time-windowed slice to
// a fixed-capacity ring since spec.md §4.5 step 4 names a ring explicitly
// ("Archive fire queue into a bounded fire ledger (ring per area)") and
// SPEC_FULL.md §12 grounds the ring-buffer mechanics on
// feagi-burst-engine/src/fire_structures.rs.
type areaRing struct {
	buf  []FireRecord
	next int
	size int
}

func newAreaRing(capacity int) *areaRing {
	return &areaRing{buf: make([]FireRecord, capacity)}
}

func (r *areaRing) push(rec FireRecord) {
	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.size < len(r.buf) {
		r.size++
	}
}

// recent returns records oldest-first.
func (r *areaRing) recent() []FireRecord {
	out := make([]FireRecord, 0, r.size)
	start := (r.next - r.size + len(r.buf)) % len(r.buf)
	for i := 0; i < r.size; i++ {
		out = append(out, r.buf[(start+i)%len(r.buf)])
	}
	return out
}

// FireLedger archives each burst's fire queue per cortical area in a
// bounded ring, exclusive to the burst driver (spec.md §5 "Fire ledger —
// exclusive to the driver"); the mutex here exists only so the debug HTTP
// surface can read a consistent snapshot concurrently with the driver.
type FireLedger struct {
	mu       sync.Mutex
	capacity int
	rings    map[cortex.ID]*areaRing
}

// NewFireLedger returns a ledger whose per-area rings each hold up to
// capacity bursts.
func NewFireLedger(capacity int) *FireLedger {
	if capacity < 1 {
		capacity = 1
	}
	return &FireLedger{capacity: capacity, rings: make(map[cortex.ID]*areaRing)}
}

// Archive records burstIndex's fire queue for area.
func (l *FireLedger) Archive(area cortex.ID, burstIndex uint64, fired []cortex.VoxelXYZP) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ring, ok := l.rings[area]
	if !ok {
		ring = newAreaRing(l.capacity)
		l.rings[area] = ring
	}
	ring.push(FireRecord{BurstIndex: burstIndex, Fired: fired})
}

// Recent returns area's archived fire records, oldest first.
func (l *FireLedger) Recent(area cortex.ID) []FireRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	ring, ok := l.rings[area]
	if !ok {
		return nil
	}
	return ring.recent()
}

// Areas returns every cortical area with at least one archived record.
func (l *FireLedger) Areas() []cortex.ID {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]cortex.ID, 0, len(l.rings))
	for id := range l.rings {
		out = append(out, id)
	}
	return out
}
