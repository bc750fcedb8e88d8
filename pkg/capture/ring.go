package capture

// DefaultCapacity is the sample buffer size of the reference hardware,
// 48 KiB of block RAM.
const DefaultCapacity = 49152

// Ring is a fixed-capacity circular byte store with independent write and
// read cursors and an explicit full/empty flag pair. The controller is the
// only issuer of write, read, and clear requests: at most one write and one
// read per tick, and never a clear in the same tick as either.
//
// The full and empty flags are never both true, except immediately after
// Clear (empty=true, full=false).
type Ring struct {
	data  []byte
	wr    int
	rd    int
	count int
	full  bool
	empty bool
}

// NewRing returns a cleared ring of the given capacity. Capacity values
// below 1 fall back to DefaultCapacity.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	r := &Ring{data: make([]byte, capacity)}
	r.Clear()
	return r
}

// Write stores one byte at the write cursor. A write while full is
// silently dropped and reports false. The full flag is set exactly when
// the write fills the last free slot. Accepting a write also clears the
// empty flag: data became available.
func (r *Ring) Write(b byte) bool {
	if r.full {
		return false
	}
	r.data[r.wr] = b
	r.wr = (r.wr + 1) % len(r.data)
	r.count++
	if r.wr == r.rd {
		r.full = true
	}
	r.empty = false
	return true
}

// Read returns the byte at the read cursor and advances it. A read while
// empty is a no-op and reports false. An accepted read frees a slot, so it
// clears the full flag; empty is set once the read cursor has consumed the
// most recently written byte.
func (r *Ring) Read() (byte, bool) {
	if r.empty {
		return 0, false
	}
	b := r.data[r.rd]
	r.rd = (r.rd + 1) % len(r.data)
	r.full = false
	if r.rd == r.wr {
		r.empty = true
	}
	return b, true
}

// Clear resets both cursors and the sample count, clears full, and sets
// empty. Clearing an already-empty ring changes nothing. The caller must
// not issue a clear in the same tick as a write or a read.
func (r *Ring) Clear() {
	r.wr = 0
	r.rd = 0
	r.count = 0
	r.full = false
	r.empty = true
}

// Full reports whether every slot holds unread data.
func (r *Ring) Full() bool { return r.full }

// Empty reports whether the read cursor has consumed all written data.
func (r *Ring) Empty() bool { return r.empty }

// Count returns the number of accepted writes since the last clear. The
// controller snapshots it to size the transmit run when a session ends.
func (r *Ring) Count() int { return r.count }

// Capacity returns the fixed buffer capacity.
func (r *Ring) Capacity() int { return len(r.data) }
