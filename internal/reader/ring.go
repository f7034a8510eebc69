package reader

import (
	"github.com/rgbdio/replay/internal/rgbd"
)

// frameRing is the fixed-capacity slot array behind a replay session: one
// frame plus one timestamp per slot, addressed by unbounded logical indices
// taken modulo capacity. It is a passive container: all coordination between
// the producer and the consumer lives in Reader, which guarantees a slot is
// never written and read concurrently (head/tail discipline).
type frameRing struct {
	slots    []rgbd.Frame
	stampsUS []uint64
}

func newFrameRing(capacity int) *frameRing {
	return &frameRing{
		slots:    make([]rgbd.Frame, capacity),
		stampsUS: make([]uint64, capacity),
	}
}

func (r *frameRing) capacity() uint64 {
	return uint64(len(r.slots))
}

// slot returns the frame storage for logical index i.
func (r *frameRing) slot(i uint64) *rgbd.Frame {
	return &r.slots[i%r.capacity()]
}

func (r *frameRing) setStamp(i, us uint64) {
	r.stampsUS[i%r.capacity()] = us
}

func (r *frameRing) stamp(i uint64) uint64 {
	return r.stampsUS[i%r.capacity()]
}
