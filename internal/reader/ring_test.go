package reader

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rgbdio/replay/internal/rgbd"
)

func TestFrameRing_SlotWrapsAround(t *testing.T) {
	ring := newFrameRing(4)
	assert.Equal(t, uint64(4), ring.capacity())

	// Logical indices keep growing; storage wraps modulo capacity
	assert.Same(t, ring.slot(0), ring.slot(4))
	assert.Same(t, ring.slot(3), ring.slot(7))
	assert.NotSame(t, ring.slot(0), ring.slot(1))
}

func TestFrameRing_Stamps(t *testing.T) {
	ring := newFrameRing(3)

	ring.setStamp(0, 100)
	ring.setStamp(1, 200)
	ring.setStamp(2, 300)
	assert.Equal(t, uint64(100), ring.stamp(0))
	assert.Equal(t, uint64(300), ring.stamp(2))

	// Index 3 shares storage with index 0
	ring.setStamp(3, 400)
	assert.Equal(t, uint64(400), ring.stamp(0))
}

func TestFrameRing_SlotsAreWritable(t *testing.T) {
	ring := newFrameRing(2)

	frame := rgbd.Frame{
		Color:       rgbd.ColorImage{Width: 2, Height: 2, Channels: 3, Pix: make([]uint8, 12)},
		TimestampUS: 42,
	}
	frame.CopyInto(ring.slot(5))

	got := ring.slot(5)
	assert.Equal(t, uint64(42), got.TimestampUS)
	assert.Len(t, got.Color.Pix, 12)
}
