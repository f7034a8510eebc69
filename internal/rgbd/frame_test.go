package rgbd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(fill uint8) *Frame {
	f := &Frame{
		Color:       ColorImage{Width: 4, Height: 2, Channels: 3, Pix: make([]uint8, 24)},
		Depth:       DepthImage{Width: 4, Height: 2, Pix: make([]uint16, 8)},
		TimestampUS: 1000,
	}
	for i := range f.Color.Pix {
		f.Color.Pix[i] = fill
	}
	for i := range f.Depth.Pix {
		f.Depth.Pix[i] = uint16(fill)
	}
	return f
}

func TestFrame_IsEmpty(t *testing.T) {
	var nilFrame *Frame
	assert.True(t, nilFrame.IsEmpty())
	assert.True(t, (&Frame{}).IsEmpty())
	assert.False(t, testFrame(1).IsEmpty())
}

func TestFrame_Size(t *testing.T) {
	f := testFrame(1)
	// 24 color bytes plus 8 depth samples at 2 bytes each
	assert.Equal(t, 24+16, f.Size())

	var nilFrame *Frame
	assert.Equal(t, 0, nilFrame.Size())
}

func TestFrame_CloneIsDeep(t *testing.T) {
	orig := testFrame(7)
	clone := orig.Clone()
	require.NotNil(t, clone)

	assert.Equal(t, orig, clone)

	// Mutating the original must not leak into the clone
	orig.Color.Pix[0] = 99
	orig.Depth.Pix[0] = 99
	assert.Equal(t, uint8(7), clone.Color.Pix[0])
	assert.Equal(t, uint16(7), clone.Depth.Pix[0])
}

func TestFrame_CloneNil(t *testing.T) {
	var nilFrame *Frame
	assert.Nil(t, nilFrame.Clone())
}

func TestFrame_CopyInto(t *testing.T) {
	src := testFrame(5)
	var dst Frame

	src.CopyInto(&dst)
	assert.Equal(t, *src, dst)

	// A second copy of the same geometry must reuse the allocated storage
	colorBuf := &dst.Color.Pix[0]
	depthBuf := &dst.Depth.Pix[0]

	next := testFrame(6)
	next.TimestampUS = 2000
	next.CopyInto(&dst)

	assert.Equal(t, *next, dst)
	assert.Same(t, colorBuf, &dst.Color.Pix[0])
	assert.Same(t, depthBuf, &dst.Depth.Pix[0])
}

func TestFrame_CopyIntoGrowsSmallerSlot(t *testing.T) {
	src := testFrame(3)
	dst := Frame{
		Color: ColorImage{Width: 1, Height: 1, Channels: 1, Pix: make([]uint8, 1)},
		Depth: DepthImage{Width: 1, Height: 1, Pix: make([]uint16, 1)},
	}

	src.CopyInto(&dst)
	assert.Equal(t, *src, dst)
}
