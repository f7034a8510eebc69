package rgbd

// ColorImage is an interleaved 8-bit color image (height x width x channels).
type ColorImage struct {
	Width    int
	Height   int
	Channels int
	Pix      []uint8 // len == Width*Height*Channels
}

// DepthImage is a single-channel 16-bit depth image (height x width).
type DepthImage struct {
	Width  int
	Height int
	Pix    []uint16 // len == Width*Height
}

// Frame is one time-synchronized color/depth pair as delivered to the
// consumer. TimestampUS is the playback position in microseconds since
// recording start at the moment the frame was captured from the source.
type Frame struct {
	Color       ColorImage
	Depth       DepthImage
	TimestampUS uint64
}

// IsEmpty reports whether the frame carries no pixel data.
func (f *Frame) IsEmpty() bool {
	return f == nil || (len(f.Color.Pix) == 0 && len(f.Depth.Pix) == 0)
}

// Size returns the total payload size in bytes.
func (f *Frame) Size() int {
	if f == nil {
		return 0
	}
	return len(f.Color.Pix) + 2*len(f.Depth.Pix)
}

// Clone returns a deep copy of the frame. Buffer slots are recycled by the
// producer, so anything handed across the consumer boundary must be a copy.
func (f *Frame) Clone() *Frame {
	if f == nil {
		return nil
	}
	out := &Frame{
		Color: ColorImage{
			Width:    f.Color.Width,
			Height:   f.Color.Height,
			Channels: f.Color.Channels,
		},
		Depth: DepthImage{
			Width:  f.Depth.Width,
			Height: f.Depth.Height,
		},
		TimestampUS: f.TimestampUS,
	}
	if len(f.Color.Pix) > 0 {
		out.Color.Pix = make([]uint8, len(f.Color.Pix))
		copy(out.Color.Pix, f.Color.Pix)
	}
	if len(f.Depth.Pix) > 0 {
		out.Depth.Pix = make([]uint16, len(f.Depth.Pix))
		copy(out.Depth.Pix, f.Depth.Pix)
	}
	return out
}

// CopyInto copies the frame payload into dst, reusing dst's backing slices
// when they are already the right size. Used by the ring buffer to avoid
// reallocating slot storage on every frame.
func (f *Frame) CopyInto(dst *Frame) {
	dst.Color.Width = f.Color.Width
	dst.Color.Height = f.Color.Height
	dst.Color.Channels = f.Color.Channels
	dst.Depth.Width = f.Depth.Width
	dst.Depth.Height = f.Depth.Height
	dst.TimestampUS = f.TimestampUS

	if cap(dst.Color.Pix) < len(f.Color.Pix) {
		dst.Color.Pix = make([]uint8, len(f.Color.Pix))
	}
	dst.Color.Pix = dst.Color.Pix[:len(f.Color.Pix)]
	copy(dst.Color.Pix, f.Color.Pix)

	if cap(dst.Depth.Pix) < len(f.Depth.Pix) {
		dst.Depth.Pix = make([]uint16, len(f.Depth.Pix))
	}
	dst.Depth.Pix = dst.Depth.Pix[:len(f.Depth.Pix)]
	copy(dst.Depth.Pix, f.Depth.Pix)
}
