package reader

import (
	"encoding/json"

	"github.com/rgbdio/replay/internal/rgbd"
	"github.com/rgbdio/replay/internal/source"
)

// Metadata is the immutable stream description captured once per Open.
type Metadata struct {
	DeviceName   string `json:"device_name"`
	SerialNumber string `json:"serial_number"`

	ColorFormat   source.PixelFormat `json:"color_format"`
	DepthFormat   source.PixelFormat `json:"depth_format"`
	Width         int                `json:"width"`
	Height        int                `json:"height"`
	ColorChannels int                `json:"color_channels"`

	FPS            float64 `json:"fps"`
	StreamLengthUS uint64  `json:"stream_length_usec"`

	Intrinsics rgbd.Intrinsics `json:"intrinsics"`
}

// JSON renders the metadata record for export.
func (m *Metadata) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// loadMetadata queries an opened source for stream geometry, formats, frame
// rate, duration and calibration, and validates the result. Any violation is
// a fatal configuration error for the whole session.
func loadMetadata(src source.Source) (*Metadata, error) {
	color := src.ColorProfile()
	depth := src.DepthProfile()

	if !depth.Format.Known() {
		return nil, &ErrUnsupportedFormat{Stream: "depth", Format: depth.Format, Reason: "not in supported format table"}
	}
	if depth.Format.BitDepth() != 16 || depth.Format.Channels() != 1 {
		return nil, &ErrUnsupportedFormat{Stream: "depth", Format: depth.Format, Reason: "only 16 bit unsigned single-channel depth is supported"}
	}

	if !color.Format.Known() {
		return nil, &ErrUnsupportedFormat{Stream: "color", Format: color.Format, Reason: "not in supported format table"}
	}
	if color.Format.BitDepth() != 8 {
		return nil, &ErrUnsupportedFormat{Stream: "color", Format: color.Format, Reason: "only 8 bit unsigned color is supported"}
	}

	if color.FPS != depth.FPS {
		return nil, &ErrFrameRateMismatch{ColorFPS: color.FPS, DepthFPS: depth.FPS}
	}
	if color.FPS <= 0 {
		return nil, &ErrUnsupportedFormat{Stream: "color", Format: color.Format, Reason: "stream declares no frame rate"}
	}

	return &Metadata{
		DeviceName:     src.DeviceName(),
		SerialNumber:   src.SerialNumber(),
		ColorFormat:    color.Format,
		DepthFormat:    depth.Format,
		Width:          color.Width,
		Height:         color.Height,
		ColorChannels:  color.Format.Channels(),
		FPS:            color.FPS,
		StreamLengthUS: uint64(src.Duration().Microseconds()),
		Intrinsics:     src.Intrinsics(),
	}, nil
}
