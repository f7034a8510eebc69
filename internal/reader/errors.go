package reader

import (
	"errors"
	"fmt"

	"github.com/rgbdio/replay/internal/source"
)

var (
	// ErrNotOpen is returned by operations that require an open stream.
	ErrNotOpen = errors.New("no stream open")

	// ErrStreamDrained is the terminal signal from NextFrame: the source
	// reached end of stream and every buffered frame has been consumed.
	// It is a defined outcome, not a failure.
	ErrStreamDrained = errors.New("stream drained")
)

// ErrUnsupportedFormat reports a stream whose pixel format is outside the
// supported-format table, or inside it but unusable for its role.
type ErrUnsupportedFormat struct {
	Stream string // "color" or "depth"
	Format source.PixelFormat
	Reason string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported %s format %s: %s", e.Stream, e.Format, e.Reason)
}

// ErrFrameRateMismatch reports color/depth streams recorded at different
// rates. The engine has a single timing base and cannot replay them.
type ErrFrameRateMismatch struct {
	ColorFPS float64
	DepthFPS float64
}

func (e *ErrFrameRateMismatch) Error() string {
	return fmt.Sprintf("different frame rates for color (%g fps) and depth (%g fps) streams are not supported",
		e.ColorFPS, e.DepthFPS)
}

// ErrSeekOutOfRange reports a seek target at or past the end of the
// recording.
type ErrSeekOutOfRange struct {
	TimestampUS uint64
	DurationUS  uint64
}

func (e *ErrSeekOutOfRange) Error() string {
	return fmt.Sprintf("timestamp %d exceeds maximum %d (us)", e.TimestampUS, e.DurationUS)
}

// ErrProducerFault wraps a fatal source error hit by the fill goroutine. It
// is surfaced to NextFrame callers once the buffered frames are drained, so
// a mid-stream device failure reads as an error instead of a silent stall.
type ErrProducerFault struct {
	Err error
}

func (e *ErrProducerFault) Error() string {
	return fmt.Sprintf("frame producer failed: %v", e.Err)
}

func (e *ErrProducerFault) Unwrap() error {
	return e.Err
}
