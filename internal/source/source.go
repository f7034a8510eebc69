// Package source defines the boundary to the external frame source that a
// replay session drains: an opaque, potentially-blocking provider of
// near-simultaneous color/depth framesets. Implementations wrap recorded
// device files, network feeds or synthetic generators; the reader treats all
// of them as black boxes driven through this interface.
package source

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rgbdio/replay/internal/rgbd"
)

// ErrNoScheme is returned by Open for paths without a scheme prefix.
var ErrNoScheme = errors.New("source path has no scheme prefix")

// ErrFetchTimeout is returned by TryFetch when no frameset became available
// within the timeout. Any other TryFetch error is a device fault and is fatal
// to the session draining the source.
var ErrFetchTimeout = errors.New("frameset fetch timed out")

// StreamProfile describes one sensor channel of an opened source.
type StreamProfile struct {
	Format PixelFormat
	Width  int
	Height int
	FPS    float64
}

// Frameset is a raw color+depth sample pair prior to alignment. Seq is the
// source-assigned sequence number of the color channel; the same frameset may
// be delivered more than once with an unchanged Seq.
type Frameset struct {
	Seq   uint64
	Color rgbd.ColorImage
	Depth rgbd.DepthImage
}

// Source is the collaborator contract required from a frame provider. All
// methods except TryFetch are expected to return quickly; TryFetch may block
// up to its timeout. A Source is driven by exactly one goroutine after the
// session's producer starts.
type Source interface {
	// DeviceName returns the recording device's human-readable name.
	DeviceName() string
	// SerialNumber returns the device serial or recording identifier.
	SerialNumber() string

	ColorProfile() StreamProfile
	DepthProfile() StreamProfile
	Intrinsics() rgbd.Intrinsics

	// Duration returns the total recording length.
	Duration() time.Duration
	// Position returns the current playback position.
	Position() time.Duration
	// Seek repositions playback to the given offset from recording start.
	Seek(offset time.Duration) error

	// Pause suspends playback so source-side buffering stays bounded while
	// the consumer catches up. Resume restarts delivery.
	Pause()
	Resume()

	// TryFetch blocks until the next frameset is available or the timeout
	// elapses. Returns ErrFetchTimeout when the timeout elapses; any other
	// error indicates a device or decode fault.
	TryFetch(timeout time.Duration) (*Frameset, error)

	// AlignToColor reprojects the depth channel into the color channel's
	// pixel grid so the two images correspond 1:1.
	AlignToColor(fs *Frameset) *Frameset

	Close() error
}

// Opener creates a Source for a path, positioned at recording start.
type Opener func(path string) (Source, error)

var (
	openersMu sync.RWMutex
	openers   = map[string]Opener{}
)

// RegisterScheme installs an Opener for a path scheme, e.g. "synth" for
// "synth://generator?fps=30". Later registrations replace earlier ones.
func RegisterScheme(scheme string, open Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[scheme] = open
}

// Open dispatches the path to the Opener registered for its scheme.
func Open(path string) (Source, error) {
	scheme, _, ok := strings.Cut(path, "://")
	if !ok {
		return nil, fmt.Errorf("open %q: %w", path, ErrNoScheme)
	}

	openersMu.RLock()
	open, registered := openers[scheme]
	openersMu.RUnlock()
	if !registered {
		return nil, fmt.Errorf("open %q: no source registered for scheme %q", path, scheme)
	}
	return open(path)
}
