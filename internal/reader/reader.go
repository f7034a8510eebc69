// Package reader implements the replay engine: a bounded ring buffer of
// color+depth frames filled by a background producer goroutine draining an
// external frame source, and a blocking consumer surface with backpressure,
// duplicate suppression, end-of-stream detection and restart-based seek.
package reader

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rgbdio/replay/internal/config"
	"github.com/rgbdio/replay/internal/logger"
	"github.com/rgbdio/replay/internal/rgbd"
	"github.com/rgbdio/replay/internal/source"
)

// Reader replays a recorded RGB-D stream. One background goroutine (the
// producer) owns the source after Open. NextFrame must be driven by a single
// consumer goroutine, matching the single-writer/single-reader index
// discipline of the ring buffer; the lifecycle and introspection methods
// (Open, Close, SeekTimestamp, Metadata, SessionID, Stats) are safe to call
// from other goroutines, such as HTTP handlers and registry heartbeats.
type Reader struct {
	cfg config.ReaderConfig
	log logger.Logger

	// head is advanced only by the producer, tail only by the consumer.
	// Both are read cross-thread without the lock, so they are atomics.
	head atomic.Uint64
	tail atomic.Uint64

	opened  atomic.Bool
	eof     atomic.Bool
	faulted atomic.Bool

	// lastStamp is the timestamp of the most recently returned frame. It is
	// cached at NextFrame time because the ring slot it came from may be
	// overwritten by the producer once tail advances past it.
	lastStamp atomic.Uint64

	// mu guards the two condition variables' predicates and faultErr.
	// needFrames wakes a paused producer once occupancy drops below the
	// refill threshold (or the session closes); frameReady wakes a blocked
	// consumer on every head advance, EOF, fault or close.
	mu         sync.Mutex
	needFrames *sync.Cond
	frameReady *sync.Cond
	faultErr   error

	// lc serializes lifecycle transitions (Open, Close, SeekTimestamp) and
	// guards the session fields below against concurrent inspection. Without
	// it, a seek racing a heartbeat or HTTP handler could observe the window
	// where the old session is closed and the new one not yet open.
	lc        sync.Mutex
	ring      *frameRing
	src       source.Source
	meta      *Metadata
	path      string
	sessionID string
	wg        sync.WaitGroup
}

// Stats is a point-in-time snapshot of a session for observability surfaces.
type Stats struct {
	SessionID   string `json:"session_id"`
	Path        string `json:"path"`
	Head        uint64 `json:"head"`
	Tail        uint64 `json:"tail"`
	Occupancy   uint64 `json:"occupancy"`
	Capacity    uint64 `json:"capacity"`
	EOF         bool   `json:"eof"`
	Faulted     bool   `json:"faulted"`
	TimestampUS uint64 `json:"timestamp_us"`
}

// New creates a Reader. Nothing is allocated or started until Open.
func New(cfg config.ReaderConfig, log logger.Logger) *Reader {
	r := &Reader{
		cfg: cfg,
		log: log,
	}
	r.needFrames = sync.NewCond(&r.mu)
	r.frameReady = sync.NewCond(&r.mu)
	return r
}

// Open starts a replay session at the beginning of the recording.
func (r *Reader) Open(path string) error {
	return r.OpenAt(path, 0)
}

// OpenAt starts a replay session positioned at startUS microseconds from
// recording start. An already-open session is closed first. On failure the
// session is left closed and no producer is started.
func (r *Reader) OpenAt(path string, startUS uint64) error {
	r.lc.Lock()
	defer r.lc.Unlock()
	return r.openLocked(path, startUS)
}

func (r *Reader) openLocked(path string, startUS uint64) error {
	if r.opened.Load() {
		if err := r.closeLocked(); err != nil {
			return err
		}
	}

	src, err := source.Open(path)
	if err != nil {
		r.log.WithError(err).WithField("path", path).Warn("Unable to open recording")
		return err
	}

	meta, err := loadMetadata(src)
	if err != nil {
		src.Close()
		r.log.WithError(err).WithField("path", path).Error("Recording rejected")
		return err
	}

	r.src = src
	r.meta = meta
	r.path = path
	r.sessionID = uuid.NewString()
	r.ring = newFrameRing(r.cfg.BufferCapacity)
	r.head.Store(0)
	r.tail.Store(0)
	r.eof.Store(false)
	r.faulted.Store(false)
	r.lastStamp.Store(0)
	r.faultErr = nil
	r.opened.Store(true)

	r.wg.Add(1)
	go r.fill(startUS)

	r.log.WithFields(map[string]interface{}{
		"path":       path,
		"session_id": r.sessionID,
		"start_us":   startUS,
		"fps":        meta.FPS,
	}).Info("Recording opened")
	return nil
}

// Close stops the session: clears the open flag, wakes both waiters, joins
// the producer goroutine and only then releases the source. After Close
// returns no further buffer writes occur. Closing a closed Reader is a no-op.
func (r *Reader) Close() error {
	r.lc.Lock()
	defer r.lc.Unlock()
	return r.closeLocked()
}

func (r *Reader) closeLocked() error {
	r.mu.Lock()
	if !r.opened.Load() {
		r.mu.Unlock()
		return nil
	}
	r.opened.Store(false)
	r.needFrames.Signal()
	r.frameReady.Broadcast()
	r.mu.Unlock()

	r.wg.Wait()

	err := r.src.Close()
	bufferOccupancy.WithLabelValues(r.sessionID).Set(0)
	r.log.WithField("session_id", r.sessionID).Info("Recording closed")
	return err
}

// IsOpened reports whether a session is active.
func (r *Reader) IsOpened() bool {
	return r.opened.Load()
}

// IsEOF reports stream exhaustion: the source ended and every produced frame
// has been consumed.
func (r *Reader) IsEOF() bool {
	return r.eof.Load() && r.tail.Load() == r.head.Load()
}

// Faulted reports whether the producer hit a fatal source error this session.
func (r *Reader) Faulted() bool {
	return r.faulted.Load()
}

// Metadata returns the stream description captured at Open, or nil when no
// session is open.
func (r *Reader) Metadata() *Metadata {
	r.lc.Lock()
	defer r.lc.Unlock()
	if !r.opened.Load() {
		return nil
	}
	return r.meta
}

// SessionID returns the identifier of the current session, or "" when closed.
func (r *Reader) SessionID() string {
	r.lc.Lock()
	defer r.lc.Unlock()
	if !r.opened.Load() {
		return ""
	}
	return r.sessionID
}

// NextFrame blocks until a frame is available and returns a copy of it.
// At stream exhaustion it returns ErrStreamDrained; if the producer hit a
// fatal source error it returns an ErrProducerFault once the buffered frames
// are drained.
func (r *Reader) NextFrame() (*rgbd.Frame, error) {
	if !r.opened.Load() {
		return nil, ErrNotOpen
	}

	// Ask the producer to refill once occupancy falls below the threshold.
	if !r.eof.Load() && r.head.Load() < r.tail.Load()+r.refillThreshold() {
		r.mu.Lock()
		r.needFrames.Signal()
		r.mu.Unlock()
	}

	if r.tail.Load() == r.head.Load() {
		r.mu.Lock()
		for r.opened.Load() && !r.eof.Load() && !r.faulted.Load() &&
			r.tail.Load() == r.head.Load() {
			r.frameReady.Wait()
		}
		r.mu.Unlock()
	}

	if !r.opened.Load() {
		return nil, ErrNotOpen
	}

	if r.tail.Load() == r.head.Load() {
		if r.faulted.Load() {
			r.mu.Lock()
			err := r.faultErr
			r.mu.Unlock()
			return nil, &ErrProducerFault{Err: err}
		}
		r.log.WithField("session_id", r.sessionID).Info("End of stream reached")
		return nil, ErrStreamDrained
	}

	tail := r.tail.Load()
	frame := r.ring.slot(tail).Clone()
	r.lastStamp.Store(r.ring.stamp(tail))
	r.tail.Store(tail + 1)

	framesConsumedTotal.WithLabelValues(r.sessionID).Inc()
	bufferOccupancy.WithLabelValues(r.sessionID).Set(float64(r.head.Load() - r.tail.Load()))
	return frame, nil
}

// GetTimestamp returns the timestamp of the most recently returned frame in
// microseconds, 0 before the first frame, and math.MaxUint64 when no stream
// is open.
func (r *Reader) GetTimestamp() uint64 {
	if !r.opened.Load() {
		r.log.Warn("GetTimestamp called with no stream open")
		return math.MaxUint64
	}
	return r.lastStamp.Load()
}

// SeekTimestamp repositions playback to timestampUS by restarting the whole
// pipeline at the new offset. A target at or past the stream end fails and
// leaves the current session untouched.
func (r *Reader) SeekTimestamp(timestampUS uint64) error {
	r.lc.Lock()
	defer r.lc.Unlock()

	if !r.opened.Load() {
		r.log.Warn("SeekTimestamp called with no stream open")
		return ErrNotOpen
	}

	if timestampUS >= r.meta.StreamLengthUS {
		err := &ErrSeekOutOfRange{TimestampUS: timestampUS, DurationUS: r.meta.StreamLengthUS}
		r.log.WithFields(map[string]interface{}{
			"session_id":   r.sessionID,
			"timestamp_us": timestampUS,
			"duration_us":  r.meta.StreamLengthUS,
		}).Warn("Seek target beyond stream end")
		return err
	}

	prev := r.sessionID
	if err := r.openLocked(r.path, timestampUS); err != nil {
		return err
	}
	seeksTotal.WithLabelValues(prev).Inc()
	return nil
}

// Stats snapshots the session counters.
func (r *Reader) Stats() Stats {
	r.lc.Lock()
	defer r.lc.Unlock()

	head, tail := r.head.Load(), r.tail.Load()
	s := Stats{
		SessionID: r.sessionID,
		Path:      r.path,
		Head:      head,
		Tail:      tail,
		Occupancy: head - tail,
		EOF:       r.eof.Load(),
		Faulted:   r.faulted.Load(),
	}
	if r.ring != nil {
		s.Capacity = r.ring.capacity()
	}
	if r.opened.Load() {
		s.TimestampUS = r.lastStamp.Load()
	}
	return s
}

// refillThreshold is the occupancy below which a paused producer resumes.
func (r *Reader) refillThreshold() uint64 {
	t := uint64(r.cfg.BufferCapacity / r.cfg.RefillFactor)
	if t < 1 {
		t = 1
	}
	return t
}
