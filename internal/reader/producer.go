package reader

import (
	"errors"
	"fmt"
	"time"

	"github.com/rgbdio/replay/internal/rgbd"
	"github.com/rgbdio/replay/internal/source"
)

// fill is the producer loop. It owns the source for the session's lifetime:
// it keeps the ring buffer as full as the backpressure policy allows, drops
// stale framesets, stamps each slot with the source playback position and
// detects end of stream. It terminates on EOF, on a fatal source error or
// when Close clears the open flag.
func (r *Reader) fill(startUS uint64) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			r.setFault(fmt.Errorf("panic in frame producer: %v", p))
		}
	}()

	log := r.log.WithField("session_id", r.sessionID)

	// Bounded fetch timeout, scaled from the declared frame rate. A fetch
	// that outlasts it means the recording has no more frames.
	timeout := time.Duration(float64(r.cfg.FetchTimeoutPeriods) * float64(time.Second) / r.meta.FPS)

	if err := r.src.Seek(time.Duration(startUS) * time.Microsecond); err != nil {
		r.setFault(fmt.Errorf("seek to %dus: %w", startUS, err))
		return
	}

	capacity := r.ring.capacity()
	refill := r.refillThreshold()

	// devSeq is the sequence number of the last frameset written to the
	// buffer; nextSeq the most recently fetched one. A frameset is only
	// written when its sequence number strictly advances.
	var devSeq, nextSeq uint64
	var requests, produced uint64

	for r.opened.Load() {
		r.src.Resume()
		log.WithFields(map[string]interface{}{
			"tail": r.tail.Load(),
			"head": r.head.Load(),
		}).Debug("Producer resumed")

		for !r.eof.Load() && r.head.Load() < r.tail.Load()+capacity {
			var fs *source.Frameset
			for nextSeq <= devSeq {
				var err error
				fs, err = r.src.TryFetch(timeout)
				if errors.Is(err, source.ErrFetchTimeout) {
					fs = nil
					break
				}
				if err != nil {
					r.setFault(err)
					return
				}
				requests++
				nextSeq = fs.Seq
				if nextSeq <= devSeq {
					duplicateFramesetsTotal.WithLabelValues(r.sessionID).Inc()
				}
			}

			if nextSeq > devSeq && fs != nil {
				devSeq = nextSeq
				aligned := r.src.AlignToColor(fs)

				head := r.head.Load()
				stampUS := uint64(r.src.Position().Microseconds())

				// Copy the samples into the slot: the source may recycle
				// the frameset's backing buffers on the next fetch.
				staged := rgbd.Frame{
					Color:       aligned.Color,
					Depth:       aligned.Depth,
					TimestampUS: stampUS,
				}
				staged.CopyInto(r.ring.slot(head))
				r.ring.setStamp(head, stampUS)

				// Publish the slot: advance head, then wake the consumer.
				r.head.Store(head + 1)
				r.mu.Lock()
				r.frameReady.Broadcast()
				r.mu.Unlock()

				produced++
				framesProducedTotal.WithLabelValues(r.sessionID).Inc()
				bufferOccupancy.WithLabelValues(r.sessionID).Set(float64(r.head.Load() - r.tail.Load()))
				log.WithFields(map[string]interface{}{
					"device_frame": devSeq,
					"requests":     requests,
					"produced":     produced,
				}).Debug("Frame buffered")
			} else {
				log.Debug("Producer reached end of stream")
				r.eof.Store(true)
				streamEOFTotal.WithLabelValues(r.sessionID).Inc()
				r.mu.Lock()
				r.frameReady.Broadcast()
				r.mu.Unlock()
				return
			}

			if !r.opened.Load() {
				break // Close or SeekTimestamp requested
			}
		}

		// Pause playback while the buffer is full so source-side buffering
		// stays bounded and nothing is dropped.
		r.src.Pause()
		log.WithFields(map[string]interface{}{
			"tail": r.tail.Load(),
			"head": r.head.Load(),
		}).Debug("Producer paused")

		r.mu.Lock()
		for r.opened.Load() && r.head.Load() >= r.tail.Load()+refill {
			r.needFrames.Wait()
		}
		r.mu.Unlock()
	}
}

// setFault records a fatal producer error and wakes any blocked consumer.
// The session stays open; NextFrame surfaces the fault once the remaining
// buffered frames are drained.
func (r *Reader) setFault(err error) {
	r.log.WithError(err).WithField("session_id", r.sessionID).Error("Frame producer failed")
	producerFaultsTotal.WithLabelValues(r.sessionID).Inc()

	r.mu.Lock()
	r.faultErr = err
	r.faulted.Store(true)
	r.frameReady.Broadcast()
	r.mu.Unlock()
}
