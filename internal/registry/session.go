package registry

import (
	"time"
)

// SessionStatus is the externally visible state of a replay session.
type SessionStatus string

const (
	StatusPlaying SessionStatus = "playing"
	StatusEOF     SessionStatus = "eof"
	StatusFaulted SessionStatus = "faulted"
	StatusClosed  SessionStatus = "closed"
)

// Session is the registry record for one open recording.
type Session struct {
	ID           string        `json:"id"`
	Path         string        `json:"path"`
	DeviceName   string        `json:"device_name"`
	SerialNumber string        `json:"serial_number"`
	Status       SessionStatus `json:"status"`

	FPS        float64 `json:"fps"`
	DurationUS uint64  `json:"duration_usec"`

	// Playback progress, refreshed on heartbeat.
	FramesConsumed uint64 `json:"frames_consumed"`
	TimestampUS    uint64 `json:"timestamp_us"`

	CreatedAt     time.Time `json:"created_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`
}
