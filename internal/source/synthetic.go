package source

import (
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/rgbdio/replay/internal/rgbd"
)

func init() {
	RegisterScheme("synth", func(path string) (Source, error) {
		cfg, err := parseSyntheticPath(path)
		if err != nil {
			return nil, err
		}
		return NewSynthetic(cfg), nil
	})
}

// SyntheticConfig configures a generated recording. Sequence lists the
// source-assigned sequence numbers to deliver, in order; repeats model the
// duplicate delivery real devices exhibit. When empty, Frames distinct
// framesets numbered 1..Frames are delivered.
type SyntheticConfig struct {
	DeviceName   string
	SerialNumber string
	Width        int
	Height       int
	ColorFormat  PixelFormat
	DepthFormat  PixelFormat
	FPS          float64
	Frames       int
	Sequence     []uint64
	RealTime     bool // pace delivery at FPS instead of as-fast-as-possible
	// FailAfter injects a device fault: the fetch after that many delivered
	// framesets returns FailWith instead of a frame. Zero disables it.
	FailAfter int
	FailWith  error
}

// Synthetic is an in-memory Source that generates deterministic framesets.
// It backs the synth:// scheme and the engine's test suite.
type Synthetic struct {
	cfg     SyntheticConfig
	seq     []uint64
	period  time.Duration
	limiter *rate.Limiter

	mu        sync.Mutex
	cursor    int
	delivered int
	paused    bool
	closed    bool
}

// NewSynthetic creates a synthetic source. Zero config fields get playable
// defaults (640x480 RGB8/Z16 at 30 fps, 30 frames).
func NewSynthetic(cfg SyntheticConfig) *Synthetic {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	if cfg.ColorFormat == "" {
		cfg.ColorFormat = FormatRGB8
	}
	if cfg.DepthFormat == "" {
		cfg.DepthFormat = FormatZ16
	}
	if cfg.FPS <= 0 {
		cfg.FPS = 30
	}
	if cfg.DeviceName == "" {
		cfg.DeviceName = "Synthetic RGB-D Generator"
	}
	if cfg.SerialNumber == "" {
		cfg.SerialNumber = "SYNTH-0000"
	}

	seq := cfg.Sequence
	if len(seq) == 0 {
		if cfg.Frames <= 0 {
			cfg.Frames = 30
		}
		seq = make([]uint64, cfg.Frames)
		for i := range seq {
			seq[i] = uint64(i + 1)
		}
	} else if cfg.Frames <= 0 {
		cfg.Frames = len(seq)
	}

	s := &Synthetic{
		cfg:    cfg,
		seq:    seq,
		period: time.Duration(float64(time.Second) / cfg.FPS),
	}
	if cfg.RealTime {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.FPS), 1)
	}
	return s
}

func (s *Synthetic) DeviceName() string   { return s.cfg.DeviceName }
func (s *Synthetic) SerialNumber() string { return s.cfg.SerialNumber }

func (s *Synthetic) ColorProfile() StreamProfile {
	return StreamProfile{
		Format: s.cfg.ColorFormat,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		FPS:    s.cfg.FPS,
	}
}

func (s *Synthetic) DepthProfile() StreamProfile {
	return StreamProfile{
		Format: s.cfg.DepthFormat,
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		FPS:    s.cfg.FPS,
	}
}

func (s *Synthetic) Intrinsics() rgbd.Intrinsics {
	w, h := float64(s.cfg.Width), float64(s.cfg.Height)
	return rgbd.Intrinsics{
		Width:  s.cfg.Width,
		Height: s.cfg.Height,
		Fx:     0.9 * w,
		Fy:     0.9 * w,
		Cx:     w / 2,
		Cy:     h / 2,
	}
}

func (s *Synthetic) Duration() time.Duration {
	return time.Duration(s.cfg.Frames) * s.period
}

func (s *Synthetic) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(s.cursor) * s.period
}

func (s *Synthetic) Seek(offset time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursor := int(offset / s.period)
	if cursor > len(s.seq) {
		cursor = len(s.seq)
	}
	s.cursor = cursor
	return nil
}

func (s *Synthetic) Pause() {
	s.mu.Lock()
	s.paused = true
	s.mu.Unlock()
}

func (s *Synthetic) Resume() {
	s.mu.Lock()
	s.paused = false
	s.mu.Unlock()
}

// TryFetch delivers the next frameset in the configured sequence. A paused,
// closed or exhausted source behaves like a stalled device: the call sleeps
// the full timeout and reports ErrFetchTimeout.
func (s *Synthetic) TryFetch(timeout time.Duration) (*Frameset, error) {
	s.mu.Lock()
	if s.cfg.FailAfter > 0 && s.delivered >= s.cfg.FailAfter {
		s.mu.Unlock()
		if s.cfg.FailWith != nil {
			return nil, s.cfg.FailWith
		}
		return nil, fmt.Errorf("synthetic device fault after %d framesets", s.cfg.FailAfter)
	}
	if s.paused || s.closed || s.cursor >= len(s.seq) {
		s.mu.Unlock()
		time.Sleep(timeout)
		return nil, ErrFetchTimeout
	}
	n := s.seq[s.cursor]
	s.cursor++
	s.delivered++
	s.mu.Unlock()

	if s.limiter != nil {
		r := s.limiter.Reserve()
		if d := r.Delay(); d > timeout {
			r.Cancel()
			time.Sleep(timeout)
			return nil, ErrFetchTimeout
		} else if d > 0 {
			time.Sleep(d)
		}
	}

	return s.generate(n), nil
}

// AlignToColor is the identity for synthetic data: both channels are already
// generated on the color pixel grid.
func (s *Synthetic) AlignToColor(fs *Frameset) *Frameset {
	return fs
}

func (s *Synthetic) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// generate produces the deterministic payload for sequence number n: color
// samples carry n mod 256, depth samples carry n. Tests key on this.
func (s *Synthetic) generate(n uint64) *Frameset {
	w, h := s.cfg.Width, s.cfg.Height
	channels := s.cfg.ColorFormat.Channels()

	color := make([]uint8, w*h*channels)
	for i := range color {
		color[i] = uint8(n)
	}
	depth := make([]uint16, w*h)
	for i := range depth {
		depth[i] = uint16(n)
	}

	return &Frameset{
		Seq: n,
		Color: rgbd.ColorImage{
			Width:    w,
			Height:   h,
			Channels: channels,
			Pix:      color,
		},
		Depth: rgbd.DepthImage{
			Width:  w,
			Height: h,
			Pix:    depth,
		},
	}
}

// parseSyntheticPath maps synth://generator?width=640&height=480&fps=30&
// frames=300&realtime=1 onto a SyntheticConfig.
func parseSyntheticPath(path string) (SyntheticConfig, error) {
	u, err := url.Parse(path)
	if err != nil {
		return SyntheticConfig{}, fmt.Errorf("parse synthetic path: %w", err)
	}

	cfg := SyntheticConfig{}
	q := u.Query()
	if v := q.Get("width"); v != "" {
		if cfg.Width, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("synthetic width %q: %w", v, err)
		}
	}
	if v := q.Get("height"); v != "" {
		if cfg.Height, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("synthetic height %q: %w", v, err)
		}
	}
	if v := q.Get("fps"); v != "" {
		if cfg.FPS, err = strconv.ParseFloat(v, 64); err != nil {
			return cfg, fmt.Errorf("synthetic fps %q: %w", v, err)
		}
	}
	if v := q.Get("frames"); v != "" {
		if cfg.Frames, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("synthetic frames %q: %w", v, err)
		}
	}
	if v := q.Get("realtime"); v != "" {
		if cfg.RealTime, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("synthetic realtime %q: %w", v, err)
		}
	}
	if v := q.Get("name"); v != "" {
		cfg.DeviceName = v
	}
	return cfg, nil
}
