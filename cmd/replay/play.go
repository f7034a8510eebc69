package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/rgbdio/replay/internal/logger"
	"github.com/rgbdio/replay/internal/reader"
)

// runPlay drains a recording through the frame buffer, either logging
// progress or rendering the live dashboard.
func runPlay(args []string) error {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	start := fs.Duration("start", 0, "Offset into the recording to start playback at")
	watch := fs.Bool("watch", false, "Render a live playback dashboard")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("play: expected exactly one recording path")
	}
	path := fs.Arg(0)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}

	r := reader.New(cfg.Reader, logger.NewLogrusAdapter(logger.WithComponent(log, "reader")))
	if err := r.OpenAt(path, uint64(start.Microseconds())); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	meta := r.Metadata()
	log.WithFields(logger.Fields{
		"session_id":  r.SessionID(),
		"device":      meta.DeviceName,
		"fps":         meta.FPS,
		"duration_us": meta.StreamLengthUS,
	}).Info("Playback started")

	if *watch {
		return runWatch(r)
	}

	progressEvery := uint64(meta.FPS)
	if progressEvery < 1 {
		progressEvery = 1
	}

	var consumed uint64
	for {
		frame, err := r.NextFrame()
		if errors.Is(err, reader.ErrStreamDrained) {
			break
		}
		if err != nil {
			return fmt.Errorf("playback: %w", err)
		}
		consumed++
		if consumed%progressEvery == 0 {
			log.WithFields(logger.Fields{
				"frames":       consumed,
				"timestamp_us": frame.TimestampUS,
			}).Info("Playback progress")
		}
	}

	log.WithField("frames", consumed).Info("Playback complete")
	return nil
}
