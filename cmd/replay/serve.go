package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rgbdio/replay/internal/config"
	"github.com/rgbdio/replay/internal/health"
	"github.com/rgbdio/replay/internal/logger"
	"github.com/rgbdio/replay/internal/reader"
	"github.com/rgbdio/replay/internal/registry"
	"github.com/rgbdio/replay/internal/server"
	"github.com/rgbdio/replay/pkg/version"
)

// runServe opens a recording and serves the session over HTTP until the
// process receives a shutdown signal.
func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	start := fs.Duration("start", 0, "Offset into the recording to start playback at")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("serve: expected exactly one recording path")
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

	log.WithField("version", version.GetInfo().Version).Info("Starting replay server")

	r := reader.New(cfg.Reader, logger.NewLogrusAdapter(logger.WithComponent(log, "reader")))
	if err := r.OpenAt(path, uint64(start.Microseconds())); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("Received shutdown signal")
		cancel()
	}()

	srv := server.New(&cfg.Server, log, r)

	if cfg.Registry.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Registry.RedisAddr,
			Password: cfg.Registry.RedisPassword,
			DB:       cfg.Registry.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}

		reg := registry.NewRedisRegistry(redisClient, log, cfg.Registry.TTL)
		defer reg.Close()

		srv.RegisterChecker(health.NewRedisChecker(redisClient))

		session := sessionRecord(r, path)
		if session == nil {
			return fmt.Errorf("register session: recording closed before registration")
		}
		if err := reg.Register(ctx, session); err != nil {
			return fmt.Errorf("register session: %w", err)
		}
		log.WithField("session_id", session.ID).Info("Session registered")

		go heartbeatLoop(ctx, reg, r, path, cfg.Registry.HeartbeatInterval, log)

		defer func() {
			unregCtx, unregCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer unregCancel()
			if err := reg.Unregister(unregCtx, session.ID); err != nil {
				log.WithError(err).Warn("Failed to unregister session")
			}
		}()
	}

	if cfg.Metrics.Enabled {
		go startMetricsServer(cfg.Metrics, log)
	}

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}

	log.Info("Server shutdown complete")
	return nil
}

// sessionRecord builds the registry record for the current session state, or
// returns nil when no session is open and there is nothing to report.
func sessionRecord(r *reader.Reader, path string) *registry.Session {
	meta := r.Metadata()
	if meta == nil {
		return nil
	}
	stats := r.Stats()

	status := registry.StatusPlaying
	switch {
	case stats.Faulted:
		status = registry.StatusFaulted
	case r.IsEOF():
		status = registry.StatusEOF
	}

	now := time.Now()
	return &registry.Session{
		ID:             r.SessionID(),
		Path:           path,
		DeviceName:     meta.DeviceName,
		SerialNumber:   meta.SerialNumber,
		Status:         status,
		FPS:            meta.FPS,
		DurationUS:     meta.StreamLengthUS,
		FramesConsumed: stats.Tail,
		TimestampUS:    stats.TimestampUS,
		CreatedAt:      now,
		LastHeartbeat:  now,
	}
}

// heartbeatLoop refreshes the registry record until ctx is cancelled. A seek
// replaces the session ID, so the record is rebuilt on every beat.
func heartbeatLoop(ctx context.Context, reg registry.Registry, r *reader.Reader, path string, interval time.Duration, log *logrus.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lastID := r.SessionID()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			session := sessionRecord(r, path)
			if session == nil {
				continue
			}
			if session.ID != lastID {
				if err := reg.Unregister(ctx, lastID); err != nil && !errors.Is(err, registry.ErrSessionNotFound) {
					log.WithError(err).Warn("Failed to retire previous session record")
				}
				if err := reg.Register(ctx, session); err != nil {
					log.WithError(err).Warn("Failed to register session")
					continue
				}
				lastID = session.ID
				continue
			}
			if err := reg.Heartbeat(ctx, session); err != nil {
				log.WithError(err).Warn("Session heartbeat failed")
			}
		}
	}
}

// startMetricsServer starts the Prometheus metrics server
func startMetricsServer(cfg config.MetricsConfig, log *logrus.Logger) {
	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.WithField("addr", addr).Info("Starting metrics server")

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.WithError(err).Error("Metrics server error")
	}
}
