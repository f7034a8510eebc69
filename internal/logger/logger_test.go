package logger

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgbdio/replay/internal/config"
)

func TestNew_LevelsAndFormats(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LoggingConfig
		level logrus.Level
	}{
		{
			name:  "json debug",
			cfg:   config.LoggingConfig{Level: "debug", Format: "json", Output: "stdout"},
			level: logrus.DebugLevel,
		},
		{
			name:  "text warn",
			cfg:   config.LoggingConfig{Level: "warn", Format: "text", Output: "stderr"},
			level: logrus.WarnLevel,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(&tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.level, log.GetLevel())
		})
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(&config.LoggingConfig{Level: "chatty", Format: "json", Output: "stdout"})
	assert.Error(t, err)
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "replay.log")

	log, err := New(&config.LoggingConfig{
		Level:      "info",
		Format:     "json",
		Output:     path,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	require.NoError(t, err)

	// The parent directory is created eagerly
	assert.DirExists(t, filepath.Dir(path))
	log.Info("rotation smoke test")
}

func TestWithComponentAndSession(t *testing.T) {
	log := logrus.New()

	entry := WithComponent(log, "reader")
	assert.Equal(t, "reader", entry.Data["component"])

	entry = WithSession(log, "session-1")
	assert.Equal(t, "session-1", entry.Data["session_id"])
}

func TestNullLogger(t *testing.T) {
	log := NewNullLogger()

	// Every call is a no-op; this only has to not panic
	log.WithField("k", "v").WithError(assert.AnError).Info("ignored")
	log.WithFields(map[string]interface{}{"a": 1}).Debugf("ignored %d", 1)
}

func TestLogrusAdapter(t *testing.T) {
	base := logrus.New()
	base.SetLevel(logrus.DebugLevel)

	adapted := NewLogrusAdapter(logrus.NewEntry(base))
	require.NotNil(t, adapted)

	// Chaining returns usable loggers at each step
	adapted.WithField("k", "v").WithError(assert.AnError).Warn("chained")
	adapted.WithFields(map[string]interface{}{"x": 1}).Error("fields")
}
