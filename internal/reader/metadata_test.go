package reader

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgbdio/replay/internal/source"
)

// profileSource overrides the stream profiles of a synthetic source so
// validation paths unreachable through SyntheticConfig can be exercised.
type profileSource struct {
	source.Source
	color source.StreamProfile
	depth source.StreamProfile
}

func (s *profileSource) ColorProfile() source.StreamProfile { return s.color }
func (s *profileSource) DepthProfile() source.StreamProfile { return s.depth }

func newProfileSource(color, depth source.StreamProfile) *profileSource {
	return &profileSource{
		Source: source.NewSynthetic(source.SyntheticConfig{}),
		color:  color,
		depth:  depth,
	}
}

func TestLoadMetadata_Valid(t *testing.T) {
	src := source.NewSynthetic(source.SyntheticConfig{
		DeviceName:   "Test Camera",
		SerialNumber: "CAM-42",
		Width:        320,
		Height:       240,
		FPS:          15,
		Frames:       30,
	})
	defer src.Close()

	meta, err := loadMetadata(src)
	require.NoError(t, err)

	assert.Equal(t, "Test Camera", meta.DeviceName)
	assert.Equal(t, "CAM-42", meta.SerialNumber)
	assert.Equal(t, source.FormatRGB8, meta.ColorFormat)
	assert.Equal(t, source.FormatZ16, meta.DepthFormat)
	assert.Equal(t, 320, meta.Width)
	assert.Equal(t, 240, meta.Height)
	assert.Equal(t, 3, meta.ColorChannels)
	assert.Equal(t, 15.0, meta.FPS)
	// 30 frames at 15 fps
	assert.Equal(t, uint64(2_000_000), meta.StreamLengthUS)
	assert.False(t, meta.Intrinsics.IsZero())
}

func TestLoadMetadata_RejectsBadStreams(t *testing.T) {
	valid := source.StreamProfile{Format: source.FormatRGB8, Width: 640, Height: 480, FPS: 30}
	validDepth := source.StreamProfile{Format: source.FormatZ16, Width: 640, Height: 480, FPS: 30}

	tests := []struct {
		name  string
		color source.StreamProfile
		depth source.StreamProfile
	}{
		{
			name:  "unknown depth format",
			color: valid,
			depth: source.StreamProfile{Format: "DISPARITY32", Width: 640, Height: 480, FPS: 30},
		},
		{
			name:  "8 bit depth",
			color: valid,
			depth: source.StreamProfile{Format: source.FormatY8, Width: 640, Height: 480, FPS: 30},
		},
		{
			name:  "unknown color format",
			color: source.StreamProfile{Format: "MJPEG", Width: 640, Height: 480, FPS: 30},
			depth: validDepth,
		},
		{
			name:  "16 bit color",
			color: source.StreamProfile{Format: source.FormatY16, Width: 640, Height: 480, FPS: 30},
			depth: validDepth,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadMetadata(newProfileSource(tt.color, tt.depth))
			require.Error(t, err)

			var formatErr *ErrUnsupportedFormat
			assert.ErrorAs(t, err, &formatErr)
		})
	}
}

func TestLoadMetadata_RejectsFrameRateMismatch(t *testing.T) {
	color := source.StreamProfile{Format: source.FormatRGB8, Width: 640, Height: 480, FPS: 30}
	depth := source.StreamProfile{Format: source.FormatZ16, Width: 640, Height: 480, FPS: 15}

	_, err := loadMetadata(newProfileSource(color, depth))
	require.Error(t, err)

	var rateErr *ErrFrameRateMismatch
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, 30.0, rateErr.ColorFPS)
	assert.Equal(t, 15.0, rateErr.DepthFPS)
}

func TestLoadMetadata_RejectsZeroFrameRate(t *testing.T) {
	color := source.StreamProfile{Format: source.FormatRGB8, Width: 640, Height: 480}
	depth := source.StreamProfile{Format: source.FormatZ16, Width: 640, Height: 480}

	_, err := loadMetadata(newProfileSource(color, depth))
	assert.Error(t, err)
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	src := source.NewSynthetic(source.SyntheticConfig{})
	defer src.Close()

	meta, err := loadMetadata(src)
	require.NoError(t, err)

	out, err := meta.JSON()
	require.NoError(t, err)

	var decoded Metadata
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, *meta, decoded)
}
