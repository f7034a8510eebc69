package source

// PixelFormat names the wire encoding of one sensor channel. The set mirrors
// the formats commonly produced by RGB-D recording devices.
type PixelFormat string

const (
	FormatZ16   PixelFormat = "Z16"
	FormatY8    PixelFormat = "Y8"
	FormatY16   PixelFormat = "Y16"
	FormatYUYV  PixelFormat = "YUYV"
	FormatRGB8  PixelFormat = "RGB8"
	FormatBGR8  PixelFormat = "BGR8"
	FormatRGBA8 PixelFormat = "RGBA8"
	FormatBGRA8 PixelFormat = "BGRA8"
)

type formatTraits struct {
	bitDepth int
	channels int
}

var knownFormats = map[PixelFormat]formatTraits{
	FormatZ16:   {bitDepth: 16, channels: 1},
	FormatY8:    {bitDepth: 8, channels: 1},
	FormatY16:   {bitDepth: 16, channels: 1},
	FormatYUYV:  {bitDepth: 8, channels: 2},
	FormatRGB8:  {bitDepth: 8, channels: 3},
	FormatBGR8:  {bitDepth: 8, channels: 3},
	FormatRGBA8: {bitDepth: 8, channels: 4},
	FormatBGRA8: {bitDepth: 8, channels: 4},
}

// Known reports whether the format is in the supported-format table.
func (f PixelFormat) Known() bool {
	_, ok := knownFormats[f]
	return ok
}

// BitDepth returns the bits per sample, or 0 for unknown formats.
func (f PixelFormat) BitDepth() int {
	return knownFormats[f].bitDepth
}

// Channels returns the samples per pixel, or 0 for unknown formats.
func (f PixelFormat) Channels() int {
	return knownFormats[f].channels
}

func (f PixelFormat) String() string {
	return string(f)
}
