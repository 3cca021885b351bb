package retro

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_hardware.yaml
var defaultHardwareYAML []byte

// Hardware limits.
const (
	MaxDisplayDimension = 4096
	MaxMapLayers        = 16
	MinFPS              = 20
	MaxFPS              = 240
	MaxSpriteSheets     = 16
	MaxOffscreens       = 8
	MaxFonts            = 16
	MaxShaders          = 16
	MaxPaletteSwaps     = 16
	MaxPaletteColors    = 256
	MaxSoundSlots       = 256
	MaxSoundChannels    = 16
)

// PixelStyle is the aspect ratio of a single display pixel on screen.
type PixelStyle uint8

const (
	PixelStyleSquare PixelStyle = iota // 1x1
	PixelStyleWide                     // 2x1
	PixelStyleTall                     // 1x2
)

// Scale returns the horizontal and vertical screen pixels per display pixel.
func (p PixelStyle) Scale() (int, int) {
	switch p {
	case PixelStyleWide:
		return 2, 1
	case PixelStyleTall:
		return 1, 2
	}
	return 1, 1
}

func (p PixelStyle) String() string {
	switch p {
	case PixelStyleSquare:
		return "square"
	case PixelStyleWide:
		return "wide"
	case PixelStyleTall:
		return "tall"
	}
	return fmt.Sprintf("PixelStyle(%d)", uint8(p))
}

// UnmarshalYAML decodes "square", "wide" or "tall".
func (p *PixelStyle) UnmarshalYAML(value *yaml.Node) error {
	switch value.Value {
	case "square":
		*p = PixelStyleSquare
	case "wide":
		*p = PixelStyleWide
	case "tall":
		*p = PixelStyleTall
	default:
		return fmt.Errorf("line %d: unknown pixel style %q", value.Line, value.Value)
	}
	return nil
}

// MarshalYAML encodes the style name.
func (p PixelStyle) MarshalYAML() (any, error) {
	return p.String(), nil
}

// UnmarshalYAML decodes "rgb" or "indexed".
func (m *ColorMode) UnmarshalYAML(value *yaml.Node) error {
	mode, err := ParseColorMode(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*m = mode
	return nil
}

// MarshalYAML encodes the mode name.
func (m ColorMode) MarshalYAML() (any, error) {
	return m.String(), nil
}

// HardwareSettings describes the virtual hardware a game runs on. A session
// captures it once during Start; it cannot change afterwards.
type HardwareSettings struct {
	DisplaySize       Size2i     `yaml:"display_size"`
	MapSize           Size2i     `yaml:"map_size"`
	MapLayers         int        `yaml:"map_layers"`
	ColorMode         ColorMode  `yaml:"color_mode"`
	PaletteFile       string     `yaml:"palette_file,omitempty"`
	PaletteColorCount int        `yaml:"palette_colors"`
	FPS               int        `yaml:"fps"`
	PixelStyle        PixelStyle `yaml:"pixel_style"`
}

// ErrInvalidHardware is wrapped by every HardwareSettings validation error.
var ErrInvalidHardware = errors.New("retro: invalid hardware settings")

// DefaultHardwareSettings returns the embedded defaults.
func DefaultHardwareSettings() HardwareSettings {
	var hw HardwareSettings
	if err := yaml.Unmarshal(defaultHardwareYAML, &hw); err != nil {
		// The embedded file is part of the build; fall back to literals.
		return HardwareSettings{
			DisplaySize:       Sz(480, 270),
			MapSize:           Sz(256, 256),
			MapLayers:         8,
			PaletteColorCount: 32,
			FPS:               60,
		}
	}
	return hw
}

// ParseHardwareSettings decodes YAML on top of the defaults and validates the
// result.
func ParseHardwareSettings(data []byte) (HardwareSettings, error) {
	hw := DefaultHardwareSettings()
	if err := yaml.Unmarshal(data, &hw); err != nil {
		return hw, fmt.Errorf("retro: failed to parse hardware settings: %w", err)
	}
	if err := hw.Validate(); err != nil {
		return hw, err
	}
	return hw, nil
}

// LoadHardwareSettings reads and parses a YAML settings file.
func LoadHardwareSettings(path string) (HardwareSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultHardwareSettings(), fmt.Errorf("retro: failed to read hardware settings %s: %w", path, err)
	}
	return ParseHardwareSettings(data)
}

// Validate checks every field against the hardware limits.
func (hw HardwareSettings) Validate() error {
	switch {
	case !hw.DisplaySize.Valid(),
		hw.DisplaySize.Width > MaxDisplayDimension,
		hw.DisplaySize.Height > MaxDisplayDimension:
		return fmt.Errorf("%w: display size %v", ErrInvalidHardware, hw.DisplaySize)
	case hw.MapSize.Width < 0, hw.MapSize.Height < 0:
		return fmt.Errorf("%w: map size %v", ErrInvalidHardware, hw.MapSize)
	case hw.MapLayers < 0, hw.MapLayers > MaxMapLayers:
		return fmt.Errorf("%w: map layers %d", ErrInvalidHardware, hw.MapLayers)
	case hw.ColorMode != ColorModeRGB && hw.ColorMode != ColorModeIndexed:
		return fmt.Errorf("%w: color mode %v", ErrInvalidHardware, hw.ColorMode)
	case hw.PaletteColorCount < 2, hw.PaletteColorCount > MaxPaletteColors:
		return fmt.Errorf("%w: palette color count %d", ErrInvalidHardware, hw.PaletteColorCount)
	case hw.FPS < MinFPS, hw.FPS > MaxFPS:
		return fmt.Errorf("%w: fps %d", ErrInvalidHardware, hw.FPS)
	case hw.PixelStyle > PixelStyleTall:
		return fmt.Errorf("%w: pixel style %v", ErrInvalidHardware, hw.PixelStyle)
	}
	return nil
}
