package retro

import "fmt"

// ColorMode selects how every color argument is interpreted for a session.
type ColorMode uint8

const (
	ColorModeRGB     ColorMode = iota // colors are direct RGBA values
	ColorModeIndexed                  // colors are indices into the palette
)

func (m ColorMode) String() string {
	switch m {
	case ColorModeRGB:
		return "rgb"
	case ColorModeIndexed:
		return "indexed"
	}
	return fmt.Sprintf("ColorMode(%d)", uint8(m))
}

// ParseColorMode parses "rgb" or "indexed".
func ParseColorMode(s string) (ColorMode, error) {
	switch s {
	case "rgb", "RGB":
		return ColorModeRGB, nil
	case "indexed", "Indexed", "INDEXED":
		return ColorModeIndexed, nil
	}
	return 0, fmt.Errorf("retro: unknown color mode %q", s)
}

// ColorValue is either a palette index or an RGBA color. Every API that takes
// a color takes a ColorValue; the session checks its kind against the active
// ColorMode once per call.
type ColorValue struct {
	indexed bool
	index   int
	rgba    ColorRGBA
}

// Index returns a palette-index color value, valid in ColorModeIndexed.
func Index(i int) ColorValue {
	return ColorValue{indexed: true, index: i}
}

// RGBA returns a direct color value, valid in ColorModeRGB.
func RGBA(c ColorRGBA) ColorValue {
	return ColorValue{rgba: c}
}

// RGB returns an opaque direct color value.
func RGB(r, g, b uint8) ColorValue {
	return ColorValue{rgba: ColorRGBA{r, g, b, 255}}
}

// Mode reports which ColorMode the value belongs to.
func (v ColorValue) Mode() ColorMode {
	if v.indexed {
		return ColorModeIndexed
	}
	return ColorModeRGB
}

// PaletteIndex returns the index and true for index values.
func (v ColorValue) PaletteIndex() (int, bool) {
	return v.index, v.indexed
}

// Color returns the RGBA and true for direct values.
func (v ColorValue) Color() (ColorRGBA, bool) {
	return v.rgba, !v.indexed
}

func (v ColorValue) String() string {
	if v.indexed {
		return fmt.Sprintf("index(%d)", v.index)
	}
	return v.rgba.String()
}
