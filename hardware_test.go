package retro

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefaultHardwareSettings(t *testing.T) {
	hw := DefaultHardwareSettings()
	if hw.DisplaySize != Sz(480, 270) || hw.FPS != 60 || hw.PaletteColorCount != 32 {
		t.Errorf("defaults = %+v", hw)
	}
	if hw.ColorMode != ColorModeRGB || hw.PixelStyle != PixelStyleSquare {
		t.Errorf("mode = %v style = %v", hw.ColorMode, hw.PixelStyle)
	}
	if err := hw.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestParseHardwareSettings_OverridesDefaults(t *testing.T) {
	hw, err := ParseHardwareSettings([]byte(`
display_size: {width: 256, height: 144}
color_mode: indexed
palette_colors: 16
pixel_style: wide
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if hw.DisplaySize != Sz(256, 144) || hw.ColorMode != ColorModeIndexed || hw.PaletteColorCount != 16 {
		t.Errorf("parsed = %+v", hw)
	}
	if hw.PixelStyle != PixelStyleWide {
		t.Errorf("pixel style = %v", hw.PixelStyle)
	}
	if hw.FPS != 60 {
		t.Errorf("fps = %d, want default 60", hw.FPS)
	}
}

func TestParseHardwareSettings_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"bad color mode", "color_mode: hsv", false},
		{"bad pixel style", "pixel_style: round", false},
		{"malformed", "display_size: [", false},
		{"fps too low", "fps: 5", true},
		{"fps too high", "fps: 500", true},
		{"palette too small", "palette_colors: 1", true},
		{"palette too large", "palette_colors: 257", true},
		{"display too large", "display_size: {width: 5000, height: 10}", true},
		{"zero display", "display_size: {width: 0, height: 10}", true},
		{"map layers", "map_layers: 17", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHardwareSettings([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrInvalidHardware); got != tt.invalid {
				t.Errorf("errors.Is(ErrInvalidHardware) = %v, want %v (%v)", got, tt.invalid, err)
			}
		})
	}
}

func TestValidate_Limits(t *testing.T) {
	hw := DefaultHardwareSettings()
	for _, fps := range []int{MinFPS, MaxFPS} {
		hw.FPS = fps
		if err := hw.Validate(); err != nil {
			t.Errorf("fps %d: %v", fps, err)
		}
	}
	hw.FPS = 60
	for _, n := range []int{2, MaxPaletteColors} {
		hw.PaletteColorCount = n
		if err := hw.Validate(); err != nil {
			t.Errorf("palette %d: %v", n, err)
		}
	}
}

func TestLoadHardwareSettings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hw.yaml")
	if err := os.WriteFile(path, []byte("fps: 30\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	hw, err := LoadHardwareSettings(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if hw.FPS != 30 {
		t.Errorf("fps = %d, want 30", hw.FPS)
	}

	if _, err := LoadHardwareSettings(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}
}

func TestHardwareSettings_MarshalRoundTrip(t *testing.T) {
	hw := testHardware(ColorModeIndexed)
	hw.PixelStyle = PixelStyleTall
	data, err := yaml.Marshal(hw)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := ParseHardwareSettings(data)
	if err != nil {
		t.Fatalf("Parse: %v\n%s", err, data)
	}
	if got != hw {
		t.Errorf("round trip = %+v, want %+v", got, hw)
	}
}

func TestPixelStyle_Scale(t *testing.T) {
	tests := []struct {
		style  PixelStyle
		sx, sy int
	}{
		{PixelStyleSquare, 1, 1},
		{PixelStyleWide, 2, 1},
		{PixelStyleTall, 1, 2},
	}
	for _, tt := range tests {
		if sx, sy := tt.style.Scale(); sx != tt.sx || sy != tt.sy {
			t.Errorf("%v.Scale() = %d, %d", tt.style, sx, sy)
		}
	}
}
