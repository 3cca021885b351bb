package retro

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func TestScreenshotName(t *testing.T) {
	tests := []struct {
		label string
		frame int
		want  string
	}{
		{"title", 7, "title_000007.png"},
		{"after-fade", 120, "after-fade_000120.png"},
		{"frame.01", 1, "frame.01_000001.png"},
		{" padded ", 2, "padded_000002.png"},
		{"path/to/thing", 3, "path_to_thing_000003.png"},
		{"snow☃", 4, "snow__000004.png"},
		{"", 5, "screenshot_000005.png"},
		{"   ", 6, "screenshot_000006.png"},
	}
	for _, tt := range tests {
		if got := screenshotName(tt.label, tt.frame); got != tt.want {
			t.Errorf("screenshotName(%q, %d) = %q, want %q", tt.label, tt.frame, got, tt.want)
		}
	}
}

func TestEncodeDisplay_PremultipliedPixels(t *testing.T) {
	// One opaque pixel and one half-transparent red, as the GPU stores them.
	pixels := []byte{
		10, 20, 30, 255,
		128, 0, 0, 128,
	}
	data, err := encodeDisplay(image.Pt(2, 1), func(dst []byte) { copy(dst, pixels) })
	if err != nil {
		t.Fatalf("encodeDisplay: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got != (color.NRGBA{10, 20, 30, 255}) {
		t.Errorf("opaque pixel = %v", got)
	}
	if got := color.NRGBAModel.Convert(img.At(1, 0)).(color.NRGBA); got.R != 255 || got.A != 128 {
		t.Errorf("translucent pixel = %v, want straight red at alpha 128", got)
	}
}

func TestScreenshot_Queue(t *testing.T) {
	b := NewEbitenBackend()
	if b.ScreenshotDir != "screenshots" {
		t.Errorf("ScreenshotDir = %q", b.ScreenshotDir)
	}
	b.Screenshot("a")
	b.Screenshot("b")
	if len(b.screenshots) != 2 || b.screenshots[1] != "b" {
		t.Errorf("queue = %v", b.screenshots)
	}
	// No display yet: flushing keeps the queue for later.
	b.flushScreenshots()
	if len(b.screenshots) != 2 {
		t.Error("queue dropped before a display exists")
	}
}
