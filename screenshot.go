package retro

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Screenshot asks for the display to be saved as a PNG in ScreenshotDir once
// the current frame ends. The file is named after label and the frame number.
func (b *EbitenBackend) Screenshot(label string) {
	b.screenshots = append(b.screenshots, label)
}

// flushScreenshots writes the pending captures. The display is read back
// once however many captures the frame asked for.
func (b *EbitenBackend) flushScreenshots() {
	if len(b.screenshots) == 0 || b.display == nil {
		return
	}
	labels := b.screenshots
	b.screenshots = b.screenshots[:0]

	data, err := encodeDisplay(b.display.Bounds().Size(), b.display.ReadPixels)
	if err != nil {
		b.warn("screenshot", "err", err)
		return
	}
	if err := os.MkdirAll(b.ScreenshotDir, 0o755); err != nil {
		b.warn("screenshot", "dir", b.ScreenshotDir, "err", err)
		return
	}
	for _, label := range labels {
		name := filepath.Join(b.ScreenshotDir, screenshotName(label, b.frame))
		if err := os.WriteFile(name, data, 0o644); err != nil {
			b.warn("screenshot", "file", name, "err", err)
		}
	}
}

func (b *EbitenBackend) warn(msg string, keyvals ...any) {
	if b.Logger != nil {
		b.Logger.Warn(msg, keyvals...)
	}
}

// encodeDisplay reads a surface of the given size through read and encodes
// it as PNG. Ebitengine hands out premultiplied RGBA, which is the layout of
// image.RGBA, so the pixels need no conversion.
func encodeDisplay(size image.Point, read func([]byte)) ([]byte, error) {
	img := image.NewRGBA(image.Rectangle{Max: size})
	read(img.Pix)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("retro: encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// screenshotName builds "<label>_<frame>.png" with every character outside
// [A-Za-z0-9.-] replaced by '_'.
func screenshotName(label string, frame int) string {
	label = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, strings.TrimSpace(label))
	if label == "" {
		label = "screenshot"
	}
	return fmt.Sprintf("%s_%06d.png", label, frame)
}
