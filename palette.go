package retro

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // palette files may be GIF
	_ "image/png"
	"os"
)

// identitySwap is the external slot of the unmodified palette.
const identitySwap = 0

// swapInternal converts an external swap slot (0 = identity, 1..MaxPaletteSwaps
// = user slots) to the descending index the backend stores swaps under.
func swapInternal(external int) int {
	return MaxPaletteSwaps - external
}

// swapExternal is the inverse of swapInternal.
func swapExternal(internal int) int {
	return MaxPaletteSwaps - internal
}

// validSwap reports whether external names a swap slot, identity included.
func validSwap(external int) bool {
	return external >= identitySwap && external <= MaxPaletteSwaps
}

// paletteBank holds the palette colors and the swap tables in internal order.
type paletteBank struct {
	colors  []ColorRGBA
	swaps   [MaxPaletteSwaps + 1][]int
	current int // internal index of the active swap
}

func newPaletteBank(count int) *paletteBank {
	p := &paletteBank{
		colors:  make([]ColorRGBA, count),
		current: swapInternal(identitySwap),
	}
	for i := range p.colors {
		p.colors[i] = ColorBlack
	}
	if count > 0 {
		p.colors[0] = ColorTransparent
	}
	for i := range p.swaps {
		p.swaps[i] = identityMapping(count)
	}
	return p
}

func identityMapping(n int) []int {
	m := make([]int, n)
	for i := range m {
		m[i] = i
	}
	return m
}

func (p *paletteBank) count() int {
	return len(p.colors)
}

func (p *paletteBank) validIndex(i int) bool {
	return i >= 0 && i < len(p.colors)
}

// setColor stores c at index i.
func (p *paletteBank) setColor(i int, c ColorRGBA) bool {
	if !p.validIndex(i) {
		return false
	}
	p.colors[i] = c
	return true
}

// setColors copies as many colors as fit, starting at index 0.
func (p *paletteBank) setColors(colors []ColorRGBA) int {
	return copy(p.colors, colors)
}

// setupSwap configures a user slot. Entries beyond len(mapping) map to
// themselves; an entry outside the palette rejects the whole mapping.
func (p *paletteBank) setupSwap(external int, mapping []int) bool {
	if external == identitySwap || !validSwap(external) || len(mapping) > len(p.colors) {
		return false
	}
	for _, m := range mapping {
		if !p.validIndex(m) {
			return false
		}
	}
	table := identityMapping(len(p.colors))
	copy(table, mapping)
	p.swaps[swapInternal(external)] = table
	return true
}

// mapping returns the swap table stored at an internal index.
func (p *paletteBank) mapping(internal int) []int {
	return p.swaps[internal]
}

func (p *paletteBank) setCurrent(external int) bool {
	if !validSwap(external) {
		return false
	}
	p.current = swapInternal(external)
	return true
}

func (p *paletteBank) currentExternal() int {
	return swapExternal(p.current)
}

// resolve returns the color a palette index draws as under the active swap.
func (p *paletteBank) resolve(i int) ColorRGBA {
	if !p.validIndex(i) {
		return ColorTransparent
	}
	return p.colors[p.swaps[p.current][i]]
}

// PaletteFromImage extracts palette colors from an image. A paletted image
// (GIF, 8-bit PNG) yields its color table; any other image is read pixel by
// pixel in row-major order.
func PaletteFromImage(img image.Image) []ColorRGBA {
	if pm, ok := img.(*image.Paletted); ok {
		out := make([]ColorRGBA, 0, len(pm.Palette))
		for _, c := range pm.Palette {
			out = append(out, colorFromColor(c))
		}
		return out
	}
	b := img.Bounds()
	out := make([]ColorRGBA, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out = append(out, colorFromColor(img.At(x, y)))
		}
	}
	return out
}

// LoadPaletteFile decodes a PNG or GIF palette file.
func LoadPaletteFile(path string) ([]ColorRGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("retro: failed to open palette %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("retro: failed to decode palette %s: %w", path, err)
	}
	return PaletteFromImage(img), nil
}

// colorPalette converts colors to an image/color palette.
func colorPalette(colors []ColorRGBA) color.Palette {
	p := make(color.Palette, len(colors))
	for i, c := range colors {
		p[i] = c
	}
	return p
}
