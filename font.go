package retro

import (
	"bufio"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Glyph locates one character on a font's glyph sheet.
type Glyph struct {
	Src     Rect2i   // area on the glyph sheet
	Offset  Vector2i // drawn at the pen position plus Offset
	Advance int      // pen movement after the glyph, before CharSpacing
}

// FontMetrics are the line metrics shared by all glyphs of a font.
type FontMetrics struct {
	Height      int // line height
	CharSpacing int // extra space between glyphs on a line
	LineSpacing int // extra space between lines
}

// Font is a pixel font drawn from a single glyph sheet. Glyph sheets are
// white on transparent; draw calls tint them with the text color.
type Font interface {
	Glyph(r rune) (Glyph, bool)
	Metrics() FontMetrics
	Image() image.Image
}

// Kerner is implemented by fonts with per-pair kerning.
type Kerner interface {
	Kern(first, second rune) int
}

// --- SheetFont ---

// SheetFont is a font laid out on a uniform grid: glyph i of the rune range
// occupies cell i, row-major.
type SheetFont struct {
	img     image.Image
	cell    Size2i
	first   rune
	last    rune
	metrics FontMetrics
	widths  []int // per-glyph advance for proportional fonts, nil for fixed
}

// NewSheetFont creates a fixed-width font. Cells are read left to right, top
// to bottom, starting with first and ending with last.
func NewSheetFont(img image.Image, cell Size2i, first, last rune, charSpacing, lineSpacing int) (*SheetFont, error) {
	if !cell.Valid() {
		return nil, fmt.Errorf("retro: invalid font cell size %v", cell)
	}
	if last < first {
		return nil, fmt.Errorf("retro: invalid font rune range %q-%q", first, last)
	}
	b := img.Bounds()
	cols, rows := b.Dx()/cell.Width, b.Dy()/cell.Height
	if need := int(last-first) + 1; cols*rows < need {
		return nil, fmt.Errorf("retro: font sheet %dx%d holds %d glyphs, need %d", b.Dx(), b.Dy(), cols*rows, need)
	}
	return &SheetFont{
		img:   img,
		cell:  cell,
		first: first,
		last:  last,
		metrics: FontMetrics{
			Height:      cell.Height,
			CharSpacing: charSpacing,
			LineSpacing: lineSpacing,
		},
	}, nil
}

// NewProportionalSheetFont is NewSheetFont with each glyph trimmed to its
// widest opaque column. Blank cells keep spaceWidth.
func NewProportionalSheetFont(img image.Image, cell Size2i, first, last rune, charSpacing, lineSpacing, spaceWidth int) (*SheetFont, error) {
	f, err := NewSheetFont(img, cell, first, last, charSpacing, lineSpacing)
	if err != nil {
		return nil, err
	}
	f.widths = make([]int, int(last-first)+1)
	for i := range f.widths {
		f.widths[i] = spaceWidth
		src := f.cellRect(i)
		for x := src.Width - 1; x >= 0; x-- {
			if columnOpaque(img, src.X+x, src.Y, src.Height) {
				f.widths[i] = x + 1
				break
			}
		}
	}
	return f, nil
}

func columnOpaque(img image.Image, x, y, h int) bool {
	b := img.Bounds()
	for dy := 0; dy < h; dy++ {
		if _, _, _, a := img.At(b.Min.X+x, b.Min.Y+y+dy).RGBA(); a != 0 {
			return true
		}
	}
	return false
}

func (f *SheetFont) cellRect(i int) Rect2i {
	cols := f.img.Bounds().Dx() / f.cell.Width
	return Rect2i{
		X:      (i % cols) * f.cell.Width,
		Y:      (i / cols) * f.cell.Height,
		Width:  f.cell.Width,
		Height: f.cell.Height,
	}
}

// Glyph implements Font.
func (f *SheetFont) Glyph(r rune) (Glyph, bool) {
	if r < f.first || r > f.last {
		return Glyph{}, false
	}
	i := int(r - f.first)
	src := f.cellRect(i)
	if f.widths != nil {
		src.Width = f.widths[i]
	}
	return Glyph{Src: src, Advance: src.Width}, true
}

// Metrics implements Font.
func (f *SheetFont) Metrics() FontMetrics {
	return f.metrics
}

// Image implements Font.
func (f *SheetFont) Image() image.Image {
	return f.img
}

// --- System font ---

// Printable ASCII range covered by the system font.
const (
	systemFontFirst = ' '
	systemFontLast  = '~'
	systemFontCols  = 16
)

// NewSystemFont rasterizes the 7x13 basic font into a glyph sheet. It is the
// font every session starts with.
func NewSystemFont() *SheetFont {
	face := basicfont.Face7x13
	cell := Sz(face.Advance, face.Height)
	count := int(systemFontLast-systemFontFirst) + 1
	rows := (count + systemFontCols - 1) / systemFontCols
	img := image.NewNRGBA(image.Rect(0, 0, systemFontCols*cell.Width, rows*cell.Height))

	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	for i := 0; i < count; i++ {
		x := (i % systemFontCols) * cell.Width
		y := (i/systemFontCols)*cell.Height + face.Ascent
		d.Dot = fixed.P(x, y)
		d.DrawString(string(systemFontFirst + rune(i)))
	}
	f, err := NewSheetFont(img, cell, systemFontFirst, systemFontLast, 0, 1)
	if err != nil {
		panic(fmt.Sprintf("retro: system font: %v", err))
	}
	return f
}

// --- BitmapFont (BMFont) ---

const asciiGlyphCount = 128

// BitmapFont is a proportional font described by a BMFont text (.fnt) file
// and a single atlas page.
type BitmapFont struct {
	img        image.Image
	lineHeight int
	base       int
	metrics    FontMetrics

	asciiGlyphs [asciiGlyphCount]Glyph
	asciiSet    [asciiGlyphCount]bool
	extGlyphs   map[rune]Glyph

	kernings map[[2]rune]int
}

// LoadBitmapFont parses BMFont text-format data. page is the atlas image the
// char entries refer to; only single-page fonts are supported.
func LoadBitmapFont(fntData []byte, page image.Image) (*BitmapFont, error) {
	f := &BitmapFont{img: page}

	scanner := bufio.NewScanner(bytes.NewReader(fntData))
	var charCount int

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tag, rest := splitTag(line)
		fields := parseFields(rest)

		switch tag {
		case "common":
			f.lineHeight = fields.num("lineHeight")
			f.base = fields.num("base")
			if pages := fields.num("pages"); pages > 1 {
				return nil, fmt.Errorf("retro: .fnt data has %d pages, only 1 is supported", pages)
			}

		case "char":
			charCount++
			id := rune(fields.num("id"))
			g := Glyph{
				Src: Rect2i{
					X:      fields.num("x"),
					Y:      fields.num("y"),
					Width:  fields.num("width"),
					Height: fields.num("height"),
				},
				Offset:  Vector2i{fields.num("xoffset"), fields.num("yoffset")},
				Advance: fields.num("xadvance"),
			}
			if id >= 0 && id < asciiGlyphCount {
				f.asciiGlyphs[id] = g
				f.asciiSet[id] = true
			} else {
				if f.extGlyphs == nil {
					f.extGlyphs = make(map[rune]Glyph)
				}
				f.extGlyphs[id] = g
			}

		case "kerning":
			if f.kernings == nil {
				f.kernings = make(map[[2]rune]int)
			}
			pair := [2]rune{rune(fields.num("first")), rune(fields.num("second"))}
			f.kernings[pair] = fields.num("amount")
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("retro: error reading .fnt data: %w", err)
	}
	if f.lineHeight == 0 {
		return nil, fmt.Errorf("retro: .fnt data missing common lineHeight")
	}
	if charCount == 0 {
		return nil, fmt.Errorf("retro: .fnt data has no char definitions")
	}
	f.metrics = FontMetrics{Height: f.lineHeight}
	return f, nil
}

// Glyph implements Font.
func (f *BitmapFont) Glyph(r rune) (Glyph, bool) {
	if r >= 0 && r < asciiGlyphCount {
		return f.asciiGlyphs[r], f.asciiSet[r]
	}
	g, ok := f.extGlyphs[r]
	return g, ok
}

// Metrics implements Font.
func (f *BitmapFont) Metrics() FontMetrics {
	return f.metrics
}

// Image implements Font.
func (f *BitmapFont) Image() image.Image {
	return f.img
}

// Kern implements Kerner.
func (f *BitmapFont) Kern(first, second rune) int {
	return f.kernings[[2]rune{first, second}]
}

// Base returns the distance from the top of a line to the baseline.
func (f *BitmapFont) Base() int {
	return f.base
}

// splitTag splits a BMFont line into its tag and the rest of the line.
func splitTag(line string) (string, string) {
	idx := strings.IndexByte(line, ' ')
	if idx == -1 {
		return line, ""
	}
	return line[:idx], line[idx+1:]
}

type fntFields map[string]string

// num returns the field as an integer, 0 when missing or malformed.
func (f fntFields) num(key string) int {
	v, _ := strconv.Atoi(f[key])
	return v
}

// parseFields parses "key=value key=value ..." into a map.
func parseFields(s string) fntFields {
	fields := make(fntFields)
	for _, part := range strings.Fields(s) {
		eq := strings.IndexByte(part, '=')
		if eq == -1 {
			continue
		}
		key, val := part[:eq], part[eq+1:]
		// Strip quotes from values like face="Arial"
		if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
			val = val[1 : len(val)-1]
		}
		fields[key] = val
	}
	return fields
}

// fontSheet copies a font image into an NRGBA sheet starting at the origin.
func fontSheet(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
