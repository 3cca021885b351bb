package retro

import "unicode/utf8"

// TextFlags control alignment and overflow of Print calls. The zero value is
// top-left aligned, unwrapped and unclipped.
type TextFlags int

const (
	AlignHCenter TextFlags = 1 << iota // center each line horizontally
	AlignHRight                        // right-align each line
	AlignVCenter                       // center the block vertically
	AlignVBottom                       // align the block to the bottom
	TextClip                           // clip glyphs to the rectangle
	TextWrap                           // wrap lines at whitespace to fit the width

	AlignLeft   TextFlags = 0
	AlignTop    TextFlags = 0
	AlignCenter           = AlignHCenter | AlignVCenter

	alignMask = AlignHCenter | AlignHRight | AlignVCenter | AlignVBottom
)

// colorEscape starts an inline color code. In indexed mode it is followed by
// three decimal digits, in RGB mode by six hex digits. "@-" restores the color
// the text was printed with and "@@" prints a literal '@'.
const (
	colorEscape      = '@'
	colorEscapeReset = '-'
	indexCodeLen     = 3
	rgbCodeLen       = 6
)

// textItem is one scanned character with the color it is drawn in.
type textItem struct {
	r       rune
	color   ColorValue
	colored bool // false: use the base color
}

// scanText decodes s and resolves color escapes. Malformed escapes are
// consumed together with the valid prefix of their code and leave the color
// unchanged. Index codes outside [0, paletteSize) count as malformed.
func scanText(s string, mode ColorMode, paletteSize int) []textItem {
	items := make([]textItem, 0, len(s))
	var cur textItem
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		if r != colorEscape {
			items = append(items, textItem{r: r, color: cur.color, colored: cur.colored})
			continue
		}
		if i < len(s) {
			switch s[i] {
			case colorEscape:
				i++
				items = append(items, textItem{r: colorEscape, color: cur.color, colored: cur.colored})
				continue
			case colorEscapeReset:
				i++
				cur = textItem{}
				continue
			}
		}
		c, n, ok := parseColorCode(s[i:], mode, paletteSize)
		i += n
		if ok {
			cur.color, cur.colored = c, true
		}
	}
	return items
}

// parseColorCode reads a color code at the start of s. It returns the number
// of bytes consumed, which is the valid prefix when the code is malformed.
func parseColorCode(s string, mode ColorMode, paletteSize int) (ColorValue, int, bool) {
	if mode == ColorModeIndexed {
		v, n := scanDigits(s, indexCodeLen, 10)
		if n < indexCodeLen || v >= paletteSize {
			return ColorValue{}, n, false
		}
		return Index(v), n, true
	}
	v, n := scanDigits(s, rgbCodeLen, 16)
	if n < rgbCodeLen {
		return ColorValue{}, n, false
	}
	return RGB(uint8(v>>16), uint8(v>>8), uint8(v)), n, true
}

// scanDigits reads up to limit digits in base 10 or 16.
func scanDigits(s string, limit, base int) (value, n int) {
	for n < limit && n < len(s) {
		d := digitValue(s[n])
		if d < 0 || d >= base {
			break
		}
		value = value*base + d
		n++
	}
	return value, n
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// placedGlyph is a glyph positioned relative to the layout origin.
type placedGlyph struct {
	glyph Glyph
	pos   Vector2i // pen position; the glyph is drawn at pos+glyph.Offset
	item  textItem
}

// textLine is one laid-out line. left and right bound the glyph rectangles
// drawn, relative to the line's pen origin, so whitespace never counts.
type textLine struct {
	glyphs      []placedGlyph
	left, right int
	inked       bool
}

// width is the horizontal extent of the line's ink.
func (l textLine) width() int {
	return l.right - l.left
}

// extend grows the ink extent by the glyph drawn at pen.
func (l *textLine) extend(g Glyph, pen int) {
	if g.Src.Empty() {
		return
	}
	x0 := pen + g.Offset.X
	x1 := x0 + g.Src.Width
	if !l.inked {
		l.left, l.right, l.inked = x0, x1, true
		return
	}
	l.left = min(l.left, x0)
	l.right = max(l.right, x1)
}

// textLayout is the result of layoutText; the same value drives both
// measuring and drawing.
type textLayout struct {
	lines []textLine
	size  Size2i
}

// unbounded reports whether a print rectangle only gives a position: a 1x1
// rectangle with no alignment flags neither wraps nor clips.
func unbounded(rect Size2i, flags TextFlags) bool {
	return rect.Width <= 1 && rect.Height <= 1 && flags&alignMask == 0
}

// lookupGlyph falls back to '?' for characters the font lacks. ok is false
// when neither exists; such characters take no space.
func lookupGlyph(f Font, r rune) (Glyph, bool) {
	if g, ok := f.Glyph(r); ok {
		return g, true
	}
	return f.Glyph('?')
}

// lineBuilder accumulates glyphs for the line being filled.
type lineBuilder struct {
	font    Font
	kerner  Kerner
	spacing int
	line    textLine
	pen     int
	prev    rune
	hasPrev bool
}

// place appends items at the pen and returns the resulting ink width of the
// line. With commit false the builder is left untouched.
func (b *lineBuilder) place(items []textItem, commit bool) int {
	pen, prev, hasPrev := b.pen, b.prev, b.hasPrev
	ink := textLine{left: b.line.left, right: b.line.right, inked: b.line.inked}
	var placed []placedGlyph
	for _, it := range items {
		g, ok := lookupGlyph(b.font, it.r)
		if !ok {
			continue
		}
		if hasPrev && b.kerner != nil {
			pen += b.kerner.Kern(prev, it.r)
		}
		if !isSpace(it.r) {
			placed = append(placed, placedGlyph{glyph: g, pos: Vector2i{X: pen}, item: it})
			ink.extend(g, pen)
		}
		pen += g.Advance + b.spacing
		prev, hasPrev = it.r, true
	}
	if commit {
		b.pen, b.prev, b.hasPrev = pen, prev, hasPrev
		b.line.left, b.line.right, b.line.inked = ink.left, ink.right, ink.inked
		b.line.glyphs = append(b.line.glyphs, placed...)
	}
	return ink.width()
}

func (b *lineBuilder) empty() bool {
	return len(b.line.glyphs) == 0
}

// take returns the finished line and resets the builder.
func (b *lineBuilder) take() textLine {
	l := b.line
	b.line = textLine{}
	b.pen, b.hasPrev = 0, false
	return l
}

// layoutText breaks items into lines and positions every visible glyph
// inside rect according to flags. Wrapping is greedy and only breaks at
// whitespace; the whitespace at a break is dropped and a word wider than the
// rectangle overflows on its own line.
func layoutText(f Font, items []textItem, rect Rect2i, flags TextFlags) textLayout {
	m := f.Metrics()
	if unbounded(rect.Size(), flags) {
		flags &^= TextWrap | TextClip
	}
	wrap := flags&TextWrap != 0
	b := lineBuilder{font: f, spacing: m.CharSpacing}
	b.kerner, _ = f.(Kerner)

	var lines []textLine
	var pending []textItem // whitespace between the line so far and the next word
	for start := 0; start <= len(items); {
		end := start
		for end < len(items) && items[end].r != '\n' {
			end++
		}
		para := items[start:end]
		pending = pending[:0]
		leading := true
		for i := 0; i < len(para); {
			j := i
			if isSpace(para[i].r) || para[i].r == '\r' {
				for j < len(para) && (isSpace(para[j].r) || para[j].r == '\r') {
					j++
				}
				for _, it := range para[i:j] {
					if it.r != '\r' {
						pending = append(pending, it)
					}
				}
				if leading {
					// Leading indentation moves the pen, so it survives relative to the block's left ink edge.
					b.place(pending, true)
					pending = pending[:0]
				}
				i = j
				continue
			}
			for j < len(para) && !isSpace(para[j].r) && para[j].r != '\r' {
				j++
			}
			word := para[i:j]
			leading = false
			withSpace := append(append([]textItem(nil), pending...), word...)
			if wrap && !b.empty() && b.place(withSpace, false) > rect.Width {
				lines = append(lines, b.take())
				b.place(word, true)
			} else {
				b.place(withSpace, true)
			}
			pending = pending[:0]
			i = j
		}
		lines = append(lines, b.take())
		start = end + 1
	}

	// Trailing lines without glyphs take no height.
	for len(lines) > 0 && len(lines[len(lines)-1].glyphs) == 0 {
		lines = lines[:len(lines)-1]
	}

	// The layout box is the union of the glyph rectangles drawn, so measuring
	// and drawing agree for fonts whose glyphs are offset from the pen.
	lay := textLayout{lines: lines}
	blockLeft, top, bottom, inked := 0, 0, 0, false
	for li, l := range lines {
		lineY := li * (m.Height + m.LineSpacing)
		for _, g := range l.glyphs {
			if g.glyph.Src.Empty() {
				continue
			}
			y0 := lineY + g.glyph.Offset.Y
			y1 := y0 + g.glyph.Src.Height
			if !inked {
				blockLeft, top, bottom, inked = l.left, y0, y1, true
				continue
			}
			blockLeft = min(blockLeft, l.left)
			top = min(top, y0)
			bottom = max(bottom, y1)
		}
	}

	// Left-aligned lines share the block's left edge so relative indentation
	// survives; centered and right-aligned lines are placed by their own ink.
	aligned := flags&(AlignHRight|AlignHCenter) != 0
	origin := func(l textLine) int {
		if aligned {
			return l.left
		}
		return blockLeft
	}
	for _, l := range lines {
		if l.inked {
			lay.size.Width = max(lay.size.Width, l.right-origin(l))
		}
	}
	lay.size.Height = bottom - top

	// Vertical alignment moves the whole block, horizontal alignment each
	// line on its own.
	y := rect.Y - top
	switch {
	case flags&AlignVBottom != 0:
		y += rect.Height - lay.size.Height
	case flags&AlignVCenter != 0:
		y += (rect.Height - lay.size.Height) / 2
	}
	for li := range lay.lines {
		l := &lay.lines[li]
		x := rect.X - origin(*l)
		switch {
		case flags&AlignHRight != 0:
			x += rect.Width - l.width()
		case flags&AlignHCenter != 0:
			x += (rect.Width - l.width()) / 2
		}
		lineY := y + li*(m.Height+m.LineSpacing)
		for gi := range l.glyphs {
			l.glyphs[gi].pos = Vector2i{x + l.glyphs[gi].pos.X, lineY}
		}
	}
	return lay
}
