package retro

// emit places q on the current target: the camera offset is subtracted, the
// quad is clipped to the clip rectangle, the target bounds and the optional
// extra clip (given in world space), and its source is trimmed to match.
func (s *Session) emit(q Quad, extra *Rect2i) {
	if q.Dst.Empty() {
		return
	}
	cam := Vector2i{-s.camera.pos.X, -s.camera.pos.Y}
	dst := q.Dst.Offset(cam)
	visible := dst.Intersect(s.clip).Intersect(RectAt(Vector2i{}, s.targetSize))
	if extra != nil {
		visible = visible.Intersect(extra.Offset(cam))
	}
	if visible.Empty() {
		return
	}
	if visible != dst && q.Texture.Kind != TextureSolid {
		q.Src = q.Orient.ClipSource(q.Src, dst, visible)
		if q.Src.Empty() {
			return
		}
	}
	q.Dst = visible
	s.stats.quads++
	s.backend.DrawQuad(q)
}

// withAlpha scales the alpha of c by the draw alpha.
func (s *Session) withAlpha(c ColorRGBA) ColorRGBA {
	c.A = mul8(c.A, s.alpha)
	return c
}

// solid emits flat color rectangles.
func (s *Session) solid(c ColorValue, rects ...Rect2i) {
	rgba, ok := s.resolveColor(c)
	if !ok {
		return
	}
	rgba = s.withAlpha(rgba)
	for _, r := range rects {
		s.emit(Quad{Texture: SolidTexture, Dst: r, Color: rgba, Shader: -1}, nil)
	}
}

// texturedQuad fills in the per-mode color fields of a textured draw.
func (s *Session) texturedQuad(tex TextureID, src, dst Rect2i, o Orientation) Quad {
	q := Quad{
		Texture: tex,
		Src:     src,
		Dst:     dst,
		Orient:  o,
		Color:   s.withAlpha(ColorWhite),
		Swap:    swapInternal(identitySwap),
		Shader:  s.shader,
	}
	if s.hw.ColorMode == ColorModeIndexed {
		q.Swap = s.palette.current
	} else {
		q.Color = s.withAlpha(s.tint)
	}
	return q
}

// DrawPixel sets one pixel.
func (s *Session) DrawPixel(pos Vector2i, c ColorValue) {
	if !s.drawing() {
		return
	}
	s.solid(c, Rect2i{pos.X, pos.Y, 1, 1})
}

// DrawLine draws a one pixel line between two points, both included.
func (s *Session) DrawLine(a, b Vector2i, c ColorValue) {
	if !s.drawing() {
		return
	}
	s.solid(c, lineRuns(a, b)...)
}

// DrawRect draws the one pixel outline of r.
func (s *Session) DrawRect(r Rect2i, c ColorValue) {
	if !s.drawing() || !s.validRect(r) {
		return
	}
	s.solid(c, rectOutline(r)...)
}

// DrawRectFill fills r.
func (s *Session) DrawRectFill(r Rect2i, c ColorValue) {
	if !s.drawing() || !s.validRect(r) {
		return
	}
	s.solid(c, r)
}

// DrawEllipse draws the outline of the ellipse with the given center and
// radii.
func (s *Session) DrawEllipse(center, radius Vector2i, c ColorValue) {
	s.drawEllipse(center, radius, c, false)
}

// DrawEllipseFill fills the ellipse with the given center and radii.
func (s *Session) DrawEllipseFill(center, radius Vector2i, c ColorValue) {
	s.drawEllipse(center, radius, c, true)
}

func (s *Session) drawEllipse(center, radius Vector2i, c ColorValue, fill bool) {
	if !s.drawing() {
		return
	}
	if radius.X < 0 || radius.Y < 0 {
		s.reject("negative ellipse radius", "radius", radius)
		return
	}
	spans := ellipseSpans(radius.X, radius.Y, fill)
	for i := range spans {
		spans[i] = spans[i].Offset(center)
	}
	s.solid(c, spans...)
}

func (s *Session) validRect(r Rect2i) bool {
	if r.Width < 0 || r.Height < 0 {
		s.reject("negative rectangle size", "rect", r)
		return false
	}
	return true
}

// sheetReady rejects sprite draws when no sheet is loaded.
func (s *Session) sheetReady() bool {
	if !s.sheets[s.sheet].loaded() {
		s.reject("no sprite sheet set up", "slot", s.sheet)
		return false
	}
	return true
}

func (s *Session) sheetTexture() TextureID {
	return TextureID{Kind: TextureSpriteSheet, Index: s.sheet}
}

// DrawSprite draws sprite index of the selected sheet at pos. Rotated
// orientations swap the footprint's width and height.
func (s *Session) DrawSprite(index int, pos Vector2i, flags Flags) {
	if !s.drawing() || !s.sheetReady() {
		return
	}
	src, ok := s.spriteRect(index)
	if !ok {
		s.reject("sprite index out of range", "index", index)
		return
	}
	s.drawSpriteAt(src, pos, flags)
}

// DrawSpriteSrc draws the src area of the selected sheet at pos.
func (s *Session) DrawSpriteSrc(src Rect2i, pos Vector2i, flags Flags) {
	if !s.drawing() || !s.sheetReady() || !s.validSheetSrc(src) {
		return
	}
	s.drawSpriteAt(src, pos, flags)
}

func (s *Session) drawSpriteAt(src Rect2i, pos Vector2i, flags Flags) {
	o := flags.Orientation()
	dst := RectAt(pos, o.DestSize(src.Size()))
	s.emit(s.texturedQuad(s.sheetTexture(), src, dst, o), nil)
}

// DrawSpriteRect stretches the src area of the selected sheet over dst.
func (s *Session) DrawSpriteRect(src, dst Rect2i, flags Flags) {
	if !s.drawing() || !s.sheetReady() || !s.validSheetSrc(src) || !s.validRect(dst) {
		return
	}
	s.emit(s.texturedQuad(s.sheetTexture(), src, dst, flags.Orientation()), nil)
}

func (s *Session) validSheetSrc(src Rect2i) bool {
	bounds := RectAt(Vector2i{}, s.sheets[s.sheet].size)
	if src.Width < 0 || src.Height < 0 || src.Intersect(bounds) != src {
		s.reject("source rectangle outside sprite sheet", "src", src)
		return false
	}
	return true
}

// DrawNineSlice draws ns from the selected sheet stretched over dst.
func (s *Session) DrawNineSlice(dst Rect2i, ns NineSlice) {
	if !s.drawing() || !s.sheetReady() || !s.validRect(dst) {
		return
	}
	for _, p := range ns.Compose(dst) {
		if p.Dst.Empty() {
			continue
		}
		s.emit(s.texturedQuad(s.sheetTexture(), p.Src, p.Dst, p.Orient), nil)
	}
}

// DrawCopy copies the src area of offscreen surface i onto the current
// target at dst, stretching if the sizes differ.
func (s *Session) DrawCopy(i int, src, dst Rect2i, flags Flags) {
	if !s.drawing() || !s.checkSlot("offscreen", i, MaxOffscreens) || !s.validRect(dst) {
		return
	}
	size := s.offscreens[i]
	if !size.Valid() {
		s.reject("offscreen not set up", "slot", i)
		return
	}
	if s.target.Offscreen && s.target.Index == i {
		s.reject("offscreen copied onto itself", "slot", i)
		return
	}
	if src.Width < 0 || src.Height < 0 || src.Intersect(RectAt(Vector2i{}, size)) != src {
		s.reject("source rectangle outside offscreen", "src", src)
		return
	}
	q := s.texturedQuad(TextureID{Kind: TextureOffscreen, Index: i}, src, dst, flags.Orientation())
	q.Swap = swapInternal(identitySwap)
	s.emit(q, nil)
}

// Print draws text at pos with no wrapping, alignment or clipping.
func (s *Session) Print(pos Vector2i, c ColorValue, text string) {
	s.PrintRect(RectAt(pos, Sz(1, 1)), c, 0, text)
}

// PrintRect draws text inside rect according to flags. Inline escapes
// change the color: "@" plus three digits selects a palette index in
// indexed mode, "@" plus six hex digits an RGB color in RGB mode, "@-"
// returns to c and "@@" prints an '@'.
func (s *Session) PrintRect(rect Rect2i, c ColorValue, flags TextFlags, text string) {
	if !s.drawing() || !s.validRect(rect) {
		return
	}
	base, ok := s.resolveColor(c)
	if !ok {
		return
	}
	f, tex := s.currentFont()
	lay := layoutText(f, scanText(text, s.hw.ColorMode, s.palette.count()), rect, flags)
	var clip *Rect2i
	if flags&TextClip != 0 && !unbounded(rect.Size(), flags) {
		clip = &rect
	}
	for _, l := range lay.lines {
		for _, g := range l.glyphs {
			col := base
			if g.item.colored {
				col = s.resolveLenient(g.item.color)
			}
			dst := RectAt(g.pos.Add(g.glyph.Offset), g.glyph.Src.Size())
			s.emit(Quad{
				Texture: tex,
				Src:     g.glyph.Src,
				Dst:     dst,
				Color:   s.withAlpha(col),
				Swap:    swapInternal(identitySwap),
				Mask:    true,
				Shader:  -1,
			}, clip)
		}
	}
}

// PrintMeasure returns the size text would take when printed with Print.
func (s *Session) PrintMeasure(text string) Size2i {
	return s.PrintMeasureRect(R(0, 0, 1, 1), 0, text)
}

// PrintMeasureRect returns the size text would take when printed into rect
// with flags. Only the width and TextWrap matter; alignment moves lines but
// does not change the size.
func (s *Session) PrintMeasureRect(rect Rect2i, flags TextFlags, text string) Size2i {
	if s.state != sessionInitializing && s.state != sessionRunning {
		return Size2i{}
	}
	f, _ := s.currentFont()
	return layoutText(f, scanText(text, s.hw.ColorMode, s.palette.count()), rect, flags).size
}
