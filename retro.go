package retro

import (
	"fmt"
	"image/color"
)

// Vector2i is an integer 2D vector used for positions, offsets and directions.
type Vector2i struct {
	X, Y int
}

// V2 is shorthand for Vector2i{x, y}.
func V2(x, y int) Vector2i {
	return Vector2i{X: x, Y: y}
}

// Add returns v+o.
func (v Vector2i) Add(o Vector2i) Vector2i {
	return Vector2i{v.X + o.X, v.Y + o.Y}
}

// Sub returns v-o.
func (v Vector2i) Sub(o Vector2i) Vector2i {
	return Vector2i{v.X - o.X, v.Y - o.Y}
}

func (v Vector2i) String() string {
	return fmt.Sprintf("(%d, %d)", v.X, v.Y)
}

// Size2i is an integer width/height pair. Sizes are non-negative by
// convention; callers that accept a Size2i reject negative components.
type Size2i struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Sz is shorthand for Size2i{w, h}.
func Sz(w, h int) Size2i {
	return Size2i{Width: w, Height: h}
}

// Valid reports whether both components are positive.
func (s Size2i) Valid() bool {
	return s.Width > 0 && s.Height > 0
}

func (s Size2i) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Rect2i is an integer axis-aligned rectangle. The coordinate system has its
// origin at the top-left, with Y increasing downward.
type Rect2i struct {
	X, Y, Width, Height int
}

// R is shorthand for Rect2i{x, y, w, h}.
func R(x, y, w, h int) Rect2i {
	return Rect2i{X: x, Y: y, Width: w, Height: h}
}

// RectAt returns a rectangle with the given top-left position and size.
func RectAt(pos Vector2i, size Size2i) Rect2i {
	return Rect2i{pos.X, pos.Y, size.Width, size.Height}
}

// Min returns the top-left corner.
func (r Rect2i) Min() Vector2i {
	return Vector2i{r.X, r.Y}
}

// Max returns the far corner (X+Width, Y+Height).
func (r Rect2i) Max() Vector2i {
	return Vector2i{r.X + r.Width, r.Y + r.Height}
}

// Center returns the center point, rounded toward the top-left.
func (r Rect2i) Center() Vector2i {
	return Vector2i{r.X + r.Width/2, r.Y + r.Height/2}
}

// Size returns the rectangle dimensions.
func (r Rect2i) Size() Size2i {
	return Size2i{r.Width, r.Height}
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect2i) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Offset returns r translated by d.
func (r Rect2i) Offset(d Vector2i) Rect2i {
	return Rect2i{r.X + d.X, r.Y + d.Y, r.Width, r.Height}
}

// Expand grows the rectangle by dx on the left and right and by dy on the
// top and bottom, keeping its center in place. Negative values shrink it.
func (r Rect2i) Expand(dx, dy int) Rect2i {
	return Rect2i{r.X - dx, r.Y - dy, r.Width + dx*2, r.Height + dy*2}
}

// Contains reports whether p lies inside the rectangle.
// Points on the far edge (X+Width or Y+Height) are considered inside.
func (r Rect2i) Contains(p Vector2i) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Intersects reports whether r and o overlap. Like Contains, the far edges
// are inclusive, so rectangles sharing only an edge intersect.
func (r Rect2i) Intersects(o Rect2i) bool {
	return r.X <= o.X+o.Width &&
		r.X+r.Width >= o.X &&
		r.Y <= o.Y+o.Height &&
		r.Y+r.Height >= o.Y
}

// Intersect returns the area shared by r and o. When they do not overlap the
// result has zero width or height (never negative) and Empty reports true.
func (r Rect2i) Intersect(o Rect2i) Rect2i {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.Width, o.X+o.Width)
	y1 := min(r.Y+r.Height, o.Y+o.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return Rect2i{x0, y0, x1 - x0, y1 - y0}
}

func (r Rect2i) String() string {
	return fmt.Sprintf("(%d, %d, %d, %d)", r.X, r.Y, r.Width, r.Height)
}

// ColorRGBA is a straight-alpha 8-bit color.
type ColorRGBA struct {
	R, G, B, A uint8
}

// Predefined colors.
var (
	ColorWhite       = ColorRGBA{255, 255, 255, 255}
	ColorBlack       = ColorRGBA{0, 0, 0, 255}
	ColorTransparent = ColorRGBA{}
)

// At returns component i (0=R, 1=G, 2=B, 3=A). It panics for any other index,
// like an out-of-range array access.
func (c ColorRGBA) At(i int) uint8 {
	switch i {
	case 0:
		return c.R
	case 1:
		return c.G
	case 2:
		return c.B
	case 3:
		return c.A
	}
	panic(fmt.Sprintf("retro: color component %d out of range [0, 3]", i))
}

// RGBA implements color.Color. The result is alpha-premultiplied as the
// interface requires.
func (c ColorRGBA) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{c.R, c.G, c.B, c.A}.RGBA()
}

// Modulate multiplies two colors component-wise.
func (c ColorRGBA) Modulate(o ColorRGBA) ColorRGBA {
	return ColorRGBA{
		R: mul8(c.R, o.R),
		G: mul8(c.G, o.G),
		B: mul8(c.B, o.B),
		A: mul8(c.A, o.A),
	}
}

func (c ColorRGBA) String() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// mul8 multiplies two 0-255 values as if they were in [0, 1], rounding.
func mul8(a, b uint8) uint8 {
	return uint8((uint16(a)*uint16(b) + 127) / 255)
}

// colorFromColor converts any color.Color to a straight-alpha ColorRGBA.
func colorFromColor(c color.Color) ColorRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ColorRGBA{n.R, n.G, n.B, n.A}
}
