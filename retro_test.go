package retro

import (
	"image/color"
	"testing"
)

// --- Vector2i / Size2i ---

func TestVector2i_AddSub(t *testing.T) {
	a, b := V2(3, -4), V2(10, 20)
	if got := a.Add(b); got != V2(13, 16) {
		t.Errorf("Add = %v, want (13, 16)", got)
	}
	if got := a.Sub(b); got != V2(-7, -24) {
		t.Errorf("Sub = %v, want (-7, -24)", got)
	}
}

func TestSize2i_Valid(t *testing.T) {
	tests := []struct {
		size Size2i
		want bool
	}{
		{Sz(1, 1), true},
		{Sz(0, 5), false},
		{Sz(5, 0), false},
		{Sz(-1, 5), false},
	}
	for _, tt := range tests {
		if got := tt.size.Valid(); got != tt.want {
			t.Errorf("%v.Valid() = %v, want %v", tt.size, got, tt.want)
		}
	}
}

// --- Rect2i ---

func TestRect2i_Corners(t *testing.T) {
	r := R(10, 20, 30, 41)
	if r.Min() != V2(10, 20) {
		t.Errorf("Min = %v", r.Min())
	}
	if r.Max() != V2(40, 61) {
		t.Errorf("Max = %v", r.Max())
	}
	if r.Center() != V2(25, 40) {
		t.Errorf("Center = %v, want (25, 40)", r.Center())
	}
	if RectAt(r.Min(), r.Size()) != r {
		t.Error("RectAt(Min, Size) does not round-trip")
	}
}

func TestRect2i_ContainsFarEdgeInclusive(t *testing.T) {
	r := R(0, 0, 10, 10)
	tests := []struct {
		p    Vector2i
		want bool
	}{
		{V2(0, 0), true},
		{V2(10, 10), true},
		{V2(5, 10), true},
		{V2(11, 5), false},
		{V2(-1, 5), false},
	}
	for _, tt := range tests {
		if got := r.Contains(tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestRect2i_IntersectsSharedEdge(t *testing.T) {
	a := R(0, 0, 10, 10)
	if !a.Intersects(R(10, 0, 5, 5)) {
		t.Error("rectangles sharing an edge should intersect")
	}
	if a.Intersects(R(11, 0, 5, 5)) {
		t.Error("disjoint rectangles should not intersect")
	}
}

func TestRect2i_Intersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect2i
		want Rect2i
	}{
		{"overlap", R(0, 0, 10, 10), R(5, 5, 10, 10), R(5, 5, 5, 5)},
		{"inside", R(0, 0, 10, 10), R(2, 2, 3, 3), R(2, 2, 3, 3)},
		{"disjoint x", R(0, 0, 10, 10), R(20, 0, 5, 5), R(20, 0, 0, 5)},
		{"disjoint y", R(0, 0, 10, 10), R(0, 20, 5, 5), R(0, 20, 5, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersect(tt.b)
			if got != tt.want {
				t.Errorf("Intersect = %v, want %v", got, tt.want)
			}
			if got.Width < 0 || got.Height < 0 {
				t.Errorf("negative size %v", got)
			}
		})
	}
}

func TestRect2i_ExpandOffset(t *testing.T) {
	r := R(10, 10, 20, 20)
	if got := r.Expand(2, 3); got != R(8, 7, 24, 26) {
		t.Errorf("Expand = %v", got)
	}
	if got := r.Expand(-5, -5); got != R(15, 15, 10, 10) {
		t.Errorf("shrink = %v", got)
	}
	if got := r.Offset(V2(-10, 5)); got != R(0, 15, 20, 20) {
		t.Errorf("Offset = %v", got)
	}
}

func TestRect2i_Empty(t *testing.T) {
	if !R(0, 0, 0, 5).Empty() || !R(0, 0, 5, -1).Empty() {
		t.Error("zero or negative size should be empty")
	}
	if R(0, 0, 1, 1).Empty() {
		t.Error("1x1 should not be empty")
	}
}

// --- ColorRGBA ---

func TestColorRGBA_At(t *testing.T) {
	c := ColorRGBA{1, 2, 3, 4}
	for i := 0; i < 4; i++ {
		if got := c.At(i); got != uint8(i+1) {
			t.Errorf("At(%d) = %d, want %d", i, got, i+1)
		}
	}
}

func TestColorRGBA_AtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At(4) did not panic")
		}
	}()
	ColorWhite.At(4)
}

func TestColorRGBA_Modulate(t *testing.T) {
	c := ColorRGBA{255, 128, 0, 255}
	if got := c.Modulate(ColorWhite); got != c {
		t.Errorf("white modulate = %v, want %v", got, c)
	}
	if got := c.Modulate(ColorTransparent); got != ColorTransparent {
		t.Errorf("transparent modulate = %v", got)
	}
	if got := ColorWhite.Modulate(ColorRGBA{128, 128, 128, 128}); got != (ColorRGBA{128, 128, 128, 128}) {
		t.Errorf("half modulate = %v", got)
	}
}

func TestColorRGBA_ImplementsColor(t *testing.T) {
	var c color.Color = ColorRGBA{255, 0, 0, 128}
	r, _, _, a := c.RGBA()
	if a != 0x8080 || r != 0x8080 {
		t.Errorf("RGBA() = r %#x a %#x, want premultiplied 0x8080", r, a)
	}
	if got := colorFromColor(c); got != (ColorRGBA{255, 0, 0, 128}) {
		t.Errorf("colorFromColor round trip = %v", got)
	}
}

func TestColorRGBA_String(t *testing.T) {
	if got := (ColorRGBA{255, 0, 77, 255}).String(); got != "#FF004DFF" {
		t.Errorf("String = %q", got)
	}
}

// --- ColorValue ---

func TestColorValue_Kinds(t *testing.T) {
	idx := Index(7)
	if idx.Mode() != ColorModeIndexed {
		t.Errorf("Index mode = %v", idx.Mode())
	}
	if i, ok := idx.PaletteIndex(); !ok || i != 7 {
		t.Errorf("PaletteIndex = %d, %v", i, ok)
	}
	if _, ok := idx.Color(); ok {
		t.Error("index value reported an RGBA color")
	}

	rgb := RGB(1, 2, 3)
	if rgb.Mode() != ColorModeRGB {
		t.Errorf("RGB mode = %v", rgb.Mode())
	}
	if c, ok := rgb.Color(); !ok || c != (ColorRGBA{1, 2, 3, 255}) {
		t.Errorf("Color = %v, %v", c, ok)
	}
	if _, ok := rgb.PaletteIndex(); ok {
		t.Error("RGB value reported a palette index")
	}
}

func TestParseColorMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ColorMode
		wantErr bool
	}{
		{"rgb", ColorModeRGB, false},
		{"indexed", ColorModeIndexed, false},
		{"RGB", ColorModeRGB, false},
		{"hsv", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColorMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColorMode(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseColorMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
