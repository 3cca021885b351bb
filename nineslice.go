package retro

// NineSlicePart names one cell of the 3x3 nine-slice grid, row-major.
type NineSlicePart int

const (
	NineTopLeft NineSlicePart = iota
	NineTop
	NineTopRight
	NineLeft
	NineMiddle
	NineRight
	NineBottomLeft
	NineBottom
	NineBottomRight
)

// NineSlice describes a scalable frame: nine source rectangles on the active
// sprite sheet, each drawn with its own orientation.
type NineSlice struct {
	Src    [9]Rect2i
	Orient [9]Orientation
}

// NinePiece is one positioned cell produced by NineSlice.Compose.
type NinePiece struct {
	Src    Rect2i
	Dst    Rect2i
	Orient Orientation
}

// NewNineSlice builds a nine-slice from explicit parts and orientation flags.
func NewNineSlice(src [9]Rect2i, flags [9]Flags) NineSlice {
	ns := NineSlice{Src: src}
	for i, f := range flags {
		ns.Orient[i] = f.Orientation()
	}
	return ns
}

// NewNineSliceSimple derives all nine parts from one top-left corner, one top
// side and the middle. The other corners mirror the top-left one and the other
// sides are the top side flipped or turned so its outer edge faces outward.
func NewNineSliceSimple(corner, side, middle Rect2i) NineSlice {
	return NewNineSlice(
		[9]Rect2i{
			corner, side, corner,
			side, middle, side,
			corner, side, corner,
		},
		[9]Flags{
			0, 0, FlipH,
			Rot90CCW, 0, Rot90CW,
			FlipV, FlipV, FlipH | FlipV,
		},
	)
}

// partSize returns the on-screen size of a part.
func (ns NineSlice) partSize(p NineSlicePart) Size2i {
	return ns.Orient[p].DestSize(ns.Src[p].Size())
}

// Grid returns the three column widths and three row heights used to fill
// dst. They always sum to dst's width and height. When dst is narrower than
// the two corner columns, the width is split between them in proportion to
// their native sizes and the middle column is empty; rows behave the same.
func (ns NineSlice) Grid(dst Size2i) (cols, rows [3]int) {
	cols = splitSpan(dst.Width, ns.partSize(NineTopLeft).Width, ns.partSize(NineTopRight).Width)
	rows = splitSpan(dst.Height, ns.partSize(NineTopLeft).Height, ns.partSize(NineBottomLeft).Height)
	return cols, rows
}

func splitSpan(total, a, b int) [3]int {
	if total <= 0 {
		return [3]int{}
	}
	if a+b <= total {
		return [3]int{a, total - a - b, b}
	}
	if a+b == 0 {
		return [3]int{0, total, 0}
	}
	first := total * a / (a + b)
	return [3]int{first, 0, total - first}
}

// Compose lays the nine parts out over dst. Corners keep their native size
// and edges stretch along one axis; the middle stretches along both. Corners
// that do not fit are cropped on their inner side so the outer border pixels
// stay visible. Cells with no area come back with an empty Dst.
func (ns NineSlice) Compose(dst Rect2i) [9]NinePiece {
	var out [9]NinePiece
	if dst.Empty() {
		return out
	}
	cols, rows := ns.Grid(dst.Size())
	xs := [3]int{dst.X, dst.X + cols[0], dst.X + cols[0] + cols[1]}
	ys := [3]int{dst.Y, dst.Y + rows[0], dst.Y + rows[0] + rows[1]}

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			p := NineSlicePart(r*3 + c)
			cell := Rect2i{xs[c], ys[r], cols[c], rows[r]}
			piece := NinePiece{Src: ns.Src[p], Dst: cell, Orient: ns.Orient[p]}
			if cell.Empty() {
				piece.Dst = Rect2i{cell.X, cell.Y, 0, 0}
				out[p] = piece
				continue
			}
			if r != 1 && c != 1 {
				// Corner: anchor the native size at the outer corner, keep what
				// falls inside the cell.
				size := ns.partSize(p)
				full := Rect2i{cell.X, cell.Y, size.Width, size.Height}
				if c == 2 {
					full.X = cell.X + cell.Width - size.Width
				}
				if r == 2 {
					full.Y = cell.Y + cell.Height - size.Height
				}
				if full != cell {
					visible := full.Intersect(cell)
					piece.Src = piece.Orient.ClipSource(piece.Src, full, visible)
					piece.Dst = visible
				}
			}
			out[p] = piece
		}
	}
	return out
}
