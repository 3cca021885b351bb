package retro

import "fmt"

// Flags is the historical orientation bitmask accepted by draw calls. Only
// the three primitive bits are meaningful; the composite constants are bit-ORs
// of those primitives, not additional bits.
type Flags uint8

const (
	FlipH   Flags = 1 << iota // mirror across the vertical axis
	FlipV                     // mirror across the horizontal axis
	Rot90CW                   // rotate 90 degrees clockwise, applied after flips

	Rot180CW  = FlipH | FlipV
	Rot270CW  = FlipH | FlipV | Rot90CW
	Rot90CCW  = Rot270CW
	Rot180CCW = Rot180CW
	Rot270CCW = Rot90CW

	flagsMask = FlipH | FlipV | Rot90CW
)

// Orientation is one of the 8 axis-aligned symmetries of a rectangle (the
// dihedral group D4). Unlike Flags it cannot hold an undefined combination.
type Orientation uint8

const (
	OrientNone       Orientation = iota // identity
	OrientRot90CW                       // quarter turn clockwise
	OrientRot180                        // half turn
	OrientRot270CW                      // quarter turn counter-clockwise
	OrientFlipH                         // mirror left/right
	OrientFlipV                         // mirror top/bottom
	OrientTranspose                     // mirror across the main diagonal
	OrientTransverse                    // mirror across the anti-diagonal

	orientationCount = 8
)

// flagsToOrientation is indexed by the 3 primitive bits.
var flagsToOrientation = [8]Orientation{
	0:                       OrientNone,
	FlipH:                   OrientFlipH,
	FlipV:                   OrientFlipV,
	FlipH | FlipV:           OrientRot180,
	Rot90CW:                 OrientRot90CW,
	FlipH | Rot90CW:         OrientTransverse,
	FlipV | Rot90CW:         OrientTranspose,
	FlipH | FlipV | Rot90CW: OrientRot270CW,
}

var orientationToFlags = [orientationCount]Flags{
	OrientNone:       0,
	OrientRot90CW:    Rot90CW,
	OrientRot180:     FlipH | FlipV,
	OrientRot270CW:   FlipH | FlipV | Rot90CW,
	OrientFlipH:      FlipH,
	OrientFlipV:      FlipV,
	OrientTranspose:  FlipV | Rot90CW,
	OrientTransverse: FlipH | Rot90CW,
}

// Corner indices used by the orientation tables.
const (
	cornerTL = 0
	cornerTR = 1
	cornerBL = 2
	cornerBR = 3
)

// orientCorners maps each destination corner (TL, TR, BL, BR) to the source
// corner sampled there. Flips are applied first, then the rotation.
var orientCorners = [orientationCount][4]int{
	OrientNone:       {0, 1, 2, 3},
	OrientRot90CW:    {2, 0, 3, 1},
	OrientRot180:     {3, 2, 1, 0},
	OrientRot270CW:   {1, 3, 0, 2},
	OrientFlipH:      {1, 0, 3, 2},
	OrientFlipV:      {2, 3, 0, 1},
	OrientTranspose:  {0, 2, 1, 3},
	OrientTransverse: {3, 1, 2, 0},
}

// Orientation converts the bitmask to its orientation. Bits outside the three
// primitives are ignored.
func (f Flags) Orientation() Orientation {
	return flagsToOrientation[f&flagsMask]
}

// Valid reports whether f only uses the three defined bits.
func (f Flags) Valid() bool {
	return f&^flagsMask == 0
}

// Flags returns the canonical bitmask for o.
func (o Orientation) Flags() Flags {
	if o >= orientationCount {
		return 0
	}
	return orientationToFlags[o]
}

// Rotated reports whether o swaps the width and height of the source.
func (o Orientation) Rotated() bool {
	return o.Flags()&Rot90CW != 0
}

// Corners returns, for destination corners TL, TR, BL, BR, the index of the
// source corner drawn there (0=TL, 1=TR, 2=BL, 3=BR).
func (o Orientation) Corners() [4]int {
	if o >= orientationCount {
		return orientCorners[OrientNone]
	}
	return orientCorners[o]
}

// UV returns the source-space coordinates sampled at destination corners
// TL, TR, BL, BR when src is drawn with orientation o.
func (o Orientation) UV(src Rect2i) [4]Vector2i {
	pts := [4]Vector2i{
		{src.X, src.Y},
		{src.X + src.Width, src.Y},
		{src.X, src.Y + src.Height},
		{src.X + src.Width, src.Y + src.Height},
	}
	c := o.Corners()
	return [4]Vector2i{pts[c[0]], pts[c[1]], pts[c[2]], pts[c[3]]}
}

// DestSize returns the footprint of src once drawn with orientation o: a
// quarter turn swaps width and height.
func (o Orientation) DestSize(src Size2i) Size2i {
	if o.Rotated() {
		return Size2i{src.Height, src.Width}
	}
	return src
}

// Compose returns the orientation equivalent to applying o and then next.
func (o Orientation) Compose(next Orientation) Orientation {
	a, b := o.Corners(), next.Corners()
	var c [4]int
	for i := range c {
		c[i] = a[b[i]]
	}
	for k, v := range orientCorners {
		if v == c {
			return Orientation(k)
		}
	}
	return OrientNone
}

func (o Orientation) String() string {
	switch o {
	case OrientNone:
		return "none"
	case OrientRot90CW:
		return "rot90cw"
	case OrientRot180:
		return "rot180"
	case OrientRot270CW:
		return "rot270cw"
	case OrientFlipH:
		return "fliph"
	case OrientFlipV:
		return "flipv"
	case OrientTranspose:
		return "transpose"
	case OrientTransverse:
		return "transverse"
	}
	return fmt.Sprintf("Orientation(%d)", uint8(o))
}

// Edge indices shared by ClipSource.
const (
	edgeLeft = iota
	edgeTop
	edgeRight
	edgeBottom
)

// cornerEdge returns the source edge joining two source corners.
// Bit 0 of a corner index is right/left, bit 1 is bottom/top.
func cornerEdge(a, b int) int {
	if a&1 == b&1 {
		if a&1 == 0 {
			return edgeLeft
		}
		return edgeRight
	}
	if a&2 == 0 {
		return edgeTop
	}
	return edgeBottom
}

// ClipSource returns the part of src that lands inside visible when src is
// drawn into dst with orientation o. visible must lie within dst. Insets are
// scaled from destination to source pixels and rounded toward the kept area.
func (o Orientation) ClipSource(src, dst, visible Rect2i) Rect2i {
	if dst.Empty() || visible.Empty() {
		return Rect2i{src.X, src.Y, 0, 0}
	}
	if visible == dst {
		return src
	}
	c := o.Corners()

	// Destination insets and the source edge each destination edge samples.
	insets := [4]int{
		edgeLeft:   visible.X - dst.X,
		edgeTop:    visible.Y - dst.Y,
		edgeRight:  dst.X + dst.Width - visible.X - visible.Width,
		edgeBottom: dst.Y + dst.Height - visible.Y - visible.Height,
	}
	srcEdge := [4]int{
		edgeLeft:   cornerEdge(c[cornerTL], c[cornerBL]),
		edgeTop:    cornerEdge(c[cornerTL], c[cornerTR]),
		edgeRight:  cornerEdge(c[cornerTR], c[cornerBR]),
		edgeBottom: cornerEdge(c[cornerBL], c[cornerBR]),
	}

	// Source extent that spans the destination width and height.
	spanW, spanH := src.Width, src.Height
	if o.Rotated() {
		spanW, spanH = src.Height, src.Width
	}

	var srcInsets [4]int
	for e, in := range insets {
		if in <= 0 {
			continue
		}
		if e == edgeLeft || e == edgeRight {
			srcInsets[srcEdge[e]] = in * spanW / dst.Width
		} else {
			srcInsets[srcEdge[e]] = in * spanH / dst.Height
		}
	}

	out := Rect2i{
		X:      src.X + srcInsets[edgeLeft],
		Y:      src.Y + srcInsets[edgeTop],
		Width:  src.Width - srcInsets[edgeLeft] - srcInsets[edgeRight],
		Height: src.Height - srcInsets[edgeTop] - srcInsets[edgeBottom],
	}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}
