package retro

import "math"

// lineRuns rasterizes the line from a to b (both ends included) with
// Bresenham's algorithm and merges consecutive pixels into runs: horizontal
// runs for shallow lines, vertical runs for steep ones.
func lineRuns(a, b Vector2i) []Rect2i {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	steep := -dy > dx
	err := dx + dy

	var runs []Rect2i
	x, y := a.X, a.Y
	run := Rect2i{x, y, 1, 1}
	for x != b.X || y != b.Y {
		e2 := 2 * err
		movedX, movedY := false, false
		if e2 >= dy {
			err += dy
			x += sx
			movedX = true
		}
		if e2 <= dx {
			err += dx
			y += sy
			movedY = true
		}
		switch {
		case !steep && !movedY:
			// Same row: grow the run toward x.
			run = spanUnion(run, Rect2i{x, y, 1, 1})
		case steep && !movedX:
			run = spanUnion(run, Rect2i{x, y, 1, 1})
		default:
			runs = append(runs, run)
			run = Rect2i{x, y, 1, 1}
		}
	}
	return append(runs, run)
}

// spanUnion returns the smallest rectangle covering a and b.
func spanUnion(a, b Rect2i) Rect2i {
	x0, y0 := min(a.X, b.X), min(a.Y, b.Y)
	x1 := max(a.X+a.Width, b.X+b.Width)
	y1 := max(a.Y+a.Height, b.Y+b.Height)
	return Rect2i{x0, y0, x1 - x0, y1 - y0}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// ellipseHalfWidth is the half-width of the row dy rows away from the center
// of an ellipse with radii rx, ry. Rows outside the ellipse return -1.
func ellipseHalfWidth(rx, ry, dy int) int {
	if dy > ry {
		return -1
	}
	t := float64(dy) / (float64(ry) + 0.5)
	return int(math.Floor((float64(rx) + 0.5) * math.Sqrt(1-t*t)))
}

// ellipseSpans returns the horizontal spans covering an ellipse centered on
// the origin. Filled ellipses get one span per row; outlines get the one or
// two edge spans of each row, sized so consecutive rows stay connected.
func ellipseSpans(rx, ry int, fill bool) []Rect2i {
	spans := make([]Rect2i, 0, 2*(2*ry+1))
	for dy := -ry; dy <= ry; dy++ {
		outer := ellipseHalfWidth(rx, ry, abs(dy))
		if fill {
			spans = append(spans, Rect2i{-outer, dy, 2*outer + 1, 1})
			continue
		}
		inner := ellipseHalfWidth(rx, ry, abs(dy)+1) + 1
		if inner > outer {
			inner = outer
		}
		if inner <= 0 {
			spans = append(spans, Rect2i{-outer, dy, 2*outer + 1, 1})
			continue
		}
		w := outer - inner + 1
		spans = append(spans,
			Rect2i{-outer, dy, w, 1},
			Rect2i{inner, dy, w, 1},
		)
	}
	return spans
}

// rectOutline returns the non-overlapping one pixel edges of r.
func rectOutline(r Rect2i) []Rect2i {
	if r.Empty() {
		return nil
	}
	if r.Width <= 2 || r.Height <= 2 {
		return []Rect2i{r}
	}
	return []Rect2i{
		{r.X, r.Y, r.Width, 1},
		{r.X, r.Y + r.Height - 1, r.Width, 1},
		{r.X, r.Y + 1, 1, r.Height - 2},
		{r.X + r.Width - 1, r.Y + 1, 1, r.Height - 2},
	}
}
