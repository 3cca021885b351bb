package retro

import "testing"

func area(rs []Rect2i) (n int) {
	for _, r := range rs {
		n += r.Width * r.Height
	}
	return n
}

// --- lineRuns ---

func TestLineRuns(t *testing.T) {
	tests := []struct {
		name string
		a, b Vector2i
		want []Rect2i
	}{
		{"point", V2(1, 1), V2(1, 1), []Rect2i{R(1, 1, 1, 1)}},
		{"horizontal", V2(0, 0), V2(3, 0), []Rect2i{R(0, 0, 4, 1)}},
		{"horizontal reversed", V2(3, 0), V2(0, 0), []Rect2i{R(0, 0, 4, 1)}},
		{"vertical up", V2(2, 5), V2(2, 1), []Rect2i{R(2, 1, 1, 5)}},
		{"shallow", V2(0, 0), V2(5, 2), []Rect2i{R(0, 0, 2, 1), R(2, 1, 2, 1), R(4, 2, 2, 1)}},
		{"diagonal", V2(0, 0), V2(2, 2), []Rect2i{R(0, 0, 1, 1), R(1, 1, 1, 1), R(2, 2, 1, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lineRuns(tt.a, tt.b)
			if len(got) != len(tt.want) {
				t.Fatalf("runs = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("run %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestLineRuns_SteepCoversEveryRow(t *testing.T) {
	runs := lineRuns(V2(0, 0), V2(2, 7))
	rows := make(map[int]bool)
	for _, r := range runs {
		if r.Width != 1 {
			t.Errorf("steep run %v is not vertical", r)
		}
		for y := r.Y; y < r.Y+r.Height; y++ {
			if rows[y] {
				t.Errorf("row %d covered twice", y)
			}
			rows[y] = true
		}
	}
	if len(rows) != 8 {
		t.Errorf("rows covered = %d, want 8", len(rows))
	}
}

// --- ellipseSpans ---

func TestEllipseSpans_Single(t *testing.T) {
	for _, fill := range []bool{true, false} {
		got := ellipseSpans(0, 0, fill)
		if len(got) != 1 || got[0] != R(0, 0, 1, 1) {
			t.Errorf("fill=%v spans = %v", fill, got)
		}
	}
}

func TestEllipseSpans_Filled(t *testing.T) {
	got := ellipseSpans(2, 1, true)
	want := []Rect2i{R(-1, -1, 3, 1), R(-2, 0, 5, 1), R(-1, 1, 3, 1)}
	if len(got) != len(want) {
		t.Fatalf("spans = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEllipseSpans_OutlineInsideFill(t *testing.T) {
	fill := ellipseSpans(5, 3, true)
	rows := make(map[int]Rect2i)
	for _, r := range fill {
		rows[r.Y] = r
	}
	outline := ellipseSpans(5, 3, false)
	for _, r := range outline {
		if row, ok := rows[r.Y]; !ok || row.Intersect(r) != r {
			t.Errorf("outline span %v outside the filled row %v", r, row)
		}
	}
	if area(outline) >= area(fill) {
		t.Errorf("outline area %d not below fill area %d", area(outline), area(fill))
	}
}

func TestEllipseSpans_OutlineEdges(t *testing.T) {
	spans := ellipseSpans(5, 3, false)
	// Top and bottom rows are solid, the middle row has one pixel per side.
	if spans[0].Y != -3 || spans[0].X != -spans[0].Width/2 {
		t.Errorf("top span = %v", spans[0])
	}
	var middle []Rect2i
	for _, r := range spans {
		if r.Y == 0 {
			middle = append(middle, r)
		}
	}
	if len(middle) != 2 || middle[0] != R(-5, 0, 1, 1) || middle[1] != R(5, 0, 1, 1) {
		t.Errorf("middle row = %v", middle)
	}
}

// --- rectOutline ---

func TestRectOutline(t *testing.T) {
	if rectOutline(R(0, 0, 0, 5)) != nil {
		t.Error("empty rect has an outline")
	}
	if got := rectOutline(R(3, 3, 2, 9)); len(got) != 1 || got[0] != R(3, 3, 2, 9) {
		t.Errorf("thin rect outline = %v", got)
	}
	got := rectOutline(R(1, 2, 5, 4))
	want := []Rect2i{R(1, 2, 5, 1), R(1, 5, 5, 1), R(1, 3, 1, 2), R(5, 3, 1, 2)}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d = %v, want %v", i, got[i], want[i])
		}
	}
	if area(got) != 14 {
		t.Errorf("outline area = %d, want 14", area(got))
	}
}
