package proximity

import (
	"math/rand"
	"testing"
)

func line(xs ...float32) []Point {
	pts := make([]Point, len(xs))
	for i, x := range xs {
		pts[i] = Point{X: x, Y: float32(i)}
	}
	return pts
}

func TestSearchReferenceWindow(t *testing.T) {
	ix := Build(line(0, 1, 2, 3, 4), ReferenceOptions)

	w, ok := ix.Search(2.0, 1.0)
	if !ok {
		t.Fatal("Search found no window")
	}
	if w.L != 1 || w.R != 3 {
		t.Errorf("window = [%d, %d], want [1, 3]", w.L, w.R)
	}
}

func TestRangeConventions(t *testing.T) {
	pts := line(0, 1, 2, 3, 4)
	tests := []struct {
		name  string
		conv  Convention
		wantX []float32
	}{
		{"exclude right", ExcludeRight, []float32{1, 2}},
		{"include right", IncludeRight, []float32{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := Build(pts, Options{Convention: tt.conv, MinPoints: 2})
			got := ix.Range(2.0, 1.0)
			if len(got) != len(tt.wantX) {
				t.Fatalf("Range returned %d markers, want %d", len(got), len(tt.wantX))
			}
			for i, p := range got {
				if p.X != tt.wantX[i] {
					t.Errorf("marker %d x = %v, want %v", i, p.X, tt.wantX[i])
				}
			}
		})
	}
}

func TestSearchDegenerate(t *testing.T) {
	tests := []struct {
		name   string
		pts    []Point
		min    int
		wantOK bool
		want   Window
	}{
		{"empty", nil, 2, false, Window{}},
		{"single marker, reference", line(5), 2, false, Window{}},
		{"single marker, min 1", line(5), 1, true, Window{0, 0}},
		{"two markers", line(5, 5.5), 2, true, Window{0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ix := Build(tt.pts, Options{MinPoints: tt.min})
			w, ok := ix.Search(5, 1)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && w != tt.want {
				t.Errorf("window = %+v, want %+v", w, tt.want)
			}
			if ix.Degenerate() == tt.wantOK && len(tt.pts) > 0 {
				t.Errorf("Degenerate = %v with %d markers and min %d", ix.Degenerate(), len(tt.pts), tt.min)
			}
		})
	}
}

func TestSearchNoneInRange(t *testing.T) {
	ix := Build(line(0, 1, 2, 10, 11), ReferenceOptions)
	for _, q := range []float32{-5, 5, 6, 20} {
		if w, ok := ix.Search(q, 1); ok {
			t.Errorf("Search(%v) = %+v, want none", q, w)
		}
	}
	if _, ok := ix.Search(1, -1); ok {
		t.Error("negative limit returned a window")
	}
}

func TestSearchEdges(t *testing.T) {
	ix := Build(line(0, 1, 2, 3, 4), ReferenceOptions)
	tests := []struct {
		q, limit float32
		want     Window
	}{
		{0, 1, Window{0, 1}},
		{4, 1, Window{3, 4}},
		{2, 10, Window{0, 4}},
		{2.5, 0.5, Window{2, 3}},
		{3, 0, Window{3, 3}},
	}
	for _, tt := range tests {
		w, ok := ix.Search(tt.q, tt.limit)
		if !ok || w != tt.want {
			t.Errorf("Search(%v, %v) = %+v, %v; want %+v", tt.q, tt.limit, w, ok, tt.want)
		}
	}
}

func TestRebuildSortsCopy(t *testing.T) {
	src := line(3, 1, 4, 1, 5, 9, 2, 6)
	ix := NewIndex(ReferenceOptions)
	ix.Rebuild(src)

	if src[0].X != 3 {
		t.Error("Rebuild modified the caller's slice")
	}
	pts := ix.Points()
	for i := 1; i < len(pts); i++ {
		if pts[i-1].X > pts[i].X {
			t.Fatalf("points not sorted at %d: %v > %v", i, pts[i-1].X, pts[i].X)
		}
	}
	// Stable: the two x=1 markers keep their input order (Y = input index).
	if pts[0].Y != 1 || pts[1].Y != 3 {
		t.Errorf("equal-x order = %v, %v; want 1, 3", pts[0].Y, pts[1].Y)
	}

	ix.Rebuild(line(7))
	if ix.Len() != 1 {
		t.Errorf("Len after second Rebuild = %d, want 1", ix.Len())
	}
}

// TestSearchMatchesScan checks the binary searches against a linear scan.
func TestSearchMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 2000; trial++ {
		n := rng.Intn(40)
		pts := make([]Point, n)
		for i := range pts {
			// Coarse grid so duplicates and exact-boundary hits occur.
			pts[i] = Point{X: float32(rng.Intn(50)) / 2}
		}
		ix := Build(pts, Options{MinPoints: 1})
		q := float32(rng.Intn(60))/2 - 2
		limit := float32(rng.Intn(8)) / 2

		l, r := -1, -1
		for i, p := range ix.Points() {
			d := p.X - q
			if d < 0 {
				d = -d
			}
			if d <= limit {
				if l < 0 {
					l = i
				}
				r = i
			}
		}

		w, ok := ix.Search(q, limit)
		if ok != (l >= 0) {
			t.Fatalf("trial %d: ok = %v, scan found l=%d", trial, ok, l)
		}
		if ok && (w.L != l || w.R != r) {
			t.Fatalf("trial %d: window %+v, scan [%d, %d]", trial, w, l, r)
		}
	}
}

func TestParseConvention(t *testing.T) {
	if c, err := ParseConvention("include_right"); err != nil || c != IncludeRight {
		t.Errorf("ParseConvention(include_right) = %v, %v", c, err)
	}
	if c, err := ParseConvention(""); err != nil || c != ExcludeRight {
		t.Errorf("ParseConvention(\"\") = %v, %v", c, err)
	}
	if _, err := ParseConvention("sideways"); err == nil {
		t.Error("ParseConvention accepted an unknown name")
	}
}

func BenchmarkSearch(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	pts := make([]Point, 4096)
	for i := range pts {
		pts[i] = Point{X: rng.Float32() * 1280, Y: rng.Float32() * 720}
	}
	ix := Build(pts, ReferenceOptions)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ix.Search(float32(i%1280), 10)
	}
}
