// Package proximity provides a sweep-and-prune index over marker positions.
//
// Markers are sorted by X once per tick. A query narrows a radius search to the
// contiguous run of markers whose X lies within the radius of the query point;
// callers then do exact distance checks on that run only.
package proximity

import (
	"fmt"
	"sort"
	"strings"
)

// Point is a marker position. Only X and Y carry meaning; X is the sort key.
type Point struct {
	X, Y, Z float32
}

// Convention selects whether the marker at a window's right bound is consumed.
type Convention uint8

const (
	// ExcludeRight consumes [L, R). The marker at R satisfies the radius
	// predicate but is skipped, as in the historical simulation.
	ExcludeRight Convention = iota
	// IncludeRight consumes [L, R].
	IncludeRight
)

func (c Convention) String() string {
	switch c {
	case ExcludeRight:
		return "exclude_right"
	case IncludeRight:
		return "include_right"
	}
	return fmt.Sprintf("convention(%d)", uint8(c))
}

// ParseConvention maps a config name to a Convention.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "exclude_right":
		return ExcludeRight, nil
	case "include_right":
		return IncludeRight, nil
	}
	return 0, fmt.Errorf("proximity: unknown window convention %q", s)
}

// Options control the two behaviors callers must choose explicitly.
type Options struct {
	Convention Convention
	// MinPoints is the smallest index size that answers queries. Smaller
	// indexes report no window. The historical value is 2, which ignores a
	// lone in-range marker.
	MinPoints int
}

// ReferenceOptions reproduces the historical simulation.
var ReferenceOptions = Options{Convention: ExcludeRight, MinPoints: 2}

// Window is an inclusive index run [L, R] of markers within the query radius on X.
type Window struct {
	L, R int
}

// Index is an X-sorted set of markers. It is rebuilt single-threaded and is
// safe for concurrent queries once built.
type Index struct {
	opts   Options
	points []Point
}

// NewIndex creates an empty index.
func NewIndex(opts Options) *Index {
	if opts.MinPoints < 1 {
		opts.MinPoints = 1
	}
	return &Index{opts: opts}
}

// Build creates an index over a copy of points.
func Build(points []Point, opts Options) *Index {
	ix := NewIndex(opts)
	ix.Rebuild(points)
	return ix
}

// Rebuild replaces the indexed markers with a sorted copy of points, reusing
// the existing buffer. Order among equal X is stable.
func (ix *Index) Rebuild(points []Point) {
	ix.points = append(ix.points[:0], points...)
	sort.SliceStable(ix.points, func(i, j int) bool {
		return ix.points[i].X < ix.points[j].X
	})
}

// Len returns the number of indexed markers.
func (ix *Index) Len() int { return len(ix.points) }

// Points returns the sorted markers. The slice is shared and must not be modified.
func (ix *Index) Points() []Point { return ix.points }

// Degenerate reports whether the index is too small to answer queries.
func (ix *Index) Degenerate() bool { return len(ix.points) < ix.opts.MinPoints }

// Search finds the maximal run of markers with |x - qx| <= limit.
// It returns false when the index is degenerate or no marker is in range.
func (ix *Index) Search(qx, limit float32) (Window, bool) {
	if ix.Degenerate() || limit < 0 {
		return Window{}, false
	}
	r, ok := ix.rightEdge(qx, limit)
	if !ok {
		return Window{}, false
	}
	l, ok := ix.leftEdge(qx, limit, r)
	if !ok {
		return Window{}, false
	}
	return Window{L: l, R: r}, true
}

// Span converts w into half-open slice bounds for the configured convention.
func (ix *Index) Span(w Window) (start, end int) {
	if ix.opts.Convention == IncludeRight {
		return w.L, w.R + 1
	}
	return w.L, w.R
}

// Range returns the markers a caller should consume for a query, or nil.
func (ix *Index) Range(qx, limit float32) []Point {
	w, ok := ix.Search(qx, limit)
	if !ok {
		return nil
	}
	start, end := ix.Span(w)
	return ix.points[start:end]
}

func (ix *Index) within(i int, qx, limit float32) bool {
	d := ix.points[i].X - qx
	if d < 0 {
		d = -d
	}
	return d <= limit
}

// rightEdge finds the last in-range index: one whose successor is out of range
// or absent.
func (ix *Index) rightEdge(qx, limit float32) (int, bool) {
	lo, hi := 0, len(ix.points)-1
	last := len(ix.points) - 1
	for lo <= hi {
		m := lo + (hi-lo)/2
		in := ix.within(m, qx, limit)
		switch {
		case in && (m == last || !ix.within(m+1, qx, limit)):
			return m, true
		case in || ix.points[m].X < qx:
			lo = m + 1
		default:
			hi = m - 1
		}
	}
	return 0, false
}

// leftEdge finds the first in-range index in [0, r]: one whose predecessor is
// out of range or absent.
func (ix *Index) leftEdge(qx, limit float32, r int) (int, bool) {
	lo, hi := 0, r
	for lo <= hi {
		m := lo + (hi-lo)/2
		in := ix.within(m, qx, limit)
		switch {
		case in && (m == 0 || !ix.within(m-1, qx, limit)):
			return m, true
		case in || ix.points[m].X > qx:
			hi = m - 1
		default:
			lo = m + 1
		}
	}
	return 0, false
}
