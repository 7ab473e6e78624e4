// Package geometry is the BPMN layout pipeline's geometry kernel:
// pure functions over points, bounds, and orthogonal segments used by
// every downstream stage. Nothing here holds state.
package geometry

import (
	"math"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// Point and Bounds are aliased from model so geometry functions operate
// directly on the graph's own types without a conversion layer.
type Point = model.Point
type Bounds = model.Bounds

// InteriorMargin shrinks a node's AABB before crossing checks, so that
// segments merely touching the boundary are not treated as crossings.
const InteriorMargin = 5.0

// Distance returns the Euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx, dy := b.X-a.X, b.Y-a.Y
	return math.Hypot(dx, dy)
}

// PolylineLength returns the cumulative length of consecutive points.
func PolylineLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += Distance(pts[i-1], pts[i])
	}
	return total
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Center returns the center point of b.
func Center(b Bounds) Point { return b.Center() }

// Shrink returns b inset by margin on every side. A margin larger than
// half of a dimension collapses that dimension to the center line.
func Shrink(b Bounds, margin float64) Bounds {
	w := b.Width - 2*margin
	h := b.Height - 2*margin
	x, y := b.X+margin, b.Y+margin
	if w < 0 {
		w, x = 0, b.X+b.Width/2
	}
	if h < 0 {
		h, y = 0, b.Y+b.Height/2
	}
	return Bounds{X: x, Y: y, Width: w, Height: h}
}

// Expand returns b grown by margin on every side.
func Expand(b Bounds, margin float64) Bounds {
	return Bounds{X: b.X - margin, Y: b.Y - margin, Width: b.Width + 2*margin, Height: b.Height + 2*margin}
}

// ContainsPoint reports whether p lies within b (inclusive of the boundary).
func ContainsPoint(b Bounds, p Point) bool {
	return p.X >= b.X && p.X <= b.Right() && p.Y >= b.Y && p.Y <= b.Bottom()
}

// BoundsOverlap reports whether a, expanded by margin first, overlaps b
// (b is not expanded).
func BoundsOverlap(a, b Bounds, margin float64) bool {
	a = Expand(a, margin)
	return a.X < b.Right() && a.Right() > b.X && a.Y < b.Bottom() && a.Bottom() > b.Y
}

// SegmentIntersectsRect reports whether the axis-aligned segment p1-p2
// intersects rect (inclusive). The segment must be orthogonal.
func SegmentIntersectsRect(p1, p2 Point, rect Bounds) bool {
	minX, maxX := math.Min(p1.X, p2.X), math.Max(p1.X, p2.X)
	minY, maxY := math.Min(p1.Y, p2.Y), math.Max(p1.Y, p2.Y)
	return minX <= rect.Right() && maxX >= rect.X && minY <= rect.Bottom() && maxY >= rect.Y
}

// SegmentCrossesStrictInterior reports whether segment p1-p2 passes through
// the strict interior of node (its AABB shrunk by InteriorMargin), as
// opposed to merely grazing the boundary.
func SegmentCrossesStrictInterior(p1, p2 Point, node Bounds) bool {
	interior := Shrink(node, InteriorMargin)
	if interior.Width <= 0 || interior.Height <= 0 {
		return false
	}
	return SegmentIntersectsRect(p1, p2, interior)
}

// Side names a rectangle's boundary side for connection-point purposes.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// ConnectionPoint returns the point where the perpendicular from the
// center of b crosses side.
func ConnectionPoint(b Bounds, side Side) Point {
	c := Center(b)
	switch side {
	case SideTop:
		return Point{X: c.X, Y: b.Y}
	case SideBottom:
		return Point{X: c.X, Y: b.Bottom()}
	case SideLeft:
		return Point{X: b.X, Y: c.Y}
	case SideRight:
		return Point{X: b.Right(), Y: c.Y}
	default:
		return c
	}
}

// BestConnectionSides picks the (source, target) sides to connect from's
// and to's centers by their relative position: the axis with the larger
// absolute delta decides whether the connection is primarily horizontal or
// vertical.
func BestConnectionSides(from, to Bounds) (fromSide, toSide Side) {
	fc, tc := Center(from), Center(to)
	dx, dy := tc.X-fc.X, tc.Y-fc.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			return SideRight, SideLeft
		}
		return SideLeft, SideRight
	}
	if dy >= 0 {
		return SideBottom, SideTop
	}
	return SideTop, SideBottom
}

// OrthogonalPath builds an L-shaped path between start and end: a
// horizontal segment from start followed by a vertical segment into end
// (horizontal-first is the pipeline's standing convention).
func OrthogonalPath(start, end Point) []Point {
	if start.X == end.X || start.Y == end.Y {
		return []Point{start, end}
	}
	bend := Point{X: end.X, Y: start.Y}
	return []Point{start, bend, end}
}

// RouteScore scores a candidate path by crossing penalty plus a small
// length term, for comparing pathfinder/reroute candidates. Lower is
// better.
func RouteScore(pts []Point, crossings int) float64 {
	return float64(crossings)*1000 + PolylineLength(pts)*0.1
}

// IsOrthogonal reports whether every consecutive pair in pts is axis
// aligned within epsilon.
func IsOrthogonal(pts []Point, epsilon float64) bool {
	for i := 1; i < len(pts); i++ {
		dx := math.Abs(pts[i].X - pts[i-1].X)
		dy := math.Abs(pts[i].Y - pts[i-1].Y)
		if dx > epsilon && dy > epsilon {
			return false
		}
	}
	return true
}

// ClearVerticalPath reports whether the vertical segment at x between y1
// and y2 clears every obstacle in obstacles (none of their AABBs, grown by
// margin, intersect the segment).
func ClearVerticalPath(x, y1, y2 float64, obstacles []Bounds, margin float64) bool {
	lo, hi := math.Min(y1, y2), math.Max(y1, y2)
	for _, ob := range obstacles {
		ob = Expand(ob, margin)
		if x >= ob.X && x <= ob.Right() && lo <= ob.Bottom() && hi >= ob.Y {
			return false
		}
	}
	return true
}

// ClearHorizontalPath reports whether the horizontal segment at y between
// x1 and x2 clears every obstacle in obstacles.
func ClearHorizontalPath(y, x1, x2 float64, obstacles []Bounds, margin float64) bool {
	lo, hi := math.Min(x1, x2), math.Max(x1, x2)
	for _, ob := range obstacles {
		ob = Expand(ob, margin)
		if y >= ob.Y && y <= ob.Bottom() && lo <= ob.Right() && hi >= ob.X {
			return false
		}
	}
	return true
}

// EnsureOrthogonalWaypoints rewrites any diagonal segment in pts into an L,
// inserting a bend at (next.x, current.y), horizontal-first, so every
// resulting segment is axis aligned.
func EnsureOrthogonalWaypoints(pts []Point) []Point {
	if len(pts) < 2 {
		return pts
	}
	out := []Point{pts[0]}
	for i := 1; i < len(pts); i++ {
		prev := out[len(out)-1]
		cur := pts[i]
		if prev.X != cur.X && prev.Y != cur.Y {
			out = append(out, Point{X: cur.X, Y: prev.Y})
		}
		out = append(out, cur)
	}
	return out
}

// CollapseCollinear removes interior points that lie on the same line as
// their neighbors, leaving only true bend points.
func CollapseCollinear(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	out := []Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := out[len(out)-1], pts[i], pts[i+1]
		sameLine := (prev.X == cur.X && cur.X == next.X) || (prev.Y == cur.Y && cur.Y == next.Y)
		if !sameLine {
			out = append(out, cur)
		}
	}
	out = append(out, pts[len(pts)-1])
	return out
}
