package geometry

import "math"

// cornerEpsilon is the tolerance for "already at a diamond corner".
const cornerEpsilon = 1.0

// AdjustToDiamond projects an orthogonal endpoint onto the gateway's
// diamond border. Gateways render as diamonds inscribed in their
// bounding box b; an edge endpoint that lands on the box boundary must be
// moved onto the diamond edge equation |x-cx|/(w/2) + |y-cy|/(h/2) = 1.
//
// adjacent is the waypoint preceding (for a target endpoint) or following
// (for a source endpoint) p, used to pick a corner when p lies off every
// side of b.
func AdjustToDiamond(p Point, b Bounds, adjacent Point) Point {
	c := Center(b)
	hw, hh := b.Width/2, b.Height/2
	if hw == 0 || hh == 0 {
		return p
	}

	corners := []Point{
		{X: c.X, Y: b.Y},      // top
		{X: b.Right(), Y: c.Y}, // right
		{X: c.X, Y: b.Bottom()}, // bottom
		{X: b.X, Y: c.Y},        // left
	}
	for _, corner := range corners {
		if math.Abs(corner.X-p.X) <= cornerEpsilon && math.Abs(corner.Y-p.Y) <= cornerEpsilon {
			return corner
		}
	}

	onTop := math.Abs(p.Y-b.Y) < 0.5 && p.X >= b.X && p.X <= b.Right()
	onBottom := math.Abs(p.Y-b.Bottom()) < 0.5 && p.X >= b.X && p.X <= b.Right()
	onLeft := math.Abs(p.X-b.X) < 0.5 && p.Y >= b.Y && p.Y <= b.Bottom()
	onRight := math.Abs(p.X-b.Right()) < 0.5 && p.Y >= b.Y && p.Y <= b.Bottom()

	switch {
	case onTop || onBottom:
		// Solve for x given the known y: |x-cx|/hw = 1 - |y-cy|/hh.
		rem := 1 - math.Abs(p.Y-c.Y)/hh
		if rem < 0 {
			rem = 0
		}
		dx := rem * hw
		if p.X >= c.X {
			return Point{X: c.X + dx, Y: p.Y}
		}
		return Point{X: c.X - dx, Y: p.Y}
	case onLeft || onRight:
		rem := 1 - math.Abs(p.X-c.X)/hw
		if rem < 0 {
			rem = 0
		}
		dy := rem * hh
		if p.Y >= c.Y {
			return Point{X: p.X, Y: c.Y + dy}
		}
		return Point{X: p.X, Y: c.Y - dy}
	default:
		return nearestCornerByDirection(p, adjacent, corners)
	}
}

// nearestCornerByDirection picks the diamond corner most aligned with the
// direction from adjacent to p, used when p lies off every box side.
func nearestCornerByDirection(p, adjacent Point, corners []Point) Point {
	dx, dy := p.X-adjacent.X, p.Y-adjacent.Y
	best := corners[0]
	bestScore := math.Inf(-1)
	for _, corner := range corners {
		cx, cy := corner.X-adjacent.X, corner.Y-adjacent.Y
		norm := math.Hypot(cx, cy)
		if norm == 0 {
			continue
		}
		score := (dx*cx + dy*cy) / norm
		if score > bestScore {
			bestScore = score
			best = corner
		}
	}
	return best
}

// OnDiamond reports whether p satisfies the diamond edge equation for b
// within tolerance.
func OnDiamond(p Point, b Bounds, tolerance float64) bool {
	c := Center(b)
	hw, hh := b.Width/2, b.Height/2
	if hw == 0 || hh == 0 {
		return true
	}
	v := math.Abs(p.X-c.X)/hw + math.Abs(p.Y-c.Y)/hh
	return math.Abs(v-1) <= tolerance/math.Min(hw, hh)
}

// ClosestSideByDistance returns the rectangle side closest to p. The fold
// uses it to pick the side handed to EnsurePerpendicularEndpoints, for
// gateways as well as rectangles.
func ClosestSideByDistance(p Point, b Bounds) Side {
	dTop := math.Abs(p.Y - b.Y)
	dBottom := math.Abs(p.Y - b.Bottom())
	dLeft := math.Abs(p.X - b.X)
	dRight := math.Abs(p.X - b.Right())

	side, dist := SideTop, dTop
	if dBottom < dist {
		side, dist = SideBottom, dBottom
	}
	if dLeft < dist {
		side, dist = SideLeft, dLeft
	}
	if dRight < dist {
		side, dist = SideRight, dRight
	}
	return side
}

// EnsurePerpendicularEndpoints checks whether the first/last segment of pts
// is perpendicular to side; if not, it inserts a bend at a fixed standoff
// distance plus a second bend aligning back to the adjacent waypoint, so
// the endpoint segment becomes perpendicular without turning any other
// segment diagonal. atStart controls whether the check applies to the
// path's beginning or end.
func EnsurePerpendicularEndpoints(pts []Point, side Side, atStart bool, standoff float64) []Point {
	if len(pts) < 2 {
		return pts
	}
	if atStart {
		p0, p1 := pts[0], pts[1]
		if perpendicular(p0, p1, side) {
			return pts
		}
		bend := standoffPoint(p0, side, standoff)
		out := append([]Point{p0, bend, alignPoint(bend, p1, side)}, pts[1:]...)
		return out
	}
	n := len(pts)
	pLast, pPrev := pts[n-1], pts[n-2]
	if perpendicular(pPrev, pLast, side) {
		return pts
	}
	bend := standoffPoint(pLast, side, standoff)
	out := append([]Point{}, pts[:n-1]...)
	out = append(out, alignPoint(bend, pPrev, side), bend, pLast)
	return out
}

// alignPoint returns the corner joining the standoff bend to the adjacent
// waypoint with two axis-aligned segments: for a top/bottom side the
// perpendicular run is vertical, so the corner carries the adjacent
// point's X at the bend's Y; for left/right the reverse.
func alignPoint(bend, adjacent Point, side Side) Point {
	switch side {
	case SideTop, SideBottom:
		return Point{X: adjacent.X, Y: bend.Y}
	default:
		return Point{X: bend.X, Y: adjacent.Y}
	}
}

func perpendicular(a, b Point, side Side) bool {
	switch side {
	case SideTop, SideBottom:
		return a.X == b.X
	default:
		return a.Y == b.Y
	}
}

func standoffPoint(p Point, side Side, standoff float64) Point {
	switch side {
	case SideTop:
		return Point{X: p.X, Y: p.Y - standoff}
	case SideBottom:
		return Point{X: p.X, Y: p.Y + standoff}
	case SideLeft:
		return Point{X: p.X - standoff, Y: p.Y}
	case SideRight:
		return Point{X: p.X + standoff, Y: p.Y}
	default:
		return p
	}
}
