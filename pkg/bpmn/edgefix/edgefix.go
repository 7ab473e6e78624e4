// Package edgefix implements the pipeline's edge-crossing repair stage:
// for every edge routed within a container, it detects segments
// that pass through a sibling node's interior and reroutes around them,
// choosing a strategy by the relative quadrant of source and target.
package edgefix

import (
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/pathfind"
)

// Obstacle is a flow node available as a crossing target within a
// container, keyed by id so the edge's own endpoints can be excluded.
type Obstacle struct {
	ID     string
	Bounds model.Bounds
}

// FixEdge checks edge's current waypoints against obstacles (every flow
// node sharing the edge's container except its own source/target and any
// boundary events) and reroutes it if a segment crosses a non-endpoint
// interior. sourceBounds/targetBounds are the endpoints' absolute
// bounds. Returns the corrected waypoints and whether routing had to fall
// back to the grid A* router because the quadrant heuristic in reroute
// could not find a clear routeX/routeY (recovered locally, never fatal);
// the edge itself is not mutated.
func FixEdge(sourceID, targetID string, sourceBounds, targetBounds model.Bounds, waypoints []model.Point, obstacles []Obstacle) ([]model.Point, bool) {
	blockers := filterObstacles(obstacles, sourceID, targetID)

	if isReturnEdge(sourceBounds, targetBounds) {
		waypoints = fixReturnEdge(waypoints, targetBounds)
	}

	if !anyCrossing(waypoints, blockers) {
		return geometry.EnsureOrthogonalWaypoints(waypoints), false
	}

	rerouted, failed := reroute(sourceBounds, targetBounds, blockers)
	return geometry.EnsureOrthogonalWaypoints(rerouted), failed
}

func filterObstacles(obstacles []Obstacle, sourceID, targetID string) []model.Bounds {
	out := make([]model.Bounds, 0, len(obstacles))
	for _, ob := range obstacles {
		if ob.ID == sourceID || ob.ID == targetID {
			continue
		}
		out = append(out, ob.Bounds)
	}
	return out
}

func anyCrossing(pts []model.Point, obstacles []model.Bounds) bool {
	for i := 1; i < len(pts); i++ {
		for _, ob := range obstacles {
			if geometry.SegmentCrossesStrictInterior(pts[i-1], pts[i], ob) {
				return true
			}
		}
	}
	return false
}

// isReturnEdge reports whether target sits entirely above source, the
// case that needs the endpoint-shift special case below.
func isReturnEdge(source, target model.Bounds) bool {
	return target.Bottom() < source.Y
}

// fixReturnEdge shifts the last waypoint onto the target's right edge
// when the final horizontal segment would otherwise pass through the
// target's interior.
func fixReturnEdge(pts []model.Point, target model.Bounds) []model.Point {
	if len(pts) < 2 {
		return pts
	}
	last, prev := pts[len(pts)-1], pts[len(pts)-2]
	if prev.Y != last.Y {
		return pts
	}
	if !geometry.SegmentCrossesStrictInterior(prev, last, target) {
		return pts
	}
	out := append([]model.Point(nil), pts...)
	out[len(out)-1] = model.Point{X: target.Right(), Y: last.Y}
	return out
}

// reroute picks a quadrant strategy and produces a fresh path from
// source to target that clears every blocker. When that heuristic can't
// find a clear routeX/routeY it falls back to the grid A* pathfinder,
// which can thread a path around obstacles the single-column/row
// heuristic can't; the returned bool reports whether that fallback had to
// run (true also when the A* search itself found nothing, in which case
// the straight-line segment pathfind.Find returns is used as-is).
func reroute(source, target model.Bounds, blockers []model.Bounds) ([]model.Point, bool) {
	sc, tc := source.Center(), target.Center()
	dx, dy := tc.X-sc.X, tc.Y-sc.Y

	fromSide, toSide := geometry.BestConnectionSides(source, target)
	if abs(dy) > 1.5*abs(dx) {
		if dy >= 0 {
			fromSide, toSide = geometry.SideBottom, geometry.SideTop
		} else {
			fromSide, toSide = geometry.SideTop, geometry.SideBottom
		}
	}

	start := geometry.ConnectionPoint(source, fromSide)
	end := geometry.ConnectionPoint(target, toSide)

	var path []model.Point
	var cleared bool
	switch fromSide {
	case geometry.SideLeft, geometry.SideRight:
		// Exiting sideways: a blocker at the same height can't be cleared
		// by any choice of X on a flat segment, so detour vertically
		// (right-then-down / right-then-up / left-obstacle-avoidance all
		// collapse to this shape) then back across at the detour height.
		path, cleared = routeAroundByY(start, end, blockers, source, target)
	default:
		// Exiting top/bottom: detour sideways instead (up/down strategies).
		path, cleared = routeAroundByX(start, end, blockers, source, target)
	}
	if cleared {
		return path, false
	}

	result := pathfind.Find(pathfind.Request{
		Start:     start,
		End:       end,
		StartPort: fromSide,
		EndPort:   toSide,
		Obstacles: blockers,
		Config:    pathfind.DefaultConfig(),
	})
	return result.Path, true
}

// routeAroundByY threads start to end by moving to a clear Y above or
// below the blockers first, then across, then down/up into end. The bool
// reports whether pickClearY actually found a clear Y.
func routeAroundByY(start, end model.Point, blockers []model.Bounds, source, target model.Bounds) ([]model.Point, bool) {
	routeY, ok := pickClearY(source, target, blockers)
	return []model.Point{start, {X: start.X, Y: routeY}, {X: end.X, Y: routeY}, end}, ok
}

// routeAroundByX threads start to end by moving to a clear X column first,
// used for top/bottom exits. The bool reports whether pickClearX actually
// found a clear column.
func routeAroundByX(start, end model.Point, blockers []model.Bounds, source, target model.Bounds) ([]model.Point, bool) {
	routeX, ok := pickClearX(source.Right(), target.X, start.Y, end.Y, blockers)
	return []model.Point{start, {X: routeX, Y: start.Y}, {X: routeX, Y: end.Y}, end}, ok
}

// pickClearX returns an X whose vertical run across [y1,y2] clears every
// blocker, and whether a clear one was found. It tries the midpoint of lo
// and hi (source-right and target-left) first, then 15px right of each
// blocker in turn; those candidates are not bounded by lo and hi. The
// midpoint is returned as a last resort, for the caller to hand to the
// A* fallback as a starting hint.
func pickClearX(lo, hi, y1, y2 float64, blockers []model.Bounds) (float64, bool) {
	mid := (lo + hi) / 2
	if geometry.ClearVerticalPath(mid, y1, y2, blockers, 10) {
		return mid, true
	}
	for _, ob := range blockers {
		candidate := ob.Right() + 15
		if geometry.ClearVerticalPath(candidate, y1, y2, blockers, 10) {
			return candidate, true
		}
	}
	return mid, false
}

// pickClearY returns a Y whose horizontal run between the source and
// target centers clears every blocker, and whether a clear one was found:
// 30px above the higher of the two tops, else 30px below the lower of the
// two bottoms (also returned as the last resort).
func pickClearY(source, target model.Bounds, blockers []model.Bounds) (float64, bool) {
	above := minY(source, target) - 30
	if geometry.ClearHorizontalPath(above, source.Center().X, target.Center().X, blockers, 10) {
		return above, true
	}
	below := maxBottom(source, target) + 30
	if geometry.ClearHorizontalPath(below, source.Center().X, target.Center().X, blockers, 10) {
		return below, true
	}
	return below, false
}

func minY(a, b model.Bounds) float64 {
	if a.Y < b.Y {
		return a.Y
	}
	return b.Y
}

func maxBottom(a, b model.Bounds) float64 {
	if a.Bottom() > b.Bottom() {
		return a.Bottom()
	}
	return b.Bottom()
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
