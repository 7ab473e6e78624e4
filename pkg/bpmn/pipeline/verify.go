package pipeline

import (
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/fold"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// waypointEpsilon is the rounding tolerance allowed when comparing a
// re-derived waypoint against the one already in the diagram.
const waypointEpsilon = 0.5

// VerifyIdempotent checks an already folded diagram: every edge section
// is strictly orthogonal, and handing its waypoints back through the same
// orthogonalization/collinear-collapse functions the routing stages
// already ran them through changes nothing. A diagram that fails this
// would mean a later stage left behind a diagonal segment or a redundant
// bend point the crossing-repair pass should have removed.
func VerifyIdempotent(d *fold.Diagram) bool {
	for _, e := range d.Edges {
		for _, sec := range e.Sections {
			pts := sec.Waypoints()
			if len(pts) < 2 {
				continue
			}
			if !geometry.IsOrthogonal(pts, waypointEpsilon) {
				return false
			}
			if !pointsEqual(pts, geometry.EnsureOrthogonalWaypoints(pts)) {
				return false
			}
			if !pointsEqual(pts, geometry.CollapseCollinear(pts)) {
				return false
			}
		}
	}
	return true
}

func pointsEqual(a, b []model.Point) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if absF(a[i].X-b[i].X) > waypointEpsilon || absF(a[i].Y-b[i].Y) > waypointEpsilon {
			return false
		}
	}
	return true
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
