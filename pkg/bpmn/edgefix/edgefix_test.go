package edgefix

import (
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

func TestFixEdgeLeavesClearPathUntouched(t *testing.T) {
	source := model.Bounds{X: 0, Y: 0, Width: 100, Height: 80}
	target := model.Bounds{X: 200, Y: 0, Width: 100, Height: 80}
	waypoints := []model.Point{{X: 100, Y: 40}, {X: 200, Y: 40}}

	out, failed := FixEdge("a", "b", source, target, waypoints, nil)
	if len(out) != 2 || out[0] != waypoints[0] || out[1] != waypoints[1] {
		t.Errorf("expected unchanged path, got %v", out)
	}
	if failed {
		t.Error("expected a clear path to not be flagged as a routing failure")
	}
}

func TestFixEdgeReroutesAroundBlocker(t *testing.T) {
	source := model.Bounds{X: 0, Y: 0, Width: 100, Height: 80}
	target := model.Bounds{X: 300, Y: 0, Width: 100, Height: 80}
	blocker := model.Bounds{X: 150, Y: 0, Width: 100, Height: 80}
	waypoints := []model.Point{{X: 100, Y: 40}, {X: 300, Y: 40}}

	obstacles := []Obstacle{{ID: "blocker", Bounds: blocker}}
	out, failed := FixEdge("a", "b", source, target, waypoints, obstacles)
	if failed {
		t.Error("expected the quadrant heuristic to clear this single blocker without falling back to A*")
	}

	if !geometry.IsOrthogonal(out, 0.01) {
		t.Errorf("rerouted path is not orthogonal: %v", out)
	}
	inflated := geometry.Expand(blocker, geometry.InteriorMargin)
	for i := 1; i < len(out); i++ {
		if geometry.SegmentCrossesStrictInterior(out[i-1], out[i], inflated) {
			t.Errorf("rerouted segment %v -> %v still crosses blocker", out[i-1], out[i])
		}
	}
}

func TestFixEdgeReturnEdgeShiftsEndpoint(t *testing.T) {
	source := model.Bounds{X: 0, Y: 200, Width: 100, Height: 80}
	target := model.Bounds{X: 0, Y: 0, Width: 100, Height: 80}
	waypoints := []model.Point{{X: 150, Y: 200}, {X: 150, Y: 40}, {X: 50, Y: 40}}

	out, _ := FixEdge("a", "b", source, target, waypoints, nil)
	last := out[len(out)-1]
	if last.X != target.Right() {
		t.Errorf("expected return-edge endpoint shifted to target right edge %v, got %v", target.Right(), last)
	}
}

func TestFixEdgeFallsBackToAstarWhenNoClearDetourExists(t *testing.T) {
	source := model.Bounds{X: 0, Y: 0, Width: 100, Height: 80}
	target := model.Bounds{X: 300, Y: 0, Width: 100, Height: 80}
	// A wall spanning far above and below both nodes leaves no clear Y for
	// the quadrant heuristic's above/below detour, forcing reroute to fall
	// through to pathfind.Find.
	wall := model.Bounds{X: 150, Y: -1000, Width: 100, Height: 3000}
	waypoints := []model.Point{{X: 100, Y: 40}, {X: 300, Y: 40}}

	obstacles := []Obstacle{{ID: "wall", Bounds: wall}}
	out, failed := FixEdge("a", "b", source, target, waypoints, obstacles)

	if !failed {
		t.Error("expected the quadrant heuristic to fail to clear an unbounded wall, falling back to A*")
	}
	if len(out) < 2 {
		t.Fatalf("expected a fallback path with at least start/end, got %v", out)
	}
}

func TestIsReturnEdge(t *testing.T) {
	source := model.Bounds{X: 0, Y: 200, Width: 100, Height: 80}
	target := model.Bounds{X: 0, Y: 0, Width: 100, Height: 80}
	if !isReturnEdge(source, target) {
		t.Error("expected target-above-source to be a return edge")
	}
	if isReturnEdge(target, source) {
		t.Error("forward edge misclassified as return edge")
	}
}
