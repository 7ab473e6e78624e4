package pathfind

import (
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

func TestFindStraightLineNoObstacles(t *testing.T) {
	res := Find(Request{
		Start: model.Point{X: 0, Y: 0},
		End:   model.Point{X: 100, Y: 0},
	})
	if !res.Success {
		t.Fatal("expected success with no obstacles")
	}
	if len(res.Path) < 2 {
		t.Fatalf("path too short: %v", res.Path)
	}
	first, last := res.Path[0], res.Path[len(res.Path)-1]
	if first != (model.Point{X: 0, Y: 0}) || last != (model.Point{X: 100, Y: 0}) {
		t.Errorf("endpoints = %v, %v, want (0,0) and (100,0)", first, last)
	}
}

func TestFindRoutesAroundObstacle(t *testing.T) {
	// A wall directly between start and end, spanning well above and below
	// the straight line, forces a detour.
	res := Find(Request{
		Start: model.Point{X: 0, Y: 0},
		End:   model.Point{X: 200, Y: 0},
		Obstacles: []model.Bounds{
			{X: 90, Y: -100, Width: 20, Height: 200},
		},
	})
	if !res.Success {
		t.Fatal("expected a route around the obstacle")
	}
	obstacle := model.Bounds{X: 90, Y: -100, Width: 20, Height: 200}
	inflated := model.Bounds{X: obstacle.X - 5, Y: obstacle.Y - 5, Width: obstacle.Width + 10, Height: obstacle.Height + 10}
	for _, p := range res.Path {
		if p.X > inflated.X && p.X < inflated.Right() && p.Y > inflated.Y && p.Y < inflated.Bottom() {
			t.Errorf("path point %v falls inside inflated obstacle %v", p, inflated)
		}
	}
}

func TestFindOrthogonalOutput(t *testing.T) {
	res := Find(Request{
		Start: model.Point{X: 0, Y: 0},
		End:   model.Point{X: 100, Y: 100},
		Obstacles: []model.Bounds{
			{X: 40, Y: 40, Width: 20, Height: 20},
		},
	})
	if !res.Success {
		t.Fatal("expected success")
	}
	for i := 1; i < len(res.Path); i++ {
		dx := res.Path[i].X - res.Path[i-1].X
		dy := res.Path[i].Y - res.Path[i-1].Y
		if dx != 0 && dy != 0 {
			t.Errorf("segment %d is not axis-aligned: %v -> %v", i, res.Path[i-1], res.Path[i])
		}
	}
}

func TestFindStartPortOpensTunnelOtherwiseSealedShut(t *testing.T) {
	// Four walls enclose the start point, exactly like
	// TestFindTotallyEnclosedEndFails, except the right-hand wall is thin
	// enough (after inflation) for StartPort's cleared lane to tunnel all
	// the way through it into the open space beyond.
	obstacles := []model.Bounds{
		{X: -20, Y: -30, Width: 40, Height: 25}, // top wall
		{X: -20, Y: 5, Width: 40, Height: 25},   // bottom wall
		{X: -30, Y: -20, Width: 25, Height: 40}, // left wall
		{X: 5, Y: -20, Width: 10, Height: 40},   // thin right wall
	}
	start := model.Point{X: 0, Y: 0}
	end := model.Point{X: 200, Y: 0}

	sealed := Find(Request{Start: start, End: end, Obstacles: obstacles, Config: DefaultConfig()})
	if sealed.Success {
		t.Fatal("expected no route without a start port opening the right wall")
	}

	tunneled := Find(Request{Start: start, End: end, StartPort: geometry.SideRight, Obstacles: obstacles, Config: DefaultConfig()})
	if !tunneled.Success {
		t.Fatal("expected StartPort's cleared lane to breach the thin right wall")
	}
	last := tunneled.Path[len(tunneled.Path)-1]
	if last != end {
		t.Errorf("path should still end exactly at end, got %v", last)
	}
}

func TestFindTotallyEnclosedEndFails(t *testing.T) {
	// Four walls form a closed perimeter (overlapping at the corners, so
	// there is no gap) around the end point at the origin; the start point
	// sits far outside. No path can exist regardless of grid padding.
	res := Find(Request{
		Start: model.Point{X: -500, Y: -500},
		End:   model.Point{X: 0, Y: 0},
		Obstacles: []model.Bounds{
			{X: -20, Y: -20, Width: 10, Height: 40}, // left wall
			{X: 10, Y: -20, Width: 10, Height: 40},  // right wall
			{X: -20, Y: -20, Width: 40, Height: 10}, // top wall
			{X: -20, Y: 10, Width: 40, Height: 10},  // bottom wall
		},
	})
	if res.Success {
		t.Error("expected failure: end point is fully walled in")
	}
	if len(res.Path) != 2 {
		t.Errorf("fallback path should be a straight 2-point segment, got %v", res.Path)
	}
}
