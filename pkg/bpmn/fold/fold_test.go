package fold

import (
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

func TestFoldAppliesContainerOffsetsToChildren(t *testing.T) {
	task := &model.Node{ID: "task", Kind: model.KindTask, Bounds: model.Bounds{X: 20, Y: 30, Width: 100, Height: 80}}
	pool := &model.Node{
		ID:       "pool",
		Kind:     model.KindParticipant,
		Bounds:   model.Bounds{X: 50, Y: 60, Width: 400, Height: 300},
		Children: []*model.Node{task},
	}
	g := &model.Graph{ID: "p1", Root: []*model.Node{pool}}

	d := Fold(g)

	var poolShape, taskShape *Shape
	for i := range d.Shapes {
		switch d.Shapes[i].ID {
		case "pool":
			poolShape = &d.Shapes[i]
		case "task":
			taskShape = &d.Shapes[i]
		}
	}
	if poolShape == nil || taskShape == nil {
		t.Fatalf("missing shapes in %+v", d.Shapes)
	}
	if poolShape.Bounds.X != 50 || poolShape.Bounds.Y != 60 {
		t.Errorf("pool absolute bounds = %+v, want unshifted root-level (50, 60)", poolShape.Bounds)
	}
	wantX, wantY := 50+20.0, 60+30.0
	if taskShape.Bounds.X != wantX || taskShape.Bounds.Y != wantY {
		t.Errorf("task absolute bounds = (%v, %v), want (%v, %v) (pool offset applied)", taskShape.Bounds.X, taskShape.Bounds.Y, wantX, wantY)
	}
	if !poolShape.IsHorizontal {
		t.Error("participant shape should set IsHorizontal")
	}
}

func TestFoldDoesNotOffsetPlainProcessChildren(t *testing.T) {
	task := &model.Node{ID: "task", Kind: model.KindTask, Bounds: model.Bounds{X: 20, Y: 30, Width: 100, Height: 80}}
	proc := &model.Node{
		ID:       "proc",
		Kind:     model.KindProcess,
		Bounds:   model.Bounds{X: 10, Y: 10, Width: 400, Height: 300},
		Children: []*model.Node{task},
	}
	g := &model.Graph{ID: "p1", Root: []*model.Node{proc}}

	d := Fold(g)

	for _, s := range d.Shapes {
		if s.ID == "task" {
			if s.Bounds.X != 20 || s.Bounds.Y != 30 {
				t.Errorf("task bounds = %+v, want unshifted (20, 30): a bare process is not an offsetting container", s.Bounds)
			}
			return
		}
	}
	t.Fatal("task shape not found")
}

func TestFoldIncludesBoundaryEventsAsShapes(t *testing.T) {
	task := &model.Node{
		ID: "task", Kind: model.KindTask, Bounds: model.Bounds{X: 0, Y: 0, Width: 100, Height: 80},
		BoundaryEvents: []*model.BoundaryEvent{
			{ID: "be1", AttachedToRef: "task", Bounds: model.Bounds{X: 80, Y: 62, Width: 36, Height: 36}},
		},
	}
	g := &model.Graph{ID: "p1", Root: []*model.Node{task}}

	d := Fold(g)

	found := false
	for _, s := range d.Shapes {
		if s.ID == "be1" {
			found = true
			if s.Kind != model.KindBoundaryEvent {
				t.Errorf("be1 shape Kind = %v, want KindBoundaryEvent", s.Kind)
			}
		}
	}
	if !found {
		t.Fatal("boundary event be1 not present in folded shapes")
	}
}

func TestFoldTranslatesEdgeWaypointsByContainerOffset(t *testing.T) {
	a := &model.Node{ID: "a", Kind: model.KindStartEvent, Bounds: model.Bounds{X: 0, Y: 0, Width: 36, Height: 36}}
	b := &model.Node{ID: "b", Kind: model.KindEndEvent, Bounds: model.Bounds{X: 100, Y: 0, Width: 36, Height: 36}}
	lane := &model.Node{
		ID: "lane", Kind: model.KindLane, Bounds: model.Bounds{X: 10, Y: 20, Width: 300, Height: 200},
		Children: []*model.Node{a, b},
	}
	g := &model.Graph{
		ID:   "p1",
		Root: []*model.Node{lane},
		Edges: []*model.Edge{
			{ID: "f1", Source: "a", Target: "b", Kind: model.EdgeSequenceFlow,
				Sections: []model.Section{{Start: model.Point{X: 36, Y: 18}, End: model.Point{X: 100, Y: 18}}}},
		},
	}

	d := Fold(g)

	if len(d.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(d.Edges))
	}
	wp := d.Edges[0].Sections[0].Waypoints()
	if len(wp) == 0 {
		t.Fatal("no waypoints in folded edge")
	}
	// The lane's X offset (10) must be baked into the absolute waypoints;
	// the raw pre-fold waypoint was X=36, so anything at or below that
	// means the container offset was dropped.
	if wp[0].X <= 36 {
		t.Errorf("first waypoint X = %v, want > 36 (lane offset of 10 applied)", wp[0].X)
	}
}
