package propagate

import (
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

func TestPropagatePushesDownstreamNodesPastGateway(t *testing.T) {
	gw := &model.Node{ID: "gw", Kind: model.KindExclusiveGateway, Bounds: model.Bounds{X: 300, Width: 50}}
	a := &model.Node{ID: "a", Kind: model.KindTask, Bounds: model.Bounds{X: 310, Width: 100}}
	b := &model.Node{ID: "b", Kind: model.KindEndEvent, Bounds: model.Bounds{X: 420, Width: 36}}

	g := &model.Graph{
		Root: []*model.Node{gw, a, b},
		Edges: []*model.Edge{
			{ID: "f1", Source: "gw", Target: "a", Kind: model.EdgeSequenceFlow},
			{ID: "f2", Source: "a", Target: "b", Kind: model.EdgeSequenceFlow},
		},
	}

	Propagate(g, []string{"gw"})

	wantAX := gw.Bounds.Right() + MinGap
	if a.Bounds.X != wantAX {
		t.Errorf("a.Bounds.X = %v, want %v", a.Bounds.X, wantAX)
	}
	wantBX := a.Bounds.Right() + MinGap
	if b.Bounds.X != wantBX {
		t.Errorf("b.Bounds.X = %v, want %v", b.Bounds.X, wantBX)
	}
}

func TestPropagateLeavesNodesAlreadyPastThreshold(t *testing.T) {
	gw := &model.Node{ID: "gw", Kind: model.KindExclusiveGateway, Bounds: model.Bounds{X: 0, Width: 50}}
	a := &model.Node{ID: "a", Kind: model.KindTask, Bounds: model.Bounds{X: 1000, Width: 100}}

	g := &model.Graph{
		Root: []*model.Node{gw, a},
		Edges: []*model.Edge{
			{ID: "f1", Source: "gw", Target: "a", Kind: model.EdgeSequenceFlow},
		},
	}

	Propagate(g, []string{"gw"})

	if a.Bounds.X != 1000 {
		t.Errorf("a.Bounds.X = %v, want unchanged 1000", a.Bounds.X)
	}
}

func TestPropagateKeepsGreatestCandidateFromMultipleGateways(t *testing.T) {
	gw1 := &model.Node{ID: "gw1", Kind: model.KindExclusiveGateway, Bounds: model.Bounds{X: 0, Width: 50}}
	gw2 := &model.Node{ID: "gw2", Kind: model.KindExclusiveGateway, Bounds: model.Bounds{X: 500, Width: 50}}
	a := &model.Node{ID: "a", Kind: model.KindTask, Bounds: model.Bounds{X: 10, Width: 100}}

	g := &model.Graph{
		Root: []*model.Node{gw1, gw2, a},
		Edges: []*model.Edge{
			{ID: "f1", Source: "gw1", Target: "a", Kind: model.EdgeSequenceFlow},
			{ID: "f2", Source: "gw2", Target: "a", Kind: model.EdgeSequenceFlow},
		},
	}

	Propagate(g, []string{"gw1", "gw2"})

	want := gw2.Bounds.Right() + MinGap
	if a.Bounds.X != want {
		t.Errorf("a.Bounds.X = %v, want %v (from the farther gateway gw2)", a.Bounds.X, want)
	}
}

func TestPropagateIgnoresNonSequenceFlowEdges(t *testing.T) {
	gw := &model.Node{ID: "gw", Kind: model.KindExclusiveGateway, Bounds: model.Bounds{X: 0, Width: 50}}
	note := &model.Node{ID: "note", Kind: model.KindTextAnnotation, Bounds: model.Bounds{X: 10, Width: 80}}

	g := &model.Graph{
		Root: []*model.Node{gw, note},
		Edges: []*model.Edge{
			{ID: "a1", Source: "gw", Target: "note", Kind: model.EdgeAssociation},
		},
	}

	Propagate(g, []string{"gw"})

	if note.Bounds.X != 10 {
		t.Errorf("note.Bounds.X = %v, want unchanged 10 (association, not sequence flow)", note.Bounds.X)
	}
}
