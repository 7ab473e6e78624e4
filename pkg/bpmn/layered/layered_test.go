package layered

import (
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

func chainGraph() *model.Graph {
	a := &model.Node{ID: "a", Kind: model.KindStartEvent}
	b := &model.Node{ID: "b", Kind: model.KindTask}
	c := &model.Node{ID: "c", Kind: model.KindEndEvent}
	return &model.Graph{
		Root: []*model.Node{a, b, c},
		Edges: []*model.Edge{
			{ID: "f1", Source: "a", Target: "b", Kind: model.EdgeSequenceFlow},
			{ID: "f2", Source: "b", Target: "c", Kind: model.EdgeSequenceFlow},
		},
	}
}

func TestAssignLayersLinearChain(t *testing.T) {
	g := chainGraph()
	cols := AssignLayers(g)
	if cols["a"] != 0 || cols["b"] != 1 || cols["c"] != 2 {
		t.Errorf("cols = %v, want a=0,b=1,c=2", cols)
	}
}

func TestCountColumnCrossingsDetectsCross(t *testing.T) {
	edgesBySource := map[string][]string{
		"a": {"y"},
		"b": {"x"},
	}
	n := CountColumnCrossings(edgesBySource, []string{"a", "b"}, []string{"x", "y"})
	if n != 1 {
		t.Errorf("CountColumnCrossings = %d, want 1", n)
	}
}

func TestCountColumnCrossingsNoCross(t *testing.T) {
	edgesBySource := map[string][]string{
		"a": {"x"},
		"b": {"y"},
	}
	n := CountColumnCrossings(edgesBySource, []string{"a", "b"}, []string{"x", "y"})
	if n != 0 {
		t.Errorf("CountColumnCrossings = %d, want 0", n)
	}
}

func TestMinimizeCrossingsReordersByMedian(t *testing.T) {
	columns := map[int][]string{
		0: {"a", "b"},
		1: {"x", "y"},
	}
	edgesBySource := map[string][]string{
		"a": {"y"},
		"b": {"x"},
	}
	edgesByTarget := map[string][]string{
		"x": {"b"},
		"y": {"a"},
	}
	MinimizeCrossings(columns, edgesBySource, edgesByTarget, 2)

	before := CountColumnCrossings(edgesBySource, []string{"a", "b"}, []string{"x", "y"})
	after := CountColumnCrossings(edgesBySource, columns[0], columns[1])
	if after > before {
		t.Errorf("crossings increased: before=%d after=%d order=%v", before, after, columns[1])
	}
	if after != 0 {
		t.Errorf("expected median heuristic to fully untangle this case, got %d crossings with order %v", after, columns[1])
	}
}

func TestAssignX(t *testing.T) {
	columns := map[int][]string{0: {"a", "b"}}
	widths := map[string]float64{"a": 40, "b": 60}
	xs := AssignX(columns, widths, 20)
	if xs["a"] != 0 {
		t.Errorf("a.X = %v, want 0", xs["a"])
	}
	if xs["b"] != 60 {
		t.Errorf("b.X = %v, want 60", xs["b"])
	}
}
