package debugviz

import (
	"strings"
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

func TestToDOTRendersClustersAndShapes(t *testing.T) {
	task := &model.Node{ID: "task_a", Kind: model.KindTask, BoundaryEvents: []*model.BoundaryEvent{
		{ID: "be_1", AttachedToRef: "task_a"},
	}}
	lane := &model.Node{ID: "lane_1", Kind: model.KindLane, Children: []*model.Node{task}}
	pool := &model.Node{ID: "pool_1", Kind: model.KindParticipant, Children: []*model.Node{lane}}
	gw := &model.Node{ID: "gw_1", Kind: model.KindExclusiveGateway}

	g := &model.Graph{
		Root: []*model.Node{pool, gw},
		Edges: []*model.Edge{
			{ID: "f1", Source: "task_a", Target: "gw_1", Kind: model.EdgeSequenceFlow},
		},
	}

	dot := ToDOT(g)

	for _, want := range []string{
		"digraph G {",
		"rankdir=LR;",
		`subgraph cluster_pool_1 {`,
		`subgraph cluster_lane_1 {`,
		`"task_a" [shape=box, label="task_a"];`,
		`"gw_1" [shape=diamond, label="gw_1"];`,
		`"be_1" [shape=circle, label="be_1"];`,
		`"task_a" -> "gw_1";`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q\ngot:\n%s", want, dot)
		}
	}
}

func TestToDOTMarksMessageFlowsDashed(t *testing.T) {
	g := &model.Graph{
		Root: []*model.Node{
			{ID: "a", Kind: model.KindStartEvent},
			{ID: "b", Kind: model.KindEndEvent},
		},
		Edges: []*model.Edge{
			{ID: "mf1", Source: "a", Target: "b", Kind: model.EdgeMessageFlow},
		},
	}
	dot := ToDOT(g)
	if !strings.Contains(dot, `"a" -> "b" [style=dashed];`) {
		t.Errorf("expected dashed message flow edge, got:\n%s", dot)
	}
}
