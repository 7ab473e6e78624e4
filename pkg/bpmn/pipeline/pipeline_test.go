package pipeline

import (
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// linearGraph builds start -> task -> gateway -> (end1 | end2), a minimal
// diverging scenario with no sizes set, so ApplyDefaultSizes must run.
func linearGraph() *model.Graph {
	start := &model.Node{ID: "start", Kind: model.KindStartEvent}
	task := &model.Node{ID: "task", Kind: model.KindTask}
	gw := &model.Node{ID: "gw", Kind: model.KindExclusiveGateway, DefaultOutgoing: "f4"}
	end1 := &model.Node{ID: "end1", Kind: model.KindEndEvent}
	end2 := &model.Node{ID: "end2", Kind: model.KindEndEvent}

	return &model.Graph{
		Root: []*model.Node{start, task, gw, end1, end2},
		Edges: []*model.Edge{
			{ID: "f1", Source: "start", Target: "task", Kind: model.EdgeSequenceFlow},
			{ID: "f2", Source: "task", Target: "gw", Kind: model.EdgeSequenceFlow},
			{ID: "f3", Source: "gw", Target: "end1", Kind: model.EdgeSequenceFlow, ConditionExpression: "${approved}"},
			{ID: "f4", Source: "gw", Target: "end2", Kind: model.EdgeSequenceFlow},
		},
	}
}

func TestToBpmnReachesDone(t *testing.T) {
	g := linearGraph()
	res, err := ToBpmn(g, DefaultOptions())
	if err != nil {
		t.Fatalf("ToBpmn: %v", err)
	}
	if res.Stage != StageDone {
		t.Fatalf("Stage = %v, want StageDone", res.Stage)
	}
	if len(res.Diagram.Shapes) != 5 {
		t.Fatalf("len(Shapes) = %d, want 5", len(res.Diagram.Shapes))
	}
	if len(res.Diagram.Edges) != 4 {
		t.Fatalf("len(Edges) = %d, want 4", len(res.Diagram.Edges))
	}

	byID := make(map[string]model.Bounds)
	for _, s := range res.Diagram.Shapes {
		byID[s.ID] = s.Bounds
	}
	if byID["task"].X <= byID["start"].X {
		t.Errorf("task.X = %v should be right of start.X = %v", byID["task"].X, byID["start"].X)
	}
	if byID["gw"].X <= byID["task"].X {
		t.Errorf("gw.X = %v should be right of task.X = %v", byID["gw"].X, byID["task"].X)
	}
}

func TestToBpmnRejectsInvalidInput(t *testing.T) {
	g := &model.Graph{
		Root: []*model.Node{
			{ID: "gw", Kind: model.KindExclusiveGateway},
			{ID: "a", Kind: model.KindEndEvent},
			{ID: "b", Kind: model.KindEndEvent},
		},
		Edges: []*model.Edge{
			{ID: "f1", Source: "gw", Target: "a", Kind: model.EdgeSequenceFlow},
			{ID: "f2", Source: "gw", Target: "b", Kind: model.EdgeSequenceFlow},
		},
	}
	_, err := ToBpmn(g, DefaultOptions())
	if err == nil {
		t.Fatal("expected a validation error for a diverging gateway with no default flow set and ambiguous conditions")
	}
	var stageErr *StageError
	if !asStageError(err, &stageErr) {
		t.Fatalf("err = %v, want *StageError", err)
	}
	if stageErr.Stage != StageInput {
		t.Errorf("Stage = %v, want StageInput", stageErr.Stage)
	}
}

func asStageError(err error, target **StageError) bool {
	se, ok := err.(*StageError)
	if ok {
		*target = se
	}
	return ok
}

func TestToBpmnWithCompactAndRefine(t *testing.T) {
	g := linearGraph()
	opts := DefaultOptions()
	opts.Compact = true
	opts.Refine = true

	res, err := ToBpmn(g, opts)
	if err != nil {
		t.Fatalf("ToBpmn: %v", err)
	}
	if res.Stage != StageDone {
		t.Fatalf("Stage = %v, want StageDone", res.Stage)
	}
}
