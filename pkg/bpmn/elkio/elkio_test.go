package elkio

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

const sampleJSON = `{
  "id": "p1",
  "messages": [{"id": "msg_1", "name": "OrderPlaced"}],
  "children": [
    {"id": "start_1", "bpmn.type": "startEvent", "width": 36, "height": 36},
    {"id": "task_a", "bpmn.type": "task", "width": 100, "height": 80,
      "boundaryEvents": [
        {"id": "be_1", "attachedToRef": "task_a", "bpmn.type": "boundaryEvent", "cancelActivity": false}
      ]},
    {"id": "gw_1", "bpmn.type": "exclusiveGateway", "width": 50, "height": 50, "default": "f3"},
    {"id": "end_1", "bpmn.type": "endEvent", "width": 36, "height": 36},
    {"id": "end_2", "bpmn.type": "endEvent", "width": 36, "height": 36},
    {"id": "pool_1", "bpmn.type": "participant", "width": 400, "height": 200, "children": [
      {"id": "lane_1", "bpmn.type": "lane", "width": 400, "height": 100},
      {"id": "lane_2", "bpmn.type": "lane", "width": 400, "height": 100}
    ]}
  ],
  "edges": [
    {"id": "f1", "bpmn.type": "sequenceFlow", "sources": ["start_1"], "targets": ["task_a"]},
    {"id": "f2", "bpmn.type": "sequenceFlow", "sources": ["task_a"], "targets": ["gw_1"]},
    {"id": "f3", "bpmn.type": "sequenceFlow", "sources": ["gw_1"], "targets": ["end_1"]},
    {"id": "f4", "bpmn.type": "sequenceFlow", "sources": ["gw_1"], "targets": ["end_2"],
      "conditionExpression": {"body": "${approved}"}}
  ]
}`

func TestDecodeParsesNodesEdgesAndCatalogs(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.ID != "p1" {
		t.Errorf("ID = %q, want p1", g.ID)
	}
	if len(g.Root) != 6 {
		t.Fatalf("len(Root) = %d, want 6", len(g.Root))
	}
	if len(g.Edges) != 4 {
		t.Fatalf("len(Edges) = %d, want 4", len(g.Edges))
	}
	if len(g.Messages) != 1 || g.Messages[0].ID != "msg_1" {
		t.Errorf("Messages = %+v, want one ref msg_1", g.Messages)
	}

	idx := g.Index()
	task := idx["task_a"]
	if task == nil {
		t.Fatal("task_a not found")
	}
	if len(task.BoundaryEvents) != 1 {
		t.Fatalf("len(BoundaryEvents) = %d, want 1", len(task.BoundaryEvents))
	}
	if task.BoundaryEvents[0].Interrupting {
		t.Error("BoundaryEvents[0].Interrupting = true, want false (cancelActivity: false)")
	}

	start := idx["start_1"]
	if !start.IsInterrupting {
		t.Error("start_1.IsInterrupting = false, want true (default when isInterrupting absent)")
	}

	gw := idx["gw_1"]
	if gw.DefaultOutgoing != "f3" {
		t.Errorf("gw_1.DefaultOutgoing = %q, want f3", gw.DefaultOutgoing)
	}

	if got := g.Lanes["pool_1"]; len(got) != 2 || got[0] != "lane_1" || got[1] != "lane_2" {
		t.Errorf("Lanes[pool_1] = %v, want [lane_1 lane_2]", got)
	}

	var f4 *model.Edge
	for _, e := range g.Edges {
		if e.ID == "f4" {
			f4 = e
		}
	}
	if f4 == nil || f4.ConditionExpression != "${approved}" {
		t.Errorf("f4.ConditionExpression = %v, want ${approved}", f4)
	}
}

func TestDecodeRejectsUnknownNodeKind(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"id":"p1","children":[{"id":"n1","bpmn.type":"bogus"}]}`))
	if err == nil {
		t.Fatal("expected error for unknown bpmn.type")
	}
}

func TestDecodeRejectsEdgeWithoutSingleEndpoint(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"id":"p1","children":[],"edges":[
		{"id":"f1","bpmn.type":"sequenceFlow","sources":["a","b"],"targets":["c"]}
	]}`))
	if err == nil {
		t.Fatal("expected error for edge with more than one source")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	g, err := Decode(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	idx := g.Index()
	idx["task_a"].Bounds.X, idx["task_a"].Bounds.Y = 120, 40
	idx["task_a"].HasCoords = true

	var buf bytes.Buffer
	if err := Encode(g, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	g2, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode(Encode(g)): %v", err)
	}

	idx2 := g2.Index()
	if len(idx2) != len(idx) {
		t.Fatalf("round-tripped node count = %d, want %d", len(idx2), len(idx))
	}
	task2 := idx2["task_a"]
	if !task2.HasCoords {
		t.Fatal("round-tripped task_a.HasCoords = false, want true")
	}
	if task2.Bounds.X != 120 || task2.Bounds.Y != 40 {
		t.Errorf("round-tripped task_a bounds = (%v, %v), want (120, 40)", task2.Bounds.X, task2.Bounds.Y)
	}
	if idx2["start_1"].HasCoords {
		t.Error("round-tripped start_1.HasCoords = true, want false (never given coordinates)")
	}
	if len(g2.Messages) != 1 || g2.Messages[0].ID != "msg_1" {
		t.Errorf("round-tripped Messages = %+v, want one ref msg_1", g2.Messages)
	}
	if got := g2.Lanes["pool_1"]; len(got) != 2 {
		t.Errorf("round-tripped Lanes[pool_1] = %v, want 2 entries", got)
	}
}

func TestEncodeRoundTripsEdgeSections(t *testing.T) {
	g := &model.Graph{
		ID:   "p1",
		Root: []*model.Node{{ID: "a", Kind: model.KindStartEvent}, {ID: "b", Kind: model.KindEndEvent}},
		Edges: []*model.Edge{{
			ID: "f1", Source: "a", Target: "b", Kind: model.EdgeSequenceFlow,
			Sections: []model.Section{{
				Start: model.Point{X: 0, Y: 0},
				Bends: []model.Point{{X: 10, Y: 0}},
				End:   model.Point{X: 10, Y: 10},
			}},
		}},
	}

	var buf bytes.Buffer
	if err := Encode(g, &buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	g2, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(g2.Edges) != 1 || len(g2.Edges[0].Sections) != 1 {
		t.Fatalf("round-tripped edges = %+v", g2.Edges)
	}
	wp := g2.Edges[0].Sections[0].Waypoints()
	if len(wp) != 3 || wp[1].X != 10 || wp[1].Y != 0 {
		t.Errorf("waypoints = %v, want bend at (10, 0)", wp)
	}
}
