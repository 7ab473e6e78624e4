package model

import "testing"

func linearGraph() *Graph {
	start := &Node{ID: "start_1", Kind: KindStartEvent}
	task := &Node{ID: "task_a", Kind: KindTask}
	end := &Node{ID: "end_1", Kind: KindEndEvent}
	return &Graph{
		ID:   "p1",
		Root: []*Node{start, task, end},
		Edges: []*Edge{
			{ID: "f1", Source: "start_1", Target: "task_a", Kind: EdgeSequenceFlow},
			{ID: "f2", Source: "task_a", Target: "end_1", Kind: EdgeSequenceFlow},
		},
	}
}

func TestValidateLinearFlow(t *testing.T) {
	g := linearGraph()
	if err := Validate(g); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateDanglingReference(t *testing.T) {
	g := linearGraph()
	g.Edges[0].Target = "missing"
	if err := Validate(g); err == nil {
		t.Fatal("expected error for dangling reference")
	}
}

func TestValidateStartEventWithIncoming(t *testing.T) {
	g := linearGraph()
	g.Edges = append(g.Edges, &Edge{ID: "bad", Source: "task_a", Target: "start_1", Kind: EdgeSequenceFlow})
	if err := Validate(g); err == nil {
		t.Fatal("expected error for start event with incoming flow")
	}
}

func TestValidateEndEventWithOutgoing(t *testing.T) {
	g := linearGraph()
	g.Edges = append(g.Edges, &Edge{ID: "bad", Source: "end_1", Target: "task_a", Kind: EdgeSequenceFlow})
	if err := Validate(g); err == nil {
		t.Fatal("expected error for end event with outgoing flow")
	}
}

func TestValidateDivergingGatewayRequiresDefault(t *testing.T) {
	gw := &Node{ID: "gw_1", Kind: KindExclusiveGateway}
	a := &Node{ID: "a", Kind: KindTask}
	b := &Node{ID: "b", Kind: KindTask}
	g := &Graph{
		ID:   "p1",
		Root: []*Node{gw, a, b},
		Edges: []*Edge{
			{ID: "e1", Source: "gw_1", Target: "a", Kind: EdgeSequenceFlow, ConditionExpression: "${ok}"},
			{ID: "e2", Source: "gw_1", Target: "b", Kind: EdgeSequenceFlow},
		},
	}
	if err := Validate(g); err == nil {
		t.Fatal("expected error for missing default outgoing")
	}

	gw.DefaultOutgoing = "e2"
	if err := Validate(g); err != nil {
		t.Fatalf("Validate() = %v, want nil once default is set", err)
	}
}

func TestValidateBoundaryEventAttachment(t *testing.T) {
	host := &Node{ID: "task_long", Kind: KindTask}
	host.BoundaryEvents = []*BoundaryEvent{
		{ID: "boundary_timer_1", AttachedToRef: "wrong_host"},
	}
	g := &Graph{ID: "p1", Root: []*Node{host}}
	if err := Validate(g); err == nil {
		t.Fatal("expected error for mismatched attachedToRef")
	}
}

func TestValidateDuplicateID(t *testing.T) {
	g := linearGraph()
	g.Root = append(g.Root, &Node{ID: "task_a", Kind: KindTask})
	if err := Validate(g); err == nil {
		t.Fatal("expected error for duplicate node id")
	}
}

func TestApplyDefaultSizes(t *testing.T) {
	g := linearGraph()
	sub := &Node{ID: "sp_1", Kind: KindSubProcess, IsExpanded: true}
	g.Root = append(g.Root, sub)
	ApplyDefaultSizes(g)

	idx := g.Index()
	if idx["start_1"].Bounds.Width != 36 || idx["start_1"].Bounds.Height != 36 {
		t.Errorf("start event size = %+v, want 36x36", idx["start_1"].Bounds)
	}
	if idx["task_a"].Bounds.Width != 100 || idx["task_a"].Bounds.Height != 80 {
		t.Errorf("task size = %+v, want 100x80", idx["task_a"].Bounds)
	}
	if idx["sp_1"].Bounds.Width != 300 || idx["sp_1"].Bounds.Height != 200 {
		t.Errorf("expanded subprocess size = %+v, want 300x200", idx["sp_1"].Bounds)
	}
}

func TestApplyDefaultSizesReservesDataObjectRoom(t *testing.T) {
	task := &Node{ID: "t1", Kind: KindTask, DataInputs: []string{"in1", "in2"}, DataOutputs: []string{"out1"}}
	g := &Graph{ID: "p1", Root: []*Node{task}}
	ApplyDefaultSizes(g)

	if task.VisualHeight != 80 {
		t.Errorf("VisualHeight = %v, want the visible 80", task.VisualHeight)
	}
	want := 80 + 2*(50+24.0)
	if task.Bounds.Height != want {
		t.Errorf("layout height = %v, want %v (room for the deeper stack of 2)", task.Bounds.Height, want)
	}
}

func TestIsOffsettingContainer(t *testing.T) {
	pool := &Node{ID: "pool_1", Kind: KindParticipant}
	proc := &Node{ID: "proc_1", Kind: KindProcess}
	topProc := &Node{ID: "proc_top", Kind: KindProcess}
	lane := &Node{ID: "lane_1", Kind: KindLane}
	collapsedSub := &Node{ID: "sub_collapsed", Kind: KindSubProcess, IsExpanded: false}
	expandedSub := &Node{ID: "sub_expanded", Kind: KindSubProcess, IsExpanded: true}

	if !IsOffsettingContainer(pool, nil) {
		t.Error("participant should offset")
	}
	if !IsOffsettingContainer(proc, pool) {
		t.Error("process directly inside a participant should offset")
	}
	if IsOffsettingContainer(topProc, nil) {
		t.Error("top-level process should not offset")
	}
	if !IsOffsettingContainer(lane, pool) {
		t.Error("lane should offset")
	}
	if IsOffsettingContainer(collapsedSub, nil) {
		t.Error("collapsed subprocess should not offset")
	}
	if !IsOffsettingContainer(expandedSub, nil) {
		t.Error("expanded subprocess should offset")
	}
}

func twoPoolGraph() *Graph {
	send := &Node{ID: "send_req", Kind: KindTask}
	recv := &Node{ID: "receive_req", Kind: KindTask}
	cust := &Node{ID: "pool_cust", Kind: KindParticipant, Children: []*Node{
		{ID: "start_c", Kind: KindStartEvent}, send,
	}}
	srv := &Node{ID: "pool_srv", Kind: KindParticipant, Children: []*Node{
		recv, {ID: "reply", Kind: KindTask},
	}}
	return &Graph{
		ID:   "collab",
		Root: []*Node{cust, srv},
		Edges: []*Edge{
			{ID: "f1", Source: "start_c", Target: "send_req", Kind: EdgeSequenceFlow},
			{ID: "f2", Source: "receive_req", Target: "reply", Kind: EdgeSequenceFlow},
			{ID: "mf1", Source: "send_req", Target: "receive_req", Kind: EdgeMessageFlow},
		},
	}
}

func TestValidateTwoPoolsWithMessageFlow(t *testing.T) {
	if err := Validate(twoPoolGraph()); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestValidateCrossPoolSequenceFlow(t *testing.T) {
	g := twoPoolGraph()
	g.Edges[2].Kind = EdgeSequenceFlow
	if err := Validate(g); err == nil {
		t.Fatal("expected error for a sequence flow crossing pools")
	}
}

func TestValidateMessageFlowWithinOnePool(t *testing.T) {
	g := twoPoolGraph()
	g.Edges[0].Kind = EdgeMessageFlow
	if err := Validate(g); err == nil {
		t.Fatal("expected error for a message flow inside one pool")
	}
}
