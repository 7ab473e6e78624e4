package pipeline

import "testing"

func TestVerifyIdempotentOnLinearGraph(t *testing.T) {
	g := linearGraph()
	res, err := ToBpmn(g, DefaultOptions())
	if err != nil {
		t.Fatalf("ToBpmn: %v", err)
	}
	if !VerifyIdempotent(res.Diagram) {
		t.Error("VerifyIdempotent() = false, want true for a freshly folded diagram")
	}
}

func TestVerifyIdempotentRejectsDiagonalWaypoint(t *testing.T) {
	g := linearGraph()
	res, err := ToBpmn(g, DefaultOptions())
	if err != nil {
		t.Fatalf("ToBpmn: %v", err)
	}
	if len(res.Diagram.Edges) == 0 || len(res.Diagram.Edges[0].Sections) == 0 {
		t.Fatal("expected at least one edge with a section")
	}
	res.Diagram.Edges[0].Sections[0].End.X += 37
	res.Diagram.Edges[0].Sections[0].End.Y += 41
	if VerifyIdempotent(res.Diagram) {
		t.Error("VerifyIdempotent() = true, want false after introducing a diagonal segment")
	}
}
