package geometry

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	d := Distance(Point{X: 0, Y: 0}, Point{X: 3, Y: 4})
	if d != 5 {
		t.Errorf("Distance = %v, want 5", d)
	}
}

func TestSegmentCrossesStrictInterior(t *testing.T) {
	node := Bounds{X: 100, Y: 100, Width: 100, Height: 80}

	// Passes through the middle.
	if !SegmentCrossesStrictInterior(Point{X: 0, Y: 140}, Point{X: 300, Y: 140}, node) {
		t.Error("expected crossing for a segment through the node's middle")
	}

	// Merely touches the boundary, should not count given the 5px margin.
	if SegmentCrossesStrictInterior(Point{X: 0, Y: 100}, Point{X: 300, Y: 100}, node) {
		t.Error("did not expect crossing for a segment along the top edge")
	}

	// Passes entirely outside.
	if SegmentCrossesStrictInterior(Point{X: 0, Y: 500}, Point{X: 300, Y: 500}, node) {
		t.Error("did not expect crossing for a segment far below the node")
	}
}

func TestBestConnectionSides(t *testing.T) {
	left := Bounds{X: 0, Y: 0, Width: 40, Height: 40}
	right := Bounds{X: 200, Y: 0, Width: 40, Height: 40}
	fromSide, toSide := BestConnectionSides(left, right)
	if fromSide != SideRight || toSide != SideLeft {
		t.Errorf("got (%v, %v), want (right, left)", fromSide, toSide)
	}

	above := Bounds{X: 0, Y: 0, Width: 40, Height: 40}
	below := Bounds{X: 0, Y: 200, Width: 40, Height: 40}
	fromSide, toSide = BestConnectionSides(above, below)
	if fromSide != SideBottom || toSide != SideTop {
		t.Errorf("got (%v, %v), want (bottom, top)", fromSide, toSide)
	}
}

func TestEnsureOrthogonalWaypoints(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 100, Y: 100}}
	out := EnsureOrthogonalWaypoints(pts)
	if !IsOrthogonal(out, 0.001) {
		t.Errorf("expected orthogonal path, got %v", out)
	}
	if len(out) != 3 {
		t.Fatalf("expected a bend inserted, got %d points: %v", len(out), out)
	}
	if out[1].X != out[2].X || out[0].Y != out[1].Y {
		t.Errorf("expected horizontal-first bend, got %v", out)
	}
}

func TestCollapseCollinear(t *testing.T) {
	pts := []Point{{X: 0, Y: 0}, {X: 50, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 50}, {X: 100, Y: 100}}
	out := CollapseCollinear(pts)
	want := []Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}}
	if len(out) != len(want) {
		t.Fatalf("got %v, want %v", out, want)
	}
	for i := range want {
		if out[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, out[i], want[i])
		}
	}
}

func TestAdjustToDiamondOnSide(t *testing.T) {
	gw := Bounds{X: 100, Y: 100, Width: 50, Height: 50} // center (125, 125)

	// Top-mid of the box should project to the top corner of the diamond
	// (they coincide for a box side's midpoint).
	p := Point{X: 125, Y: 100}
	got := AdjustToDiamond(p, gw, Point{X: 125, Y: 50})
	if math.Abs(got.X-125) > 0.01 || math.Abs(got.Y-100) > 0.01 {
		t.Errorf("AdjustToDiamond(top-mid) = %v, want (125,100)", got)
	}

	// A point on the top side but off-center should move onto the diamond.
	p = Point{X: 140, Y: 100}
	got = AdjustToDiamond(p, gw, Point{X: 140, Y: 50})
	if !OnDiamond(got, gw, 1.0) {
		t.Errorf("AdjustToDiamond(%v) = %v is not on the diamond", p, got)
	}
}

func TestOnDiamondCorners(t *testing.T) {
	gw := Bounds{X: 0, Y: 0, Width: 50, Height: 50}
	corners := []Point{{X: 25, Y: 0}, {X: 50, Y: 25}, {X: 25, Y: 50}, {X: 0, Y: 25}}
	for _, c := range corners {
		if !OnDiamond(c, gw, 1.0) {
			t.Errorf("corner %v should lie on the diamond", c)
		}
	}
	if OnDiamond(Point{X: 0, Y: 0}, gw, 1.0) {
		t.Error("box corner (0,0) should not lie on the diamond")
	}
}

func TestClosestSideByDistance(t *testing.T) {
	b := Bounds{X: 0, Y: 0, Width: 100, Height: 50}
	if got := ClosestSideByDistance(Point{X: 50, Y: 0}, b); got != SideTop {
		t.Errorf("got %v, want top", got)
	}
	if got := ClosestSideByDistance(Point{X: 0, Y: 25}, b); got != SideLeft {
		t.Errorf("got %v, want left", got)
	}
}

func TestEnsurePerpendicularEndpointsInsertsStandoff(t *testing.T) {
	// The final segment runs horizontally into a point on the target's top
	// side, so it is not perpendicular to that side and a standoff bend
	// has to be inserted above the endpoint.
	pts := []Point{{X: 0, Y: 0}, {X: 0, Y: 40}, {X: 80, Y: 40}}
	out := EnsurePerpendicularEndpoints(pts, SideTop, false, 15)
	n := len(out)
	last, prev := out[n-1], out[n-2]
	if last.X != prev.X {
		t.Errorf("expected vertical final segment entering top side, got %v -> %v", prev, last)
	}
}

func TestEnsurePerpendicularEndpointsKeepsPathOrthogonal(t *testing.T) {
	// First segment leaves a bottom side horizontally; the fix must bend
	// away at the standoff without turning any segment diagonal.
	pts := []Point{{X: 50, Y: 98}, {X: 60, Y: 98}, {X: 60, Y: 245}}
	out := EnsurePerpendicularEndpoints(pts, SideBottom, true, 15)
	if out[0].X != out[1].X {
		t.Errorf("expected vertical first segment leaving the bottom side, got %v -> %v", out[0], out[1])
	}
	if !IsOrthogonal(out, 0.01) {
		t.Errorf("expected a fully orthogonal path, got %v", out)
	}
	if out[len(out)-1] != pts[len(pts)-1] {
		t.Errorf("endpoint moved: got %v, want %v", out[len(out)-1], pts[len(pts)-1])
	}
}
