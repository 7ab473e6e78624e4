package pipeline

import (
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/layered"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// seedLayout stands in for an external hierarchical layout engine: it
// walks the container tree bottom-up, running the layered
// package's longest-path layering plus median crossing minimization over
// each level's direct flow children, sizing every container to fit what
// it just laid out, and finally draws a first-pass orthogonal path for
// every edge in its source's local frame. The downstream stages correct
// what this pass only approximates.
func seedLayout(g *model.Graph, opts Options) {
	layoutChildren(g.Root, g.Edges, opts)
	seedEdges(g)
}

// layoutChildren lays out one container level's direct children in place
// (local coordinates) and recurses into any child that is itself a
// container, sizing it to fit before it takes part in this level's column
// layout. allEdges is the graph's full edge list; each level restricts it
// to the sequence flows that stay within its own node set.
func layoutChildren(nodes []*model.Node, allEdges []*model.Edge, opts Options) {
	for _, n := range nodes {
		if isLayoutContainer(n) {
			layoutChildren(n.Children, allEdges, opts)
			sizeContainer(n, opts)
		}
	}

	var lanes, rest []*model.Node
	for _, n := range nodes {
		if n.Kind == model.KindLane {
			lanes = append(lanes, n)
		} else {
			rest = append(rest, n)
		}
	}

	if len(lanes) > 0 {
		stackLanes(lanes, opts)
	}
	if len(rest) > 0 {
		layoutColumns(rest, allEdges, opts)
	}
}

func isLayoutContainer(n *model.Node) bool {
	switch n.Kind {
	case model.KindParticipant, model.KindLane, model.KindProcess:
		return true
	case model.KindSubProcess:
		return n.IsExpanded
	default:
		return false
	}
}

// stackLanes places sibling lanes directly above one another (0 gap, per
// the constraint vocabulary's lane rule), sharing a common X so each
// lane's own width (set by sizeContainer) determines the pool's width.
func stackLanes(lanes []*model.Node, opts Options) {
	y := 0.0
	for _, lane := range lanes {
		lane.Bounds.X = 0
		lane.Bounds.Y = y
		y += lane.Bounds.Height
	}
}

// layoutColumns runs the Sugiyama-style column pass: longest
// path layering over sequence-flow edges restricted to this node set,
// median-heuristic crossing minimization, then column placement on the
// main (X) axis and median-ordered stacking on the cross (Y) axis.
func layoutColumns(nodes []*model.Node, allEdges []*model.Edge, opts Options) {
	local := &model.Graph{Root: nodes}
	edges := restrictEdges(allEdges, nodes)
	local.Edges = edges

	cols := layered.AssignLayers(local)
	order := make([]string, 0, len(nodes))
	byID := make(map[string]*model.Node, len(nodes))
	for _, n := range nodes {
		order = append(order, n.ID)
		byID[n.ID] = n
	}
	columns := layered.ColumnsOf(cols, order)

	bySource := make(map[string][]string)
	byTarget := make(map[string][]string)
	for _, e := range edges {
		bySource[e.Source] = append(bySource[e.Source], e.Target)
		byTarget[e.Target] = append(byTarget[e.Target], e.Source)
	}
	layered.MinimizeCrossings(columns, bySource, byTarget, 4)

	heights := make(map[string]float64, len(nodes))
	widths := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		heights[n.ID] = n.Bounds.Height
		widths[n.ID] = n.Bounds.Width
	}
	yLocal := layered.AssignX(columns, heights, opts.VerticalGap)

	maxCol := 0
	for c := range columns {
		if c > maxCol {
			maxCol = c
		}
	}
	colX := make([]float64, maxCol+2)
	for c := 0; c <= maxCol; c++ {
		colWidth := 0.0
		for _, id := range columns[c] {
			if w := widths[id]; w > colWidth {
				colWidth = w
			}
		}
		colX[c+1] = colX[c] + colWidth + opts.HorizontalGap
	}

	for c := 0; c <= maxCol; c++ {
		for _, id := range columns[c] {
			n := byID[id]
			n.Bounds.X = colX[c]
			n.Bounds.Y = yLocal[id]
		}
	}
}

// restrictEdges returns the sequence-flow edges of all whose endpoints are
// both present in nodes, the subset layered.AssignLayers should see for
// this container level.
func restrictEdges(all []*model.Edge, nodes []*model.Node) []*model.Edge {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	var out []*model.Edge
	for _, e := range all {
		if e.Kind == model.EdgeSequenceFlow && present[e.Source] && present[e.Target] {
			out = append(out, e)
		}
	}
	return out
}

// sizeContainer grows n to fit its already-laid-out children plus
// opts.ContainerPadding on every side, shifting the children so they sit
// inset from the container's own local origin.
func sizeContainer(n *model.Node, opts Options) {
	if len(n.Children) == 0 {
		if n.Bounds.Width == 0 {
			n.Bounds.Width = 300
		}
		if n.Bounds.Height == 0 {
			n.Bounds.Height = 200
		}
		return
	}
	pad := opts.ContainerPadding

	minX, minY := n.Children[0].Bounds.X, n.Children[0].Bounds.Y
	maxX, maxY := n.Children[0].Bounds.Right(), n.Children[0].Bounds.Bottom()
	for _, c := range n.Children[1:] {
		minX = minFloat(minX, c.Bounds.X)
		minY = minFloat(minY, c.Bounds.Y)
		maxX = maxFloat2(maxX, c.Bounds.Right())
		maxY = maxFloat2(maxY, c.Bounds.Bottom())
	}

	dx, dy := pad-minX, pad-minY
	for _, c := range n.Children {
		c.Bounds.X += dx
		c.Bounds.Y += dy
	}

	width := (maxX - minX) + 2*pad
	height := (maxY - minY) + 2*pad
	if n.Kind == model.KindSubProcess && n.IsExpanded {
		width = maxFloat2(width, 300)
		height = maxFloat2(height, 200)
	}
	n.Bounds.Width = width
	n.Bounds.Height = height
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat2(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// seedEdges gives every edge a first-pass orthogonal two-or-three-point
// path between its endpoints' local bounds, expressed in the source
// node's local frame (consumed by the coordinate folder via the
// "translate by source offset" rule). Boundary-event sourced edges are
// left for the boundary stage's own edge recalculation.
func seedEdges(g *model.Graph) {
	idx := g.Index()
	boundaryBounds := make(map[string]model.Bounds)
	g.Walk(func(n *model.Node) {
		for _, be := range n.BoundaryEvents {
			boundaryBounds[be.ID] = be.Bounds
		}
	})

	for _, e := range g.Edges {
		if _, ok := boundaryBounds[e.Source]; ok {
			continue
		}
		src := idx[e.Source]
		tgt := idx[e.Target]
		if src == nil || tgt == nil {
			continue
		}
		fromSide, toSide := geometry.BestConnectionSides(src.Bounds, tgt.Bounds)
		start := geometry.ConnectionPoint(src.Bounds, fromSide)
		end := geometry.ConnectionPoint(tgt.Bounds, toSide)
		pts := geometry.OrthogonalPath(start, end)
		e.Sections = []model.Section{sectionFromPoints(pts)}
	}
}

func sectionFromPoints(pts []model.Point) model.Section {
	if len(pts) == 1 {
		return model.Section{Start: pts[0], End: pts[0]}
	}
	return model.Section{Start: pts[0], Bends: append([]model.Point(nil), pts[1:len(pts)-1]...), End: pts[len(pts)-1]}
}
