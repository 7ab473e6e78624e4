// Package fold implements the pipeline's coordinate folder / diagram
// builder, the final stage before a graph becomes a diagram. It
// walks the layouted tree depth-first accumulating container offsets,
// folds every node and boundary event into a single absolute coordinate
// frame, places labels, translates and perpendicular/diamond-corrects
// every edge, and assembles the ioSpecification data-object shapes a
// task's attached data objects need.
package fold

import (
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/geometry"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// ShapeLabel is a rendered label: text plus the absolute box it sits in.
type ShapeLabel struct {
	Text   string
	Bounds model.Bounds
}

// Shape is one BPMNShape in the folded diagram.
type Shape struct {
	ID           string
	Kind         model.Kind
	Bounds       model.Bounds
	Label        *ShapeLabel
	IsExpanded   bool
	IsHorizontal bool // pools/lanes render with isHorizontal="true"
}

// EdgeDI is one BPMNEdge in the folded diagram.
type EdgeDI struct {
	ID       string
	Kind     model.EdgeKind
	Sections []model.Section
	Label    *ShapeLabel
}

// Diagram is the fold's complete output: every shape (including boundary
// events and ioSpecification data objects) and every edge, all in one
// absolute coordinate frame.
type Diagram struct {
	Shapes []Shape
	Edges  []EdgeDI
}

// offsetInfo is the per-node bookkeeping the fold walk produces: the node's
// folded absolute bounds, and the container offset that was added to its
// local bounds to get there (used to translate edges later).
type offsetInfo struct {
	absolute model.Bounds
	offset   model.Point
}

// Fold folds the layouted graph into one absolute frame and returns the
// assembled diagram.
func Fold(g *model.Graph) *Diagram {
	idx := g.Index()
	infos := make(map[string]offsetInfo)
	poolOrigins := make(map[string]model.Point)

	var shapes []Shape
	var dataAssocEdges []EdgeDI
	var walk func(nodes []*model.Node, parent *model.Node, ox, oy float64, pool model.Point)
	walk = func(nodes []*model.Node, parent *model.Node, ox, oy float64, pool model.Point) {
		for _, n := range nodes {
			abs := model.Bounds{X: n.Bounds.X + ox, Y: n.Bounds.Y + oy, Width: n.Bounds.Width, Height: n.Bounds.Height}
			infos[n.ID] = offsetInfo{absolute: abs, offset: model.Point{X: ox, Y: oy}}
			poolOrigins[n.ID] = pool

			shapes = append(shapes, Shape{
				ID:           n.ID,
				Kind:         n.Kind,
				Bounds:       abs,
				Label:        placeNodeLabel(n, abs),
				IsExpanded:   n.Kind == model.KindSubProcess && n.IsExpanded,
				IsHorizontal: n.Kind == model.KindParticipant || n.Kind == model.KindLane,
			})

			for _, be := range n.BoundaryEvents {
				beAbs := model.Bounds{X: be.Bounds.X + ox, Y: be.Bounds.Y + oy, Width: be.Bounds.Width, Height: be.Bounds.Height}
				infos[be.ID] = offsetInfo{absolute: beAbs, offset: model.Point{X: ox, Y: oy}}
				poolOrigins[be.ID] = pool
				shapes = append(shapes, Shape{ID: be.ID, Kind: model.KindBoundaryEvent, Bounds: beAbs})
			}

			dataShapes, dataEdges := placeDataObjects(n, abs, idx)
			shapes = append(shapes, dataShapes...)
			dataAssocEdges = append(dataAssocEdges, dataEdges...)

			childOx, childOy := ox, oy
			if model.IsOffsettingContainer(n, parent) {
				childOx, childOy = abs.X, abs.Y
			}
			childPool := pool
			if n.Kind == model.KindParticipant {
				childPool = model.Point{X: abs.X, Y: abs.Y}
			}
			walk(n.Children, n, childOx, childOy, childPool)
		}
	}
	walk(g.Root, nil, 0, 0, model.Point{})

	var edges []EdgeDI
	var placedLabels []model.Bounds
	allBounds := allNodeBounds(shapes)
	for _, e := range g.Edges {
		edges = append(edges, foldEdge(e, infos, poolOrigins, idx, allBounds, &placedLabels))
	}
	edges = append(edges, dataAssocEdges...)

	return &Diagram{Shapes: shapes, Edges: edges}
}

func allNodeBounds(shapes []Shape) []model.Bounds {
	out := make([]model.Bounds, 0, len(shapes))
	for _, s := range shapes {
		out = append(out, s.Bounds)
	}
	return out
}

// foldEdge translates e's waypoints into the absolute frame, applies
// diamond-endpoint correction for gateway endpoints, clamps visual-height
// hosts, and re-asserts orthogonality and perpendicularity.
func foldEdge(e *model.Edge, infos map[string]offsetInfo, poolOrigins map[string]model.Point, idx map[string]*model.Node, allBounds []model.Bounds, placedLabels *[]model.Bounds) EdgeDI {
	if len(e.Sections) == 0 {
		return EdgeDI{ID: e.ID, Kind: e.Kind}
	}

	sec := e.Sections[0]
	pts := sec.Waypoints()

	if !e.AbsoluteCoords {
		off := infos[e.Source].offset
		if e.PoolRelativeCoords {
			off = poolOrigins[e.Source]
		}
		translated := make([]model.Point, len(pts))
		for i, p := range pts {
			translated[i] = model.Point{X: p.X + off.X, Y: p.Y + off.Y}
		}
		pts = translated
	}

	srcNode, tgtNode := idx[e.Source], idx[e.Target]
	if srcNode != nil && srcNode.Kind.IsGateway() && len(pts) >= 2 {
		pts[0] = geometry.AdjustToDiamond(pts[0], infos[e.Source].absolute, pts[1])
	}
	if tgtNode != nil && tgtNode.Kind.IsGateway() && len(pts) >= 2 {
		n := len(pts)
		pts[n-1] = geometry.AdjustToDiamond(pts[n-1], infos[e.Target].absolute, pts[n-2])
	}

	if srcNode != nil && srcNode.VisualHeight > 0 && srcNode.VisualHeight < srcNode.Bounds.Height && len(pts) >= 2 {
		pts = clampVisualHeight(pts, true, infos[e.Source].absolute, srcNode.VisualHeight)
	}
	if tgtNode != nil && tgtNode.VisualHeight > 0 && tgtNode.VisualHeight < tgtNode.Bounds.Height && len(pts) >= 2 {
		pts = clampVisualHeight(pts, false, infos[e.Target].absolute, tgtNode.VisualHeight)
	}

	pts = geometry.EnsureOrthogonalWaypoints(pts)
	pts = perpendicularizeEndpoints(pts, infos, e)
	pts = geometry.CollapseCollinear(pts)

	out := EdgeDI{ID: e.ID, Kind: e.Kind, Sections: []model.Section{sectionFrom(pts)}}
	if e.Name != "" {
		out.Label = placeEdgeLabel(e.Name, pts, allBounds, placedLabels)
	}
	return out
}

func clampVisualHeight(pts []model.Point, atStart bool, abs model.Bounds, visualHeight float64) []model.Point {
	centerY := abs.Y + visualHeight/2
	out := append([]model.Point(nil), pts...)
	if atStart {
		if out[0].Y != out[1].Y {
			out[0].Y = centerY
			out[1].Y = centerY
		}
	} else {
		n := len(out)
		if out[n-1].Y != out[n-2].Y {
			out[n-1].Y = centerY
			out[n-2].Y = centerY
		}
	}
	return out
}

// perpendicularizeEndpoints applies EnsurePerpendicularEndpoints at both
// ends, choosing the connection side by the endpoint's closest-edge
// distance to the node's bounding box for every node; gateways get no
// separate diamond-corner or edge-direction choice. Endpoint
// bounds come from infos so boundary-event sources (which have no Node
// entry of their own) get the same treatment as regular nodes.
func perpendicularizeEndpoints(pts []model.Point, infos map[string]offsetInfo, e *model.Edge) []model.Point {
	if len(pts) < 2 {
		return pts
	}
	const standoff = 15.0
	if info, ok := infos[e.Source]; ok {
		side := geometry.ClosestSideByDistance(pts[0], info.absolute)
		pts = geometry.EnsurePerpendicularEndpoints(pts, side, true, standoff)
	}
	if info, ok := infos[e.Target]; ok {
		n := len(pts)
		side := geometry.ClosestSideByDistance(pts[n-1], info.absolute)
		pts = geometry.EnsurePerpendicularEndpoints(pts, side, false, standoff)
	}
	return pts
}

func sectionFrom(pts []model.Point) model.Section {
	if len(pts) == 0 {
		return model.Section{}
	}
	if len(pts) == 1 {
		return model.Section{Start: pts[0], End: pts[0]}
	}
	return model.Section{Start: pts[0], Bends: append([]model.Point(nil), pts[1:len(pts)-1]...), End: pts[len(pts)-1]}
}
