// Package normalize implements the pipeline's main-flow normalizer:
// it pulls the upstream main flow up to a minimum Y, re-aligns end events
// to their predecessor's vertical center, and repositions the downstream
// segment past each converging gateway so the gateway sits a fixed gap
// below the upstream main flow's bottom edge.
package normalize

import "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"

// DownstreamGapY is the vertical gap a repositioned converging gateway is
// placed below the upstream main flow's bottom edge.
const DownstreamGapY = 150

// UpstreamMinY is the minimum Y the upstream main flow's topmost
// non-end-event node is pulled to.
const UpstreamMinY = 12

// Normalize mutates g in place. convergingGateways and moved are the
// boundary stage's Result: the gateways it classified as merge points for
// a boundary branch, and every node id boundary.Layout moved.
func Normalize(g *model.Graph, convergingGateways []string, moved map[string]bool) {
	idx := g.Index()
	bySource := g.EdgesBySource()
	byTarget := g.EdgesByTarget()

	downstream := downstreamSet(convergingGateways, bySource)

	var mainFlow []*model.Node
	g.Walk(func(n *model.Node) {
		if isFlowNode(n.Kind) && !moved[n.ID] {
			mainFlow = append(mainFlow, n)
		}
	})

	var upstream []*model.Node
	for _, n := range mainFlow {
		if !downstream[n.ID] {
			upstream = append(upstream, n)
		}
	}
	if len(upstream) == 0 {
		return
	}

	deltas := make(map[string]float64)

	upstreamNonEnd := filterNonEnd(upstream)
	if len(upstreamNonEnd) > 0 {
		if dy := UpstreamMinY - minY(upstreamNonEnd); dy < 0 {
			for _, n := range upstreamNonEnd {
				n.Bounds.Y += dy
				deltas[n.ID] += dy
			}
		}
	}

	// End events on the upstream main flow stay vertically centered on
	// their predecessor, independent of the uniform upstream shift above.
	for _, n := range upstream {
		if n.Kind != model.KindEndEvent {
			continue
		}
		preds := byTarget[n.ID]
		if len(preds) == 0 {
			continue
		}
		pred := idx[preds[0].Source]
		if pred == nil {
			continue
		}
		oldY := n.Bounds.Y
		n.Bounds.Y = pred.Bounds.Center().Y - n.Bounds.Height/2
		deltas[n.ID] += n.Bounds.Y - oldY
	}

	mainFlowBottom := maxBottom(upstream)

	for _, gwID := range convergingGateways {
		gw := idx[gwID]
		if gw == nil {
			continue
		}
		targetY := mainFlowBottom + DownstreamGapY
		dy := targetY - gw.Bounds.Y
		if dy == 0 {
			continue
		}
		segment := append([]*model.Node{gw}, reachable(gwID, idx, bySource, downstream)...)
		for _, n := range segment {
			n.Bounds.Y += dy
			deltas[n.ID] += dy
		}
	}

	shiftEdges(g, deltas)
}

func isFlowNode(k model.Kind) bool {
	return !k.IsContainer() && k != model.KindBoundaryEvent && k != model.KindProcess &&
		k != model.KindTextAnnotation && k != model.KindDataObject && k != model.KindDataStore
}

// downstreamSet returns every node id reachable (forward, over any edge)
// from any of the given gateway ids, including the gateways themselves.
func downstreamSet(gatewayIDs []string, bySource map[string][]*model.Edge) map[string]bool {
	set := make(map[string]bool)
	var queue []string
	queue = append(queue, gatewayIDs...)
	for _, id := range gatewayIDs {
		set[id] = true
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range bySource[cur] {
			if !set[e.Target] {
				set[e.Target] = true
				queue = append(queue, e.Target)
			}
		}
	}
	return set
}

// reachable returns every node (excluding start) forward-reachable from
// start that downstream also marks as downstream, so the segment shifted
// with a converging gateway never pulls in an unrelated branch.
func reachable(start string, idx map[string]*model.Node, bySource map[string][]*model.Edge, downstream map[string]bool) []*model.Node {
	visited := map[string]bool{start: true}
	var out []*model.Node
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range bySource[cur] {
			if visited[e.Target] || !downstream[e.Target] {
				continue
			}
			visited[e.Target] = true
			if n := idx[e.Target]; n != nil {
				out = append(out, n)
			}
			queue = append(queue, e.Target)
		}
	}
	return out
}

func filterNonEnd(nodes []*model.Node) []*model.Node {
	var out []*model.Node
	for _, n := range nodes {
		if n.Kind != model.KindEndEvent {
			out = append(out, n)
		}
	}
	return out
}

func minY(nodes []*model.Node) float64 {
	m := nodes[0].Bounds.Y
	for _, n := range nodes[1:] {
		if n.Bounds.Y < m {
			m = n.Bounds.Y
		}
	}
	return m
}

func maxBottom(nodes []*model.Node) float64 {
	m := nodes[0].Bounds.Bottom()
	for _, n := range nodes[1:] {
		if b := n.Bounds.Bottom(); b > m {
			m = b
		}
	}
	return m
}

// shiftEdges adjusts every edge waypoint affected by a node move recorded
// in deltas: when both endpoints moved by the same delta, every section
// point shifts by it; when they moved by different deltas (crossing an
// upstream/downstream boundary), only the respective endpoint shifts.
func shiftEdges(g *model.Graph, deltas map[string]float64) {
	for _, e := range g.Edges {
		dSrc, hasSrc := deltas[e.Source]
		dTgt, hasTgt := deltas[e.Target]
		if !hasSrc && !hasTgt {
			continue
		}
		for i := range e.Sections {
			sec := &e.Sections[i]
			if hasSrc && hasTgt && dSrc == dTgt {
				sec.Start.Y += dSrc
				for j := range sec.Bends {
					sec.Bends[j].Y += dSrc
				}
				sec.End.Y += dSrc
				continue
			}
			if hasSrc {
				sec.Start.Y += dSrc
			}
			if hasTgt {
				sec.End.Y += dTgt
			}
		}
	}
}
