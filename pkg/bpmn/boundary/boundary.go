// Package boundary implements the pipeline's boundary-event
// post-processor: it positions boundary events on their host's
// bottom edge, classifies each boundary branch by where it eventually
// flows, lays out branch targets in Y layers below the host, propagates
// X rightward along each branch, repositions any gateway where a branch
// rejoins the main flow, and finally reroutes every edge with a moved
// endpoint.
//
// This is the most involved stage in the pipeline; collection,
// classification, placement, gateway repositioning, and rerouting each
// run as their own pass, in that order.
package boundary

import (
	"sort"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/edgefix"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/treelayout"
)

// DestinationClass buckets a boundary branch by where it eventually
// leads, which in turn decides which Y layer it is placed in.
type DestinationClass int

const (
	MergeToMain DestinationClass = iota
	ToEndEvent
	DeadEnd
)

// BranchInfo is the collection pass's record for one boundary event.
type BranchInfo struct {
	HostID          string
	BoundaryID      string
	BoundaryIndex   int
	TotalBoundaries int
	Target          string // first outgoing sequence-flow target, "" if none
}

// CollectBranches walks every node with boundary events and records one
// BranchInfo per boundary event.
func CollectBranches(g *model.Graph) []BranchInfo {
	bySource := edgesBySource(g)
	var out []BranchInfo
	g.Walk(func(n *model.Node) {
		total := len(n.BoundaryEvents)
		for _, be := range n.BoundaryEvents {
			target := ""
			for _, e := range bySource[be.ID] {
				target = e.Target
				break
			}
			out = append(out, BranchInfo{
				HostID:          n.ID,
				BoundaryID:      be.ID,
				BoundaryIndex:   be.BoundaryIndex,
				TotalBoundaries: total,
				Target:          target,
			})
		}
	})
	return out
}

// PositionBoundaryEvents sets each host's boundary events on its bottom
// edge, evenly spaced.
func PositionBoundaryEvents(g *model.Graph) {
	g.Walk(func(n *model.Node) {
		total := len(n.BoundaryEvents)
		if total == 0 {
			return
		}
		for _, be := range n.BoundaryEvents {
			i := float64(be.BoundaryIndex + 1)
			x := n.Bounds.X + n.Bounds.Width*i/float64(total+1) - 18
			y := n.Bounds.Y + n.Bounds.Height - 18
			be.Bounds = model.Bounds{X: x, Y: y, Width: 36, Height: 36}
		}
	})
}

func edgesBySource(g *model.Graph) map[string][]*model.Edge { return g.EdgesBySource() }

func edgesByTarget(g *model.Graph) map[string][]*model.Edge { return g.EdgesByTarget() }

// classifyBranches buckets each branch: a branch is MergeToMain if it
// reaches a node also fed by a main-flow source (an incoming edge from a
// node that isn't itself any boundary event's first target); ToEndEvent
// if it terminates in an end event with no such merge; DeadEnd otherwise.
func classifyBranches(g *model.Graph, branches []BranchInfo) map[string]DestinationClass {
	idx := g.Index()
	bySource := edgesBySource(g)
	byTarget := edgesByTarget(g)

	branchTargets := make(map[string]bool, len(branches))
	for _, b := range branches {
		if b.Target != "" {
			branchTargets[b.Target] = true
		}
	}

	isMergePoint := func(nodeID string) bool {
		for _, e := range byTarget[nodeID] {
			if !branchTargets[e.Source] {
				return true
			}
		}
		return false
	}

	classes := make(map[string]DestinationClass, len(branches))
	for _, b := range branches {
		if b.Target == "" {
			continue
		}
		classes[b.Target] = classifyFrom(b.Target, idx, bySource, isMergePoint)
	}
	return classes
}

func classifyFrom(start string, idx map[string]*model.Node, bySource map[string][]*model.Edge, isMergePoint func(string) bool) DestinationClass {
	visited := map[string]bool{}
	queue := []string{start}
	first := true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur] {
			continue
		}
		visited[cur] = true

		if !first && isMergePoint(cur) {
			return MergeToMain
		}
		first = false

		if n := idx[cur]; n != nil && n.Kind == model.KindEndEvent {
			return ToEndEvent
		}
		for _, e := range bySource[cur] {
			if !visited[e.Target] {
				queue = append(queue, e.Target)
			}
		}
	}
	return DeadEnd
}

// Result reports the side effects of Layout that downstream stages (the
// main-flow normalizer, the gateway propagator) need but cannot recompute
// on their own: which nodes were moved and which gateways were
// repositioned as merge points for boundary branches.
type Result struct {
	// Moved is the set of node ids whose Bounds were changed by Layout.
	Moved map[string]bool
	// ConvergingGateways are, in detection order, the ids of every node
	// with incoming edges from both a boundary branch and main flow,
	// regardless of whether the repositioning pass actually had to shift
	// it rightward.
	ConvergingGateways []string
	// RoutingFailures holds the ids of edges the rerouting phase could
	// only place via the A* fallback, or for which even that found no
	// path. Recovered locally, never fatal.
	RoutingFailures []string
}

// Layout runs the full post-processing sequence over g, mutating
// node/boundary-event bounds and edge sections in place. horizontalGap is
// handed to resolveLayerY, which widens placed branch boxes by it (the
// pipeline passes Options.HorizontalGap, default 50).
func Layout(g *model.Graph, horizontalGap float64) Result {
	branches := CollectBranches(g)
	PositionBoundaryEvents(g)

	classes := classifyBranches(g, branches)
	idx := g.Index()
	bySource := edgesBySource(g)

	order := make([]BranchInfo, 0, len(branches))
	for _, b := range branches {
		if b.Target != "" {
			order = append(order, b)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		ci, cj := classes[order[i].Target], classes[order[j].Target]
		if ci != cj {
			return ci < cj
		}
		hi, hj := idx[order[i].HostID], idx[order[j].HostID]
		if hi == nil || hj == nil {
			return false
		}
		beI, beJ := findBoundaryEvent(hi, order[i].BoundaryID), findBoundaryEvent(hj, order[j].BoundaryID)
		if beI == nil || beJ == nil {
			return false
		}
		return beI.Bounds.X < beJ.Bounds.X
	})

	placed := make([]model.Bounds, 0, len(order))
	moved := make(map[string]bool)

	hostBottom := 0.0
	for _, b := range branches {
		if h := idx[b.HostID]; h != nil {
			if bottom := h.Bounds.Bottom(); bottom > hostBottom {
				hostBottom = bottom
			}
		}
	}
	baseMerge := hostBottom + 85
	baseEnd := baseMerge + 80
	baseDead := baseEnd + 100

	for _, b := range order {
		class := classes[b.Target]
		host := idx[b.HostID]
		be := findBoundaryEvent(host, b.BoundaryID)
		if host == nil || be == nil {
			continue
		}

		tree := buildBranchTree(b.Target, idx, bySource)
		ids := flattenTree(tree)

		var baseY float64
		switch class {
		case MergeToMain:
			baseY = baseMerge
		case ToEndEvent:
			baseY = baseEnd
		default:
			baseY = baseDead
		}
		y := resolveLayerY(baseY, placed, horizontalGap)

		var x float64
		switch class {
		case MergeToMain:
			x = host.Bounds.X + host.Bounds.Width + 30
		case ToEndEvent:
			x = be.Bounds.X + 20
		default:
			x = be.Bounds.X
		}

		placeTree(tree, idx, x, y, moved)

		aabb := chainAABB(ids, idx)
		placed = append(placed, aabb)
	}

	converging := repositionConvergingGateways(g, moved, idx)
	routingFailures := recalculateEdges(g, moved, idx)
	return Result{Moved: moved, ConvergingGateways: converging, RoutingFailures: routingFailures}
}

func findBoundaryEvent(host *model.Node, id string) *model.BoundaryEvent {
	if host == nil {
		return nil
	}
	for _, be := range host.BoundaryEvents {
		if be.ID == id {
			return be
		}
	}
	return nil
}

// buildBranchTree walks forward from start building a full TreeNode tree
// (treelayout's input shape): every outgoing edge from a node in the branch is
// followed, not just the first, so a boundary branch that itself forks
// into more than one downstream task gets every fork a position instead
// of silently dropping all but the first. Recursion stops at (and
// excludes) a node classified elsewhere as a merge point back into main
// flow — merge points themselves are never moved — and at an end event.
//
// TreeNode.Width is set to the node's own Height: branch trees here grow
// rightward with forks stacked vertically, so what treelayout's firstWalk
// spaces out as sibling "width" is, in this branch's orientation, actually
// each node's height. placeTree below only reads the lane offsets
// Layout's firstWalk produces from this; it computes X/Y itself, in the
// branch's own rightward/height-centered convention, so treelayout's
// depth-axis (Height field, secondWalk's Y) is unused here.
func buildBranchTree(start string, idx map[string]*model.Node, bySource map[string][]*model.Edge) *treelayout.TreeNode {
	return buildBranchTreeVisited(start, idx, bySource, map[string]bool{})
}

func buildBranchTreeVisited(id string, idx map[string]*model.Node, bySource map[string][]*model.Edge, visited map[string]bool) *treelayout.TreeNode {
	if visited[id] {
		return nil
	}
	n := idx[id]
	if n == nil {
		return nil
	}
	visited[id] = true
	tn := &treelayout.TreeNode{ID: id, Width: n.Bounds.Height}
	if n.Kind == model.KindEndEvent {
		return tn
	}
	for _, e := range bySource[id] {
		if visited[e.Target] || isLikelyMergePoint(e.Target, bySource) {
			continue
		}
		if child := buildBranchTreeVisited(e.Target, idx, bySource, visited); child != nil {
			tn.Children = append(tn.Children, child)
		}
	}
	return tn
}

// flattenTree lists every node id in tree in a stable pre-order, used in
// place of a linear chain wherever downstream code needs the branch's
// full node set (AABB computation, moved-set bookkeeping).
func flattenTree(tree *treelayout.TreeNode) []string {
	if tree == nil {
		return nil
	}
	ids := []string{tree.ID}
	for _, c := range tree.Children {
		ids = append(ids, flattenTree(c)...)
	}
	return ids
}

func isLikelyMergePoint(nodeID string, bySource map[string][]*model.Edge) bool {
	count := 0
	for _, edges := range bySource {
		for _, e := range edges {
			if e.Target == nodeID {
				count++
			}
		}
	}
	return count >= 2
}

// resolveLayerY returns baseY if a 40px-tall band starting there clears
// the vertical extent of every already-placed branch box; otherwise it
// moves the band to 55px below the bottom of the lowest box it overlaps
// and checks again. Only Y extents are compared: the boxes are widened by
// horizontalGap, but their X extents take no part in the test.
func resolveLayerY(baseY float64, placed []model.Bounds, horizontalGap float64) float64 {
	y := baseY
	for {
		overlap := false
		maxY := y
		for _, p := range placed {
			inflated := model.Bounds{X: p.X - horizontalGap, Y: p.Y, Width: p.Width + 2*horizontalGap, Height: p.Height}
			if y < inflated.Bottom() && y+40 > inflated.Y {
				overlap = true
				if inflated.Bottom() > maxY {
					maxY = inflated.Bottom()
				}
			}
		}
		if !overlap {
			return y
		}
		y = maxY + 55
	}
}

// placeTree positions every node in tree, anchored so the branch's root
// sits exactly at (x, y). treelayout's Reingold-Tilford firstWalk
// (pkg/bpmn/treelayout, via TreeNode.Width holding each node's height —
// the dimension that actually needs clearance when forks are stacked as
// lanes) assigns each node a lane offset relative to its siblings; a
// depth-first walk then places every node relative to its immediate
// parent using the same rightward-propagation formula a linear chain
// always used (parent.x + parent.width + 20, vertically centered on the
// parent by height), plus that lane offset. For a chain with no forks the
// offset is always zero and this reduces to the old single-chain
// placement exactly; a branch that forks into more than one downstream
// node gets every fork its own lane instead of only the first
// continuation being placed.
func placeTree(tree *treelayout.TreeNode, idx map[string]*model.Node, x, y float64, moved map[string]bool) {
	if tree == nil {
		return
	}
	const forkGap = 20.0
	lanes := treelayout.Layout(tree, forkGap, 0)

	var place func(n *treelayout.TreeNode, px, py float64)
	place = func(n *treelayout.TreeNode, px, py float64) {
		node := idx[n.ID]
		if node == nil {
			return
		}
		node.Bounds.X, node.Bounds.Y = px, py
		node.HasCoords = true
		moved[n.ID] = true
		for _, c := range n.Children {
			child := idx[c.ID]
			if child == nil {
				continue
			}
			childX := node.Bounds.X + node.Bounds.Width + 20
			laneDelta := lanes[c.ID].X - lanes[n.ID].X
			childY := node.Bounds.Y + laneDelta + (node.Bounds.Height-child.Bounds.Height)/2
			place(c, childX, childY)
		}
	}
	place(tree, x, y)
}

func chainAABB(chain []string, idx map[string]*model.Node) model.Bounds {
	var box model.Bounds
	first := true
	for _, id := range chain {
		n := idx[id]
		if n == nil {
			continue
		}
		if first {
			box = n.Bounds
			first = false
			continue
		}
		minX, minY := min(box.X, n.Bounds.X), min(box.Y, n.Bounds.Y)
		maxX, maxY := max(box.Right(), n.Bounds.Right()), max(box.Bottom(), n.Bounds.Bottom())
		box = model.Bounds{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
	}
	return box
}

// repositionConvergingGateways finds every node with incoming edges from
// both a moved (boundary-branch) node and a main-flow node and pushes its
// X to clear every incoming source's right edge. Returns every node id so
// classified, in a stable order, for the normalizer and propagator to
// consume.
func repositionConvergingGateways(g *model.Graph, moved map[string]bool, idx map[string]*model.Node) []string {
	byTarget := edgesByTarget(g)

	var targetIDs []string
	for nodeID := range byTarget {
		targetIDs = append(targetIDs, nodeID)
	}
	sort.Strings(targetIDs)

	var converging []string
	for _, nodeID := range targetIDs {
		edges := byTarget[nodeID]
		if len(edges) < 2 {
			continue
		}
		var fromBranch, fromMain bool
		maxRight := 0.0
		for _, e := range edges {
			src := idx[e.Source]
			if src == nil {
				continue
			}
			if moved[e.Source] {
				fromBranch = true
			} else {
				fromMain = true
			}
			if r := src.Bounds.Right(); r > maxRight {
				maxRight = r
			}
		}
		if fromBranch && fromMain {
			n := idx[nodeID]
			if n == nil {
				continue
			}
			converging = append(converging, nodeID)
			newX := maxRight + 50
			if newX > n.Bounds.X {
				n.Bounds.X = newX
				moved[nodeID] = true
			}
		}
	}
	return converging
}

// recalculateEdges reroutes every edge touching a moved node, or sourced
// from a boundary event, using every moved node and host as an obstacle
// set. Returns the ids of edges that had to fall back to the A* router
// (recovered locally, never fatal).
func recalculateEdges(g *model.Graph, moved map[string]bool, idx map[string]*model.Node) []string {
	boundaryHosts := map[string]*model.Node{}
	boundaryByID := map[string]model.Bounds{}
	g.Walk(func(n *model.Node) {
		for _, be := range n.BoundaryEvents {
			boundaryHosts[be.ID] = n
			boundaryByID[be.ID] = be.Bounds
		}
	})

	var obstacles []edgefix.Obstacle
	g.Walk(func(n *model.Node) {
		if moved[n.ID] {
			obstacles = append(obstacles, edgefix.Obstacle{ID: n.ID, Bounds: n.Bounds})
		}
	})
	for _, h := range boundaryHosts {
		obstacles = append(obstacles, edgefix.Obstacle{ID: h.ID, Bounds: h.Bounds})
	}

	var routingFailures []string
	for _, e := range g.Edges {
		_, sourceIsBoundary := boundaryByID[e.Source]
		if !moved[e.Source] && !moved[e.Target] && !sourceIsBoundary {
			continue
		}
		sourceBounds, ok := boundaryByID[e.Source]
		if !ok {
			src := idx[e.Source]
			if src == nil {
				continue
			}
			sourceBounds = src.Bounds
		}
		target := idx[e.Target]
		if target == nil {
			continue
		}
		var waypoints []model.Point
		if len(e.Sections) > 0 {
			waypoints = e.Sections[0].Waypoints()
		} else {
			waypoints = []model.Point{sourceBounds.Center(), target.Bounds.Center()}
		}
		fixed, failed := edgefix.FixEdge(e.Source, e.Target, sourceBounds, target.Bounds, waypoints, obstacles)
		e.Sections = []model.Section{sectionFrom(fixed)}
		if failed {
			routingFailures = append(routingFailures, e.ID)
		}
	}
	return routingFailures
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
