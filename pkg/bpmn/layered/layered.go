// Package layered stands in for the external hierarchical layout engine
// referenced by the pipeline's layering stage: it assigns each node a
// column via longest-path layering over sequence-flow edges, orders each
// column to minimize edge crossings, and hands back X positions within
// each column. Boundary events and their branches are laid out
// separately by treelayout and folded in afterward, so they are excluded
// from layering here.
package layered

import (
	"slices"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// AssignLayers runs Kahn's algorithm over sequence-flow edges to assign
// every node a column index: source nodes sit at column 0, and every
// other node sits one past the deepest of its parents.
func AssignLayers(g *model.Graph) map[string]int {
	nodes := make([]*model.Node, 0)
	g.Walk(func(n *model.Node) { nodes = append(nodes, n) })

	children := make(map[string][]string)
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range g.Edges {
		if e.Kind != model.EdgeSequenceFlow {
			continue
		}
		if _, ok := inDegree[e.Target]; !ok {
			continue
		}
		children[e.Source] = append(children[e.Source], e.Target)
		inDegree[e.Target]++
	}

	cols := make(map[string]int, len(nodes))
	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}

	remaining := make(map[string]int, len(inDegree))
	for k, v := range inDegree {
		remaining[k] = v
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range children[cur] {
			if col := cols[cur] + 1; col > cols[child] {
				cols[child] = col
			}
			remaining[child]--
			if remaining[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return cols
}

// ColumnsOf groups node IDs by their assigned column, columns ascending,
// each column's members in their original Walk order.
func ColumnsOf(cols map[string]int, order []string) map[int][]string {
	out := make(map[int][]string)
	for _, id := range order {
		c := cols[id]
		out[c] = append(out[c], id)
	}
	return out
}

// posMap returns each id's index within order.
func posMap(order []string) map[string]int {
	m := make(map[string]int, len(order))
	for i, id := range order {
		m[id] = i
	}
	return m
}

// CountColumnCrossings counts edge crossings between adjacent columns
// upper and lower, given each node's outgoing edges restricted to those
// landing in lower. Implemented as inversion counting over a Fenwick
// tree: two edges (u1,v1),(u2,v2) cross iff pos(u1)<pos(u2) and
// pos(v1)>pos(v2).
func CountColumnCrossings(edgesBySource map[string][]string, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	lowerPos := posMap(lower)

	type edge struct{ u, l int }
	var edges []edge
	for i, id := range upper {
		for _, tgt := range edgesBySource[id] {
			if p, ok := lowerPos[tgt]; ok {
				edges = append(edges, edge{i, p})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if a.u != b.u {
			return a.u - b.u
		}
		return a.l - b.l
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.l + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual
		total++
		for idx := e.l + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}

// MinimizeCrossings reorders each column in place using the median
// heuristic: each node's position is set to the median position of its
// neighbors in the adjacent column, alternating downward and upward
// sweeps for a fixed number of iterations. A sweep's proposed order is
// kept only when CountColumnCrossings confirms it does not add crossings
// against the fixed neighbor column. Columns lacking a neighbor keep
// their previous relative order.
func MinimizeCrossings(columns map[int][]string, edgesBySource, edgesByTarget map[string][]string, iterations int) {
	if len(columns) == 0 {
		iterations = 0
	}
	maxCol := 0
	for c := range columns {
		if c > maxCol {
			maxCol = c
		}
	}

	for iter := 0; iter < iterations; iter++ {
		if iter%2 == 0 {
			for c := 1; c <= maxCol; c++ {
				sweepColumn(columns, c, columns[c-1], edgesByTarget, edgesBySource, true)
			}
		} else {
			for c := maxCol - 1; c >= 0; c-- {
				sweepColumn(columns, c, columns[c+1], edgesBySource, edgesBySource, false)
			}
		}
	}
}

// sweepColumn proposes a median reordering of columns[col] against the
// fixed neighbor order and keeps it only if the crossing count between
// the two columns does not increase. neighborsOf maps each of col's
// nodes to its neighbors in the fixed column; edgesBySource is always
// the source->target adjacency CountColumnCrossings expects, with the
// upper (source-side) column chosen by downward.
func sweepColumn(columns map[int][]string, col int, neighborOrder []string, neighborsOf, edgesBySource map[string][]string, downward bool) {
	order, ok := columns[col]
	if !ok || len(order) < 2 {
		return
	}

	count := func(cur []string) int {
		if downward {
			return CountColumnCrossings(edgesBySource, neighborOrder, cur)
		}
		return CountColumnCrossings(edgesBySource, cur, neighborOrder)
	}
	before := count(order)

	proposed := append([]string(nil), order...)
	reorderByMedian(proposed, neighborOrder, neighborsOf)
	if count(proposed) <= before {
		columns[col] = proposed
	}
}

func reorderByMedian(order []string, neighborOrder []string, neighborsOf map[string][]string) {
	neighborPos := posMap(neighborOrder)

	medians := make(map[string]float64, len(order))
	for _, id := range order {
		positions := make([]int, 0)
		for _, nb := range neighborsOf[id] {
			if p, ok := neighborPos[nb]; ok {
				positions = append(positions, p)
			}
		}
		if len(positions) == 0 {
			medians[id] = -1 // keep fixed nodes at the front, stable sort preserves their order
			continue
		}
		slices.Sort(positions)
		medians[id] = medianOf(positions)
	}

	slices.SortStableFunc(order, func(a, b string) int {
		ma, mb := medians[a], medians[b]
		switch {
		case ma < mb:
			return -1
		case ma > mb:
			return 1
		default:
			return 0
		}
	})
}

func medianOf(sorted []int) float64 {
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return float64(sorted[mid])
	}
	if n == 2 {
		return float64(sorted[0]+sorted[1]) / 2
	}
	left := sorted[mid-1] - sorted[0]
	right := sorted[n-1] - sorted[mid]
	if left+right == 0 {
		return float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return (float64(sorted[mid-1])*float64(right) + float64(sorted[mid])*float64(left)) / float64(left+right)
}

// AssignX lays out each column's nodes left to right, each node's width
// taken from widths, separated by gap, and returns an id -> X map local
// to each column's own origin (column placement on the main axis is the
// orchestrator's job, since column spacing depends on the widest node
// seen so far).
func AssignX(columns map[int][]string, widths map[string]float64, gap float64) map[string]float64 {
	out := make(map[string]float64)
	for _, order := range columns {
		x := 0.0
		for _, id := range order {
			out[id] = x
			x += widths[id] + gap
		}
	}
	return out
}
