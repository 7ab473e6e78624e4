// Package compact implements the pipeline's optional whitespace reduction
// stage. Nodes are pulled toward their predecessor on one axis,
// never in the opposite direction, respecting either simple adjacency
// order or (with dependency mode) a topological order over edges.
package compact

import (
	"sort"

	"github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"
)

// Axis selects which coordinate Compact reduces whitespace on.
type Axis int

const (
	AxisX Axis = iota
	AxisY
)

// Options configures a Compact call.
type Options struct {
	Axis       Axis
	MinGap     float64
	Dependency bool // enable Kahn's-order dependency-aware compaction
}

// Compact mutates nodes in place, pulling each node toward the preceding
// one on Options.Axis wherever they overlap on the perpendicular axis,
// leaving at least MinGap between them. It never moves a node in the
// direction that would widen the layout.
func Compact(nodes []*model.Node, edges []*model.Edge, opts Options) {
	if len(nodes) < 2 {
		return
	}
	if opts.Dependency {
		compactDependency(nodes, edges, opts)
		return
	}
	compactAdjacent(nodes, opts)
}

func compactAdjacent(nodes []*model.Node, opts Options) {
	ordered := append([]*model.Node(nil), nodes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return primaryOf(ordered[i], opts.Axis) < primaryOf(ordered[j], opts.Axis)
	})

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if !overlapsPerp(prev, cur, opts.Axis) {
			continue
		}
		minPos := primaryOf(prev, opts.Axis) + sizeOf(prev, opts.Axis) + opts.MinGap
		if primaryOf(cur, opts.Axis) > minPos {
			setPrimary(cur, opts.Axis, minPos)
		}
	}
}

// compactDependency orders nodes with Kahn's algorithm over edges and, for
// each node in topological order, pulls its primary coordinate in to
// max(dependency.right)+minGap whenever that's smaller than its current
// position. Nodes left out of the topological order by a cycle are not
// visited and keep their current positions, untouched by the dependency
// rule.
func compactDependency(nodes []*model.Node, edges []*model.Edge, opts Options) {
	byID := make(map[string]*model.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	preds := make(map[string][]string)
	inDegree := make(map[string]int, len(nodes))
	for _, n := range nodes {
		inDegree[n.ID] = 0
	}
	for _, e := range edges {
		if _, ok := byID[e.Source]; !ok {
			continue
		}
		if _, ok := byID[e.Target]; !ok {
			continue
		}
		preds[e.Target] = append(preds[e.Target], e.Source)
		inDegree[e.Target]++
	}

	var queue []string
	for _, n := range nodes {
		if inDegree[n.ID] == 0 {
			queue = append(queue, n.ID)
		}
	}
	sort.Strings(queue)

	remaining := make(map[string]int, len(inDegree))
	for k, v := range inDegree {
		remaining[k] = v
	}

	var order []string
	outBySource := make(map[string][]string)
	for _, e := range edges {
		outBySource[e.Source] = append(outBySource[e.Source], e.Target)
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		var next []string
		for _, tgt := range outBySource[cur] {
			remaining[tgt]--
			if remaining[tgt] == 0 {
				next = append(next, tgt)
			}
		}
		sort.Strings(next)
		queue = append(queue, next...)
	}

	for _, id := range order {
		n := byID[id]
		if n == nil {
			continue
		}
		maxRight := -1.0
		hasDep := false
		for _, depID := range preds[id] {
			dep := byID[depID]
			if dep == nil {
				continue
			}
			hasDep = true
			if r := primaryOf(dep, opts.Axis) + sizeOf(dep, opts.Axis); r > maxRight {
				maxRight = r
			}
		}
		if !hasDep {
			continue
		}
		candidate := maxRight + opts.MinGap
		if candidate < primaryOf(n, opts.Axis) {
			setPrimary(n, opts.Axis, candidate)
		}
	}

	// Cycle residuals: nodes Kahn's algorithm never emitted are left at
	// their current position, untouched by the dependency rule.
}

func primaryOf(n *model.Node, axis Axis) float64 {
	if axis == AxisX {
		return n.Bounds.X
	}
	return n.Bounds.Y
}

func setPrimary(n *model.Node, axis Axis, v float64) {
	if axis == AxisX {
		n.Bounds.X = v
	} else {
		n.Bounds.Y = v
	}
}

func sizeOf(n *model.Node, axis Axis) float64 {
	if axis == AxisX {
		return n.Bounds.Width
	}
	return n.Bounds.Height
}

func overlapsPerp(a, b *model.Node, axis Axis) bool {
	if axis == AxisX {
		return a.Bounds.Y < b.Bounds.Bottom() && a.Bounds.Bottom() > b.Bounds.Y
	}
	return a.Bounds.X < b.Bounds.Right() && a.Bounds.Right() > b.Bounds.X
}
