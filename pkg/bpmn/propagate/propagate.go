// Package propagate implements the pipeline's gateway propagator: after
// the boundary stage relocates a converging gateway rightward, every downstream
// main-flow node must maintain a minimum horizontal gap from it, and that
// requirement propagates transitively along main-flow edges.
package propagate

import "github.com/lcpmarvel/bpmnlayout/pkg/bpmn/model"

// MinGap is the minimum horizontal clearance a downstream main-flow node
// must keep from a repositioned gateway.
const MinGap = 50

// Propagate walks forward along sequence-flow edges from each gateway id
// in gatewayIDs, breadth-first, pushing every reachable node's X to at
// least the previous node's right edge plus MinGap. Nodes already past
// that threshold are left alone; a node visited by more than one gateway
// keeps the greatest candidate X seen.
func Propagate(g *model.Graph, gatewayIDs []string) {
	idx := g.Index()
	bySource := g.EdgesBySource()

	for _, gwID := range gatewayIDs {
		gw := idx[gwID]
		if gw == nil {
			continue
		}
		visited := map[string]bool{gwID: true}
		queue := []string{gwID}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			curNode := idx[cur]
			if curNode == nil {
				continue
			}
			for _, e := range bySource[cur] {
				if e.Kind != model.EdgeSequenceFlow {
					continue
				}
				next := idx[e.Target]
				if next == nil {
					continue
				}
				candidate := curNode.Bounds.Right() + MinGap
				if candidate > next.Bounds.X {
					next.Bounds.X = candidate
				}
				if !visited[e.Target] {
					visited[e.Target] = true
					queue = append(queue, e.Target)
				}
			}
		}
	}
}
