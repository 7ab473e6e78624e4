// Package treelayout implements the Reingold-Tilford tidy tree
// algorithm: a two-pass walk that assigns every node in a tree a preliminary
// lane offset relative to its siblings and a depth-based coordinate,
// without overlap between subtrees. pkg/bpmn/boundary uses it to lay out
// a boundary-event branch's downstream node tree, translating the
// relative positions Layout returns into the branch's own coordinate
// frame (the boundary stage's concern, not this package's).
package treelayout

// TreeNode is one node in a branch tree rooted at a boundary event's first
// target.
type TreeNode struct {
	ID       string
	Width    float64
	Height   float64
	Children []*TreeNode

	prelimX  float64
	modifier float64
}

// Position is a computed node placement relative to the tree's own origin.
type Position struct {
	X, Y float64
}

// Layout runs the two-pass Reingold-Tilford walk over root and returns an
// id -> Position map, relative to the tree's own coordinate frame (root at
// depth 0, x=0 at the leftmost column).
func Layout(root *TreeNode, horizontalGap, verticalGap float64) map[string]Position {
	firstWalk(root, horizontalGap)
	positions := make(map[string]Position)
	secondWalk(root, 0, 0, verticalGap, positions)
	normalize(positions)
	return positions
}

// firstWalk computes each node's preliminary X relative to its own
// subtree's frame and each child's modifier (the offset of the child's
// whole subtree within its parent's frame), centering each parent over
// the span of its children. Keeping the two apart is what lets a child's
// own subtree layout survive its placement as a non-first sibling.
func firstWalk(n *TreeNode, gap float64) {
	if len(n.Children) == 0 {
		n.prelimX = 0
		return
	}
	x := 0.0
	for _, c := range n.Children {
		firstWalk(c, gap)
		c.modifier = x
		x += subtreeWidth(c, gap) + gap
	}
	// Center the parent over the span of its children.
	first, last := n.Children[0], n.Children[len(n.Children)-1]
	n.prelimX = (first.modifier + first.prelimX + last.modifier + last.prelimX) / 2
}

// subtreeWidth returns the horizontal span a subtree occupies, including
// inter-sibling gaps, used to lay out sibling subtrees without overlap.
func subtreeWidth(n *TreeNode, gap float64) float64 {
	if len(n.Children) == 0 {
		return n.Width
	}
	total := -gap
	for _, c := range n.Children {
		total += subtreeWidth(c, gap) + gap
	}
	if total < n.Width {
		total = n.Width
	}
	return total
}

// secondWalk adds the accumulated modifier (the sum of subtree-frame
// offsets down the ancestor chain) and assigns Y as
// depth * (height + verticalGap).
func secondWalk(n *TreeNode, depth int, modSum float64, verticalGap float64, out map[string]Position) {
	x := n.prelimX + modSum
	y := float64(depth) * (n.Height + verticalGap)
	out[n.ID] = Position{X: x, Y: y}
	for _, c := range n.Children {
		secondWalk(c, depth+1, modSum+c.modifier, verticalGap, out)
	}
}

// normalize shifts every position so the minimum X is zero, since
// firstWalk's preliminary X can be negative once children are centered.
func normalize(positions map[string]Position) {
	minX := 0.0
	first := true
	for _, p := range positions {
		if first || p.X < minX {
			minX = p.X
			first = false
		}
	}
	if minX == 0 {
		return
	}
	for id, p := range positions {
		positions[id] = Position{X: p.X - minX, Y: p.Y}
	}
}

