package model

// ApplyDefaultSizes fills in Bounds.Width/Height for any node that doesn't
// already carry caller-supplied dimensions, using StandardDimensions.
// Expanded subprocesses get the 300x200 minimum; boundary events always get
// the fixed 36x36 box regardless of caller input.
func ApplyDefaultSizes(g *Graph) {
	g.Walk(func(n *Node) {
		if n.Bounds.Width == 0 || n.Bounds.Height == 0 {
			if n.Kind == KindSubProcess && n.IsExpanded {
				n.Bounds.Width, n.Bounds.Height = 300, 200
				return
			}
			if dim, ok := StandardDimensions[n.Kind]; ok {
				if n.Bounds.Width == 0 {
					n.Bounds.Width = dim[0]
				}
				if n.Bounds.Height == 0 {
					n.Bounds.Height = dim[1]
				}
			}
		}
		if n.Kind == KindSubProcess && n.IsExpanded {
			if n.Bounds.Width < 300 {
				n.Bounds.Width = 300
			}
			if n.Bounds.Height < 200 {
				n.Bounds.Height = 200
			}
		}
		// A task with attached data inputs/outputs reserves layout room
		// below its visible box for the stacked 36x50 data-object shapes
		// (24px apart); VisualHeight keeps the original box so edges still
		// enter at the visible center.
		if n.VisualHeight == 0 && (len(n.DataInputs) > 0 || len(n.DataOutputs) > 0) {
			stack := len(n.DataInputs)
			if len(n.DataOutputs) > stack {
				stack = len(n.DataOutputs)
			}
			n.VisualHeight = n.Bounds.Height
			n.Bounds.Height += float64(stack) * (50 + 24)
		}
		for _, be := range n.BoundaryEvents {
			be.Bounds.Width, be.Bounds.Height = 36, 36
		}
	})
}
