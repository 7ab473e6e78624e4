package treelayout

import "testing"

func TestLayoutCentersParentOverChildren(t *testing.T) {
	root := &TreeNode{
		ID: "r", Width: 40, Height: 40,
		Children: []*TreeNode{
			{ID: "a", Width: 40, Height: 40},
			{ID: "b", Width: 40, Height: 40},
		},
	}
	pos := Layout(root, 20, 30)

	mid := (pos["a"].X + pos["b"].X) / 2
	if diff := pos["r"].X - mid; diff < -0.01 || diff > 0.01 {
		t.Errorf("root.X=%v, want centered at %v", pos["r"].X, mid)
	}
	if pos["a"].Y != 40+30 {
		t.Errorf("child depth-1 Y=%v, want %v", pos["a"].Y, 40+30)
	}
}

func TestLayoutNoOverlapSiblings(t *testing.T) {
	root := &TreeNode{
		ID: "r", Width: 40, Height: 40,
		Children: []*TreeNode{
			{ID: "a", Width: 100, Height: 40},
			{ID: "b", Width: 100, Height: 40},
		},
	}
	pos := Layout(root, 20, 30)
	gap := pos["b"].X - pos["a"].X
	if gap < 100+20-0.01 {
		t.Errorf("sibling gap = %v, want >= %v", gap, 120)
	}
}

func TestLayoutNonFirstSiblingForkStaysUnderItsParent(t *testing.T) {
	// root -> a (leaf), b -> {b1, b2}: the fork sits on a non-first
	// sibling, so b's children must land in b's subtree slot, centered
	// under b, not back at the tree origin.
	root := &TreeNode{
		ID: "r", Width: 40, Height: 40,
		Children: []*TreeNode{
			{ID: "a", Width: 40, Height: 40},
			{ID: "b", Width: 40, Height: 40, Children: []*TreeNode{
				{ID: "b1", Width: 40, Height: 40},
				{ID: "b2", Width: 40, Height: 40},
			}},
		},
	}
	pos := Layout(root, 20, 30)

	mid := (pos["b1"].X + pos["b2"].X) / 2
	if diff := pos["b"].X - mid; diff < -0.01 || diff > 0.01 {
		t.Errorf("b.X=%v, want centered over its own children at %v", pos["b"].X, mid)
	}
	if pos["b1"].X < pos["a"].X+40+20-0.01 {
		t.Errorf("b1.X=%v overlaps a's subtree ending at %v", pos["b1"].X, pos["a"].X+40)
	}
	if pos["b1"].X == pos["a"].X {
		t.Error("b's first child collapsed onto the tree origin instead of b's subtree slot")
	}
}
