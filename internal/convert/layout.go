package convert

import "mindmap-cli/internal/model"

// Layout spacing in canvas units. Horizontal spacing separates depth levels;
// vertical spacing separates sibling subtrees.
const (
	layoutNodeWidth  = 180.0
	layoutNodeHeight = 48.0
	layoutGapX       = 80.0
	layoutGapY       = 24.0
)

// Layout computes a left-to-right tidy-tree layout: each node sits at
// x = depth * (width + gap), vertically centered over the span its subtree
// occupies. Siblings keep their declared order top to bottom.
func Layout(tree *model.TreeNode) map[string]model.Position {
	out := map[string]model.Position{}
	if tree == nil {
		return out
	}
	placeSubtree(tree, 0, 0, out)
	return out
}

// placeSubtree positions n and its descendants with the subtree's top edge
// at y, returning the subtree's total height.
func placeSubtree(n *model.TreeNode, depth int, y float64, out map[string]model.Position) float64 {
	height := subtreeHeight(n)
	x := float64(depth) * (layoutNodeWidth + layoutGapX)
	out[n.ID] = model.Position{X: x, Y: y + (height-layoutNodeHeight)/2}

	childY := y
	for _, c := range n.Children {
		childY += placeSubtree(c, depth+1, childY, out) + layoutGapY
	}
	return height
}

func subtreeHeight(n *model.TreeNode) float64 {
	if len(n.Children) == 0 {
		return layoutNodeHeight
	}
	total := 0.0
	for i, c := range n.Children {
		total += subtreeHeight(c)
		if i < len(n.Children)-1 {
			total += layoutGapY
		}
	}
	if total < layoutNodeHeight {
		return layoutNodeHeight
	}
	return total
}
