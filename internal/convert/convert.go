// Package convert keeps the Tree Model and the Graph Projection
// bidirectionally convertible. The graph is what the canvas edits; the tree
// is what codecs and the autosave history persist.
package convert

import (
	"mindmap-cli/internal/model"
)

// FlowToTree reduces a node/edge set to its spanning tree.
//
// The root is the node with no incoming non-cross-link edge. Children are
// attached by walking outgoing edges in edge-list order (not node insertion
// order), which keeps sibling order stable across saves. Cross-link edges
// never contribute children.
//
// Returns nil when no root is identifiable (empty graph).
func FlowToTree(nodes []model.FlowNode, edges []model.FlowEdge) *model.TreeNode {
	if len(nodes) == 0 {
		return nil
	}

	byID := make(map[string]model.FlowNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	hasParent := map[string]bool{}
	for _, e := range edges {
		if e.CrossLink {
			continue
		}
		if _, ok := byID[e.Target]; ok {
			hasParent[e.Target] = true
		}
	}

	var root *model.FlowNode
	for i := range nodes {
		if !hasParent[nodes[i].ID] {
			root = &nodes[i]
			break
		}
	}
	if root == nil {
		// Every node has a parent: the "tree" is a cycle.
		return nil
	}

	visited := map[string]bool{}
	return buildSubtree(*root, byID, edges, visited)
}

func buildSubtree(n model.FlowNode, byID map[string]model.FlowNode, edges []model.FlowEdge, visited map[string]bool) *model.TreeNode {
	visited[n.ID] = true

	pos := n.Position
	node := &model.TreeNode{
		ID:        n.ID,
		Content:   n.Data.Label,
		Position:  &pos,
		Style:     n.Data.Style,
		Metadata:  n.Data.Metadata,
		Link:      n.Data.Link,
		Icon:      n.Data.Icon,
		Created:   n.Data.Created,
		Modified:  n.Data.Modified,
		EdgeStyle: n.Data.EdgeStyle,
		Cloud:     n.Data.Cloud,
	}

	for _, e := range edges {
		if e.CrossLink || e.Source != n.ID {
			continue
		}
		child, ok := byID[e.Target]
		if !ok || visited[child.ID] {
			continue
		}
		node.Children = append(node.Children, buildSubtree(child, byID, edges, visited))
	}
	return node
}

// CrossLinks returns the edges excluded from tree reconstruction, so callers
// can persist and re-apply them alongside the derived tree.
func CrossLinks(edges []model.FlowEdge) []model.FlowEdge {
	var out []model.FlowEdge
	for _, e := range edges {
		if e.CrossLink {
			out = append(out, e)
		}
	}
	return out
}

// TreeToFlow projects a tree onto the flat node/edge representation.
//
// With autoLayout, positions are recomputed by the tidy-tree layout and any
// position hints stored in the tree are ignored. Imported documents carry no
// layout, so every import path requests autoLayout.
func TreeToFlow(tree *model.TreeNode, autoLayout bool) model.Graph {
	if tree == nil {
		return model.Graph{Nodes: []model.FlowNode{}, Edges: []model.FlowEdge{}}
	}

	var positions map[string]model.Position
	if autoLayout {
		positions = Layout(tree)
	}

	g := model.Graph{}
	emitFlow(tree, &g, positions)
	if g.Nodes == nil {
		g.Nodes = []model.FlowNode{}
	}
	if g.Edges == nil {
		g.Edges = []model.FlowEdge{}
	}
	return g
}

func emitFlow(n *model.TreeNode, g *model.Graph, positions map[string]model.Position) {
	var pos model.Position
	if positions != nil {
		pos = positions[n.ID]
	} else if n.Position != nil {
		pos = *n.Position
	}

	g.Nodes = append(g.Nodes, model.FlowNode{
		ID: n.ID,
		Data: model.NodeData{
			Label:     n.Content,
			Style:     n.Style,
			Metadata:  n.Metadata,
			Link:      n.Link,
			Icon:      n.Icon,
			Created:   n.Created,
			Modified:  n.Modified,
			EdgeStyle: n.EdgeStyle,
			Cloud:     n.Cloud,
		},
		Position: pos,
	})

	for _, c := range n.Children {
		g.Edges = append(g.Edges, model.FlowEdge{
			ID:     "edge-" + n.ID + "-" + c.ID,
			Source: n.ID,
			Target: c.ID,
		})
		emitFlow(c, g, positions)
	}
}
