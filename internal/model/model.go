package model

import "time"

// TreeNode is the canonical hierarchical mind-map unit. Child order is
// significant and must survive every codec round-trip.
type TreeNode struct {
	ID       string      `json:"id" yaml:"id"`
	Content  string      `json:"content" yaml:"content"`
	Children []*TreeNode `json:"children,omitempty" yaml:"children,omitempty"`

	Position *Position  `json:"position,omitempty" yaml:"position,omitempty"`
	Style    *NodeStyle `json:"style,omitempty" yaml:"style,omitempty"`
	Metadata Metadata   `json:"metadata,omitzero" yaml:"metadata,omitempty"`

	// FreeMind-specific optional fields.
	Link      string     `json:"link,omitempty" yaml:"link,omitempty"`
	Icon      string     `json:"icon,omitempty" yaml:"icon,omitempty"`
	Created   *time.Time `json:"created,omitempty" yaml:"created,omitempty"`
	Modified  *time.Time `json:"modified,omitempty" yaml:"modified,omitempty"`
	EdgeStyle *EdgeStyle `json:"edgeStyle,omitempty" yaml:"edgeStyle,omitempty"`
	Cloud     bool       `json:"cloud,omitempty" yaml:"cloud,omitempty"`
}

type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

type NodeStyle struct {
	Color           string `json:"color,omitempty" yaml:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty" yaml:"backgroundColor,omitempty"`
	FontSize        int    `json:"fontSize,omitempty" yaml:"fontSize,omitempty"`
	FontName        string `json:"fontName,omitempty" yaml:"fontName,omitempty"`
	Bold            bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Italic          bool   `json:"italic,omitempty" yaml:"italic,omitempty"`
}

type EdgeStyle struct {
	Style string `json:"style,omitempty" yaml:"style,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Width int    `json:"width,omitempty" yaml:"width,omitempty"`
}

// FlowNode is one node of the Graph Projection used for on-screen layout.
type FlowNode struct {
	ID       string   `json:"id"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
}

type NodeData struct {
	Label    string     `json:"label"`
	Style    *NodeStyle `json:"style,omitempty"`
	Metadata Metadata   `json:"metadata,omitzero"`

	Link      string     `json:"link,omitempty"`
	Icon      string     `json:"icon,omitempty"`
	Created   *time.Time `json:"created,omitempty"`
	Modified  *time.Time `json:"modified,omitempty"`
	EdgeStyle *EdgeStyle `json:"edgeStyle,omitempty"`
	Cloud     bool       `json:"cloud,omitempty"`
}

// FlowEdge connects two flow nodes. CrossLink edges are visual-only and are
// excluded when the tree is re-derived from the graph.
type FlowEdge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	CrossLink bool   `json:"crossLink,omitempty"`
}

type Graph struct {
	Nodes []FlowNode `json:"nodes"`
	Edges []FlowEdge `json:"edges"`
}

// Snapshot is a timestamped, labeled copy of the Graph Projection and the
// tree derived from it, as persisted by the autosave controller.
type Snapshot struct {
	ID        string     `json:"id,omitempty"`
	Nodes     []FlowNode `json:"nodes"`
	Edges     []FlowEdge `json:"edges"`
	Tree      *TreeNode  `json:"tree,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Label     string     `json:"label,omitempty"`
}

// Walk visits n and every descendant in depth-first, sibling order.
func (n *TreeNode) Walk(fn func(*TreeNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

func (n *TreeNode) CountNodes() int {
	count := 0
	n.Walk(func(*TreeNode) { count++ })
	return count
}

// Clone returns a deep copy. Metadata maps are copied too, so mutating the
// clone never writes through to the original (undo stacks rely on this).
func (n *TreeNode) Clone() *TreeNode {
	if n == nil {
		return nil
	}
	out := *n
	if n.Position != nil {
		p := *n.Position
		out.Position = &p
	}
	if n.Style != nil {
		s := *n.Style
		out.Style = &s
	}
	if n.EdgeStyle != nil {
		e := *n.EdgeStyle
		out.EdgeStyle = &e
	}
	if n.Created != nil {
		t := *n.Created
		out.Created = &t
	}
	if n.Modified != nil {
		t := *n.Modified
		out.Modified = &t
	}
	out.Metadata = n.Metadata.Clone()
	if n.Children != nil {
		out.Children = make([]*TreeNode, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}

// Equal reports deep equality of two trees, including positions.
func (n *TreeNode) Equal(other *TreeNode) bool {
	return treeEqual(n, other, true)
}

// EqualIgnorePosition reports deep equality modulo layout positions. This is
// the comparison used after an auto-layout pass recomputed coordinates.
func (n *TreeNode) EqualIgnorePosition(other *TreeNode) bool {
	return treeEqual(n, other, false)
}

func treeEqual(a, b *TreeNode, withPos bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.ID != b.ID || a.Content != b.Content || a.Link != b.Link ||
		a.Icon != b.Icon || a.Cloud != b.Cloud {
		return false
	}
	if withPos && !positionEqual(a.Position, b.Position) {
		return false
	}
	if !styleEqual(a.Style, b.Style) || !edgeStyleEqual(a.EdgeStyle, b.EdgeStyle) {
		return false
	}
	if !timeEqual(a.Created, b.Created) || !timeEqual(a.Modified, b.Modified) {
		return false
	}
	if !a.Metadata.Equal(b.Metadata) {
		return false
	}
	if len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !treeEqual(a.Children[i], b.Children[i], withPos) {
			return false
		}
	}
	return true
}

func positionEqual(a, b *Position) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func styleEqual(a, b *NodeStyle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func edgeStyleEqual(a, b *EdgeStyle) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func timeEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// NewDefaultTree returns the single-root map the editor opens with.
func NewDefaultTree(id string) *TreeNode {
	return &TreeNode{ID: id, Content: "Mind Map"}
}
