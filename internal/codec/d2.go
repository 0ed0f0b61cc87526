package codec

import (
	"fmt"
	"strings"

	"mindmap-cli/internal/model"
)

// ToD2 renders the tree for the d2 diagramming tool: one key per node, one
// connection per parent->child relation. Export-only; d2 files are consumed
// by an external renderer, never read back.
func ToD2(tree *model.TreeNode) (string, error) {
	if tree == nil {
		return "", nil
	}
	var sb strings.Builder
	tree.Walk(func(n *model.TreeNode) {
		fmt.Fprintf(&sb, "%s: %s\n", d2Key(n.ID), d2Quote(n.Content))
	})
	sb.WriteString("\n")
	tree.Walk(func(n *model.TreeNode) {
		for _, c := range n.Children {
			fmt.Fprintf(&sb, "%s -> %s\n", d2Key(n.ID), d2Key(c.ID))
		}
	})
	return sb.String(), nil
}

func d2Key(id string) string {
	// d2 treats dots and spaces as structure; quoting sidesteps all of it.
	return `"` + strings.ReplaceAll(id, `"`, `\"`) + `"`
}

func d2Quote(s string) string {
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
