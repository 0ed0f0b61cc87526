package codec

import (
	"strings"

	"mindmap-cli/internal/model"
)

// Markdown maps the root to a level-1 heading and every other node to a
// bullet, with indentation carrying depth. Decoding recovers depth purely
// from leading whitespace; tabs are normalized before the indent unit is
// inferred, so mixed tab/space input parses consistently or not at all.

const mdIndent = "  "

func ToMarkdown(tree *model.TreeNode) (string, error) {
	if tree == nil {
		return "", nil
	}
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(mdLine(tree.Content))
	sb.WriteString("\n")
	if len(tree.Children) > 0 {
		sb.WriteString("\n")
	}
	for _, c := range tree.Children {
		writeMarkdownBullets(&sb, c, 0)
	}
	return sb.String(), nil
}

func writeMarkdownBullets(sb *strings.Builder, n *model.TreeNode, depth int) {
	sb.WriteString(strings.Repeat(mdIndent, depth))
	sb.WriteString("- ")
	sb.WriteString(mdLine(n.Content))
	sb.WriteString("\n")
	for _, c := range n.Children {
		writeMarkdownBullets(sb, c, depth+1)
	}
}

// mdLine keeps node text on a single line; embedded newlines would break the
// indentation-based structure on re-import.
func mdLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

type mdBullet struct {
	indent int
	text   string
}

func ParseMarkdown(text string) (*model.TreeNode, error) {
	var root *model.TreeNode
	var bullets []mdBullet

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "#") {
			if root != nil || len(bullets) > 0 {
				return nil, parseErrf(FormatMarkdown, "line %d: unexpected heading after content", lineNo+1)
			}
			root = &model.TreeNode{Content: strings.TrimSpace(strings.TrimLeft(line, "#"))}
			continue
		}

		// Tabs count as one indent unit each; normalize them to spaces
		// before measuring.
		expanded := strings.ReplaceAll(line, "\t", mdIndent)
		trimmed := strings.TrimLeft(expanded, " ")
		indent := len(expanded) - len(trimmed)

		var textPart string
		switch {
		case strings.HasPrefix(trimmed, "- "):
			textPart = trimmed[2:]
		case strings.HasPrefix(trimmed, "* "):
			textPart = trimmed[2:]
		default:
			return nil, parseErrf(FormatMarkdown, "line %d: expected a bullet, got %q", lineNo+1, strings.TrimSpace(line))
		}
		bullets = append(bullets, mdBullet{indent: indent, text: strings.TrimSpace(textPart)})
	}

	if root == nil && len(bullets) == 0 {
		return nil, parseErrf(FormatMarkdown, "document is empty")
	}

	// Infer the indent unit from the smallest non-zero indent.
	unit := 0
	for _, b := range bullets {
		if b.indent > 0 && (unit == 0 || b.indent < unit) {
			unit = b.indent
		}
	}
	if unit == 0 {
		unit = len(mdIndent)
	}

	baseDepth := 0
	if root == nil {
		// No heading: a single top-level bullet is the root; several get a
		// synthetic one.
		tops := 0
		for _, b := range bullets {
			if b.indent == 0 {
				tops++
			}
		}
		if tops == 1 && bullets[0].indent == 0 {
			root = &model.TreeNode{Content: bullets[0].text}
			bullets = bullets[1:]
			baseDepth = 1
		} else {
			root = &model.TreeNode{Content: "Mind Map"}
		}
	}

	// stack[d] is the most recent node at depth d (root at 0).
	stack := []*model.TreeNode{root}
	for _, b := range bullets {
		if b.indent%unit != 0 {
			return nil, parseErrf(FormatMarkdown, "inconsistent indentation: %d is not a multiple of %d", b.indent, unit)
		}
		depth := b.indent/unit - baseDepth + 1
		if depth < 1 || depth > len(stack) {
			return nil, parseErrf(FormatMarkdown, "inconsistent indentation near %q", b.text)
		}
		node := &model.TreeNode{Content: b.text}
		parent := stack[depth-1]
		parent.Children = append(parent.Children, node)
		stack = append(stack[:depth], node)
	}
	return root, nil
}
