package codec

import (
	"strings"

	"gopkg.in/yaml.v3"

	"mindmap-cli/internal/model"
)

// YAML is a structural encoding of the same shape as JSON; custom metadata
// keys round-trip through the metadata side-table.
func ToYAML(tree *model.TreeNode) (string, error) {
	b, err := yaml.Marshal(tree)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func ParseYAML(text string) (*model.TreeNode, error) {
	var tree model.TreeNode
	if err := yaml.Unmarshal([]byte(text), &tree); err != nil {
		return nil, &ParseError{Format: FormatYAML, Err: err}
	}
	if strings.TrimSpace(tree.Content) == "" && tree.ID == "" && len(tree.Children) == 0 {
		return nil, parseErrf(FormatYAML, "document has no root node")
	}
	return &tree, nil
}
