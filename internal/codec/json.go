package codec

import (
	"encoding/json"
	"strings"

	"mindmap-cli/internal/model"
)

// ToJSON is the identity serialization: ParseJSON(ToJSON(t)) deep-equals t
// for every field, including arbitrary custom metadata keys.
func ToJSON(tree *model.TreeNode) (string, error) {
	b, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}

func ParseJSON(text string) (*model.TreeNode, error) {
	var tree model.TreeNode
	if err := json.Unmarshal([]byte(text), &tree); err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	if strings.TrimSpace(tree.Content) == "" && tree.ID == "" && len(tree.Children) == 0 {
		return nil, parseErrf(FormatJSON, "document has no root node")
	}
	return &tree, nil
}
