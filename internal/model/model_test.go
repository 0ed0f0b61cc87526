package model

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func sampleTree() *TreeNode {
	return &TreeNode{
		ID:      "node-root",
		Content: "Launch",
		Metadata: Metadata{
			URL:   "https://example.com/launch",
			Notes: "kickoff notes",
			Tags:  []string{"q3", "priority"},
			Extra: map[string]Value{
				"reviewDays": Number(14),
				"pinned":     Boolean(true),
				"owner":      String("ana"),
			},
		},
		Children: []*TreeNode{
			{ID: "node-a", Content: "Design", Position: &Position{X: 40, Y: 80}},
			{ID: "node-b", Content: "Build", Style: &NodeStyle{Color: "#336699", Bold: true}},
		},
	}
}

func TestMetadataJSONRoundTrip(t *testing.T) {
	tree := sampleTree()

	raw, err := json.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}

	// Known keys sit flat beside the custom ones; no "extra" wrapper leaks out.
	if strings.Contains(string(raw), `"extra"`) {
		t.Fatalf("custom keys must be flattened: %s", raw)
	}
	for _, want := range []string{`"url"`, `"reviewDays":14`, `"pinned":true`, `"owner":"ana"`} {
		if !strings.Contains(string(raw), want) {
			t.Fatalf("missing %s in %s", want, raw)
		}
	}

	var back TreeNode
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(&back) {
		t.Fatalf("round trip changed the tree:\n%s", raw)
	}
	if got := back.Metadata.Extra["reviewDays"]; got.Kind != KindNumber {
		t.Fatalf("reviewDays decoded as %v", got.Kind)
	}
}

func TestMetadataYAMLRoundTrip(t *testing.T) {
	tree := sampleTree()

	raw, err := yaml.Marshal(tree)
	if err != nil {
		t.Fatal(err)
	}
	var back TreeNode
	if err := yaml.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if !tree.Equal(&back) {
		t.Fatalf("yaml round trip changed the tree:\n%s", raw)
	}
}

func TestEmptyMetadataIsOmitted(t *testing.T) {
	raw, err := json.Marshal(&TreeNode{ID: "node-x", Content: "bare"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(raw), "metadata") {
		t.Fatalf("zero metadata must not serialize: %s", raw)
	}
}

func TestCloneIsDeep(t *testing.T) {
	tree := sampleTree()
	clone := tree.Clone()

	clone.Children[0].Content = "changed"
	clone.Children[0].Position.X = 999
	clone.Metadata.Tags[0] = "mutated"
	clone.Metadata.Extra["owner"] = String("bob")

	if tree.Children[0].Content != "Design" {
		t.Fatal("clone shares child nodes")
	}
	if tree.Children[0].Position.X != 40 {
		t.Fatal("clone shares position structs")
	}
	if tree.Metadata.Tags[0] != "q3" {
		t.Fatal("clone shares tag slices")
	}
	if tree.Metadata.Extra["owner"].Str != "ana" {
		t.Fatal("clone shares the extra map")
	}
}

func TestEqualIgnorePosition(t *testing.T) {
	a := sampleTree()
	b := sampleTree()
	b.Children[0].Position = &Position{X: 1, Y: 2}

	if a.Equal(b) {
		t.Fatal("Equal must see the moved node")
	}
	if !a.EqualIgnorePosition(b) {
		t.Fatal("EqualIgnorePosition must not")
	}
}
