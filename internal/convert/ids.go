package convert

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"mindmap-cli/internal/model"
)

// NewID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase,
// no padding). 8 chars base32 ~= 40 bits (~1 trillion) of space.
func NewID(prefix string) string {
	var b [5]byte // 40 bits -> 8 base32 chars
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand only fails when the platform entropy source is broken;
		// a constant here would violate id uniqueness, so fail loudly.
		panic("convert: reading random bytes: " + err.Error())
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix
}

func NewNodeID() string { return NewID("node") }
func NewEdgeID() string { return NewID("edge") }

// EnsureIDs regenerates absent or colliding node ids in place. All import
// paths run through this so documents authored elsewhere (FreeMind, OPML,
// Markdown) end up with unique, stable ids.
func EnsureIDs(tree *model.TreeNode) {
	if tree == nil {
		return
	}
	seen := map[string]bool{}
	tree.Walk(func(n *model.TreeNode) {
		id := strings.TrimSpace(n.ID)
		for id == "" || seen[id] {
			id = NewNodeID()
		}
		n.ID = id
		seen[id] = true
	})
}
