package codec

import (
	"encoding/xml"

	"mindmap-cli/internal/model"
)

// OPML carries only outline text and notes. Styles, links and custom
// metadata are not representable and are dropped on export.

type opmlDoc struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    opmlHead `xml:"head"`
	Body    opmlBody `xml:"body"`
}

type opmlHead struct {
	Title string `xml:"title,omitempty"`
}

type opmlBody struct {
	Outlines []opmlOutline `xml:"outline"`
}

type opmlOutline struct {
	Text     string        `xml:"text,attr"`
	Note     string        `xml:"_note,attr,omitempty"`
	Children []opmlOutline `xml:"outline"`
}

func ToOPML(tree *model.TreeNode) (string, error) {
	doc := opmlDoc{Version: "2.0"}
	if tree != nil {
		doc.Head.Title = tree.Content
		doc.Body.Outlines = []opmlOutline{toOutline(tree)}
	}
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(b) + "\n", nil
}

func toOutline(n *model.TreeNode) opmlOutline {
	out := opmlOutline{Text: n.Content, Note: n.Metadata.Notes}
	for _, c := range n.Children {
		out.Children = append(out.Children, toOutline(c))
	}
	return out
}

func ParseOPML(text string) (*model.TreeNode, error) {
	var doc opmlDoc
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseError{Format: FormatOPML, Err: err}
	}
	switch len(doc.Body.Outlines) {
	case 0:
		return nil, parseErrf(FormatOPML, "body has no outline elements")
	case 1:
		return fromOutline(doc.Body.Outlines[0]), nil
	}
	// Several top-level outlines: hang them under a synthetic root named
	// after the head title.
	title := doc.Head.Title
	if title == "" {
		title = "Mind Map"
	}
	root := &model.TreeNode{Content: title}
	for _, o := range doc.Body.Outlines {
		root.Children = append(root.Children, fromOutline(o))
	}
	return root, nil
}

func fromOutline(o opmlOutline) *model.TreeNode {
	out := &model.TreeNode{Content: o.Text}
	if o.Note != "" {
		out.Metadata.Notes = o.Note
	}
	for _, c := range o.Children {
		out.Children = append(out.Children, fromOutline(c))
	}
	return out
}
