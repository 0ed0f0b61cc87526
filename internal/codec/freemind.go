package codec

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"mindmap-cli/internal/model"
)

// FreeMind (.mm) mapping. Only the attributes FreeMind itself understands are
// emitted; everything else (custom metadata keys, attachments) is dropped
// silently on export. That loss is documented behavior, not an error.

type fmMap struct {
	XMLName xml.Name `xml:"map"`
	Version string   `xml:"version,attr"`
	Root    *fmNode  `xml:"node"`
}

type fmNode struct {
	Text            string `xml:"TEXT,attr"`
	ID              string `xml:"ID,attr,omitempty"`
	Link            string `xml:"LINK,attr,omitempty"`
	Created         string `xml:"CREATED,attr,omitempty"`
	Modified        string `xml:"MODIFIED,attr,omitempty"`
	Color           string `xml:"COLOR,attr,omitempty"`
	BackgroundColor string `xml:"BACKGROUND_COLOR,attr,omitempty"`

	Font  *fmFont  `xml:"font"`
	Icons []fmIcon `xml:"icon"`
	Edge  *fmEdge  `xml:"edge"`
	Cloud *fmCloud `xml:"cloud"`

	Children []fmNode `xml:"node"`
}

type fmFont struct {
	Name   string `xml:"NAME,attr,omitempty"`
	Size   int    `xml:"SIZE,attr,omitempty"`
	Bold   bool   `xml:"BOLD,attr,omitempty"`
	Italic bool   `xml:"ITALIC,attr,omitempty"`
}

type fmIcon struct {
	Builtin string `xml:"BUILTIN,attr"`
}

type fmEdge struct {
	Style string `xml:"STYLE,attr,omitempty"`
	Color string `xml:"COLOR,attr,omitempty"`
	Width string `xml:"WIDTH,attr,omitempty"`
}

type fmCloud struct{}

func ToFreeMind(tree *model.TreeNode) (string, error) {
	doc := fmMap{Version: "1.0.1"}
	if tree != nil {
		root := toFMNode(tree)
		doc.Root = &root
	}
	b, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return xml.Header + string(b) + "\n", nil
}

func toFMNode(n *model.TreeNode) fmNode {
	out := fmNode{
		Text: n.Content,
		ID:   n.ID,
		Link: n.Link,
	}
	if n.Created != nil {
		out.Created = strconv.FormatInt(n.Created.UnixMilli(), 10)
	}
	if n.Modified != nil {
		out.Modified = strconv.FormatInt(n.Modified.UnixMilli(), 10)
	}
	if s := n.Style; s != nil {
		out.Color = s.Color
		out.BackgroundColor = s.BackgroundColor
		if s.FontName != "" || s.FontSize != 0 || s.Bold || s.Italic {
			out.Font = &fmFont{Name: s.FontName, Size: s.FontSize, Bold: s.Bold, Italic: s.Italic}
		}
	}
	if n.Icon != "" {
		out.Icons = []fmIcon{{Builtin: n.Icon}}
	}
	if e := n.EdgeStyle; e != nil {
		out.Edge = &fmEdge{Style: e.Style, Color: e.Color}
		if e.Width != 0 {
			out.Edge.Width = strconv.Itoa(e.Width)
		}
	}
	if n.Cloud {
		out.Cloud = &fmCloud{}
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toFMNode(c))
	}
	return out
}

func ParseFreeMind(text string) (*model.TreeNode, error) {
	var doc fmMap
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, &ParseError{Format: FormatFreeMind, Err: err}
	}
	if doc.Root == nil {
		return nil, parseErrf(FormatFreeMind, "map has no root node")
	}
	return fromFMNode(*doc.Root), nil
}

func fromFMNode(n fmNode) *model.TreeNode {
	out := &model.TreeNode{
		ID:      n.ID,
		Content: n.Text,
		Link:    n.Link,
	}
	if t, ok := parseMillis(n.Created); ok {
		out.Created = &t
	}
	if t, ok := parseMillis(n.Modified); ok {
		out.Modified = &t
	}
	if n.Color != "" || n.BackgroundColor != "" || n.Font != nil {
		st := &model.NodeStyle{Color: n.Color, BackgroundColor: n.BackgroundColor}
		if n.Font != nil {
			st.FontName = n.Font.Name
			st.FontSize = n.Font.Size
			st.Bold = n.Font.Bold
			st.Italic = n.Font.Italic
		}
		out.Style = st
	}
	if len(n.Icons) > 0 {
		out.Icon = n.Icons[0].Builtin
	}
	if n.Edge != nil {
		es := &model.EdgeStyle{Style: n.Edge.Style, Color: n.Edge.Color}
		if w, err := strconv.Atoi(strings.TrimSpace(n.Edge.Width)); err == nil {
			es.Width = w
		}
		out.EdgeStyle = es
	}
	out.Cloud = n.Cloud != nil
	for _, c := range n.Children {
		out.Children = append(out.Children, fromFMNode(c))
	}
	return out
}

func parseMillis(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// Unparsable timestamps are dropped, matching the attribute-loss policy.
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}
