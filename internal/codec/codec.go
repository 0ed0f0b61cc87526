// Package codec holds the per-format encoder/decoder pairs. Each codec is a
// pure pair of functions over the Tree Model; none of them touch the Graph
// Projection or each other.
package codec

import (
	"fmt"
	"path/filepath"
	"strings"

	"mindmap-cli/internal/model"
)

type Format string

const (
	FormatJSON     Format = "json"
	FormatFreeMind Format = "freemind"
	FormatOPML     Format = "opml"
	FormatMarkdown Format = "markdown"
	FormatYAML     Format = "yaml"
	FormatD2       Format = "d2"
)

// ParseError is returned for every malformed import, regardless of format.
// Callers present it to the user and abort; no partial tree is ever applied.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrf(f Format, format string, args ...any) error {
	return &ParseError{Format: f, Err: fmt.Errorf(format, args...)}
}

func Formats() []Format {
	return []Format{FormatJSON, FormatFreeMind, FormatOPML, FormatMarkdown, FormatYAML, FormatD2}
}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "freemind", "mm":
		return FormatFreeMind, nil
	case "opml":
		return FormatOPML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "d2":
		return FormatD2, nil
	}
	return "", fmt.Errorf("unknown format: %s", s)
}

// FormatForPath infers a format from a filename extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".mm":
		return FormatFreeMind, true
	case ".opml":
		return FormatOPML, true
	case ".md":
		return FormatMarkdown, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".d2":
		return FormatD2, true
	}
	return "", false
}

// DefaultFilename is the fixed save name used unless the user overrides it.
func DefaultFilename(f Format) string {
	switch f {
	case FormatFreeMind:
		return "mindmap.mm"
	case FormatOPML:
		return "mindmap.opml"
	case FormatMarkdown:
		return "mindmap.md"
	case FormatYAML:
		return "mindmap.yaml"
	case FormatD2:
		return "mindmap.d2"
	default:
		return "mindmap.json"
	}
}

func Encode(f Format, tree *model.TreeNode) (string, error) {
	switch f {
	case FormatJSON:
		return ToJSON(tree)
	case FormatFreeMind:
		return ToFreeMind(tree)
	case FormatOPML:
		return ToOPML(tree)
	case FormatMarkdown:
		return ToMarkdown(tree)
	case FormatYAML:
		return ToYAML(tree)
	case FormatD2:
		return ToD2(tree)
	}
	return "", fmt.Errorf("encode: unknown format %q", f)
}

func Decode(f Format, text string) (*model.TreeNode, error) {
	switch f {
	case FormatJSON:
		return ParseJSON(text)
	case FormatFreeMind:
		return ParseFreeMind(text)
	case FormatOPML:
		return ParseOPML(text)
	case FormatMarkdown:
		return ParseMarkdown(text)
	case FormatYAML:
		return ParseYAML(text)
	case FormatD2:
		// D2 targets an external diagramming tool; export only.
		return nil, fmt.Errorf("decode: d2 is export-only")
	}
	return nil, fmt.Errorf("decode: unknown format %q", f)
}
