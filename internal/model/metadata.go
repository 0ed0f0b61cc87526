package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Metadata carries the open-ended per-node mapping. Known keys are typed
// fields; everything else lands in Extra so codecs can round-trip custom
// keys without losing type safety on the known ones.
type Metadata struct {
	URL         string
	Description string
	Notes       string
	Tags        []string
	Attachments []Attachment

	// Extra holds unknown keys verbatim. Keys here must never collide with
	// the known field names above; the unmarshalers guarantee that.
	Extra map[string]Value
}

type Attachment struct {
	Name     string `json:"name" yaml:"name"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	// Ref points at the stored blob (path or URL); blobs themselves are not
	// embedded in documents.
	Ref string `json:"ref,omitempty" yaml:"ref,omitempty"`
}

type ValueKind int

const (
	KindString ValueKind = iota
	KindNumber
	KindBool
	// KindRaw preserves structured values (arrays, objects, null) as the
	// original JSON bytes.
	KindRaw
)

// Value is the tagged union stored in the Metadata side-table.
type Value struct {
	Kind ValueKind
	Str  string
	Num  float64
	Bool bool
	Raw  json.RawMessage
}

func String(s string) Value  { return Value{Kind: KindString, Str: s} }
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }
func Boolean(b bool) Value   { return Value{Kind: KindBool, Bool: b} }

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindString:
		return json.Marshal(v.Str)
	case KindNumber:
		return json.Marshal(v.Num)
	case KindBool:
		return json.Marshal(v.Bool)
	case KindRaw:
		if len(v.Raw) == 0 {
			return []byte("null"), nil
		}
		return v.Raw, nil
	}
	return nil, fmt.Errorf("metadata value: unknown kind %d", v.Kind)
}

func (v *Value) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return err
	}
	*v = classify(x, b)
	return nil
}

func classify(x any, raw []byte) Value {
	switch t := x.(type) {
	case string:
		return Value{Kind: KindString, Str: t}
	case bool:
		return Value{Kind: KindBool, Bool: t}
	case json.Number:
		f, err := t.Float64()
		if err == nil {
			return Value{Kind: KindNumber, Num: f}
		}
	case float64:
		return Value{Kind: KindNumber, Num: t}
	case int:
		return Value{Kind: KindNumber, Num: float64(t)}
	case int64:
		return Value{Kind: KindNumber, Num: float64(t)}
	}
	if raw == nil {
		// Came from YAML: re-encode through JSON to get canonical raw bytes.
		b, err := json.Marshal(x)
		if err != nil {
			b = []byte("null")
		}
		raw = b
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return Value{Kind: KindRaw, Raw: cp}
}

func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindNumber:
		return v.Num == o.Num
	case KindBool:
		return v.Bool == o.Bool
	case KindRaw:
		return bytes.Equal(compact(v.Raw), compact(o.Raw))
	}
	return false
}

func compact(b json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		return b
	}
	return buf.Bytes()
}

// asAny returns the plain-Go rendering used for YAML output.
func (v Value) asAny() any {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindNumber:
		return v.Num
	case KindBool:
		return v.Bool
	case KindRaw:
		var x any
		if err := json.Unmarshal(v.Raw, &x); err != nil {
			return nil
		}
		return x
	}
	return nil
}

const (
	keyURL         = "url"
	keyDescription = "description"
	keyNotes       = "notes"
	keyTags        = "tags"
	keyAttachments = "attachments"
)

func (m Metadata) IsZero() bool {
	return m.URL == "" && m.Description == "" && m.Notes == "" &&
		len(m.Tags) == 0 && len(m.Attachments) == 0 && len(m.Extra) == 0
}

func (m Metadata) Clone() Metadata {
	out := m
	if m.Tags != nil {
		out.Tags = append([]string(nil), m.Tags...)
	}
	if m.Attachments != nil {
		out.Attachments = append([]Attachment(nil), m.Attachments...)
	}
	if m.Extra != nil {
		out.Extra = make(map[string]Value, len(m.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

func (m Metadata) Equal(o Metadata) bool {
	if m.URL != o.URL || m.Description != o.Description || m.Notes != o.Notes {
		return false
	}
	if len(m.Tags) != len(o.Tags) {
		return false
	}
	for i := range m.Tags {
		if m.Tags[i] != o.Tags[i] {
			return false
		}
	}
	if len(m.Attachments) != len(o.Attachments) {
		return false
	}
	for i := range m.Attachments {
		if m.Attachments[i] != o.Attachments[i] {
			return false
		}
	}
	if len(m.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range m.Extra {
		ov, ok := o.Extra[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// asMap flattens known fields and Extra into a single mapping, matching the
// wire shape of the original documents (custom keys live beside known ones).
func (m Metadata) asMap() map[string]any {
	out := map[string]any{}
	if m.URL != "" {
		out[keyURL] = m.URL
	}
	if m.Description != "" {
		out[keyDescription] = m.Description
	}
	if m.Notes != "" {
		out[keyNotes] = m.Notes
	}
	if len(m.Tags) > 0 {
		out[keyTags] = m.Tags
	}
	if len(m.Attachments) > 0 {
		out[keyAttachments] = m.Attachments
	}
	for k, v := range m.Extra {
		out[k] = v
	}
	return out
}

func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.asMap())
}

func (m *Metadata) UnmarshalJSON(b []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	out := Metadata{}
	for k, raw := range fields {
		switch k {
		case keyURL:
			if err := json.Unmarshal(raw, &out.URL); err != nil {
				return fmt.Errorf("metadata %s: %w", k, err)
			}
		case keyDescription:
			if err := json.Unmarshal(raw, &out.Description); err != nil {
				return fmt.Errorf("metadata %s: %w", k, err)
			}
		case keyNotes:
			if err := json.Unmarshal(raw, &out.Notes); err != nil {
				return fmt.Errorf("metadata %s: %w", k, err)
			}
		case keyTags:
			if err := json.Unmarshal(raw, &out.Tags); err != nil {
				return fmt.Errorf("metadata %s: %w", k, err)
			}
		case keyAttachments:
			if err := json.Unmarshal(raw, &out.Attachments); err != nil {
				return fmt.Errorf("metadata %s: %w", k, err)
			}
		default:
			var v Value
			if err := v.UnmarshalJSON(raw); err != nil {
				return fmt.Errorf("metadata %s: %w", k, err)
			}
			if out.Extra == nil {
				out.Extra = map[string]Value{}
			}
			out.Extra[k] = v
		}
	}
	*m = out
	return nil
}

func (m Metadata) MarshalYAML() (any, error) {
	flat := m.asMap()
	// Replace Values with their plain renderings; yaml has no RawMessage.
	out := make(map[string]any, len(flat))
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v, ok := flat[k].(Value); ok {
			out[k] = v.asAny()
			continue
		}
		out[k] = flat[k]
	}
	return out, nil
}

func (m *Metadata) UnmarshalYAML(node *yaml.Node) error {
	var fields map[string]any
	if err := node.Decode(&fields); err != nil {
		return err
	}
	out := Metadata{}
	for k, x := range fields {
		switch k {
		case keyURL:
			out.URL, _ = x.(string)
		case keyDescription:
			out.Description, _ = x.(string)
		case keyNotes:
			out.Notes, _ = x.(string)
		case keyTags:
			xs, ok := x.([]any)
			if !ok {
				return fmt.Errorf("metadata tags: expected sequence")
			}
			for _, t := range xs {
				s, ok := t.(string)
				if !ok {
					return fmt.Errorf("metadata tags: expected string entries")
				}
				out.Tags = append(out.Tags, s)
			}
		case keyAttachments:
			b, err := json.Marshal(x)
			if err != nil {
				return fmt.Errorf("metadata attachments: %w", err)
			}
			if err := json.Unmarshal(b, &out.Attachments); err != nil {
				return fmt.Errorf("metadata attachments: %w", err)
			}
		default:
			if out.Extra == nil {
				out.Extra = map[string]Value{}
			}
			out.Extra[k] = classify(x, nil)
		}
	}
	*m = out
	return nil
}
