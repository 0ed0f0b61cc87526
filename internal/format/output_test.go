package format

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]int{"nodes": 3}, "json", false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "{\"nodes\":3}\n" {
		t.Fatalf("got %q", got)
	}

	buf.Reset()
	if err := Write(&buf, map[string]int{"nodes": 3}, "", true); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "  \"nodes\": 3") {
		t.Fatalf("pretty output not indented: %q", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, map[string]string{"workspace": "default"}, "yaml", false); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "workspace: default\n" {
		t.Fatalf("got %q", got)
	}
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, "edn", false); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
