package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()
	cmd := NewRootCmd()
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

func mustRun(t *testing.T, args ...string) map[string]any {
	t.Helper()
	stdout, stderr, err := runCLI(t, args)
	if err != nil {
		t.Fatalf("command failed: mindmap %v\nerr: %v\nstderr:\n%s\nstdout:\n%s", args, err, string(stderr), string(stdout))
	}
	var env map[string]any
	if err := json.Unmarshal(stdout, &env); err != nil {
		t.Fatalf("unmarshal stdout as json envelope: %v\nstdout:\n%s\nargs: %v", err, string(stdout), args)
	}
	if _, ok := env["data"]; !ok {
		t.Fatalf("expected JSON envelope to contain data key; got: %v\nstdout:\n%s", env, string(stdout))
	}
	return env
}

func TestCLISmoke(t *testing.T) {
	dir := t.TempDir()

	// Init isolated workspace (no ~/.mindmap config touched when using --dir).
	mustRun(t, "--dir", dir, "init")

	created := mustRun(t, "--dir", dir, "new", "Quarterly Plan")
	data := created["data"].(map[string]any)
	if data["title"] != "Quarterly Plan" {
		t.Fatalf("expected title in response; got %#v", data)
	}

	// Export the stored snapshot to markdown.
	mdPath := filepath.Join(dir, "out.md")
	mustRun(t, "--dir", dir, "export", mdPath)
	raw, err := os.ReadFile(mdPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(raw), "# Quarterly Plan") {
		t.Fatalf("exported markdown missing root heading:\n%s", raw)
	}

	// Convert markdown -> FreeMind.
	mmPath := filepath.Join(dir, "out.mm")
	mustRun(t, "--dir", dir, "convert", mdPath, mmPath)
	raw, err = os.ReadFile(mmPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "Quarterly Plan") {
		t.Fatalf("converted FreeMind missing root text:\n%s", raw)
	}

	// History: save a labeled slot, list it, restore it.
	mustRun(t, "--dir", dir, "history", "save", "--label", "milestone")
	list := mustRun(t, "--dir", dir, "history", "list")
	rows := list["data"].([]any)
	if len(rows) != 1 {
		t.Fatalf("expected 1 history slot; got %d", len(rows))
	}
	if rows[0].(map[string]any)["label"] != "milestone" {
		t.Fatalf("unexpected slot: %#v", rows[0])
	}
	mustRun(t, "--dir", dir, "history", "restore", "0")
	mustRun(t, "--dir", dir, "history", "delete", "0")

	list = mustRun(t, "--dir", dir, "history", "list")
	if rows := list["data"].([]any); len(rows) != 0 {
		t.Fatalf("expected empty history after delete; got %d", len(rows))
	}
}

func TestCLIImportRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	mustRun(t, "--dir", dir, "new", "Keep me")
	if _, _, err := runCLI(t, []string{"--dir", dir, "import", bad}); err == nil {
		t.Fatal("expected import of malformed JSON to fail")
	}

	// The stored snapshot survives the failed import.
	out, _, err := runCLI(t, []string{"--dir", dir, "export", "-", "--to", "markdown"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(out), "# Keep me") {
		t.Fatalf("stored map was clobbered by a failed import:\n%s", out)
	}
}

func TestCLIExportWithoutSnapshot(t *testing.T) {
	dir := t.TempDir()
	_, stderr, err := runCLI(t, []string{"--dir", dir, "export", "-", "--to", "json"})
	if err == nil {
		t.Fatal("expected error exporting an empty workspace")
	}
	if !strings.Contains(string(stderr), "no saved map") {
		t.Fatalf("unexpected stderr: %s", stderr)
	}
}

func TestCLIAssistOfflineFallback(t *testing.T) {
	dir := t.TempDir()

	healthy := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Split the plan into three branches."}}]}`))
	}))
	defer srv.Close()

	assistArgs := []string{"--dir", dir, "assist",
		"--provider", "openai", "--key", "test-key", "--endpoint", srv.URL,
		"summarize", "my", "map"}

	out := mustRun(t, assistArgs...)
	data := out["data"].(map[string]any)
	if data["text"] != "Split the plan into three branches." {
		t.Fatalf("unexpected reply: %#v", data)
	}
	if _, ok := data["cached"]; ok {
		t.Fatalf("fresh reply should not be marked cached: %#v", data)
	}

	// Provider outage: the last reply is served from the offline cache.
	healthy = false
	out = mustRun(t, assistArgs...)
	data = out["data"].(map[string]any)
	if data["cached"] != true {
		t.Fatalf("expected cached fallback: %#v", data)
	}
	if data["text"] != "Split the plan into three branches." {
		t.Fatalf("cached reply mismatch: %#v", data)
	}
}

func TestCLIKeysListsShortcuts(t *testing.T) {
	out := mustRun(t, "keys")
	rows := out["data"].([]any)
	if len(rows) < 20 {
		t.Fatalf("expected the full shortcut table; got %d rows", len(rows))
	}
	found := false
	for _, r := range rows {
		if r.(map[string]any)["chord"] == "Ctrl+Shift+A" {
			found = true
		}
	}
	if !found {
		t.Fatal("Ctrl+Shift+A missing from keys output")
	}
}
