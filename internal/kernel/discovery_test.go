package kernel

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverFindsProjectVenv(t *testing.T) {
	dir := t.TempDir()
	venvPython := filepath.Join(dir, ".venv", "bin", "python")
	if err := os.MkdirAll(filepath.Dir(venvPython), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(venvPython, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}

	found := Discover(dir)
	var venv *Interpreter
	for i := range found {
		if found[i].Source == "venv" && found[i].Path == venvPython {
			venv = &found[i]
		}
	}
	if venv == nil {
		t.Fatalf("venv interpreter not discovered in %v", found)
	}
	// venv candidates sort ahead of search-path ones.
	if found[0].Source != "venv" {
		t.Errorf("first candidate = %+v, want venv", found[0])
	}
}

func TestDiscoverDeduplicates(t *testing.T) {
	found := Discover(t.TempDir())
	seen := map[string]bool{}
	for _, in := range found {
		resolved, err := filepath.EvalSymlinks(in.Path)
		if err != nil {
			resolved = in.Path
		}
		if seen[resolved] {
			t.Errorf("duplicate interpreter %s", resolved)
		}
		seen[resolved] = true
	}
}

func TestResolveShebang(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "python3")
	if err := os.WriteFile(abs, []byte(""), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := ResolveShebang(abs); got != abs {
		t.Errorf("absolute shebang = %q, want %q", got, abs)
	}
	if got := ResolveShebang(filepath.Join(dir, "missing")); got != "" {
		t.Errorf("missing absolute shebang = %q, want empty", got)
	}
	if got := ResolveShebang(""); got != "" {
		t.Errorf("empty shebang = %q", got)
	}
}
