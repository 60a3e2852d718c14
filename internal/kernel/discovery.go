package kernel

import (
	"os"
	"os/exec"
	"path/filepath"
	"sort"
)

// Interpreter is one discovered interpreter candidate, surfaced to the
// kernel picker.
type Interpreter struct {
	Path   string
	Name   string // display name, e.g. "python3 (.venv)"
	Source string // "path", "venv", or "shebang"
}

// venvLayouts are the project-relative virtual-environment locations probed
// during discovery.
var venvLayouts = []string{
	".venv/bin/python",
	"venv/bin/python",
	"env/bin/python",
}

// Discover enumerates interpreter candidates: executable-search-path
// binaries, project-local virtual environments under workDir, and the user's
// virtualenv home. Candidates are deduplicated by resolved path and sorted
// with venv interpreters first (they are the more specific choice).
func Discover(workDir string) []Interpreter {
	var found []Interpreter
	seen := map[string]bool{}

	add := func(path, name, source string) {
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			resolved = path
		}
		if seen[resolved] {
			return
		}
		if info, err := os.Stat(resolved); err != nil || info.IsDir() {
			return
		}
		seen[resolved] = true
		found = append(found, Interpreter{Path: path, Name: name, Source: source})
	}

	for _, layout := range venvLayouts {
		p := filepath.Join(workDir, layout)
		add(p, "python ("+filepath.Dir(filepath.Dir(layout))+")", "venv")
	}
	if home, err := os.UserHomeDir(); err == nil {
		entries, _ := os.ReadDir(filepath.Join(home, ".virtualenvs"))
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			p := filepath.Join(home, ".virtualenvs", e.Name(), "bin", "python")
			add(p, "python ("+e.Name()+")", "venv")
		}
	}
	for _, name := range []string{"python3", "python"} {
		if p, err := exec.LookPath(name); err == nil {
			add(p, name, "path")
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Source == "venv" && found[j].Source != "venv"
	})
	return found
}

// ResolveShebang turns a shebang interpreter name into an executable path.
// Absolute paths pass through; bare names go through the search path.
// Returns "" when the interpreter cannot be found.
func ResolveShebang(interpreter string) string {
	if interpreter == "" {
		return ""
	}
	if filepath.IsAbs(interpreter) {
		if _, err := os.Stat(interpreter); err != nil {
			return ""
		}
		return interpreter
	}
	p, err := exec.LookPath(interpreter)
	if err != nil {
		return ""
	}
	return p
}
