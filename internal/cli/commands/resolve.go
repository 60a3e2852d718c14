package commands

import (
	"os"
	"path/filepath"

	"github.com/scribe-term/scribe/internal/config"
	"github.com/scribe-term/scribe/internal/kernel"
	"github.com/scribe-term/scribe/internal/notebook"
	"github.com/scribe-term/scribe/internal/state"
)

// resolveInterpreter walks the configured precedence and returns the first
// interpreter that resolves, together with the source that produced it.
// Returns "" when no source yields one; the caller falls back to the picker.
func resolveInterpreter(c *config.Config, st *state.Store, path, doc string) (string, string) {
	workDir := "."
	if path != "" {
		workDir = filepath.Dir(path)
	}

	for _, src := range c.Kernel.Precedence {
		switch src {
		case config.SourceFlag:
			if c.Kernel.Interpreter != "" {
				return c.Kernel.Interpreter, src
			}
		case config.SourceRemembered:
			if st == nil || path == "" {
				continue
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				continue
			}
			remembered, ok, err := st.RememberedInterpreter(abs)
			if err != nil || !ok {
				continue
			}
			if _, err := os.Stat(remembered); err == nil {
				return remembered, src
			}
		case config.SourceShebang:
			if sb := notebook.Shebang(doc); sb != "" {
				if resolved := kernel.ResolveShebang(sb); resolved != "" {
					return resolved, src
				}
			}
		case config.SourceDiscovered:
			if found := kernel.Discover(workDir); len(found) > 0 {
				return found[0].Path, src
			}
		}
	}
	return "", ""
}
