package commands

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/scribe-term/scribe/internal/kernel"
	"github.com/scribe-term/scribe/internal/ui"
)

// Edit opens the interactive notebook editor for path; an empty path opens
// an unsaved scratch notebook.
func Edit(_ *cobra.Command, path string) error {
	c := getConfig()
	logger, closeLog := openLogger(c)
	defer closeLog()

	doc, err := loadNotebook(path)
	if err != nil {
		return err
	}

	st := openState(c, logger)
	if st != nil {
		defer st.Close()
	}

	abs := ""
	if path != "" {
		if abs, err = filepath.Abs(path); err != nil {
			abs = path
		}
		if st != nil {
			if terr := st.TouchNotebook(abs); terr != nil {
				logger.Warn("failed to touch notebook", "error", terr)
			}
		}
	}

	workDir := "."
	if path != "" {
		workDir = filepath.Dir(path)
	}
	interp, source := resolveInterpreter(c, st, path, doc)
	logger.Info("opening notebook", "path", path, "interpreter", interp, "source", source)

	return ui.Run(ui.Options{
		Path:         path,
		Doc:          doc,
		Delimiter:    c.Delimiter,
		Interpreter:  interp,
		Candidates:   kernel.Discover(workDir),
		SQLPatterns:  c.Completion.SQLPatterns,
		StartTimeout: time.Duration(c.Kernel.StartTimeoutSeconds) * time.Second,
		Logger:       logger,
		OnInterpreterChosen: func(chosen string) {
			if st == nil || abs == "" {
				return
			}
			if rerr := st.RememberInterpreter(abs, chosen); rerr != nil {
				logger.Warn("failed to remember interpreter", "error", rerr)
			}
		},
	})
}
