package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/scribe-term/scribe/internal/catalog"
	"github.com/scribe-term/scribe/internal/exec"
	"github.com/scribe-term/scribe/internal/kernel"
	"github.com/scribe-term/scribe/internal/notebook"
	"github.com/scribe-term/scribe/internal/state"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Quiet       bool
	ShowOutputs bool
}

// NewRunCommand creates the headless run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <notebook>",
		Short: "Run every cell of a notebook without the editor",
		Long: `Execute all cells in document order in a fresh interpreter session.
Execution stops at the first failing cell; cells after it are not run.
The exit status is non-zero when any cell fails.`,
		Example: `  # Run a notebook end to end
  scribe run analysis.py

  # Run with a specific interpreter
  scribe run --interpreter .venv/bin/python analysis.py`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Suppress the summary table")
	cmd.Flags().BoolVar(&opts.ShowOutputs, "outputs", false, "Print captured cell outputs")

	return cmd
}

func runRun(cmd *cobra.Command, path string, opts *RunOptions) error {
	c := getConfig()
	logger, closeLog := openLogger(c)
	defer closeLog()

	doc, err := loadNotebook(path)
	if err != nil {
		return err
	}
	cells := notebook.Segment(doc, c.Delimiter)

	interp, source := resolveInterpreter(c, nil, path, doc)
	if interp == "" {
		return fmt.Errorf("no interpreter found; pass --interpreter or add a shebang")
	}
	logger.Info("starting kernel", "interpreter", interp, "source", source)

	session := kernel.NewSession(interp, kernel.Options{
		Logger:       logger,
		StartTimeout: time.Duration(c.Kernel.StartTimeoutSeconds) * time.Second,
	})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := session.Start(ctx); err != nil {
		return err
	}
	defer session.Close()

	st := openState(c, logger)
	if st != nil {
		defer st.Close()
	}

	coord := exec.NewCoordinator(session, catalog.NewStore(), exec.Options{Logger: logger})

	var run *state.Run
	if st != nil {
		if abs, err := filepath.Abs(path); err == nil {
			run, _ = st.CreateRun(abs, len(cells))
		}
	}

	summary, err := coord.RunAll(ctx, doc, cells)
	if run != nil {
		status := state.RunStatusSucceeded
		if err != nil || !summary.OK() {
			status = state.RunStatusFailed
		}
		if ferr := st.FinishRun(run.ID, status, summary.FailedCell); ferr != nil {
			logger.Warn("failed to record run", "error", ferr)
		}
	}
	if err != nil {
		return err
	}

	if !opts.Quiet {
		printSummary(cmd, summary, opts.ShowOutputs)
	}
	if !summary.OK() {
		return fmt.Errorf("cell %d failed", summary.FailedCell)
	}
	return nil
}

func printSummary(cmd *cobra.Command, summary exec.Summary, showOutputs bool) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Cell", "Label", "Status", "Count", "Error"})
	for _, rec := range summary.Records {
		errText := ""
		if rec.Err != nil {
			errText = rec.Err.Kind
			if rec.Err.Message != "" {
				errText += ": " + rec.Err.Message
			}
		}
		count := ""
		if rec.Count > 0 {
			count = fmt.Sprintf("%d", rec.Count)
		}
		t.AppendRow(table.Row{rec.Cell, rec.Label, rec.Status.String(), count, errText})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Error", WidthMax: 60, WidthMaxEnforcer: text.WrapSoft},
	})
	t.SetStyle(table.StyleLight)
	t.Render()

	if showOutputs {
		out := cmd.OutOrStdout()
		for _, rec := range summary.Records {
			if len(rec.Outputs) == 0 && rec.ResultRepr == "" {
				continue
			}
			fmt.Fprintf(out, "\n--- cell %d ---\n", rec.Cell)
			for _, chunk := range rec.Outputs {
				fmt.Fprint(out, chunk.Data)
			}
			if rec.ResultRepr != "" {
				fmt.Fprintln(out, rec.ResultRepr)
			}
		}
	}
}
