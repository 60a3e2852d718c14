package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/scribe-term/scribe/internal/notebook"
)

// NewCellsCommand creates the cell listing command, mostly useful to check
// how a delimiter setting splits a file.
func NewCellsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cells <notebook>",
		Short: "Show how a notebook splits into cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := getConfig()
			doc, err := loadNotebook(args[0])
			if err != nil {
				return err
			}
			cells := notebook.Segment(doc, c.Delimiter)

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Cell", "Label", "Lines", "First line"})
			for _, cell := range cells {
				src := cell.Source(doc)
				lines := strings.Count(src, "\n")
				if src != "" && !strings.HasSuffix(src, "\n") {
					lines++
				}
				first := src
				if i := strings.IndexByte(first, '\n'); i >= 0 {
					first = first[:i]
				}
				if len(first) > 50 {
					first = first[:50] + "…"
				}
				t.AppendRow(table.Row{cell.Index, cell.Label, lines, first})
			}
			t.SetStyle(table.StyleLight)
			t.Render()

			cmd.Println(fmt.Sprintf("%d cells (delimiter %q)", len(cells), c.Delimiter))
			return nil
		},
	}
}
