package commands

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/scribe-term/scribe/internal/kernel"
)

// NewKernelsCommand creates the kernels listing command.
func NewKernelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "kernels",
		Short: "List interpreters scribe can run cells with",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				cwd = "."
			}
			found := kernel.Discover(cwd)
			if len(found) == 0 {
				cmd.Println("No interpreters found.")
				return nil
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Name", "Source", "Path"})
			for _, in := range found {
				t.AppendRow(table.Row{in.Name, in.Source, in.Path})
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}
