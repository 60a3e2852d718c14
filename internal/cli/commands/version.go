package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(fmt.Sprintf("scribe %s", version))
			cmd.Println(fmt.Sprintf("  build date: %s", buildDate))
			cmd.Println(fmt.Sprintf("  commit:     %s", gitCommit))
			cmd.Println(fmt.Sprintf("  go:         %s (%s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH))
		},
	}
}
