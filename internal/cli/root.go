// Package cli provides the scribe command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/scribe-term/scribe/internal/cli/commands"
	"github.com/scribe-term/scribe/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command. Invoked with a notebook
// path it opens the interactive editor; without one it opens an unsaved
// scratch notebook.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "scribe [notebook]",
		Short: "Scribe - a terminal notebook for exploratory scripting",
		Long: `Scribe edits plain script files as cell-delimited notebooks, runs cells
in a persistent interpreter, and completes identifiers, method chains, and
SQL against the live session.`,
		Args:    cobra.MaximumNArgs(1),
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cwd, err := os.Getwd()
			if err != nil {
				cwd = "."
			}
			cfg, err := config.Load(cfgFile, cwd, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			commands.SetConfig(cfg)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("the editor needs a terminal; use `scribe run` for non-interactive execution")
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return commands.Edit(cmd, path)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./scribe.yaml)")
	rootCmd.PersistentFlags().String("delimiter", "", "cell delimiter token")
	rootCmd.PersistentFlags().StringP("interpreter", "i", "", "interpreter to run cells with")
	rootCmd.PersistentFlags().String("state", "", "path to the state database")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-file", "", "log destination file")
	rootCmd.PersistentFlags().StringSlice("sql-patterns", nil, "extra call patterns treated as SQL sinks")

	_ = rootCmd.RegisterFlagCompletionFunc("log-level", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewKernelsCommand())
	rootCmd.AddCommand(commands.NewCellsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
