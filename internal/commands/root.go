package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bank2qif/internal/buildinfo"
)

// envFile holds BANK2QIF_* defaults for flags not given on the command line.
const envFile = ".env"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "bank2qif",
		Short:   "Convert bank history exports to QIF using classification rules",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("loading %s: %w", envFile, err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every classification")

	logger := func() *log.Logger {
		return newLogger(rootCmd.ErrOrStderr(), verbose)
	}

	rootCmd.AddCommand(newConvertCommand(logger))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		newLogger(os.Stderr, false).Error(err.Error())
		return 1
	}
	return 0
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), buildinfo.String())
		},
	}
}
