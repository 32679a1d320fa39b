package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/bank2qif/internal/accounts"
	"github.com/cleared-dev/bank2qif/internal/config"
)

const configFile = "bank2qif.yaml"

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Write a starter rules file and account map",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			if err := runInit(absDir, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized bank2qif config in %s\n", absDir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func runInit(dir string, force bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	cfg := config.Default()
	cfgPath := filepath.Join(dir, configFile)
	acctPath := filepath.Join(dir, cfg.AccountsFile)

	if !force {
		for _, p := range []string{cfgPath, acctPath} {
			if _, err := os.Stat(p); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", p)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", p, err)
			}
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return err
	}

	starter := accounts.NewMap(map[string]string{
		"00000000000000000000000000": "Assets:Checking",
	})
	if err := starter.SaveCSV(acctPath); err != nil {
		return err
	}
	return nil
}
