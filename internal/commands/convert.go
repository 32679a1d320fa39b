package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/bank2qif/internal/accounts"
	"github.com/cleared-dev/bank2qif/internal/config"
	"github.com/cleared-dev/bank2qif/internal/importer"
	"github.com/cleared-dev/bank2qif/internal/qif"
	"github.com/cleared-dev/bank2qif/internal/rules"
)

// Environment variables consulted when the matching flag is not set.
const (
	envConfig = "BANK2QIF_CONFIG"
	envKind   = "BANK2QIF_KIND"
	envOut    = "BANK2QIF_OUT"
)

type convertOptions struct {
	configPath string
	kind       string
	outDir     string
	source     string
}

func newConvertCommand(logger func() *log.Logger) *cobra.Command {
	var opts convertOptions

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a bank export to a QIF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.source = args[0]
			flagOrEnv(cmd, "config", envConfig, &opts.configPath)
			flagOrEnv(cmd, "kind", envKind, &opts.kind)
			flagOrEnv(cmd, "out", envOut, &opts.outDir)

			name, err := runConvert(opts, logger())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "bank2qif.yaml", "rules and accounts file")
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", "mbank",
		"export format ("+strings.Join(importer.DefaultRegistry().Formats(), ", ")+")")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "output directory")

	return cmd
}

// flagOrEnv overrides *dst with the environment variable when the flag was not set.
func flagOrEnv(cmd *cobra.Command, flag, env string, dst *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

// runConvert runs import, classification and output for one file and
// returns the display name of the converted account.
func runConvert(opts convertOptions, logger *log.Logger) (string, error) {
	parser := importer.DefaultRegistry().Get(opts.kind)
	if parser == nil {
		return "", fmt.Errorf("unknown importer kind %q", opts.kind)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return "", err
	}

	accts, err := loadAccounts(cfg, filepath.Dir(opts.configPath))
	if err != nil {
		return "", err
	}

	ruleList, err := rules.Build(cfg.Rules)
	if err != nil {
		return "", fmt.Errorf("building rules: %w", err)
	}
	logger.Debug("loaded config", "path", opts.configPath, "accounts", accts.Len(), "rules", len(ruleList))

	history, err := importer.ParseFile(parser, opts.source)
	if err != nil {
		return "", err
	}
	logger.Debug("imported history", "account", history.AccountNumber, "entries", len(history.Entries))

	runner := rules.NewRunner(accts, ruleList)
	if logger.GetLevel() <= log.DebugLevel {
		for _, tx := range history.Entries {
			if res, err := runner.Match(tx); err == nil {
				logger.Debug("classified", "title", tx.Title, "amount", tx.Amount.StringFixed(2), "account", res.Account)
			}
		}
	}

	doc, err := runner.Classify(history)
	if err != nil {
		return "", fmt.Errorf("classifying %s: %w", opts.source, err)
	}

	path, err := qif.WriteFile(opts.outDir, history.AccountNumber, doc)
	if err != nil {
		return "", err
	}
	logger.Info("wrote QIF", "path", path, "transactions", len(doc.Transactions))

	return doc.AccountName, nil
}

// loadAccounts merges the inline account map with the optional CSV file.
func loadAccounts(cfg *config.Config, baseDir string) (*accounts.Map, error) {
	m := accounts.NewMap(cfg.Accounts)
	if cfg.AccountsFile == "" {
		return m, nil
	}

	path := cfg.AccountsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	fromFile, err := accounts.LoadCSV(path)
	if err != nil {
		return nil, err
	}
	if err := m.Merge(fromFile); err != nil {
		return nil, fmt.Errorf("merging %s: %w", path, err)
	}
	return m, nil
}
