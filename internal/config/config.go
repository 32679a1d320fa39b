package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule kinds accepted in the "match" field.
const (
	MatchAccountCode      = "account_code"
	MatchCounterparty     = "counterparty"
	MatchTitlePrefix      = "title_prefix"
	MatchAccountCodeTitle = "account_code_title"
	MatchAny              = "any"
)

// Config represents the top-level bank2qif.yaml configuration.
type Config struct {
	// Accounts maps a bank account number to its QIF display name.
	Accounts map[string]string `yaml:"accounts,omitempty"`
	// AccountsFile is an optional CSV with more account mappings, relative to the config file.
	AccountsFile string `yaml:"accounts_file,omitempty"`
	Rules        []Rule `yaml:"rules"`
}

// Rule is one classification rule as written in YAML. Which fields are
// required depends on Match.
type Rule struct {
	Match       string `yaml:"match"`
	Account     string `yaml:"account"`
	Code        string `yaml:"code,omitempty"`
	Pattern     string `yaml:"pattern,omitempty"`
	Prefix      string `yaml:"prefix,omitempty"`
	Contains    string `yaml:"contains,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// Load reads a bank2qif.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate checks the parts of the config that don't need compiling.
func (c *Config) Validate() error {
	if len(c.Rules) == 0 {
		return errors.New("no rules defined")
	}
	if len(c.Accounts) == 0 && c.AccountsFile == "" {
		return errors.New("no accounts defined")
	}
	for num, name := range c.Accounts {
		if name == "" {
			return fmt.Errorf("account %s has an empty name", num)
		}
	}
	return nil
}

// Default returns a starter Config for a new project.
func Default() *Config {
	return &Config{
		AccountsFile: "accounts.csv",
		Rules: []Rule{
			{Match: MatchTitlePrefix, Prefix: "Wynagrodzenie", Account: "Income:Salary"},
			{Match: MatchCounterparty, Pattern: "(?i)biedronka|lidl", Account: "Expenses:Groceries", Description: "Groceries"},
			{Match: MatchAccountCode, Code: "00000000000000000000000000", Account: "Transfers:Savings"},
			{Match: MatchAny, Account: "Expenses:Uncategorized"},
		},
	}
}
