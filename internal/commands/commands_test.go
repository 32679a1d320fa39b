package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/cleared-dev/bank2qif/internal/config"
)

const sampleExport = `#Numer rachunku;
12345;
;
#Data operacji;#Data księgowania;#Opis operacji;#Tytuł;#Nadawca/Odbiorca;#Numer konta;#Kwota;#Saldo po operacji;
01.02.2023;01.02.2023;;Grocery Store;ACME Foods;'12345';-45,67;1000,00
;;;;;;;#Saldo końcowe;1000,00;
`

const sampleConfig = `accounts:
  "12345": Checking
rules:
  - match: counterparty
    pattern: ACME
    account: Groceries
`

func runBank2qif(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeFixtures writes the sample config and a Windows-1250 export into dir.
func writeFixtures(t *testing.T, dir, cfg, export string) (cfgPath, srcPath string) {
	t.Helper()
	cfgPath = filepath.Join(dir, "bank2qif.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	enc, err := charmap.Windows1250.NewEncoder().String(export)
	require.NoError(t, err)
	srcPath = filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(srcPath, []byte(enc), 0o644))
	return cfgPath, srcPath
}

func TestConvert_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, sampleExport)

	stdout, _, err := runBank2qif(t, "convert", "--config", cfgPath, "--kind", "mbank", "--out", out, srcPath)
	require.NoError(t, err)
	assert.Equal(t, "Checking\n", stdout)

	data, err := os.ReadFile(filepath.Join(out, "12345.qif"))
	require.NoError(t, err)
	want := strings.Join([]string{
		"!Account",
		"NChecking",
		"^",
		"!Type:Bank",
		"D01.02'2023",
		"T-45.67",
		"LGroceries",
		"PGrocery Store",
		"^",
	}, "\n")
	assert.Equal(t, want, string(data))
}

func TestConvert_NoMatchingRule(t *testing.T) {
	dir := t.TempDir()
	cfg := strings.Replace(sampleConfig, "pattern: ACME", "pattern: LIDL", 1)
	cfgPath, srcPath := writeFixtures(t, dir, cfg, sampleExport)

	_, _, err := runBank2qif(t, "convert", "-c", cfgPath, "-o", dir, srcPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no matching rule")

	_, statErr := os.Stat(filepath.Join(dir, "12345.qif"))
	assert.True(t, os.IsNotExist(statErr), "no partial output")
}

func TestConvert_UnknownAccount(t *testing.T) {
	dir := t.TempDir()
	cfg := strings.Replace(sampleConfig, `"12345"`, `"99999"`, 1)
	cfgPath, srcPath := writeFixtures(t, dir, cfg, sampleExport)

	_, _, err := runBank2qif(t, "convert", "-c", cfgPath, "-o", dir, srcPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown account")
}

func TestConvert_UnknownKind(t *testing.T) {
	dir := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, sampleExport)

	_, _, err := runBank2qif(t, "convert", "-c", cfgPath, "--kind", "chase", srcPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown importer kind "chase"`)
}

func TestConvert_MalformedExport(t *testing.T) {
	dir := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, strings.Replace(sampleExport, "#Data operacji", "#Data", 1))

	_, _, err := runBank2qif(t, "convert", "-c", cfgPath, "-o", dir, srcPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed bank export")
}

func TestConvert_AccountsFile(t *testing.T) {
	dir := t.TempDir()
	cfg := "accounts_file: accounts.csv\nrules:\n  - match: any\n    account: Other\n"
	cfgPath, srcPath := writeFixtures(t, dir, cfg, sampleExport)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accounts.csv"),
		[]byte("account_number,display_name\n12345,From CSV\n"), 0o644))

	stdout, _, err := runBank2qif(t, "convert", "-c", cfgPath, "-o", dir, srcPath)
	require.NoError(t, err)
	assert.Equal(t, "From CSV\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "12345.qif"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "LOther\nPGrocery Store ACME Foods\n^")
}

func TestConvert_EnvDefaults(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, sampleExport)
	t.Setenv(envConfig, cfgPath)
	t.Setenv(envOut, out)

	stdout, _, err := runBank2qif(t, "convert", srcPath)
	require.NoError(t, err)
	assert.Equal(t, "Checking\n", stdout)
	_, err = os.Stat(filepath.Join(out, "12345.qif"))
	assert.NoError(t, err)
}

func TestConvert_DotEnv(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, sampleExport)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte(envConfig+"="+cfgPath+"\n"+envOut+"="+out+"\n"), 0o644))

	// Keep variables set by godotenv from leaking into other tests.
	t.Setenv(envConfig, "")
	t.Setenv(envOut, "")
	os.Unsetenv(envConfig)
	os.Unsetenv(envOut)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	_, _, err = runBank2qif(t, "convert", srcPath)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "12345.qif"))
	assert.NoError(t, err)
}

func TestConvert_FlagBeatsEnv(t *testing.T) {
	dir := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, sampleExport)
	t.Setenv(envConfig, filepath.Join(dir, "missing.yaml"))

	_, _, err := runBank2qif(t, "convert", "-c", cfgPath, "-o", dir, srcPath)
	require.NoError(t, err)
}

func TestConvert_Verbose(t *testing.T) {
	dir := t.TempDir()
	cfgPath, srcPath := writeFixtures(t, dir, sampleConfig, sampleExport)

	_, stderr, err := runBank2qif(t, "convert", "-v", "-c", cfgPath, "-o", dir, srcPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "classified")
	assert.Contains(t, stderr, "Groceries")
}

func TestConvert_RequiresFile(t *testing.T) {
	_, _, err := runBank2qif(t, "convert")
	assert.Error(t, err)
}

func TestInit_WritesStarterFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "books")
	stdout, _, err := runBank2qif(t, "init", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialized bank2qif config")

	cfg, err := config.Load(filepath.Join(dir, configFile))
	require.NoError(t, err)
	assert.Equal(t, "accounts.csv", cfg.AccountsFile)

	data, err := os.ReadFile(filepath.Join(dir, "accounts.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "account_number,display_name\n"))
}

func TestInit_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runBank2qif(t, "init", dir)
	require.NoError(t, err)

	_, _, err = runBank2qif(t, "init", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = runBank2qif(t, "init", "--force", dir)
	assert.NoError(t, err)
}

func TestInit_ThenConvert(t *testing.T) {
	dir := t.TempDir()
	_, _, err := runBank2qif(t, "init", dir)
	require.NoError(t, err)

	export := strings.Replace(sampleExport, "12345;", "00000000000000000000000000;", 1)
	enc, err := charmap.Windows1250.NewEncoder().String(export)
	require.NoError(t, err)
	src := filepath.Join(dir, "history.csv")
	require.NoError(t, os.WriteFile(src, []byte(enc), 0o644))

	stdout, _, err := runBank2qif(t, "convert", "-c", filepath.Join(dir, configFile), "-o", dir, src)
	require.NoError(t, err)
	assert.Equal(t, "Assets:Checking\n", stdout)
}

func TestVersion(t *testing.T) {
	stdout, _, err := runBank2qif(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev (commit: none")

	stdout, _, err = runBank2qif(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "dev")
}
