// Package qif renders documents in the Quicken Interchange Format.
package qif

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cleared-dev/bank2qif/internal/model"
)

// dateFormat renders 1 Feb 2023 as 01.02'2023.
const dateFormat = "02.01'2006"

// Extension is the file extension of written documents.
const Extension = ".qif"

// Render returns doc as QIF text. Lines are joined with "\n".
func Render(doc model.Document) string {
	lines := []string{
		"!Account",
		"N" + doc.AccountName,
		"^",
		"!Type:Bank",
	}
	for _, txn := range doc.Transactions {
		lines = append(lines, transactionLines(txn)...)
	}
	return strings.Join(lines, "\n")
}

func transactionLines(txn model.QIFTransaction) []string {
	lines := []string{
		"D" + txn.Date.Format(dateFormat),
		"T" + txn.Amount.StringFixed(2),
	}
	if txn.Category != "" {
		lines = append(lines, "L"+txn.Category)
	}
	if txn.Payee != "" {
		lines = append(lines, "P"+txn.Payee)
	}
	return append(lines, "^")
}

// WriteFile renders doc to <dir>/<accountNumber>.qif and returns the path.
func WriteFile(dir, accountNumber string, doc model.Document) (string, error) {
	if accountNumber == "" || strings.ContainsAny(accountNumber, `/\`) || accountNumber == "." || accountNumber == ".." {
		return "", fmt.Errorf("invalid account number %q for a file name", accountNumber)
	}

	path := filepath.Join(dir, accountNumber+Extension)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.WriteString(Render(doc)); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
