package rules

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/bank2qif/internal/model"
)

var (
	// ErrNoMatchingRule is returned when no rule accepts a transaction.
	ErrNoMatchingRule = errors.New("no matching rule")
	// ErrUnknownAccount is returned when the history's account number is not in the account map.
	ErrUnknownAccount = errors.New("unknown account")
)

// AccountLookup resolves a bank account number to its display name.
type AccountLookup interface {
	DisplayName(number string) (string, bool)
}

// Result is the classification of one transaction.
type Result struct {
	Account     string
	Description string
}

// Runner applies an ordered rule list to imported histories.
type Runner struct {
	accounts AccountLookup
	rules    []Rule
}

// NewRunner creates a Runner. Rule order is match priority.
func NewRunner(accounts AccountLookup, rules []Rule) *Runner {
	return &Runner{accounts: accounts, rules: rules}
}

// Match returns the classification from the first rule that matches tx.
func (r *Runner) Match(tx model.Transaction) (Result, error) {
	for _, rule := range r.rules {
		if rule.Matches(tx) {
			return Result{
				Account:     rule.Account(tx),
				Description: rule.Description(tx),
			}, nil
		}
	}
	return Result{}, fmt.Errorf("%w for %s %q (counterparty %q, amount %s)",
		ErrNoMatchingRule, tx.OperationDate.Format("2006-01-02"), tx.Title, tx.Counterparty, tx.Amount.StringFixed(2))
}

// Classify builds the QIF document for h. It fails on the first transaction
// no rule matches, or when h's account number has no display name.
func (r *Runner) Classify(h model.History) (model.Document, error) {
	txns := make([]model.QIFTransaction, 0, len(h.Entries))
	for i, tx := range h.Entries {
		res, err := r.Match(tx)
		if err != nil {
			return model.Document{}, fmt.Errorf("entry %d: %w", i+1, err)
		}
		qt, err := model.NewQIFTransaction(tx.OperationDate, tx.Amount, res.Account, res.Description)
		if err != nil {
			return model.Document{}, fmt.Errorf("entry %d: %w", i+1, err)
		}
		txns = append(txns, qt)
	}

	name, ok := r.accounts.DisplayName(h.AccountNumber)
	if !ok {
		return model.Document{}, fmt.Errorf("%w: %s is not in the account map", ErrUnknownAccount, h.AccountNumber)
	}

	return model.Document{AccountName: name, Transactions: txns}, nil
}
