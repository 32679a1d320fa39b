// Package rules classifies bank transactions into QIF categories and payees
// using an ordered, first-match-wins list of rules.
package rules

import (
	"regexp"
	"strings"

	"github.com/cleared-dev/bank2qif/internal/model"
)

// Rule decides whether it applies to a transaction and, if so, which
// category and description the transaction gets.
type Rule interface {
	Matches(tx model.Transaction) bool
	Account(tx model.Transaction) string
	Description(tx model.Transaction) string
}

// titleDescription supplies the default Description: the transaction title.
type titleDescription struct{}

func (titleDescription) Description(tx model.Transaction) string { return tx.Title }

// ByAccountCode matches transactions with the given bank account code.
type ByAccountCode struct {
	titleDescription
	Code   string
	Target string
}

func (r *ByAccountCode) Matches(tx model.Transaction) bool { return tx.AccountCode == r.Code }
func (r *ByAccountCode) Account(_ model.Transaction) string { return r.Target }

// ByCounterparty matches transactions whose counterparty matches Pattern.
// A non-empty Desc replaces the title as description.
type ByCounterparty struct {
	Pattern *regexp.Regexp
	Target  string
	Desc    string
}

// NewByCounterparty compiles pattern and returns the rule.
func NewByCounterparty(pattern, target, desc string) (*ByCounterparty, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &ByCounterparty{Pattern: re, Target: target, Desc: desc}, nil
}

func (r *ByCounterparty) Matches(tx model.Transaction) bool { return r.Pattern.MatchString(tx.Counterparty) }
func (r *ByCounterparty) Account(_ model.Transaction) string { return r.Target }

func (r *ByCounterparty) Description(tx model.Transaction) string {
	if r.Desc != "" {
		return r.Desc
	}
	return tx.Title
}

// ByTitlePrefix matches transactions whose title starts with Prefix.
type ByTitlePrefix struct {
	titleDescription
	Prefix string
	Target string
}

func (r *ByTitlePrefix) Matches(tx model.Transaction) bool { return strings.HasPrefix(tx.Title, r.Prefix) }
func (r *ByTitlePrefix) Account(_ model.Transaction) string { return r.Target }

// ByAccountCodeAndTitle matches when the account code equals Code and the
// title contains Contains.
type ByAccountCodeAndTitle struct {
	titleDescription
	Code     string
	Contains string
	Target   string
}

func (r *ByAccountCodeAndTitle) Matches(tx model.Transaction) bool {
	return tx.AccountCode == r.Code && strings.Contains(tx.Title, r.Contains)
}

func (r *ByAccountCodeAndTitle) Account(_ model.Transaction) string { return r.Target }

// CatchAll matches everything. Its description is "<title> <counterparty>".
type CatchAll struct {
	Target string
}

func (r *CatchAll) Matches(_ model.Transaction) bool { return true }
func (r *CatchAll) Account(_ model.Transaction) string { return r.Target }

func (r *CatchAll) Description(tx model.Transaction) string {
	return tx.Title + " " + tx.Counterparty
}

var (
	_ Rule = (*ByAccountCode)(nil)
	_ Rule = (*ByCounterparty)(nil)
	_ Rule = (*ByTitlePrefix)(nil)
	_ Rule = (*ByAccountCodeAndTitle)(nil)
	_ Rule = (*CatchAll)(nil)
)
