package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidDate is returned when a QIF transaction has no calendar date.
	ErrInvalidDate = errors.New("invalid transaction date")
	// ErrInexactAmount is returned when an amount cannot be written with two decimals.
	ErrInexactAmount = errors.New("amount has more than 2 decimal places")
)

// QIFTransaction is one reclassified transaction in an output document.
type QIFTransaction struct {
	Date     time.Time
	Amount   decimal.Decimal
	Category string // empty = no L line
	Payee    string // empty = no P line
}

// NewQIFTransaction validates and builds a QIFTransaction.
func NewQIFTransaction(date time.Time, amount decimal.Decimal, category, payee string) (QIFTransaction, error) {
	if date.IsZero() {
		return QIFTransaction{}, ErrInvalidDate
	}
	hundred := decimal.NewFromInt(100)
	if cents := amount.Mul(hundred); !cents.Equal(cents.Floor()) {
		return QIFTransaction{}, fmt.Errorf("%w: %s", ErrInexactAmount, amount)
	}
	return QIFTransaction{
		Date:     date,
		Amount:   amount,
		Category: category,
		Payee:    payee,
	}, nil
}

// Document is a complete QIF file for a single account.
type Document struct {
	AccountName  string
	Transactions []QIFTransaction
}
