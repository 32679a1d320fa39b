package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction represents one parsed row of a bank history export.
type Transaction struct {
	OperationDate  time.Time
	AccountingDate time.Time
	Description    string
	Title          string
	Counterparty   string
	AccountCode    string          // bank-assigned account or counter-account code
	Amount         decimal.Decimal // negative = outflow, positive = inflow
}

// History is the result of importing one bank export file.
type History struct {
	AccountNumber string
	Entries       []Transaction
}
