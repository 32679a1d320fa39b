package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"github.com/cleared-dev/bank2qif/internal/model"
)

// MBankParser parses mBank history exports (semicolon-separated, Windows-1250).
type MBankParser struct{}

const (
	mbankDateFormat     = "02.01.2006"
	mbankAccountLabel   = "#Numer rachunku"
	mbankTableLabel     = "#Data operacji"
	mbankClosingLabel   = "#Saldo końcowe"
	mbankNumFields      = 8
	mbankColOpDate      = 0
	mbankColAcctDate    = 1
	mbankColDesc        = 2
	mbankColTitle       = 3
	mbankColParty       = 4
	mbankColAccountCode = 5
	mbankColAmount      = 6
	mbankColBalance     = 7
)

// Format returns the parser name.
func (p *MBankParser) Format() string { return "mbank" }

// Parse reads an mBank export and returns its History.
func (p *MBankParser) Parse(r io.Reader) (model.History, error) {
	cr := csv.NewReader(charmap.Windows1250.NewDecoder().Reader(r))
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var records [][]string
	var lines []int
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return model.History{}, fmt.Errorf("reading mbank CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	number, err := findAccountNumber(records)
	if err != nil {
		return model.History{}, err
	}

	start, end, err := findTable(records)
	if err != nil {
		return model.History{}, err
	}

	var txns []model.Transaction
	for i := start; i < end; i++ {
		rec := records[i]
		if isBlankRecord(rec) {
			continue
		}
		txn, err := parseMBankRow(rec)
		if err != nil {
			return model.History{}, fmt.Errorf("line %d: %w", lines[i], err)
		}
		txns = append(txns, txn)
	}

	return model.History{AccountNumber: number, Entries: txns}, nil
}

// findAccountNumber returns the token on the line after the account label.
func findAccountNumber(records [][]string) (string, error) {
	i := indexOfLabel(records, mbankAccountLabel)
	if i < 0 {
		return "", fmt.Errorf("%w: missing %q header", ErrFormat, mbankAccountLabel)
	}
	if i+1 >= len(records) || len(records[i+1]) == 0 {
		return "", fmt.Errorf("%w: no account number after %q", ErrFormat, mbankAccountLabel)
	}
	number := stripSpaces(records[i+1][0])
	if number == "" {
		return "", fmt.Errorf("%w: empty account number after %q", ErrFormat, mbankAccountLabel)
	}
	return number, nil
}

// findTable returns the half-open record range [start, end) holding transactions.
func findTable(records [][]string) (start, end int, err error) {
	header := indexOfLabel(records, mbankTableLabel)
	if header < 0 {
		return 0, 0, fmt.Errorf("%w: missing %q header", ErrFormat, mbankTableLabel)
	}

	closing := -1
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		if len(rec) > mbankColBalance && strings.TrimSpace(rec[mbankColBalance]) == mbankClosingLabel {
			closing = i
			break
		}
	}
	if closing < 0 {
		return 0, 0, fmt.Errorf("%w: missing %q row", ErrFormat, mbankClosingLabel)
	}
	if closing <= header {
		return 0, 0, fmt.Errorf("%w: %q row precedes the table header", ErrFormat, mbankClosingLabel)
	}
	return header + 1, closing, nil
}

func indexOfLabel(records [][]string, label string) int {
	for i, rec := range records {
		if len(rec) > 0 && strings.TrimSpace(rec[0]) == label {
			return i
		}
	}
	return -1
}

func parseMBankRow(rec []string) (model.Transaction, error) {
	if len(rec) < mbankNumFields {
		return model.Transaction{}, fmt.Errorf("%w: expected %d fields, got %d", ErrFormat, mbankNumFields, len(rec))
	}

	opDate, err := parseMBankDate(rec[mbankColOpDate])
	if err != nil {
		return model.Transaction{}, err
	}
	acctDate, err := parseMBankDate(rec[mbankColAcctDate])
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := parseMBankAmount(rec[mbankColAmount])
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		OperationDate:  opDate,
		AccountingDate: acctDate,
		Description:    strings.TrimSpace(rec[mbankColDesc]),
		Title:          strings.TrimSpace(rec[mbankColTitle]),
		Counterparty:   strings.TrimSpace(rec[mbankColParty]),
		AccountCode:    strings.Trim(strings.TrimSpace(rec[mbankColAccountCode]), `'"`),
		Amount:         amount,
	}, nil
}

func parseMBankDate(s string) (time.Time, error) {
	d, err := time.Parse(mbankDateFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing date %q: %w", ErrFormat, s, err)
	}
	return d, nil
}

// parseMBankAmount accepts amounts like "-1 234,56" where spaces group thousands.
func parseMBankAmount(s string) (decimal.Decimal, error) {
	norm := strings.ReplaceAll(stripSpaces(s), ",", ".")
	amount, err := decimal.NewFromString(norm)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parsing amount %q: %w", ErrFormat, s, err)
	}
	return amount, nil
}

// stripSpaces removes every Unicode whitespace rune, including the no-break
// spaces mBank uses as thousands separators, plus zero-width spaces and BOMs.
func stripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '\u200b' || r == '\ufeff' {
			return -1
		}
		return r
	}, s)
}

func isBlankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
