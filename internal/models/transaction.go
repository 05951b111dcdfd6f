package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amounts serialize as JSON numbers, not quoted strings, across the API
// and export surfaces.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Direction tells whether money left or entered the account.
type Direction string

const (
	Withdrawal Direction = "Withdrawal"
	Deposit    Direction = "Deposit"
)

// Date is a calendar day without a time component. It marshals to the
// ISO form "2006-01-02" used throughout the API and export layers.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return fmt.Errorf("invalid date %s: %w", b, err)
	}
	d.Time = t
	return nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// Transaction is one finished statement entry. Instances are built once by
// the parser and never mutated afterwards.
type Transaction struct {
	Date        Date             `json:"date"`
	TypeLine    string           `json:"type_line"`
	Merchant    string           `json:"merchant"`
	Direction   Direction        `json:"direction"`
	Amount      decimal.Decimal  `json:"amount"`
	Balance     *decimal.Decimal `json:"balance"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
	Period      string           `json:"statement_period"`
}

// LayoutType identifies a supported statement layout.
type LayoutType string

const (
	LayoutRBC LayoutType = "rbc"
)

// Statement holds everything parsed from a single PDF document.
type Statement struct {
	Layout       LayoutType    `json:"layout"`
	Period       string        `json:"statement_period"`
	Source       string        `json:"source,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

// Validate runs sanity checks over a parsed statement and returns a list of
// problems found. An empty result means the statement looks consistent.
func (s *Statement) Validate() []string {
	var issues []string

	var prev Date
	for i, t := range s.Transactions {
		if !t.Amount.IsPositive() {
			issues = append(issues, fmt.Sprintf("row %d (%s): non-positive amount %s for %q",
				i, t.Date, t.Amount, t.TypeLine))
		}
		if t.Category == "" {
			issues = append(issues, fmt.Sprintf("row %d (%s): missing category for %q",
				i, t.Date, t.TypeLine))
		}
		if t.Direction != Withdrawal && t.Direction != Deposit {
			issues = append(issues, fmt.Sprintf("row %d (%s): bad direction %q",
				i, t.Date, t.Direction))
		}
		if !prev.IsZero() && t.Date.Before(prev.Time) {
			issues = append(issues, fmt.Sprintf("date out of order: %s after %s", t.Date, prev))
		}
		prev = t.Date
	}

	return issues
}
