// Package models provides the data structures shared by the categorization
// and extraction packages.
package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction is a single raw bank-statement row as produced by upstream
// file parsers. Well-formed rows carry either a debit or a credit, but the
// categorizer tolerates rows where both are zero or both are set.
type Transaction struct {
	Date        string          `csv:"date" json:"date"`
	Description string          `csv:"description" json:"description"`
	Debit       decimal.Decimal `csv:"debit" json:"debit"`
	Credit      decimal.Decimal `csv:"credit" json:"credit"`
}

// IsInbound reports whether money flowed into the account. A positive
// credit is the only signal; a zero-zero row counts as outbound.
func (t Transaction) IsInbound() bool {
	return t.Credit.IsPositive()
}

// Suggestion is one categorization result for a transaction. Instances are
// created fresh per classification pass and never mutated afterwards.
type Suggestion struct {
	Category    string `csv:"category" json:"category"`
	Subcategory string `csv:"subcategory" json:"subcategory"`
	Ledger      string `csv:"suggested_ledger" json:"suggestedLedger"`
	Confidence  int    `csv:"confidence" json:"confidence"`
	Source      string `csv:"source" json:"source"`
	Notes       string `csv:"notes,omitempty" json:"notes,omitempty"`
}

// Suggestion sources.
const (
	SourceRule  = "rule"
	SourceModel = "model"
)

// CategorizedTransaction is the original transaction plus the winning
// suggestion. The original fields are attached to, never replaced.
type CategorizedTransaction struct {
	Transaction
	Suggestion
}

// Record is a structured transaction recovered from raw document text by
// the extractor. The date is kept verbatim as found in the document.
type Record struct {
	ID          string          `csv:"id" json:"id"`
	Date        string          `csv:"date" json:"date"`
	Description string          `csv:"description" json:"description"`
	Reference   string          `csv:"reference,omitempty" json:"reference,omitempty"`
	Debit       decimal.Decimal `csv:"debit" json:"debit"`
	Credit      decimal.Decimal `csv:"credit" json:"credit"`
	Balance     decimal.Decimal `csv:"balance" json:"balance"`
	Type        string          `csv:"type" json:"type"`
	Amount      decimal.Decimal `csv:"amount" json:"amount"`
}

// Record types.
const (
	TypeDebit  = "DEBIT"
	TypeCredit = "CREDIT"
)

// ParseAmount parses a money string into a decimal, tolerating
// thousands-separator commas and surrounding whitespace. Anything that
// still fails to parse becomes zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
