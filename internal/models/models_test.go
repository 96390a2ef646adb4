package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "0"},
		{"   ", "0"},
		{"100", "100"},
		{"1,234.56", "1234.56"},
		{"1,25,000.50", "125000.5"},
		{"-42", "-42"},
		{"abc", "0"},
		{"12.5.0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseAmount(tt.in).String())
		})
	}
}

func TestTransactionIsInbound(t *testing.T) {
	assert.True(t, Transaction{Credit: decimal.NewFromInt(10)}.IsInbound())
	assert.False(t, Transaction{Debit: decimal.NewFromInt(10)}.IsInbound())
	assert.False(t, Transaction{}.IsInbound())

	// Both sides set: a positive credit still counts as inbound.
	both := Transaction{Debit: decimal.NewFromInt(5), Credit: decimal.NewFromInt(5)}
	assert.True(t, both.IsInbound())
}
