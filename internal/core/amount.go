// Package core holds the domain types of the ledger: calendar dates,
// month keys, monetary amounts, and the income/expense records built
// from them.
//
// This file contains amount parsing. Amounts are exact decimals; float
// arithmetic never touches money.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered amount string to a decimal.
// It accepts both dot (12.34) and comma (12,34) separators. Sign is
// preserved: positivity requirements belong to the record validators,
// not to parsing.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePositiveAmount is ParseAmount with a strict positivity check,
// used for income entry.
func ParsePositiveAmount(s string) (decimal.Decimal, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}
