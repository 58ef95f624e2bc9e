// Package core provides money parsing and handling utilities.
//
// Amounts are decimal values with two fraction digits. Summation never
// rounds; rounding happens only when a value is rendered.
package core

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount  = errors.New("invalid amount")
	ErrAmountTooLarge = errors.New("amount exceeds 10000000")
)

var (
	minAmount = decimal.New(1, -2)
	maxAmount = decimal.New(10_000_000, 0)
)

// ParseAmount converts a user supplied string into a validated amount.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted and
// the value is rounded half-up to cents.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if err := ValidateAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ValidateAmount enforces the ledger bounds of 0.01 to 10,000,000.
func ValidateAmount(d decimal.Decimal) error {
	if d.LessThan(minAmount) {
		return ErrInvalidAmount
	}
	if d.GreaterThan(maxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

// FormatAmount renders d with exactly two fraction digits and a dot separator.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// ToCents converts an amount to integer cents for storage.
func ToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// FromCents converts stored integer cents back to an amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}
