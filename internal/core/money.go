// Package core provides the sales journal domain types.
//
// This file contains the exact decimal money type used for unit prices and
// totals, and the helpers that format it for display.
package core

import (
	"errors"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the ISO code used when none is configured.
const DefaultCurrency = "THB"

var ErrInvalidAmount = errors.New("invalid amount")

// Money is an exact decimal amount in major units (e.g. 49.50).
//
// It serializes to JSON as a bare number so persisted prices round-trip
// without losing precision. The zero value is 0.
type Money struct {
	value decimal.Decimal
}

// NewMoney wraps a decimal value.
func NewMoney(v decimal.Decimal) Money { return Money{value: v} }

// MoneyFromInt builds a whole-unit amount.
func MoneyFromInt(v int64) Money { return Money{value: decimal.NewFromInt(v)} }

// ParseMoney parses a decimal string. Both dot (12.34) and comma (12,34)
// separators are accepted.
//
// Examples:
//
//	ParseMoney("50")    -> 50
//	ParseMoney("12,50") -> 12.5
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return Money{value: d}, nil
}

func (m Money) Decimal() decimal.Decimal { return m.value }
func (m Money) Add(n Money) Money        { return Money{value: m.value.Add(n.value)} }
func (m Money) MulInt(q int) Money       { return Money{value: m.value.Mul(decimal.NewFromInt(int64(q)))} }
func (m Money) Equal(n Money) bool       { return m.value.Equal(n.value) }
func (m Money) Cmp(n Money) int          { return m.value.Cmp(n.value) }
func (m Money) IsZero() bool             { return m.value.IsZero() }
func (m Money) IsNegative() bool         { return m.value.IsNegative() }
func (m Money) InexactFloat64() float64  { return m.value.InexactFloat64() }
func (m Money) String() string           { return m.value.String() }

// Format renders the amount with the currency's symbol and separators,
// rounded to the currency's minor unit (e.g. "฿150.00").
func (m Money) Format(currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	// money.New is the only way to get a never nil currency definition.
	cur := *money.New(0, currency).Currency()
	minor := m.value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return money.New(minor, currency).Display()
}

// MarshalJSON writes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.value.String()), nil
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return err
	}
	m.value = d
	return nil
}
