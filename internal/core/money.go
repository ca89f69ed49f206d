// Package core provides the domain model for the finance tracker.
//
// This file contains money parsing and formatting helpers. Amounts are
// held as int64 cents; floats only appear at display boundaries.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDecimalToCents converts a positive decimal amount ("12.34", also
// "12,34") to cents, rounding half-up on the third decimal place. API
// clients may submit money this way instead of integer cents.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}

	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units > (1<<63-1)/100 {
		return 0, ErrInvalidAmount
	}

	// Pad so the first three fractional digits are always addressable.
	frac := (fracPart + "000")[:3]
	cents := units*100 + 10*int64(frac[0]-'0') + int64(frac[1]-'0')
	if frac[2] >= '5' {
		cents++
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

func (m Money) Sub(other Money) Money {
	return Money{Cents: m.Cents - other.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Reais returns the value in currency units as a float64, for display
// only. Calculations stay in cents.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

// String renders the amount as a plain decimal string ("12.34", "-0.05").
func (m Money) String() string {
	c := m.Cents
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}
