// Package core holds the domain types and the currency codec shared by
// every processing stage of the payslip analyzer.
//
// Two parsing conventions coexist on purpose. The arithmetic convention
// reads values the way they are summed; the cents-shift convention
// normalizes pre-rendered numeric strings for re-display. They are not
// interchangeable and must never be unified silently.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseArithmetic parses a monetary string under the arithmetic
// convention: the comma is the decimal separator, dots are thousands
// separators when a comma is present, surrounding whitespace is ignored.
// This is the convention used for summation.
//
//	ParseArithmetic("50,00")     -> 50.00
//	ParseArithmetic("1.234,56")  -> 1234.56
//	ParseArithmetic("100.00")    -> 100.00 (dot-decimal tolerated)
func ParseArithmetic(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseCentsShift parses a pre-rendered numeric string by stripping all
// grouping and decimal punctuation and treating the remaining digit
// string as integer cents. It is used only to normalize display strings
// (e.g. "123,456.78" -> 123456.78) and does not round-trip against the
// arithmetic convention.
func ParseCentsShift(s string) (decimal.Decimal, error) {
	t := strings.TrimSpace(s)
	t = strings.ReplaceAll(t, ".", "")
	t = strings.ReplaceAll(t, ",", "")
	if t == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	cents, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !cents.IsInteger() {
		return decimal.Zero, ErrInvalidAmount
	}
	return cents.Shift(-2), nil
}

// FormatBRL renders a value in PT-BR notation: dot as thousands
// separator, comma as decimal separator, exactly two decimal places.
// FormatBRL(ParseArithmetic(s)) yields the canonical form of any valid
// decimal input s.
func FormatBRL(d decimal.Decimal) string {
	fixed := d.StringFixed(2)

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	sb.WriteByte(',')
	sb.WriteString(fracPart)
	return sb.String()
}

// NormalizeDisplay rewrites a pre-rendered numeric string into canonical
// PT-BR notation via the cents-shift convention. Strings the convention
// cannot read come back unchanged; already-canonical PT-BR strings are a
// fixed point of this function.
func NormalizeDisplay(s string) string {
	d, err := ParseCentsShift(s)
	if err != nil {
		return s
	}
	return FormatBRL(d)
}
