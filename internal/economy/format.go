// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

package economy

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders ledger amounts for display.
type Formatter interface {
	Format(amount float64) string
	// CurrencyName returns the singular or plural unit name.
	CurrencyName(plural bool) string
	// FractionalDigits is how many decimal places amounts are rendered
	// and rounded to. Negative means unconstrained.
	FractionalDigits() int
}

// CurrencyFormatter renders amounts with locale-aware grouping via
// x/text, e.g. "1,234.50 coins" under English collation.
type CurrencyFormatter struct {
	printer  *message.Printer
	singular string
	plural   string
	digits   int
}

var _ Formatter = (*CurrencyFormatter)(nil)

// NewCurrencyFormatter builds a formatter for the given locale tag and
// unit names. digits controls rounding in Format.
func NewCurrencyFormatter(tag language.Tag, singular, plural string, digits int) *CurrencyFormatter {
	return &CurrencyFormatter{
		printer:  message.NewPrinter(tag),
		singular: singular,
		plural:   plural,
		digits:   digits,
	}
}

// Format implements Formatter.
func (f *CurrencyFormatter) Format(amount float64) string {
	name := f.plural
	if amount == 1 {
		name = f.singular
	}
	return f.printer.Sprintf("%v %s", number.Decimal(amount, number.Scale(f.digits)), name)
}

// CurrencyName implements Formatter.
func (f *CurrencyFormatter) CurrencyName(plural bool) string {
	if plural {
		return f.plural
	}
	return f.singular
}

// FractionalDigits implements Formatter.
func (f *CurrencyFormatter) FractionalDigits() int { return f.digits }
