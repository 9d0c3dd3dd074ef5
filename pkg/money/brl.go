// Package money provides parsing and formatting for Brazilian Real amounts.
// Spreadsheet exports mix "R$ 1.234,56", "1234,56" and "1234.56" in the same
// column, so parsing is deliberately lenient: anything unparseable is zero,
// never an error.
package money

import (
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// CurrencyCode is the single locale this application handles.
const CurrencyCode = gomoney.BRL

// Prefix is the display prefix for canonical amount strings.
const Prefix = "R$"

// Parse converts a raw amount cell into a decimal value.
// Rules, in order:
//   - an optional "R$" prefix is stripped;
//   - both '.' and ',' present: '.' is a thousands separator, ',' is decimal;
//   - only ',' present: ',' is the decimal separator;
//   - otherwise the string is parsed as-is.
//
// Empty or unparseable input yields zero.
func Parse(raw string) decimal.Decimal {
	clean := strings.TrimSpace(strings.ReplaceAll(raw, Prefix, ""))
	if clean == "" {
		return decimal.Zero
	}

	hasComma := strings.Contains(clean, ",")
	hasDot := strings.Contains(clean, ".")

	switch {
	case hasComma && hasDot:
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case hasComma:
		clean = strings.ReplaceAll(clean, ",", ".")
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders a decimal as a canonical BRL display string, e.g.
// "R$ 1.234,56". Separator conventions come from the go-money currency
// table rather than being hardcoded here.
func Format(amount decimal.Decimal) string {
	return Prefix + " " + FormatNumber(amount)
}

// FormatNumber renders a decimal with Brazilian grouping and two fraction
// digits, without the currency prefix: 1234.5 -> "1.234,50".
func FormatNumber(amount decimal.Decimal) string {
	cur := gomoney.GetCurrency(CurrencyCode)

	fixed := amount.StringFixed(int32(cur.Fraction))

	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteString(cur.Thousand)
		}
		b.WriteRune(r)
	}
	b.WriteString(cur.Decimal)
	b.WriteString(fracPart)
	return b.String()
}

// EnsurePrefix returns the raw display value with the "R$" prefix added when
// absent. The source digits are kept as they appeared in the spreadsheet.
func EnsurePrefix(raw string) string {
	if strings.Contains(raw, Prefix) {
		return raw
	}
	return Prefix + " " + raw
}

// ParseDigitMask interprets a masked numeric input where all digits shift left
// of an implied two-place decimal: "123456" -> 1234.56. Non-digit characters
// are ignored, so "1.234,56" round-trips to the same value.
func ParseDigitMask(input string) decimal.Decimal {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(digits.String())
	if err != nil {
		return decimal.Zero
	}
	return d.Div(decimal.NewFromInt(100))
}
