// Package format turns raw product fields into display strings for a locale.
// Formatters degrade silently: bad input yields a readable fallback rather
// than an error.
package format

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCurrency applies when no currency code is given.
const DefaultCurrency = "EUR"

// InvalidDate is rendered for dates that cannot be parsed.
const InvalidDate = "Invalid Date"

// ErrInvalidDate is returned by ParseDate for unparsable input.
var ErrInvalidDate = errors.New("format: invalid date")

// Price formats amount in the given ISO currency for the locale tag, e.g.
// "19,90 €" (non-breaking space) for French and "€19.90" for English. An empty
// code means EUR; an unknown code is printed after the plain amount.
func Price(amount decimal.Decimal, code string, tag language.Tag) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return amount.StringFixed(2) + " " + code
	}

	scale, _ := currency.Standard.Rounding(unit)
	rounded := amount.Round(int32(scale))
	neg := rounded.IsNegative()
	if neg {
		rounded = rounded.Neg()
	}
	digits := localDigits(message.NewPrinter(tag), rounded, scale)

	sym := symbol(unit)
	var out string
	if symbolFirst(tag) {
		out = sym + digits
	} else {
		out = digits + "\u00a0" + sym
	}
	if neg {
		return "-" + out
	}
	return out
}

var maxInt = decimal.NewFromInt(math.MaxInt64)

// localDigits prints the non-negative amount d with scale fraction digits.
// Only the integer part goes through the printer, for grouping; the fraction
// is taken from d itself so no digit is lost to a float conversion.
func localDigits(p *message.Printer, d decimal.Decimal, scale int) string {
	fixed := d.StringFixed(int32(scale))
	if d.GreaterThan(maxInt) {
		return fixed
	}
	out := p.Sprint(number.Decimal(d.IntPart()))
	if scale > 0 {
		_, frac, _ := strings.Cut(fixed, ".")
		out += decimalSeparator(p) + frac
	}
	return out
}

func decimalSeparator(p *message.Printer) string {
	half := p.Sprint(number.Decimal(0.5, number.Scale(1)))
	return strings.TrimSuffix(strings.TrimPrefix(half, "0"), "5")
}

func symbol(unit currency.Unit) string {
	switch unit {
	case currency.EUR:
		return "€"
	case currency.USD:
		return "$"
	case currency.GBP:
		return "£"
	case currency.JPY:
		return "¥"
	case currency.CHF:
		return "CHF"
	default:
		return unit.String()
	}
}

func symbolFirst(tag language.Tag) bool {
	base, _ := tag.Base()
	switch base.String() {
	case "en", "ja", "zh", "ko":
		return true
	default:
		return false
	}
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// ParseDate parses an ISO-like date string.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// Date renders s in long form for the locale ("12 mars 2024"), or InvalidDate.
func Date(s string, tag language.Tag) string {
	t, err := ParseDate(s)
	if err != nil {
		return InvalidDate
	}
	return LongDate(t, tag)
}

var frenchMonths = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// LongDate formats t with a spelled-out month.
func LongDate(t time.Time, tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "fr":
		return fmt.Sprintf("%d %s %d", t.Day(), frenchMonths[t.Month()-1], t.Year())
	default:
		return t.Format("January 2, 2006")
	}
}
