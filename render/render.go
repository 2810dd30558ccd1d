// Package render formats market data values for the transport layer's
// lightweight markup
package render

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotAvailable is the display marker for missing or non-numeric values
const NotAvailable = "N/A"

// markupReserved is the reserved character set of the transport's
// markup flavor (MarkdownV2)
const markupReserved = "_*[]()~`>#+-=|{}.!"

var printer = message.NewPrinter(language.English)

// Float renders a numeric value with two decimal digits and
// thousands separators
func Float(value float64) string {
	return printer.Sprintf("%.2f", value)
}

// Number renders an upstream numeric string with two decimal digits
// and thousands separators, falling back to NotAvailable when the
// value is not numeric
func Number(value string) string {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return NotAvailable
	}

	return Float(parsed)
}

// Percent renders a completion fraction string as a percentage with
// two decimal digits. A non-numeric value is passed through unchanged,
// unlike the NotAvailable fallback used for price and amount fields
func Percent(fraction string) string {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(fraction), 64)
	if err != nil {
		return fraction
	}

	return strconv.FormatFloat(parsed*100, 'f', 2, 64)
}

// EscapeMarkup escapes every reserved markup character in free text,
// making upstream-supplied fields safe for embedding
func EscapeMarkup(text string) string {
	var sb strings.Builder

	sb.Grow(len(text))

	for _, r := range text {
		if strings.ContainsRune(markupReserved, r) {
			sb.WriteByte('\\')
		}

		sb.WriteRune(r)
	}

	return sb.String()
}
