package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Locale used for prices on every page.
var Locale = language.MustParse("es-CO")

// Format renders an amount in whole pesos with local digit grouping,
// e.g. $850.000.
func Format(amount int64) string {
	return message.NewPrinter(Locale).Sprintf("$%d", amount)
}

// FormatFloat is Format for backend figures that may carry decimals. The
// value is rounded to whole pesos.
func FormatFloat(amount float64) string {
	return message.NewPrinter(Locale).Sprintf("$%.0f", amount)
}

// Percent renders a percentage with one decimal.
func Percent(rate float64) string {
	return message.NewPrinter(Locale).Sprintf("%.1f%%", rate)
}
