package chart

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// NumberFormatter prints tick and value labels in the report language.
type NumberFormatter struct {
	p *message.Printer
}

// NewNumberFormatter returns a formatter for a BCP 47 language tag such as
// "sk" or "en".
func NewNumberFormatter(lang string) (*NumberFormatter, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("report language %q: %w", lang, err)
	}
	return &NumberFormatter{p: message.NewPrinter(tag)}, nil
}

// Format prints v with at most four fraction digits.
func (n *NumberFormatter) Format(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Sprint(v)
	}
	return n.p.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(4)))
}

var defaultNumbers = &NumberFormatter{p: message.NewPrinter(language.English)}

func numbersOrDefault(n *NumberFormatter) *NumberFormatter {
	if n == nil {
		return defaultNumbers
	}
	return n
}
