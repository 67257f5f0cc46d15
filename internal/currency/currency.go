// Package currency converts catalog prices between USD and NPR for display.
//
// All money is stored in USD; NPR is a derived display value computed with a
// fixed configurable rate and never persisted on its own.
package currency

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DefaultRate is the USD→NPR conversion rate used when none is configured.
const DefaultRate = 140

// nprPrinter formats NPR amounts with Indian digit grouping (Rs. 2,100).
var nprPrinter = message.NewPrinter(language.MustParse("en-IN"))

// Display pairs a USD amount with its derived NPR value.
type Display struct {
	USD decimal.Decimal `json:"usd"`
	NPR int64           `json:"npr"`
}

// Converter converts USD amounts to NPR using a fixed rate.
type Converter struct {
	rate decimal.Decimal
}

// New creates a Converter. A non-positive rate falls back to DefaultRate.
func New(rate int) Converter {
	if rate <= 0 {
		rate = DefaultRate
	}
	return Converter{rate: decimal.NewFromInt(int64(rate))}
}

// ToNpr converts a USD amount to a whole-rupee NPR amount, rounding half
// away from zero at the unit conversion step.
func (c Converter) ToNpr(usd decimal.Decimal) int64 {
	return usd.Mul(c.rate).Round(0).IntPart()
}

// Display returns the dual-currency representation of a USD amount.
func (c Converter) Display(usd decimal.Decimal) Display {
	return Display{USD: usd, NPR: c.ToNpr(usd)}
}

// FormatUSD renders a USD amount as $X.XX.
func FormatUSD(usd decimal.Decimal) string {
	return "$" + usd.StringFixed(2)
}

// FormatNPR renders an NPR amount as Rs. N with locale-aware grouping.
func FormatNPR(npr int64) string {
	return nprPrinter.Sprintf("Rs. %d", npr)
}

// FormatDual renders both currencies, e.g. "$15.00 / Rs. 2,100".
func (c Converter) FormatDual(usd decimal.Decimal) string {
	return FormatUSD(usd) + " / " + FormatNPR(c.ToNpr(usd))
}
