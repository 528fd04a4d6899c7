package types

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RoundCents rounds a decimal amount of cents to a whole number of
// cents, half away from zero.
func RoundCents(amount decimal.Decimal) int64 {
	return amount.Round(0).IntPart()
}

// FormatCents renders cents behind a currency symbol for messages shown
// on the register, e.g. 9720 with "$" becomes "$97.20".
func FormatCents(cents int64, symbol string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, symbol, cents/100, cents%100)
}
