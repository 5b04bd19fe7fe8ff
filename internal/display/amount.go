// Package display renders ledger amounts for people.
package display

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Amount formats value in the given ISO currency, e.g. "$1,234.50". Digits
// beyond the currency's minor unit are rounded half away from zero for
// display only; stored amounts keep full precision.
func Amount(value decimal.Decimal, currency string) string {
	// money.New always yields a non-nil currency, even for unknown codes.
	cur := *money.New(0, currency).Currency()
	minor := value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
