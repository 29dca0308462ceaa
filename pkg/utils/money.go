package utils

import (
	"github.com/shopspring/decimal"
)

// OuncesPerLot is the contract size of one standard XAU/USD lot.
const OuncesPerLot = 100

// FormatPrice renders a price with two decimals.
func FormatPrice(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// FormatUSD renders a signed dollar amount, e.g. "+$12.50" or "-$3.00".
func FormatUSD(value float64) string {
	d := decimal.NewFromFloat(value).Round(2)
	if d.IsNegative() {
		return "-$" + d.Abs().StringFixed(2)
	}
	return "+$" + d.StringFixed(2)
}

// FormatPercent renders a [0,1] ratio as a whole percentage.
func FormatPercent(ratio float64) string {
	return decimal.NewFromFloat(ratio).Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}

// PriceDistanceUSD is the dollar value of a move between two prices for the given lot size.
func PriceDistanceUSD(from, to, lotSize float64) float64 {
	move := decimal.NewFromFloat(to).Sub(decimal.NewFromFloat(from)).Abs()
	value := move.Mul(decimal.NewFromFloat(lotSize)).Mul(decimal.NewFromInt(OuncesPerLot))
	f, _ := value.Round(2).Float64()
	return f
}
