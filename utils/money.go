package utils

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to two decimal places, half away from
// zero. All header-level amounts are stored rounded; the residue goes
// into the bill's RoundOff column.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// PercentOf returns base*percent/100 rounded to two places, computed in
// exact decimal so tax splits like 9% of 150.00 never pick up float
// noise.
func PercentOf(base, percent float64) float64 {
	f, _ := decimal.NewFromFloat(base).
		Mul(decimal.NewFromFloat(percent)).
		Div(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return f
}

// RoundWithResidue rounds v to two places and also returns the residue
// (rounded - raw) that the RoundOff field absorbs.
func RoundWithResidue(v float64) (rounded, residue float64) {
	raw := decimal.NewFromFloat(v)
	r := raw.Round(2)
	rounded, _ = r.Float64()
	residue, _ = r.Sub(raw).Round(4).Float64()
	return rounded, residue
}
