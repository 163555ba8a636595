// Package money rounds float amounts to currency precision.
package money

import "github.com/shopspring/decimal"

const centPlaces = 2

// Round2 rounds an amount half away from zero to whole cents. Decimal
// arithmetic avoids the 2.675 -> 2.67 surprise of math.Round(v*100)/100.
func Round2(amount float64) float64 {
	rounded, _ := decimal.NewFromFloat(amount).Round(centPlaces).Float64()
	return rounded
}

// Sum adds amounts exactly and rounds the total to cents
func Sum(amounts ...float64) float64 {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(decimal.NewFromFloat(a))
	}
	rounded, _ := total.Round(centPlaces).Float64()
	return rounded
}
