package inventory

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// YieldPercent returns output/input*100. The ratio is rounded half-up to 4 places
// first, then the percentage to 2. A non-positive input yields zero.
func YieldPercent(input, output decimal.Decimal) decimal.Decimal {
	if !input.IsPositive() {
		return decimal.Zero
	}
	return output.DivRound(input, 4).Mul(hundred).Round(2)
}

// Wastage is the mass lost between input and output.
func Wastage(input, output decimal.Decimal) decimal.Decimal {
	return input.Sub(output)
}

// Utilization returns current/capacity*100 rounded to 2 places, zero when capacity is not positive.
func Utilization(current, capacity decimal.Decimal) decimal.Decimal {
	if !capacity.IsPositive() {
		return decimal.Zero
	}
	return current.Mul(hundred).DivRound(capacity, 2)
}
