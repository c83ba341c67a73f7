package oddsmath

import (
	"fmt"
	"math"
)

// DecimalToAmerican converts decimal odds to American odds
// Decimal 2.50 → American +150
// Decimal 1.91 → American -110 (approx)
//
// Decimal odds of exactly 1.0 are rejected: the negative branch divides by
// (decimal - 1), so 1.0 is a singularity rather than a price.
func DecimalToAmerican(decimal float64) (float64, error) {
	if math.IsNaN(decimal) {
		return 0, fmt.Errorf("invalid decimal odds: NaN")
	}

	if decimal <= 1.0 {
		return 0, fmt.Errorf("invalid decimal odds %.4f: must be > 1.0", decimal)
	}

	if decimal >= 2.0 {
		// Positive American odds: (decimal * 100) - 100
		return (decimal * 100.0) - 100.0, nil
	}

	// Negative American odds: -100 / (decimal - 1)
	return -100.0 / (decimal - 1.0), nil
}

// AmericanToDecimal converts American odds to decimal odds
// American +150 → Decimal 2.50
// American -150 → Decimal 1.67
//
// Zero is rejected: routing it to the negative branch would divide by zero
// and silently produce infinite decimal odds.
func AmericanToDecimal(american float64) (float64, error) {
	if math.IsNaN(american) {
		return 0, fmt.Errorf("invalid American odds: NaN")
	}

	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}

	if american > 0 {
		// Positive odds: (american / 100) + 1
		return (american / 100.0) + 1.0, nil
	}

	// Negative odds: (100 / abs(american)) + 1
	return (100.0 / math.Abs(american)) + 1.0, nil
}

// ImpliedProbability converts decimal odds to the market's break-even
// win probability
// Decimal 2.00 → 0.50 (50%)
func ImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 0 || math.IsNaN(decimal) {
		return 0, fmt.Errorf("invalid decimal odds: must be > 0")
	}

	return 1.0 / decimal, nil
}

// Value calculates the expected-value edge of a unit stake
// Value = (predicted probability × decimal odds) - 1
//
// Positive value = +EV bet under the model's probability
func Value(probability, decimal float64) float64 {
	return (probability * decimal) - 1.0
}
