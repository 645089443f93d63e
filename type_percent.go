package dca

import (
	"fmt"
	"math"
)

// Percent is a value expressed in percentage points (12.5 means 12.5%).
type Percent float64

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", float64(p))
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", float64(p))
	if res == "+0.00%" {
		return "-"
	}
	return res
}

// round rounds x to the given number of decimal places, half to even on the
// scaled binary value: 0.125 rounds to 0.12, and 2.675, stored just below,
// rounds to 2.67. NaN and infinities are returned unchanged.
func round(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	scale := math.Pow10(places)
	return math.RoundToEven(x*scale) / scale
}
