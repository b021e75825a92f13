package domain

import "fmt"

// Cents is a monetary amount in integer cents. All prices, totals, and
// discounts in the system are carried in cents so derived values can be
// rounded deterministically at each step.
type Cents int64

// Mul returns the amount multiplied by a quantity.
func (c Cents) Mul(qty int) Cents {
	return c * Cents(qty)
}

// String renders the amount as a decimal string, e.g. 1050 -> "10.50".
func (c Cents) String() string {
	sign := ""
	v := int64(c)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MulRateHalfUp multiplies a non-negative amount by num/den, rounding half
// up to the nearest cent. Used for the per-step rounding rule: every derived
// monetary value is rounded independently before entering a sum.
func MulRateHalfUp(c Cents, num, den int64) Cents {
	if den <= 0 {
		return 0
	}
	return Cents((int64(c)*num + den/2) / den)
}

// DiscountPercent returns the discount as a whole percentage of the original
// price, rounded half up. A non-positive original price yields 0.
func DiscountPercent(original, discounted Cents) int {
	if original <= 0 || discounted >= original {
		return 0
	}
	return int(MulRateHalfUp(original-discounted, 100, int64(original)))
}
