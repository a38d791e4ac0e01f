package format

import (
	"fmt"
	"math"
)

// NA marks a cell whose quantity is not defined for the row (reference rows,
// p-values of additive measures).
const NA = "—"

// Estimate formats a point estimate to two decimals; NaN renders as NA.
func Estimate(v float64) string {
	if math.IsNaN(v) {
		return NA
	}
	return fmt.Sprintf("%.2f", v)
}

// Interval formats a confidence interval as "[l, u]".
func Interval(lower, upper float64) string {
	return fmt.Sprintf("[%.2f, %.2f]", lower, upper)
}

// PValue formats a two-sided p-value, switching to scientific notation below
// 0.001 so small values stay readable.
func PValue(p float64) string {
	if math.IsNaN(p) {
		return NA
	}
	if p < 0.001 {
		return fmt.Sprintf("%.2e", p)
	}
	return fmt.Sprintf("%.3f", p)
}

// Percent formats a confidence level (0.95 -> "95%").
func Percent(level float64) string {
	return fmt.Sprintf("%g%%", level*100)
}
