package format

import (
	"fmt"
	"math"

	"github.com/fintools/loancalc/pkg/constants"
)

// Months renders a whole month count as a duration such as
// "23 years and 3 months", dropping whichever part is zero.
func Months(months int) string {
	if months <= 0 {
		return "0 months"
	}
	years := months / constants.MonthsPerYear
	remainder := months % constants.MonthsPerYear
	switch {
	case years == 0:
		return plural(remainder, "month")
	case remainder == 0:
		return plural(years, "year")
	default:
		return plural(years, "year") + " and " + plural(remainder, "month")
	}
}

// BreakEvenDuration renders a fractional month count as a duration.
// Spans under one month fall back to a day count at thirty days per
// month; longer spans are rounded to the nearest whole month.
func BreakEvenDuration(months float64) string {
	if months < 1 {
		days := int(math.Round(months * constants.DaysPerMonth))
		return plural(days, "day")
	}
	return Months(int(math.Round(months)))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
