// Package output provides utilities for formatting and displaying
// calculation results.
package output

import (
	"fmt"
	"strings"

	"github.com/fintools/loancalc/internal/config"
	"github.com/fintools/loancalc/pkg/format"
	"github.com/fintools/loancalc/pkg/mathutil"
)

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(conf *config.Configuration, formatter *format.Formatter) {
	fmt.Print(PrettyString(conf, formatter))
}

// PrettyString renders the report PrettyFormat prints.
func PrettyString(conf *config.Configuration, formatter *format.Formatter) string {
	var builder strings.Builder

	for _, loan := range conf.Loans {
		if loan.Result == nil {
			continue
		}
		result := loan.Result

		fmt.Fprintf(&builder, "--- Loan %s ---\n", loan.Name)
		fmt.Fprintf(&builder, "Monthly payment:     %s\n", formatter.Currency(result.MonthlyPayment))
		fmt.Fprintf(&builder, "Paid off in:         %s (%d payments)\n", format.Months(result.MonthsToPayoff), result.MonthsToPayoff)
		fmt.Fprintf(&builder, "Total interest paid: %s\n", formatter.Currency(result.TotalInterestPaid))
		if mathutil.IsPositive(result.TotalInterestSaved) {
			fmt.Fprintf(&builder, "Interest saved:      %s\n", formatter.Currency(result.TotalInterestSaved))
		}
		if result.Capped && len(result.Schedule) > 0 {
			remaining := result.Schedule[len(result.Schedule)-1].RemainingBalance
			fmt.Fprintf(&builder, "Payment does not amortize the loan; %s remains after %d months\n",
				formatter.Currency(remaining), result.MonthsToPayoff)
		}

		if conf.Output.ShowSchedule {
			fmt.Fprintf(&builder, "Month | Date    | Interest        | Principal       | Balance\n")
			fmt.Fprintf(&builder, "_____ | ____    | ________        | _________       | _______\n")
			for _, record := range result.Schedule {
				fmt.Fprintf(&builder, "%-5d | %s | %15s | %15s | %s\n",
					record.Number,
					record.Date.Format(config.DateTimeLayout),
					formatter.Currency(record.InterestPaid),
					formatter.Currency(record.PrincipalPaid),
					formatter.Currency(record.RemainingBalance),
				)
			}
		}
		builder.WriteString("\n")
	}

	for _, refinance := range conf.Refinances {
		if refinance.Result == nil {
			continue
		}
		result := refinance.Result

		fmt.Fprintf(&builder, "--- Refinance %s ---\n", refinance.Name)
		fmt.Fprintf(&builder, "Monthly savings:     %s\n", formatter.Currency(result.MonthlySavings))
		if result.Valid && result.BreakEvenMonths != nil {
			fmt.Fprintf(&builder, "Breaks even after:   %s (%.2f months)\n",
				format.BreakEvenDuration(*result.BreakEvenMonths), *result.BreakEvenMonths)
		} else {
			builder.WriteString("Never breaks even\n")
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(conf *config.Configuration) {
	fmt.Print(CsvString(conf))
}

// CsvString returns every loan schedule in comma-separated value format.
// Amounts are plain machine-readable numbers, not locale formatted.
func CsvString(conf *config.Configuration) string {
	var builder strings.Builder

	builder.WriteString(`"loan","payment","date","interest","principal","balance"`)
	builder.WriteString("\n")

	for _, loan := range conf.Loans {
		if loan.Result == nil {
			continue
		}
		for _, record := range loan.Result.Schedule {
			fmt.Fprintf(&builder, `"%s","%d","%s","%.2f","%.2f","%.2f"`,
				loan.Name,
				record.Number,
				record.Date.Format(config.DateTimeLayout),
				record.InterestPaid,
				record.PrincipalPaid,
				record.RemainingBalance,
			)
			builder.WriteString("\n")
		}
	}

	return builder.String()
}
