// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/fintools/loancalc/pkg/constants"
	"github.com/fintools/loancalc/pkg/datetime"
	"github.com/fintools/loancalc/pkg/format"
	"github.com/fintools/loancalc/pkg/loans"
)

// Thresholds beyond which inputs are suspicious but still computable.
// Validation warns; it never blocks a calculation.
const (
	maxReasonableRatePercent = 25.0
	maxReasonableTermYears   = 50.0
	maxReasonablePrincipal   = 100000000.0
)

// ValidateLoanTerm warns when a loan term is unusually long, including the
// maturity month when a start date is available.
func ValidateLoanTerm(loanName, startDate string, termYears float64) (string, error) {
	if termYears <= maxReasonableTermYears {
		return "", nil
	}

	if startDate == "" {
		return fmt.Sprintf("Loan '%s' has a %.0f year term - verify the term is expressed in years",
			loanName, termYears), nil
	}

	maturityDate, err := datetime.OffsetDate(startDate, datetime.DateTimeLayout, int(termYears*constants.MonthsPerYear))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Loan '%s' has a %.0f year term maturing %s - verify the term is expressed in years",
		loanName, termYears, maturityDate), nil
}

// ValidateInterestRate warns when an annual rate looks implausibly high.
func ValidateInterestRate(loanName string, annualRatePercent float64) string {
	if annualRatePercent > maxReasonableRatePercent {
		return fmt.Sprintf("Loan '%s' has an annual rate of %.2f%% - double-check the percentage",
			loanName, annualRatePercent)
	}
	return ""
}

// ValidatePrincipal warns when a principal exceeds any plausible loan size.
func ValidatePrincipal(loanName string, principal float64) string {
	if principal > maxReasonablePrincipal {
		return fmt.Sprintf("Loan '%s' principal %.2f exceeds %.2f - verify the amount",
			loanName, principal, maxReasonablePrincipal)
	}
	return ""
}

// ValidateExtraPayment warns when the extra payment meets or exceeds the
// standard payment, which usually means the two fields were swapped.
func ValidateExtraPayment(loanName string, extraPayment, monthlyPayment float64) string {
	if extraPayment > 0 && monthlyPayment > 0 && extraPayment >= monthlyPayment {
		return fmt.Sprintf("Loan '%s' extra payment %.2f meets or exceeds the standard payment %.2f - verify the fields",
			loanName, extraPayment, monthlyPayment)
	}
	return ""
}

// ValidateDisplay warns when the display configuration cannot build a
// formatter.
func ValidateDisplay(locale, currency string) string {
	_, err := format.NewFormatter(format.Config{Locale: locale, Currency: currency})
	if err != nil {
		return fmt.Sprintf("Display configuration is unusable (%v) - output will fall back to %s/%s",
			err, constants.DefaultLocale, constants.DefaultCurrency)
	}
	return ""
}

// ConfigValidator performs comprehensive configuration validation.
type ConfigValidator struct {
	Display    DisplayConfig
	Loans      []LoanConfig
	Refinances []RefinanceConfig
}

type DisplayConfig struct {
	Locale   string
	Currency string
}

type LoanConfig struct {
	Name                string
	Principal           float64
	AnnualInterestRate  float64
	TermYears           float64
	ExtraMonthlyPayment float64
	StartDate           string
}

type RefinanceConfig struct {
	Name            string
	OriginalPayment float64
	NewPayment      float64
	ClosingCosts    float64
}

// ValidateAll validates the entire configuration and returns warnings.
func (cv *ConfigValidator) ValidateAll() []string {
	var warnings []string

	if warning := ValidateDisplay(cv.Display.Locale, cv.Display.Currency); warning != "" {
		warnings = append(warnings, warning)
	}

	seen := make(map[string]bool)
	for _, loan := range cv.Loans {
		if seen[loan.Name] {
			warnings = append(warnings, fmt.Sprintf("Loan name '%s' is used more than once - refinance references resolve to the first match",
				loan.Name))
		}
		seen[loan.Name] = true

		if warning := ValidateInterestRate(loan.Name, loan.AnnualInterestRate); warning != "" {
			warnings = append(warnings, warning)
		}
		if warning := ValidatePrincipal(loan.Name, loan.Principal); warning != "" {
			warnings = append(warnings, warning)
		}
		warning, err := ValidateLoanTerm(loan.Name, loan.StartDate, loan.TermYears)
		if err == nil && warning != "" {
			warnings = append(warnings, warning)
		}

		monthlyPayment := loans.CalculateMonthlyPayment(loan.Principal, loan.AnnualInterestRate, loan.TermYears)
		if warning := ValidateExtraPayment(loan.Name, loan.ExtraMonthlyPayment, monthlyPayment); warning != "" {
			warnings = append(warnings, warning)
		}
	}

	for _, refinance := range cv.Refinances {
		if refinance.OriginalPayment > 0 && refinance.NewPayment >= refinance.OriginalPayment {
			warnings = append(warnings, fmt.Sprintf("Refinance '%s' does not reduce the monthly payment (%.2f -> %.2f) - it will never break even",
				refinance.Name, refinance.OriginalPayment, refinance.NewPayment))
		}
	}

	return warnings
}
