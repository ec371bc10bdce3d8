// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"time"

	"github.com/fintools/loancalc/pkg/loans"
	"go.uber.org/zap"
)

// Loan indicates a loan and its parameters.
type Loan struct {
	Name                string
	Principal           float64
	InterestRate        float64 // annual percent
	Term                float64 // years
	ExtraMonthlyPayment float64
	StartDate           string
	Result              *loans.AmortizationResult
}

// Refinance describes a refinance candidate. The current payment comes
// either from a configured loan referenced by name or from an explicit
// originalPayment; the replacement payment comes from explicit new-loan
// terms or an explicit newPayment.
type Refinance struct {
	Name            string
	Loan            string // name of a configured loan
	OriginalPayment float64
	NewPayment      float64
	NewPrincipal    float64
	NewInterestRate float64 // annual percent
	NewTerm         float64 // years
	ClosingCosts    float64
	Result          *loans.RefinanceBreakEven
}

// Terms converts the configured loan into engine terms.
func (loan *Loan) Terms() (loans.LoanTerms, error) {
	terms := loans.LoanTerms{
		Principal:           loan.Principal,
		AnnualInterestRate:  loan.InterestRate,
		TermYears:           loan.Term,
		ExtraMonthlyPayment: loan.ExtraMonthlyPayment,
	}

	if loan.StartDate != "" {
		startDate, err := time.Parse(DateTimeLayout, loan.StartDate)
		if err != nil {
			return loans.LoanTerms{}, fmt.Errorf("loan %s: parse start date %q: %w", loan.Name, loan.StartDate, err)
		}
		terms.StartDate = startDate
	}

	return terms, nil
}

// ProcessLoans iterates through all loans and produces the amortization
// schedules.
func (conf *Configuration) ProcessLoans(logger *zap.Logger) error {
	generator := loans.NewScheduleGenerator(logger)

	for i := range conf.Loans {
		terms, err := conf.Loans[i].Terms()
		if err != nil {
			return err
		}

		result, err := generator.GenerateSchedule(terms)
		if err != nil {
			return fmt.Errorf("loan %s: %w", conf.Loans[i].Name, err)
		}
		conf.Loans[i].Result = result
	}

	return nil
}

// ProcessRefinances iterates through all refinance candidates and computes
// their break-even analyses. Loans referenced by name must appear in the
// configuration.
func (conf *Configuration) ProcessRefinances(logger *zap.Logger) error {
	analyzer := loans.NewRefinanceAnalyzer(logger)

	for i := range conf.Refinances {
		originalPayment, newPayment, err := conf.resolvePayments(conf.Refinances[i])
		if err != nil {
			return err
		}

		result, err := analyzer.BreakEven(originalPayment, newPayment, conf.Refinances[i].ClosingCosts)
		if err != nil {
			return fmt.Errorf("refinance %s: %w", conf.Refinances[i].Name, err)
		}
		conf.Refinances[i].Result = result
	}

	return nil
}

// resolvePayments determines the original and new monthly payments for a
// refinance, preferring explicit payments over derived ones.
func (conf *Configuration) resolvePayments(refinance Refinance) (float64, float64, error) {
	originalPayment := refinance.OriginalPayment
	if originalPayment == 0 && refinance.Loan != "" {
		loan := conf.findLoan(refinance.Loan)
		if loan == nil {
			return 0, 0, fmt.Errorf("refinance %s references unknown loan %q", refinance.Name, refinance.Loan)
		}
		originalPayment = loans.CalculateMonthlyPayment(loan.Principal, loan.InterestRate, loan.Term)
	}

	newPayment := refinance.NewPayment
	if newPayment == 0 && refinance.NewPrincipal > 0 {
		newPayment = loans.CalculateMonthlyPayment(refinance.NewPrincipal, refinance.NewInterestRate, refinance.NewTerm)
	}

	return originalPayment, newPayment, nil
}

func (conf *Configuration) findLoan(name string) *Loan {
	for i := range conf.Loans {
		if conf.Loans[i].Name == name {
			return &conf.Loans[i]
		}
	}
	return nil
}
