// Package loans implements fixed-rate loan amortization and refinance
// break-even analysis.
package loans

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fintools/loancalc/pkg/constants"
	"github.com/fintools/loancalc/pkg/datetime"
	"github.com/fintools/loancalc/pkg/mathutil"
	"go.uber.org/zap"
)

// ErrInvalidInput marks loan or refinance parameters rejected during
// up-front validation. Callers can test for it with errors.Is.
var ErrInvalidInput = errors.New("invalid input")

// LoanTerms describes a fixed-rate loan to be amortized.
type LoanTerms struct {
	Principal           float64   `json:"principal" yaml:"principal"`
	AnnualInterestRate  float64   `json:"annualInterestRate" yaml:"annualInterestRate"`
	TermYears           float64   `json:"termYears" yaml:"termYears"`
	ExtraMonthlyPayment float64   `json:"extraMonthlyPayment" yaml:"extraMonthlyPayment"`
	StartDate           time.Time `json:"startDate" yaml:"startDate"`
}

// PaymentRecord is one month of an amortization schedule. InterestPaid and
// PrincipalPaid are rounded to cents; RemainingBalance is the rounded
// balance carried into the next month.
type PaymentRecord struct {
	Number           int       `json:"number"`
	Date             time.Time `json:"date"`
	InterestPaid     float64   `json:"interestPaid"`
	PrincipalPaid    float64   `json:"principalPaid"`
	RemainingBalance float64   `json:"remainingBalance"`
}

// AmortizationResult is the outcome of simulating a loan to payoff.
type AmortizationResult struct {
	MonthlyPayment     float64         `json:"monthlyPayment"`
	MonthsToPayoff     int             `json:"monthsToPayoff"`
	TotalInterestPaid  float64         `json:"totalInterestPaid"`
	TotalInterestSaved float64         `json:"totalInterestSaved"`
	Capped             bool            `json:"capped"`
	Schedule           []PaymentRecord `json:"schedule"`
}

// CalculateMonthlyPayment computes the contractual monthly payment for a
// fixed-rate loan, rounded to cents. A zero rate divides the principal
// evenly across the term. Non-positive principal or term yields 0.
func CalculateMonthlyPayment(principal, annualInterestRate, termYears float64) float64 {
	if principal <= 0 || termYears <= 0 {
		return 0
	}
	periodicRate := annualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	return mathutil.Round(standardPayment(principal, periodicRate, termYears*constants.MonthsPerYear))
}

// standardPayment is the unrounded annuity payment. The schedule simulation
// runs on this value; only reported figures get rounded.
func standardPayment(principal, periodicRate, totalMonths float64) float64 {
	if periodicRate == 0 {
		return principal / totalMonths
	}
	power := math.Pow(1.00+periodicRate, totalMonths)
	discountFactor := (power - 1.00) / power
	return principal * periodicRate / discountFactor
}

// ScheduleGenerator simulates loans month by month to produce amortization
// schedules.
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator returns a ScheduleGenerator; a nil logger is
// replaced with a no-op logger.
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// GenerateSchedule runs the loan to payoff and returns the full monthly
// schedule along with payoff and interest totals.
//
// The running balance keeps full float precision between months; a one cent
// tolerance terminates the loop once the residue is below a payable amount.
// Schedule rows record interest, principal, and balance rounded to cents.
// The final month's overshoot is refunded against the interest total and
// the balance is settled at zero. A loan whose payment cannot cover
// interest is cut off at twice the contractual term and reported with
// Capped set.
func (g *ScheduleGenerator) GenerateSchedule(terms LoanTerms) (*AmortizationResult, error) {
	if err := terms.validate(); err != nil {
		return nil, err
	}

	totalMonths := terms.TermYears * constants.MonthsPerYear
	periodicRate := terms.AnnualInterestRate / (constants.PercentageMultiplier * constants.MonthsPerYear)
	payment := standardPayment(terms.Principal, periodicRate, totalMonths)

	// Baseline interest if the contractual payment ran the full term with no
	// extra payments; it is not itself simulated.
	baselineInterest := payment*totalMonths - terms.Principal

	start := terms.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	anchor := datetime.FirstOfMonth(start)

	capMonths := constants.SafetyCapMultiplier * totalMonths

	balance := terms.Principal
	totalInterest := 0.0
	month := 0
	schedule := make([]PaymentRecord, 0, int(totalMonths))

	for mathutil.IsPositive(balance) && float64(month) < capMonths {
		month++

		interest := balance * periodicRate
		totalInterest += interest

		principalPortion := payment - interest
		totalPrincipal := principalPortion + terms.ExtraMonthlyPayment
		balance -= totalPrincipal

		// The last payment usually overshoots; refund the overpayment from
		// the interest ledger and settle the balance at zero.
		if balance < 0 {
			totalInterest += balance
			if totalInterest < 0 {
				totalInterest = 0
			}
			balance = 0
		}

		schedule = append(schedule, PaymentRecord{
			Number:           month,
			Date:             anchor.AddDate(0, month, 0),
			InterestPaid:     mathutil.Round(interest),
			PrincipalPaid:    mathutil.Round(totalPrincipal),
			RemainingBalance: mathutil.Round(balance),
		})
	}

	capped := mathutil.IsPositive(balance)
	if capped {
		g.logger.Warn(fmt.Sprintf("schedule truncated at %d months with %.2f still outstanding", month, balance),
			zap.String("op", "loans.GenerateSchedule"),
		)
	}

	totalInterest = mathutil.Round(totalInterest)

	g.logger.Debug(fmt.Sprintf("amortized %.2f at %.3f%% over %d months", terms.Principal, terms.AnnualInterestRate, month),
		zap.String("op", "loans.GenerateSchedule"),
		zap.Float64("monthlyPayment", mathutil.Round(payment)),
		zap.Float64("totalInterest", totalInterest),
	)

	return &AmortizationResult{
		MonthlyPayment:     mathutil.Round(payment),
		MonthsToPayoff:     month,
		TotalInterestPaid:  totalInterest,
		TotalInterestSaved: mathutil.Round(math.Max(0, baselineInterest-totalInterest)),
		Capped:             capped,
		Schedule:           schedule,
	}, nil
}

func (t LoanTerms) validate() error {
	if t.Principal <= 0 {
		return fmt.Errorf("%w: principal must be positive, got %.2f", ErrInvalidInput, t.Principal)
	}
	if t.AnnualInterestRate < 0 {
		return fmt.Errorf("%w: annual interest rate cannot be negative, got %.2f", ErrInvalidInput, t.AnnualInterestRate)
	}
	if t.TermYears <= 0 {
		return fmt.Errorf("%w: term must be positive, got %.2f years", ErrInvalidInput, t.TermYears)
	}
	if t.ExtraMonthlyPayment < 0 {
		return fmt.Errorf("%w: extra monthly payment cannot be negative, got %.2f", ErrInvalidInput, t.ExtraMonthlyPayment)
	}
	return nil
}
