package loans

import (
	"fmt"

	"github.com/fintools/loancalc/pkg/mathutil"
	"go.uber.org/zap"
)

// RefinanceBreakEven reports whether a refinance recoups its closing costs
// and, if so, how long that takes.
type RefinanceBreakEven struct {
	// MonthlySavings is the original payment minus the new payment. It is
	// negative or zero when the refinance does not reduce the payment.
	MonthlySavings float64 `json:"monthlySavings"`
	// BreakEvenMonths is nil when the refinance never pays for itself.
	BreakEvenMonths *float64 `json:"breakEvenMonths"`
	// TotalSavingsOverRemainingTerm is reserved for a future comparison of
	// lifetime costs; it is never populated today.
	TotalSavingsOverRemainingTerm *float64 `json:"totalSavingsOverRemainingTerm"`
	Valid                         bool     `json:"valid"`
}

// RefinanceAnalyzer computes break-even points for refinance candidates.
type RefinanceAnalyzer struct {
	logger *zap.Logger
}

// NewRefinanceAnalyzer returns a RefinanceAnalyzer; a nil logger is
// replaced with a no-op logger.
func NewRefinanceAnalyzer(logger *zap.Logger) *RefinanceAnalyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RefinanceAnalyzer{logger: logger}
}

// BreakEven compares the current monthly payment against a refinanced one
// and reports how many months of savings cover the closing costs. When the
// new payment is not lower, the result carries the non-positive savings
// with Valid false and no break-even point.
func (a *RefinanceAnalyzer) BreakEven(originalPayment, newPayment, closingCosts float64) (*RefinanceBreakEven, error) {
	if originalPayment <= 0 {
		return nil, fmt.Errorf("%w: original monthly payment must be positive, got %.2f", ErrInvalidInput, originalPayment)
	}
	if newPayment < 0 {
		return nil, fmt.Errorf("%w: new monthly payment cannot be negative, got %.2f", ErrInvalidInput, newPayment)
	}
	if closingCosts < 0 {
		return nil, fmt.Errorf("%w: closing costs cannot be negative, got %.2f", ErrInvalidInput, closingCosts)
	}

	// A refinance that does not lower the payment carries its non-positive
	// savings through unrounded; there is no break-even point to round.
	savings := originalPayment - newPayment
	if savings <= 0 {
		a.logger.Debug(fmt.Sprintf("refinance does not lower the payment (%.2f -> %.2f)", originalPayment, newPayment),
			zap.String("op", "loans.BreakEven"),
		)
		return &RefinanceBreakEven{MonthlySavings: savings}, nil
	}

	months := mathutil.Round(closingCosts / savings)
	a.logger.Debug(fmt.Sprintf("refinance saves %.2f per month, breaks even after %.2f months", savings, months),
		zap.String("op", "loans.BreakEven"),
	)

	return &RefinanceBreakEven{
		MonthlySavings:  mathutil.Round(savings),
		BreakEvenMonths: &months,
		Valid:           true,
	}, nil
}
