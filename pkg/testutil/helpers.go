// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/fintools/loancalc/internal/config"
)

// FindLoan finds a configured loan by name.
// Returns a pointer to the loan if found, nil otherwise.
func FindLoan(loans []config.Loan, name string) *config.Loan {
	for i := range loans {
		if loans[i].Name == name {
			return &loans[i]
		}
	}
	return nil
}

// FindRefinance finds a refinance candidate by name.
// Returns a pointer to the refinance if found, nil otherwise.
func FindRefinance(refinances []config.Refinance, name string) *config.Refinance {
	for i := range refinances {
		if refinances[i].Name == name {
			return &refinances[i]
		}
	}
	return nil
}
