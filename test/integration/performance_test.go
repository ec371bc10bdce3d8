package integration

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/fintools/loancalc/internal/config"
	"go.uber.org/zap"
)

// TestRunner is a simple test runner for debugging
func TestMain(m *testing.M) {
	// Run tests
	code := m.Run()
	os.Exit(code)
}

// TestBasicFunctionality tests basic functionality works
func TestBasicFunctionality(t *testing.T) {
	// Create a no-op logger to avoid debug output during testing
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}

	warnings := conf.ValidateConfiguration()
	if len(warnings) != 0 {
		t.Fatalf("ValidateConfiguration returned warnings: %v", warnings)
	}

	err = conf.ProcessLoans(logger)
	if err != nil {
		t.Fatalf("ProcessLoans failed: %v", err)
	}

	err = conf.ProcessRefinances(logger)
	if err != nil {
		t.Fatalf("ProcessRefinances failed: %v", err)
	}

	for _, loan := range conf.Loans {
		if loan.Result == nil {
			t.Fatalf("loan %s has no result", loan.Name)
		}
	}
	for _, refinance := range conf.Refinances {
		if refinance.Result == nil {
			t.Fatalf("refinance %s has no result", refinance.Name)
		}
	}

	t.Logf("Successfully processed %d loans and %d refinances", len(conf.Loans), len(conf.Refinances))
}

// TestPerformance tests performance characteristics
func TestPerformance(t *testing.T) {
	// Create a no-op logger to avoid debug output during testing
	logger := zap.NewNop()

	start := time.Now()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration failed: %v", err)
	}
	loadTime := time.Since(start)

	start = time.Now()
	warnings := conf.ValidateConfiguration()
	validateTime := time.Since(start)

	start = time.Now()
	err = conf.ProcessLoans(logger)
	if err != nil {
		t.Fatalf("ProcessLoans failed: %v", err)
	}
	loanTime := time.Since(start)

	start = time.Now()
	err = conf.ProcessRefinances(logger)
	if err != nil {
		t.Fatalf("ProcessRefinances failed: %v", err)
	}
	refinanceTime := time.Since(start)

	totalTime := loadTime + validateTime + loanTime + refinanceTime

	t.Logf("Performance metrics:")
	t.Logf("  Load config: %v", loadTime)
	t.Logf("  Validate config: %v", validateTime)
	t.Logf("  Process loans: %v", loanTime)
	t.Logf("  Process refinances: %v", refinanceTime)
	t.Logf("  Total time: %v", totalTime)

	// Performance expectations (adjust as needed)
	if totalTime > 10*time.Second {
		t.Errorf("Total processing time %v exceeds 10 second threshold", totalTime)
	}

	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %d", len(warnings))
	}
}

// TestMemoryUsage performs basic memory usage validation
func TestMemoryUsage(t *testing.T) {
	// Create a no-op logger to avoid debug output during testing
	logger := zap.NewNop()

	// Run multiple iterations to check for memory leaks
	for i := 0; i < 10; i++ {
		conf, err := config.LoadConfiguration("../test_config.yaml")
		if err != nil {
			t.Fatalf("LoadConfiguration failed on iteration %d: %v", i, err)
		}

		err = conf.ProcessLoans(logger)
		if err != nil {
			t.Fatalf("ProcessLoans failed on iteration %d: %v", i, err)
		}

		err = conf.ProcessRefinances(logger)
		if err != nil {
			t.Fatalf("ProcessRefinances failed on iteration %d: %v", i, err)
		}
	}

	t.Log("Successfully completed 10 iterations without memory issues")
}

// TestLargeConfigurationPerformance processes many long loans at once.
func TestLargeConfigurationPerformance(t *testing.T) {
	// Create a no-op logger to avoid debug output during testing
	logger := zap.NewNop()

	conf := &config.Configuration{}
	for i := 0; i < 200; i++ {
		conf.Loans = append(conf.Loans, config.Loan{
			Name:         fmt.Sprintf("loan-%03d", i),
			Principal:    50000 + float64(i)*1000,
			InterestRate: 3.0 + float64(i%8)*0.5,
			Term:         30,
			StartDate:    "2025-01",
		})
	}

	start := time.Now()
	err := conf.ProcessLoans(logger)
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("ProcessLoans failed: %v", err)
	}

	t.Logf("Processed %d loans in %v", len(conf.Loans), elapsed)

	// Performance expectations (adjust as needed)
	if elapsed > 10*time.Second {
		t.Errorf("Processing time %v exceeds 10 second threshold", elapsed)
	}

	for _, loan := range conf.Loans {
		if loan.Result == nil {
			t.Fatalf("loan %s has no result", loan.Name)
		}
		if loan.Result.Capped {
			t.Errorf("loan %s unexpectedly capped", loan.Name)
		}
		if loan.Result.MonthsToPayoff != 360 {
			t.Errorf("loan %s paid off in %d months, expected 360", loan.Name, loan.Result.MonthsToPayoff)
		}
	}
}
