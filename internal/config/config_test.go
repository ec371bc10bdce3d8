package config

import (
	"math"
	"strings"
	"testing"

	"github.com/fintools/loancalc/pkg/format"
	"go.uber.org/zap"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Test config file",
			configPath: "../../test/test_config.yaml",
			wantError:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationStructure(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected logging level debug, got %v", config.Logging.Level)
	}
	if config.Output.Format != "csv" {
		t.Errorf("Expected output format csv, got %v", config.Output.Format)
	}
	if !config.Output.ShowSchedule {
		t.Errorf("Expected showSchedule to be true")
	}
	if config.Display.Locale != "de-DE" {
		t.Errorf("Expected display locale de-DE, got %v", config.Display.Locale)
	}
	if config.Display.Currency != "EUR" {
		t.Errorf("Expected display currency EUR, got %v", config.Display.Currency)
	}

	expectedLoans := []string{"house", "car"}
	if len(config.Loans) != len(expectedLoans) {
		t.Fatalf("Expected %d loans, got %d", len(expectedLoans), len(config.Loans))
	}
	for i, expectedName := range expectedLoans {
		if config.Loans[i].Name != expectedName {
			t.Errorf("Expected loan name %s, got %s", expectedName, config.Loans[i].Name)
		}
	}

	if config.Loans[0].Principal != 300000.00 {
		t.Errorf("Expected principal 300000.00, got %v", config.Loans[0].Principal)
	}
	if config.Loans[0].StartDate != "2025-01" {
		t.Errorf("Expected start date 2025-01, got %v", config.Loans[0].StartDate)
	}
	if config.Loans[1].ExtraMonthlyPayment != 100.00 {
		t.Errorf("Expected extra payment 100.00, got %v", config.Loans[1].ExtraMonthlyPayment)
	}

	if len(config.Refinances) != 2 {
		t.Fatalf("Expected 2 refinances, got %d", len(config.Refinances))
	}
	if config.Refinances[0].Loan != "house" {
		t.Errorf("Expected refinance to reference loan house, got %v", config.Refinances[0].Loan)
	}
	if config.Refinances[1].OriginalPayment != 2000.00 {
		t.Errorf("Expected explicit original payment 2000.00, got %v", config.Refinances[1].OriginalPayment)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	data := `
loans:
  - name: cabin
    principal: 150000
    interestRate: 5.5
    term: 15
`
	config, err := LoadConfigurationFromReader(strings.NewReader(data))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if len(config.Loans) != 1 || config.Loans[0].Name != "cabin" {
		t.Fatalf("Expected a single cabin loan, got %+v", config.Loans)
	}

	// Defaults fill in whatever the source omits.
	if config.Output.Format != "pretty" {
		t.Errorf("Expected default output format pretty, got %v", config.Output.Format)
	}
	if config.Display.Locale != "en-US" {
		t.Errorf("Expected default locale en-US, got %v", config.Display.Locale)
	}
	if config.Display.Currency != "USD" {
		t.Errorf("Expected default currency USD, got %v", config.Display.Currency)
	}
}

func TestLoadConfigurationFromReaderMalformed(t *testing.T) {
	if _, err := LoadConfigurationFromReader(strings.NewReader("loans: [")); err == nil {
		t.Error("LoadConfigurationFromReader() expected error but got none")
	}
}

func TestProcessLoans(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if err := config.ProcessLoans(zap.NewNop()); err != nil {
		t.Fatalf("ProcessLoans() error = %v", err)
	}

	house := config.Loans[0].Result
	if house == nil {
		t.Fatal("Expected house loan result to be populated")
	}
	if math.Abs(house.MonthlyPayment-1798.65) > 0.01 {
		t.Errorf("Expected house payment 1798.65, got %.2f", house.MonthlyPayment)
	}
	if house.MonthsToPayoff != 360 {
		t.Errorf("Expected house payoff in 360 months, got %d", house.MonthsToPayoff)
	}

	car := config.Loans[1].Result
	if car == nil {
		t.Fatal("Expected car loan result to be populated")
	}
	if car.MonthsToPayoff >= 60 || car.MonthsToPayoff < 45 {
		t.Errorf("Expected accelerated car payoff between 45 and 59 months, got %d", car.MonthsToPayoff)
	}
	if car.TotalInterestSaved <= 0 {
		t.Errorf("Expected car extra payments to save interest, got %.2f", car.TotalInterestSaved)
	}
}

func TestProcessLoansBadStartDate(t *testing.T) {
	config := &Configuration{
		Loans: []Loan{
			{
				Name:         "house",
				Principal:    300000,
				InterestRate: 6.0,
				Term:         30,
				StartDate:    "January 2025",
			},
		},
	}

	if err := config.ProcessLoans(zap.NewNop()); err == nil {
		t.Error("ProcessLoans() expected error but got none")
	}
}

func TestProcessRefinances(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if err := config.ProcessRefinances(zap.NewNop()); err != nil {
		t.Fatalf("ProcessRefinances() error = %v", err)
	}

	derived := config.Refinances[0].Result
	if derived == nil {
		t.Fatal("Expected derived refinance result to be populated")
	}
	if !derived.Valid {
		t.Error("Expected derived refinance to be valid")
	}
	if math.Abs(derived.MonthlySavings-278.59) > 0.01 {
		t.Errorf("Expected monthly savings 278.59, got %.2f", derived.MonthlySavings)
	}
	if derived.BreakEvenMonths == nil {
		t.Fatal("Expected a break-even point")
	}
	if math.Abs(*derived.BreakEvenMonths-16.15) > 0.01 {
		t.Errorf("Expected break-even after 16.15 months, got %.2f", *derived.BreakEvenMonths)
	}

	explicit := config.Refinances[1].Result
	if explicit == nil {
		t.Fatal("Expected explicit refinance result to be populated")
	}
	if explicit.BreakEvenMonths == nil || math.Abs(*explicit.BreakEvenMonths-10.00) > 0.01 {
		t.Errorf("Expected break-even after 10.00 months, got %+v", explicit.BreakEvenMonths)
	}
}

func TestProcessRefinancesUnknownLoan(t *testing.T) {
	config := &Configuration{
		Refinances: []Refinance{
			{
				Name:         "mystery",
				Loan:         "boat",
				NewPayment:   500,
				ClosingCosts: 1000,
			},
		},
	}

	err := config.ProcessRefinances(zap.NewNop())
	if err == nil {
		t.Fatal("ProcessRefinances() expected error but got none")
	}
	if !strings.Contains(err.Error(), "unknown loan") {
		t.Errorf("Expected unknown loan error, got %v", err)
	}
}

func TestValidateConfiguration(t *testing.T) {
	config, err := LoadConfiguration("../../test/test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if warnings := config.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Expected no warnings for the test config, got %v", warnings)
	}
}

func TestValidateConfigurationWarnings(t *testing.T) {
	config := &Configuration{
		Display: format.Config{Locale: "en-US", Currency: "USD"},
		Loans: []Loan{
			{Name: "house", Principal: 300000, InterestRate: 45.0, Term: 30},
			{Name: "house", Principal: 50000, InterestRate: 5.0, Term: 5},
		},
		Refinances: []Refinance{
			{Name: "mystery", Loan: "boat", NewPayment: 500},
		},
	}

	warnings := config.ValidateConfiguration()
	if len(warnings) != 3 {
		t.Fatalf("Expected 3 warnings, got %d: %v", len(warnings), warnings)
	}

	expectations := []string{"45.00%", "more than once", "cannot be resolved"}
	for _, expected := range expectations {
		found := false
		for _, warning := range warnings {
			if strings.Contains(warning, expected) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected a warning mentioning %q in %v", expected, warnings)
		}
	}
}
