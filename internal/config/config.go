// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"

	"github.com/fintools/loancalc/pkg/constants"
	"github.com/fintools/loancalc/pkg/format"
	"github.com/fintools/loancalc/pkg/validation"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files and is also the
// output date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for loancalc.
type Configuration struct {
	Logging    LoggingConfig `yaml:"logging,omitempty"`
	Output     OutputConfig  `yaml:"output,omitempty"`
	Display    format.Config `yaml:"display,omitempty"`
	Loans      []Loan        `yaml:"loans,omitempty"`
	Refinances []Refinance   `yaml:"refinances,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format       string `yaml:"format,omitempty"`       // pretty, csv
	ShowSchedule bool   `yaml:"showSchedule,omitempty"` // print full schedules in pretty output
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()

	return &configuration, nil
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from an
// in-memory source such as an uploaded file.
func LoadConfigurationFromReader(reader io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(reader); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()

	return &configuration, nil
}

func (c *Configuration) applyDefaults() {
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
	if c.Display.Locale == "" {
		c.Display.Locale = constants.DefaultLocale
	}
	if c.Display.Currency == "" {
		c.Display.Currency = constants.DefaultCurrency
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	validator := &validation.ConfigValidator{
		Display: validation.DisplayConfig{
			Locale:   c.Display.Locale,
			Currency: c.Display.Currency,
		},
	}

	for _, loan := range c.Loans {
		validator.Loans = append(validator.Loans, validation.LoanConfig{
			Name:                loan.Name,
			Principal:           loan.Principal,
			AnnualInterestRate:  loan.InterestRate,
			TermYears:           loan.Term,
			ExtraMonthlyPayment: loan.ExtraMonthlyPayment,
			StartDate:           loan.StartDate,
		})
	}

	for _, refinance := range c.Refinances {
		originalPayment, newPayment, err := c.resolvePayments(refinance)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("Refinance '%s' cannot be resolved (%v) - it will fail processing",
				refinance.Name, err))
			continue
		}
		validator.Refinances = append(validator.Refinances, validation.RefinanceConfig{
			Name:            refinance.Name,
			OriginalPayment: originalPayment,
			NewPayment:      newPayment,
			ClosingCosts:    refinance.ClosingCosts,
		})
	}

	return append(warnings, validator.ValidateAll()...)
}
