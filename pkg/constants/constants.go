// Package constants provides shared constants for the loancalc application.
package constants

// DateTimeLayout is the month format accepted in config files and API
// payloads and is also the output date format for schedule rows.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// SafetyCapMultiplier bounds the simulated months at this multiple of the
	// loan term; a schedule that reaches the bound is truncated, not an error.
	SafetyCapMultiplier = 2

	// DaysPerMonth is the nominal month length used only when rendering a
	// sub-month break-even duration as days.
	DaysPerMonth = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Display defaults
const (
	// DefaultLocale is the display locale assumed when none is configured
	DefaultLocale = "en-US"

	// DefaultCurrency is the display currency assumed when none is configured
	DefaultCurrency = "USD"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum size for JSON request
	// bodies (256 KB)
	DefaultMaxRequestSizeBytes int64 = 256 * 1024
)
