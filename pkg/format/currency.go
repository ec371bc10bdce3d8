// Package format renders calculation results for display: locale-grouped
// currency amounts and human-readable durations. Formatting never changes
// the numeric precision of the underlying results.
package format

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/fintools/loancalc/pkg/constants"
)

// Config selects the locale and currency used for display. It is passed
// explicitly to every formatting call site; there is no package-level
// locale state.
type Config struct {
	Locale   string `json:"locale" yaml:"locale"`
	Currency string `json:"currency" yaml:"currency"`
}

// DefaultConfig returns the en-US / USD display configuration.
func DefaultConfig() Config {
	return Config{
		Locale:   constants.DefaultLocale,
		Currency: constants.DefaultCurrency,
	}
}

// currencySymbols maps supported display currencies to their symbols.
// Amounts are never converted between currencies; this is symbol display
// only. Codes outside the map render with the code itself as the prefix.
var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"CAD": "CA$",
	"AUD": "A$",
	"INR": "₹",
}

// Formatter renders amounts for one locale and currency.
type Formatter struct {
	config  Config
	printer *message.Printer
	symbol  string
}

// NewFormatter builds a Formatter for the given display configuration.
// Empty fields fall back to the defaults; a malformed locale tag is an
// error.
func NewFormatter(config Config) (*Formatter, error) {
	if config.Locale == "" {
		config.Locale = constants.DefaultLocale
	}
	if config.Currency == "" {
		config.Currency = constants.DefaultCurrency
	}

	tag, err := language.Parse(config.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse locale %q: %w", config.Locale, err)
	}

	code := strings.ToUpper(config.Currency)
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}

	return &Formatter{
		config:  config,
		printer: message.NewPrinter(tag),
		symbol:  symbol,
	}, nil
}

// Config returns the display configuration the Formatter was built with.
func (f *Formatter) Config() Config {
	return f.config
}

// Currency returns an amount with the currency symbol and locale-grouped
// digits (e.g., "-$1,234.56").
func (f *Formatter) Currency(amount float64) string {
	formatted := f.printer.Sprintf("%.2f", math.Abs(amount))
	if amount < 0 {
		return "-" + f.symbol + formatted
	}
	return f.symbol + formatted
}

// Number returns an amount with locale grouping but no currency symbol
// (e.g., "-1,234.56").
func (f *Formatter) Number(amount float64) string {
	return f.printer.Sprintf("%.2f", amount)
}
