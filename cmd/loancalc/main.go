package main

import (
	"flag"
	"fmt"

	"github.com/fintools/loancalc/internal/config"
	"github.com/fintools/loancalc/internal/logging"
	"github.com/fintools/loancalc/pkg/constants"
	"github.com/fintools/loancalc/pkg/format"
	"github.com/fintools/loancalc/pkg/output"
	"github.com/fintools/loancalc/pkg/validation"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		return
	}

	// Initialize logging based on config and CLI override
	logger, err := logging.BuildLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Determine output format (CLI override takes precedence over config)
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}

	err = validation.ValidateOutputFormat(outputFormat)
	if err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	// Produce the amortization schedules for all loans.
	err = conf.ProcessLoans(logger)
	if err != nil {
		logger.Fatal("failed to process loan amortization schedules",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// Compute break-even analyses for all refinance candidates.
	err = conf.ProcessRefinances(logger)
	if err != nil {
		logger.Fatal("failed to process refinance analyses",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	// An unusable display configuration was already warned about; fall back
	// to the defaults.
	formatter, err := format.NewFormatter(conf.Display)
	if err != nil {
		formatter, err = format.NewFormatter(format.DefaultConfig())
		if err != nil {
			logger.Fatal("failed to build display formatter",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}

	// Handle output.
	switch outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(conf, formatter)
	case constants.OutputFormatCSV:
		output.CsvFormat(conf)
	}
}
