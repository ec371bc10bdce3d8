// Package server exposes the loan calculators over HTTP and serves the
// embedded web UI.
package server

import (
	"bytes"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/fintools/loancalc/internal/cache"
	"github.com/fintools/loancalc/internal/config"
	"github.com/fintools/loancalc/pkg/constants"
	"github.com/fintools/loancalc/pkg/format"
	"github.com/fintools/loancalc/pkg/loans"
	"github.com/fintools/loancalc/pkg/output"
	"github.com/fintools/loancalc/pkg/validation"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

type handler struct {
	logger         *zap.Logger
	maxRequestSize int64
	version        string
	cache          cache.Cache
}

// NewHandler constructs the HTTP handler that serves the web UI and the
// calculation API. A nil responseCache disables caching.
func NewHandler(logger *zap.Logger, maxRequestSize int64, version string, responseCache cache.Cache) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxRequestSize <= 0 {
		maxRequestSize = constants.DefaultMaxRequestSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:         logger,
		maxRequestSize: maxRequestSize,
		version:        trimmedVersion,
		cache:          responseCache,
	}

	mux := http.NewServeMux()

	// Calculation API endpoints (JSON)
	mux.HandleFunc("/api/amortize", h.handleAmortize)
	mux.HandleFunc("/api/refinance", h.handleRefinance)

	// Batch endpoint for uploaded configuration files
	mux.HandleFunc("/api/config", h.handleConfig)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/config/export", h.handleConfigExport)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type amortizeRequest struct {
	Name                string        `json:"name"`
	Principal           float64       `json:"principal"`
	AnnualInterestRate  float64       `json:"annualInterestRate"`
	TermYears           float64       `json:"termYears"`
	ExtraMonthlyPayment float64       `json:"extraMonthlyPayment"`
	StartDate           string        `json:"startDate"`
	Display             format.Config `json:"display"`
}

type amortizeResponse struct {
	MonthlyPayment     float64               `json:"monthlyPayment"`
	MonthsToPayoff     int                   `json:"monthsToPayoff"`
	TotalInterestPaid  float64               `json:"totalInterestPaid"`
	TotalInterestSaved float64               `json:"totalInterestSaved"`
	Capped             bool                  `json:"capped"`
	Schedule           []scheduleRow         `json:"schedule"`
	Formatted          formattedAmortization `json:"formatted"`
	Warnings           []string              `json:"warnings,omitempty"`
	Duration           string                `json:"duration"`
}

type scheduleRow struct {
	Number           int     `json:"number"`
	Date             string  `json:"date"`
	InterestPaid     float64 `json:"interestPaid"`
	PrincipalPaid    float64 `json:"principalPaid"`
	RemainingBalance float64 `json:"remainingBalance"`
}

type formattedAmortization struct {
	MonthlyPayment     string `json:"monthlyPayment"`
	TotalInterestPaid  string `json:"totalInterestPaid"`
	TotalInterestSaved string `json:"totalInterestSaved"`
	PayoffTime         string `json:"payoffTime"`
}

type refinanceRequest struct {
	Name            string        `json:"name"`
	OriginalPayment float64       `json:"originalPayment"`
	NewPayment      float64       `json:"newPayment"`
	ClosingCosts    float64       `json:"closingCosts"`
	Display         format.Config `json:"display"`
}

type refinanceResponse struct {
	MonthlySavings                float64            `json:"monthlySavings"`
	BreakEvenMonths               *float64           `json:"breakEvenMonths"`
	TotalSavingsOverRemainingTerm *float64           `json:"totalSavingsOverRemainingTerm"`
	Valid                         bool               `json:"valid"`
	Formatted                     formattedRefinance `json:"formatted"`
	Warnings                      []string           `json:"warnings,omitempty"`
	Duration                      string             `json:"duration"`
}

type formattedRefinance struct {
	MonthlySavings string `json:"monthlySavings"`
	BreakEvenTime  string `json:"breakEvenTime,omitempty"`
}

type configResponse struct {
	Loans      []loanSummary          `json:"loans"`
	Refinances []refinanceSummary     `json:"refinances"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

type loanSummary struct {
	Name               string                `json:"name"`
	MonthlyPayment     float64               `json:"monthlyPayment"`
	MonthsToPayoff     int                   `json:"monthsToPayoff"`
	TotalInterestPaid  float64               `json:"totalInterestPaid"`
	TotalInterestSaved float64               `json:"totalInterestSaved"`
	Capped             bool                  `json:"capped"`
	Formatted          formattedAmortization `json:"formatted"`
}

type refinanceSummary struct {
	Name            string             `json:"name"`
	MonthlySavings  float64            `json:"monthlySavings"`
	BreakEvenMonths *float64           `json:"breakEvenMonths"`
	Valid           bool               `json:"valid"`
	Formatted       formattedRefinance `json:"formatted"`
}

func (h *handler) handleAmortize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	op := "server.handleAmortize"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	// Identical requests yield identical schedules, so the serialized
	// response can be replayed from the cache.
	cacheKey := requestCacheKey("amortize", body)
	if h.cache != nil {
		if cached, hit := h.cache.Get(r.Context(), cacheKey); hit {
			h.logger.Debug(fmt.Sprintf("cache hit for %s", cacheKey),
				zap.String("op", op),
			)
			h.writeJSONString(w, http.StatusOK, cached)
			return
		}
	}

	var req amortizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	terms := loans.LoanTerms{
		Principal:           req.Principal,
		AnnualInterestRate:  req.AnnualInterestRate,
		TermYears:           req.TermYears,
		ExtraMonthlyPayment: req.ExtraMonthlyPayment,
	}
	if req.StartDate != "" {
		startDate, err := time.Parse(constants.DateTimeLayout, req.StartDate)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest,
				fmt.Sprintf("invalid start date %q: expected YYYY-MM", req.StartDate), op)
			return
		}
		terms.StartDate = startDate
	}

	generator := loans.NewScheduleGenerator(h.logger)
	result, err := generator.GenerateSchedule(terms)
	if err != nil {
		if errors.Is(err, loans.ErrInvalidInput) {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to amortize loan: %v", err), op)
		return
	}

	formatter, err := format.NewFormatter(req.Display)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid display settings: %v", err), op)
		return
	}

	validator := &validation.ConfigValidator{
		Display: validation.DisplayConfig{Locale: req.Display.Locale, Currency: req.Display.Currency},
		Loans: []validation.LoanConfig{{
			Name:                requestName(req.Name, "loan"),
			Principal:           req.Principal,
			AnnualInterestRate:  req.AnnualInterestRate,
			TermYears:           req.TermYears,
			ExtraMonthlyPayment: req.ExtraMonthlyPayment,
			StartDate:           req.StartDate,
		}},
	}
	warnings := validator.ValidateAll()

	elapsed := time.Since(start)
	response := buildAmortizeResponse(result, formatter, warnings, elapsed)

	h.logger.Info(fmt.Sprintf("amortized %.2f over %d months", req.Principal, result.MonthsToPayoff),
		zap.String("op", op),
		zap.Duration("duration", elapsed),
	)

	h.respondCached(w, r, cacheKey, op, response)
}

func (h *handler) handleRefinance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	op := "server.handleRefinance"

	body, ok := h.readBody(w, r, op)
	if !ok {
		return
	}

	var req refinanceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	analyzer := loans.NewRefinanceAnalyzer(h.logger)
	result, err := analyzer.BreakEven(req.OriginalPayment, req.NewPayment, req.ClosingCosts)
	if err != nil {
		if errors.Is(err, loans.ErrInvalidInput) {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to analyze refinance: %v", err), op)
		return
	}

	formatter, err := format.NewFormatter(req.Display)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("invalid display settings: %v", err), op)
		return
	}

	validator := &validation.ConfigValidator{
		Display: validation.DisplayConfig{Locale: req.Display.Locale, Currency: req.Display.Currency},
		Refinances: []validation.RefinanceConfig{{
			Name:            requestName(req.Name, "refinance"),
			OriginalPayment: req.OriginalPayment,
			NewPayment:      req.NewPayment,
			ClosingCosts:    req.ClosingCosts,
		}},
	}
	warnings := validator.ValidateAll()

	elapsed := time.Since(start)
	response := refinanceResponse{
		MonthlySavings:                result.MonthlySavings,
		BreakEvenMonths:               result.BreakEvenMonths,
		TotalSavingsOverRemainingTerm: result.TotalSavingsOverRemainingTerm,
		Valid:                         result.Valid,
		Formatted:                     buildFormattedRefinance(result, formatter),
		Warnings:                      warnings,
		Duration:                      elapsed.String(),
	}

	h.logger.Info(fmt.Sprintf("analyzed refinance with savings %.2f", result.MonthlySavings),
		zap.String("op", op),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	op := "server.handleConfig"

	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}
	if err := r.ParseMultipartForm(h.maxRequestSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxRequestSize), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("error reading config data, %v", err), op)
		return
	}

	h.runCalculations(w, configBytes, configMap, start, op)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "display"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runCalculations(w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()

	if err := cfg.ProcessLoans(h.logger); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to process loans: %v", err), op)
		return
	}

	if err := cfg.ProcessRefinances(h.logger); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to process refinances: %v", err), op)
		return
	}

	// An unusable display configuration already produced a warning; fall
	// back to the defaults rather than failing the whole upload.
	formatter, err := format.NewFormatter(cfg.Display)
	if err != nil {
		formatter, err = format.NewFormatter(format.DefaultConfig())
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build formatter: %v", err), op)
			return
		}
	}

	elapsed := time.Since(start)

	if configMap == nil {
		configMap = make(map[string]interface{})
	}

	response := configResponse{
		Loans:      buildLoanSummaries(cfg, formatter),
		Refinances: buildRefinanceSummaries(cfg, formatter),
		CSV:        output.CsvString(cfg),
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	h.logger.Info("configuration processed",
		zap.String("op", op),
		zap.Int("loans", len(response.Loans)),
		zap.Int("refinances", len(response.Refinances)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func buildAmortizeResponse(result *loans.AmortizationResult, formatter *format.Formatter, warnings []string, elapsed time.Duration) amortizeResponse {
	return amortizeResponse{
		MonthlyPayment:     result.MonthlyPayment,
		MonthsToPayoff:     result.MonthsToPayoff,
		TotalInterestPaid:  result.TotalInterestPaid,
		TotalInterestSaved: result.TotalInterestSaved,
		Capped:             result.Capped,
		Schedule:           buildScheduleRows(result.Schedule),
		Formatted:          buildFormattedAmortization(result, formatter),
		Warnings:           warnings,
		Duration:           elapsed.String(),
	}
}

func buildScheduleRows(schedule []loans.PaymentRecord) []scheduleRow {
	rows := make([]scheduleRow, 0, len(schedule))
	for _, record := range schedule {
		rows = append(rows, scheduleRow{
			Number:           record.Number,
			Date:             record.Date.Format(constants.DateTimeLayout),
			InterestPaid:     record.InterestPaid,
			PrincipalPaid:    record.PrincipalPaid,
			RemainingBalance: record.RemainingBalance,
		})
	}
	return rows
}

func buildFormattedAmortization(result *loans.AmortizationResult, formatter *format.Formatter) formattedAmortization {
	return formattedAmortization{
		MonthlyPayment:     formatter.Currency(result.MonthlyPayment),
		TotalInterestPaid:  formatter.Currency(result.TotalInterestPaid),
		TotalInterestSaved: formatter.Currency(result.TotalInterestSaved),
		PayoffTime:         format.Months(result.MonthsToPayoff),
	}
}

func buildFormattedRefinance(result *loans.RefinanceBreakEven, formatter *format.Formatter) formattedRefinance {
	formatted := formattedRefinance{
		MonthlySavings: formatter.Currency(result.MonthlySavings),
	}
	if result.Valid && result.BreakEvenMonths != nil {
		formatted.BreakEvenTime = format.BreakEvenDuration(*result.BreakEvenMonths)
	}
	return formatted
}

func buildLoanSummaries(cfg *config.Configuration, formatter *format.Formatter) []loanSummary {
	summaries := make([]loanSummary, 0, len(cfg.Loans))
	for _, loan := range cfg.Loans {
		if loan.Result == nil {
			continue
		}
		summaries = append(summaries, loanSummary{
			Name:               loan.Name,
			MonthlyPayment:     loan.Result.MonthlyPayment,
			MonthsToPayoff:     loan.Result.MonthsToPayoff,
			TotalInterestPaid:  loan.Result.TotalInterestPaid,
			TotalInterestSaved: loan.Result.TotalInterestSaved,
			Capped:             loan.Result.Capped,
			Formatted:          buildFormattedAmortization(loan.Result, formatter),
		})
	}
	return summaries
}

func buildRefinanceSummaries(cfg *config.Configuration, formatter *format.Formatter) []refinanceSummary {
	summaries := make([]refinanceSummary, 0, len(cfg.Refinances))
	for _, refinance := range cfg.Refinances {
		if refinance.Result == nil {
			continue
		}
		summaries = append(summaries, refinanceSummary{
			Name:            refinance.Name,
			MonthlySavings:  refinance.Result.MonthlySavings,
			BreakEvenMonths: refinance.Result.BreakEvenMonths,
			Valid:           refinance.Result.Valid,
			Formatted:       buildFormattedRefinance(refinance.Result, formatter),
		})
	}
	return summaries
}

// readBody drains a JSON request body under the configured size limit.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request, op string) ([]byte, bool) {
	if h.maxRequestSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxRequestSize)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxRequestSize), op)
			return nil, false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to read request: %v", err), op)
		return nil, false
	}
	return body, true
}

// respondCached serializes the response once so the same bytes can be
// stored and replayed for identical requests.
func (h *handler) respondCached(w http.ResponseWriter, r *http.Request, cacheKey, op string, response interface{}) {
	payload, err := json.Marshal(response)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to encode response: %v", err), op)
		return
	}

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, string(payload)); err != nil {
			h.logger.Warn("failed to store cached response",
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}

	h.writeJSONString(w, http.StatusOK, string(payload))
}

func requestCacheKey(prefix string, body []byte) string {
	sum := sha256.Sum256(body)
	return prefix + ":" + hex.EncodeToString(sum[:])
}

func requestName(name, fallback string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("calculation request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *handler) writeJSONString(w http.ResponseWriter, status int, payload string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
