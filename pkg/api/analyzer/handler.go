// Package analyzer exposes the analysis stages over HTTP. Each endpoint runs
// a slice of the pipeline on a report path (or raw text for classification)
// and returns the stage artifact as JSON. Handlers share package-level engine
// state wired once through InitHandler.
package analyzer

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"finanalyzer/pkg/core/classify"
	"finanalyzer/pkg/core/config"
	"finanalyzer/pkg/core/errs"
	"finanalyzer/pkg/core/extract"
	"finanalyzer/pkg/core/forecast"
	"finanalyzer/pkg/core/ingest"
	"finanalyzer/pkg/core/model"
	"finanalyzer/pkg/core/pipeline"
	"finanalyzer/pkg/models"
)

var (
	cfg          config.Config
	orchestrator *pipeline.Orchestrator
)

// InitHandler wires the package-level engine state for all endpoints.
func InitHandler(c config.Config) {
	cfg = c
	orchestrator = pipeline.New(c)
}

// SetOrchestrator swaps the advice-endpoint pipeline, used by tests to avoid
// live market and LLM calls.
func SetOrchestrator(o *pipeline.Orchestrator) {
	orchestrator = o
}

// --- Requests ---

type ClassifyRequest struct {
	Text string `json:"text,omitempty"`
	Path string `json:"path,omitempty"`
}

type ExtractRequest struct {
	Path       string `json:"path"`
	ApplyScale *bool  `json:"apply_scale,omitempty"` // default true
}

type ModelRequest struct {
	Path string `json:"path"`
}

// ForecastRequest reuses the config override shape, so the same field names
// work in the Hjson assumption files and the API body.
type ForecastRequest struct {
	Path        string                      `json:"path"`
	Years       int                         `json:"years,omitempty"`
	Scenario    string                      `json:"scenario,omitempty"`
	Assumptions *config.AssumptionOverrides `json:"assumptions,omitempty"`
}

type AdviceRequest struct {
	Path   string `json:"path"`
	Ticker string `json:"ticker,omitempty"`
}

// --- Responses ---

type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

type ExtractResponse struct {
	Statements     *models.FinancialStatements `json:"statements"`
	Classification classify.Result             `json:"classification"`
}

type ModelResponse struct {
	Model   *models.LinkedModel   `json:"model"`
	Summary *model.SummaryMetrics `json:"summary"`
}

type AdviceResponse struct {
	RunID   string              `json:"run_id"`
	Elapsed string              `json:"elapsed"`
	Model   *models.LinkedModel `json:"model"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// --- Handlers ---

// HandleStatus reports service liveness.
func HandleStatus(w http.ResponseWriter, r *http.Request) {
	if corsPreflight(w, r) {
		return
	}
	writeJSON(w, StatusResponse{
		Status:  "ok",
		Service: "financial-analyzer",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleClassify detects the accounting standard of raw text or a report
// file.
func HandleClassify(w http.ResponseWriter, r *http.Request) {
	if corsPreflight(w, r) || !requirePost(w, r) {
		return
	}

	var req ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.Validation("invalid JSON body", nil))
		return
	}

	text := req.Text
	if text == "" && req.Path != "" {
		doc, err := ingest.Load(req.Path)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		text = doc.FullText()
	}
	if text == "" {
		writeError(w, http.StatusBadRequest, errs.Validation("text or path is required", nil))
		return
	}

	writeJSON(w, classify.Classify(text))
}

// HandleExtract runs the statement extractor over a report file and returns
// the statements with the classified standard attached.
func HandleExtract(w http.ResponseWriter, r *http.Request) {
	if corsPreflight(w, r) || !requirePost(w, r) {
		return
	}

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.Validation("invalid JSON body", nil))
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, errs.Validation("path is required", nil))
		return
	}

	doc, err := ingest.Load(req.Path)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applyScale := req.ApplyScale == nil || *req.ApplyScale
	statements, classification := extractStatements(doc, applyScale)
	writeJSON(w, ExtractResponse{Statements: statements, Classification: classification})
}

// HandleBuildModel extracts a report and links it into a balanced model.
func HandleBuildModel(w http.ResponseWriter, r *http.Request) {
	if corsPreflight(w, r) || !requirePost(w, r) {
		return
	}

	var req ModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.Validation("invalid JSON body", nil))
		return
	}

	m, eng, err := buildModel(req.Path)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	summary, err := eng.SummaryMetrics()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, ModelResponse{Model: m, Summary: summary})
}

// HandleForecast builds the model and projects it under the requested
// horizon, scenario and driver overrides.
func HandleForecast(w http.ResponseWriter, r *http.Request) {
	if corsPreflight(w, r) || !requirePost(w, r) {
		return
	}

	var req ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.Validation("invalid JSON body", nil))
		return
	}

	scenario := models.Scenario(strings.ToLower(strings.TrimSpace(req.Scenario)))
	switch scenario {
	case "", models.ScenarioBase, models.ScenarioBull, models.ScenarioBear:
	default:
		writeError(w, http.StatusBadRequest,
			errs.Validation("unknown scenario: "+req.Scenario, nil))
		return
	}

	m, _, err := buildModel(req.Path)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	engine := forecast.New(cfg, m)
	if req.Assumptions != nil {
		a := m.Assumptions
		req.Assumptions.Apply(&a)
		engine.SetAssumptions(a)
	}

	m, err = engine.Forecast(req.Years, scenario)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, m)
}

// HandleAdvice runs the full pipeline (market, sentiment, recommendation,
// commentary) and returns the finished model.
func HandleAdvice(w http.ResponseWriter, r *http.Request) {
	if corsPreflight(w, r) || !requirePost(w, r) {
		return
	}

	var req AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errs.Validation("invalid JSON body", nil))
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, errs.Validation("path is required", nil))
		return
	}
	if orchestrator == nil {
		writeError(w, http.StatusInternalServerError,
			errs.Validation("handler not initialized", nil))
		return
	}

	result, err := orchestrator.Run(r.Context(), req.Path, pipeline.Options{Ticker: req.Ticker})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, AdviceResponse{
		RunID:   result.RunID.String(),
		Elapsed: result.Elapsed.Round(time.Millisecond).String(),
		Model:   result.Model,
	})
}

// --- Shared plumbing ---

// extractStatements runs extraction plus classification, writing the
// classified standard over the extractor's GAAP default when detection
// succeeded.
func extractStatements(doc *ingest.Document, applyScale bool) (*models.FinancialStatements, classify.Result) {
	classification := classify.Classify(doc.FullText())
	statements := extract.New(cfg, doc).Extract(applyScale)
	if classification.Standard != models.StandardUnknown {
		statements.AccountingStandard = classification.Standard
	}
	return statements, classification
}

func buildModel(path string) (*models.LinkedModel, *model.Engine, error) {
	if path == "" {
		return nil, nil, errs.Validation("path is required", nil)
	}
	doc, err := ingest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	statements, _ := extractStatements(doc, true)
	eng := model.New(cfg, statements)
	m, err := eng.BuildLinkedModel()
	if err != nil {
		return nil, nil, err
	}
	return m, eng, nil
}

// corsPreflight stamps the CORS headers and reports whether the request was
// an OPTIONS preflight already answered.
func corsPreflight(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errs.Validation("method not allowed", nil))
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}
	var ae *errs.Error
	if errors.As(err, &ae) {
		resp.Kind = ae.Kind.String()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
	log.Printf("[API] %d %s", status, err)
}

// statusFor maps the error taxonomy onto HTTP statuses: caller mistakes are
// 400, data that parsed but cannot be modeled is 422, upstream trouble 502.
func statusFor(err error) int {
	switch {
	case errs.IsKind(err, errs.KindValidation):
		return http.StatusBadRequest
	case errs.IsKind(err, errs.KindExtraction),
		errs.IsKind(err, errs.KindForecast),
		errs.IsKind(err, errs.KindValuation):
		return http.StatusUnprocessableEntity
	case errs.IsKind(err, errs.KindExternalAPI):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
