package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/pumpsight/pumpsight/internal/alerts"
	"github.com/pumpsight/pumpsight/internal/chart"
	"github.com/pumpsight/pumpsight/internal/config"
	"github.com/pumpsight/pumpsight/internal/export"
	"github.com/pumpsight/pumpsight/internal/metrics"
	"github.com/pumpsight/pumpsight/internal/simulation"
	"github.com/pumpsight/pumpsight/internal/store"
)

// scenarioName limits scenario names to path-safe identifiers.
var scenarioName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// Handler is the HTTP handler for all /api/v1/* endpoints.
// It runs simulations, reads scenario state from the store and returns JSON
// responses; chart and CSV subresources render stored runs.
type Handler struct {
	store   *store.Store
	engine  *alerts.Engine
	charts  *chart.Renderer
	current func() *config.Config
	mux     *http.ServeMux
}

// New creates a Handler wired to the scenario store, alert engine and chart
// renderer, and registers all routes. current returns the live configuration;
// it is called per request so reloads take effect without a restart.
func New(st *store.Store, eng *alerts.Engine, charts *chart.Renderer, current func() *config.Config) http.Handler {
	if eng == nil {
		eng = alerts.New(config.AlertsConfig{})
	}
	if charts == nil {
		charts = chart.New(chart.DefaultConfig())
	}
	if current == nil {
		current = func() *config.Config { return &config.Config{} }
	}
	h := &Handler{store: st, engine: eng, charts: charts, current: current, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/fields", h.fields)
	h.mux.HandleFunc("/api/v1/presets", h.presets)
	h.mux.HandleFunc("/api/v1/simulate", h.simulate)
	h.mux.HandleFunc("/api/v1/scenarios", h.listScenarios)
	h.mux.HandleFunc("/api/v1/scenarios/", h.scenario) // subtree — extracts {name}
	h.mux.HandleFunc("/api/v1/alerts", h.activeAlerts)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — server status and object counts.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		ScenarioCount: h.store.Count(),
		ActiveAlerts:  len(h.engine.Active()),
	})
}

// fields returns GET /api/v1/fields — parameter specs for building controls.
func (h *Handler) fields(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, fieldSpecs())
}

// presets returns GET /api/v1/presets — named parameter sets from config.
func (h *Handler) presets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	cfg := h.current()
	out := make([]PresetResponse, 0, len(cfg.Presets))
	for _, p := range cfg.Presets {
		out = append(out, toPresetResponse(p))
	}
	jsonResp(w, http.StatusOK, out)
}

// simulate handles POST /api/v1/simulate — runs a simulation, stores the
// scenario under its name and returns the full run.
func (h *Handler) simulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonErr(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	name := req.Scenario
	if name == "" {
		name = "default"
	}
	if !scenarioName.MatchString(name) {
		jsonErr(w, http.StatusBadRequest, "scenario name must be 1-64 letters, digits, dots, dashes or underscores")
		return
	}

	model := req.Model
	if model == "" {
		model = simulation.ModelScheduled
	}

	sim := simulation.New(h.current().Simulation.Coefficients.Effective())
	sc := &store.Scenario{
		Name:        name,
		Model:       model,
		FailureYear: simulation.NoFailure,
		ReplaceYear: simulation.NoReplacement,
	}

	switch model {
	case simulation.ModelScheduled:
		p := req.scheduledParams()
		res, err := sim.Run(p)
		if err != nil {
			simulateErr(w, err)
			return
		}
		sc.Threshold = p.FailureThreshold
		sc.Years = res.Years
		sc.FailureYear = res.FailureYear
		sc.Impacts = sim.FactorImpacts(p)
		sc.Scheduled = &p

	case simulation.ModelCondition:
		p := req.conditionParams()
		res, err := sim.RunConditionBased(p)
		if err != nil {
			simulateErr(w, err)
			return
		}
		sc.Threshold = p.MaintenanceThreshold
		sc.Years = res.Years
		sc.ReplaceYear = res.ReplaceYear
		sc.Impacts = sim.ConditionFactorImpacts(p)
		sc.Condition = &p

	default:
		jsonErr(w, http.StatusBadRequest, `model must be "scheduled" or "condition"`)
		return
	}

	h.store.Put(sc)
	metrics.RecordSimulation(model, sc.FailureYear != simulation.NoFailure || sc.ReplaceYear != simulation.NoReplacement)
	h.engine.Evaluate(sc)

	e := h.store.Get(name)
	if e == nil {
		// Deleted between Put and Get.
		jsonErr(w, http.StatusNotFound, "scenario not found")
		return
	}
	jsonResp(w, http.StatusOK, toScenarioResponse(e))
}

// listScenarios returns GET /api/v1/scenarios — summaries of all stored runs.
func (h *Handler) listScenarios(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildScenarioList(h.store))
}

// BuildScenarioList assembles the scenario summary list served by
// GET /api/v1/scenarios. The websocket hub broadcasts the same payload.
func BuildScenarioList(st *store.Store) []ScenarioSummary {
	entries := st.List()
	out := make([]ScenarioSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, toScenarioSummary(e))
	}
	return out
}

// scenario dispatches /api/v1/scenarios/{name}[/csv|/chart|/factors].
func (h *Handler) scenario(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/scenarios/")
	if rest == "" {
		// Redirect bare /api/v1/scenarios/ to list handler.
		h.listScenarios(w, r)
		return
	}
	name, sub, _ := strings.Cut(rest, "/")

	if sub == "" && r.Method == http.MethodDelete {
		if !h.store.Delete(name) {
			jsonErr(w, http.StatusNotFound, "scenario not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	e := h.store.Get(name)
	if e == nil {
		jsonErr(w, http.StatusNotFound, "scenario not found")
		return
	}

	switch sub {
	case "":
		jsonResp(w, http.StatusOK, toScenarioResponse(e))
	case "csv":
		h.scenarioCSV(w, e)
	case "chart":
		h.scenarioChart(w, e)
	case "factors":
		h.scenarioFactors(w, e)
	default:
		jsonErr(w, http.StatusNotFound, "unknown scenario resource")
	}
}

// scenarioCSV streams the run history as a CSV attachment.
func (h *Handler) scenarioCSV(w http.ResponseWriter, e *store.Entry) {
	var buf bytes.Buffer
	if err := export.Write(&buf, e.Scenario.Years); err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	w.Write(buf.Bytes()) //nolint:errcheck
}

// scenarioChart renders the flow-rate line chart as SVG.
func (h *Handler) scenarioChart(w http.ResponseWriter, e *store.Entry) {
	sc := e.Scenario
	svg, err := h.charts.Flow(chart.FlowData{
		Title:       "Pump flow rate: " + sc.Name,
		Years:       sc.Years,
		Threshold:   sc.Threshold,
		FailureYear: sc.FailureYear,
	})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg)) //nolint:errcheck
}

// scenarioFactors renders the decay factor bar chart as SVG.
func (h *Handler) scenarioFactors(w http.ResponseWriter, e *store.Entry) {
	sc := e.Scenario
	svg, err := h.charts.Factors(chart.FactorData{
		Title:   "Decay factors: " + sc.Name,
		Impacts: sc.Impacts,
	})
	if err != nil {
		jsonErr(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(svg)) //nolint:errcheck
}

// activeAlerts returns GET /api/v1/alerts — firing and recently resolved
// alerts from the engine.
func (h *Handler) activeAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.engine.Active())
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// simulateErr maps a simulation error to an HTTP response: validation
// failures are the caller's fault, anything else is a server error.
func simulateErr(w http.ResponseWriter, err error) {
	var invalid *simulation.InvalidParameterError
	if errors.As(err, &invalid) {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonErr(w, http.StatusInternalServerError, err.Error())
}

func (r SimulateRequest) scheduledParams() simulation.Parameters {
	return simulation.Parameters{
		PeriodYears:           r.PeriodYears,
		InitialFlowRate:       r.InitialFlowRate,
		FailureThreshold:      r.FailureThreshold,
		OverhaulIntervalYears: r.OverhaulIntervalYears,
		OverhaulDropFraction:  r.OverhaulDropFraction,
		SandConcentrationPct:  r.SandConcentrationPct,
		PHLevel:               r.PHLevel,
	}
}

func (r SimulateRequest) conditionParams() simulation.ConditionParameters {
	return simulation.ConditionParameters{
		PeriodYears:          r.PeriodYears,
		InitialFlowRate:      r.InitialFlowRate,
		MaintenanceThreshold: r.MaintenanceThreshold,
		OverhaulDropFraction: r.OverhaulDropFraction,
		SandConcentrationPct: r.SandConcentrationPct,
		PHLevel:              r.PHLevel,
		ChlorideConcPpm:      r.ChlorideConcPpm,
		PressureDiffPSI:      r.PressureDiffPSI,
		ReplacementFloor:     r.ReplacementFloor,
	}
}

// toScenarioResponse maps a store.Entry to its full JSON representation.
func toScenarioResponse(e *store.Entry) ScenarioResponse {
	sc := e.Scenario
	years := make([]YearResponse, 0, len(sc.Years))
	for _, yr := range sc.Years {
		years = append(years, YearResponse{
			Year:           yr.Year,
			IsOverhaulYear: yr.IsOverhaulYear,
			MaxFlowRate:    yr.MaxFlowRate,
			FlowRate:       yr.FlowRate,
		})
	}
	factors := make([]FactorResponse, 0, len(sc.Impacts))
	for _, f := range sc.Impacts {
		factors = append(factors, FactorResponse{
			Name:        f.Name,
			RatePerYear: f.RatePerYear,
			SharePct:    f.SharePct,
		})
	}
	return ScenarioResponse{
		Scenario:    sc.Name,
		Model:       sc.Model,
		Threshold:   sc.Threshold,
		Years:       years,
		Summary:     toRunSummary(sc),
		Factors:     factors,
		Diagnostics: computeDiagnostics(sc),
		ComputedAt:  e.ComputedAt.UTC().Format(time.RFC3339),
	}
}

// toScenarioSummary maps a store.Entry to its list representation.
func toScenarioSummary(e *store.Entry) ScenarioSummary {
	return ScenarioSummary{
		Scenario:   e.Scenario.Name,
		Model:      e.Scenario.Model,
		Threshold:  e.Scenario.Threshold,
		Summary:    toRunSummary(e.Scenario),
		ComputedAt: e.ComputedAt.UTC().Format(time.RFC3339),
	}
}

// toRunSummary derives the scalar summary of a stored run.
func toRunSummary(sc *store.Scenario) RunSummary {
	s := RunSummary{
		State:               runState(sc),
		FinalFlowRate:       simulation.FinalFlowRate(sc.Years),
		TotalDeclinePct:     simulation.TotalDeclinePct(sc.Years),
		AvgAnnualDeclinePct: simulation.AvgAnnualDeclinePct(sc.Years),
	}
	if sc.FailureYear != simulation.NoFailure {
		y := sc.FailureYear
		s.FailureYear = &y
	}
	if sc.ReplaceYear != simulation.NoReplacement {
		y := sc.ReplaceYear
		s.ReplaceYear = &y
	}
	for _, yr := range sc.Years {
		if yr.IsOverhaulYear {
			s.OverhaulCount++
		}
	}
	return s
}

// runState classifies a stored run for API consumers.
func runState(sc *store.Scenario) string {
	switch {
	case sc.FailureYear != simulation.NoFailure:
		return "failed"
	case sc.ReplaceYear != simulation.NoReplacement:
		return "replaced"
	default:
		return "healthy"
	}
}

func toPresetResponse(p config.Preset) PresetResponse {
	return PresetResponse{
		Name:                  p.Name,
		Model:                 p.EffectiveModel(),
		PeriodYears:           p.PeriodYears,
		InitialFlowRate:       p.InitialFlowRate,
		FailureThreshold:      p.FailureThreshold,
		MaintenanceThreshold:  p.MaintenanceThreshold,
		OverhaulIntervalYears: p.OverhaulIntervalYears,
		OverhaulDropFraction:  p.OverhaulDropFraction,
		SandConcentrationPct:  p.SandConcentrationPct,
		PHLevel:               p.PHLevel,
		ChlorideConcPpm:       p.ChlorideConcPpm,
		PressureDiffPSI:       p.PressureDiffPSI,
		ReplacementFloor:      p.ReplacementFloor,
	}
}
