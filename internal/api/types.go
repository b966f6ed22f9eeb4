package api

// SimulateRequest is the payload for POST /api/v1/simulate. Scenario and
// Model are optional; threshold fields are read per model, the rest are
// shared. Unused model fields are ignored.
type SimulateRequest struct {
	Scenario string `json:"scenario"`
	Model    string `json:"model"`

	PeriodYears           int     `json:"period_years"`
	InitialFlowRate       float64 `json:"initial_flow_rate"`
	FailureThreshold      float64 `json:"failure_threshold"`
	MaintenanceThreshold  float64 `json:"maintenance_threshold"`
	OverhaulIntervalYears int     `json:"overhaul_interval_years"`
	OverhaulDropFraction  float64 `json:"overhaul_drop_fraction"`
	SandConcentrationPct  float64 `json:"sand_concentration_pct"`
	PHLevel               float64 `json:"ph_level"`
	ChlorideConcPpm       float64 `json:"chloride_ppm"`
	PressureDiffPSI       float64 `json:"pressure_diff_psi"`
	ReplacementFloor      float64 `json:"replacement_floor"`
}

// YearResponse is one simulated year within a run payload.
type YearResponse struct {
	Year           int     `json:"year"`
	IsOverhaulYear bool    `json:"is_overhaul_year"`
	MaxFlowRate    float64 `json:"max_flow_rate"`
	FlowRate       float64 `json:"flow_rate"`
}

// RunSummary carries the scalar summary of a run. FailureYear and
// ReplaceYear are null when the event never happened.
type RunSummary struct {
	State               string  `json:"state"`
	FailureYear         *int    `json:"failure_year"`
	ReplaceYear         *int    `json:"replace_year"`
	FinalFlowRate       float64 `json:"final_flow_rate"`
	TotalDeclinePct     float64 `json:"total_decline_pct"`
	AvgAnnualDeclinePct float64 `json:"avg_annual_decline_pct"`
	OverhaulCount       int     `json:"overhaul_count"`
}

// FactorResponse is one decay factor's contribution to the annual rate.
type FactorResponse struct {
	Name        string  `json:"name"`
	RatePerYear float64 `json:"rate_per_year"`
	SharePct    float64 `json:"share_pct"`
}

// ScenarioResponse is the full run payload for POST /api/v1/simulate and
// GET /api/v1/scenarios/{name}.
type ScenarioResponse struct {
	Scenario    string           `json:"scenario"`
	Model       string           `json:"model"`
	Threshold   float64          `json:"threshold"`
	Years       []YearResponse   `json:"years"`
	Summary     RunSummary       `json:"summary"`
	Factors     []FactorResponse `json:"factors"`
	Diagnostics []DiagnosticHint `json:"diagnostics"`
	ComputedAt  string           `json:"computed_at"` // RFC3339
}

// ScenarioSummary is one entry in GET /api/v1/scenarios.
type ScenarioSummary struct {
	Scenario   string     `json:"scenario"`
	Model      string     `json:"model"`
	Threshold  float64    `json:"threshold"`
	Summary    RunSummary `json:"summary"`
	ComputedAt string     `json:"computed_at"` // RFC3339
}

// PresetResponse is one named parameter set in GET /api/v1/presets.
type PresetResponse struct {
	Name                  string  `json:"name"`
	Model                 string  `json:"model"`
	PeriodYears           int     `json:"period_years"`
	InitialFlowRate       float64 `json:"initial_flow_rate"`
	FailureThreshold      float64 `json:"failure_threshold,omitempty"`
	MaintenanceThreshold  float64 `json:"maintenance_threshold,omitempty"`
	OverhaulIntervalYears int     `json:"overhaul_interval_years,omitempty"`
	OverhaulDropFraction  float64 `json:"overhaul_drop_fraction"`
	SandConcentrationPct  float64 `json:"sand_concentration_pct"`
	PHLevel               float64 `json:"ph_level"`
	ChlorideConcPpm       float64 `json:"chloride_ppm,omitempty"`
	PressureDiffPSI       float64 `json:"pressure_diff_psi,omitempty"`
	ReplacementFloor      float64 `json:"replacement_floor,omitempty"`
}

// FieldSpec describes one simulation parameter for front-end controls:
// bounds, step and default drive the sliders in the UI.
type FieldSpec struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Unit    string   `json:"unit,omitempty"`
	Min     float64  `json:"min"`
	Max     float64  `json:"max"`
	Step    float64  `json:"step"`
	Default float64  `json:"default"`
	Models  []string `json:"models"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status        string `json:"status"`
	ScenarioCount int    `json:"scenario_count"`
	ActiveAlerts  int    `json:"active_alerts"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
