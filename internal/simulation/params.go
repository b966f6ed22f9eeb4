package simulation

import (
	"fmt"
	"math"
)

// Bounds enforced by parameter validation.
const (
	MinPeriodYears = 1
	MaxPeriodYears = 30
)

// InvalidParameterError reports a simulation parameter outside its valid
// domain. Field is the wire name of the offending parameter, Constraint the
// rule it violated.
type InvalidParameterError struct {
	Field      string
	Constraint string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Constraint)
}

// invalidParam builds the validation error for one field.
func invalidParam(field, constraint string) error {
	return &InvalidParameterError{Field: field, Constraint: constraint}
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Parameters holds the inputs of one scheduled-overhaul simulation run.
// A Parameters value is constructed fresh per run and never mutated.
type Parameters struct {
	// PeriodYears is the simulation horizon, 1–30 years.
	PeriodYears int

	// InitialFlowRate is the year-zero flow rate in usgpm. Must be positive.
	InitialFlowRate float64

	// FailureThreshold is the flow rate at or below which the pump counts as
	// failed, in usgpm. Must be positive and no greater than InitialFlowRate.
	FailureThreshold float64

	// OverhaulIntervalYears is the fixed number of years between overhauls.
	// Intervals longer than the period are valid: no overhaul ever fires.
	OverhaulIntervalYears int

	// OverhaulDropFraction is the fractional drop in the maximum achievable
	// flow rate applied at each overhaul, in [0, 1).
	OverhaulDropFraction float64

	// SandConcentrationPct is the sand particle concentration in the fluid
	// in percent. Drives particle erosion. Must be non-negative.
	SandConcentrationPct float64

	// PHLevel is the average pH of the fluid; deviation from neutral (7)
	// drives chemical degradation. Any finite value is accepted.
	PHLevel float64
}

// Validate checks every field against its domain, returning an
// *InvalidParameterError for the first violation found.
func (p Parameters) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"initial_flow_rate", p.InitialFlowRate},
		{"failure_threshold", p.FailureThreshold},
		{"overhaul_drop_fraction", p.OverhaulDropFraction},
		{"sand_concentration_pct", p.SandConcentrationPct},
		{"ph_level", p.PHLevel},
	} {
		if !finite(f.value) {
			return invalidParam(f.name, "must be finite")
		}
	}
	if p.PeriodYears < MinPeriodYears || p.PeriodYears > MaxPeriodYears {
		return invalidParam("period_years",
			fmt.Sprintf("must be between %d and %d", MinPeriodYears, MaxPeriodYears))
	}
	if p.InitialFlowRate <= 0 {
		return invalidParam("initial_flow_rate", "must be positive")
	}
	if p.FailureThreshold <= 0 || p.FailureThreshold > p.InitialFlowRate {
		return invalidParam("failure_threshold",
			"must be positive and no greater than initial_flow_rate")
	}
	if p.OverhaulIntervalYears < 1 {
		return invalidParam("overhaul_interval_years", "must be at least 1")
	}
	if p.OverhaulDropFraction < 0 || p.OverhaulDropFraction >= 1 {
		return invalidParam("overhaul_drop_fraction", "must be in [0, 1)")
	}
	if p.SandConcentrationPct < 0 {
		return invalidParam("sand_concentration_pct", "must be non-negative")
	}
	return nil
}

// ConditionParameters holds the inputs of one condition-triggered simulation
// run. Overhauls are not scheduled; one fires whenever the flow rate sags to
// MaintenanceThreshold.
type ConditionParameters struct {
	// PeriodYears is the simulation horizon, 1–30 years.
	PeriodYears int

	// InitialFlowRate is the year-zero flow rate in usgpm. Must be positive.
	InitialFlowRate float64

	// MaintenanceThreshold is the flow rate at or below which an overhaul is
	// triggered, in usgpm. Must be positive and no greater than
	// InitialFlowRate.
	MaintenanceThreshold float64

	// OverhaulDropFraction is the fractional step-down of the post-overhaul
	// flow ceiling relative to the previous ceiling, in [0, 1).
	OverhaulDropFraction float64

	// SandConcentrationPct is the sand particle concentration in percent.
	SandConcentrationPct float64

	// PHLevel is the average pH of the fluid.
	PHLevel float64

	// ChlorideConcPpm is the chloride ion concentration in ppm.
	// Must be non-negative.
	ChlorideConcPpm float64

	// PressureDiffPSI is the differential between input and output pressure
	// in psi. The decay contribution uses its magnitude.
	PressureDiffPSI float64

	// ReplacementFloor retires the pump when a triggered overhaul would
	// restore flow to at or below this value, in usgpm. Zero disables the
	// replacement decision.
	ReplacementFloor float64
}

// Validate checks every field against its domain, returning an
// *InvalidParameterError for the first violation found.
func (p ConditionParameters) Validate() error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"initial_flow_rate", p.InitialFlowRate},
		{"maintenance_threshold", p.MaintenanceThreshold},
		{"overhaul_drop_fraction", p.OverhaulDropFraction},
		{"sand_concentration_pct", p.SandConcentrationPct},
		{"ph_level", p.PHLevel},
		{"chloride_ppm", p.ChlorideConcPpm},
		{"pressure_diff_psi", p.PressureDiffPSI},
		{"replacement_floor", p.ReplacementFloor},
	} {
		if !finite(f.value) {
			return invalidParam(f.name, "must be finite")
		}
	}
	if p.PeriodYears < MinPeriodYears || p.PeriodYears > MaxPeriodYears {
		return invalidParam("period_years",
			fmt.Sprintf("must be between %d and %d", MinPeriodYears, MaxPeriodYears))
	}
	if p.InitialFlowRate <= 0 {
		return invalidParam("initial_flow_rate", "must be positive")
	}
	if p.MaintenanceThreshold <= 0 || p.MaintenanceThreshold > p.InitialFlowRate {
		return invalidParam("maintenance_threshold",
			"must be positive and no greater than initial_flow_rate")
	}
	if p.OverhaulDropFraction < 0 || p.OverhaulDropFraction >= 1 {
		return invalidParam("overhaul_drop_fraction", "must be in [0, 1)")
	}
	if p.SandConcentrationPct < 0 {
		return invalidParam("sand_concentration_pct", "must be non-negative")
	}
	if p.ChlorideConcPpm < 0 {
		return invalidParam("chloride_ppm", "must be non-negative")
	}
	if p.ReplacementFloor < 0 {
		return invalidParam("replacement_floor", "must be non-negative")
	}
	return nil
}
