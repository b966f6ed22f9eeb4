package simulation

import "math"

// Factor labels used in impact breakdowns.
const (
	FactorSand     = "Sand particles"
	FactorPH       = "pH deviation"
	FactorChloride = "Chloride ions"
	FactorPressure = "Pressure differential"
)

// FactorImpact is one degradation driver's contribution to the combined
// decay rate. Useful for rendering per-driver breakdowns in the UI.
type FactorImpact struct {
	// Name is the driver label, one of the Factor* constants.
	Name string
	// RatePerYear is the driver's decay contribution expressed as percent of
	// flow lost per year.
	RatePerYear float64
	// SharePct is the driver's share of the combined decay rate, 0–100.
	// Zero when no driver contributes at all.
	SharePct float64
}

// FactorImpacts breaks the scheduled-model decay rate down by driver.
func (s *Simulator) FactorImpacts(p Parameters) []FactorImpact {
	return impacts([]FactorImpact{
		{Name: FactorSand, RatePerYear: s.coeff.Sand * p.SandConcentrationPct * 100},
		{Name: FactorPH, RatePerYear: s.coeff.PH * math.Abs(p.PHLevel-neutralPH) * 100},
	})
}

// ConditionFactorImpacts breaks the condition-model decay rate down by
// driver.
func (s *Simulator) ConditionFactorImpacts(p ConditionParameters) []FactorImpact {
	return impacts([]FactorImpact{
		{Name: FactorSand, RatePerYear: s.coeff.Sand * p.SandConcentrationPct * 100},
		{Name: FactorPH, RatePerYear: s.coeff.PH * math.Abs(p.PHLevel-neutralPH) * 100},
		{Name: FactorChloride, RatePerYear: s.coeff.Chloride * p.ChlorideConcPpm * 100},
		{Name: FactorPressure, RatePerYear: s.coeff.PressureDiff * math.Abs(p.PressureDiffPSI) * 100},
	})
}

// impacts fills in each factor's share of the combined rate.
func impacts(fs []FactorImpact) []FactorImpact {
	var total float64
	for _, f := range fs {
		total += f.RatePerYear
	}
	if total > 0 {
		for i := range fs {
			fs[i].SharePct = fs[i].RatePerYear / total * 100
		}
	}
	return fs
}
