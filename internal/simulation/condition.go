package simulation

import "math"

// NoReplacement is the ReplaceYear value of a run that never hit the
// replacement floor.
const NoReplacement = -1

// ConditionResult is the outcome of one condition-triggered run.
type ConditionResult struct {
	// Years holds one record per simulated year in year order, starting with
	// the year-0 initial state. MaxFlowRate is the current post-overhaul
	// baseline. When the pump is replaced the series ends at ReplaceYear, so
	// the run may cover fewer than PeriodYears+1 records.
	Years []YearRecord
	// ReplaceYear is the year in which a triggered overhaul could no longer
	// restore flow above the replacement floor, or NoReplacement.
	ReplaceYear int
}

// Replaced reports whether the run ended in a pump replacement.
func (r *ConditionResult) Replaced() bool { return r.ReplaceYear != NoReplacement }

// FinalFlowRate returns the flow rate of the last simulated year.
func (r *ConditionResult) FinalFlowRate() float64 { return FinalFlowRate(r.Years) }

// TotalDeclinePct returns the percentage decline from the initial flow rate
// to the final year's flow rate.
func (r *ConditionResult) TotalDeclinePct() float64 { return TotalDeclinePct(r.Years) }

// AvgAnnualDeclinePct returns TotalDeclinePct spread evenly over the
// simulated years.
func (r *ConditionResult) AvgAnnualDeclinePct() float64 { return AvgAnnualDeclinePct(r.Years) }

// ConditionDecayRate combines all four degradation drivers into the per-year
// decay exponent used by the condition-triggered model.
func (s *Simulator) ConditionDecayRate(p ConditionParameters) float64 {
	return s.coeff.Sand*p.SandConcentrationPct +
		s.coeff.PH*math.Abs(p.PHLevel-neutralPH) +
		s.coeff.Chloride*p.ChlorideConcPpm +
		s.coeff.PressureDiff*math.Abs(p.PressureDiffPSI)
}

// RunConditionBased simulates condition-triggered overhauls.
//
// Each year the flow rate decays by exp(-k). When the decayed flow sags to
// the maintenance threshold an overhaul restores it to baseline*(1-drop) and
// the baseline steps down to the restored value, so every overhaul cycle
// starts a little lower than the last. When a triggered overhaul would
// restore flow to at or below ReplacementFloor the pump is retired instead:
// the year's decayed record is kept, ReplaceYear is set, and the series ends.
func (s *Simulator) RunConditionBased(p ConditionParameters) (*ConditionResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	decay := math.Exp(-s.ConditionDecayRate(p))

	years := make([]YearRecord, 0, p.PeriodYears+1)
	years = append(years, YearRecord{
		Year:        0,
		MaxFlowRate: p.InitialFlowRate,
		FlowRate:    p.InitialFlowRate,
	})

	flow := p.InitialFlowRate
	baseline := p.InitialFlowRate
	replaceYear := NoReplacement

	for y := 1; y <= p.PeriodYears; y++ {
		flow *= decay

		overhaul := false
		if flow <= p.MaintenanceThreshold {
			restored := baseline * (1 - p.OverhaulDropFraction)
			if p.ReplacementFloor > 0 && restored <= p.ReplacementFloor {
				years = append(years, YearRecord{
					Year:        y,
					MaxFlowRate: baseline,
					FlowRate:    flow,
				})
				replaceYear = y
				break
			}
			flow = restored
			baseline = restored
			overhaul = true
		}

		years = append(years, YearRecord{
			Year:           y,
			IsOverhaulYear: overhaul,
			MaxFlowRate:    baseline,
			FlowRate:       flow,
		})
	}

	return &ConditionResult{Years: years, ReplaceYear: replaceYear}, nil
}
