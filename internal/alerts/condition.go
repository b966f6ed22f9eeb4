package alerts

import (
	"strconv"
	"strings"

	"github.com/pumpsight/pumpsight/internal/simulation"
	"github.com/pumpsight/pumpsight/internal/store"
)

// evalCondition evaluates a rule condition string against a completed run.
//
// Supported expressions (field operator value):
//
//	final_flow_rate < 600
//	total_decline_pct > 50
//	avg_annual_decline_pct > 3
//	failure_year <= 10
//	replace_year <= 5
//	overhaul_count >= 4
//	state == failed
//	state == replaced
//	state == healthy
//
// failure_year and replace_year only fire on runs where the event happened.
// Returns (fires bool, triggering value float64).
// Returns (false, 0) if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, sc *store.Scenario) (bool, float64) {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return false, 0
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	if field == "state" {
		if op == "==" {
			return runState(sc) == rhs, 0
		}
		return false, 0
	}

	v, ok := numericField(field, sc)
	if !ok {
		return false, 0
	}
	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return false, 0
	}
	return compareFloat(v, op, threshold), v
}

// runState classifies a run: "failed" when the flow rate crossed the failure
// threshold, "replaced" when the pump was retired, "healthy" otherwise.
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

// numericField maps a field name to its value in the run. The second return
// is false for unknown fields and for event years that never happened.
func numericField(field string, sc *store.Scenario) (float64, bool) {
	switch field {
	case "final_flow_rate":
		return simulation.FinalFlowRate(sc.Years), true
	case "total_decline_pct":
		return simulation.TotalDeclinePct(sc.Years), true
	case "avg_annual_decline_pct":
		return simulation.AvgAnnualDeclinePct(sc.Years), true
	case "failure_year":
		if sc.FailureYear == simulation.NoFailure {
			return 0, false
		}
		return float64(sc.FailureYear), true
	case "replace_year":
		if sc.ReplaceYear == simulation.NoReplacement {
			return 0, false
		}
		return float64(sc.ReplaceYear), true
	case "overhaul_count":
		n := 0
		for _, yr := range sc.Years {
			if yr.IsOverhaulYear {
				n++
			}
		}
		return float64(n), true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
