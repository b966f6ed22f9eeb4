package alerts

import (
	"math"
	"testing"

	"github.com/pumpsight/pumpsight/internal/simulation"
	"github.com/pumpsight/pumpsight/internal/store"
)

func failedScenario() *store.Scenario {
	return &store.Scenario{
		Name:      "worn-pump",
		Model:     simulation.ModelScheduled,
		Threshold: 800,
		Years: []simulation.YearRecord{
			{Year: 0, MaxFlowRate: 1000, FlowRate: 1000},
			{Year: 1, MaxFlowRate: 1000, FlowRate: 950},
			{Year: 2, IsOverhaulYear: true, MaxFlowRate: 900, FlowRate: 860},
			{Year: 3, MaxFlowRate: 900, FlowRate: 790},
			{Year: 4, IsOverhaulYear: true, MaxFlowRate: 810, FlowRate: 700},
		},
		FailureYear: 3,
		ReplaceYear: simulation.NoReplacement,
	}
}

func TestEvalCondition(t *testing.T) {
	sc := failedScenario()
	tests := []struct {
		cond      string
		wantFire  bool
		wantValue float64
	}{
		{"final_flow_rate < 750", true, 700},
		{"final_flow_rate < 600", false, 700},
		{"final_flow_rate <= 700", true, 700},
		{"total_decline_pct >= 30", true, 30},
		{"avg_annual_decline_pct > 7", true, 7.5},
		{"failure_year <= 5", true, 3},
		{"failure_year > 5", false, 3},
		{"overhaul_count >= 2", true, 2},
		{"state == failed", true, 0},
		{"state == healthy", false, 0},
		{"state != failed", false, 0},
		{"replace_year <= 5", false, 0},
		{"bogus_field > 1", false, 0},
		{"final_flow_rate <", false, 0},
		{"final_flow_rate < abc", false, 0},
	}
	for _, tt := range tests {
		fire, value := evalCondition(tt.cond, sc)
		if fire != tt.wantFire {
			t.Errorf("evalCondition(%q) fire = %v, want %v", tt.cond, fire, tt.wantFire)
		}
		if math.Abs(value-tt.wantValue) > 1e-9 {
			t.Errorf("evalCondition(%q) value = %v, want %v", tt.cond, value, tt.wantValue)
		}
	}
}

func TestEvalConditionHealthyRun(t *testing.T) {
	sc := failedScenario()
	sc.FailureYear = simulation.NoFailure

	if fire, _ := evalCondition("failure_year <= 10", sc); fire {
		t.Error("failure_year rule fired on a run that never failed")
	}
	if fire, _ := evalCondition("state == healthy", sc); !fire {
		t.Error("state == healthy did not fire on a healthy run")
	}
}

func TestRunState(t *testing.T) {
	sc := failedScenario()
	if got := runState(sc); got != "failed" {
		t.Errorf("runState = %q, want %q", got, "failed")
	}

	sc.FailureYear = simulation.NoFailure
	sc.ReplaceYear = 6
	if got := runState(sc); got != "replaced" {
		t.Errorf("runState = %q, want %q", got, "replaced")
	}

	sc.ReplaceYear = simulation.NoReplacement
	if got := runState(sc); got != "healthy" {
		t.Errorf("runState = %q, want %q", got, "healthy")
	}
}
