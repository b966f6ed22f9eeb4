package api

import (
	"fmt"
	"math"

	"github.com/pumpsight/pumpsight/internal/simulation"
	"github.com/pumpsight/pumpsight/internal/store"
)

// DiagnosticHint is one human-readable insight about a run. The UI displays
// these as chips on the scenario card; clicking one shows Detail, written
// like an assistant explaining the outcome in plain English.
type DiagnosticHint struct {
	// Key is a stable machine-readable identifier (used for dedup/ordering).
	Key string `json:"key"`
	// Level is "ok" | "info" | "warning" | "critical"
	Level string `json:"level"`
	// Title is a short label shown on the chip (≤ 5 words).
	Title string `json:"title"`
	// Detail is the full explanation shown on click/hover.
	Detail string `json:"detail"`
	// Value is an optional numeric value associated with this hint.
	Value *float64 `json:"value,omitempty"`
}

// computeDiagnostics derives diagnostic hints from a completed run.
// Hints are ordered: critical first, then warnings, then info.
func computeDiagnostics(sc *store.Scenario) []DiagnosticHint {
	var hints []DiagnosticHint

	horizon := 0
	if len(sc.Years) > 0 {
		horizon = sc.Years[len(sc.Years)-1].Year
	}

	// ── Threshold breach (scheduled model) ───────────────────────────────────
	if sc.FailureYear != simulation.NoFailure {
		v := float64(sc.FailureYear)
		level := "warning"
		if horizon > 0 && sc.FailureYear*2 <= horizon {
			level = "critical"
		}
		detail := fmt.Sprintf(
			"The flow rate drops to or below the failure threshold of %.0f in year %d, "+
				"well inside the %d-year horizon. From that point the pump no longer "+
				"delivers the required rate. Plan an intervention before year %d: "+
				"shorten the overhaul cycle, reduce wear drivers, or budget for a replacement.",
			sc.Threshold, sc.FailureYear, horizon, sc.FailureYear,
		)
		hints = append(hints, DiagnosticHint{
			Key:    "threshold_breach",
			Level:  level,
			Title:  fmt.Sprintf("Fails in year %d", sc.FailureYear),
			Detail: detail,
			Value:  &v,
		})

		if sc.Scheduled != nil && sc.Scheduled.OverhaulIntervalYears > 2 {
			interval := sc.Scheduled.OverhaulIntervalYears
			recommended := interval - 2
			if recommended < 1 {
				recommended = 1
			}
			hints = append(hints, DiagnosticHint{
				Key:   "shorten_interval",
				Level: "info",
				Title: "Shorten overhaul interval",
				Detail: fmt.Sprintf(
					"Overhauls currently run every %d years. Moving to every %d years "+
						"restores capacity more often and can push the failure year past the "+
						"horizon. Each overhaul still costs capacity, so re-run the scenario "+
						"with the shorter interval to check the trade-off.",
					interval, recommended,
				),
			})
		}
	}

	// ── Pump replacement (condition model) ───────────────────────────────────
	if sc.ReplaceYear != simulation.NoReplacement {
		v := float64(sc.ReplaceYear)
		floor := 0.0
		if sc.Condition != nil {
			floor = sc.Condition.ReplacementFloor
		}
		hints = append(hints, DiagnosticHint{
			Key:   "replacement",
			Level: "warning",
			Title: fmt.Sprintf("Replace in year %d", sc.ReplaceYear),
			Detail: fmt.Sprintf(
				"By year %d repeated overhauls can no longer restore capacity above the "+
					"replacement floor of %.0f. Overhauling past this point wastes budget on "+
					"a worn-out pump. Schedule a full replacement for that year instead.",
				sc.ReplaceYear, floor,
			),
			Value: &v,
		})
	}

	// ── Wear drivers ─────────────────────────────────────────────────────────
	hints = append(hints, driverHints(sc)...)

	// ── All clear ────────────────────────────────────────────────────────────
	if len(hints) == 0 {
		final := simulation.FinalFlowRate(sc.Years)
		hints = append(hints, DiagnosticHint{
			Key:   "healthy",
			Level: "ok",
			Title: "All clear",
			Detail: fmt.Sprintf(
				"The pump stays above its threshold for the whole %d-year horizon and "+
					"still delivers %.0f at the end. Keep the current overhaul schedule and "+
					"re-run the scenario when water quality measurements change.",
				horizon, final,
			),
			Value: &final,
		})
	}

	return hints
}

// driverHints flags wear drivers that dominate the decay rate, using the
// parameters of whichever model produced the run.
func driverHints(sc *store.Scenario) []DiagnosticHint {
	var sand, ph float64
	switch {
	case sc.Scheduled != nil:
		sand, ph = sc.Scheduled.SandConcentrationPct, sc.Scheduled.PHLevel
	case sc.Condition != nil:
		sand, ph = sc.Condition.SandConcentrationPct, sc.Condition.PHLevel
	default:
		return nil
	}

	var hints []DiagnosticHint

	if sand > 5 {
		v := sand
		hints = append(hints, DiagnosticHint{
			Key:   "high_sand",
			Level: "info",
			Title: fmt.Sprintf("%.1f%% sand content", sand),
			Detail: fmt.Sprintf(
				"At %.1f%% sand the abrasive wear on impellers and seals is the main "+
					"driver of the decline. A desander or intake filter upstream of the pump "+
					"slows the decay more than any overhaul schedule can.",
				sand,
			),
			Value: &v,
		})
	}

	if math.Abs(ph-7) > 2 {
		v := ph
		kind := "acidic"
		if ph > 7 {
			kind = "alkaline"
		}
		hints = append(hints, DiagnosticHint{
			Key:   "ph_deviation",
			Level: "info",
			Title: fmt.Sprintf("pH %.1f water", ph),
			Detail: fmt.Sprintf(
				"Water at pH %.1f is strongly %s and corrodes wetted components year "+
					"round. Dosing the intake stream closer to neutral slows the corrosion "+
					"share of the decay rate.",
				ph, kind,
			),
			Value: &v,
		})
	}

	if sc.Condition != nil && sc.Condition.ChlorideConcPpm > 200 {
		v := sc.Condition.ChlorideConcPpm
		hints = append(hints, DiagnosticHint{
			Key:   "high_chloride",
			Level: "info",
			Title: fmt.Sprintf("%.0f ppm chloride", v),
			Detail: fmt.Sprintf(
				"Chloride at %.0f ppm attacks stainless components through pitting "+
					"corrosion. Consider duplex or coated internals at the next overhaul if "+
					"the concentration cannot be reduced.",
				v,
			),
			Value: &v,
		})
	}

	return hints
}
