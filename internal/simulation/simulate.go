package simulation

import "math"

// Default decay coefficients, per year per driver unit.
// The family keeps a fixed 10:20:2:1 ratio between drivers; the absolute
// scale is pinned by the regression fixtures in simulate_test.go.
const (
	// DefaultSandCoeff converts sand concentration (%) to decay rate.
	DefaultSandCoeff = 0.015
	// DefaultPHCoeff converts pH deviation from neutral to decay rate.
	DefaultPHCoeff = 0.03
	// DefaultChlorideCoeff converts chloride concentration (ppm) to decay rate.
	DefaultChlorideCoeff = 0.003
	// DefaultPressureCoeff converts pressure differential (psi) to decay rate.
	DefaultPressureCoeff = 0.0015
)

// neutralPH is the pH with zero chemical-degradation contribution.
const neutralPH = 7.0

// NoFailure is the FailureYear value of a run whose flow rate never reached
// the failure threshold.
const NoFailure = -1

// Model identifiers for the two overhaul strategies.
const (
	ModelScheduled = "scheduled"
	ModelCondition = "condition"
)

// Coefficients holds the proportionality constants that convert each
// degradation driver into a per-year exponential decay contribution.
// All four must be non-negative; a negative coefficient would turn decay
// into growth and break the flow ≤ max invariant.
type Coefficients struct {
	// Sand is the decay contribution per percent of sand concentration.
	Sand float64
	// PH is the decay contribution per pH unit of deviation from neutral.
	PH float64
	// Chloride is the decay contribution per ppm of chloride.
	// Used only by the condition-triggered model.
	Chloride float64
	// PressureDiff is the decay contribution per psi of pressure
	// differential. Used only by the condition-triggered model.
	PressureDiff float64
}

// DefaultCoefficients returns the tuned default coefficient set.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Sand:         DefaultSandCoeff,
		PH:           DefaultPHCoeff,
		Chloride:     DefaultChlorideCoeff,
		PressureDiff: DefaultPressureCoeff,
	}
}

// Simulator runs flow-rate decline simulations with a fixed coefficient set.
// A Simulator is immutable after New and safe for concurrent use.
type Simulator struct {
	coeff Coefficients
}

// New creates a Simulator using the given decay coefficients.
func New(c Coefficients) *Simulator {
	return &Simulator{coeff: c}
}

// Coefficients returns the coefficient set the Simulator was built with.
func (s *Simulator) Coefficients() Coefficients { return s.coeff }

// DecayRate combines the scheduled-model degradation drivers into the
// per-year decay exponent k.
func (s *Simulator) DecayRate(sandPct, ph float64) float64 {
	return s.coeff.Sand*sandPct + s.coeff.PH*math.Abs(ph-neutralPH)
}

// YearRecord is the simulated state of one year.
type YearRecord struct {
	// Year is the zero-based year index; year 0 is the initial state.
	Year int
	// IsOverhaulYear marks years in which an overhaul was performed.
	IsOverhaulYear bool
	// MaxFlowRate is the flow ceiling in usgpm after all overhauls up to and
	// including this year.
	MaxFlowRate float64
	// FlowRate is the simulated flow in usgpm, never above MaxFlowRate.
	FlowRate float64
}

// Result is the outcome of one scheduled-overhaul run.
type Result struct {
	// Years has exactly PeriodYears+1 records in year order, starting with
	// the year-0 initial state.
	Years []YearRecord
	// FailureYear is the first year whose flow rate is at or below the
	// failure threshold, or NoFailure.
	FailureYear int
}

// Failed reports whether the run reached the failure threshold.
func (r *Result) Failed() bool { return r.FailureYear != NoFailure }

// FinalFlowRate returns the flow rate of the last simulated year.
func (r *Result) FinalFlowRate() float64 { return FinalFlowRate(r.Years) }

// TotalDeclinePct returns the percentage decline from the initial flow rate
// to the final year's flow rate.
func (r *Result) TotalDeclinePct() float64 { return TotalDeclinePct(r.Years) }

// AvgAnnualDeclinePct returns TotalDeclinePct spread evenly over the
// simulated years.
func (r *Result) AvgAnnualDeclinePct() float64 { return AvgAnnualDeclinePct(r.Years) }

// Run simulates scheduled-overhaul flow decline for the given parameters.
//
// Year 0 records the initial state. For each year 1..PeriodYears the flow
// ceiling drops by OverhaulDropFraction when the year is a multiple of the
// overhaul interval, and the flow rate decays continuously from year 0:
//
//	flow[y] = max[y] * exp(-k*y)
//
// FailureYear is the first year (year 0 included) whose flow rate is at or
// below FailureThreshold. Invalid parameters return *InvalidParameterError
// before any year is computed.
func (s *Simulator) Run(p Parameters) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	k := s.DecayRate(p.SandConcentrationPct, p.PHLevel)

	years := make([]YearRecord, 0, p.PeriodYears+1)
	years = append(years, YearRecord{
		Year:        0,
		MaxFlowRate: p.InitialFlowRate,
		FlowRate:    p.InitialFlowRate,
	})

	maxRate := p.InitialFlowRate
	for y := 1; y <= p.PeriodYears; y++ {
		overhaul := y%p.OverhaulIntervalYears == 0
		if overhaul {
			maxRate *= 1 - p.OverhaulDropFraction
		}
		years = append(years, YearRecord{
			Year:           y,
			IsOverhaulYear: overhaul,
			MaxFlowRate:    maxRate,
			FlowRate:       maxRate * math.Exp(-k*float64(y)),
		})
	}

	res := &Result{Years: years, FailureYear: NoFailure}
	for _, yr := range years {
		if yr.FlowRate <= p.FailureThreshold {
			res.FailureYear = yr.Year
			break
		}
	}
	return res, nil
}

// FinalFlowRate returns the flow rate of the last record, or 0 for an empty
// series.
func FinalFlowRate(years []YearRecord) float64 {
	if len(years) == 0 {
		return 0
	}
	return years[len(years)-1].FlowRate
}

// TotalDeclinePct returns the percentage decline from the first record's
// flow rate to the last record's.
func TotalDeclinePct(years []YearRecord) float64 {
	if len(years) == 0 || years[0].FlowRate == 0 {
		return 0
	}
	return (1 - FinalFlowRate(years)/years[0].FlowRate) * 100
}

// AvgAnnualDeclinePct returns the total decline spread evenly over the
// simulated years (records minus the year-0 state).
func AvgAnnualDeclinePct(years []YearRecord) float64 {
	if len(years) < 2 {
		return 0
	}
	return TotalDeclinePct(years) / float64(len(years)-1)
}
