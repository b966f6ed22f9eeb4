// Package simulation computes pump flow-rate decline over a multi-year
// horizon.
//
// params.go defines the input parameter sets and their validation; every
// out-of-domain value is reported as an *InvalidParameterError naming the
// offending field before any year is computed.
//
// simulate.go provides Simulator.Run, the scheduled-overhaul model: the flow
// ceiling drops by a fixed fraction every overhaul interval and the actual
// flow decays exponentially between overhauls,
//
//	flow[y] = max[y] * exp(-k*y),  k = cSand*sand% + cPH*|pH-7|
//
// condition.go provides Simulator.RunConditionBased, the condition-triggered
// variant: an overhaul fires whenever flow sags to the maintenance threshold,
// restoring it to a stepped-down baseline, with chloride and pressure
// differential as additional decay drivers and an optional replacement floor
// that retires the pump.
//
// Both models are pure: no I/O, no shared state, identical inputs give
// identical results.
package simulation
