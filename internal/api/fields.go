package api

import "github.com/pumpsight/pumpsight/internal/simulation"

var bothModels = []string{simulation.ModelScheduled, simulation.ModelCondition}

// fieldSpecs returns the parameter field specs served by GET /api/v1/fields.
// The UI builds its sliders from these, so ranges here are the source of
// truth for what the front end offers.
func fieldSpecs() []FieldSpec {
	return []FieldSpec{
		{
			Name: "period_years", Label: "Simulation period", Unit: "years",
			Min: 1, Max: 30, Step: 1, Default: 15, Models: bothModels,
		},
		{
			Name: "initial_flow_rate", Label: "Initial flow rate", Unit: "USgpm",
			Min: 500, Max: 5000, Step: 50, Default: 2800, Models: bothModels,
		},
		{
			Name: "failure_threshold", Label: "Failure threshold", Unit: "USgpm",
			Min: 500, Max: 3000, Step: 50, Default: 1500,
			Models: []string{simulation.ModelScheduled},
		},
		{
			Name: "maintenance_threshold", Label: "Maintenance threshold", Unit: "USgpm",
			Min: 500, Max: 3000, Step: 50, Default: 1500,
			Models: []string{simulation.ModelCondition},
		},
		{
			Name: "overhaul_interval_years", Label: "Overhaul interval", Unit: "years",
			Min: 1, Max: 10, Step: 1, Default: 5,
			Models: []string{simulation.ModelScheduled},
		},
		{
			Name: "overhaul_drop_fraction", Label: "Capacity drop per overhaul",
			Min: 0.01, Max: 0.2, Step: 0.01, Default: 0.1, Models: bothModels,
		},
		{
			Name: "sand_concentration_pct", Label: "Sand concentration", Unit: "%",
			Min: 0, Max: 20, Step: 0.5, Default: 10, Models: bothModels,
		},
		{
			Name: "ph_level", Label: "Water pH",
			Min: 1, Max: 14, Step: 0.1, Default: 8, Models: bothModels,
		},
		{
			Name: "chloride_ppm", Label: "Chloride concentration", Unit: "ppm",
			Min: 0, Max: 500, Step: 5, Default: 50,
			Models: []string{simulation.ModelCondition},
		},
		{
			Name: "pressure_diff_psi", Label: "Pressure differential", Unit: "psi",
			Min: 0, Max: 150, Step: 1, Default: 20,
			Models: []string{simulation.ModelCondition},
		},
		{
			Name: "replacement_floor", Label: "Replacement floor", Unit: "USgpm",
			Min: 0, Max: 3000, Step: 50, Default: 0,
			Models: []string{simulation.ModelCondition},
		},
	}
}
