// Package api implements the HTTP REST API for pumpsight-server.
//
// New(store, engine, charts, current) returns an http.Handler that serves:
//
//	GET    /api/v1/health                   — status, scenario and alert counts
//	GET    /api/v1/fields                   — parameter field specs for controls
//	GET    /api/v1/presets                  — named parameter presets from config
//	POST   /api/v1/simulate                 — run a simulation, store the scenario
//	GET    /api/v1/scenarios                — stored run summaries
//	GET    /api/v1/scenarios/{name}         — full run: years, summary, advice
//	GET    /api/v1/scenarios/{name}/csv     — run history as CSV attachment
//	GET    /api/v1/scenarios/{name}/chart   — flow-rate SVG line chart
//	GET    /api/v1/scenarios/{name}/factors — decay factor SVG bar chart
//	DELETE /api/v1/scenarios/{name}         — drop a stored scenario
//	GET    /api/v1/alerts                   — firing and recently resolved alerts
//
// All JSON endpoints:
//   - Respond with Content-Type: application/json
//   - Return 405 for unsupported methods
//   - Return 400 with the validation message for bad simulation parameters
//
// JSON types are defined in types.go. No external HTTP framework is used.
package api
