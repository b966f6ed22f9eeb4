// Package config loads and watches the pumpsight configuration file
// (config.yaml).
//
// Top-level types:
//   - Config{Server, Simulation, Presets, Alerts} — full config tree
//   - ServerConfig — http_port, auth, scenario_ttl, broadcast_interval
//   - AuthConfig — mode (apikey|none), header, key_env; Key() resolves the
//     expected key from the environment
//   - SimulationConfig — decay coefficients for the simulation engine
//   - Preset — a named, ready-to-run parameter set offered to front ends
//   - AlertsConfig — rule definitions and webhook delivery targets
//
// Load(path) reads the YAML file, applies defaults (port 8080, 24h scenario
// TTL, 5s broadcast interval, tuned decay coefficients), then validates
// required fields and enums. Every preset must itself be a valid parameter
// set for its model.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. It handles the rename→create
// pattern used by atomic-save editors by re-adding the watch after the
// event.
package config
