package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort          = 8080
	DefaultScenarioTTL       = 24 * time.Hour
	DefaultBroadcastInterval = 5 * time.Second
)

// Config is the top-level pumpsight configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Simulation SimulationConfig `yaml:"simulation"`
	Presets    []Preset         `yaml:"presets"`
	Alerts     AlertsConfig     `yaml:"alerts"`
}

// ServerConfig holds the HTTP service settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// Auth configures how the server authenticates API clients.
	Auth AuthConfig `yaml:"auth"`

	// ScenarioTTL is how long a stored scenario run survives without being
	// recomputed before eviction.
	ScenarioTTL time.Duration `yaml:"scenario_ttl"`

	// BroadcastInterval is the WebSocket hub's snapshot push interval.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`
}

// AuthConfig configures REST API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header the key is read from.
	// Defaults to "x-api-key" if empty.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable that holds the expected
	// API key. Used when Mode == "apikey".
	KeyEnv string `yaml:"key_env"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default
// "x-api-key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "x-api-key"
}

// SimulationConfig holds the tunable simulation engine settings.
type SimulationConfig struct {
	Coefficients CoefficientsConfig `yaml:"coefficients"`
}

// CoefficientsConfig sets the decay proportionality constants. All four must
// be non-negative. Fields left at zero are meaningful (a disabled driver),
// so defaults apply only when the whole block is absent.
type CoefficientsConfig struct {
	// Sand is the decay contribution per percent of sand concentration.
	Sand *float64 `yaml:"sand"`

	// PH is the decay contribution per pH unit of deviation from neutral.
	PH *float64 `yaml:"ph"`

	// Chloride is the decay contribution per ppm of chloride.
	Chloride *float64 `yaml:"chloride"`

	// PressureDiff is the decay contribution per psi of pressure
	// differential.
	PressureDiff *float64 `yaml:"pressure_diff"`
}

// Effective returns the configured coefficient set, falling back to the
// tuned defaults for unset fields.
func (c CoefficientsConfig) Effective() simulation.Coefficients {
	out := simulation.DefaultCoefficients()
	if c.Sand != nil {
		out.Sand = *c.Sand
	}
	if c.PH != nil {
		out.PH = *c.PH
	}
	if c.Chloride != nil {
		out.Chloride = *c.Chloride
	}
	if c.PressureDiff != nil {
		out.PressureDiff = *c.PressureDiff
	}
	return out
}

// Preset is a named, ready-to-run parameter set served to front ends.
// Scheduled presets use failure_threshold and overhaul_interval_years;
// condition presets use maintenance_threshold, chloride_ppm,
// pressure_diff_psi and replacement_floor.
type Preset struct {
	// Name is the unique preset identifier.
	Name string `yaml:"name"`

	// Model is "scheduled" (default) or "condition".
	Model string `yaml:"model"`

	PeriodYears           int     `yaml:"period_years"`
	InitialFlowRate       float64 `yaml:"initial_flow_rate"`
	FailureThreshold      float64 `yaml:"failure_threshold"`
	MaintenanceThreshold  float64 `yaml:"maintenance_threshold"`
	OverhaulIntervalYears int     `yaml:"overhaul_interval_years"`
	OverhaulDropFraction  float64 `yaml:"overhaul_drop_fraction"`
	SandConcentrationPct  float64 `yaml:"sand_concentration_pct"`
	PHLevel               float64 `yaml:"ph_level"`
	ChlorideConcPpm       float64 `yaml:"chloride_ppm"`
	PressureDiffPSI       float64 `yaml:"pressure_diff_psi"`
	ReplacementFloor      float64 `yaml:"replacement_floor"`
}

// EffectiveModel returns the preset's model, defaulting to scheduled.
func (p Preset) EffectiveModel() string {
	if p.Model == "" {
		return simulation.ModelScheduled
	}
	return p.Model
}

// Parameters maps a scheduled preset to simulation parameters.
func (p Preset) Parameters() simulation.Parameters {
	return simulation.Parameters{
		PeriodYears:           p.PeriodYears,
		InitialFlowRate:       p.InitialFlowRate,
		FailureThreshold:      p.FailureThreshold,
		OverhaulIntervalYears: p.OverhaulIntervalYears,
		OverhaulDropFraction:  p.OverhaulDropFraction,
		SandConcentrationPct:  p.SandConcentrationPct,
		PHLevel:               p.PHLevel,
	}
}

// ConditionParameters maps a condition preset to simulation parameters.
func (p Preset) ConditionParameters() simulation.ConditionParameters {
	return simulation.ConditionParameters{
		PeriodYears:          p.PeriodYears,
		InitialFlowRate:      p.InitialFlowRate,
		MaintenanceThreshold: p.MaintenanceThreshold,
		OverhaulDropFraction: p.OverhaulDropFraction,
		SandConcentrationPct: p.SandConcentrationPct,
		PHLevel:              p.PHLevel,
		ChlorideConcPpm:      p.ChlorideConcPpm,
		PressureDiffPSI:      p.PressureDiffPSI,
		ReplacementFloor:     p.ReplacementFloor,
	}
}

// AlertsConfig holds alerting rules and webhook delivery targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines one threshold-based alert condition evaluated against
// completed simulation runs.
type AlertRule struct {
	// Name is the human-readable alert identifier, used as the deduplication
	// key together with the scenario name.
	Name string `yaml:"name"`

	// Condition is a simple expression over run summary fields:
	// "failure_year < 10", "total_decline_pct > 50", "final_flow_rate < 800",
	// "state == failed".
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	// Defaults to 15 minutes if zero.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable that holds the webhook
	// URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			ScenarioTTL:       DefaultScenarioTTL,
			BroadcastInterval: DefaultBroadcastInterval,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Server.ScenarioTTL <= 0 {
		return fmt.Errorf("server.scenario_ttl must be positive")
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}

	co := cfg.Simulation.Coefficients.Effective()
	for name, v := range map[string]float64{
		"sand":          co.Sand,
		"ph":            co.PH,
		"chloride":      co.Chloride,
		"pressure_diff": co.PressureDiff,
	} {
		if v < 0 {
			return fmt.Errorf("simulation.coefficients.%s must be non-negative", name)
		}
	}

	seen := make(map[string]bool, len(cfg.Presets))
	for i, p := range cfg.Presets {
		if p.Name == "" {
			return fmt.Errorf("presets[%d]: name is required", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("presets[%d]: duplicate name %q", i, p.Name)
		}
		seen[p.Name] = true

		switch p.EffectiveModel() {
		case simulation.ModelScheduled:
			if err := p.Parameters().Validate(); err != nil {
				return fmt.Errorf("presets[%d] %q: %w", i, p.Name, err)
			}
		case simulation.ModelCondition:
			if err := p.ConditionParameters().Validate(); err != nil {
				return fmt.Errorf("presets[%d] %q: %w", i, p.Name, err)
			}
		default:
			return fmt.Errorf("presets[%d] %q: unknown model %q", i, p.Name, p.Model)
		}
	}

	for i, r := range cfg.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, r.Name)
		}
		switch r.Severity {
		case "critical", "warning", "info", "":
		default:
			return fmt.Errorf("alerts.rules[%d] %q: unknown severity %q", i, r.Name, r.Severity)
		}
	}
	for i, w := range cfg.Alerts.Webhooks {
		switch w.Type {
		case "teams", "slack", "http":
		default:
			return fmt.Errorf("alerts.webhooks[%d]: unknown type %q", i, w.Type)
		}
	}

	return nil
}
