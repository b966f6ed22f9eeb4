package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pumpsight/pumpsight/internal/simulation"
)

func TestLoad_Valid(t *testing.T) {
	yaml := `
server:
  http_port: 9090
  scenario_ttl: 1h
  broadcast_interval: 2s
  auth:
    mode: apikey
    key_env: PUMPSIGHT_API_KEY
simulation:
  coefficients:
    sand: 0.02
    ph: 0.04
presets:
  - name: baseline
    period_years: 15
    initial_flow_rate: 2800
    failure_threshold: 1500
    overhaul_interval_years: 5
    overhaul_drop_fraction: 0.1
    sand_concentration_pct: 10
    ph_level: 8
`
	cfg := loadFromString(t, yaml)

	if cfg.Server.HTTPPort != 9090 {
		t.Errorf("http_port: got %d", cfg.Server.HTTPPort)
	}
	if cfg.Server.ScenarioTTL != time.Hour {
		t.Errorf("scenario_ttl: got %v", cfg.Server.ScenarioTTL)
	}
	if cfg.Server.BroadcastInterval != 2*time.Second {
		t.Errorf("broadcast_interval: got %v", cfg.Server.BroadcastInterval)
	}
	if cfg.Server.Auth.Mode != "apikey" {
		t.Errorf("auth mode: got %q", cfg.Server.Auth.Mode)
	}

	co := cfg.Simulation.Coefficients.Effective()
	if co.Sand != 0.02 || co.PH != 0.04 {
		t.Errorf("coefficients: got sand=%v ph=%v", co.Sand, co.PH)
	}
	// Unset fields fall back to the tuned defaults.
	if co.Chloride != simulation.DefaultChlorideCoeff {
		t.Errorf("chloride coefficient: got %v, want default %v", co.Chloride, simulation.DefaultChlorideCoeff)
	}

	if len(cfg.Presets) != 1 {
		t.Fatalf("presets: got %d, want 1", len(cfg.Presets))
	}
	p := cfg.Presets[0]
	if p.Name != "baseline" {
		t.Errorf("preset name: got %q", p.Name)
	}
	if p.EffectiveModel() != simulation.ModelScheduled {
		t.Errorf("preset model: got %q, want scheduled default", p.EffectiveModel())
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := loadFromString(t, "server: {}\n")

	if cfg.Server.HTTPPort != DefaultHTTPPort {
		t.Errorf("default http_port: got %d, want %d", cfg.Server.HTTPPort, DefaultHTTPPort)
	}
	if cfg.Server.ScenarioTTL != DefaultScenarioTTL {
		t.Errorf("default scenario_ttl: got %v, want %v", cfg.Server.ScenarioTTL, DefaultScenarioTTL)
	}
	if cfg.Server.BroadcastInterval != DefaultBroadcastInterval {
		t.Errorf("default broadcast_interval: got %v, want %v", cfg.Server.BroadcastInterval, DefaultBroadcastInterval)
	}
	if co := cfg.Simulation.Coefficients.Effective(); co != simulation.DefaultCoefficients() {
		t.Errorf("default coefficients: got %+v", co)
	}
}

func TestLoad_CoefficientZeroIsKept(t *testing.T) {
	// An explicit zero disables a driver; it must not be replaced by the
	// default.
	yaml := `
simulation:
  coefficients:
    sand: 0
`
	cfg := loadFromString(t, yaml)
	if co := cfg.Simulation.Coefficients.Effective(); co.Sand != 0 {
		t.Errorf("explicit zero sand coefficient: got %v", co.Sand)
	}
}

func TestLoad_BadPort(t *testing.T) {
	if _, err := loadStringErr(t, "server:\n  http_port: 70000\n"); err == nil {
		t.Fatal("expected error for out-of-range port, got nil")
	}
}

func TestLoad_UnknownAuthMode(t *testing.T) {
	if _, err := loadStringErr(t, "server:\n  auth:\n    mode: magictoken\n"); err == nil {
		t.Fatal("expected error for unknown auth mode, got nil")
	}
}

func TestLoad_NegativeCoefficient(t *testing.T) {
	yaml := `
simulation:
  coefficients:
    ph: -0.01
`
	if _, err := loadStringErr(t, yaml); err == nil {
		t.Fatal("expected error for negative coefficient, got nil")
	}
}

func TestLoad_InvalidPreset(t *testing.T) {
	yaml := `
presets:
  - name: broken
    period_years: 99
    initial_flow_rate: 1000
    failure_threshold: 500
    overhaul_interval_years: 5
`
	if _, err := loadStringErr(t, yaml); err == nil {
		t.Fatal("expected error for out-of-range preset period, got nil")
	}
}

func TestLoad_DuplicatePresetName(t *testing.T) {
	yaml := `
presets:
  - name: twin
    period_years: 10
    initial_flow_rate: 1000
    failure_threshold: 500
    overhaul_interval_years: 5
    ph_level: 7
  - name: twin
    period_years: 10
    initial_flow_rate: 1000
    failure_threshold: 500
    overhaul_interval_years: 5
    ph_level: 7
`
	if _, err := loadStringErr(t, yaml); err == nil {
		t.Fatal("expected error for duplicate preset name, got nil")
	}
}

func TestLoad_ConditionPreset(t *testing.T) {
	yaml := `
presets:
  - name: brine-service
    model: condition
    period_years: 12
    initial_flow_rate: 2000
    maintenance_threshold: 1200
    overhaul_drop_fraction: 0.1
    sand_concentration_pct: 5
    ph_level: 6.5
    chloride_ppm: 40
    pressure_diff_psi: 15
    replacement_floor: 900
`
	cfg := loadFromString(t, yaml)
	p := cfg.Presets[0]
	if p.EffectiveModel() != simulation.ModelCondition {
		t.Fatalf("model: got %q", p.EffectiveModel())
	}
	cp := p.ConditionParameters()
	if cp.ChlorideConcPpm != 40 || cp.ReplacementFloor != 900 {
		t.Errorf("condition parameters: got %+v", cp)
	}
}

func TestLoad_UnknownPresetModel(t *testing.T) {
	yaml := `
presets:
  - name: weird
    model: stochastic
    period_years: 10
    initial_flow_rate: 1000
    failure_threshold: 500
    overhaul_interval_years: 5
`
	if _, err := loadStringErr(t, yaml); err == nil {
		t.Fatal("expected error for unknown preset model, got nil")
	}
}

func TestLoad_AlertRules(t *testing.T) {
	yaml := `
alerts:
  rules:
    - name: early-failure
      condition: "failure_year < 10"
      severity: critical
      cooldown: 30m
  webhooks:
    - type: slack
      url_env: SLACK_WEBHOOK_URL
`
	cfg := loadFromString(t, yaml)
	if len(cfg.Alerts.Rules) != 1 || cfg.Alerts.Rules[0].Cooldown != 30*time.Minute {
		t.Errorf("rules: got %+v", cfg.Alerts.Rules)
	}
	if len(cfg.Alerts.Webhooks) != 1 || cfg.Alerts.Webhooks[0].Type != "slack" {
		t.Errorf("webhooks: got %+v", cfg.Alerts.Webhooks)
	}
}

func TestLoad_RuleMissingCondition(t *testing.T) {
	yaml := `
alerts:
  rules:
    - name: empty-rule
      severity: info
`
	if _, err := loadStringErr(t, yaml); err == nil {
		t.Fatal("expected error for rule without condition, got nil")
	}
}

func TestLoad_UnknownWebhookType(t *testing.T) {
	yaml := `
alerts:
  webhooks:
    - type: pigeon
      url_env: PIGEON_URL
`
	if _, err := loadStringErr(t, yaml); err == nil {
		t.Fatal("expected error for unknown webhook type, got nil")
	}
}

func TestAuthConfig_Key(t *testing.T) {
	t.Setenv("TEST_API_KEY", "supersecret")
	a := AuthConfig{Mode: "apikey", KeyEnv: "TEST_API_KEY"}
	if got := a.Key(); got != "supersecret" {
		t.Errorf("Key(): got %q, want %q", got, "supersecret")
	}
}

func TestAuthConfig_EffectiveHeader(t *testing.T) {
	if got := (AuthConfig{}).EffectiveHeader(); got != "x-api-key" {
		t.Errorf("default header: got %q", got)
	}
	if got := (AuthConfig{Header: "x-pump-key"}).EffectiveHeader(); got != "x-pump-key" {
		t.Errorf("custom header: got %q", got)
	}
}

func TestWebhookConfig_URL(t *testing.T) {
	t.Setenv("TEAMS_URL", "https://teams.example.com/webhook")
	w := WebhookConfig{Type: "teams", URLEnv: "TEAMS_URL"}
	if got := w.URL(); got != "https://teams.example.com/webhook" {
		t.Errorf("URL(): got %q", got)
	}
}

// loadFromString writes yaml to a temp file and calls Load, failing on error.
func loadFromString(t *testing.T, content string) *Config {
	t.Helper()
	cfg, err := loadStringErr(t, content)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

// loadStringErr writes yaml to a temp file and calls Load, returning any error.
func loadStringErr(t *testing.T, content string) (*Config, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return Load(path)
}
