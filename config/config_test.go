package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kilianp07/chargeflow/core/sim"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `site:
  stations:
    - id: "A"
      max_pilot_a: 32
    - id: "B"
      max_pilot_a: 16
  constraints:
    - name: "feeder"
      limit_a: 40
      coefficients:
        A: 1
        B: 1
simulation:
  period_minutes: 5
  voltage_v: 230
scheduler:
  policy: "edf"
  search: "bisection"
  max_recompute: 3
source:
  type: "synthetic"
  synthetic:
    horizon: 100
    seed: 7
metrics:
  prometheus_enabled: true
  prometheus_port: "9321"
telemetry:
  enabled: false
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"stations", len(cfg.Site.Stations), 2},
		{"station_id", cfg.Site.Stations[0].ID, "A"},
		{"max_pilot_a", cfg.Site.Stations[1].MaxPilotA, 16.0},
		{"constraint", cfg.Site.Constraints[0].Name, "feeder"},
		{"limit_a", cfg.Site.Constraints[0].LimitA, 40.0},
		{"period_minutes", cfg.Simulation.PeriodMinutes, 5},
		{"voltage_v", cfg.Simulation.VoltageV, 230.0},
		{"policy", cfg.Scheduler.Policy, "edf"},
		{"search", cfg.Scheduler.Search, "bisection"},
		{"max_recompute", cfg.Scheduler.MaxRecompute, 3},
		{"source_type", cfg.Source.Type, "synthetic"},
		{"horizon", cfg.Source.Synthetic.Horizon, 100},
		{"prometheus_enabled", cfg.Metrics.PrometheusEnabled, true},
		{"prometheus_port", cfg.Metrics.PrometheusPort, "9321"},
		{"telemetry_enabled", cfg.Telemetry.Enabled, false},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"site": {"stations": [{"id": "A", "max_pilot_a": 32}]},
		"scheduler": {"policy": "llf"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Scheduler.Policy != "llf" {
		t.Errorf("policy mismatch: %v", cfg.Scheduler.Policy)
	}
	// Untouched sections still get defaults.
	if cfg.Source.Type != SourceSynthetic {
		t.Errorf("source default mismatch: %v", cfg.Source.Type)
	}
	if cfg.Scheduler.MaxRecompute != 1 {
		t.Errorf("max_recompute default mismatch: %v", cfg.Scheduler.MaxRecompute)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `site:
  stations:
    - id: "A"
      max_pilot_a: 32
scheduler:
  policy: "edf"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CF_SCHEDULER__POLICY", "uncontrolled")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Scheduler.Policy != "uncontrolled" {
		t.Errorf("env override not applied: %v", cfg.Scheduler.Policy)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
	if _, err := Load("config.toml"); err == nil {
		t.Errorf("expected error for unsupported extension")
	}

	// No stations fails site validation.
	empty := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(empty, []byte("scheduler:\n  policy: edf\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(empty); err == nil {
		t.Errorf("expected error for empty site")
	}

	// Unknown policy fails scheduler validation.
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	data := `site:
  stations:
    - id: "A"
      max_pilot_a: 32
scheduler:
  policy: "greedy"
`
	if err := os.WriteFile(bad, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(bad); err == nil {
		t.Errorf("expected error for unknown policy")
	}
}

func TestSiteConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		site    SiteConfig
		wantErr bool
	}{
		{"ok", SiteConfig{Stations: []StationConfig{{ID: "A", MaxPilotA: 32}}}, false},
		{"empty", SiteConfig{}, true},
		{"blank id", SiteConfig{Stations: []StationConfig{{ID: ""}}}, true},
		{"duplicate", SiteConfig{Stations: []StationConfig{{ID: "A"}, {ID: "A"}}}, true},
		{"negative pilot", SiteConfig{Stations: []StationConfig{{ID: "A", MaxPilotA: -1}}}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.site.Validate()
			if (err != nil) != c.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestSiteConfigBuildOracle(t *testing.T) {
	site := SiteConfig{Stations: []StationConfig{{ID: "A", MaxPilotA: 32}, {ID: "B", MaxPilotA: 16}}}
	oracle, err := site.BuildOracle()
	if err != nil {
		t.Fatalf("build oracle: %v", err)
	}
	if got := oracle.MaxPilotSignal("B"); got != 16 {
		t.Errorf("pilot mismatch: %v", got)
	}
}

func TestSourceConfigBuild(t *testing.T) {
	site := SiteConfig{Stations: []StationConfig{{ID: "A"}, {ID: "B"}}}

	var synCfg SourceConfig
	synCfg.SetDefaults()
	src, err := synCfg.Build(site)
	if err != nil {
		t.Fatalf("build synthetic: %v", err)
	}
	syn, ok := src.(sim.SyntheticSource)
	if !ok {
		t.Fatalf("expected synthetic source, got %T", src)
	}
	if len(syn.Config.Stations) != 2 {
		t.Errorf("expected site stations to seed the generator, got %v", syn.Config.Stations)
	}

	fileCfg := SourceConfig{Type: SourceFile, Path: "feed.json"}
	if _, err := fileCfg.Build(site); err != nil {
		t.Fatalf("build file: %v", err)
	}

	if err := (SourceConfig{Type: SourceFile}).Validate(); err == nil {
		t.Errorf("expected error for file source without path")
	}
	if err := (SourceConfig{Type: "kafka"}).Validate(); err == nil {
		t.Errorf("expected error for unknown source type")
	}
}
