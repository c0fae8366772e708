package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/chargeflow/core/metrics"
	"github.com/kilianp07/chargeflow/core/scheduler"
	"github.com/kilianp07/chargeflow/core/sim"
	"github.com/kilianp07/chargeflow/infra/telemetry"
)

// Config is the root configuration of a simulation run.
type Config struct {
	Site       SiteConfig       `json:"site"`
	Simulation sim.Config       `json:"simulation"`
	Scheduler  scheduler.Config `json:"scheduler"`
	Source     SourceConfig     `json:"source"`
	Metrics    metrics.Config   `json:"metrics"`
	Telemetry  telemetry.Config `json:"telemetry"`
}

// Load reads the configuration file (yaml or json by extension) and applies
// CF_-prefixed environment overrides, then validates every section.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("CF_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "cf_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Simulation.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.Source.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Telemetry.SetDefaults()
	if err := cfg.Site.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Source.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Telemetry.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
