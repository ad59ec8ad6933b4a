package adaptive

import (
	"fmt"
	"os"

	"github.com/zoobzio/zyn"
	"gopkg.in/yaml.v3"
)

// Default configuration for the orchestration engine. Per-instance values
// live in Config; these package defaults seed it.
const (
	// DefaultMaxAttempts bounds the revision loop: no single Process call
	// executes more dispatch rounds than this.
	DefaultMaxAttempts = 3

	// ConfidenceFloor is the minimum reasoner confidence a result needs to
	// survive aggregation.
	ConfidenceFloor = 0.5

	// SuccessThreshold is the validation confidence at which an attempt
	// counts as a success in the performance tracker.
	SuccessThreshold = 0.7

	// ResearchFloor is the minimum research confidence required before a
	// research context is injected into the question.
	ResearchFloor = 0.5
)

// Default temperatures for the LLM-backed reasoners, mirroring the zyn
// presets: deterministic for derivation and validity probes, creative for
// lateral reframing.
var (
	DefaultReasoningTemperature = zyn.DefaultTemperatureDeterministic
	DefaultCreativeTemperature  = zyn.DefaultTemperatureCreative
)

// Config carries the orchestrator's tunables. The zero value is unusable;
// start from DefaultConfig or LoadConfig.
type Config struct {
	// MaxAttempts is the fixed bound on selection-dispatch-validate
	// cycles per question.
	MaxAttempts int `yaml:"max_attempts"`

	// InitialFanOut controls how attempt 1 selects strategies: true uses
	// the multi-select fan-out, false uses the adaptive single pick from
	// the start. The two selection algorithms compose as sequential
	// phases either way.
	InitialFanOut bool `yaml:"initial_fan_out"`

	// FanOutRules and AdaptiveRules override the built-in selection rule
	// tables. Empty slices keep the defaults.
	FanOutRules   []SelectionRule `yaml:"fan_out_rules"`
	AdaptiveRules []SelectionRule `yaml:"adaptive_rules"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   DefaultMaxAttempts,
		InitialFanOut: true,
	}
}

// LoadConfig reads a YAML config file, layering it over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return cfg, nil
}
