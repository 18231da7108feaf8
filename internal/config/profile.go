package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the trading profile: which symbols to track and how the
// engine sizes and gates trades. It lives in a YAML file so a strategy
// change does not require touching the environment.
type Profile struct {
	Symbols             []string `yaml:"symbols"`
	InitialCapital      float64  `yaml:"initial_capital"`
	ConfidenceThreshold float64  `yaml:"confidence_threshold"`
	SizingFraction      float64  `yaml:"sizing_fraction"`
	SnapshotKey         string   `yaml:"snapshot_key"`
	ModelHistory        int      `yaml:"model_history"`
}

// LoadProfile reads and validates the profile at path, applying defaults
// for unset fields.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("profile: read %q: %w", path, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile: parse %q: %w", path, err)
	}

	if p.InitialCapital == 0 {
		p.InitialCapital = 100000
	}
	if p.ConfidenceThreshold == 0 {
		p.ConfidenceThreshold = 0.65
	}
	if p.SizingFraction == 0 {
		p.SizingFraction = 0.05
	}

	if len(p.Symbols) == 0 {
		return nil, fmt.Errorf("profile: %q lists no symbols", path)
	}
	if p.InitialCapital < 0 {
		return nil, fmt.Errorf("profile: initial_capital must be positive")
	}
	if p.ConfidenceThreshold < 0 || p.ConfidenceThreshold > 1 {
		return nil, fmt.Errorf("profile: confidence_threshold must be in [0, 1]")
	}
	if p.SizingFraction < 0 || p.SizingFraction > 1 {
		// Above 1 a single trade could overdraw cash.
		return nil, fmt.Errorf("profile: sizing_fraction must be in (0, 1]")
	}
	return &p, nil
}
