package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 0.002
	DefaultSteps       = 5000
	DefaultOutputEvery = 10
	DefaultParticles   = 16
	DefaultMass        = 1.0
	DefaultSpringK     = 100.0
	DefaultSpacing     = 1.0
	DefaultTemperature = 0.5
)

// Definition describes a simulation system on disk. It is immutable once
// loaded; launches read from it but never write back.
type Definition struct {
	Name        string  `yaml:"name"`
	Particles   int     `yaml:"particles"`
	Mass        float64 `yaml:"mass"`
	SpringK     float64 `yaml:"spring_k"`
	Spacing     float64 `yaml:"spacing"`
	Dt          float64 `yaml:"dt"`
	Steps       int64   `yaml:"nsteps"`
	OutputEvery int64   `yaml:"nstout"`
	Seed        int64   `yaml:"seed"`
	Temperature float64 `yaml:"temperature"`
}

func DefaultDefinition() *Definition {
	return &Definition{
		Name:        "chain",
		Particles:   DefaultParticles,
		Mass:        DefaultMass,
		SpringK:     DefaultSpringK,
		Spacing:     DefaultSpacing,
		Dt:          DefaultDt,
		Steps:       DefaultSteps,
		OutputEvery: DefaultOutputEvery,
		Seed:        42,
		Temperature: DefaultTemperature,
	}
}

// Load reads and validates a system definition. Validation completes before
// the definition escapes, so a failed load never leaves partial state behind.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	def := DefaultDefinition()
	if err := yaml.Unmarshal(data, def); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}
	return def, nil
}

func Save(path string, def *Definition) error {
	data, err := yaml.Marshal(def)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if d.Particles < 2 {
		return fmt.Errorf("particles must be >= 2, got %d", d.Particles)
	}
	if d.Mass <= 0 {
		return fmt.Errorf("mass must be positive, got %f", d.Mass)
	}
	if d.SpringK <= 0 {
		return fmt.Errorf("spring_k must be positive, got %f", d.SpringK)
	}
	if d.Spacing <= 0 {
		return fmt.Errorf("spacing must be positive, got %f", d.Spacing)
	}
	if d.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", d.Dt)
	}
	if d.Steps < 0 {
		return fmt.Errorf("nsteps must not be negative, got %d", d.Steps)
	}
	if d.OutputEvery <= 0 {
		return fmt.Errorf("nstout must be positive, got %d", d.OutputEvery)
	}
	if d.Temperature < 0 {
		return fmt.Errorf("temperature must not be negative, got %f", d.Temperature)
	}
	return nil
}
