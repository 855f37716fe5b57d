package config

// Built-in system definitions for quick experiments without a yaml file.
var presets = map[string]*Definition{
	"chain16": {
		Name:        "chain16",
		Particles:   16,
		Mass:        1.0,
		SpringK:     100.0,
		Spacing:     1.0,
		Dt:          0.002,
		Steps:       5000,
		OutputEvery: 10,
		Seed:        42,
		Temperature: 0.5,
	},
	"chain64": {
		Name:        "chain64",
		Particles:   64,
		Mass:        1.0,
		SpringK:     150.0,
		Spacing:     1.0,
		Dt:          0.001,
		Steps:       20000,
		OutputEvery: 50,
		Seed:        42,
		Temperature: 0.8,
	},
	"chain1k": {
		Name:        "chain1k",
		Particles:   1024,
		Mass:        1.0,
		SpringK:     200.0,
		Spacing:     1.0,
		Dt:          0.0005,
		Steps:       100000,
		OutputEvery: 500,
		Seed:        7,
		Temperature: 1.0,
	},
}

func GetPreset(name string) *Definition {
	def, ok := presets[name]
	if !ok {
		return nil
	}
	cp := *def
	return &cp
}

func ListPresets() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	return names
}
