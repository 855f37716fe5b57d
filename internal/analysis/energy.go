package analysis

import "math"

// EnergyStats summarizes the total-energy series of a run. For a symplectic
// integrator the relative drift should stay small; a large drift usually
// means the timestep is too big for the stiffest spring in the system.
type EnergyStats struct {
	Samples      int
	Initial      float64
	Final        float64
	Mean         float64
	RelDrift     float64
	MaxDeviation float64
}

func Energy(etot []float64) EnergyStats {
	stats := EnergyStats{Samples: len(etot)}
	if len(etot) == 0 {
		return stats
	}

	stats.Initial = etot[0]
	stats.Final = etot[len(etot)-1]

	sum := 0.0
	for _, e := range etot {
		sum += e
		if stats.Initial != 0 {
			dev := math.Abs(e-stats.Initial) / math.Abs(stats.Initial)
			stats.MaxDeviation = math.Max(stats.MaxDeviation, dev)
		}
	}
	stats.Mean = sum / float64(len(etot))

	if stats.Initial != 0 {
		stats.RelDrift = math.Abs(stats.Final-stats.Initial) / math.Abs(stats.Initial)
	}
	return stats
}
