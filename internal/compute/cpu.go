package compute

import (
	"runtime"
	"sync"
)

// Below this size the goroutine fan-out costs more than it saves.
const parallelThreshold = 256

type CPUBackend struct {
	workers int
}

func NewCPUBackend() *CPUBackend {
	return &CPUBackend{
		workers: runtime.NumCPU(),
	}
}

func (c *CPUBackend) Name() string    { return "cpu" }
func (c *CPUBackend) Available() bool { return true }
func (c *CPUBackend) Cleanup()        {}

func (c *CPUBackend) ChainForces(positions []float64, k, spacing float64) []float64 {
	n := len(positions)
	forces := make([]float64, n)

	if n < parallelThreshold || c.workers < 2 {
		chainForcesRange(positions, k, spacing, forces, 0, n)
		return forces
	}

	var wg sync.WaitGroup
	chunkSize := (n + c.workers - 1) / c.workers

	for w := 0; w < c.workers; w++ {
		start := w * chunkSize
		if start >= n {
			break
		}
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			chainForcesRange(positions, k, spacing, forces, start, end)
		}(start, end)
	}

	wg.Wait()
	return forces
}

// chainForcesRange fills forces[start:end]. Each entry reads only its
// neighbors in positions, so disjoint ranges never race.
func chainForcesRange(pos []float64, k, spacing float64, forces []float64, start, end int) {
	n := len(pos)
	for i := start; i < end; i++ {
		f := 0.0
		if i > 0 {
			f -= k * (pos[i] - pos[i-1] - spacing)
		}
		if i < n-1 {
			f += k * (pos[i+1] - pos[i] - spacing)
		}
		forces[i] = f
	}
}
