package compute

// Backend computes per-particle forces for the engine. Implementations must
// be deterministic for a given input: each particle's force depends only on
// its immediate neighbors, so parallel evaluation must not change results.
type Backend interface {
	Name() string
	Available() bool
	// ChainForces returns the force on each particle of a 1-D harmonic chain
	// with spring constant k and rest spacing between neighbors.
	ChainForces(positions []float64, k, spacing float64) []float64
	Cleanup()
}

// AutoSelect returns the best available backend (CUDA if built in and a
// device is present, else CPU).
func AutoSelect() Backend {
	cuda := NewCUDABackend()
	if cuda.Available() {
		return cuda
	}
	return NewCPUBackend()
}
